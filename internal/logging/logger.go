// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// Logger is the leveled logging surface used throughout the CLI.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type Level uint8

const (
	Silent Level = iota
	Error
	Warn
	Info
	Debug
)

// ParseLevel maps a flag value onto a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return Silent, nil
	case "error":
		return Error, nil
	case "warn", "warning":
		return Warn, nil
	case "", "info":
		return Info, nil
	case "debug":
		return Debug, nil
	default:
		return Info, fmt.Errorf("invalid log level %q (want silent, error, warn, info or debug)", s)
	}
}

// PtermLogger prints through pterm prefix printers. All output goes to the
// configured writer (stderr by default) so stdout stays clean for json/csv output.
type PtermLogger struct {
	level Level
	debug pterm.PrefixPrinter
	info  pterm.PrefixPrinter
	warn  pterm.PrefixPrinter
	err   pterm.PrefixPrinter
}

// NewLogger creates a logger writing to stderr.
func NewLogger(level Level) *PtermLogger {
	return NewLoggerTo(os.Stderr, level)
}

// NewLoggerTo creates a logger writing to w.
func NewLoggerTo(w io.Writer, level Level) *PtermLogger {
	debug := *pterm.Debug.WithWriter(w)
	// pterm suppresses Debugger printers unless debug messages are globally on;
	// level gating happens here instead.
	debug.Debugger = false
	return &PtermLogger{
		level: level,
		debug: debug,
		info:  *pterm.Info.WithWriter(w),
		warn:  *pterm.Warning.WithWriter(w),
		err:   *pterm.Error.WithWriter(w),
	}
}

func (l *PtermLogger) Level() Level { return l.level }

func (l *PtermLogger) Debugf(format string, args ...any) {
	if l.level < Debug {
		return
	}
	l.debug.Printfln(format, args...)
}

func (l *PtermLogger) Infof(format string, args ...any) {
	if l.level < Info {
		return
	}
	l.info.Printfln(format, args...)
}

func (l *PtermLogger) Warnf(format string, args ...any) {
	if l.level < Warn {
		return
	}
	l.warn.Printfln(format, args...)
}

func (l *PtermLogger) Errorf(format string, args ...any) {
	if l.level < Error {
		return
	}
	l.err.Printfln(format, args...)
}

// Nop discards everything.
var Nop Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
