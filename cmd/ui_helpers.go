// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"os"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"rosetta/cli/internal/logging"
	"rosetta/cli/internal/metrics"
	"rosetta/cli/internal/pipeline"
	"rosetta/cli/internal/terminal"
)

// reportedError marks an error whose explanation was already printed.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func isReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

var stageText = map[pipeline.Stage]string{
	pipeline.StageValidate: "Checking bundle id",
	pipeline.StageCache:    "Looking for a cached copy",
	pipeline.StageVerify:   "Verifying App Store Connect access",
	pipeline.StageFetch:    "Downloading metadata",
	pipeline.StageFilter:   "Filtering locales",
	pipeline.StagePersist:  "Saving locale files",
	pipeline.StageArchive:  "Archiving snapshot",
	pipeline.StageExport:   "Exporting",
}

// pullProgress shows pipeline progress on a stderr spinner and feeds retry
// results into metrics. Without a terminal, or with --verbose, stage changes
// go to the logger instead so they do not fight with worker diagnostics.
type pullProgress struct {
	logger  logging.Logger
	metrics *metrics.Metrics
	spinner *pterm.SpinnerPrinter
}

func newPullProgress(logger logging.Logger, m *metrics.Metrics, animate bool) *pullProgress {
	p := &pullProgress{logger: logger, metrics: m}
	if !animate || !terminal.IsInteractive(os.Stderr) {
		return p
	}
	cursor.Hide()
	sp, err := pterm.DefaultSpinner.
		WithWriter(os.Stderr).
		WithRemoveWhenDone(true).
		Start("Starting")
	if err != nil {
		cursor.Show()
		return p
	}
	p.spinner = sp
	return p
}

func (p *pullProgress) say(text string) {
	if p.spinner != nil {
		p.spinner.UpdateText(text)
		return
	}
	p.logger.Debugf("%s", text)
}

func (p *pullProgress) Stage(stage pipeline.Stage, detail string) {
	text := stageText[stage]
	if detail != "" {
		text += " (" + detail + ")"
	}
	p.say(text)
}

func (p *pullProgress) Attempt(attempt, total int) {
	if attempt > 1 {
		p.say(fmt.Sprintf("Downloading metadata (attempt %d/%d)", attempt, total))
	}
}

func (p *pullProgress) Failed(attempt, total int, err error) {
	p.metrics.ObserveRetry("failed")
	p.logger.Debugf("attempt %d/%d failed: %s", attempt, total, logging.Mask(err.Error()))
}

func (p *pullProgress) Succeeded(attempt, total int) {
	p.metrics.ObserveRetry("succeeded")
}

func (p *pullProgress) Exhausted(total int, err error) {
	p.metrics.ObserveRetry("exhausted")
}

// stop removes the spinner and restores the cursor. Safe to call twice.
func (p *pullProgress) stop() {
	if p.spinner == nil {
		return
	}
	_ = p.spinner.Stop()
	p.spinner = nil
	cursor.Show()
}
