// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal holds the small amount of raw terminal handling the
// prompts need.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Width returns the terminal width of f, or 80 when f is not a terminal.
func Width(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

// LinesFor is the number of rows textLength characters occupy at width.
func LinesFor(textLength, width int) int {
	if width <= 0 {
		width = 80
	}
	n := (textLength + width - 1) / width
	if n < 1 {
		n = 1
	}
	return n
}

// ClearPreviousLines erases the prompt and answer the user just typed,
// including the empty line left by Enter.
func ClearPreviousLines(w io.Writer, textLength, width int) {
	n := LinesFor(textLength, width) + 1
	for i := 0; i < n; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < n-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}

// Prompter reads answers from one input, sharing a buffer across prompts so
// piped input is consumed line by line.
type Prompter struct {
	in  *os.File
	out io.Writer
	r   *bufio.Reader
}

func NewPrompter(in *os.File, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, r: bufio.NewReader(in)}
}

// Ask writes prompt and reads one line. When the input is a terminal and
// secret is set, echo is disabled.
func (p *Prompter) Ask(prompt string, secret bool) (string, error) {
	fmt.Fprint(p.out, prompt)
	if secret && IsInteractive(p.in) {
		b, err := term.ReadPassword(int(p.in.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := p.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
