// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package bridge

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"rosetta/cli/internal/bridge/model"
	rerrors "rosetta/cli/internal/errors"
	"rosetta/cli/internal/logging"
)

const stderrTail = 5

// ExitError records a non-zero worker exit.
type ExitError struct {
	Function string
	Code     int
	Stderr   []string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("worker %s exited with code %d", e.Function, e.Code)
	if len(e.Stderr) > 0 {
		msg += " (stderr: " + strings.Join(e.Stderr, " | ") + ")"
	}
	return msg
}

// Client is the subprocess-per-call Bridge.
type Client struct {
	rt      *Runtime
	logger  logging.Logger
	env     []string
	stderr  func(string)
	observe Observer
	debug   bool
}

// NewClient creates a Client. rt must come from Setup.
func NewClient(rt *Runtime, opts ...Option) *Client {
	c := &Client{rt: rt, logger: logging.Nop}
	for _, opt := range opts {
		opt(c)
	}
	if c.stderr == nil {
		c.stderr = func(line string) {
			c.logger.Debugf("worker: %s", logging.Mask(line))
		}
	}
	return c
}

// Invoke runs function in a fresh worker process. Spawn failures, non-zero exits
// and context expiry are ProcessFault; unparseable output is ProtocolFault. A
// worker-reported error is returned as a failure Outcome with a nil error.
func (c *Client) Invoke(ctx context.Context, function string, args any) (model.Outcome, error) {
	req, err := model.NewRequest(function, args)
	if err != nil {
		return model.Outcome{}, err
	}
	script, err := model.Script(c.rt.ModuleURL(Route(function)), req)
	if err != nil {
		return model.Outcome{}, rerrors.Wrap(rerrors.InvalidOptions, "render worker script", err)
	}

	start := time.Now()
	stdout, err := c.run(ctx, function, script)
	var out model.Outcome
	if err == nil {
		if c.debug {
			c.logger.Debugf("worker %s raw response: %s", function, logging.Mask(string(bytes.TrimSpace(stdout))))
		}
		out, err = model.Decode(stdout)
	}
	if c.observe != nil {
		c.observe(function, time.Since(start), outcomeLabel(out, err))
	}
	return out, err
}

func (c *Client) run(ctx context.Context, function, script string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.rt.interpreter, c.rt.args...)
	cmd.Dir = c.rt.dir
	cmd.Env = append(os.Environ(), c.env...)
	cmd.Stdin = strings.NewReader(script)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, rerrors.Wrap(rerrors.ProcessFault, "open worker stdout", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, rerrors.Wrap(rerrors.ProcessFault, "open worker stderr", err)
	}
	// CommandContext only kills the direct child. A grandchild that inherited
	// the pipes would keep the drains below blocked, so expiry also closes our
	// read ends. The grandchild itself is left running.
	cmd.Cancel = func() error {
		stdoutPipe.Close()
		stderrPipe.Close()
		return cmd.Process.Kill()
	}
	if err := cmd.Start(); err != nil {
		return nil, rerrors.Wrapf(rerrors.ProcessFault, err, "spawn worker for %s", function)
	}

	// Both pipes must be drained before Wait; a worker blocked on a full
	// stderr pipe never closes stdout.
	var stdout bytes.Buffer
	var tail []string
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&stdout, stdoutPipe)
		return err
	})
	g.Go(func() error {
		return forwardLines(stderrPipe, func(line string) {
			c.stderr(line)
			tail = append(tail, line)
			if len(tail) > stderrTail {
				tail = tail[1:]
			}
		})
	})
	drainErr := g.Wait()
	waitErr := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, rerrors.Wrapf(rerrors.ProcessFault, ctxErr, "worker %s did not finish", function)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return nil, rerrors.Wrap(rerrors.ProcessFault, "worker exited abnormally",
				&ExitError{Function: function, Code: exitErr.ExitCode(), Stderr: tail})
		}
		return nil, rerrors.Wrapf(rerrors.ProcessFault, waitErr, "wait for worker %s", function)
	}
	if drainErr != nil {
		return nil, rerrors.Wrapf(rerrors.ProcessFault, drainErr, "read worker %s output", function)
	}
	return stdout.Bytes(), nil
}

// forwardLines calls fn for every line as it arrives. It reads until EOF
// regardless of line length.
func forwardLines(r io.Reader, fn func(string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			fn(strings.TrimRight(line, "\r\n"))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func outcomeLabel(out model.Outcome, err error) string {
	switch {
	case err != nil:
		return string(rerrors.KindOf(err))
	case out.Success:
		return "success"
	default:
		return string(rerrors.WorkerFailure)
	}
}
