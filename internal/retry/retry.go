// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package retry runs an operation a bounded number of times with exponential
// backoff between attempts, reporting every step to a Progress sink.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	rerrors "rosetta/cli/internal/errors"
)

// DefaultBase is the delay before attempt 2; it doubles for every later attempt.
const DefaultBase = time.Second

// PermanentError marks a failure that must not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return fmt.Sprintf("permanent: %v", e.Err) }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so the coordinator stops immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Progress receives attempt lifecycle events. Attempts are numbered from 1.
type Progress interface {
	Attempt(attempt, total int)
	Failed(attempt, total int, err error)
	Succeeded(attempt, total int)
	Exhausted(total int, err error)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Coordinator retries operations. The zero value is not usable; call New.
type Coordinator struct {
	base     time.Duration
	sleep    Sleeper
	progress Progress
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithBase sets the delay before attempt 2.
func WithBase(d time.Duration) Option {
	return func(c *Coordinator) { c.base = d }
}

// WithSleeper replaces the timer-based sleep.
func WithSleeper(s Sleeper) Option {
	return func(c *Coordinator) { c.sleep = s }
}

// WithProgress sets the progress sink.
func WithProgress(p Progress) Option {
	return func(c *Coordinator) { c.progress = p }
}

// New returns a coordinator with a one second base delay and no progress output.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{base: DefaultBase, sleep: sleepContext, progress: nopProgress{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backoff returns the wait before attempt: zero for the first, then
// base, 2*base, 4*base and so on.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	shift := attempt - 2
	if shift > 30 {
		shift = 30
	}
	return base << shift
}

// Do calls fn until it succeeds, returns a permanent error, or maxAttempts
// attempts have failed. Exhaustion yields an Exhausted error wrapping the last
// failure. No sleep follows the final attempt.
func (c *Coordinator) Do(ctx context.Context, maxAttempts int, fn func(ctx context.Context, attempt int) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if wait := Backoff(c.base, attempt); wait > 0 {
			if err := c.sleep(ctx, wait); err != nil {
				return fmt.Errorf("retry cancelled before attempt %d: %w", attempt, err)
			}
		}

		c.progress.Attempt(attempt, maxAttempts)
		err := fn(ctx, attempt)
		if err == nil {
			c.progress.Succeeded(attempt, maxAttempts)
			return nil
		}
		lastErr = err
		c.progress.Failed(attempt, maxAttempts, err)

		var pe *PermanentError
		if errors.As(err, &pe) {
			return pe.Err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled after attempt %d: %w", attempt, errors.Join(ctx.Err(), err))
		}
	}

	c.progress.Exhausted(maxAttempts, lastErr)
	return rerrors.Wrapf(rerrors.Exhausted, lastErr, "failed after %d attempts", maxAttempts)
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, c *Coordinator, maxAttempts int, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var result T
	err := c.Do(ctx, maxAttempts, func(ctx context.Context, attempt int) error {
		v, err := fn(ctx, attempt)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type nopProgress struct{}

func (nopProgress) Attempt(int, int)       {}
func (nopProgress) Failed(int, int, error) {}
func (nopProgress) Succeeded(int, int)     {}
func (nopProgress) Exhausted(int, error)   {}
