// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package bridge

import (
	"time"

	"rosetta/cli/internal/logging"
)

// Observer is notified once per finished invocation.
type Observer func(function string, elapsed time.Duration, outcome string)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for stderr forwarding and raw responses.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithEnv appends KEY=VALUE pairs to the worker environment.
func WithEnv(env ...string) Option {
	return func(c *Client) {
		c.env = append(c.env, env...)
	}
}

// WithStderr replaces the default stderr line sink.
func WithStderr(fn func(line string)) Option {
	return func(c *Client) {
		c.stderr = fn
	}
}

// WithObserver registers a callback for call metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observe = o
	}
}

// WithDebug logs the raw worker response at debug level.
func WithDebug(on bool) Option {
	return func(c *Client) {
		c.debug = on
	}
}
