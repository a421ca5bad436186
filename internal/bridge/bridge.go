// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package bridge runs worker functions in a short-lived external interpreter.
// Each Invoke spawns one process, feeds it a generated script on stdin,
// drains stdout and stderr concurrently, waits for exit and decodes the
// single JSON envelope the worker prints.
//
// Prerequisites are checked once by Setup, which returns the Runtime handle
// every Client is built from.
package bridge

import (
	"context"

	"rosetta/cli/internal/bridge/model"
)

// Bridge invokes one worker function with a JSON-encodable argument.
type Bridge interface {
	Invoke(ctx context.Context, function string, args any) (model.Outcome, error)
}

// New creates a process-backed bridge on top of a prepared runtime.
func New(rt *Runtime, opts ...Option) Bridge {
	return NewClient(rt, opts...)
}
