// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure surfaced by the pull pipeline carries a Kind so callers can tell
// a missing prerequisite from a flaky worker without re-running in debug mode.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// EnvironmentNotReady indicates the worker interpreter or its dependency bundle is missing.
	EnvironmentNotReady Kind = "environment_not_ready"
	// InvalidIdentity indicates a malformed application identity (bundle id).
	InvalidIdentity Kind = "invalid_identity"
	// InvalidOptions indicates pull options that cannot be honoured.
	InvalidOptions Kind = "invalid_options"
	// AccessDenied indicates the access check against the remote service failed.
	AccessDenied Kind = "access_denied"
	// ProcessFault indicates the worker could not be spawned or exited non-zero.
	ProcessFault Kind = "process_fault"
	// ProtocolFault indicates the worker output was not a valid envelope.
	ProtocolFault Kind = "protocol_fault"
	// WorkerFailure indicates the worker reported a business error.
	WorkerFailure Kind = "worker_failure"
	// Exhausted indicates every retry attempt failed.
	Exhausted Kind = "exhausted"
	// CacheCorrupt indicates an unreadable cache entry. It never escapes the cache layer.
	CacheCorrupt Kind = "cache_corrupt"
	// StorageFault indicates a durable write failed after a successful fetch.
	StorageFault Kind = "storage_fault"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Wrapf is Wrap with a formatted message.
func Wrapf(kind Kind, err error, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost *E in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether any *E in err's chain has the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *E
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
