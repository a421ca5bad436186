// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"fmt"
	"time"

	rerrors "rosetta/cli/internal/errors"
	"rosetta/cli/internal/export"
)

// DefaultRetryCount is the fetch attempt bound when none is configured.
const DefaultRetryCount = 3

// Options configure one pull. They are not modified by Run.
type Options struct {
	ForceRefresh   bool
	RetryCount     int
	OutputFormat   export.Format
	ExportPath     string
	LocaleFilter   []string
	AttemptTimeout time.Duration
}

// Validate rejects options Run cannot honour.
func (o Options) Validate() error {
	if o.RetryCount < 1 {
		return rerrors.New(rerrors.InvalidOptions, fmt.Sprintf("retry count must be at least 1, got %d", o.RetryCount))
	}
	if o.AttemptTimeout < 0 {
		return rerrors.New(rerrors.InvalidOptions, "attempt timeout cannot be negative")
	}
	if _, err := export.ParseFormat(string(o.OutputFormat)); err != nil {
		return rerrors.Wrap(rerrors.InvalidOptions, "output format", err)
	}
	return nil
}
