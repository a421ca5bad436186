// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package estimate asks the AI worker module what translating a snapshot
// into other locales would cost.
package estimate

import (
	"context"
	"slices"

	"rosetta/cli/internal/bridge"
	rerrors "rosetta/cli/internal/errors"
	"rosetta/cli/internal/pkg/json"
	"rosetta/cli/internal/snapshot"
)

// FnEstimateCost is the worker function called by Fetch.
const FnEstimateCost = "ai_estimate_cost"

// Request is the batch the worker prices.
type Request struct {
	Metadata      snapshot.LocaleMetadata `json:"metadata"`
	SourceLocale  string                  `json:"sourceLocale"`
	TargetLocales []string                `json:"targetLocales"`
}

// Estimate is the worker's answer.
type Estimate struct {
	EstimatedCost float64 `json:"estimatedCost"`
	TokenEstimate int     `json:"tokenEstimate"`
}

// NewRequest prices the source locale of snap for targets. With no targets
// every other locale in snap is used. The source locale is never a target.
func NewRequest(snap snapshot.Snapshot, source string, targets []string) (Request, error) {
	if source == "" {
		source = snap.DefaultLocale
	}
	md, ok := snap.Metadata.Get(source)
	if !ok {
		return Request{}, rerrors.New(rerrors.InvalidOptions, "no metadata for source locale "+source)
	}
	if len(targets) == 0 {
		targets = snap.AllLocales()
	}
	req := Request{Metadata: md, SourceLocale: source}
	for _, t := range targets {
		if t != source && !slices.Contains(req.TargetLocales, t) {
			req.TargetLocales = append(req.TargetLocales, t)
		}
	}
	if len(req.TargetLocales) == 0 {
		return Request{}, rerrors.New(rerrors.InvalidOptions, "no target locales to estimate")
	}
	return req, nil
}

// Fetch calls the worker.
func Fetch(ctx context.Context, b bridge.Bridge, req Request) (Estimate, error) {
	out, err := b.Invoke(ctx, FnEstimateCost, req)
	if err != nil {
		return Estimate{}, err
	}
	if err := out.Err(); err != nil {
		return Estimate{}, err
	}
	if out.IsNull() {
		return Estimate{}, rerrors.New(rerrors.ProtocolFault, "worker returned no estimate")
	}
	var e Estimate
	if err := json.Unmarshal(out.Data, &e); err != nil {
		return Estimate{}, rerrors.Wrap(rerrors.ProtocolFault, "decode cost estimate", err)
	}
	return e, nil
}
