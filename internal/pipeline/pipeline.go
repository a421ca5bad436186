// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package pipeline implements the pull: validate the bundle id, serve a fresh
// cache entry if there is one, otherwise verify access, fetch with retries,
// filter locales and persist the result.
//
// The states are linear:
//
//	validate -> cache hit -> done
//	validate -> cache miss -> verify -> fetch -> filter -> persist -> done
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rosetta/cli/internal/bridge"
	"rosetta/cli/internal/bridge/model"
	rerrors "rosetta/cli/internal/errors"
	"rosetta/cli/internal/export"
	"rosetta/cli/internal/logging"
	"rosetta/cli/internal/pkg/json"
	"rosetta/cli/internal/retry"
	"rosetta/cli/internal/snapshot"
)

// Worker functions used by the pull.
const (
	FnVerifyAccess = "asc_get_version_status"
	FnDownload     = "asc_download"
)

// Stage names a pipeline step for progress reporting.
type Stage string

const (
	StageValidate Stage = "validate"
	StageCache    Stage = "cache"
	StageVerify   Stage = "verify"
	StageFetch    Stage = "fetch"
	StageFilter   Stage = "filter"
	StagePersist  Stage = "persist"
	StageArchive  Stage = "archive"
	StageExport   Stage = "export"
)

// Reporter receives stage transitions and fetch retry progress.
type Reporter interface {
	retry.Progress
	Stage(stage Stage, detail string)
}

// Cache is the snapshot cache consulted before fetching.
type Cache interface {
	Read(identity string) (snapshot.Snapshot, bool)
	Write(identity string, snap snapshot.Snapshot) error
}

// Persister writes durable per-locale records.
type Persister interface {
	Persist(ctx context.Context, snap snapshot.Snapshot, runID string) error
}

// Archiver records fetched snapshots; optional.
type Archiver interface {
	Record(ctx context.Context, snap snapshot.Snapshot, runID string) error
}

// Result is the outcome of a pull.
type Result struct {
	RunID     string
	Snapshot  snapshot.Snapshot
	FromCache bool
	Attempts  int
	Elapsed   time.Duration
	// ExportedTo is the export path when one was written.
	ExportedTo string
}

// Pipeline runs pulls. It is safe to reuse across runs for different bundle ids.
type Pipeline struct {
	bridge    bridge.Bridge
	cache     Cache
	store     Persister
	archive   Archiver
	logger    logging.Logger
	reporter  Reporter
	retryOpts []retry.Option
	newRunID  func() string
	now       func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l logging.Logger) Option { return func(p *Pipeline) { p.logger = l } }

// WithReporter receives stage and retry progress.
func WithReporter(r Reporter) Option { return func(p *Pipeline) { p.reporter = r } }

// WithArchive records every fetched snapshot in a.
func WithArchive(a Archiver) Option { return func(p *Pipeline) { p.archive = a } }

// WithRetryOptions passes options to the fetch retry coordinator.
func WithRetryOptions(opts ...retry.Option) Option {
	return func(p *Pipeline) { p.retryOpts = append(p.retryOpts, opts...) }
}

// WithRunID replaces the UUID run id generator.
func WithRunID(fn func() string) Option { return func(p *Pipeline) { p.newRunID = fn } }

// New builds a pipeline over its collaborators.
func New(b bridge.Bridge, cache Cache, store Persister, opts ...Option) *Pipeline {
	p := &Pipeline{
		bridge:   b,
		cache:    cache,
		store:    store,
		logger:   logging.Nop,
		reporter: nopReporter{},
		newRunID: uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one pull for identity.
//
// A StorageFault from persistence or archiving is returned together with a
// non-nil Result: the fetched snapshot is valid and callers should still show it.
func (p *Pipeline) Run(ctx context.Context, identity string, opts Options) (*Result, error) {
	start := p.now()
	if opts.RetryCount == 0 {
		opts.RetryCount = DefaultRetryCount
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	p.reporter.Stage(StageValidate, identity)
	if err := snapshot.ValidateIdentity(identity); err != nil {
		return nil, err
	}

	res := &Result{RunID: p.newRunID()}
	finish := func(err error) (*Result, error) {
		res.Elapsed = p.now().Sub(start)
		return res, err
	}

	if !opts.ForceRefresh {
		p.reporter.Stage(StageCache, identity)
		if snap, ok := p.cache.Read(identity); ok {
			p.logger.Debugf("serving %s from cache", identity)
			res.FromCache = true
			res.Snapshot = snap.FilterLocales(opts.LocaleFilter)
			return finish(p.export(res, opts))
		}
	}

	if err := p.verifyAccess(ctx, identity, opts.AttemptTimeout); err != nil {
		return nil, err
	}

	snap, attempts, err := p.fetch(ctx, identity, opts)
	res.Attempts = attempts
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", identity, err)
	}

	p.reporter.Stage(StageFilter, fmt.Sprintf("%d locales", len(snap.AllLocales())))
	res.Snapshot = snap.FilterLocales(opts.LocaleFilter)

	if err := p.persist(ctx, identity, res); err != nil {
		return finish(err)
	}
	return finish(p.export(res, opts))
}

func (p *Pipeline) verifyAccess(ctx context.Context, identity string, timeout time.Duration) error {
	p.reporter.Stage(StageVerify, identity)
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	out, err := p.bridge.Invoke(ctx, FnVerifyAccess, identity)
	if err == nil {
		err = out.Err()
	}
	if err != nil {
		return rerrors.Wrapf(rerrors.AccessDenied, err, "cannot access %s", identity)
	}
	return nil
}

func (p *Pipeline) fetch(ctx context.Context, identity string, opts Options) (snapshot.Snapshot, int, error) {
	p.reporter.Stage(StageFetch, identity)
	coordinator := retry.New(append([]retry.Option{retry.WithProgress(p.reporter)}, p.retryOpts...)...)

	attempts := 0
	snap, err := retry.Value(ctx, coordinator, opts.RetryCount, func(ctx context.Context, attempt int) (snapshot.Snapshot, error) {
		attempts = attempt
		ctx, cancel := withTimeout(ctx, opts.AttemptTimeout)
		defer cancel()

		out, err := p.bridge.Invoke(ctx, FnDownload, identity)
		if err != nil {
			return snapshot.Snapshot{}, err
		}
		return decodeSnapshot(identity, out)
	})
	return snap, attempts, err
}

func decodeSnapshot(identity string, out model.Outcome) (snapshot.Snapshot, error) {
	if err := out.Err(); err != nil {
		return snapshot.Snapshot{}, err
	}
	if out.IsNull() {
		return snapshot.Snapshot{}, rerrors.New(rerrors.ProtocolFault, "worker returned no snapshot")
	}
	var snap snapshot.Snapshot
	if err := json.Unmarshal(out.Data, &snap); err != nil {
		return snapshot.Snapshot{}, rerrors.Wrap(rerrors.ProtocolFault, "decode snapshot", err)
	}
	if snap.AppID == "" {
		snap.AppID = identity
	}
	if snap.AppID != identity {
		return snapshot.Snapshot{}, rerrors.New(rerrors.ProtocolFault,
			fmt.Sprintf("worker returned snapshot for %s, expected %s", snap.AppID, identity))
	}
	return snap, nil
}

func (p *Pipeline) persist(ctx context.Context, identity string, res *Result) error {
	p.reporter.Stage(StagePersist, identity)
	if err := p.cache.Write(identity, res.Snapshot); err != nil {
		p.logger.Warnf("cache not updated: %v", err)
	}
	if err := p.store.Persist(ctx, res.Snapshot, res.RunID); err != nil {
		return fmt.Errorf("persist %s: %w", identity, err)
	}
	if p.archive != nil {
		p.reporter.Stage(StageArchive, res.RunID)
		if err := p.archive.Record(ctx, res.Snapshot, res.RunID); err != nil {
			return fmt.Errorf("archive %s: %w", identity, err)
		}
	}
	return nil
}

func (p *Pipeline) export(res *Result, opts Options) error {
	if opts.ExportPath == "" {
		return nil
	}
	p.reporter.Stage(StageExport, opts.ExportPath)
	if err := export.ToFile(opts.ExportPath, opts.OutputFormat, res.Snapshot); err != nil {
		return rerrors.Wrap(rerrors.StorageFault, "export", err)
	}
	res.ExportedTo = opts.ExportPath
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

type nopReporter struct{}

func (nopReporter) Stage(Stage, string)    {}
func (nopReporter) Attempt(int, int)       {}
func (nopReporter) Failed(int, int, error) {}
func (nopReporter) Succeeded(int, int)     {}
func (nopReporter) Exhausted(int, error)   {}
