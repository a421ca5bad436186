// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package storage persists pulled snapshots as durable per-locale records.
//
// Layout, relative to a sink's root:
//
//	<bundle-id>/current/<locale>/metadata.json
//	<bundle-id>/current/summary.json
//
// The local disk sink is always written; an S3 or Azure Blob mirror may be
// added on top.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	rerrors "rosetta/cli/internal/errors"
	"rosetta/cli/internal/logging"
	"rosetta/cli/internal/pkg/json"
	"rosetta/cli/internal/snapshot"
)

// Sink stores opaque objects under slash-separated keys.
type Sink interface {
	Name() string
	Put(ctx context.Context, key string, data []byte) error
}

// LocaleRecord is written once per locale.
type LocaleRecord struct {
	Locale    string                  `json:"locale"`
	AppID     string                  `json:"appId"`
	Version   string                  `json:"version"`
	Timestamp time.Time               `json:"timestamp"`
	Data      snapshot.LocaleMetadata `json:"data"`
}

// Summary is the aggregate record for one pull.
type Summary struct {
	AppID            string            `json:"appId"`
	CurrentVersion   string            `json:"currentVersion"`
	DefaultLocale    string            `json:"defaultLocale"`
	AvailableLocales []string          `json:"availableLocales"`
	LastUpdate       time.Time         `json:"lastUpdate"`
	RunID            string            `json:"runId"`
	Snapshot         snapshot.Snapshot `json:"snapshot"`
}

// LocaleKey returns the record key for one locale.
func LocaleKey(appID, locale string) string {
	return path.Join(appID, "current", locale, "metadata.json")
}

// SummaryKey returns the aggregate record key.
func SummaryKey(appID string) string {
	return path.Join(appID, "current", "summary.json")
}

// Store fans records out to its sinks.
type Store struct {
	sinks  []Sink
	now    func() time.Time
	logger logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMirror adds a sink written after the primary one.
func WithMirror(s Sink) Option {
	return func(st *Store) {
		if s != nil {
			st.sinks = append(st.sinks, s)
		}
	}
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(st *Store) { st.now = now }
}

// WithLogger sets the logger used for mirror failures.
func WithLogger(l logging.Logger) Option {
	return func(st *Store) { st.logger = l }
}

// NewStore returns a store writing to primary and any mirrors.
func NewStore(primary Sink, opts ...Option) *Store {
	st := &Store{sinks: []Sink{primary}, now: time.Now, logger: logging.Nop}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Persist writes one record per locale (the union of the locale list and the
// metadata keys) plus the summary, to every sink. The first failure aborts
// with a StorageFault naming the sink and key.
func (s *Store) Persist(ctx context.Context, snap snapshot.Snapshot, runID string) error {
	objects, err := s.render(snap, runID)
	if err != nil {
		return err
	}
	for _, sink := range s.sinks {
		for _, obj := range objects {
			if err := ctx.Err(); err != nil {
				return rerrors.Wrap(rerrors.StorageFault, "persist cancelled", err)
			}
			if err := sink.Put(ctx, obj.key, obj.data); err != nil {
				return rerrors.Wrapf(rerrors.StorageFault, err, "write %s to %s", obj.key, sink.Name())
			}
		}
		s.logger.Debugf("stored %d records for %s in %s", len(objects), snap.AppID, sink.Name())
	}
	return nil
}

type object struct {
	key  string
	data []byte
}

func (s *Store) render(snap snapshot.Snapshot, runID string) ([]object, error) {
	if err := snapshot.ValidateIdentity(snap.AppID); err != nil {
		return nil, rerrors.Wrap(rerrors.StorageFault, "refusing to store snapshot", err)
	}
	ts := s.now().UTC()
	locales := snap.AllLocales()

	objects := make([]object, 0, len(locales)+1)
	for _, locale := range locales {
		if !safeSegment(locale) {
			return nil, rerrors.New(rerrors.StorageFault, fmt.Sprintf("locale %q cannot be used as a path segment", locale))
		}
		md, _ := snap.Metadata.Get(locale)
		data, err := json.MarshalIndent(LocaleRecord{
			Locale:    locale,
			AppID:     snap.AppID,
			Version:   snap.AppVersion,
			Timestamp: ts,
			Data:      md,
		}, "", "  ")
		if err != nil {
			return nil, rerrors.Wrapf(rerrors.StorageFault, err, "encode %s record", locale)
		}
		objects = append(objects, object{key: LocaleKey(snap.AppID, locale), data: data})
	}

	data, err := json.MarshalIndent(Summary{
		AppID:            snap.AppID,
		CurrentVersion:   snap.AppVersion,
		DefaultLocale:    snap.DefaultLocale,
		AvailableLocales: locales,
		LastUpdate:       ts,
		RunID:            runID,
		Snapshot:         snap,
	}, "", "  ")
	if err != nil {
		return nil, rerrors.Wrap(rerrors.StorageFault, "encode summary", err)
	}
	objects = append(objects, object{key: SummaryKey(snap.AppID), data: data})
	return objects, nil
}

func safeSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
