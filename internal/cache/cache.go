// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cache keeps the last successful pull per bundle id on disk.
// An entry is fresh while its file modification time is within the TTL.
// Missing, stale and unparseable entries all read as a miss.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	rerrors "rosetta/cli/internal/errors"
	"rosetta/cli/internal/logging"
	"rosetta/cli/internal/pkg/fsutil"
	"rosetta/cli/internal/pkg/json"
	"rosetta/cli/internal/snapshot"
)

// DefaultTTL is how long a pulled snapshot is served without refetching.
const DefaultTTL = time.Hour

const fileName = "pull_cache.json"

// Lookup results passed to the observer.
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultExpired = "expired"
	ResultCorrupt = "corrupt"
)

// Store is a file-per-identity snapshot cache rooted at a directory.
type Store struct {
	root    string
	ttl     time.Duration
	now     func() time.Time
	logger  logging.Logger
	observe func(result string)
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets how long an entry stays fresh.
func WithTTL(ttl time.Duration) Option { return func(s *Store) { s.ttl = ttl } }

// WithClock replaces time.Now for freshness checks.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithLogger sets the cache logger.
func WithLogger(l logging.Logger) Option { return func(s *Store) { s.logger = l } }

// WithObserver receives the outcome of every lookup: hit, miss, expired or corrupt.
func WithObserver(fn func(string)) Option { return func(s *Store) { s.observe = fn } }

// New returns a store under root. The directory is created lazily on first write.
func New(root string, opts ...Option) *Store {
	s := &Store{root: root, ttl: DefaultTTL, now: time.Now, logger: logging.Nop}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the cache root directory.
func (s *Store) Root() string { return s.root }

// Path returns the entry file for identity.
func (s *Store) Path(identity string) string {
	return filepath.Join(s.root, identity, fileName)
}

// Read returns the cached snapshot for identity if a fresh, parseable entry exists.
func (s *Store) Read(identity string) (snapshot.Snapshot, bool) {
	if snapshot.ValidateIdentity(identity) != nil {
		s.record(ResultMiss)
		return snapshot.Snapshot{}, false
	}
	path := s.Path(identity)

	st, err := os.Stat(path)
	if err != nil {
		s.record(ResultMiss)
		return snapshot.Snapshot{}, false
	}
	if age := s.now().Sub(st.ModTime()); age > s.ttl {
		s.logger.Debugf("cache entry for %s expired (%s old)", identity, age.Round(time.Second))
		s.record(ResultExpired)
		return snapshot.Snapshot{}, false
	}

	snap, err := decode(path)
	if err != nil {
		s.logger.Debugf("ignoring cache entry: %v", err)
		s.record(ResultCorrupt)
		return snapshot.Snapshot{}, false
	}
	s.record(ResultHit)
	return snap, true
}

// Write atomically replaces the entry for identity.
func (s *Store) Write(identity string, snap snapshot.Snapshot) error {
	if err := snapshot.ValidateIdentity(identity); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry for %s: %w", identity, err)
	}
	if err := fsutil.WriteFileAtomic(s.Path(identity), data, 0o644); err != nil {
		return fmt.Errorf("write cache entry for %s: %w", identity, err)
	}
	return nil
}

// Clear removes the entry for identity. A missing entry is not an error.
func (s *Store) Clear(identity string) error {
	if err := snapshot.ValidateIdentity(identity); err != nil {
		return err
	}
	if err := os.Remove(s.Path(identity)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear cache entry for %s: %w", identity, err)
	}
	return nil
}

// Entry describes the on-disk state of one cache entry.
type Entry struct {
	Path      string
	Exists    bool
	WrittenAt time.Time
	Age       time.Duration
	Fresh     bool
	Valid     bool
	Locales   int
	Version   string
}

// Status inspects the entry for identity without treating problems as errors.
func (s *Store) Status(identity string) (Entry, error) {
	if err := snapshot.ValidateIdentity(identity); err != nil {
		return Entry{}, err
	}
	e := Entry{Path: s.Path(identity)}
	st, err := os.Stat(e.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return e, nil
	}
	if err != nil {
		return e, fmt.Errorf("stat cache entry: %w", err)
	}
	e.Exists = true
	e.WrittenAt = st.ModTime()
	e.Age = s.now().Sub(e.WrittenAt)
	e.Fresh = e.Age <= s.ttl
	if snap, err := decode(e.Path); err == nil {
		e.Valid = true
		e.Locales = len(snap.AllLocales())
		e.Version = snap.AppVersion
	}
	return e, nil
}

func (s *Store) record(result string) {
	if s.observe != nil {
		s.observe(result)
	}
}

func decode(path string) (snapshot.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot.Snapshot{}, rerrors.Wrap(rerrors.CacheCorrupt, "read "+path, err)
	}
	var snap snapshot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return snapshot.Snapshot{}, rerrors.Wrap(rerrors.CacheCorrupt, "parse "+path, err)
	}
	if snap.AppID == "" {
		return snapshot.Snapshot{}, rerrors.New(rerrors.CacheCorrupt, path+" has no appId")
	}
	return snap, nil
}
