// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package archive records every fetched snapshot in PostgreSQL so earlier
// pulls can be listed and compared. It is optional: nothing is opened unless
// an archive DSN is configured.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	rerrors "rosetta/cli/internal/errors"
	"rosetta/cli/internal/logging"
	"rosetta/cli/internal/pkg/json"
	"rosetta/cli/internal/snapshot"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS rosetta_snapshots (
		id          bigserial PRIMARY KEY,
		app_id      text        NOT NULL,
		run_id      uuid        NOT NULL UNIQUE,
		app_version text        NOT NULL DEFAULT '',
		fetched_at  timestamptz NOT NULL,
		locales     text[]      NOT NULL,
		payload     jsonb       NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS rosetta_snapshots_app_fetched
		ON rosetta_snapshots (app_id, fetched_at DESC)`,
}

// Entry is one archived pull.
type Entry struct {
	RunID     string
	AppID     string
	Version   string
	FetchedAt time.Time
	Locales   []string
}

// Archive writes to and reads from the rosetta_snapshots table.
type Archive struct {
	pool   *pgxpool.Pool
	now    func() time.Time
	logger logging.Logger
}

// Open connects, verifies the connection and creates the schema if needed.
func Open(ctx context.Context, rawDSN string, logger logging.Logger) (*Archive, error) {
	dsn, err := NormalizeDSN(rawDSN)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %s: %w", logging.Mask(dsn), err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to archive: %w", err)
	}
	a := New(pool, logger)
	if err := a.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool, logger logging.Logger) *Archive {
	if logger == nil {
		logger = logging.Nop
	}
	return &Archive{pool: pool, now: time.Now, logger: logger}
}

func (a *Archive) Close() { a.pool.Close() }

// EnsureSchema creates the archive table and index when missing.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := a.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create archive schema: %w", err)
		}
	}
	return nil
}

// Record stores snap under runID. Failures are StorageFault.
func (a *Archive) Record(ctx context.Context, snap snapshot.Snapshot, runID string) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return rerrors.Wrap(rerrors.StorageFault, "encode snapshot for archive", err)
	}

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return rerrors.Wrap(rerrors.StorageFault, "begin archive transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO rosetta_snapshots (app_id, run_id, app_version, fetched_at, locales, payload)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		snap.AppID, runID, snap.AppVersion, a.now().UTC(), snap.AllLocales(), payload)
	if err != nil {
		return rerrors.Wrapf(rerrors.StorageFault, err, "archive snapshot %s", runID)
	}
	if err := tx.Commit(ctx); err != nil {
		return rerrors.Wrap(rerrors.StorageFault, "commit archive transaction", err)
	}
	a.logger.Debugf("archived run %s for %s", runID, snap.AppID)
	return nil
}

// History lists archived pulls for appID, newest first.
func (a *Archive) History(ctx context.Context, appID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.pool.Query(ctx,
		`SELECT run_id::text, app_id, app_version, fetched_at, locales
		   FROM rosetta_snapshots
		  WHERE app_id = $1
		  ORDER BY fetched_at DESC
		  LIMIT $2`, appID, limit)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.RunID, &e.AppID, &e.Version, &e.FetchedAt, &e.Locales)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("read archive rows: %w", err)
	}
	return entries, nil
}

// Load returns the snapshot archived under runID.
func (a *Archive) Load(ctx context.Context, runID string) (snapshot.Snapshot, error) {
	var payload []byte
	err := a.pool.QueryRow(ctx,
		`SELECT payload FROM rosetta_snapshots WHERE run_id = $1`, runID).Scan(&payload)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("load archived run %s: %w", runID, err)
	}
	var snap snapshot.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("decode archived run %s: %w", runID, err)
	}
	return snap, nil
}
