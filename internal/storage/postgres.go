package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pfrederiksen/ff-events/internal/event"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS calendar_events (
	position       INTEGER     NOT NULL PRIMARY KEY,
	row_id         TEXT        NOT NULL,
	event_time_utc TIMESTAMPTZ NOT NULL,
	currency       CHAR(3)     NOT NULL,
	impact         TEXT        NOT NULL,
	title          TEXT        NOT NULL
);
CREATE TABLE IF NOT EXISTS calendar_snapshot (
	id         BOOLEAN     NOT NULL PRIMARY KEY DEFAULT TRUE CHECK (id),
	updated_at TIMESTAMPTZ NOT NULL
);`

// PostgresStore keeps the snapshot in Postgres
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool for dsn, verifies it and creates the tables
func ConnectPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	poolCfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Load reads the snapshot in discovery order. Both reads share one
// repeatable-read transaction so the stamp and events belong together.
func (s *PostgresStore) Load(ctx context.Context) (*event.Snapshot, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck // read-only

	var updatedAt time.Time
	err = tx.QueryRow(ctx, `SELECT updated_at FROM calendar_snapshot WHERE id`).Scan(&updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT row_id, event_time_utc, currency, impact, title
		FROM calendar_events
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := make([]*event.Event, 0)
	for rows.Next() {
		var evt event.Event
		if err := rows.Scan(&evt.ID, &evt.TimeUTC, &evt.Currency, &evt.Impact, &evt.Title); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.TimeUTC = evt.TimeUTC.UTC()
		events = append(events, &evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return event.NewSnapshot(events, updatedAt), nil
}

// Replace swaps the stored events for the snapshot in a single transaction
func (s *PostgresStore) Replace(ctx context.Context, snapshot *event.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM calendar_events`); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}

	rows := make([][]any, 0, len(snapshot.Events))
	for i, evt := range snapshot.Events {
		rows = append(rows, []any{i, evt.ID, evt.TimeUTC.UTC(), evt.Currency, evt.Impact, evt.Title})
	}
	if len(rows) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"calendar_events"},
			[]string{"position", "row_id", "event_time_utc", "currency", "impact", "title"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copy events: %w", err)
		}
	}

	updatedAt := snapshot.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO calendar_snapshot (id, updated_at) VALUES (TRUE, $1)
		ON CONFLICT (id) DO UPDATE SET updated_at = EXCLUDED.updated_at`, updatedAt); err != nil {
		return fmt.Errorf("stamp snapshot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
