// Package snapshot persists the last good frame per query in Postgres so the
// API can serve stale data when an upstream is down.
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/footy-data/internal/cache"
	"github.com/albapepper/footy-data/internal/footy"
	"github.com/albapepper/footy-data/internal/frame"
)

// ErrNotFound is returned by Latest when no snapshot exists for the query.
var ErrNotFound = errors.New("snapshot not found")

// Querier is the subset of pgxpool.Pool the store uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Snapshot is a persisted frame and when it was fetched.
type Snapshot struct {
	Frame     *frame.Frame
	FetchedAt time.Time
}

// Stats summarises the snapshot table.
type Stats struct {
	Rows     int64      `json:"rows"`
	Keys     int64      `json:"keys"`
	NewestAt *time.Time `json:"newest_at,omitempty"`
}

// Store reads and writes snapshots through the prepared statements
// registered by package db.
type Store struct {
	q Querier
}

func NewStore(q Querier) *Store {
	return &Store{q: q}
}

// Save stores f as the latest snapshot for q.
func (s *Store) Save(ctx context.Context, q footy.Query, f *frame.Frame) error {
	payload, err := frame.MarshalTable(f)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, "snapshot_insert",
		q.Key(), string(q.Dataset), q.Source, cache.ComputeETag(payload), f.NRow(), payload)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", q.Key(), err)
	}
	return nil
}

// Latest returns the newest snapshot for q, or ErrNotFound.
func (s *Store) Latest(ctx context.Context, q footy.Query) (*Snapshot, error) {
	var (
		payload   []byte
		fetchedAt time.Time
	)
	err := s.q.QueryRow(ctx, "snapshot_latest", q.Key()).Scan(&payload, &fetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", q.Key(), err)
	}

	f, err := frame.DecodeColumns(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", q.Key(), err)
	}
	return &Snapshot{Frame: f, FetchedAt: fetchedAt}, nil
}

// Prune deletes snapshots older than the retention window, keeping the newest
// row for every query. It returns the number of rows removed.
func (s *Store) Prune(ctx context.Context, retentionDays int) (int64, error) {
	tag, err := s.q.Exec(ctx, "snapshot_prune", retentionDays)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.q.QueryRow(ctx, "snapshot_stats").Scan(&st.Rows, &st.Keys, &st.NewestAt); err != nil {
		return st, fmt.Errorf("snapshot stats: %w", err)
	}
	return st, nil
}
