// Package db provides a pgxpool-based connection pool with schema bootstrap,
// prepared statement registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/footy-data/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Schema first: prepared statements reference the snapshot table.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if err := ensureSchema(ctx, conn); err != nil {
			return err
		}
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// schema is idempotent and runs on every new connection.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + config.SnapshotsTable + ` (
		id          BIGSERIAL PRIMARY KEY,
		query_key   TEXT        NOT NULL,
		dataset     TEXT        NOT NULL,
		source      TEXT        NOT NULL,
		etag        TEXT        NOT NULL,
		row_count   INTEGER     NOT NULL,
		payload     JSONB       NOT NULL,
		fetched_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (query_key, etag)
	)`,
	`CREATE INDEX IF NOT EXISTS dataset_snapshots_key_fetched_idx
		ON ` + config.SnapshotsTable + ` (query_key, fetched_at DESC)`,
}

func ensureSchema(ctx context.Context, conn *pgx.Conn) error {
	for _, stmt := range schema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// registerPreparedStatements registers all statements the API and CLI use.
// Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Snapshots: identical payloads for a query only refresh fetched_at
		"snapshot_insert": `INSERT INTO ` + config.SnapshotsTable + ` (query_key, dataset, source, etag, row_count, payload)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (query_key, etag) DO UPDATE SET fetched_at = NOW()`,
		"snapshot_latest": `SELECT payload, fetched_at FROM ` + config.SnapshotsTable + `
			WHERE query_key = $1 ORDER BY fetched_at DESC LIMIT 1`,

		// Snapshots: drop rows older than $1 days unless they are the newest for their key
		"snapshot_prune": `DELETE FROM ` + config.SnapshotsTable + ` s
			WHERE s.fetched_at < NOW() - make_interval(days => $1::int)
			  AND EXISTS (
				SELECT 1 FROM ` + config.SnapshotsTable + ` n
				WHERE n.query_key = s.query_key AND n.fetched_at > s.fetched_at
			  )`,
		"snapshot_stats": `SELECT COUNT(*), COUNT(DISTINCT query_key), MAX(fetched_at) FROM ` + config.SnapshotsTable,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
