// Package database manages the PostgreSQL connection pool and the snapshot
// schema: entities, their transactions and their time-series rows.
package database

import (
	"context"
	"fmt"

	"github.com/asterfield/stocksnap/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect creates a connection pool from configuration and verifies it
// with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Store wraps the pool with schema bootstrap, snapshot truncation and a
// scoped transaction helper. It is constructed once in main and passed by
// reference to every component that needs relational access.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store over an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool exposes the underlying pool for components that need dedicated
// connections, such as the bulk loader.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Exec runs a single statement on a pooled connection.
func (s *Store) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.pool.Exec(ctx, sql, args...)
}

// Query runs a query on a pooled connection.
func (s *Store) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return s.pool.Query(ctx, sql, args...)
}

// QueryRow runs a single-row query on a pooled connection.
func (s *Store) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.pool.QueryRow(ctx, sql, args...)
}

// Bootstrap creates the three snapshot tables if they do not exist.
// Idempotent, safe to call on every startup.
func (s *Store) Bootstrap(ctx context.Context) error {
	for _, ddl := range schemaDDL {
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

// TruncateAll empties all three tables in one statement, restarting the
// timeseries identity sequence and cascading through the foreign keys.
// Must run before any reload of a new snapshot.
func (s *Store) TruncateAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, truncateAllSQL); err != nil {
		return fmt.Errorf("truncate snapshot: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction on a dedicated connection.
// The transaction commits when fn returns nil and rolls back otherwise;
// the connection is released on every exit path.
func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}
