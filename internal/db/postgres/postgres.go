// Package postgres opens the catalog database through the pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/trebound/catalog-search/internal/db"
)

// Compile-time check: DB implements db.Pinger.
var _ db.Pinger = (*DB)(nil)

// Config holds connection parameters for the catalog database.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB wraps a *sql.DB backed by pgx.
type DB struct {
	sql *sql.DB
}

// Open creates a connection pool. It does not dial; use WaitForReady or Ping.
func Open(cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("dsn is required")
	}

	sqlDB, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &DB{sql: sqlDB}, nil
}

// New wraps an existing handle, e.g. one created by sqlmock.
func New(sqlDB *sql.DB) *DB {
	return &DB{sql: sqlDB}
}

// SQL returns the underlying handle.
func (d *DB) SQL() *sql.DB { return d.sql }

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.sql.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (d *DB) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, d, timeout)
}

// Close closes the pool.
func (d *DB) Close() {
	_ = d.sql.Close()
}
