package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/duckdb/duckdb-go/v2"
)

// ErrBadAttribute is returned when a caller-supplied attribute or fuel name
// is not on the allow-list for the query it was used with.
var ErrBadAttribute = errors.New("telemetry: attribute not allowed")

// DB is a read-only handle over the telemetry file. All query methods live
// here so the analytics process never holds a writable connection.
type DB struct {
	sql *sql.DB
	log *slog.Logger
}

// Store is the writer handle. It embeds DB so the ingestion process can
// serve read queries from the same connection.
type Store struct {
	DB
}

// Open opens the telemetry file for writing, creating it and applying the
// schema if needed. Only the ingestion process may call this; DuckDB allows
// a single writer per file.
func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open telemetry store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping telemetry store: %w", err)
	}
	s := &Store{DB: DB{sql: db, log: log}}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("telemetry store opened", "path", path)
	return s, nil
}

// OpenReadOnly opens an existing telemetry file with access_mode=read_only.
// Any write attempted through the returned handle fails inside DuckDB, which
// is the enforcement boundary between the two processes.
func OpenReadOnly(ctx context.Context, path string, log *slog.Logger) (*DB, error) {
	db, err := sql.Open("duckdb", path+"?access_mode=read_only")
	if err != nil {
		return nil, fmt.Errorf("open telemetry store read-only: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping telemetry store: %w", err)
	}
	log.Info("telemetry store opened read-only", "path", path)
	return &DB{sql: db, log: log}, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schemaDDL {
		if _, err := s.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply telemetry schema: %w", err)
		}
	}
	return nil
}

// Ping reports store liveness for health endpoints.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// Close releases the underlying database handle.
func (d *DB) Close() error {
	return d.sql.Close()
}
