// Package postgres provides a PostgreSQL-backed remote store that mirrors the
// in-memory semantics while persisting each collection bucket as JSONB after
// every committed write.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"agricore/internal/remote"
	"agricore/internal/remote/memory"
	"agricore/pkg/domain"
)

// Compile-time contract assertion.
var _ remote.Store = (*Store)(nil)

const (
	driverName = "pgx"
	defaultDSN = "postgres://localhost/agricore?sslmode=disable"
)

// sqlOpen is swapped out by tests to run against a stub driver.
var sqlOpen = sql.Open

// OverrideSQLOpen replaces the connection opener and returns a restore
// function.
func OverrideSQLOpen(open func(driver, dsn string) (*sql.DB, error)) func() {
	prev := sqlOpen
	sqlOpen = open
	return func() { sqlOpen = prev }
}

// Store layers JSONB bucket snapshots over the in-memory backend.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore connects using dsn (falling back to a local default), ensures the
// state table exists, and hydrates the in-memory state from any existing
// snapshot.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure state table: %w", err)
	}

	s := &Store{db: db}
	s.Store = memory.NewStore(memory.WithCommitHook(s.persistBucket))
	if err := s.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying handle for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database handle and shuts down the change hubs.
func (s *Store) Close() error {
	_ = s.Store.Close()
	return s.db.Close()
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	known := make(map[domain.CollectionName]struct{})
	for _, name := range memory.BucketNames() {
		known[name] = struct{}{}
	}
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan state: %w", err)
		}
		name := domain.CollectionName(bucket)
		if _, ok := known[name]; !ok {
			continue
		}
		if err := s.Store.ImportBucket(name, payload); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Store) persistBucket(ctx context.Context, name domain.CollectionName, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state (bucket, payload) VALUES ($1, $2)
		ON CONFLICT (bucket) DO UPDATE SET payload = EXCLUDED.payload`,
		string(name), payload)
	if err != nil {
		return fmt.Errorf("write bucket %s: %w", name, err)
	}
	return nil
}
