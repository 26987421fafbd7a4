// Package sqlite provides a durable remote-store backend that snapshots each
// collection bucket to an embedded SQLite file after every committed write.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"agricore/internal/remote"
	"agricore/internal/remote/memory"
	"agricore/pkg/domain"
)

// Compile-time contract assertion.
var _ remote.Store = (*Store)(nil)

// Store layers bucket snapshots over the in-memory backend. Every committed
// write replaces the affected collection's row in the state table.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the SQLite file at path and hydrates the
// in-memory state from any existing snapshot.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "agricore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}

	s := &Store{db: db, path: path}
	s.Store = memory.NewStore(memory.WithCommitHook(s.persistBucket))
	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the backing database file path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle and shuts down the change hubs.
func (s *Store) Close() error {
	_ = s.Store.Close()
	return s.db.Close()
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
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
		`INSERT INTO state (bucket, payload) VALUES (?, ?)
		ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
		string(name), payload)
	if err != nil {
		return fmt.Errorf("write bucket %s: %w", name, err)
	}
	return nil
}
