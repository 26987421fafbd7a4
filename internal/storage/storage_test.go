package storage

import (
	"context"
	"path/filepath"
	"testing"

	"agricore/internal/remote/memory"
	"agricore/internal/remote/sqlite"
)

func TestOpenMemoryDriver(t *testing.T) {
	t.Setenv("AGRICORE_STORAGE_DRIVER", "memory")
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory backend, got %T", store)
	}
}

func TestOpenSQLiteDriver(t *testing.T) {
	t.Setenv("AGRICORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("AGRICORE_SQLITE_PATH", filepath.Join(t.TempDir(), "farm.db"))
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*sqlite.Store); !ok {
		t.Fatalf("expected sqlite backend, got %T", store)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Setenv("AGRICORE_STORAGE_DRIVER", "cloud")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
