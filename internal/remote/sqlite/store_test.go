package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"agricore/internal/remote"
	"agricore/pkg/domain"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farm.db")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	animal, err := store.Animals().Insert(context.Background(), domain.Animal{
		Base:      domain.Base{TenantID: "farm-1"},
		TagNumber: "T1",
		Type:      domain.AnimalMotherCow,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.InventoryItems().Insert(context.Background(), domain.InventoryItem{
		Base: domain.Base{TenantID: "farm-1"},
		SKU:  "FEED-1",
		Name: "Cattle feed",
	}); err != nil {
		t.Fatalf("insert inventory: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	animals, err := reopened.Animals().Select(context.Background(), remote.Query[domain.Animal]{Tenant: "farm-1"})
	if err != nil {
		t.Fatalf("select animals: %v", err)
	}
	if len(animals) != 1 || animals[0].ID != animal.ID || animals[0].TagNumber != "T1" {
		t.Fatalf("expected hydrated animal, got %+v", animals)
	}
	items, err := reopened.InventoryItems().Select(context.Background(), remote.Query[domain.InventoryItem]{Tenant: "farm-1"})
	if err != nil {
		t.Fatalf("select inventory: %v", err)
	}
	if len(items) != 1 || items[0].SKU != "FEED-1" {
		t.Fatalf("expected hydrated inventory item, got %+v", items)
	}
}

func TestStorePersistsUpdatesAndDeletes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farm.db")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	keep, err := store.Animals().Insert(context.Background(), domain.Animal{
		Base:      domain.Base{TenantID: "farm-1"},
		TagNumber: "T1",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	drop, err := store.Animals().Insert(context.Background(), domain.Animal{
		Base:      domain.Base{TenantID: "farm-1"},
		TagNumber: "T2",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.Animals().Update(context.Background(), keep.ID, func(a *domain.Animal) error {
		a.Name = "Bella"
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.Animals().Delete(context.Background(), drop.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	animals, err := reopened.Animals().Select(context.Background(), remote.Query[domain.Animal]{Tenant: "farm-1"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(animals) != 1 || animals[0].ID != keep.ID || animals[0].Name != "Bella" {
		t.Fatalf("expected only the updated survivor, got %+v", animals)
	}
}

func TestNewStoreCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state", "farm.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	if store.Path() != path {
		t.Fatalf("expected path %s, got %s", path, store.Path())
	}
}
