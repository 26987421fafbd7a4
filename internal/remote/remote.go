// Package remote defines the contract to the hosted relational backend: typed
// collection operations, query shaping, and the realtime change-notification
// channel. Concrete backends live in the memory, sqlite, and postgres
// subpackages and are selected through the storage package.
package remote

import (
	"context"

	"agricore/pkg/domain"
)

// Query shapes a Select call. The zero value returns the whole collection
// ordered by descending creation time.
type Query[T domain.Record[T]] struct {
	// Tenant restricts results to one tenant when non-empty.
	Tenant string
	// Match keeps only records for which it returns true. Nil keeps all.
	Match func(T) bool
	// Limit caps the number of returned records when positive.
	Limit int
}

// Filter scopes a realtime subscription.
type Filter struct {
	// Tenant restricts delivered events to one tenant when non-empty.
	Tenant string
}

// Collection exposes request/response operations and the change channel for
// one named collection.
type Collection[T domain.Record[T]] interface {
	// Name returns the collection identifier.
	Name() domain.CollectionName
	// Select returns matching records ordered by descending creation time.
	Select(ctx context.Context, query Query[T]) ([]T, error)
	// Insert stores a new record, assigning identifier and audit fields, and
	// returns the committed row.
	Insert(ctx context.Context, record T) (T, error)
	// Update applies mutate to the stored record and returns the committed
	// row. The identifier and creation timestamp are preserved.
	Update(ctx context.Context, id string, mutate func(*T) error) (T, error)
	// Delete removes the record. Deleting an absent identifier returns a
	// domain.NotFoundError.
	Delete(ctx context.Context, id string) error
	// Changes opens a realtime subscription scoped by filter. The caller must
	// Close the subscription to release hub resources.
	Changes(filter Filter) *Subscription[T]
}

// Store aggregates the typed collections of the agribusiness back office.
type Store interface {
	Animals() Collection[domain.Animal]
	MilkSessions() Collection[domain.MilkSession]
	Deliveries() Collection[domain.Delivery]
	InventoryItems() Collection[domain.InventoryItem]
	QualityChecks() Collection[domain.QualityCheck]
	SalesProposals() Collection[domain.SalesProposal]
	Employees() Collection[domain.Employee]
	PayrollEntries() Collection[domain.PayrollEntry]
	Scholarships() Collection[domain.Scholarship]
	HandbookSections() Collection[domain.HandbookSection]
	Close() error
}
