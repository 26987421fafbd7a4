// Package memory provides the in-process implementation of the remote store
// contract. It is the authoritative backend for tests and ephemeral
// environments, and the transactional substrate the sqlite and postgres
// backends layer their snapshots on.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"agricore/internal/remote"
	"agricore/pkg/domain"
)

// Compile-time contract assertion.
var _ remote.Store = (*Store)(nil)

// CommitHook runs after every committed write with a JSON snapshot of the
// affected collection. Returning an error rolls the write back, so durable
// backends can refuse writes they cannot persist.
type CommitHook func(ctx context.Context, name domain.CollectionName, payload []byte) error

// Option configures a Store.
type Option func(*config)

type config struct {
	hook CommitHook
	now  func() time.Time
}

// WithCommitHook installs a post-write persistence hook.
func WithCommitHook(hook CommitHook) Option {
	return func(c *config) { c.hook = hook }
}

// WithClock overrides the timestamp source, used by tests for deterministic
// audit fields.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// Store holds one in-memory collection per back-office record type.
type Store struct {
	animals   *collection[domain.Animal]
	milk      *collection[domain.MilkSession]
	delivery  *collection[domain.Delivery]
	inventory *collection[domain.InventoryItem]
	quality   *collection[domain.QualityCheck]
	proposals *collection[domain.SalesProposal]
	employees *collection[domain.Employee]
	payroll   *collection[domain.PayrollEntry]
	grants    *collection[domain.Scholarship]
	handbook  *collection[domain.HandbookSection]
}

// NewStore constructs an empty in-memory store.
func NewStore(opts ...Option) *Store {
	cfg := config{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{
		animals:   newCollection[domain.Animal](domain.CollectionAnimals, cfg),
		milk:      newCollection[domain.MilkSession](domain.CollectionMilkSessions, cfg),
		delivery:  newCollection[domain.Delivery](domain.CollectionDeliveries, cfg),
		inventory: newCollection[domain.InventoryItem](domain.CollectionInventoryItems, cfg),
		quality:   newCollection[domain.QualityCheck](domain.CollectionQualityChecks, cfg),
		proposals: newCollection[domain.SalesProposal](domain.CollectionSalesProposals, cfg),
		employees: newCollection[domain.Employee](domain.CollectionEmployees, cfg),
		payroll:   newCollection[domain.PayrollEntry](domain.CollectionPayrollEntries, cfg),
		grants:    newCollection[domain.Scholarship](domain.CollectionScholarships, cfg),
		handbook:  newCollection[domain.HandbookSection](domain.CollectionHandbookSections, cfg),
	}
}

// Animals returns the cattle registry collection.
func (s *Store) Animals() remote.Collection[domain.Animal] { return s.animals }

// MilkSessions returns the milk production log collection.
func (s *Store) MilkSessions() remote.Collection[domain.MilkSession] { return s.milk }

// Deliveries returns the delivery tracking collection.
func (s *Store) Deliveries() remote.Collection[domain.Delivery] { return s.delivery }

// InventoryItems returns the inventory collection.
func (s *Store) InventoryItems() remote.Collection[domain.InventoryItem] { return s.inventory }

// QualityChecks returns the quality-control collection.
func (s *Store) QualityChecks() remote.Collection[domain.QualityCheck] { return s.quality }

// SalesProposals returns the sales proposal collection.
func (s *Store) SalesProposals() remote.Collection[domain.SalesProposal] { return s.proposals }

// Employees returns the HR employee collection.
func (s *Store) Employees() remote.Collection[domain.Employee] { return s.employees }

// PayrollEntries returns the payroll collection.
func (s *Store) PayrollEntries() remote.Collection[domain.PayrollEntry] { return s.payroll }

// Scholarships returns the scholarship collection.
func (s *Store) Scholarships() remote.Collection[domain.Scholarship] { return s.grants }

// HandbookSections returns the staff handbook collection.
func (s *Store) HandbookSections() remote.Collection[domain.HandbookSection] { return s.handbook }

// Close shuts down every collection's change hub.
func (s *Store) Close() error {
	s.animals.close()
	s.milk.close()
	s.delivery.close()
	s.inventory.close()
	s.quality.close()
	s.proposals.close()
	s.employees.close()
	s.payroll.close()
	s.grants.close()
	s.handbook.close()
	return nil
}

// BucketNames lists every collection bucket in stable order, used by durable
// backends to enumerate snapshot rows.
func BucketNames() []domain.CollectionName {
	return []domain.CollectionName{
		domain.CollectionAnimals,
		domain.CollectionMilkSessions,
		domain.CollectionDeliveries,
		domain.CollectionInventoryItems,
		domain.CollectionQualityChecks,
		domain.CollectionSalesProposals,
		domain.CollectionEmployees,
		domain.CollectionPayrollEntries,
		domain.CollectionScholarships,
		domain.CollectionHandbookSections,
	}
}

// ImportBucket hydrates one collection from a JSON snapshot produced by the
// commit hook. Unknown bucket names are rejected.
func (s *Store) ImportBucket(name domain.CollectionName, payload []byte) error {
	switch name {
	case domain.CollectionAnimals:
		return importBucket(s.animals, payload)
	case domain.CollectionMilkSessions:
		return importBucket(s.milk, payload)
	case domain.CollectionDeliveries:
		return importBucket(s.delivery, payload)
	case domain.CollectionInventoryItems:
		return importBucket(s.inventory, payload)
	case domain.CollectionQualityChecks:
		return importBucket(s.quality, payload)
	case domain.CollectionSalesProposals:
		return importBucket(s.proposals, payload)
	case domain.CollectionEmployees:
		return importBucket(s.employees, payload)
	case domain.CollectionPayrollEntries:
		return importBucket(s.payroll, payload)
	case domain.CollectionScholarships:
		return importBucket(s.grants, payload)
	case domain.CollectionHandbookSections:
		return importBucket(s.handbook, payload)
	default:
		return fmt.Errorf("unknown bucket %s", name)
	}
}

func importBucket[T domain.Record[T]](c *collection[T], payload []byte) error {
	var records []T
	if err := json.Unmarshal(payload, &records); err != nil {
		return fmt.Errorf("decode %s bucket: %w", c.name, err)
	}
	c.restore(records)
	return nil
}

// collection is the map-backed storage for one record type plus its change hub.
type collection[T domain.Record[T]] struct {
	name    domain.CollectionName
	mu      sync.RWMutex
	records map[string]T
	hub     *remote.Hub[T]
	now     func() time.Time
	commit  CommitHook
}

func newCollection[T domain.Record[T]](name domain.CollectionName, cfg config) *collection[T] {
	return &collection[T]{
		name:    name,
		records: make(map[string]T),
		hub:     remote.NewHub[T](),
		now:     cfg.now,
		commit:  cfg.hook,
	}
}

// Name returns the collection identifier.
func (c *collection[T]) Name() domain.CollectionName { return c.name }

// Select returns matching records ordered by descending creation time. Ties
// break on identifier so ordering is deterministic.
func (c *collection[T]) Select(_ context.Context, query remote.Query[T]) ([]T, error) {
	c.mu.RLock()
	out := make([]T, 0, len(c.records))
	for _, rec := range c.records {
		if query.Tenant != "" && rec.TenantKey() != query.Tenant {
			continue
		}
		if query.Match != nil && !query.Match(rec) {
			continue
		}
		out = append(out, rec.Clone())
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created().Equal(out[j].Created()) {
			return out[i].Created().After(out[j].Created())
		}
		return out[i].RecordID() < out[j].RecordID()
	})
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

// Insert assigns identity and audit fields, commits the record, and publishes
// an inserted event.
func (c *collection[T]) Insert(ctx context.Context, record T) (T, error) {
	var zero T
	c.mu.Lock()
	id := uuid.NewString()
	committed := record.WithIdentity(id, record.TenantKey(), c.now())
	c.records[id] = committed.Clone()
	payload, err := c.bucketLocked()
	if err != nil {
		delete(c.records, id)
		c.mu.Unlock()
		return zero, err
	}
	c.mu.Unlock()

	if c.commit != nil {
		if err := c.commit(ctx, c.name, payload); err != nil {
			c.mu.Lock()
			delete(c.records, id)
			c.mu.Unlock()
			return zero, fmt.Errorf("persist %s: %w", c.name, err)
		}
	}
	c.hub.Publish(domain.ChangeEvent[T]{
		Collection: c.name,
		Kind:       domain.ChangeInserted,
		ID:         id,
		Tenant:     committed.TenantKey(),
		Record:     committed.Clone(),
	})
	return committed.Clone(), nil
}

// Update applies mutate to a copy of the stored record, preserving identity
// and creation time, and publishes an updated event on success.
func (c *collection[T]) Update(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	var zero T
	c.mu.Lock()
	current, ok := c.records[id]
	if !ok {
		c.mu.Unlock()
		return zero, domain.NotFoundError{Collection: c.name, ID: id}
	}
	previous := current.Clone()
	next := current.Clone()
	if err := mutate(&next); err != nil {
		c.mu.Unlock()
		return zero, err
	}
	// Identity and creation audit fields belong to the store.
	next = next.WithIdentity(id, previous.TenantKey(), previous.Created())
	next = next.WithUpdated(c.now())
	c.records[id] = next.Clone()
	payload, err := c.bucketLocked()
	if err != nil {
		c.records[id] = previous
		c.mu.Unlock()
		return zero, err
	}
	c.mu.Unlock()

	if c.commit != nil {
		if err := c.commit(ctx, c.name, payload); err != nil {
			c.mu.Lock()
			c.records[id] = previous
			c.mu.Unlock()
			return zero, fmt.Errorf("persist %s: %w", c.name, err)
		}
	}
	c.hub.Publish(domain.ChangeEvent[T]{
		Collection: c.name,
		Kind:       domain.ChangeUpdated,
		ID:         id,
		Tenant:     next.TenantKey(),
		Record:     next.Clone(),
	})
	return next.Clone(), nil
}

// Delete removes the record and publishes a deleted event.
func (c *collection[T]) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	current, ok := c.records[id]
	if !ok {
		c.mu.Unlock()
		return domain.NotFoundError{Collection: c.name, ID: id}
	}
	delete(c.records, id)
	payload, err := c.bucketLocked()
	if err != nil {
		c.records[id] = current
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	if c.commit != nil {
		if err := c.commit(ctx, c.name, payload); err != nil {
			c.mu.Lock()
			c.records[id] = current
			c.mu.Unlock()
			return fmt.Errorf("persist %s: %w", c.name, err)
		}
	}
	c.hub.Publish(domain.ChangeEvent[T]{
		Collection: c.name,
		Kind:       domain.ChangeDeleted,
		ID:         id,
		Tenant:     current.TenantKey(),
	})
	return nil
}

// Changes opens a realtime subscription on the collection's hub.
func (c *collection[T]) Changes(filter remote.Filter) *remote.Subscription[T] {
	return c.hub.Subscribe(filter)
}

func (c *collection[T]) close() {
	c.hub.Close()
}

// bucketLocked marshals the collection to its snapshot payload. Records are
// sorted by identifier so snapshots are byte-stable. Callers hold the lock.
func (c *collection[T]) bucketLocked() ([]byte, error) {
	records := make([]T, 0, len(c.records))
	for _, rec := range c.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].RecordID() < records[j].RecordID()
	})
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode %s bucket: %w", c.name, err)
	}
	return payload, nil
}

func (c *collection[T]) restore(records []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[string]T, len(records))
	for _, rec := range records {
		c.records[rec.RecordID()] = rec.Clone()
	}
}
