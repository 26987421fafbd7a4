package domain

// ChangeKind tags the variants of a realtime change event.
type ChangeKind string

// Change event kinds delivered by the remote store's notification channel.
const (
	// ChangeInserted indicates a row was inserted; Record carries the new value.
	ChangeInserted ChangeKind = "inserted"
	// ChangeUpdated indicates a row was updated; Record carries the new value.
	ChangeUpdated ChangeKind = "updated"
	// ChangeDeleted indicates a row was removed; only ID and Tenant are set.
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent is one realtime notification for a collection row. Seq is a
// monotonic per-collection sequence stamp assigned at publish time; merge
// paths drop events whose Seq is not newer than the one already applied for
// the same identifier, which keeps merges idempotent under duplicate delivery
// and safe under out-of-order delivery.
type ChangeEvent[T any] struct {
	Collection CollectionName
	Kind       ChangeKind
	ID         string
	Tenant     string
	Seq        uint64
	// Record is the post-change row for inserted and updated events and the
	// zero value for deletions.
	Record T
}
