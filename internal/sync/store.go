// Package sync implements the synchronized record store: a locally cached,
// eventually consistent copy of one remote collection offering validated CRUD
// operations to a single owning view, reconciled against the collection's
// realtime change channel.
package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"agricore/internal/notify"
	"agricore/internal/observe"
	"agricore/internal/remote"
	"agricore/pkg/domain"
)

// State names the lifecycle phase of a collection view.
type State string

// View lifecycle states. Ready admits concurrent mutations without blocking
// reads of the current list.
const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Session supplies the caller's authentication and tenant scope. Mutating
// operations are refused before any network call when the session is not
// authenticated.
type Session interface {
	Authenticated() bool
	Tenant() string
}

// StaticSession is a fixed Session, used by tests and background jobs.
type StaticSession struct {
	User string
	Farm string
}

// Authenticated reports whether a user is bound to the session.
func (s StaticSession) Authenticated() bool { return s.User != "" }

// Tenant returns the farm key scoping all operations.
func (s StaticSession) Tenant() string { return s.Farm }

// Options carries the injectable collaborators of a Store. Zero-value fields
// fall back to no-op implementations.
type Options struct {
	Notifier notify.Sink
	Metrics  observe.MetricsRecorder
	Tracer   observe.Tracer
	// NewBackOff builds the reconnect policy for the realtime subscription.
	// Defaults to capped exponential backoff.
	NewBackOff func() backoff.BackOff
}

// Store owns the in-memory ordered record list for one collection view. The
// list is never shared between views; each view fetches and subscribes
// independently.
type Store[T domain.Record[T]] struct {
	collection remote.Collection[T]
	schema     domain.Schema[T]
	session    Session
	notifier   notify.Sink
	metrics    observe.MetricsRecorder
	tracer     observe.Tracer
	newBackOff func() backoff.BackOff

	mu      stdsync.RWMutex
	state   State
	lastErr error
	records []T
	seqs    map[string]uint64
	closed  bool

	runMu   stdsync.Mutex
	running bool
	done    chan struct{}
	wg      stdsync.WaitGroup
}

// New constructs a store for one view over the given collection and schema.
func New[T domain.Record[T]](collection remote.Collection[T], schema domain.Schema[T], session Session, opts Options) *Store[T] {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Discard
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observe.Nop
	}
	newBackOff := opts.NewBackOff
	if newBackOff == nil {
		newBackOff = func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 250 * time.Millisecond
			bo.MaxInterval = 30 * time.Second
			bo.MaxElapsedTime = 0
			return bo
		}
	}
	return &Store[T]{
		collection: collection,
		schema:     schema,
		session:    session,
		notifier:   notifier,
		metrics:    metrics,
		tracer:     opts.Tracer,
		newBackOff: newBackOff,
		state:      StateIdle,
		seqs:       make(map[string]uint64),
		done:       make(chan struct{}),
	}
}

// State returns the current view lifecycle state.
func (s *Store[T]) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the terminal error of the last failed fetch, nil when the view
// is healthy.
func (s *Store[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Records returns a snapshot copy of the list, ordered by descending creation
// time.
func (s *Store[T]) Records() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	return out
}

// FetchAll requests the collection from the remote store scoped to the session
// tenant. On success the local list is replaced atomically; on failure the
// previous list is left untouched and the error becomes the view's terminal
// error.
func (s *Store[T]) FetchAll(ctx context.Context) ([]T, error) {
	done := s.begin(ctx, "fetch")
	s.setState(StateLoading, nil)

	fetched, err := s.collection.Select(ctx, remote.Query[T]{Tenant: s.session.Tenant()})
	if err != nil {
		err = domain.ClassifyRemote(s.schema.Collection, "fetch", err)
		s.setState(StateFailed, err)
		s.notifyFailure(err)
		done(err)
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		// The fetch outlived the store; return the rows but leave the final
		// list and state untouched.
		s.mu.Unlock()
		done(nil)
		return fetched, nil
	}
	s.records = fetched
	s.state = StateReady
	s.lastErr = nil
	s.mu.Unlock()
	done(nil)
	return s.Records(), nil
}

// Create validates draft against the collection schema, runs the natural-key
// uniqueness precheck, inserts remotely, and prepends the committed record.
// Validation and duplicate failures return before any write; no remote call is
// made for an unauthenticated session.
func (s *Store[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	done := s.begin(ctx, "create")

	if !s.session.Authenticated() {
		err := domain.AuthRequiredError{Operation: fmt.Sprintf("add %s records", s.schema.Collection)}
		s.notifyFailure(err)
		done(err)
		return zero, err
	}

	// Stamp the session tenant; the backend assigns the rest of the identity.
	draft = draft.WithIdentity("", s.session.Tenant(), draft.Created())

	if result := s.schema.Validate(draft); !result.Valid {
		err := result.Err(s.schema.Collection)
		s.notifyFailure(err)
		done(err)
		return zero, err
	}

	// Best-effort read-then-write precheck: two concurrent creators can both
	// pass it and both insert. Accepted; the remote store stays lenient.
	if key, ok := s.schema.Key(draft); ok {
		existing, err := s.collection.Select(ctx, remote.Query[T]{
			Tenant: s.session.Tenant(),
			Match: func(rec T) bool {
				recKey, hasKey := s.schema.Key(rec)
				return hasKey && recKey == key
			},
			Limit: 1,
		})
		if err != nil {
			err = domain.ClassifyRemote(s.schema.Collection, "create", err)
			s.notifyFailure(err)
			done(err)
			return zero, err
		}
		if len(existing) > 0 {
			err := domain.DuplicateError{Collection: s.schema.Collection, Key: key}
			s.notifyFailure(err)
			done(err)
			return zero, err
		}
	}

	committed, err := s.collection.Insert(ctx, draft)
	if err != nil {
		err = domain.ClassifyRemote(s.schema.Collection, "create", err)
		s.notifyFailure(err)
		done(err)
		return zero, err
	}

	s.mu.Lock()
	if !s.closed {
		s.upsertLocked(committed)
	}
	s.mu.Unlock()
	s.notifySuccess("created")
	done(nil)
	return committed, nil
}

// Update applies mutate to the stored record, validates the result against
// the full schema before commit, and replaces the local entry in place so the
// record keeps its list position.
func (s *Store[T]) Update(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	var zero T
	done := s.begin(ctx, "update")

	if !s.session.Authenticated() {
		err := domain.AuthRequiredError{Operation: fmt.Sprintf("edit %s records", s.schema.Collection)}
		s.notifyFailure(err)
		done(err)
		return zero, err
	}

	updated, err := s.collection.Update(ctx, id, func(rec *T) error {
		if err := mutate(rec); err != nil {
			return err
		}
		return s.schema.Validate(*rec).Err(s.schema.Collection)
	})
	if err != nil {
		var verr domain.ValidationError
		var nferr domain.NotFoundError
		switch {
		case errors.As(err, &verr):
		case errors.As(err, &nferr):
		default:
			err = domain.ClassifyRemote(s.schema.Collection, "update", err)
		}
		s.notifyFailure(err)
		done(err)
		return zero, err
	}

	s.mu.Lock()
	if !s.closed {
		s.upsertLocked(updated)
	}
	s.mu.Unlock()
	s.notifySuccess("updated")
	done(nil)
	return updated, nil
}

// Delete removes the record remotely and then locally by identifier.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	done := s.begin(ctx, "delete")

	if !s.session.Authenticated() {
		err := domain.AuthRequiredError{Operation: fmt.Sprintf("delete %s records", s.schema.Collection)}
		s.notifyFailure(err)
		done(err)
		return err
	}

	if err := s.collection.Delete(ctx, id); err != nil {
		var nferr domain.NotFoundError
		if !errors.As(err, &nferr) {
			err = domain.ClassifyRemote(s.schema.Collection, "delete", err)
		}
		s.notifyFailure(err)
		done(err)
		return err
	}

	s.mu.Lock()
	if !s.closed {
		s.removeLocked(id)
	}
	s.mu.Unlock()
	s.notifySuccess("removed")
	done(nil)
	return nil
}

// Subscribe starts consuming the collection's realtime change channel scoped
// to the session tenant, reconnecting with backoff if the channel drops.
// Subscribing an already-subscribed or closed store is a no-op.
func (s *Store[T]) Subscribe() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running || s.isClosed() {
		return
	}
	s.running = true
	s.wg.Add(1)
	go s.run()
}

// Close releases the subscription and stops all further writes to the list;
// operations already in flight still return their remote result. The list
// keeps its final contents for a last render. Close is idempotent.
func (s *Store[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	close(s.done)
	s.wg.Wait()
}

func (s *Store[T]) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Store[T]) run() {
	defer s.wg.Done()
	bo := s.newBackOff()
	for {
		sub := s.collection.Changes(remote.Filter{Tenant: s.session.Tenant()})
		delivered := s.consume(sub)
		sub.Close()
		select {
		case <-s.done:
			return
		default:
		}
		if delivered {
			bo.Reset()
		}
		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			wait = time.Second
		}
		select {
		case <-s.done:
			return
		case <-time.After(wait):
		}
	}
}

// consume applies events until the subscription channel closes or the store
// shuts down, reporting whether any event arrived.
func (s *Store[T]) consume(sub *remote.Subscription[T]) bool {
	delivered := false
	for {
		select {
		case <-s.done:
			return delivered
		case event, ok := <-sub.Events():
			if !ok {
				return delivered
			}
			delivered = true
			s.merge(event)
		}
	}
}

// merge reconciles one change event into the list. Inserted and updated
// events upsert by identifier; deleted events remove if present. Events whose
// sequence stamp is not newer than the last one applied for the same
// identifier are dropped, which makes merging idempotent under duplicate
// delivery and safe under reordering.
func (s *Store[T]) merge(event domain.ChangeEvent[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if event.Seq != 0 {
		if last, ok := s.seqs[event.ID]; ok && event.Seq <= last {
			return
		}
		s.seqs[event.ID] = event.Seq
	}
	switch event.Kind {
	case domain.ChangeInserted, domain.ChangeUpdated:
		s.upsertLocked(event.Record)
	case domain.ChangeDeleted:
		s.removeLocked(event.ID)
	}
	s.metrics.Observe(context.Background(), "merge", true, 0)
}

// upsertLocked replaces the record in place when present, otherwise inserts
// at its descending-creation-time position. Callers hold s.mu.
func (s *Store[T]) upsertLocked(rec T) {
	id := rec.RecordID()
	for i := range s.records {
		if s.records[i].RecordID() == id {
			s.records[i] = rec
			return
		}
	}
	at := len(s.records)
	for i := range s.records {
		if !s.records[i].Created().After(rec.Created()) {
			at = i
			break
		}
	}
	s.records = append(s.records, rec)
	copy(s.records[at+1:], s.records[at:])
	s.records[at] = rec
}

// removeLocked drops the record by identifier; absent identifiers are a
// no-op. Callers hold s.mu.
func (s *Store[T]) removeLocked(id string) {
	for i := range s.records {
		if s.records[i].RecordID() == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return
		}
	}
}

func (s *Store[T]) setState(state State, err error) {
	s.mu.Lock()
	if !s.closed {
		s.state = state
		s.lastErr = err
	}
	s.mu.Unlock()
}

// begin opens the metrics/tracing scope for one operation and returns its
// completion callback.
func (s *Store[T]) begin(ctx context.Context, operation string) func(error) {
	op := fmt.Sprintf("%s.%s", s.schema.Collection, operation)
	started := time.Now()
	var span observe.Span
	if s.tracer != nil {
		_, span = s.tracer.Start(ctx, op)
	}
	return func(err error) {
		s.metrics.Observe(ctx, op, err == nil, time.Since(started))
		if span != nil {
			span.End(err)
		}
	}
}

func (s *Store[T]) notifySuccess(verb string) {
	s.notifier.Publish(notify.Notification{
		Title:       "Saved",
		Description: fmt.Sprintf("%s record %s", s.schema.Collection, verb),
		Severity:    notify.SeveritySuccess,
	})
}

// notifyFailure publishes exactly one notification describing err, choosing
// the message by error kind.
func (s *Store[T]) notifyFailure(err error) {
	var verr domain.ValidationError
	var derr domain.DuplicateError
	var aerr domain.AuthRequiredError
	switch {
	case errors.As(err, &verr):
		s.notifier.Publish(notify.Notification{
			Title:       "Check the form",
			Description: err.Error(),
			Severity:    notify.SeverityWarning,
		})
	case errors.As(err, &derr):
		s.notifier.Publish(notify.Notification{
			Title:       "Duplicate record",
			Description: err.Error(),
			Severity:    notify.SeverityWarning,
		})
	case errors.As(err, &aerr):
		s.notifier.Publish(notify.Notification{
			Title:       "Sign in required",
			Description: err.Error(),
			Severity:    notify.SeverityError,
		})
	case domain.IsNetwork(err):
		s.notifier.Publish(notify.Notification{
			Title:       "Connection problem",
			Description: "Check your connection and try again.",
			Severity:    notify.SeverityError,
		})
	default:
		s.notifier.Publish(notify.Notification{
			Title:       "Something went wrong",
			Description: err.Error(),
			Severity:    notify.SeverityError,
		})
	}
}
