package remote

import (
	"sync"
	"sync/atomic"

	"agricore/pkg/domain"
)

// subscriptionBuffer is the per-subscriber event channel capacity. A
// subscriber that falls this far behind starts losing events rather than
// blocking writers; consumers recover by refetching.
const subscriptionBuffer = 64

// Subscription is one subscriber's handle on a collection's change channel.
// Events delivers ChangeEvents until Close is called or the hub shuts down.
type Subscription[T domain.Record[T]] struct {
	events chan domain.ChangeEvent[T]
	filter Filter
	hub    *Hub[T]
	once   sync.Once
}

// Events returns the receive side of the subscription channel. The channel is
// closed when the subscription is released.
func (s *Subscription[T]) Events() <-chan domain.ChangeEvent[T] {
	return s.events
}

// Close releases the subscription. Further events are not delivered, and the
// Events channel is closed. Close is idempotent.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub fans change events out to the active subscribers of one collection and
// stamps each published event with a monotonic sequence number.
type Hub[T domain.Record[T]] struct {
	mu     sync.Mutex
	subs   map[*Subscription[T]]struct{}
	seq    atomic.Uint64
	closed bool
}

// NewHub constructs an empty fan-out hub.
func NewHub[T domain.Record[T]]() *Hub[T] {
	return &Hub[T]{subs: make(map[*Subscription[T]]struct{})}
}

// Subscribe registers a new subscriber scoped by filter. Subscribing to a
// closed hub yields an already-closed subscription.
func (h *Hub[T]) Subscribe(filter Filter) *Subscription[T] {
	sub := &Subscription[T]{
		events: make(chan domain.ChangeEvent[T], subscriptionBuffer),
		filter: filter,
		hub:    h,
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.events)
		sub.once.Do(func() {})
		return sub
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Publish delivers event to every matching subscriber, stamping it with the
// next sequence number unless it already carries one (redelivery keeps the
// original stamp). Delivery is non-blocking: a full subscriber buffer drops
// the event for that subscriber only.
func (h *Hub[T]) Publish(event domain.ChangeEvent[T]) {
	if event.Seq == 0 {
		event.Seq = h.seq.Add(1)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for sub := range h.subs {
		if sub.filter.Tenant != "" && sub.filter.Tenant != event.Tenant {
			continue
		}
		select {
		case sub.events <- event:
		default:
		}
	}
}

// Close shuts the hub down and closes every subscriber channel.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		close(sub.events)
		delete(h.subs, sub)
	}
}

func (h *Hub[T]) remove(sub *Subscription[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.events)
}
