// Package notify defines the user-notification sink contract: transient
// toast-style messages reporting the outcome of every store operation.
package notify

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Severity classifies a notification for display.
type Severity string

// Notification severities map onto toast variants.
const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is one transient user-facing message.
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Severity    Severity `json:"severity"`
}

// Sink accepts notifications for display. Implementations own rendering; the
// stores only guarantee exactly one notification per operation outcome.
type Sink interface {
	Publish(n Notification)
}

// Discard drops every notification.
var Discard Sink = discard{}

type discard struct{}

func (discard) Publish(Notification) {}

// Memory retains published notifications for inspection, used in tests.
type Memory struct {
	mu       sync.Mutex
	messages []Notification
}

// NewMemory constructs an empty retaining sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish appends the notification.
func (m *Memory) Publish(n Notification) {
	m.mu.Lock()
	m.messages = append(m.messages, n)
	m.mu.Unlock()
}

// Messages returns a copy of everything published so far.
func (m *Memory) Messages() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.messages...)
}

// Reset clears retained notifications.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.messages = nil
	m.mu.Unlock()
}

// Writer serializes notifications as JSON lines with an emission timestamp.
type Writer struct {
	mu  sync.Mutex
	enc *json.Encoder
	now func() time.Time
}

// NewWriter constructs a sink emitting JSON lines to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		enc: json.NewEncoder(w),
		now: func() time.Time { return time.Now().UTC() },
	}
}

type writerEntry struct {
	Notification
	EmittedAt time.Time `json:"emitted_at"`
}

// Publish writes one JSON line. Encoding failures are dropped; a notification
// sink must never fail the operation it reports on.
func (w *Writer) Publish(n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.enc.Encode(writerEntry{Notification: n, EmittedAt: w.now()})
}

// Multi fans every notification out to each sink in order.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

type multi []Sink

func (m multi) Publish(n Notification) {
	for _, sink := range m {
		sink.Publish(n)
	}
}
