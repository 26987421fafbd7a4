package notify

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestMemoryRetainsAndResets(t *testing.T) {
	sink := NewMemory()
	sink.Publish(Notification{Title: "Saved", Severity: SeveritySuccess})
	sink.Publish(Notification{Title: "Check the form", Severity: SeverityWarning})

	messages := sink.Messages()
	if len(messages) != 2 || messages[0].Title != "Saved" {
		t.Fatalf("unexpected messages %+v", messages)
	}
	// The returned slice is a copy.
	messages[0].Title = "mutated"
	if sink.Messages()[0].Title != "Saved" {
		t.Fatalf("expected retained messages isolated from callers")
	}

	sink.Reset()
	if len(sink.Messages()) != 0 {
		t.Fatalf("expected reset to clear messages")
	}
}

func TestWriterEmitsJSONLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriter(&buf)
	sink.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }

	sink.Publish(Notification{Title: "Saved", Description: "animals record created", Severity: SeveritySuccess})

	var entry struct {
		Notification
		EmittedAt time.Time `json:"emitted_at"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode line: %v", err)
	}
	if entry.Title != "Saved" || entry.Severity != SeveritySuccess {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if !entry.EmittedAt.Equal(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected emission time %v", entry.EmittedAt)
	}
}

func TestMultiFansOut(t *testing.T) {
	first := NewMemory()
	second := NewMemory()
	sink := Multi(first, second)

	sink.Publish(Notification{Title: "Saved", Severity: SeveritySuccess})
	if len(first.Messages()) != 1 || len(second.Messages()) != 1 {
		t.Fatalf("expected both sinks to receive the notification")
	}
}

func TestDiscardAcceptsAnything(t *testing.T) {
	Discard.Publish(Notification{Title: "ignored"})
}
