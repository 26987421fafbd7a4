package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestExpvarRecorderAggregates(t *testing.T) {
	rec := NewExpvarRecorder("")
	if rec.Name() == "" {
		t.Fatalf("expected generated export name")
	}

	rec.Observe(context.Background(), "animals.create", true, 20*time.Millisecond)
	rec.Observe(context.Background(), "animals.create", true, 30*time.Millisecond)
	rec.Observe(context.Background(), "animals.create", false, 5*time.Millisecond)
	rec.Observe(context.Background(), "", true, time.Second) // ignored

	snap := rec.Snapshot()
	if got := snap.DurationsMS["animals.create"]; got != 55 {
		t.Fatalf("expected 55ms total, got %v", got)
	}
	if snap.Results["animals.create"]["success"] != 2 || snap.Results["animals.create"]["error"] != 1 {
		t.Fatalf("unexpected result counts %+v", snap.Results)
	}
	if len(snap.DurationsMS) != 1 {
		t.Fatalf("expected empty operation dropped, got %+v", snap.DurationsMS)
	}
}

func TestExpvarSnapshotIsIsolated(t *testing.T) {
	rec := NewExpvarRecorder("")
	rec.Observe(context.Background(), "animals.fetch", true, time.Millisecond)

	snap := rec.Snapshot()
	snap.DurationsMS["animals.fetch"] = 999
	snap.Results["animals.fetch"]["success"] = 999

	fresh := rec.Snapshot()
	if fresh.DurationsMS["animals.fetch"] == 999 || fresh.Results["animals.fetch"]["success"] == 999 {
		t.Fatalf("expected snapshot copies isolated from the recorder")
	}
}

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	rec.Observe(context.Background(), "animals.create", true, 20*time.Millisecond)
	rec.Observe(context.Background(), "animals.create", true, 10*time.Millisecond)
	rec.Observe(context.Background(), "animals.delete", false, time.Millisecond)

	success := testutil.ToFloat64(rec.results.WithLabelValues("animals.create", "success"))
	if success != 2 {
		t.Fatalf("expected 2 successes, got %v", success)
	}
	failure := testutil.ToFloat64(rec.results.WithLabelValues("animals.delete", "error"))
	if failure != 1 {
		t.Fatalf("expected 1 error, got %v", failure)
	}
	if got := testutil.CollectAndCount(rec.durations); got != 2 {
		t.Fatalf("expected 2 duration series, got %d", got)
	}
}

func TestPrometheusRecorderRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPrometheusRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), "animals.create")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "animals.update")
	span.End(errors.New("boom"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(entries))
	}
	if entries[0].Operation != "animals.create" || entries[0].Status != "success" {
		t.Fatalf("unexpected first span %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error != "boom" {
		t.Fatalf("unexpected second span %+v", entries[1])
	}

	dec := json.NewDecoder(&buf)
	var lines int
	for dec.More() {
		var entry TraceEntry
		if err := dec.Decode(&entry); err != nil {
			t.Fatalf("decode span line: %v", err)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("expected 2 JSON lines, got %d", lines)
	}
}

func TestJSONTracerNilWriter(t *testing.T) {
	tracer := NewJSONTracer(nil)
	_, span := tracer.Start(context.Background(), "animals.fetch")
	span.End(nil)
	if len(tracer.Entries()) != 1 {
		t.Fatalf("expected retained span without a writer")
	}
}
