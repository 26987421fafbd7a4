// Package observe carries the observability contracts for store operations:
// per-operation metrics recording and span tracing. Implementations cover
// process-local expvar, Prometheus, and JSON-line traces.
package observe

import (
	"context"
	"time"
)

// MetricsRecorder receives one observation per store operation outcome.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Nop discards every observation.
var Nop MetricsRecorder = nop{}

type nop struct{}

func (nop) Observe(context.Context, string, bool, time.Duration) {}

// Tracer opens spans around store operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, Span)
}

// Span terminates a traced operation; err is nil on success.
type Span interface {
	End(err error)
}
