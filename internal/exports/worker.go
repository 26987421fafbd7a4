package exports

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"agricore/internal/blob"
	"agricore/pkg/domain"
)

// Status describes the lifecycle stage of an export job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Artifact captures one stored rendering of an export job.
type Artifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Job tracks an export request and its resulting artifacts.
type Job struct {
	ID          string                `json:"id"`
	Collection  domain.CollectionName `json:"collection"`
	Formats     []Format              `json:"formats"`
	Status      Status                `json:"status"`
	Error       string                `json:"error,omitempty"`
	Artifacts   []Artifact            `json:"artifacts,omitempty"`
	RequestedBy string                `json:"requested_by"`
	Tenant      string                `json:"tenant,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}

func (j *Job) copy() Job {
	out := *j
	out.Formats = append([]Format(nil), j.Formats...)
	out.Artifacts = append([]Artifact(nil), j.Artifacts...)
	if j.CompletedAt != nil {
		done := *j.CompletedAt
		out.CompletedAt = &done
	}
	return out
}

// Input represents an enqueue request: a rendered table snapshot plus the
// formats to materialize.
type Input struct {
	Table       Table
	Formats     []Format
	RequestedBy string
	Tenant      string
}

// AuditEntry captures audit trail metadata for export runs.
type AuditEntry struct {
	ID         string                `json:"id"`
	Actor      string                `json:"actor"`
	Collection domain.CollectionName `json:"collection"`
	Status     Status                `json:"status"`
	Tenant     string                `json:"tenant,omitempty"`
	OccurredAt time.Time             `json:"occurred_at"`
}

// AuditLog records export audit entries.
type AuditLog interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MemoryAudit retains audit entries for inspection, used in tests.
type MemoryAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// NewMemoryAudit constructs an empty retaining audit log.
func NewMemoryAudit() *MemoryAudit { return &MemoryAudit{} }

// Record appends the entry.
func (a *MemoryAudit) Record(_ context.Context, entry AuditEntry) {
	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()
}

// Entries returns a copy of everything recorded so far.
func (a *MemoryAudit) Entries() []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AuditEntry(nil), a.entries...)
}

// Worker renders export jobs asynchronously and stores the artifacts.
type Worker struct {
	store blob.Store
	audit AuditLog

	queue chan task
	mu    sync.RWMutex
	jobs  map[string]*Job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type task struct {
	id    string
	input Input
}

// NewWorker constructs an export worker writing artifacts to store.
func NewWorker(store blob.Store, audit AuditLog) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		store:  store,
		audit:  audit,
		queue:  make(chan task, 32),
		jobs:   make(map[string]*Job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion or ctx expiry.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case t := <-w.queue:
			w.process(t)
		}
	}
}

// Enqueue schedules an export job and returns the queued snapshot.
func (w *Worker) Enqueue(ctx context.Context, input Input) (Job, error) {
	if len(input.Table.Columns) == 0 {
		return Job{}, fmt.Errorf("export table has no columns")
	}
	if err := input.Table.validate(); err != nil {
		return Job{}, err
	}
	formats := input.Formats
	if len(formats) == 0 {
		formats = []Format{FormatCSV, FormatJSON}
	}
	seen := make(map[Format]struct{}, len(formats))
	uniq := make([]Format, 0, len(formats))
	for _, format := range formats {
		if format != FormatCSV && format != FormatJSON {
			return Job{}, fmt.Errorf("unsupported format %s", format)
		}
		if _, dup := seen[format]; dup {
			continue
		}
		seen[format] = struct{}{}
		uniq = append(uniq, format)
	}

	now := time.Now().UTC()
	job := Job{
		ID:          uuid.NewString(),
		Collection:  input.Table.Collection,
		Formats:     uniq,
		Status:      StatusQueued,
		RequestedBy: input.RequestedBy,
		Tenant:      input.Tenant,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[job.ID] = &job
	queued := job.copy()
	w.mu.Unlock()

	if w.audit != nil {
		w.audit.Record(ctx, AuditEntry{
			ID:         uuid.NewString(),
			Actor:      input.RequestedBy,
			Collection: input.Table.Collection,
			Status:     StatusQueued,
			Tenant:     input.Tenant,
			OccurredAt: now,
		})
	}

	select {
	case w.queue <- task{id: job.ID, input: input}:
	default:
		w.fail(job.ID, "export queue full")
		return Job{}, fmt.Errorf("export queue full")
	}
	return queued, nil
}

// Get returns a snapshot of the job.
func (w *Worker) Get(id string) (Job, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	job, ok := w.jobs[id]
	if !ok {
		return Job{}, false
	}
	return job.copy(), true
}

func (w *Worker) process(t task) {
	w.setStatus(t.id, StatusRunning, "")

	job, ok := w.Get(t.id)
	if !ok {
		return
	}
	artifacts := make([]Artifact, 0, len(job.Formats))
	for _, format := range job.Formats {
		payload, err := Render(t.input.Table, format)
		if err != nil {
			w.fail(t.id, err.Error())
			return
		}
		key := fmt.Sprintf("exports/%s/%s.%s", t.id, job.Collection, format.Extension())
		artifact := Artifact{
			Key:         key,
			Format:      format,
			ContentType: format.ContentType(),
			SizeBytes:   int64(len(payload)),
			CreatedAt:   time.Now().UTC(),
		}
		if w.store != nil {
			info, err := w.store.Put(w.ctx, key, bytes.NewReader(payload), blob.PutOptions{
				ContentType: format.ContentType(),
				Metadata:    map[string]string{"collection": string(job.Collection)},
			})
			if err != nil {
				w.fail(t.id, fmt.Sprintf("store artifact: %v", err))
				return
			}
			artifact.URL = info.URL
			if info.Size > 0 {
				artifact.SizeBytes = info.Size
			}
		}
		artifacts = append(artifacts, artifact)
	}
	w.succeed(t.id, artifacts)
}

func (w *Worker) setStatus(id string, status Status, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	job, ok := w.jobs[id]
	if !ok {
		return
	}
	job.Status = status
	job.Error = message
	job.UpdatedAt = time.Now().UTC()
}

func (w *Worker) fail(id, message string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if job, ok := w.jobs[id]; ok {
		job.Status = StatusFailed
		job.Error = message
		job.UpdatedAt = now
		job.CompletedAt = &now
	}
	w.mu.Unlock()
	w.recordOutcome(id, StatusFailed)
}

func (w *Worker) succeed(id string, artifacts []Artifact) {
	now := time.Now().UTC()
	w.mu.Lock()
	if job, ok := w.jobs[id]; ok {
		job.Status = StatusSucceeded
		job.Error = ""
		job.Artifacts = artifacts
		job.UpdatedAt = now
		job.CompletedAt = &now
	}
	w.mu.Unlock()
	w.recordOutcome(id, StatusSucceeded)
}

func (w *Worker) recordOutcome(id string, status Status) {
	if w.audit == nil {
		return
	}
	job, ok := w.Get(id)
	if !ok {
		return
	}
	w.audit.Record(w.ctx, AuditEntry{
		ID:         uuid.NewString(),
		Actor:      job.RequestedBy,
		Collection: job.Collection,
		Status:     status,
		Tenant:     job.Tenant,
		OccurredAt: time.Now().UTC(),
	})
}
