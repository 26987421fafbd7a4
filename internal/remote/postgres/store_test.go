package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"agricore/internal/remote"
	"agricore/pkg/domain"
)

// stubState is the shared bucket table behind a stub connection, surviving
// across simulated reconnects.
type stubState struct {
	mu       sync.Mutex
	buckets  map[string][]byte
	execs    []string
	failExec bool
}

func newStubState() *stubState {
	return &stubState{buckets: make(map[string][]byte)}
}

type stubDriver struct {
	state *stubState
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	return &stubConn{state: d.state}, nil
}

type stubConn struct {
	state *stubState
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements unsupported")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions unsupported")
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	c.state.execs = append(c.state.execs, query)
	if c.state.failExec {
		return nil, errors.New("exec refused")
	}
	if strings.Contains(query, "INSERT INTO state") {
		bucket, ok := args[0].Value.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected bucket arg %T", args[0].Value)
		}
		payload, ok := args[1].Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("unexpected payload arg %T", args[1].Value)
		}
		c.state.buckets[bucket] = append([]byte(nil), payload...)
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	rows := &stubRows{}
	for bucket, payload := range c.state.buckets {
		rows.rows = append(rows.rows, [2]driver.Value{bucket, append([]byte(nil), payload...)})
	}
	return rows, nil
}

type stubRows struct {
	rows [][2]driver.Value
	next int
}

func (r *stubRows) Columns() []string { return []string{"bucket", "payload"} }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.next >= len(r.rows) {
		return io.EOF
	}
	dest[0] = r.rows[r.next][0]
	dest[1] = r.rows[r.next][1]
	r.next++
	return nil
}

var stubSeq atomic.Uint64

func openStub(t *testing.T, state *stubState) func() {
	t.Helper()
	name := fmt.Sprintf("stubpg%d", stubSeq.Add(1))
	sql.Register(name, &stubDriver{state: state})
	return OverrideSQLOpen(func(_, dsn string) (*sql.DB, error) {
		return sql.Open(name, dsn)
	})
}

func TestNewStoreEnsuresStateTable(t *testing.T) {
	state := newStubState()
	defer openStub(t, state)()

	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()

	var sawDDL bool
	for _, stmt := range state.execs {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS state") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got %v", state.execs)
	}
}

func TestStorePersistsAcrossReconnect(t *testing.T) {
	state := newStubState()
	defer openStub(t, state)()

	store, err := NewStore(context.Background(), "postgres://stub")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	animal, err := store.Animals().Insert(context.Background(), domain.Animal{
		Base:      domain.Base{TenantID: "farm-1"},
		TagNumber: "T1",
		Type:      domain.AnimalMotherCow,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, ok := state.buckets["animals"]; !ok {
		t.Fatalf("expected animals bucket written, got %v", state.buckets)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(context.Background(), "postgres://stub")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	animals, err := reopened.Animals().Select(context.Background(), remote.Query[domain.Animal]{Tenant: "farm-1"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(animals) != 1 || animals[0].ID != animal.ID {
		t.Fatalf("expected hydrated animal, got %+v", animals)
	}
}

func TestWriteFailureRollsBack(t *testing.T) {
	state := newStubState()
	defer openStub(t, state)()

	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()

	state.mu.Lock()
	state.failExec = true
	state.mu.Unlock()

	if _, err := store.Animals().Insert(context.Background(), domain.Animal{
		Base:      domain.Base{TenantID: "farm-1"},
		TagNumber: "T1",
	}); err == nil {
		t.Fatalf("expected insert to fail when the write is refused")
	}

	state.mu.Lock()
	state.failExec = false
	state.mu.Unlock()

	animals, err := store.Animals().Select(context.Background(), remote.Query[domain.Animal]{Tenant: "farm-1"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(animals) != 0 {
		t.Fatalf("expected rejected insert rolled back, got %+v", animals)
	}
}
