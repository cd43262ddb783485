// Package remotetest provides an in-memory remote.Backend with failure
// injection for tests.
package remotetest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dukerupert/chorehub/internal/remote"
)

// ErrInjected is the default error returned by injected failures.
var ErrInjected = errors.New("simulated network error")

// Call records one backend invocation.
type Call struct {
	Op    string
	Table string
	ID    string
	Row   remote.Row
}

type failure struct {
	op    string
	table string
	err   error
}

// Backend stores rows per table in insertion order.
type Backend struct {
	mu       sync.Mutex
	tables   map[string][]remote.Row
	seq      int
	failures []failure
	calls    []Call
	// Gate, when set, is received from before each call returns.
	Gate chan struct{}
}

var _ remote.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{tables: make(map[string][]remote.Row)}
}

// FailNext makes the next matching call fail. Empty op or table match anything.
// A nil err uses ErrInjected.
func (b *Backend) FailNext(op, table string, err error) {
	if err == nil {
		err = ErrInjected
	}
	b.mu.Lock()
	b.failures = append(b.failures, failure{op: op, table: table, err: err})
	b.mu.Unlock()
}

// Calls returns every call made so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.calls)
}

// Rows returns a copy of the rows stored in table.
func (b *Backend) Rows(table string) []remote.Row {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]remote.Row, 0, len(b.tables[table]))
	for _, r := range b.tables[table] {
		out = append(out, copyRow(r))
	}
	return out
}

// Seed inserts a row directly, bypassing failure injection and call recording.
func (b *Backend) Seed(table string, row remote.Row) remote.Row {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.insertLocked(table, row)
}

func (b *Backend) begin(op, table, id string, row remote.Row) error {
	b.mu.Lock()
	b.calls = append(b.calls, Call{Op: op, Table: table, ID: id, Row: copyRow(row)})
	var err error
	for i, f := range b.failures {
		if (f.op == "" || f.op == op) && (f.table == "" || f.table == table) {
			err = f.err
			b.failures = append(b.failures[:i], b.failures[i+1:]...)
			break
		}
	}
	gate := b.Gate
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (b *Backend) insertLocked(table string, row remote.Row) remote.Row {
	stored := copyRow(row)
	if id, _ := stored["id"].(string); id == "" {
		b.seq++
		stored["id"] = fmt.Sprintf("%s-%d", table, b.seq)
	}
	b.tables[table] = append(b.tables[table], stored)
	return copyRow(stored)
}

func (b *Backend) Insert(ctx context.Context, table string, row remote.Row) (remote.Row, error) {
	if err := b.begin("insert", table, "", row); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if id, _ := row["id"].(string); id != "" {
		for _, r := range b.tables[table] {
			if r["id"] == id {
				return nil, fmt.Errorf("duplicate key %q in %s", id, table)
			}
		}
	}
	return b.insertLocked(table, row), nil
}

func (b *Backend) Update(ctx context.Context, table, id string, fields remote.Row) error {
	if err := b.begin("update", table, id, fields); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.tables[table] {
		if r["id"] == id {
			for k, v := range copyRow(fields) {
				r[k] = v
			}
			return nil
		}
	}
	return fmt.Errorf("update %s %s: %w", table, id, remote.ErrNoRow)
}

func (b *Backend) Delete(ctx context.Context, table, id string) error {
	if err := b.begin("delete", table, id, nil); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tables[table] = slices.DeleteFunc(b.tables[table], func(r remote.Row) bool {
		return r["id"] == id
	})
	return nil
}

func (b *Backend) List(ctx context.Context, table string, filter remote.Row) ([]remote.Row, error) {
	if err := b.begin("list", table, "", filter); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []remote.Row
	for _, r := range b.tables[table] {
		match := true
		for k, v := range filter {
			if r[k] != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, copyRow(r))
		}
	}
	return out, nil
}

func copyRow(r remote.Row) remote.Row {
	if r == nil {
		return nil
	}
	out := make(remote.Row, len(r))
	for k, v := range r {
		if s, ok := v.([]string); ok {
			v = slices.Clone(s)
		}
		out[k] = v
	}
	return out
}
