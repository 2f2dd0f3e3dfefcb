package testutil

import (
	"context"
	"sync"

	"github.com/roach88/eav/internal/ir"
	"github.com/roach88/eav/internal/queryir"
)

// QueryEngine matches relation.QueryEngine without importing it.
type QueryEngine interface {
	Fetch(ctx context.Context, q queryir.Select) ([]ir.IRObject, error)
	Persist(ctx context.Context, q queryir.Insert) (int64, error)
}

// RecordingEngine records every query it receives.
//
// With an inner engine it delegates execution, which lets tests count the
// queries a load issues against a real store. Without one it answers
// fetches from rows registered with SetRows (ignoring filters) and assigns
// persist ids from a Sequence.
//
// Thread-safety: all methods are safe for concurrent use.
type RecordingEngine struct {
	mu      sync.Mutex
	inner   QueryEngine
	rows    map[string][]ir.IRObject
	seq     *Sequence
	err     error
	selects []queryir.Select
	inserts []queryir.Insert
}

// NewRecordingEngine wraps inner.
func NewRecordingEngine(inner QueryEngine) *RecordingEngine {
	return &RecordingEngine{inner: inner, rows: make(map[string][]ir.IRObject), seq: NewSequence()}
}

// NewStaticEngine returns an engine that serves canned rows.
func NewStaticEngine() *RecordingEngine {
	return NewRecordingEngine(nil)
}

// SetRows sets the rows returned for selects from table, in order.
func (e *RecordingEngine) SetRows(table string, rows ...ir.IRObject) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows[table] = rows
}

// FailWith makes every subsequent query fail with err.
func (e *RecordingEngine) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

// Fetch records q and returns rows.
func (e *RecordingEngine) Fetch(ctx context.Context, q queryir.Select) ([]ir.IRObject, error) {
	e.mu.Lock()
	e.selects = append(e.selects, q)
	err, inner := e.err, e.inner
	rows := append([]ir.IRObject{}, e.rows[q.From]...)
	e.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if inner != nil {
		return inner.Fetch(ctx, q)
	}
	return rows, nil
}

// Persist records q and returns a new id.
func (e *RecordingEngine) Persist(ctx context.Context, q queryir.Insert) (int64, error) {
	e.mu.Lock()
	e.inserts = append(e.inserts, q)
	err, inner := e.err, e.inner
	e.mu.Unlock()

	if err != nil {
		return 0, err
	}
	if inner != nil {
		return inner.Persist(ctx, q)
	}
	return e.seq.Next(), nil
}

// Selects returns every recorded select in call order.
func (e *RecordingEngine) Selects() []queryir.Select {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]queryir.Select(nil), e.selects...)
}

// Inserts returns every recorded insert in call order.
func (e *RecordingEngine) Inserts() []queryir.Insert {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]queryir.Insert(nil), e.inserts...)
}

// FetchCount returns the number of fetches issued.
func (e *RecordingEngine) FetchCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.selects)
}

// FetchCountFor returns the number of fetches whose base table is table.
func (e *RecordingEngine) FetchCountFor(table string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.selects {
		if s.From == table {
			n++
		}
	}
	return n
}

// Reset forgets recorded queries. Rows and failure mode are kept.
func (e *RecordingEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selects = nil
	e.inserts = nil
}
