package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/eav/internal/compiler"
	"github.com/roach88/eav/internal/entity"
	"github.com/roach88/eav/internal/ir"
	"github.com/roach88/eav/internal/loader"
	"github.com/roach88/eav/internal/queryir"
	"github.com/roach88/eav/internal/relation"
	"github.com/roach88/eav/internal/store"
	"github.com/roach88/eav/internal/testutil"
)

// DefaultLoadID is used when a scenario does not set load_id.
const DefaultLoadID = "test-load-default"

// Harness runs one scenario against a fresh database.
type Harness struct {
	store    *store.Store
	engine   *testutil.RecordingEngine
	loader   *loader.Loader
	catalog  *compiler.Catalog
	registry *relation.Registry
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. A fixed
// load id keeps snapshots reproducible.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Compile entity definitions
// 3. Run setup statements and insert rows
// 4. Batch-load the requested entity, counting queries
// 5. Check expectations and return the snapshot
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	registry := relation.DefaultRegistry()
	catalog, err := compiler.LoadFiles(scenario.Definitions, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to compile definitions: %w", err)
	}

	loadID := scenario.LoadID
	if loadID == "" {
		loadID = DefaultLoadID
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	eng := testutil.NewRecordingEngine(st)
	h := &Harness{
		store:    st,
		engine:   eng,
		catalog:  catalog,
		registry: registry,
		logger:   logger,
		loader: loader.New(eng,
			loader.WithRegistry(registry),
			loader.WithLogger(logger),
			loader.WithLoadIDs(testutil.NewFixedLoadIDs(loadID))),
	}

	ctx := context.Background()
	if err := h.prepare(ctx, scenario); err != nil {
		return nil, err
	}

	models, err := h.load(ctx, scenario.Load)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.LoadID = loadID
	result.Queries = h.attributeQueries()
	for _, m := range models {
		result.Entities = append(result.Entities, m.ToMap())
	}

	for _, msg := range EvaluateExpectations(models, scenario.Expect) {
		result.AddError(msg)
	}
	if scenario.Queries != nil && *scenario.Queries != result.Queries {
		result.AddError((&AssertionError{
			Type:     "queries",
			Expected: fmt.Sprintf("%d attribute queries", *scenario.Queries),
			Actual:   fmt.Sprintf("%d attribute queries", result.Queries),
		}).Error())
	}

	return result, nil
}

// prepare runs setup statements and inserts rows. Queries issued here are
// not counted.
func (h *Harness) prepare(ctx context.Context, scenario *Scenario) error {
	for i, stmt := range scenario.Setup {
		if err := h.store.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}

	for i, row := range scenario.Rows {
		values, err := ir.ObjectFromGo(row.Values)
		if err != nil {
			return fmt.Errorf("rows[%d]: %w", i, err)
		}
		if _, err := h.store.Persist(ctx, queryir.Insert{Into: row.Table, Values: values}); err != nil {
			return fmt.Errorf("rows[%d]: %w", i, err)
		}
	}

	h.logger.Info("scenario prepared",
		"statements", len(scenario.Setup),
		"rows", len(scenario.Rows))
	return nil
}

func (h *Harness) load(ctx context.Context, step LoadStep) ([]*entity.Model, error) {
	kind, ok := h.catalog.Lookup(step.Entity)
	if !ok {
		return nil, fmt.Errorf("unknown entity %q", step.Entity)
	}

	b := h.loader.Query(kind).OrderBy(kind.PrimaryKey(), false)
	if len(step.Keys) > 0 {
		keys := make([]ir.IRValue, len(step.Keys))
		for i, k := range step.Keys {
			v, err := ir.FromGo(k)
			if err != nil {
				return nil, fmt.Errorf("load.keys[%d]: %w", i, err)
			}
			keys[i] = v
		}
		b.WhereIn(kind.PrimaryKey(), keys)
	}

	for _, w := range step.With {
		fn, err := h.relationFunc(w)
		if err != nil {
			return nil, err
		}
		b.With(w.Name, fn)
	}

	models, err := b.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", step.Entity, err)
	}
	return models, nil
}

func (h *Harness) relationFunc(w WithStep) (loader.RelationFunc, error) {
	related, ok := h.catalog.Lookup(w.Entity)
	if !ok {
		return nil, fmt.Errorf("with %s: unknown entity %q", w.Name, w.Entity)
	}
	eng := h.engine
	switch w.Relation {
	case RelationOwnsMany:
		return func(m *entity.Model) (*relation.Relation, error) { return m.OwnsMany(eng, related, w.IDs...) }, nil
	case RelationOwnsOne:
		return func(m *entity.Model) (*relation.Relation, error) { return m.OwnsOne(eng, related, w.IDs...) }, nil
	case RelationOwnedBy:
		return func(m *entity.Model) (*relation.Relation, error) { return m.IsOwnedBySingle(eng, related, w.IDs...) }, nil
	default:
		return nil, fmt.Errorf("with %s: unknown relation %q", w.Name, w.Relation)
	}
}

// attributeQueries counts fetches against registered connector tables.
func (h *Harness) attributeQueries() int {
	n := 0
	for _, spec := range h.registry.Specs() {
		n += h.engine.FetchCountFor(spec.ConnectorTable)
	}
	return n
}
