package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/eav/internal/entity"
	"github.com/roach88/eav/internal/ir"
	"github.com/roach88/eav/internal/relation"
)

// Loader eager-loads attribute sets onto batches of entities.
//
// For every attribute type a kind declares, LoadAttributes issues exactly one
// query, however many entities the batch holds. A batch of N entities
// declaring K types costs K queries.
//
// Loader holds no per-load state and may be shared; a single load is
// sequential and blocks on each query in turn.
type Loader struct {
	engine     relation.QueryEngine
	registry   *relation.Registry
	catalog    relation.AttributeCatalog
	objectConn relation.Connector
	logger     *slog.Logger
	ids        LoadIDGenerator
}

// Option configures a Loader.
type Option func(*Loader)

// WithRegistry sets the attribute type registry.
// Default: relation.DefaultRegistry().
func WithRegistry(r *relation.Registry) Option {
	return func(l *Loader) {
		l.registry = r
	}
}

// WithCatalog sets the attribute catalog table.
func WithCatalog(c relation.AttributeCatalog) Option {
	return func(l *Loader) {
		l.catalog = c
	}
}

// WithObjectConnector sets the connector hydrated models use for
// entity-to-entity relations.
func WithObjectConnector(c relation.Connector) Option {
	return func(l *Loader) {
		l.objectConn = c
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithLoadIDs sets the load id generator. Default: UUIDv7Generator.
func WithLoadIDs(g LoadIDGenerator) Option {
	return func(l *Loader) {
		l.ids = g
	}
}

// New creates a Loader running queries on engine.
func New(engine relation.QueryEngine, opts ...Option) *Loader {
	l := &Loader{
		engine:     engine,
		registry:   relation.DefaultRegistry(),
		catalog:    relation.DefaultCatalog(),
		objectConn: relation.NewConnector(relation.DefaultObjectTable),
		logger:     slog.Default(),
		ids:        UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Registry returns the loader's attribute type registry.
func (l *Loader) Registry() *relation.Registry {
	return l.registry
}

// Hydrate wraps rows of kind into models sharing the loader's registry,
// catalog and object connector.
func (l *Loader) Hydrate(kind entity.Kind, rows []ir.IRObject) []*entity.Model {
	models := make([]*entity.Model, len(rows))
	for i, row := range rows {
		models[i] = entity.New(kind, row,
			entity.WithRegistry(l.registry),
			entity.WithCatalog(l.catalog),
			entity.WithObjectConnector(l.objectConn))
	}
	return models
}

// LoadAttributes gives every model one attribute set per attribute type kind
// declares, in registry order.
//
// Per type: build an unconstrained relation for the first model, scope it to
// the batch, give every model an empty set, fetch once and match the rows
// back by objectID. An empty batch or a kind declaring no types issues no
// queries. The first engine error aborts the load and is returned wrapped.
func (l *Loader) LoadAttributes(ctx context.Context, kind entity.Kind, models []*entity.Model) error {
	if len(models) == 0 {
		return nil
	}
	return l.loadAttributes(ctx, l.ids.Generate(), kind, models)
}

func (l *Loader) loadAttributes(ctx context.Context, loadID string, kind entity.Kind, models []*entity.Model) error {
	parents := asParents(models)
	representative := models[0]

	for _, spec := range l.registry.Specs() {
		if !kind.HasAttributes(spec.Type) {
			continue
		}

		rel := relation.NewAttributeRelation(l.engine, spec, l.catalog, representative)
		rel.AddEagerConstraints(parents)
		rel.InitRelation(parents, spec.RelationName)

		records, err := rel.Fetch(ctx)
		if err != nil {
			l.logger.Error("attribute load failed",
				"load_id", loadID,
				"entity_type", kind.EntityType(),
				"relation", spec.RelationName,
				"error", err)
			return fmt.Errorf("load %s %s: %w", kind.Name(), spec.RelationName, err)
		}

		rel.Match(parents, records, spec.RelationName)

		l.logger.Debug("attribute set loaded",
			"load_id", loadID,
			"entity_type", kind.EntityType(),
			"relation", spec.RelationName,
			"entities", len(models),
			"rows", len(records))
	}

	return nil
}

// loadRelation eager-loads one non-attribute relation for a batch.
func (l *Loader) loadRelation(ctx context.Context, loadID, name string, fn RelationFunc, models []*entity.Model) error {
	rel, err := fn(models[0])
	if err != nil {
		return fmt.Errorf("build relation %s: %w", name, err)
	}

	parents := asParents(models)
	rel.AddEagerConstraints(parents)
	rel.InitRelation(parents, name)

	records, err := rel.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("load relation %s: %w", name, err)
	}
	rel.Match(parents, records, name)

	l.logger.Debug("relation loaded",
		"load_id", loadID,
		"relation", name,
		"entities", len(models),
		"rows", len(records))
	return nil
}

func asParents(models []*entity.Model) []relation.Parent {
	parents := make([]relation.Parent, len(models))
	for i, m := range models {
		parents[i] = m
	}
	return parents
}
