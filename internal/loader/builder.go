package loader

import (
	"context"
	"fmt"

	"github.com/roach88/eav/internal/entity"
	"github.com/roach88/eav/internal/ir"
	"github.com/roach88/eav/internal/queryir"
	"github.com/roach88/eav/internal/relation"
)

// RelationFunc builds a relation from a representative model of the batch.
// Typically a method value such as:
//
//	func(m *entity.Model) (*relation.Relation, error) { return m.OwnsMany(eng, Order) }
type RelationFunc func(m *entity.Model) (*relation.Relation, error)

type eagerRelation struct {
	name string
	fn   RelationFunc
}

// Builder loads a batch of entities of one kind.
//
// Get runs, in order: the base query, one query per With relation, then one
// query per declared attribute type. Attribute sets always land on an
// already hydrated batch.
type Builder struct {
	loader *Loader
	kind   entity.Kind
	query  *queryir.Builder
	with   []eagerRelation
}

// Query starts a batch load of kind.
func (l *Loader) Query(kind entity.Kind) *Builder {
	return &Builder{
		loader: l,
		kind:   kind,
		query:  queryir.New(kind.Table()),
	}
}

// Where filters base rows by "field op value".
func (b *Builder) Where(field, op string, value ir.IRValue) *Builder {
	b.query.Where(field, op, value)
	return b
}

// WhereIn filters base rows by set membership.
func (b *Builder) WhereIn(field string, values []ir.IRValue) *Builder {
	b.query.WhereIn(field, values)
	return b
}

// OrderBy orders base rows. Without it rows come back in insertion order.
func (b *Builder) OrderBy(field string, desc bool) *Builder {
	b.query.OrderBy(field, desc)
	return b
}

// With eager-loads the relation built by fn under name.
func (b *Builder) With(name string, fn RelationFunc) *Builder {
	b.with = append(b.with, eagerRelation{name: name, fn: fn})
	return b
}

// Get runs the load. It returns an empty slice when no rows match.
func (b *Builder) Get(ctx context.Context) ([]*entity.Model, error) {
	l := b.loader
	rows, err := l.engine.Fetch(ctx, b.query.Build())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", b.kind.Name(), err)
	}

	models := l.Hydrate(b.kind, rows)
	if len(models) == 0 {
		return models, nil
	}

	loadID := l.ids.Generate()
	l.logger.Debug("entities loaded",
		"load_id", loadID,
		"entity_type", b.kind.EntityType(),
		"rows", len(rows))

	for _, w := range b.with {
		if err := l.loadRelation(ctx, loadID, w.name, w.fn, models); err != nil {
			return nil, fmt.Errorf("load %s: %w", b.kind.Name(), err)
		}
	}

	if err := l.loadAttributes(ctx, loadID, b.kind, models); err != nil {
		return nil, err
	}
	return models, nil
}

// Find loads the entity with primary key key. ok is false when no row
// matches.
func (b *Builder) Find(ctx context.Context, key ir.IRValue) (*entity.Model, bool, error) {
	models, err := b.Where(b.kind.PrimaryKey(), "=", key).Get(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(models) == 0 {
		return nil, false, nil
	}
	return models[0], true, nil
}

// Ensure Model satisfies the relation contracts the loader relies on.
var _ relation.Owner = (*entity.Model)(nil)
