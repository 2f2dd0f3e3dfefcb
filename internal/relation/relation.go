package relation

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/eav/internal/ir"
	"github.com/roach88/eav/internal/queryir"
)

// Cardinality is the number of records a parent resolves to.
type Cardinality int

const (
	Many Cardinality = iota
	One
)

// Shape tells what a relation's records are.
type Shape int

const (
	// Primitive records are connector rows with the catalog name joined in.
	Primitive Shape = iota
	// Object records are rows of a related entity table linked through the
	// connector.
	Object
)

// pivotPrefix marks the match column added to object relation projections.
const pivotPrefix = "pivot_"

// ErrNoParent is returned by single-parent operations on a relation built
// without a parent.
var ErrNoParent = errors.New("relation has no parent")

// Relation links parents to records through a connector table.
//
// A Relation is built without constraints. It is then scoped either to its
// own parent (AddConstraints, used by Results/Save/Create/Count) or to a
// whole batch (AddEagerConstraints, used by the loader). Only the first
// scoping call takes effect.
//
// Relations are single-use and not safe for concurrent use.
type Relation struct {
	engine  QueryEngine
	dir     Directionality
	card    Cardinality
	shape   Shape
	catalog AttributeCatalog
	target  Target
	parent  Parent

	query       *queryir.Builder
	constrained bool
}

// NewPrimitive builds a relation whose records are connector rows with the
// attribute name resolved through the catalog.
func NewPrimitive(engine QueryEngine, dir Directionality, catalog AttributeCatalog, card Cardinality, parent Parent) *Relation {
	r := &Relation{
		engine:  engine,
		dir:     dir,
		card:    card,
		shape:   Primitive,
		catalog: catalog,
		parent:  parent,
	}
	conn := dir.Connector
	r.query = queryir.New(conn.Table).
		Join(catalog.Table, conn.Qualified(conn.AttributeID), "=", catalog.Table+"."+catalog.ID).
		Select(r.AttributeFields()...)
	return r
}

// NewObject builds a relation whose records are rows of target, linked to
// the parent through connector rows. The connector column on the local side
// is projected as a pivot column for matching and removed from the records.
func NewObject(engine QueryEngine, dir Directionality, target Target, card Cardinality, parent Parent) *Relation {
	r := &Relation{
		engine: engine,
		dir:    dir,
		card:   card,
		shape:  Object,
		target: target,
		parent: parent,
	}
	conn := dir.Connector
	r.query = queryir.New(target.Table).
		Join(conn.Table, target.qualifiedKey(), "=", dir.OtherKey).
		Select(target.Table+".*", dir.LocalKey+" AS "+r.matchColumn()).
		OrderBy(conn.Qualified("rowid"), false)
	return r
}

// AttributeFields is the projection of a primitive relation:
// value, name, objectType, objectID and attributeID.
func (r *Relation) AttributeFields() []string {
	conn := r.dir.Connector
	return []string{
		conn.Qualified(conn.Value),
		r.catalog.Table + "." + r.catalog.Name,
		conn.Qualified(conn.ObjectType),
		conn.Qualified(conn.ObjectID),
		conn.Qualified(conn.AttributeID),
	}
}

// Direction returns the relation's directionality.
func (r *Relation) Direction() Directionality {
	return r.dir
}

// Cardinality returns Many or One.
func (r *Relation) Cardinality() Cardinality {
	return r.card
}

// Shape returns Primitive or Object.
func (r *Relation) Shape() Shape {
	return r.shape
}

// Query returns the Select the relation would execute now.
func (r *Relation) Query() queryir.Select {
	return r.query.Build()
}

// AddConstraints scopes the relation to its own parent:
// LocalKey = parent key, plus the name-field filters.
// It is a no-op once any constraints were applied.
func (r *Relation) AddConstraints() *Relation {
	if r.constrained {
		return r
	}
	r.constrained = true
	if r.parent != nil {
		r.query.Where(r.dir.LocalKey, "=", r.parent.Key())
	}
	r.addNameFilters()
	return r
}

// AddEagerConstraints scopes the relation to a batch:
// LocalKey IN (distinct parent keys, batch order), plus the name-field
// filters. Parents without a key are skipped. It is a no-op once any
// constraints were applied.
func (r *Relation) AddEagerConstraints(parents []Parent) *Relation {
	if r.constrained {
		return r
	}
	r.constrained = true
	r.query.WhereIn(r.dir.LocalKey, parentKeys(parents))
	r.addNameFilters()
	return r
}

// addNameFilters restricts both sides by their type ids. For an owner
// relation this is objectType = owner entity type and, when ids were given,
// attributeID IN ids.
func (r *Relation) addNameFilters() {
	if len(r.dir.LocalTypeID) > 0 {
		r.query.WhereIn(r.dir.LocalNameField, r.dir.LocalTypeID)
	}
	if len(r.dir.OtherTypeID) > 0 {
		r.query.WhereIn(r.dir.OtherNameField, r.dir.OtherTypeID)
	}
}

// InitRelation gives every parent an empty result under name.
func (r *Relation) InitRelation(parents []Parent, name string) {
	for _, p := range parents {
		p.SetRelation(name, Empty(r.card == One))
	}
}

// Fetch executes the relation query once.
// Engine errors are returned wrapped, never retried.
func (r *Relation) Fetch(ctx context.Context) ([]ir.IRObject, error) {
	records, err := r.engine.Fetch(ctx, r.query.Build())
	if err != nil {
		return nil, fmt.Errorf("fetch relation on %s: %w", r.dir.Connector.Table, err)
	}
	return records, nil
}

// Match partitions records by their local key and assigns each partition
// to the parents with that key. Many keeps the whole partition in result
// order; One keeps only its first record. Parents with no records keep the
// placeholder from InitRelation.
func (r *Relation) Match(parents []Parent, records []ir.IRObject, name string) {
	buckets := make(map[string][]ir.IRObject)
	for _, rec := range records {
		key, ok := ir.KeyOf(rec[r.matchColumn()])
		if !ok {
			continue
		}
		buckets[key] = append(buckets[key], r.strip(rec))
	}

	for _, p := range parents {
		key, ok := ir.KeyOf(p.Key())
		if !ok {
			continue
		}
		partition, found := buckets[key]
		if !found {
			continue
		}
		p.SetRelation(name, r.collect(partition))
	}
}

// Results materializes the relation for its own parent, applying
// AddConstraints first when no constraints were applied yet.
func (r *Relation) Results(ctx context.Context) (Loaded, error) {
	if r.parent == nil {
		return Loaded{}, ErrNoParent
	}
	r.AddConstraints()

	records, err := r.Fetch(ctx)
	if err != nil {
		return Loaded{}, err
	}
	stripped := make([]ir.IRObject, len(records))
	for i, rec := range records {
		stripped[i] = r.strip(rec)
	}
	return r.collect(stripped), nil
}

// Count returns the number of connector rows under the relation's
// constraints, applying AddConstraints when none were applied yet.
func (r *Relation) Count(ctx context.Context) (int, error) {
	if !r.constrained && r.parent == nil {
		return 0, ErrNoParent
	}
	r.AddConstraints()

	sel := r.query.Build()
	sel.Columns = []string{r.dir.LocalKey}
	records, err := r.engine.Fetch(ctx, sel)
	if err != nil {
		return 0, fmt.Errorf("count relation on %s: %w", r.dir.Connector.Table, err)
	}
	return len(records), nil
}

// Save stamps record with the parent key in the local key column and, when
// the local side has exactly one type id, that id in the local name field.
// The stamped record is persisted into the connector table and the new row
// id is returned. For an owner relation the stamps are objectID and
// objectType.
func (r *Relation) Save(ctx context.Context, record ir.IRObject) (int64, error) {
	values, err := r.stamp(record)
	if err != nil {
		return 0, err
	}
	id, err := r.engine.Persist(ctx, queryir.Insert{Into: r.dir.Connector.Table, Values: values})
	if err != nil {
		return 0, fmt.Errorf("save into %s: %w", r.dir.Connector.Table, err)
	}
	return id, nil
}

// Create persists a new connector row built from attrs plus the parent
// stamps and returns it with its id. attrs is not modified.
func (r *Relation) Create(ctx context.Context, attrs ir.IRObject) (ir.IRObject, error) {
	values, err := r.stamp(attrs)
	if err != nil {
		return nil, err
	}
	id, err := r.engine.Persist(ctx, queryir.Insert{Into: r.dir.Connector.Table, Values: values})
	if err != nil {
		return nil, fmt.Errorf("create in %s: %w", r.dir.Connector.Table, err)
	}
	values["id"] = ir.IRInt(id)
	return values, nil
}

func (r *Relation) stamp(record ir.IRObject) (ir.IRObject, error) {
	if r.parent == nil {
		return nil, ErrNoParent
	}
	values := record.Clone()
	values[bare(r.dir.LocalKey)] = r.parent.Key()
	if len(r.dir.LocalTypeID) == 1 {
		values[bare(r.dir.LocalNameField)] = r.dir.LocalTypeID[0]
	}
	return values, nil
}

// matchColumn is the result column holding the local key.
func (r *Relation) matchColumn() string {
	if r.shape == Object {
		return pivotPrefix + bare(r.dir.LocalKey)
	}
	return bare(r.dir.LocalKey)
}

// strip drops the pivot column from object records.
func (r *Relation) strip(rec ir.IRObject) ir.IRObject {
	if r.shape != Object {
		return rec
	}
	out := rec.Clone()
	delete(out, r.matchColumn())
	return out
}

func (r *Relation) collect(records []ir.IRObject) Loaded {
	loaded := Empty(r.card == One)
	if r.card == One {
		if len(records) > 0 {
			loaded.Records = append(loaded.Records, records[0])
		}
		return loaded
	}
	loaded.Records = append(loaded.Records, records...)
	return loaded
}

// parentKeys returns the distinct non-null parent keys in batch order.
func parentKeys(parents []Parent) []ir.IRValue {
	seen := make(map[string]bool, len(parents))
	keys := make([]ir.IRValue, 0, len(parents))
	for _, p := range parents {
		key := p.Key()
		k, ok := ir.KeyOf(key)
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, key)
	}
	return keys
}
