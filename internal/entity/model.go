package entity

import (
	"context"
	"fmt"

	"github.com/roach88/eav/internal/ir"
	"github.com/roach88/eav/internal/relation"
)

// Model is one loaded entity: its own columns plus loaded relations.
//
// Attribute sets are stored as relations under the registry's relation
// names (stringAttributes, ...). Model is not safe for concurrent use.
type Model struct {
	kind       Kind
	columns    ir.IRObject
	relations  map[string]relation.Loaded
	order      []string
	registry   *relation.Registry
	catalog    relation.AttributeCatalog
	objectConn relation.Connector
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithRegistry sets the attribute type registry. Defaults to
// relation.DefaultRegistry().
func WithRegistry(r *relation.Registry) ModelOption {
	return func(m *Model) {
		m.registry = r
	}
}

// WithCatalog sets the attribute catalog used by Attributes.
func WithCatalog(c relation.AttributeCatalog) ModelOption {
	return func(m *Model) {
		m.catalog = c
	}
}

// WithObjectConnector sets the connector used by OwnsMany, OwnsOne and
// IsOwnedBySingle.
func WithObjectConnector(c relation.Connector) ModelOption {
	return func(m *Model) {
		m.objectConn = c
	}
}

// New wraps a row of kind. columns is copied.
func New(kind Kind, columns ir.IRObject, opts ...ModelOption) *Model {
	m := &Model{
		kind:       kind,
		columns:    columns.Clone(),
		relations:  make(map[string]relation.Loaded),
		catalog:    relation.DefaultCatalog(),
		objectConn: relation.NewConnector(relation.DefaultObjectTable),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = relation.DefaultRegistry()
	}
	return m
}

// Kind returns the model's kind.
func (m *Model) Kind() Kind {
	return m.kind
}

// Key returns the primary key value, or IRNull if the column is missing.
func (m *Model) Key() ir.IRValue {
	if v, ok := m.columns[m.kind.PrimaryKey()]; ok {
		return v
	}
	return ir.IRNull{}
}

// EntityType returns the kind's discriminator.
func (m *Model) EntityType() string {
	return m.kind.EntityType()
}

// HasStringAttributes reports whether the kind declares string attributes.
func (m *Model) HasStringAttributes() bool { return m.kind.HasAttributes(relation.StringType) }

// HasIntegerAttributes reports whether the kind declares integer attributes.
func (m *Model) HasIntegerAttributes() bool { return m.kind.HasAttributes(relation.IntegerType) }

// HasFloatAttributes reports whether the kind declares float attributes.
func (m *Model) HasFloatAttributes() bool { return m.kind.HasAttributes(relation.FloatType) }

// HasAttributes reports whether the kind declares attribute type t.
func (m *Model) HasAttributes(t relation.AttributeType) bool {
	return m.kind.HasAttributes(t)
}

// Column returns an own column as stored, including IRNull.
func (m *Model) Column(name string) (ir.IRValue, bool) {
	v, ok := m.columns[name]
	return v, ok
}

// SetColumn sets an own column.
func (m *Model) SetColumn(name string, v ir.IRValue) {
	m.columns[name] = v
}

// SetRelation stores a loaded relation under name.
func (m *Model) SetRelation(name string, loaded relation.Loaded) {
	if _, exists := m.relations[name]; !exists {
		m.order = append(m.order, name)
	}
	m.relations[name] = loaded
}

// Relation returns the relation loaded under name.
func (m *Model) Relation(name string) (relation.Loaded, bool) {
	loaded, ok := m.relations[name]
	return loaded, ok
}

// declaredSpecs returns the registry specs the kind declares, in registry
// order.
func (m *Model) declaredSpecs() []relation.TypeSpec {
	var out []relation.TypeSpec
	for _, spec := range m.registry.Specs() {
		if m.kind.HasAttributes(spec.Type) {
			out = append(out, spec)
		}
	}
	return out
}

// Attribute looks name up.
//
// A present, non-NULL own column always wins, even when it holds "" or 0.
// A NULL or missing column falls through to the loaded attribute sets in
// declaration order; the first record named name wins. ok is false when
// nothing matches.
func (m *Model) Attribute(name string) (ir.IRValue, bool) {
	if v, ok := m.columns[name]; ok && !ir.IsNull(v) {
		return v, true
	}
	for _, spec := range m.declaredSpecs() {
		if v, ok := lookupSet(m.relations[spec.RelationName], name); ok {
			return v, true
		}
	}
	return nil, false
}

func lookupSet(loaded relation.Loaded, name string) (ir.IRValue, bool) {
	for _, rec := range loaded.Records {
		if rec["name"] == ir.IRString(name) {
			v, ok := rec["value"]
			if !ok {
				v = ir.IRNull{}
			}
			return v, true
		}
	}
	return nil, false
}

// AttributeSet returns the loaded attributes of type t as name → value.
// Within one set the first record of a name wins, as in Attribute.
func (m *Model) AttributeSet(t relation.AttributeType) ir.IRObject {
	out := ir.IRObject{}
	spec, err := m.registry.Lookup(t)
	if err != nil || !m.kind.HasAttributes(t) {
		return out
	}
	for _, rec := range m.relations[spec.RelationName].Records {
		name, ok := rec["name"].(ir.IRString)
		if !ok {
			continue
		}
		if _, seen := out[string(name)]; seen {
			continue
		}
		v, ok := rec["value"]
		if !ok {
			v = ir.IRNull{}
		}
		out[string(name)] = v
	}
	return out
}

// ToMap flattens the model for output.
//
// Attribute sets are merged in declaration order, so a later type wins a
// name collision. Non-attribute relations are added next (a list for
// collection relations, an object or null for singular ones), then own
// columns. A non-NULL own column always wins. Attribute set relation keys
// never appear in the output.
func (m *Model) ToMap() ir.IRObject {
	out := ir.IRObject{}
	for _, spec := range m.declaredSpecs() {
		for k, v := range m.AttributeSet(spec.Type) {
			out[k] = v
		}
	}
	for _, name := range m.order {
		if m.registry.IsAttributeSet(name) {
			continue
		}
		out[name] = m.relations[name].Value()
	}
	for k, v := range m.columns {
		if _, taken := out[k]; taken && ir.IsNull(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// MarshalJSON renders ToMap as canonical JSON.
func (m *Model) MarshalJSON() ([]byte, error) {
	return ir.MarshalCanonical(m.ToMap())
}

// Attributes returns the lazy attribute relation of type t for this model.
// ids optionally scope it to catalog entries.
func (m *Model) Attributes(engine relation.QueryEngine, t relation.AttributeType, ids ...int64) (*relation.Relation, error) {
	spec, err := m.registry.Lookup(t)
	if err != nil {
		return nil, err
	}
	if !m.kind.HasAttributes(t) {
		return nil, &ConfigError{Kind: m.kind.Name(), Relation: spec.RelationName, Err: ErrUndeclaredAttributeType}
	}
	return relation.NewAttributeRelation(engine, spec, m.catalog, m, ids...), nil
}

// OwnsMany relates this model to every related entity linked from it
// through the object connector.
func (m *Model) OwnsMany(engine relation.QueryEngine, related Kind, ids ...int64) (*relation.Relation, error) {
	return m.owns(engine, "OwnsMany", related, relation.Many, ids)
}

// OwnsOne is OwnsMany resolving to the first linked entity.
func (m *Model) OwnsOne(engine relation.QueryEngine, related Kind, ids ...int64) (*relation.Relation, error) {
	return m.owns(engine, "OwnsOne", related, relation.One, ids)
}

func (m *Model) owns(engine relation.QueryEngine, factory string, related Kind, card relation.Cardinality, ids []int64) (*relation.Relation, error) {
	resolved, err := m.resolveIDs(factory, related, ids)
	if err != nil {
		return nil, err
	}
	dir := relation.NewOwner(m.objectConn, m.EntityType(), resolved)
	return relation.NewObject(engine, dir, targetOf(related), card, m), nil
}

// IsOwnedBySingle relates this model to the related entity whose connector
// row points at it. Several owners resolve to the first in link order.
func (m *Model) IsOwnedBySingle(engine relation.QueryEngine, related Kind, ids ...int64) (*relation.Relation, error) {
	resolved, err := m.resolveIDs("IsOwnedBySingle", related, ids)
	if err != nil {
		return nil, err
	}
	dir := relation.NewOwned(m.objectConn, related.EntityType(), resolved)
	return relation.NewObject(engine, dir, targetOf(related), relation.One, m), nil
}

// LoadRelation materializes rel for this model and stores it under name.
func (m *Model) LoadRelation(ctx context.Context, name string, rel *relation.Relation) error {
	loaded, err := rel.Results(ctx)
	if err != nil {
		return fmt.Errorf("load %s.%s: %w", m.kind.Name(), name, err)
	}
	m.SetRelation(name, loaded)
	return nil
}

// resolveIDs picks explicit ids, else the related kind's AttributeIDs.
func (m *Model) resolveIDs(factory string, related Kind, ids []int64) ([]int64, error) {
	if len(ids) > 0 {
		return ids, nil
	}
	if ai, ok := related.(AttributeIdentifier); ok {
		if resolved := ai.AttributeIDs(); len(resolved) > 0 {
			return resolved, nil
		}
	}
	return nil, &ConfigError{
		Kind:     m.kind.Name(),
		Relation: factory,
		Related:  related.Name(),
		Err:      ErrMissingAttributeIDs,
	}
}

func targetOf(k Kind) relation.Target {
	return relation.Target{Table: k.Table(), PrimaryKey: k.PrimaryKey()}
}
