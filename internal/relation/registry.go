package relation

import (
	"errors"
	"fmt"
)

// AttributeType tags a scalar attribute type.
type AttributeType string

const (
	StringType  AttributeType = "string"
	IntegerType AttributeType = "integer"
	FloatType   AttributeType = "float"
)

// ErrUnknownType is returned when an attribute type is not registered.
var ErrUnknownType = errors.New("unknown attribute type")

// TypeSpec binds an attribute type to its connector table and the relation
// name its attribute set is stored under.
type TypeSpec struct {
	Type           AttributeType
	ConnectorTable string
	RelationName   string
}

// Connector returns the connector for the spec's table.
func (s TypeSpec) Connector() Connector {
	return NewConnector(s.ConnectorTable)
}

// Registry maps attribute types to their specs in declaration order.
// Declaration order drives load order, lookup fallback order and the
// serialization merge (later types win on name collisions).
type Registry struct {
	specs []TypeSpec
	index map[AttributeType]int
}

// NewRegistry returns a registry holding specs in the given order.
func NewRegistry(specs ...TypeSpec) (*Registry, error) {
	r := &Registry{index: make(map[AttributeType]int)}
	for _, s := range specs {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns string, integer and float on the bootstrap schema.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		TypeSpec{Type: StringType, ConnectorTable: "string_attributes", RelationName: "stringAttributes"},
		TypeSpec{Type: IntegerType, ConnectorTable: "integer_attributes", RelationName: "integerAttributes"},
		TypeSpec{Type: FloatType, ConnectorTable: "float_attributes", RelationName: "floatAttributes"},
	)
	if err != nil {
		panic(err) // static input
	}
	return r
}

// Register appends a scalar type. A type or relation name can only be
// registered once.
func (r *Registry) Register(spec TypeSpec) error {
	if spec.Type == "" || spec.ConnectorTable == "" || spec.RelationName == "" {
		return fmt.Errorf("register %q: type, connector table and relation name are required", spec.Type)
	}
	if _, exists := r.index[spec.Type]; exists {
		return fmt.Errorf("register %q: type already registered", spec.Type)
	}
	for _, s := range r.specs {
		if s.RelationName == spec.RelationName {
			return fmt.Errorf("register %q: relation name %q already used by %q", spec.Type, spec.RelationName, s.Type)
		}
	}
	r.index[spec.Type] = len(r.specs)
	r.specs = append(r.specs, spec)
	return nil
}

// Lookup returns the spec for t.
func (r *Registry) Lookup(t AttributeType) (TypeSpec, error) {
	i, ok := r.index[t]
	if !ok {
		return TypeSpec{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return r.specs[i], nil
}

// Specs returns all specs in declaration order.
func (r *Registry) Specs() []TypeSpec {
	return append([]TypeSpec(nil), r.specs...)
}

// Types returns all registered types in declaration order.
func (r *Registry) Types() []AttributeType {
	out := make([]AttributeType, len(r.specs))
	for i, s := range r.specs {
		out[i] = s.Type
	}
	return out
}

// IsAttributeSet reports whether name is the relation name of a registered
// type.
func (r *Registry) IsAttributeSet(name string) bool {
	for _, s := range r.specs {
		if s.RelationName == name {
			return true
		}
	}
	return false
}

// NewAttributeRelation builds the unconstrained owner relation holding
// owner's attribute set for one type. ids, when given, scope it to specific
// catalog entries.
func NewAttributeRelation(engine QueryEngine, spec TypeSpec, catalog AttributeCatalog, owner Owner, ids ...int64) *Relation {
	dir := NewOwner(spec.Connector(), owner.EntityType(), ids)
	return NewPrimitive(engine, dir, catalog, Many, owner)
}
