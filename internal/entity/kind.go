package entity

import (
	"slices"

	"github.com/roach88/eav/internal/relation"
)

// Kind is the static capability metadata of one entity type.
type Kind interface {
	// Name is the definition name, e.g. "Product".
	Name() string
	// Table is the storage table of entity rows.
	Table() string
	// PrimaryKey is the key column of Table.
	PrimaryKey() string
	// EntityType is the objectType discriminator written to connector rows.
	// It must stay stable for as long as connector rows reference it.
	EntityType() string
	// AttributeTypes lists the declared attribute types.
	AttributeTypes() []relation.AttributeType
	// HasAttributes reports whether t is declared.
	HasAttributes(t relation.AttributeType) bool
}

// AttributeIdentifier is implemented by kinds that name the catalog entries
// relations to them are scoped to when no explicit ids are given.
type AttributeIdentifier interface {
	AttributeIDs() []int64
}

// Descriptor is the standard Kind.
type Descriptor struct {
	name       string
	table      string
	primaryKey string
	entityType string
	types      []relation.AttributeType
}

// DescriptorOption configures a Descriptor.
type DescriptorOption func(*Descriptor)

// WithPrimaryKey overrides the default "id" key column.
func WithPrimaryKey(column string) DescriptorOption {
	return func(d *Descriptor) {
		d.primaryKey = column
	}
}

// WithEntityType overrides the discriminator, which defaults to the table.
func WithEntityType(entityType string) DescriptorOption {
	return func(d *Descriptor) {
		d.entityType = entityType
	}
}

// WithAttributeTypes declares attribute types. Duplicates are ignored.
func WithAttributeTypes(types ...relation.AttributeType) DescriptorOption {
	return func(d *Descriptor) {
		for _, t := range types {
			if !slices.Contains(d.types, t) {
				d.types = append(d.types, t)
			}
		}
	}
}

// NewDescriptor describes entities named name stored in table.
func NewDescriptor(name, table string, opts ...DescriptorOption) *Descriptor {
	d := &Descriptor{name: name, table: table, primaryKey: "id"}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the definition name.
func (d *Descriptor) Name() string { return d.name }

// Table returns the entity table.
func (d *Descriptor) Table() string { return d.table }

// PrimaryKey returns the key column, "id" unless overridden.
func (d *Descriptor) PrimaryKey() string { return d.primaryKey }

// EntityType returns the override, or the table name.
func (d *Descriptor) EntityType() string {
	if d.entityType != "" {
		return d.entityType
	}
	return d.table
}

// AttributeTypes returns a copy of the declared types in declaration order.
func (d *Descriptor) AttributeTypes() []relation.AttributeType {
	return append([]relation.AttributeType(nil), d.types...)
}

// HasAttributes reports whether t is declared.
func (d *Descriptor) HasAttributes(t relation.AttributeType) bool {
	return slices.Contains(d.types, t)
}

// IdentifiedDescriptor is a Descriptor that also implements
// AttributeIdentifier.
type IdentifiedDescriptor struct {
	*Descriptor
	IDs []int64
}

// NewIdentifiedDescriptor attaches attribute ids to d.
func NewIdentifiedDescriptor(d *Descriptor, ids ...int64) *IdentifiedDescriptor {
	return &IdentifiedDescriptor{Descriptor: d, IDs: ids}
}

// AttributeIDs returns a copy of the attached catalog ids.
func (d *IdentifiedDescriptor) AttributeIDs() []int64 {
	return append([]int64(nil), d.IDs...)
}
