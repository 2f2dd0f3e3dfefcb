package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/eav/internal/ir"
)

func TestBuilder_NoFilters(t *testing.T) {
	sel := New("products").Build()

	assert.Equal(t, "products", sel.From)
	assert.Nil(t, sel.Filter)
	assert.Empty(t, sel.Columns)
}

func TestBuilder_SingleFilterIsNotWrapped(t *testing.T) {
	sel := New("products").Where("id", "=", ir.IRInt(42)).Build()

	assert.Equal(t, Equals{Field: "id", Value: ir.IRInt(42)}, sel.Filter)
}

func TestBuilder_CompareOperator(t *testing.T) {
	sel := New("products").Where("price", ">", ir.IRFloat(10)).Build()

	assert.Equal(t, Compare{Field: "price", Op: ">", Value: ir.IRFloat(10)}, sel.Filter)
}

func TestBuilder_Full(t *testing.T) {
	b := New("string_attributes").
		Join("attributes", "string_attributes.attributeID", "=", "attributes.attributeID").
		WhereIn("string_attributes.objectID", []ir.IRValue{ir.IRInt(42), ir.IRInt(43)}).
		Where("string_attributes.objectType", "=", ir.IRString("product")).
		Select("string_attributes.value", "attributes.name").
		OrderBy("string_attributes.id", false)

	assert.True(t, b.HasFilters())

	sel := b.Build()
	assert.Equal(t, Select{
		From: "string_attributes",
		Joins: []Join{{
			Table: "attributes", Left: "string_attributes.attributeID", Op: "=", Right: "attributes.attributeID",
		}},
		Filter: And{Predicates: []Predicate{
			In{Field: "string_attributes.objectID", Values: []ir.IRValue{ir.IRInt(42), ir.IRInt(43)}},
			Equals{Field: "string_attributes.objectType", Value: ir.IRString("product")},
		}},
		Columns: []string{"string_attributes.value", "attributes.name"},
		OrderBy: []Order{{Field: "string_attributes.id"}},
	}, sel)
}

func TestBuilder_BuildIsIndependent(t *testing.T) {
	values := []ir.IRValue{ir.IRInt(1)}
	b := New("t").WhereIn("a", values)
	first := b.Build()

	values[0] = ir.IRInt(99)
	b.Where("b", "=", ir.IRInt(2))
	second := b.Build()

	assert.Equal(t, In{Field: "a", Values: []ir.IRValue{ir.IRInt(1)}}, first.Filter)
	assert.IsType(t, And{}, second.Filter)
}
