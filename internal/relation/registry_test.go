package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_DeclarationOrder(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []AttributeType{StringType, IntegerType, FloatType}, r.Types())

	spec, err := r.Lookup(FloatType)
	require.NoError(t, err)
	assert.Equal(t, "float_attributes", spec.ConnectorTable)
	assert.Equal(t, "floatAttributes", spec.RelationName)
}

func TestRegistry_Lookup_Unknown(t *testing.T) {
	_, err := DefaultRegistry().Lookup("date")
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), `"date"`)
}

func TestRegistry_Register(t *testing.T) {
	r := DefaultRegistry()

	require.NoError(t, r.Register(TypeSpec{Type: "date", ConnectorTable: "date_attributes", RelationName: "dateAttributes"}))
	assert.Equal(t, AttributeType("date"), r.Types()[3])
	assert.True(t, r.IsAttributeSet("dateAttributes"))

	tests := []struct {
		name string
		spec TypeSpec
		msg  string
	}{
		{"duplicate type", TypeSpec{Type: StringType, ConnectorTable: "x", RelationName: "x"}, "already registered"},
		{"duplicate relation name", TypeSpec{Type: "bool", ConnectorTable: "b", RelationName: "stringAttributes"}, "already used"},
		{"missing table", TypeSpec{Type: "bool", RelationName: "boolAttributes"}, "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.spec)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestRegistry_SpecsIsACopy(t *testing.T) {
	r := DefaultRegistry()
	specs := r.Specs()
	specs[0].RelationName = "mutated"

	assert.True(t, r.IsAttributeSet("stringAttributes"))
	assert.False(t, r.IsAttributeSet("mutated"))
}
