package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eav/internal/entity"
	"github.com/roach88/eav/internal/relation"
)

func compileOne(t *testing.T, src, name string) (entity.Kind, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileEntity(v.LookupPath(cue.ParsePath("entity."+name)), relation.DefaultRegistry())
}

func TestCompileEntityBasic(t *testing.T) {
	kind, err := compileOne(t, `
		entity: Product: {
			table:      "products"
			attributes: ["string", "float"]
		}
	`, "Product")
	require.NoError(t, err)

	assert.Equal(t, "Product", kind.Name())
	assert.Equal(t, "products", kind.Table())
	assert.Equal(t, "id", kind.PrimaryKey())
	assert.Equal(t, "products", kind.EntityType())
	assert.Equal(t, []relation.AttributeType{relation.StringType, relation.FloatType}, kind.AttributeTypes())
	assert.False(t, kind.HasAttributes(relation.IntegerType))

	_, identified := kind.(entity.AttributeIdentifier)
	assert.False(t, identified)
}

func TestCompileEntityAllFields(t *testing.T) {
	kind, err := compileOne(t, `
		entity: Order: {
			table:         "orders"
			primary_key:   "order_id"
			entity_type:   "order"
			attributes:    ["integer"]
			attribute_ids: [11, 12]
		}
	`, "Order")
	require.NoError(t, err)

	assert.Equal(t, "order_id", kind.PrimaryKey())
	assert.Equal(t, "order", kind.EntityType())

	ai, ok := kind.(entity.AttributeIdentifier)
	require.True(t, ok)
	assert.Equal(t, []int64{11, 12}, ai.AttributeIDs())
}

func TestCompileEntityTypesFollowRegistryOrder(t *testing.T) {
	kind, err := compileOne(t, `
		entity: Product: {
			table:      "products"
			attributes: ["float", "string", "integer", "string"]
		}
	`, "Product")
	require.NoError(t, err)

	assert.Equal(t,
		[]relation.AttributeType{relation.StringType, relation.IntegerType, relation.FloatType},
		kind.AttributeTypes())
}

func TestCompileEntityNoAttributes(t *testing.T) {
	kind, err := compileOne(t, `entity: Tag: table: "tags"`, "Tag")
	require.NoError(t, err)
	assert.Empty(t, kind.AttributeTypes())
}

func TestCompileEntityErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		field   string
		message string
	}{
		{
			name:    "missing table",
			src:     `entity: Bad: attributes: ["string"]`,
			field:   "table",
			message: "table is required",
		},
		{
			name:    "empty table",
			src:     `entity: Bad: table: ""`,
			field:   "table",
			message: "must not be empty",
		},
		{
			name:    "table not a string",
			src:     `entity: Bad: table: 3`,
			field:   "table",
			message: "must be a string",
		},
		{
			name:    "unknown attribute type",
			src:     `entity: Bad: { table: "t", attributes: ["boolean"] }`,
			field:   "attributes",
			message: `unknown attribute type "boolean"`,
		},
		{
			name:    "attributes not a list",
			src:     `entity: Bad: { table: "t", attributes: "string" }`,
			field:   "attributes",
			message: "must be a list",
		},
		{
			name:    "non-integer attribute id",
			src:     `entity: Bad: { table: "t", attribute_ids: ["seven"] }`,
			field:   "attribute_ids",
			message: "must be an integer",
		},
		{
			name:    "empty attribute ids",
			src:     `entity: Bad: { table: "t", attribute_ids: [] }`,
			field:   "attribute_ids",
			message: "must not be empty",
		},
		{
			name:    "unknown field",
			src:     `entity: Bad: { table: "t", atributes: ["string"] }`,
			field:   "atributes",
			message: "unknown field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileOne(t, tt.src, "Bad")
			require.Error(t, err)

			var compileErr *CompileError
			require.True(t, errors.As(err, &compileErr))
			assert.Equal(t, tt.field, compileErr.Field)
			assert.Contains(t, compileErr.Message, tt.message)
		})
	}
}

func TestCompileEntityCustomRegistry(t *testing.T) {
	reg, err := relation.NewRegistry(
		relation.TypeSpec{Type: relation.FloatType, ConnectorTable: "float_attributes", RelationName: "floatAttributes"},
	)
	require.NoError(t, err)

	ctx := cuecontext.New()
	v := ctx.CompileString(`entity: P: { table: "p", attributes: ["string"] }`)
	_, err = CompileEntity(v.LookupPath(cue.ParsePath("entity.P")), reg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown attribute type "string"`)
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "table", Message: "table is required"}
	assert.Equal(t, "table: table is required", err.Error())
}

func TestCompileErrorCarriesPosition(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString("entity: Bad: {\n\ttable: 3\n}", cue.Filename("defs.cue"))
	require.NoError(t, v.Err())

	_, err := CompileEntity(v.LookupPath(cue.ParsePath("entity.Bad")), relation.DefaultRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defs.cue:2:")
}
