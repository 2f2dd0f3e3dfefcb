package querysql

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eav/internal/ir"
	"github.com/roach88/eav/internal/queryir"
)

func TestCompile_SimpleSelect(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Select{
		From: "products",
		Filter: queryir.Equals{
			Field: "category",
			Value: ir.IRString("widgets"),
		},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM products WHERE category = ? ORDER BY products.rowid ASC", sql)
	assert.NotContains(t, sql, "widgets") // value NOT in SQL
	assert.Equal(t, []any{"widgets"}, params)
}

func TestCompile_AttributeSetQuery(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.New("string_attributes").
		Join("attributes", "string_attributes.attributeID", "=", "attributes.attributeID").
		WhereIn("string_attributes.objectID", []ir.IRValue{ir.IRInt(42), ir.IRInt(43)}).
		WhereIn("string_attributes.objectType", []ir.IRValue{ir.IRString("product")}).
		Select("string_attributes.value", "attributes.name").
		OrderBy("string_attributes.id", false).
		Build()

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT string_attributes.value AS value, attributes.name AS name FROM string_attributes"+
			" INNER JOIN attributes ON string_attributes.attributeID = attributes.attributeID"+
			" WHERE string_attributes.objectID IN (?, ?) AND string_attributes.objectType = ?"+
			" ORDER BY string_attributes.id ASC",
		sql)
	assert.Equal(t, []any{int64(42), int64(43), "product"}, params)
}

func TestCompile_EmptyInMatchesNothing(t *testing.T) {
	compiler := NewSQLCompiler()

	sql, params, err := compiler.Compile(queryir.Select{
		From:   "t",
		Filter: queryir.In{Field: "id"},
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM t WHERE 1 = 0 ORDER BY t.rowid ASC", sql)
	assert.Empty(t, params)
}

func TestCompile_ColumnAliases(t *testing.T) {
	compiler := NewSQLCompiler()

	sql, _, err := compiler.Compile(queryir.Select{
		From:    "products",
		Columns: []string{"products.*", "object_attributes.objectID AS pivot_objectID", "name"},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT products.*, object_attributes.objectID AS pivot_objectID, name FROM products ORDER BY products.rowid ASC",
		sql)
}

func TestCompile_CompareAndOrder(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.New("products").
		Where("price", ">=", ir.IRFloat(9.5)).
		Where("name", "!=", ir.IRString("x")).
		OrderBy("price", true).
		OrderBy("id", false).
		Build()

	sql, params, err := compiler.Compile(&query)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM products WHERE price >= ? AND name != ? ORDER BY price DESC, id ASC", sql)
	assert.Equal(t, []any{9.5, "x"}, params)
}

func TestCompile_EmptyAnd(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(queryir.Select{From: "t", Filter: queryir.And{}})
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE 1 = 1")
	assert.Empty(t, params)
}

func TestCompile_Insert(t *testing.T) {
	compiler := NewSQLCompiler()

	sql, params, err := compiler.Compile(queryir.Insert{
		Into: "string_attributes",
		Values: ir.IRObject{
			"value":       ir.IRString("Red"),
			"objectType":  ir.IRString("product"),
			"objectID":    ir.IRInt(42),
			"attributeID": ir.IRInt(1),
		},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO string_attributes (attributeID, objectID, objectType, value) VALUES (?, ?, ?, ?)",
		sql)
	assert.Equal(t, []any{int64(1), int64(42), "product", "Red"}, params)
}

func TestCompile_Errors(t *testing.T) {
	compiler := NewSQLCompiler()

	tests := []struct {
		name  string
		query queryir.Query
	}{
		{"nil", nil},
		{"invalid identifier", queryir.Select{From: "t; DROP TABLE t"}},
		{"object param", queryir.Select{From: "t", Filter: queryir.Equals{Field: "a", Value: ir.IRObject{}}}},
		{"array in set", queryir.Select{From: "t", Filter: queryir.In{Field: "a", Values: []ir.IRValue{ir.IRInt(1), ir.IRArray{}}}}},
		{"insert object value", queryir.Insert{Into: "t", Values: ir.IRObject{"a": ir.IRObject{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := compiler.Compile(tt.query)
			assert.Error(t, err)
		})
	}
}

func TestCompile_LargeInUsesOneParameter(t *testing.T) {
	values := make([]ir.IRValue, maxInlineValues+1)
	for i := range values {
		values[i] = ir.IRInt(int64(i + 1))
	}

	sql, params, err := NewSQLCompiler().Compile(queryir.New("string_attributes").
		WhereIn("string_attributes.objectID", values).
		Where("string_attributes.objectType", "=", ir.IRString("products")).
		Build())
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT * FROM string_attributes"+
			" WHERE string_attributes.objectID IN (SELECT value FROM json_each(?)) AND string_attributes.objectType = ?"+
			" ORDER BY string_attributes.rowid ASC",
		sql)
	require.Len(t, params, 2)
	assert.True(t, strings.HasPrefix(params[0].(string), "[1,2,3,"))
	assert.True(t, strings.HasSuffix(params[0].(string), ",501]"))
	assert.Equal(t, "products", params[1])
}

func TestCompile_InlineInAtLimit(t *testing.T) {
	values := make([]ir.IRValue, maxInlineValues)
	for i := range values {
		values[i] = ir.IRString(fmt.Sprintf("k%d", i))
	}

	sql, params, err := NewSQLCompiler().Compile(queryir.Select{From: "t", Filter: queryir.In{Field: "id", Values: values}})
	require.NoError(t, err)

	assert.NotContains(t, sql, "json_each")
	assert.Len(t, params, maxInlineValues)
}
