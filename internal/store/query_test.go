package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eav/internal/ir"
	"github.com/roach88/eav/internal/queryir"
)

func seedCatalog(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Exec(ctx, `INSERT INTO attributes (attributeID, name, type) VALUES
		(1, 'color', 'string'), (2, 'material', 'string'), (3, 'weight', 'float')`))
}

func TestPersistAndFetch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedCatalog(t, s)

	for _, row := range []ir.IRObject{
		{"objectID": ir.IRInt(42), "objectType": ir.IRString("product"), "attributeID": ir.IRInt(1), "value": ir.IRString("Red")},
		{"objectID": ir.IRInt(42), "objectType": ir.IRString("product"), "attributeID": ir.IRInt(2), "value": ir.IRString("Steel")},
		{"objectID": ir.IRInt(42), "objectType": ir.IRString("order"), "attributeID": ir.IRInt(1), "value": ir.IRString("Blue")},
	} {
		_, err := s.Persist(ctx, queryir.Insert{Into: "string_attributes", Values: row})
		require.NoError(t, err)
	}

	query := queryir.New("string_attributes").
		Join("attributes", "string_attributes.attributeID", "=", "attributes.attributeID").
		Where("string_attributes.objectType", "=", ir.IRString("product")).
		WhereIn("string_attributes.objectID", []ir.IRValue{ir.IRInt(42)}).
		Select("string_attributes.value", "attributes.name", "string_attributes.objectID").
		Build()

	records, err := s.Fetch(ctx, query)
	require.NoError(t, err)

	assert.Equal(t, []ir.IRObject{
		{"value": ir.IRString("Red"), "name": ir.IRString("color"), "objectID": ir.IRInt(42)},
		{"value": ir.IRString("Steel"), "name": ir.IRString("material"), "objectID": ir.IRInt(42)},
	}, records)
}

func TestPersist_ReturnsIncreasingIDs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedCatalog(t, s)

	row := ir.IRObject{"objectID": ir.IRInt(1), "objectType": ir.IRString("product"), "attributeID": ir.IRInt(3), "value": ir.IRFloat(1.25)}
	first, err := s.Persist(ctx, queryir.Insert{Into: "float_attributes", Values: row})
	require.NoError(t, err)
	second, err := s.Persist(ctx, queryir.Insert{Into: "float_attributes", Values: row})
	require.NoError(t, err)

	assert.Greater(t, second, first)

	records, err := s.Fetch(ctx, queryir.Select{From: "float_attributes", Columns: []string{"value"}})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ir.IRFloat(1.25), records[0]["value"])
}

func TestFetch_EmptyResultIsNotNil(t *testing.T) {
	s := createTestStore(t)

	records, err := s.Fetch(context.Background(), queryir.Select{
		From:   "string_attributes",
		Filter: queryir.In{Field: "objectID"},
	})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFetch_NullColumn(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Exec(ctx, "CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT)"))
	require.NoError(t, s.Exec(ctx, "INSERT INTO products (id, name) VALUES (?, NULL)", 42))

	records, err := s.Fetch(ctx, queryir.Select{From: "products"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ir.IRNull{}, records[0]["name"])
	assert.Equal(t, ir.IRInt(42), records[0]["id"])
}

func TestFetch_ErrorsAreWrapped(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Fetch(context.Background(), queryir.Select{From: "missing_table"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch missing_table")

	_, err = s.Fetch(context.Background(), queryir.Select{From: "bad name"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile")
}

func TestPersist_ForeignKeyViolation(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Persist(context.Background(), queryir.Insert{
		Into: "string_attributes",
		Values: ir.IRObject{
			"objectID": ir.IRInt(1), "objectType": ir.IRString("product"),
			"attributeID": ir.IRInt(999), "value": ir.IRString("x"),
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist string_attributes")
}

func TestFetch_CanceledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Fetch(ctx, queryir.Select{From: "attributes"})
	assert.ErrorIs(t, err, context.Canceled)
}
