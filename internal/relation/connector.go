package relation

import "strings"

// Default table names of the persisted layout.
const (
	DefaultCatalogTable = "attributes"
	DefaultObjectTable  = "object_attributes"
)

// Connector names a connector table and its four columns.
type Connector struct {
	Table       string
	ObjectID    string
	ObjectType  string
	AttributeID string
	Value       string
}

// NewConnector returns a connector on table with the standard column names.
func NewConnector(table string) Connector {
	return Connector{
		Table:       table,
		ObjectID:    "objectID",
		ObjectType:  "objectType",
		AttributeID: "attributeID",
		Value:       "value",
	}
}

// Qualified returns column prefixed with the connector table.
func (c Connector) Qualified(column string) string {
	return c.Table + "." + column
}

// AttributeCatalog names the shared attribute catalog table.
type AttributeCatalog struct {
	Table string
	ID    string
	Name  string
}

// DefaultCatalog returns the catalog of the bootstrap schema.
func DefaultCatalog() AttributeCatalog {
	return AttributeCatalog{Table: DefaultCatalogTable, ID: "attributeID", Name: "name"}
}

// Target is the related entity table of an object relation.
type Target struct {
	Table      string
	PrimaryKey string
}

func (t Target) qualifiedKey() string {
	return t.Table + "." + t.PrimaryKey
}

// bare strips a table qualifier: "t.c" → "c".
func bare(column string) string {
	if i := strings.LastIndexByte(column, '.'); i >= 0 {
		return column[i+1:]
	}
	return column
}
