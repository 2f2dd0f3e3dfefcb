package queryir

import "github.com/roach88/eav/internal/ir"

// Query represents an abstract query in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// Backend compilers switch exhaustively over Select and Insert.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Equals: field = literal_value
//   - Compare: field <op> literal_value
//   - In: field IN (values...)
//   - And: all predicates must be true
//
// OR predicates and subqueries are not part of the IR.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select represents table access with optional inner joins and filtering.
//
// Semantics:
//
//	SELECT <columns> FROM <from> [JOIN ...] WHERE <filter> ORDER BY <order>
//
// Example (a string attribute set for two products):
//
//	Select{
//	  From: "string_attributes",
//	  Joins: []Join{{Table: "attributes", Left: "string_attributes.attributeID",
//	    Op: "=", Right: "attributes.attributeID"}},
//	  Filter: And{Predicates: []Predicate{
//	    In{Field: "string_attributes.objectID", Values: []ir.IRValue{ir.IRInt(42), ir.IRInt(43)}},
//	    In{Field: "string_attributes.objectType", Values: []ir.IRValue{ir.IRString("product")}},
//	  }},
//	  Columns: []string{"string_attributes.value", "attributes.name"},
//	}
//
// Rules:
//   - Columns may be qualified ("t.c"), a table wildcard ("t.*") or carry an
//     alias ("t.c AS pivot"); empty Columns selects "*"
//   - Result order is always deterministic: OrderBy, or insertion order of From
type Select struct {
	From    string    // Table name
	Joins   []Join    // INNER JOINs, applied in order
	Filter  Predicate // WHERE conditions (nil = no filter)
	Columns []string  // Projection (empty = all columns)
	OrderBy []Order   // Explicit ordering (empty = From.rowid ASC)
}

func (Select) queryNode() {}

// Insert represents a single-row insert.
//
// Semantics:
//
//	INSERT INTO <into> (<sorted keys of values>) VALUES (...)
type Insert struct {
	Into   string      // Table name
	Values ir.IRObject // Column → value, at least one entry
}

func (Insert) queryNode() {}

// Join is an INNER JOIN of Table on a column comparison.
//
//	JOIN <table> ON <left> <op> <right>
//
// Left and Right are column references, never values.
type Join struct {
	Table string
	Left  string
	Op    string
	Right string
}

// Order is one ORDER BY term.
type Order struct {
	Field string
	Desc  bool
}

// Equals represents a field-equals-literal predicate.
//
//	<field> = <value>
//
// An IRNull value never matches (SQL NULL semantics).
type Equals struct {
	Field string     // Column reference, optionally qualified
	Value ir.IRValue // Literal value
}

func (Equals) predicateNode() {}

// Compare represents a field-operator-literal predicate.
//
//	<field> <op> <value>
//
// Op is one of =, !=, <, <=, >, >=.
type Compare struct {
	Field string
	Op    string
	Value ir.IRValue
}

func (Compare) predicateNode() {}

// In represents set membership.
//
//	<field> IN (<values>...)
//
// An empty Values matches nothing.
type In struct {
	Field  string
	Values []ir.IRValue
}

func (In) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// Empty Predicates means "always true".
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
