// Package queryir provides the abstract query representation used by the
// relation engine.
//
// Relations never write SQL. They describe what to fetch with a Builder
// (Where, WhereIn, Join, Select, OrderBy), and the resulting Select is
// compiled by a backend (see querysql) and executed by the store:
//
//	[relation] → [Query IR] → [SQL compiler] → [store]
//
// The IR covers exactly what attribute loading needs:
//   - Select(from, joins, filter, columns, order)
//   - Insert(into, values)
//   - Predicates: Equals, Compare, In, And
//   - Inner joins only, on column comparisons
//
// It excludes aggregation, OR, subqueries and outer joins.
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method pattern.
// Only types in this package can implement them, so backends can switch
// exhaustively:
//
//	switch q := query.(type) {
//	case Select:
//	    // Handle select
//	case Insert:
//	    // Handle insert
//	}
//
// Validate rejects identifiers outside the column grammar before any SQL is
// generated; values always travel as parameters.
package queryir
