package queryir

import "github.com/roach88/eav/internal/ir"

// Builder accumulates constraints for a Select.
//
// Builders are mutable and not safe for concurrent use. Each call appends;
// Build returns an independent copy so a builder can keep growing after it
// has been built once.
type Builder struct {
	from    string
	joins   []Join
	filters []Predicate
	columns []string
	order   []Order
}

// New starts a query on table from.
func New(from string) *Builder {
	return &Builder{from: from}
}

// From returns the base table.
func (b *Builder) From() string {
	return b.from
}

// Where adds "field op value". An "=" operator produces Equals.
func (b *Builder) Where(field, op string, value ir.IRValue) *Builder {
	if op == "=" {
		b.filters = append(b.filters, Equals{Field: field, Value: value})
	} else {
		b.filters = append(b.filters, Compare{Field: field, Op: op, Value: value})
	}
	return b
}

// WhereIn adds "field IN (values...)". The values slice is copied.
func (b *Builder) WhereIn(field string, values []ir.IRValue) *Builder {
	b.filters = append(b.filters, In{Field: field, Values: append([]ir.IRValue{}, values...)})
	return b
}

// Join adds an INNER JOIN.
func (b *Builder) Join(table, left, op, right string) *Builder {
	b.joins = append(b.joins, Join{Table: table, Left: left, Op: op, Right: right})
	return b
}

// Select appends projection columns.
func (b *Builder) Select(columns ...string) *Builder {
	b.columns = append(b.columns, columns...)
	return b
}

// OrderBy appends an ORDER BY term.
func (b *Builder) OrderBy(field string, desc bool) *Builder {
	b.order = append(b.order, Order{Field: field, Desc: desc})
	return b
}

// HasFilters reports whether any Where/WhereIn constraint was added.
func (b *Builder) HasFilters() bool {
	return len(b.filters) > 0
}

// Build returns the accumulated Select.
// A single filter is returned as-is; several are wrapped in And.
func (b *Builder) Build() Select {
	sel := Select{
		From:    b.from,
		Joins:   append([]Join(nil), b.joins...),
		Columns: append([]string(nil), b.columns...),
		OrderBy: append([]Order(nil), b.order...),
	}
	switch len(b.filters) {
	case 0:
	case 1:
		sel.Filter = b.filters[0]
	default:
		sel.Filter = And{Predicates: append([]Predicate(nil), b.filters...)}
	}
	return sel
}
