package querysql

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/eav/internal/ir"
	"github.com/roach88/eav/internal/queryir"
)

// maxInlineValues is the largest IN list bound as one placeholder per value.
// Longer lists travel as a single JSON array so a batch of any size stays one
// statement under SQLite's host parameter limit.
const maxInlineValues = 500

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// All values are parameterized, never interpolated. Every SELECT carries an
// ORDER BY so repeated loads return records in the same order.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a QueryIR query to parameterized SQL.
// The query is validated first; identifiers that fail validation never reach
// the generated SQL.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}
	if err := queryir.Validate(q); err != nil {
		return "", nil, err
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	case queryir.Insert:
		return c.compileInsert(query)
	case *queryir.Insert:
		return c.compileInsert(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(c.compileColumns(q.Columns))
	sb.WriteString(" FROM ")
	sb.WriteString(q.From)

	for _, j := range q.Joins {
		fmt.Fprintf(&sb, " INNER JOIN %s ON %s %s %s", j.Table, j.Left, j.Op, j.Right)
	}

	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(filterSQL)
		params = filterParams
	}

	sb.WriteString(" ORDER BY ")
	sb.WriteString(c.orderClause(q))

	return sb.String(), params, nil
}

// compileColumns renders the projection.
// A qualified column "t.c" is aliased to its bare name so result rows are
// keyed by "c". Wildcards and explicit aliases pass through.
func (c *SQLCompiler) compileColumns(columns []string) string {
	if len(columns) == 0 {
		return "*"
	}

	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col
		if strings.Contains(col, " AS ") {
			continue
		}
		if table, name, ok := strings.Cut(col, "."); ok && name != "*" {
			parts[i] = fmt.Sprintf("%s.%s AS %s", table, name, name)
		}
	}
	return strings.Join(parts, ", ")
}

// orderClause returns the explicit ORDER BY terms, or insertion order of
// the base table.
func (c *SQLCompiler) orderClause(q queryir.Select) string {
	if len(q.OrderBy) == 0 {
		return q.From + ".rowid ASC"
	}
	parts := make([]string, len(q.OrderBy))
	for i, o := range q.OrderBy {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts[i] = o.Field + " " + dir
	}
	return strings.Join(parts, ", ")
}

func (c *SQLCompiler) compileInsert(q queryir.Insert) (string, []any, error) {
	keys := q.Values.SortedKeys()
	params := make([]any, len(keys))
	placeholders := make([]string, len(keys))
	for i, k := range keys {
		param, err := ir.ToParam(q.Values[k])
		if err != nil {
			return "", nil, fmt.Errorf("column %s: %w", k, err)
		}
		params[i] = param
		placeholders[i] = "?"
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		q.Into,
		strings.Join(keys, ", "),
		strings.Join(placeholders, ", "))
	return sql, params, nil
}

// compilePredicate compiles a predicate to a WHERE fragment.
// Values are never interpolated.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case queryir.Equals:
		return c.compileCompare(pred.Field, "=", pred.Value)
	case *queryir.Equals:
		return c.compileCompare(pred.Field, "=", pred.Value)
	case queryir.Compare:
		return c.compileCompare(pred.Field, pred.Op, pred.Value)
	case *queryir.Compare:
		return c.compileCompare(pred.Field, pred.Op, pred.Value)
	case queryir.In:
		return c.compileIn(pred)
	case *queryir.In:
		return c.compileIn(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileCompare(field, op string, value ir.IRValue) (string, []any, error) {
	param, err := ir.ToParam(value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value for %s: %w", field, err)
	}
	return fmt.Sprintf("%s %s ?", field, op), []any{param}, nil
}

// compileIn compiles set membership. An empty set compiles to a predicate
// that matches nothing but is still valid SQL. Sets above maxInlineValues
// compile to "field IN (SELECT value FROM json_each(?))".
func (c *SQLCompiler) compileIn(in queryir.In) (string, []any, error) {
	switch len(in.Values) {
	case 0:
		return "1 = 0", nil, nil
	case 1:
		return c.compileCompare(in.Field, "=", in.Values[0])
	}

	params := make([]any, len(in.Values))
	for i, v := range in.Values {
		param, err := ir.ToParam(v)
		if err != nil {
			return "", nil, fmt.Errorf("convert value %d for %s: %w", i, in.Field, err)
		}
		params[i] = param
	}

	if len(params) > maxInlineValues {
		data, err := json.Marshal(params)
		if err != nil {
			return "", nil, fmt.Errorf("encode values for %s: %w", in.Field, err)
		}
		return fmt.Sprintf("%s IN (SELECT value FROM json_each(?))", in.Field), []any{string(data)}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(params)), ", ")
	return fmt.Sprintf("%s IN (%s)", in.Field, placeholders), params, nil
}

func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	sqlParts := make([]string, 0, len(and.Predicates))
	var allParams []any
	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}
