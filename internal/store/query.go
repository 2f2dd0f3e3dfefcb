package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/eav/internal/ir"
	"github.com/roach88/eav/internal/queryir"
)

// Fetch compiles and executes a Select, returning one IRObject per row keyed
// by result column name, in result order.
//
// Returns an empty slice (not nil) if no rows match.
func (s *Store) Fetch(ctx context.Context, q queryir.Select) ([]ir.IRObject, error) {
	query, params, err := s.compiler.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: compile: %w", q.From, err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", q.From, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("fetch %s: get columns: %w", q.From, err)
	}

	records := []ir.IRObject{}
	for rows.Next() {
		record, err := scanRecord(rows, columns)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", q.From, err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: iterate rows: %w", q.From, err)
	}

	return records, nil
}

// Persist compiles and executes an Insert, returning the new row id.
func (s *Store) Persist(ctx context.Context, q queryir.Insert) (int64, error) {
	query, params, err := s.compiler.Compile(q)
	if err != nil {
		return 0, fmt.Errorf("persist %s: compile: %w", q.Into, err)
	}

	res, err := s.db.ExecContext(ctx, query, params...)
	if err != nil {
		return 0, fmt.Errorf("persist %s: %w", q.Into, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("persist %s: last insert id: %w", q.Into, err)
	}
	return id, nil
}

// scanRecord converts the current row into an IRObject.
// When two columns share a name the later one wins, matching how SQLite
// names columns in a "t.*" projection followed by an explicit alias.
func scanRecord(rows *sql.Rows, columns []string) (ir.IRObject, error) {
	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	record := make(ir.IRObject, len(columns))
	for i, colName := range columns {
		val, err := ir.FromSQL(values[i])
		if err != nil {
			return nil, fmt.Errorf("convert column %s: %w", colName, err)
		}
		record[colName] = val
	}
	return record, nil
}
