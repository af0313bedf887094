package etl

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLExtractor reads legacy data exported to SQL Server. Tables are named
// like the legacy collections; embedded arrays (crew_members, labor_entries,
// ...) are stored as JSON text columns and decoded by the transform step.
type SQLExtractor struct {
	DB *sql.DB
}

func NewSQLExtractor(db *sql.DB) *SQLExtractor {
	return &SQLExtractor{DB: db}
}

func (s *SQLExtractor) Extract(ctx context.Context, collection string) ([]map[string]interface{}, error) {
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY 1", quoteIdent(collection))

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", collection, err)
	}

	var results []map[string]interface{}
	for rows.Next() {
		columns := make([]interface{}, len(cols))
		columnPointers := make([]interface{}, len(cols))
		for i := range columns {
			columnPointers[i] = &columns[i]
		}
		if err := rows.Scan(columnPointers...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}

		m := make(map[string]interface{}, len(cols))
		for i, colName := range cols {
			val := columns[i]
			if b, ok := val.([]byte); ok {
				m[strings.ToLower(colName)] = string(b)
			} else {
				m[strings.ToLower(colName)] = val
			}
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	return results, nil
}

func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
