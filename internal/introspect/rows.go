package introspect

import (
	"database/sql"
	"fmt"

	"github.com/kadirbelkuyu/schemer/internal/schema"
)

// scanDescriptors turns every row into a descriptor keyed by column label,
// keeping row order.
func scanDescriptors(rows *sql.Rows) ([]schema.ColumnDescriptor, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch column metadata: %w", err)
	}

	descriptors := []schema.ColumnDescriptor{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		desc := make(schema.ColumnDescriptor, len(columns))
		for i, name := range columns {
			desc[name] = schema.NormalizeValue(values[i])
		}
		descriptors = append(descriptors, desc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return descriptors, nil
}

func scanNames(rows *sql.Rows) ([]string, error) {
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to read table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return names, nil
}
