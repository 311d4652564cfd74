package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/kadirbelkuyu/schemer/internal/database"
	"github.com/kadirbelkuyu/schemer/internal/schema"
)

// Views are listed by plain SHOW TABLES; only base tables are compared.
const mysqlTablesQuery = "SHOW FULL TABLES WHERE Table_type = 'BASE TABLE'"

// mysqlSource describes tables with SHOW FULL TABLES / DESCRIBE, producing the
// attributes Field, Type, Null, Key, Default and Extra.
type mysqlSource struct {
	conn *database.Connection
}

func (s *mysqlSource) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.conn.DB.QueryContext(ctx, mysqlTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name, tableType string
		if err := rows.Scan(&name, &tableType); err != nil {
			return nil, fmt.Errorf("failed to read table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return names, nil
}

func (s *mysqlSource) DescribeTable(ctx context.Context, table string) ([]schema.ColumnDescriptor, error) {
	rows, err := s.conn.DB.QueryContext(ctx, fmt.Sprintf("DESCRIBE %s", quoteMySQLIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer rows.Close()

	return scanDescriptors(rows)
}

func (s *mysqlSource) Close() error {
	return s.conn.Close()
}

func quoteMySQLIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
