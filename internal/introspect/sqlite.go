package introspect

import (
	"context"
	"fmt"

	"github.com/kadirbelkuyu/schemer/internal/database"
	"github.com/kadirbelkuyu/schemer/internal/schema"
)

const sqliteTablesQuery = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`

const sqliteColumnsQuery = `
		SELECT
			name AS "Field",
			type AS "Type",
			CASE "notnull" WHEN 0 THEN 'YES' ELSE 'NO' END AS "Null",
			CASE WHEN pk > 0 THEN 'PRI' ELSE '' END AS "Key",
			dflt_value AS "Default"
		FROM pragma_table_info(?)
		ORDER BY cid
	`

type sqliteSource struct {
	conn *database.Connection
}

func (s *sqliteSource) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.conn.DB.QueryContext(ctx, sqliteTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	return scanNames(rows)
}

func (s *sqliteSource) DescribeTable(ctx context.Context, table string) ([]schema.ColumnDescriptor, error) {
	rows, err := s.conn.DB.QueryContext(ctx, sqliteColumnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer rows.Close()

	return scanDescriptors(rows)
}

func (s *sqliteSource) Close() error {
	return s.conn.Close()
}
