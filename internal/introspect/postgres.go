package introspect

import (
	"context"
	"fmt"

	"github.com/kadirbelkuyu/schemer/internal/database"
	"github.com/kadirbelkuyu/schemer/internal/schema"
)

const postgresTablesQuery = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

// Column labels mirror MySQL DESCRIBE so mixed-engine runs share attribute names.
const postgresColumnsQuery = `
		SELECT
			column_name AS "Field",
			data_type AS "Type",
			is_nullable AS "Null",
			column_default AS "Default",
			character_maximum_length AS "Length"
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

type postgresSource struct {
	conn *database.Connection
}

func (s *postgresSource) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.conn.DB.QueryContext(ctx, postgresTablesQuery, s.conn.Target.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	return scanNames(rows)
}

func (s *postgresSource) DescribeTable(ctx context.Context, table string) ([]schema.ColumnDescriptor, error) {
	rows, err := s.conn.DB.QueryContext(ctx, postgresColumnsQuery, s.conn.Target.Schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer rows.Close()

	return scanDescriptors(rows)
}

func (s *postgresSource) Close() error {
	return s.conn.Close()
}
