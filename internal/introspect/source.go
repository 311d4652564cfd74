// Package introspect reads table and column metadata from live databases and
// saved snapshot files.
package introspect

import (
	"context"
	"fmt"

	"github.com/kadirbelkuyu/schemer/internal/config"
	"github.com/kadirbelkuyu/schemer/internal/database"
	"github.com/kadirbelkuyu/schemer/internal/schema"
	"github.com/kadirbelkuyu/schemer/internal/snapshots"
)

// Source lists the tables of one target and describes their columns.
type Source interface {
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) ([]schema.ColumnDescriptor, error)
	Close() error
}

// Open connects to the target and returns the matching source. Snapshot
// targets are resolved through store.
func Open(ctx context.Context, target config.Target, store *snapshots.Store) (Source, error) {
	switch target.Type {
	case "mysql", "postgres", "sqlite":
		conn, err := database.NewConnection(ctx, target)
		if err != nil {
			return nil, err
		}
		src, err := NewSQLSource(conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return src, nil
	case "mongo":
		return openMongo(ctx, target)
	case "snapshot":
		if store == nil {
			store = snapshots.NewStore("")
		}
		snap, err := store.Load(target.Path)
		if err != nil {
			return nil, err
		}
		return NewSnapshotSource(snap), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", target.Type)
	}
}

// NewSQLSource picks the dialect for an open connection.
func NewSQLSource(conn *database.Connection) (Source, error) {
	switch conn.Target.Type {
	case "mysql":
		return &mysqlSource{conn: conn}, nil
	case "postgres":
		return &postgresSource{conn: conn}, nil
	case "sqlite":
		return &sqliteSource{conn: conn}, nil
	default:
		return nil, fmt.Errorf("unsupported database type for SQL introspection: %s", conn.Target.Type)
	}
}

// Capture lists and describes every table of src.
func Capture(ctx context.Context, targetID string, src Source) (*schema.Snapshot, error) {
	tables, err := src.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return schema.BuildSnapshot(ctx, targetID, tables, src.DescribeTable)
}
