package schema

import (
	"context"
	"errors"
	"fmt"
)

// ColumnFetcher returns the ordered column descriptors of one table.
type ColumnFetcher func(ctx context.Context, table string) ([]ColumnDescriptor, error)

// FetchError reports which table's column fetch aborted a snapshot build.
type FetchError struct {
	Table string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to describe table %s: %v", e.Table, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// BuildSnapshot fetches the columns of every listed table and returns the
// resulting snapshot. Duplicate table names are fetched once. The first
// failing fetch aborts the build and no snapshot is returned.
func BuildSnapshot(ctx context.Context, targetID string, tables []string, fetch ColumnFetcher) (*Snapshot, error) {
	if targetID == "" {
		return nil, errors.New("target id cannot be empty")
	}
	if fetch == nil {
		return nil, errors.New("column fetcher cannot be nil")
	}

	schema := NewTableSchema()
	for _, table := range tables {
		if schema.Has(table) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, &FetchError{Table: table, Err: err}
		}

		columns, err := fetch(ctx, table)
		if err != nil {
			return nil, &FetchError{Table: table, Err: err}
		}
		schema.Add(table, columns)
	}

	return &Snapshot{targetID: targetID, tables: schema}, nil
}
