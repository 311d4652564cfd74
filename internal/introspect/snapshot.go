package introspect

import (
	"context"
	"fmt"

	"github.com/kadirbelkuyu/schemer/internal/schema"
)

// snapshotSource replays a saved snapshot as if it were a live target.
type snapshotSource struct {
	snap *schema.Snapshot
}

// NewSnapshotSource serves tables from snap.
func NewSnapshotSource(snap *schema.Snapshot) Source {
	return &snapshotSource{snap: snap}
}

func (s *snapshotSource) ListTables(ctx context.Context) ([]string, error) {
	return s.snap.Tables().Tables(), nil
}

func (s *snapshotSource) DescribeTable(ctx context.Context, table string) ([]schema.ColumnDescriptor, error) {
	columns, ok := s.snap.Tables().Columns(table)
	if !ok {
		return nil, fmt.Errorf("table %s not present in snapshot of %s", table, s.snap.TargetID())
	}
	return columns, nil
}

func (s *snapshotSource) Close() error {
	return nil
}
