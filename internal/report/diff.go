package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kadirbelkuyu/schemer/internal/compare"
	"github.com/kadirbelkuyu/schemer/internal/schema"
)

// RenderDiff writes a unified diff of the column listings for every peer table
// that did not match its master. snaps must be the snapshots res was built from.
func RenderDiff(w io.Writer, res *compare.Result, snaps []*schema.Snapshot) error {
	if res == nil {
		return fmt.Errorf("result cannot be nil")
	}

	byID := make(map[string]*schema.Snapshot, len(snaps))
	for _, snap := range snaps {
		if snap != nil {
			byID[snap.TargetID()] = snap
		}
	}
	master, ok := byID[res.Master]
	if !ok {
		return fmt.Errorf("snapshot for master %s not provided", res.Master)
	}

	for _, table := range res.Tables {
		masterColumns, _ := master.Tables().Columns(table.Table)
		for _, target := range table.Targets {
			if target.Disposition != compare.DispositionNoMatch && target.Disposition != compare.DispositionMissing {
				continue
			}

			var peerColumns []schema.ColumnDescriptor
			toFile := fmt.Sprintf("%s/%s", target.TargetID, table.Table)
			if target.Disposition == compare.DispositionMissing {
				toFile += " (missing)"
			} else if peer, ok := byID[target.TargetID]; ok {
				peerColumns, _ = peer.Tables().Columns(table.Table)
			}

			out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        columnLines(masterColumns),
				B:        columnLines(peerColumns),
				FromFile: fmt.Sprintf("%s/%s", res.Master, table.Table),
				ToFile:   toFile,
				Context:  3,
			})
			if err != nil {
				return fmt.Errorf("failed to diff table %s: %w", table.Table, err)
			}
			if _, err := io.WriteString(w, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func columnLines(columns []schema.ColumnDescriptor) []string {
	lines := make([]string, 0, len(columns))
	for _, column := range columns {
		parts := make([]string, 0, len(column))
		for _, key := range column.Keys() {
			parts = append(parts, key+"="+FormatValue(column[key]))
		}
		lines = append(lines, strings.Join(parts, " ")+"\n")
	}
	return lines
}
