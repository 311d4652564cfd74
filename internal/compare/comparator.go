package compare

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kadirbelkuyu/schemer/internal/schema"
)

// Validate checks the preconditions of Compare. The first snapshot is the
// master; every other snapshot is a peer.
func Validate(snapshots []*schema.Snapshot) error {
	if len(snapshots) < 2 {
		return fmt.Errorf("%w: got %d", ErrInsufficientTargets, len(snapshots))
	}

	master := snapshots[0]
	if master == nil || master.Tables().Len() == 0 {
		return ErrNoMasterSchema
	}

	seen := make(map[string]struct{}, len(snapshots))
	for i, snap := range snapshots {
		if snap == nil {
			return fmt.Errorf("%w: position %d", ErrNoPeerSchema, i)
		}
		if _, dup := seen[snap.TargetID()]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateTarget, snap.TargetID())
		}
		seen[snap.TargetID()] = struct{}{}
	}
	return nil
}

// Compare checks every master table against every peer. Only tables present in
// the master are reported, in the master's table order.
func Compare(snapshots []*schema.Snapshot, opts Options) (*Result, error) {
	if err := Validate(snapshots); err != nil {
		return nil, err
	}

	master := snapshots[0]
	result := &Result{
		Master:  master.TargetID(),
		Targets: make([]string, 0, len(snapshots)),
		Mode:    opts.mode(),
	}
	for _, snap := range snapshots {
		result.Targets = append(result.Targets, snap.TargetID())
	}

	for _, table := range master.Tables().Tables() {
		if opts.ignored(table) {
			continue
		}
		tr, err := compareTable(table, snapshots, opts)
		if err != nil {
			return nil, err
		}
		result.Tables = append(result.Tables, tr)
	}

	return result, nil
}

// CompareTable compares a single master table against every peer.
func CompareTable(table string, snapshots []*schema.Snapshot, opts Options) (TableResult, error) {
	if err := Validate(snapshots); err != nil {
		return TableResult{}, err
	}
	return compareTable(table, snapshots, opts)
}

func compareTable(table string, snapshots []*schema.Snapshot, opts Options) (TableResult, error) {
	master := snapshots[0]
	masterColumns, ok := master.Tables().Columns(table)
	if !ok {
		return TableResult{}, fmt.Errorf("%w: %s", ErrMissingMasterTable, table)
	}

	tr := TableResult{
		Table:   table,
		Targets: make([]TargetResult, 0, len(snapshots)),
	}
	tr.Targets = append(tr.Targets, TargetResult{
		TargetID:    master.TargetID(),
		Disposition: DispositionMaster,
	})

	for _, peer := range snapshots[1:] {
		tr.Targets = append(tr.Targets, comparePeer(masterColumns, peer, table, opts))
	}
	return tr, nil
}

func comparePeer(masterColumns []schema.ColumnDescriptor, peer *schema.Snapshot, table string, opts Options) TargetResult {
	res := TargetResult{TargetID: peer.TargetID()}

	peerColumns, ok := peer.Tables().Columns(table)
	if !ok || peerColumns == nil {
		res.Disposition = DispositionMissing
		return res
	}

	if cmp.Equal(masterColumns, peerColumns, cmpopts.EquateEmpty()) {
		res.Disposition = DispositionMatch
		return res
	}

	res.Disposition = DispositionNoMatch
	res.Differences = DiffColumns(masterColumns, peerColumns, opts)
	res.MasterColumns = len(masterColumns)
	res.PeerColumns = len(peerColumns)
	return res
}
