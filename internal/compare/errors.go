package compare

import "errors"

var (
	// ErrInsufficientTargets is returned when fewer than two snapshots are supplied.
	ErrInsufficientTargets = errors.New("at least two snapshots are required")
	// ErrNoMasterSchema is returned when the first snapshot is nil or has no tables.
	ErrNoMasterSchema = errors.New("master snapshot is missing or empty")
	// ErrNoPeerSchema is returned when a peer snapshot is nil.
	ErrNoPeerSchema = errors.New("peer snapshot is missing")
	// ErrDuplicateTarget is returned when two snapshots share a target id.
	ErrDuplicateTarget = errors.New("duplicate target id")
	// ErrMissingMasterTable is returned by CompareTable for a table the master lacks.
	ErrMissingMasterTable = errors.New("table not present in master snapshot")
)
