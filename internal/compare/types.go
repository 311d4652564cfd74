package compare

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode selects how master and peer columns are paired.
type Mode string

const (
	// ModePositional pairs the i-th master column with the i-th peer column.
	ModePositional Mode = "positional"
	// ModeByName pairs columns by the value of their identity attribute.
	ModeByName Mode = "name"
)

// DefaultIdentityAttribute is the attribute naming a column in MySQL DESCRIBE
// output and in every built-in introspection source.
const DefaultIdentityAttribute = "Field"

// ParseMode converts user input into a Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "positional", "position", "index":
		return ModePositional, nil
	case "name", "by-name", "byname":
		return ModeByName, nil
	default:
		return "", fmt.Errorf("unknown comparison mode: %s", value)
	}
}

// Options tune the comparison. The zero value compares positionally using the
// Field attribute as the column identifier.
type Options struct {
	Mode              Mode
	IdentityAttribute string
	IgnoreTables      []*regexp.Regexp
}

func (o Options) mode() Mode {
	if o.Mode == "" {
		return ModePositional
	}
	return o.Mode
}

func (o Options) identity() string {
	if o.IdentityAttribute == "" {
		return DefaultIdentityAttribute
	}
	return o.IdentityAttribute
}

func (o Options) ignored(table string) bool {
	for _, re := range o.IgnoreTables {
		if re != nil && re.MatchString(table) {
			return true
		}
	}
	return false
}

// Disposition classifies one target's table relative to the master.
type Disposition string

const (
	DispositionMaster  Disposition = "master"
	DispositionMatch   Disposition = "match"
	DispositionNoMatch Disposition = "no_match"
	DispositionMissing Disposition = "missing"
)

// ColumnDifference is a single attribute-level mismatch.
type ColumnDifference struct {
	Column      string `json:"column" yaml:"column"`
	Attribute   string `json:"attribute" yaml:"attribute"`
	MasterValue any    `json:"master_value" yaml:"master_value"`
	PeerValue   any    `json:"peer_value" yaml:"peer_value"`
}

// TargetResult is one target's outcome for a table.
type TargetResult struct {
	TargetID    string             `json:"target" yaml:"target"`
	Disposition Disposition        `json:"disposition" yaml:"disposition"`
	Differences []ColumnDifference `json:"differences,omitempty" yaml:"differences,omitempty"`
	// Column counts are only recorded for no_match results. Positional
	// comparison never looks past the shorter list, so a gap here is the only
	// trace of trailing columns.
	MasterColumns int `json:"master_columns,omitempty" yaml:"master_columns,omitempty"`
	PeerColumns   int `json:"peer_columns,omitempty" yaml:"peer_columns,omitempty"`
}

// ColumnCountMismatch reports whether master and peer had different column counts.
func (r TargetResult) ColumnCountMismatch() bool {
	return r.Disposition == DispositionNoMatch && r.MasterColumns != r.PeerColumns
}

// TableResult holds every target's outcome for one master table, in snapshot order.
type TableResult struct {
	Table   string         `json:"table" yaml:"table"`
	Targets []TargetResult `json:"targets" yaml:"targets"`
}

// Target returns the result recorded for targetID.
func (t TableResult) Target(targetID string) (TargetResult, bool) {
	for _, r := range t.Targets {
		if r.TargetID == targetID {
			return r, true
		}
	}
	return TargetResult{}, false
}

// Consistent reports whether every peer matched the master.
func (t TableResult) Consistent() bool {
	for _, r := range t.Targets {
		if r.Disposition != DispositionMaster && r.Disposition != DispositionMatch {
			return false
		}
	}
	return true
}

// Result is the outcome of a full comparison run.
type Result struct {
	Master  string        `json:"master" yaml:"master"`
	Targets []string      `json:"targets" yaml:"targets"`
	Mode    Mode          `json:"mode" yaml:"mode"`
	Tables  []TableResult `json:"tables" yaml:"tables"`
}

// Table returns the result for a table name.
func (r *Result) Table(name string) (TableResult, bool) {
	for _, t := range r.Tables {
		if t.Table == name {
			return t, true
		}
	}
	return TableResult{}, false
}

// Summary counts table/peer pairs by disposition.
type Summary struct {
	Tables       int `json:"tables" yaml:"tables"`
	Inconsistent int `json:"inconsistent" yaml:"inconsistent"`
	Matched      int `json:"matched" yaml:"matched"`
	Mismatched   int `json:"mismatched" yaml:"mismatched"`
	Missing      int `json:"missing" yaml:"missing"`
}

func (r *Result) Summary() Summary {
	s := Summary{Tables: len(r.Tables)}
	for _, t := range r.Tables {
		if !t.Consistent() {
			s.Inconsistent++
		}
		for _, target := range t.Targets {
			switch target.Disposition {
			case DispositionMatch:
				s.Matched++
			case DispositionNoMatch:
				s.Mismatched++
			case DispositionMissing:
				s.Missing++
			}
		}
	}
	return s
}

// HasDifferences reports whether any peer table was missing or mismatched.
func (r *Result) HasDifferences() bool {
	s := r.Summary()
	return s.Mismatched > 0 || s.Missing > 0
}
