package schema

import "sort"

// ColumnDescriptor holds one column's attributes exactly as the introspection
// source reported them (Field, Type, Null, Key, Default, Extra, ...).
type ColumnDescriptor map[string]any

// Clone returns a shallow copy of the descriptor.
func (c ColumnDescriptor) Clone() ColumnDescriptor {
	if c == nil {
		return nil
	}
	out := make(ColumnDescriptor, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Keys returns the attribute names in sorted order.
func (c ColumnDescriptor) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TableSchema maps table names to their ordered columns. Tables iterate in
// insertion order so every consumer sees the same sequence.
type TableSchema struct {
	names   []string
	columns map[string][]ColumnDescriptor
}

// NewTableSchema returns an empty schema.
func NewTableSchema() *TableSchema {
	return &TableSchema{columns: map[string][]ColumnDescriptor{}}
}

// Add stores the columns for table. Re-adding an existing table replaces its
// columns but keeps the original position. A nil column list is kept as nil
// and is reported as missing by the comparator.
func (s *TableSchema) Add(table string, columns []ColumnDescriptor) {
	if s.columns == nil {
		s.columns = map[string][]ColumnDescriptor{}
	}
	if _, ok := s.columns[table]; !ok {
		s.names = append(s.names, table)
	}
	s.columns[table] = cloneColumns(columns)
}

// Has reports whether table is present.
func (s *TableSchema) Has(table string) bool {
	if s == nil {
		return false
	}
	_, ok := s.columns[table]
	return ok
}

// Columns returns a copy of the columns for table.
func (s *TableSchema) Columns(table string) ([]ColumnDescriptor, bool) {
	if s == nil {
		return nil, false
	}
	cols, ok := s.columns[table]
	if !ok {
		return nil, false
	}
	return cloneColumns(cols), true
}

// Tables returns the table names in insertion order.
func (s *TableSchema) Tables() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of tables.
func (s *TableSchema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Snapshot is the captured schema of one target. It is never mutated after
// construction.
type Snapshot struct {
	targetID string
	tables   *TableSchema
}

// NewSnapshot wraps a schema for the given target. The schema is copied.
func NewSnapshot(targetID string, tables *TableSchema) *Snapshot {
	copied := NewTableSchema()
	if tables != nil {
		for _, name := range tables.names {
			copied.Add(name, tables.columns[name])
		}
	}
	return &Snapshot{targetID: targetID, tables: copied}
}

func (s *Snapshot) TargetID() string {
	return s.targetID
}

// Tables exposes the read-only schema view.
func (s *Snapshot) Tables() *TableSchema {
	if s == nil {
		return nil
	}
	return s.tables
}

func cloneColumns(columns []ColumnDescriptor) []ColumnDescriptor {
	if columns == nil {
		return nil
	}
	out := make([]ColumnDescriptor, len(columns))
	for i, col := range columns {
		out[i] = col.Clone()
	}
	return out
}
