// Package snapshots persists captured schema snapshots as YAML files so a run
// can compare live targets against a saved baseline.
package snapshots

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kadirbelkuyu/schemer/internal/schema"
)

const defaultDir = "snapshots"

var fileNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9-_]`)

// Entry describes a saved snapshot file.
type Entry struct {
	Name     string
	Path     string
	Target   string
	Tables   int
	Modified time.Time
}

type document struct {
	Target     string          `yaml:"target"`
	CapturedAt time.Time       `yaml:"captured_at,omitempty"`
	Tables     []tableDocument `yaml:"tables"`
}

type tableDocument struct {
	Name    string                    `yaml:"name"`
	Columns []schema.ColumnDescriptor `yaml:"columns"`
}

// Store reads and writes snapshot files under a directory.
type Store struct {
	dir string
}

// NewStore constructs a store rooted at dir.
func NewStore(dir string) *Store {
	if strings.TrimSpace(dir) == "" {
		dir = defaultDir
	}
	return &Store{dir: dir}
}

// Directory returns the configured snapshot directory.
func (s *Store) Directory() string {
	return s.dir
}

// Save writes snap under name. An empty name derives one from the target id
// and the current time.
func (s *Store) Save(snap *schema.Snapshot, name string) (Entry, error) {
	if snap == nil {
		return Entry{}, fmt.Errorf("snapshot cannot be nil")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	base := strings.TrimSpace(name)
	if base == "" {
		base = fmt.Sprintf("%s-%s", snap.TargetID(), time.Now().Format("20060102_150405"))
	}
	if hasYAMLExt(base) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	base = ensureYAMLExt(sanitizeName(base))

	now := time.Now().UTC().Truncate(time.Second)
	doc := document{Target: snap.TargetID(), CapturedAt: now}
	tables := snap.Tables()
	for _, table := range tables.Tables() {
		columns, _ := tables.Columns(table)
		doc.Tables = append(doc.Tables, tableDocument{Name: table, Columns: columns})
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	path := filepath.Join(s.dir, base)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Entry{}, fmt.Errorf("failed to write snapshot: %w", err)
	}

	return Entry{
		Name:     strings.TrimSuffix(base, filepath.Ext(base)),
		Path:     path,
		Target:   doc.Target,
		Tables:   len(doc.Tables),
		Modified: now,
	}, nil
}

// Load reads a snapshot by name or file path.
func (s *Store) Load(nameOrPath string) (*schema.Snapshot, error) {
	path, err := s.resolve(nameOrPath)
	if err != nil {
		return nil, err
	}

	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	tables := schema.NewTableSchema()
	for _, table := range doc.Tables {
		if table.Columns == nil {
			tables.Add(table.Name, nil)
			continue
		}
		columns := make([]schema.ColumnDescriptor, 0, len(table.Columns))
		for _, column := range table.Columns {
			columns = append(columns, column.Normalized())
		}
		tables.Add(table.Name, columns)
	}

	return schema.NewSnapshot(doc.Target, tables), nil
}

// List returns the snapshots in the directory sorted by name. Files that do
// not parse as snapshots are skipped.
func (s *Store) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Entry
	for _, entry := range entries {
		if entry.IsDir() || !hasYAMLExt(entry.Name()) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		doc, err := readDocument(path)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		out = append(out, Entry{
			Name:     strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			Path:     path,
			Target:   doc.Target,
			Tables:   len(doc.Tables),
			Modified: modifiedTime(info, err),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a snapshot by name or file path.
func (s *Store) Delete(nameOrPath string) error {
	path, err := s.resolve(nameOrPath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("snapshot not found: %s", nameOrPath)
	}

	return os.Remove(path)
}

func (s *Store) resolve(nameOrPath string) (string, error) {
	if strings.TrimSpace(nameOrPath) == "" {
		return "", fmt.Errorf("snapshot name cannot be empty")
	}
	if strings.ContainsRune(nameOrPath, os.PathSeparator) || strings.ContainsRune(nameOrPath, '/') {
		return nameOrPath, nil
	}
	return filepath.Join(s.dir, ensureYAMLExt(nameOrPath)), nil
}

func readDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	if doc.Target == "" {
		return nil, fmt.Errorf("snapshot file %s has no target", path)
	}
	return &doc, nil
}

func modifiedTime(info os.FileInfo, err error) time.Time {
	if err != nil || info == nil {
		return time.Time{}
	}
	return info.ModTime()
}

func hasYAMLExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func ensureYAMLExt(name string) string {
	if hasYAMLExt(name) {
		return name
	}
	return name + ".yaml"
}

func sanitizeName(input string) string {
	cleaned := fileNameSanitizer.ReplaceAllString(input, "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return "snapshot"
	}
	return cleaned
}
