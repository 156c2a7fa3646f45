package catalog

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// snapshot is the YAML-serializable form of a Catalog: the JSON-backed
// catalog.json is the live store, but operators want a human-editable
// export for moving a schema between environments (dev fixture seeding,
// schema review in a PR diff) without hand-writing DDL.
type snapshot struct {
	Tables []*TabMeta `yaml:"tables"`
}

// ExportSnapshot writes every table's schema and indexes to w as YAML.
func (c *Catalog) ExportSnapshot(w io.Writer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := snapshot{Tables: make([]*TabMeta, 0, len(c.tables))}
	for _, t := range c.tables {
		snap.Tables = append(snap.Tables, t)
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("catalog: encode snapshot: %w", err)
	}
	return nil
}

// ExportSnapshotFile writes the catalog snapshot to the named file.
func (c *Catalog) ExportSnapshotFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("catalog: create snapshot file: %w", err)
	}
	defer f.Close()
	return c.ExportSnapshot(f)
}

// ImportSnapshot reads a YAML snapshot from r and registers every table it
// names. A table that already exists by name is rejected with
// ErrTableExists, the same as CreateTable — import does not overwrite.
func (c *Catalog) ImportSnapshot(r io.Reader) error {
	var snap snapshot
	if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("catalog: decode snapshot: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range snap.Tables {
		if _, exists := c.tables[t.Name]; exists {
			return fmt.Errorf("%w: %s", ErrTableExists, t.Name)
		}
	}
	for _, t := range snap.Tables {
		c.tables[t.Name] = t
	}
	return c.saveLocked()
}

// ImportSnapshotFile reads and registers a catalog snapshot from the named
// YAML file.
func (c *Catalog) ImportSnapshotFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("catalog: open snapshot file: %w", err)
	}
	defer f.Close()
	return c.ImportSnapshot(f)
}
