package catalog

import (
	"path/filepath"
	"testing"
)

func TestCatalogPersistence(t *testing.T) {
	tmp := t.TempDir()
	dataDir := filepath.Join(tmp, "data")

	cat, err := NewCatalog(dataDir)
	if err != nil {
		t.Fatalf("NewCatalog error: %v", err)
	}

	cols := []ColMeta{
		{Name: "id", Type: TypeInt32},
		{Name: "name", Type: TypeText},
	}
	if _, err := cat.CreateTable("users", cols); err != nil {
		t.Fatalf("CreateTable error: %v", err)
	}
	if err := cat.CreateIndex("users", IndexMeta{
		Name: "idx_users_id",
		Cols: []ColRef{{ColName: "id"}},
	}); err != nil {
		t.Fatalf("CreateIndex error: %v", err)
	}

	// Reopen catalog; metadata must survive a round trip through disk.
	cat2, err := NewCatalog(dataDir)
	if err != nil {
		t.Fatalf("NewCatalog reopen error: %v", err)
	}

	tables := cat2.ListTables()
	if len(tables) != 1 || tables[0] != "users" {
		t.Errorf("expected [users], got %v", tables)
	}

	meta, err := cat2.GetTable("users")
	if err != nil {
		t.Fatalf("GetTable error: %v", err)
	}
	if len(meta.Cols) != 2 {
		t.Errorf("expected 2 columns, got %d", len(meta.Cols))
	}
	if len(meta.Indexes) != 1 || meta.Indexes[0].Name != "idx_users_id" {
		t.Errorf("expected idx_users_id to survive reload, got %v", meta.Indexes)
	}
	if meta.Indexes[0].Cols[0].TabName != "users" {
		t.Errorf("expected index column to carry tab_name, got %q", meta.Indexes[0].Cols[0].TabName)
	}
}

func TestCatalogDuplicateTable(t *testing.T) {
	cat, err := NewCatalog(t.TempDir())
	if err != nil {
		t.Fatalf("NewCatalog error: %v", err)
	}
	if _, err := cat.CreateTable("t", []ColMeta{{Name: "a", Type: TypeInt32}}); err != nil {
		t.Fatalf("CreateTable error: %v", err)
	}
	if _, err := cat.CreateTable("t", []ColMeta{{Name: "a", Type: TypeInt32}}); err == nil {
		t.Fatal("expected error creating duplicate table")
	}
}

func TestCatalogIndexOrderingPreserved(t *testing.T) {
	cat, err := NewCatalog(t.TempDir())
	if err != nil {
		t.Fatalf("NewCatalog error: %v", err)
	}
	cols := []ColMeta{{Name: "a", Type: TypeInt32}, {Name: "b", Type: TypeInt32}, {Name: "c", Type: TypeInt32}}
	if _, err := cat.CreateTable("t", cols); err != nil {
		t.Fatalf("CreateTable error: %v", err)
	}
	for _, name := range []string{"idx_a", "idx_b", "idx_c"} {
		col := name[len("idx_"):]
		if err := cat.CreateIndex("t", IndexMeta{Name: name, Cols: []ColRef{{ColName: col}}}); err != nil {
			t.Fatalf("CreateIndex %s error: %v", name, err)
		}
	}
	meta, err := cat.GetTable("t")
	if err != nil {
		t.Fatalf("GetTable error: %v", err)
	}
	want := []string{"idx_a", "idx_b", "idx_c"}
	for i, idx := range meta.Indexes {
		if idx.Name != want[i] {
			t.Errorf("index %d: expected %s, got %s (declaration order must be preserved)", i, want[i], idx.Name)
		}
	}
}
