// Package catalog provides the type system, schema and index descriptors
// consumed by the query planner. Table storage, page I/O, and the index's
// on-disk structure are owned by an external storage manager; this package
// models only the metadata the planner needs to read.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DataType represents a column data type.
type DataType int

const (
	TypeUnknown DataType = iota
	TypeInt32
	TypeInt64
	TypeText
	TypeBool
	TypeTimestamp
)

// String returns the SQL name of the type.
func (t DataType) String() string {
	switch t {
	case TypeInt32:
		return "INT"
	case TypeInt64:
		return "BIGINT"
	case TypeText:
		return "TEXT"
	case TypeBool:
		return "BOOL"
	case TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "UNKNOWN"
	}
}

// ParseDataType converts a string to DataType.
func ParseDataType(s string) DataType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INT", "INT32", "INTEGER":
		return TypeInt32
	case "BIGINT", "INT64":
		return TypeInt64
	case "TEXT", "STRING", "VARCHAR":
		return TypeText
	case "BOOL", "BOOLEAN":
		return TypeBool
	case "TIMESTAMP", "DATETIME":
		return TypeTimestamp
	default:
		return TypeUnknown
	}
}

// FixedWidth returns the byte width of a fixed-width type, 0 for variable
// width. The planner itself never touches record bytes, and nothing in
// this module calls FixedWidth.
func (t DataType) FixedWidth() int {
	switch t {
	case TypeInt32:
		return 4
	case TypeInt64, TypeTimestamp:
		return 8
	case TypeBool:
		return 1
	default:
		return 0
	}
}

// Value is a typed literal appearing on the RHS of a Condition or in an
// Insert statement's value list.
type Value struct {
	Type      DataType
	IsNull    bool
	Int32     int32
	Int64     int64
	Text      string
	Bool      bool
	Timestamp time.Time
}

// NewInt32 creates an INT32 value.
func NewInt32(v int32) Value { return Value{Type: TypeInt32, Int32: v} }

// NewInt64 creates an INT64 value.
func NewInt64(v int64) Value { return Value{Type: TypeInt64, Int64: v} }

// NewText creates a TEXT value.
func NewText(v string) Value { return Value{Type: TypeText, Text: v} }

// NewBool creates a BOOL value.
func NewBool(v bool) Value { return Value{Type: TypeBool, Bool: v} }

// Null creates a NULL value of the given type.
func Null(t DataType) Value { return Value{Type: t, IsNull: true} }

// String returns a human-readable representation.
func (v Value) String() string {
	if v.IsNull {
		return "NULL"
	}
	switch v.Type {
	case TypeInt32:
		return strconv.FormatInt(int64(v.Int32), 10)
	case TypeInt64:
		return strconv.FormatInt(v.Int64, 10)
	case TypeText:
		return v.Text
	case TypeBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case TypeTimestamp:
		return v.Timestamp.Format(time.RFC3339)
	default:
		return "?"
	}
}

// ColMeta describes one column of a table, including the table it belongs
// to: the planner needs tab_name on every column to decide which subtree of
// a join a predicate belongs to.
type ColMeta struct {
	TabName string
	Name    string
	Type    DataType
	Length  int
}

// ColRef names a column by table and column name, independent of any
// particular Condition or expression node — the shape index matching and
// predicate pushdown reason about.
type ColRef struct {
	TabName string
	ColName string
}

// String renders "tab.col" for diagnostics and log fields.
func (c ColRef) String() string {
	return fmt.Sprintf("%s.%s", c.TabName, c.ColName)
}

// IndexMeta describes one index on a table. Cols is ordered: it is the
// index's key prefix, and the order is semantically significant for
// leftmost-prefix matching (see planner.MatchIndex).
type IndexMeta struct {
	Name string
	Cols []ColRef
}

// ColNames returns the ordered column names making up the index key.
func (im IndexMeta) ColNames() []string {
	names := make([]string, len(im.Cols))
	for i, c := range im.Cols {
		names[i] = c.ColName
	}
	return names
}

// TabMeta holds a table's schema: its ordered columns and the indexes
// declared on it, in declaration order. Ties in index selection resolve to
// the earliest-declared index, so this order is load-bearing.
type TabMeta struct {
	Name    string
	Cols    []ColMeta
	Indexes []IndexMeta
}

// ColByName finds a column by name (case-insensitive), mirroring how an
// unqualified identifier resolves against a single table's schema.
func (t *TabMeta) ColByName(name string) (*ColMeta, bool) {
	for i := range t.Cols {
		if strings.EqualFold(t.Cols[i].Name, name) {
			return &t.Cols[i], true
		}
	}
	return nil, false
}

// IndexByName finds an index by name.
func (t *TabMeta) IndexByName(name string) (*IndexMeta, bool) {
	for i := range t.Indexes {
		if t.Indexes[i].Name == name {
			return &t.Indexes[i], true
		}
	}
	return nil, false
}
