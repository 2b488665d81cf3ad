// Package schema describes the porydex tables once, for every consumer.
//
// The descriptors here drive the bulk loader (column order, nullability, the
// load-order column), the dump (primary key ordering), dropping the schema
// (reverse load order) and the generation-scoped queries in package store.
// DDL lives in the dialect migrations under db/; a test keeps the two in step.
package schema

import (
	"strings"
)

// ColumnType is the logical type of a column, independent of SQL dialect.
type ColumnType int

const (
	Int ColumnType = iota
	Text
	Bool
)

func (t ColumnType) String() string {
	switch t {
	case Int:
		return "int"
	case Text:
		return "text"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Column is one column of a table.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// ForeignKey references the listed columns of another table.
type ForeignKey struct {
	Columns    []string
	Table      string
	References []string
}

// Table describes one table of the catalog.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	Unique      [][]string
	ForeignKeys []ForeignKey

	// LoadOrder names the column rows are sorted on (ascending) before they
	// are inserted. Set only for tables that reference themselves.
	LoadOrder string
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	if i := t.Index(name); i >= 0 {
		return t.Columns[i], true
	}
	return Column{}, false
}

// SelfReferencing reports whether a foreign key points back at t.
func (t *Table) SelfReferencing() bool {
	for _, fk := range t.ForeignKeys {
		if fk.Table == t.Name {
			return true
		}
	}
	return false
}

func (t *Table) String() string {
	return t.Name
}

// Quote quotes an identifier. Both supported dialects accept double quotes,
// which is required for columns such as "order".
func Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// QuoteAll quotes each identifier and joins them with ", ".
func QuoteAll(idents []string) string {
	quoted := make([]string, len(idents))
	for i, ident := range idents {
		quoted[i] = Quote(ident)
	}
	return strings.Join(quoted, ", ")
}
