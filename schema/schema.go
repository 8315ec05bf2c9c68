// Package schema defines the data types and table metadata shared by the
// parser, catalog, storage, and engine layers.
package schema

import (
	"fmt"
	"strings"
)

// Type is the declared type of a column. The engine supports exactly two
// types: 64-bit integers and length-bounded strings.
type Type int

const (
	TypeInt Type = iota
	TypeVarchar
)

// String returns the SQL spelling of the type.
func (t Type) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeVarchar:
		return "VARCHAR"
	default:
		return "UNKNOWN"
	}
}

// ParseType converts a SQL type name to a Type. Matching is
// case-insensitive.
func ParseType(name string) (Type, error) {
	switch strings.ToUpper(name) {
	case "INT":
		return TypeInt, nil
	case "VARCHAR":
		return TypeVarchar, nil
	default:
		return 0, fmt.Errorf("Unknown data type: %s", name)
	}
}

// DefaultLength returns the length a column takes when the declaration
// carries no explicit one: 4 for INT, 255 for VARCHAR.
func DefaultLength(t Type) int {
	switch t {
	case TypeInt:
		return 4
	case TypeVarchar:
		return 255
	default:
		return 0
	}
}

// Column describes one column of a table.
type Column struct {
	Name   string
	Type   Type
	Length int
}

// Table describes a table: its name and ordered column list.
// Column names are unique within a table.
type Table struct {
	Name    string
	Columns []Column
}

// Column returns the column with the given name and its ordinal position,
// or false if the table has no such column.
func (t *Table) Column(name string) (Column, int, bool) {
	for i, col := range t.Columns {
		if col.Name == name {
			return col, i, true
		}
	}
	return Column{}, 0, false
}

// HasColumn reports whether the table declares a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, _, ok := t.Column(name)
	return ok
}
