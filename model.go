package main

import "strings"

// TargetType is the target column type a source type affinity maps to.
type TargetType string

const (
	TargetInt      TargetType = "INT"
	TargetText     TargetType = "TEXT"
	TargetBlob     TargetType = "BLOB"
	TargetDouble   TargetType = "DOUBLE"
	TargetDatetime TargetType = "DATETIME"
)

// ColumnDescriptor is a single column parsed from a CREATE TABLE statement.
type ColumnDescriptor struct {
	Name       string
	SourceType string // raw type token, e.g. "VARCHAR(255)"; empty when undeclared
	TargetType TargetType
	Collation  string // COLLATE name from the column definition
	Generated  string // "VIRTUAL" or "STORED" for generated columns
}

// IndexDescriptor is a source index parsed from its CREATE INDEX statement.
type IndexDescriptor struct {
	Name       string
	Unique     bool
	Columns    []string // column names, index key order
	Descending []bool   // parallel to Columns
	Partial    bool     // WHERE clause present
	Expression bool     // a key part is not a plain column
}

// TableDescriptor holds the translated definition of one source table.
type TableDescriptor struct {
	Name    string
	Columns []ColumnDescriptor
	Indexes []IndexDescriptor
}

// ColumnNames returns the column names in declaration order.
func (t TableDescriptor) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// column looks up a column by name, case-insensitively like SQLite does.
func (t TableDescriptor) column(name string) (ColumnDescriptor, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnDescriptor{}, false
}
