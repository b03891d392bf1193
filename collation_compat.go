package main

import (
	"fmt"
	"sort"
	"strings"
)

// collectCollationWarnings reports column collations that are not carried to
// the target. SQLite knows BINARY, NOCASE and RTRIM; the target columns get
// the database default, which may compare differently.
func collectCollationWarnings(t TableDescriptor, d Dialect) []string {
	byCollation := make(map[string][]string)
	for _, col := range t.Columns {
		if col.Collation == "" {
			continue
		}
		coll := strings.ToUpper(col.Collation)
		byCollation[coll] = append(byCollation[coll], col.Name)
	}

	var warnings []string
	for _, coll := range sortedKeys(byCollation) {
		cols := strings.Join(byCollation[coll], ", ")
		switch coll {
		case "NOCASE":
			if d.Name == "postgres" {
				warnings = append(warnings, fmt.Sprintf(
					"%s: column(s) %s use NOCASE; PostgreSQL text comparisons are case-sensitive by default", t.Name, cols))
			}
		case "BINARY":
			if d.Name == "mysql" {
				warnings = append(warnings, fmt.Sprintf(
					"%s: column(s) %s use BINARY; the target default collation may be case-insensitive", t.Name, cols))
			}
		default:
			warnings = append(warnings, fmt.Sprintf(
				"%s: column(s) %s use collation %s, which is not recreated", t.Name, cols, coll))
		}
	}
	return warnings
}

// sortedKeys returns the keys of a map in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
