package main

import "fmt"

// collectGeneratedColumnWarnings reports generated columns. Their values are
// copied as plain data; the generation expression is not recreated.
func collectGeneratedColumnWarnings(t TableDescriptor) []string {
	var warnings []string
	for _, col := range t.Columns {
		if col.Generated == "" {
			continue
		}
		warnings = append(warnings, fmt.Sprintf(
			"generated column %s.%s (%s) will be materialized as plain data; generation expression is not recreated",
			t.Name, col.Name, col.Generated,
		))
	}
	return warnings
}
