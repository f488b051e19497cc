package store

import (
	"fmt"
	"strings"

	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/schema"
)

// SQL generation from TableSpecs. Identifiers come from the compiled
// schema declarations, never from user input; values are always
// parameterized.

// sqliteType maps a column kind to its SQLite storage type.
func sqliteType(k frame.Kind) string {
	switch k {
	case frame.Identifier:
		return "INTEGER"
	case frame.Categorical:
		return "TEXT"
	default:
		return "REAL"
	}
}

// createTableSQL builds the DDL for a data table: one column per spec
// column plus the key constraint.
func createTableSQL(spec schema.TableSpec) string {
	var cols []string
	for _, c := range spec.Columns {
		def := fmt.Sprintf("%q %s", c.Name, sqliteType(c.Kind))
		if !c.Nullable {
			def += " NOT NULL"
		}
		cols = append(cols, def)
	}
	keys := make([]string, 0, len(spec.KeyColumns()))
	for _, k := range spec.KeyColumns() {
		keys = append(keys, fmt.Sprintf("%q", k))
	}
	cols = append(cols, fmt.Sprintf("UNIQUE (%s)", strings.Join(keys, ", ")))

	return fmt.Sprintf("CREATE TABLE %q (\n    %s\n)", spec.Name, strings.Join(cols, ",\n    "))
}

// insertSQL builds the parameterized insert for one row of a data table.
func insertSQL(spec schema.TableSpec) string {
	names := make([]string, len(spec.Columns))
	params := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		names[i] = fmt.Sprintf("%q", c.Name)
		params[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
		spec.Name, strings.Join(names, ", "), strings.Join(params, ", "))
}

// selectSQL builds the read query for a data table. Columns come back in
// declaration order and rows ordered by the key columns, so repeated
// reads of an unchanged table are identical.
func selectSQL(spec schema.TableSpec) string {
	names := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		names[i] = fmt.Sprintf("%q", c.Name)
	}
	keys := make([]string, 0, len(spec.KeyColumns()))
	for _, k := range spec.KeyColumns() {
		keys = append(keys, fmt.Sprintf("%q ASC", k))
	}
	return fmt.Sprintf("SELECT %s FROM %q ORDER BY %s",
		strings.Join(names, ", "), spec.Name, strings.Join(keys, ", "))
}
