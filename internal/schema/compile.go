package schema

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/physiolab/physiopipe/internal/frame"
)

//go:embed tables.cue
var tablesCUE []byte

// compileTables compiles the embedded CUE declarations into TableSpecs.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
func compileTables() (map[string]TableSpec, error) {
	ctx := cuecontext.New()

	value := ctx.CompileBytes(tablesCUE)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compile tables.cue: %w", err)
	}

	tablesVal := value.LookupPath(cue.ParsePath("tables"))
	if !tablesVal.Exists() {
		return nil, fmt.Errorf("tables.cue: no top-level tables struct")
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("tables.cue: iterating tables: %w", err)
	}

	specs := make(map[string]TableSpec)
	for iter.Next() {
		name := iter.Label()
		spec, err := compileTable(name, iter.Value())
		if err != nil {
			return nil, err
		}
		specs[name] = spec
	}
	return specs, nil
}

// compileTable parses one table declaration into a TableSpec.
func compileTable(name string, v cue.Value) (TableSpec, error) {
	spec := TableSpec{Name: name}

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return spec, fmt.Errorf("table %s: missing columns", name)
	}

	list, err := colsVal.List()
	if err != nil {
		return spec, fmt.Errorf("table %s: columns is not a list: %w", name, err)
	}

	for list.Next() {
		col, err := compileColumn(name, list.Value())
		if err != nil {
			return spec, err
		}
		if _, dup := spec.Column(col.Name); dup {
			return spec, fmt.Errorf("table %s: duplicate column %q", name, col.Name)
		}
		spec.Columns = append(spec.Columns, col)
	}

	if len(spec.Columns) == 0 {
		return spec, fmt.Errorf("table %s: no columns declared", name)
	}
	if len(spec.KeyColumns()) == 0 {
		return spec, fmt.Errorf("table %s: no key columns declared", name)
	}
	return spec, nil
}

// compileColumn parses one column declaration.
func compileColumn(table string, v cue.Value) (ColumnSpec, error) {
	var col ColumnSpec

	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return col, fmt.Errorf("table %s: column name: %w", table, err)
	}
	col.Name = name

	typeName, err := v.LookupPath(cue.ParsePath("type")).String()
	if err != nil {
		return col, fmt.Errorf("table %s: column %s type: %w", table, name, err)
	}
	col.Kind, err = frame.KindFromString(typeName)
	if err != nil {
		return col, fmt.Errorf("table %s: column %s: %w", table, name, err)
	}

	col.Nullable, err = v.LookupPath(cue.ParsePath("nullable")).Bool()
	if err != nil {
		return col, fmt.Errorf("table %s: column %s nullable: %w", table, name, err)
	}

	col.Key, err = v.LookupPath(cue.ParsePath("key")).Bool()
	if err != nil {
		return col, fmt.Errorf("table %s: column %s key: %w", table, name, err)
	}

	if col.Key && col.Nullable {
		return col, fmt.Errorf("table %s: key column %s cannot be nullable", table, name)
	}
	return col, nil
}
