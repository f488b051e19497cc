package schema

import (
	"fmt"
	"sort"

	"github.com/physiolab/physiopipe/internal/frame"
)

// Registry holds the compiled table contracts. It is immutable after
// Load and safe for concurrent readers.
type Registry struct {
	tables map[string]TableSpec
}

// Load compiles the embedded declarations and verifies that every
// (modality, stage) pair is declared.
func Load() (*Registry, error) {
	tables, err := compileTables()
	if err != nil {
		return nil, err
	}
	for _, m := range Modalities() {
		for _, s := range Stages() {
			if _, ok := tables[TableName(m, s)]; !ok {
				return nil, fmt.Errorf("tables.cue: missing declaration for %s", TableName(m, s))
			}
		}
	}
	for _, name := range []string{TableParticipants, TableTrials, TableCalibration, TableQuestionnaires} {
		if _, ok := tables[name]; !ok {
			return nil, fmt.Errorf("tables.cue: missing declaration for %s", name)
		}
	}
	return &Registry{tables: tables}, nil
}

// MustLoad is Load for contexts where the embedded declarations are
// known-good (main, tests); it panics on error.
func MustLoad() *Registry {
	r, err := Load()
	if err != nil {
		panic(err)
	}
	return r
}

// Spec returns the contract for a (modality, stage) table.
func (r *Registry) Spec(m Modality, s Stage) (TableSpec, bool) {
	spec, ok := r.tables[TableName(m, s)]
	return spec, ok
}

// SpecByName returns the contract for any declared table, including the
// static sibling tables.
func (r *Registry) SpecByName(name string) (TableSpec, bool) {
	spec, ok := r.tables[name]
	return spec, ok
}

// TableNames returns all declared table names, sorted for stable output.
func (r *Registry) TableNames() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks a frame against the contract for (modality, stage).
// Returns nil on success or a *SchemaError describing the first
// violation. Pure: neither the frame nor the registry is modified.
func (r *Registry) Validate(f *frame.Frame, m Modality, s Stage) error {
	spec, ok := r.Spec(m, s)
	if !ok {
		return fmt.Errorf("no contract declared for %s", TableName(m, s))
	}
	return ValidateSpec(f, spec)
}

// ValidateByName is Validate for static sibling tables.
func (r *Registry) ValidateByName(f *frame.Frame, table string) error {
	spec, ok := r.SpecByName(table)
	if !ok {
		return fmt.Errorf("no contract declared for %s", table)
	}
	return ValidateSpec(f, spec)
}

// ValidateSpec checks a frame against an explicit contract.
//
// The check is exact: every declared column must be present with the
// declared kind, no undeclared column may be present, and non-nullable
// columns must not hold nulls. Column order is not checked here; the
// store normalizes order to the declaration when writing.
func ValidateSpec(f *frame.Frame, spec TableSpec) error {
	for _, col := range spec.Columns {
		s, ok := f.Series(col.Name)
		if !ok {
			return &SchemaError{Kind: MissingColumn, Table: spec.Name, Column: col.Name}
		}
		if s.Kind != col.Kind {
			return &SchemaError{
				Kind:   TypeMismatch,
				Table:  spec.Name,
				Column: col.Name,
				Want:   col.Kind.String(),
				Got:    s.Kind.String(),
			}
		}
		if !col.Nullable && s.Null != nil {
			for i := 0; i < s.Len(); i++ {
				if s.Null[i] {
					return &SchemaError{
						Kind:   TypeMismatch,
						Table:  spec.Name,
						Column: col.Name,
						Want:   col.Kind.String(),
						Got:    "null",
					}
				}
			}
		}
	}
	for _, name := range f.Columns() {
		if _, ok := spec.Column(name); !ok {
			return &SchemaError{Kind: UnexpectedColumn, Table: spec.Name, Column: name}
		}
	}
	return nil
}
