package schema

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes schema validation failures. These three kinds are
// the only ways validation can fail.
type ErrorKind string

const (
	// MissingColumn: the table lacks a declared column.
	MissingColumn ErrorKind = "MISSING_COLUMN"

	// UnexpectedColumn: the table carries a column the contract does not
	// declare.
	UnexpectedColumn ErrorKind = "UNEXPECTED_COLUMN"

	// TypeMismatch: a column exists but with the wrong kind, or holds a
	// null in a non-nullable column.
	TypeMismatch ErrorKind = "TYPE_MISMATCH"
)

// SchemaError reports a table contract violation. It is always fatal to
// the validate or write call that produced it; the store performs no
// write after returning one.
type SchemaError struct {
	Kind   ErrorKind
	Table  string
	Column string

	// Want and Got describe the kind mismatch for TypeMismatch errors.
	Want string
	Got  string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	switch e.Kind {
	case TypeMismatch:
		return fmt.Sprintf("%s: table %s column %s: want %s, got %s",
			e.Kind, e.Table, e.Column, e.Want, e.Got)
	default:
		return fmt.Sprintf("%s: table %s column %s", e.Kind, e.Table, e.Column)
	}
}

// IsSchemaError reports whether err is (or wraps) a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// AsSchemaError unwraps a SchemaError from err, or returns nil.
func AsSchemaError(err error) *SchemaError {
	var se *SchemaError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
