package store

import (
	"errors"
	"fmt"
)

// NotFoundError reports a read of a table no run has populated yet.
// Recoverable by the caller: ingest the raw data or run the pipeline
// stage that produces the table, then read again.
type NotFoundError struct {
	Table string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("table %s not populated", e.Table)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
