package stream

import (
	"fmt"

	"github.com/arloliu/jsonflat/table"
)

// PartialError reports a streaming or concurrent run that failed after some
// chunks were already committed. It carries the finalized table of the rows
// committed before the abort point, so large-file callers can keep the
// earlier work instead of losing everything.
type PartialError struct {
	// Table holds the rows committed up to the last complete chunk
	// boundary before the failure.
	Table *table.Table

	// Err is the failure that aborted processing.
	Err error
}

// Error implements the error interface.
func (e *PartialError) Error() string {
	return fmt.Sprintf("processing aborted after %d rows: %v", e.Table.NumRows(), e.Err)
}

// Unwrap returns the triggering error.
func (e *PartialError) Unwrap() error {
	return e.Err
}

// ElementError reports a failure isolated to a single input element of a
// concurrent run.
type ElementError struct {
	// Index is the element's position in the input sequence.
	Index int

	// Err is the element's failure.
	Err error
}

// Error implements the error interface.
func (e *ElementError) Error() string {
	return fmt.Sprintf("element %d: %v", e.Index, e.Err)
}

// Unwrap returns the element's failure.
func (e *ElementError) Unwrap() error {
	return e.Err
}
