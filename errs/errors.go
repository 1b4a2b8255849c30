// Package errs defines the sentinel errors shared across jsonflat packages.
//
// Errors that carry structured data (parse offsets, partial tables) are
// concrete types defined next to the code that produces them; this package
// holds only the shared sentinel values so callers can classify failures
// with errors.Is.
package errs

import "errors"

// Policy configuration errors.
var (
	// ErrEmptySeparator indicates a flatten policy was configured with an
	// empty path separator.
	ErrEmptySeparator = errors.New("separator must not be empty")

	// ErrInvalidChunkSize indicates a non-positive chunk size.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrInvalidConcurrency indicates a non-positive concurrency bound.
	ErrInvalidConcurrency = errors.New("max concurrency must be positive")

	// ErrInvalidMaxDepth indicates a negative depth limit.
	ErrInvalidMaxDepth = errors.New("max depth must not be negative")
)

// Input errors.
var (
	// ErrEmptyInput indicates an empty or all-whitespace JSON document.
	ErrEmptyInput = errors.New("empty JSON input")

	// ErrTrailingData indicates non-whitespace bytes after the top-level
	// JSON value.
	ErrTrailingData = errors.New("trailing data after top-level value")
)
