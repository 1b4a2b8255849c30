// Package jsonflat converts arbitrarily nested JSON documents into flat,
// tabular records suitable for columnar analytics.
//
// A document flattens to a record of separator-joined paths and scalar
// values; many records reconcile into a Table with a unified column set.
// The engine scales from a single in-memory object to multi-gigabyte
// (optionally compressed) files, which are processed with memory bounded by
// a configurable chunk size rather than the file size.
//
// # Core Features
//
//   - Iterative path-walking flattener, total over any parsed JSON value
//   - Configurable separator, depth truncation and array handling
//   - Schema reconciliation: first-seen column order, MISSING sentinel
//   - Streaming large-file path with O(chunk) peak memory
//   - Chunked concurrent processing with deterministic ordering
//   - Transparent gzip/zstd/lz4/s2 input decompression
//
// # Basic Usage
//
// Flattening a single document:
//
//	rec, _ := jsonflat.Flatten([]byte(`{"user":{"name":"ada","tags":["a","b"]}}`))
//	for _, f := range rec {
//	    fmt.Printf("%s=%s\n", f.Path, f.Value)
//	}
//	// user.name=ada
//	// user.tags.0=a
//	// user.tags.1=b
//
// Streaming a large array-rooted file into a table:
//
//	tbl, err := jsonflat.FlattenFileStreaming("events.json.gz",
//	    flatten.WithChunkSize(5000),
//	    flatten.WithMaxConcurrency(8),
//	)
//	if err != nil {
//	    return err
//	}
//	for _, col := range tbl.Columnar() {
//	    fmt.Println(col.Name, len(col.Cells))
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the domain
// packages: value (model, parser, incremental decoder), flatten (policy and
// core engine), table (reconciler and output adapters) and stream (file
// processor and concurrency coordinator). Use those packages directly for
// fine-grained control.
package jsonflat

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/jsonflat/compress"
	"github.com/arloliu/jsonflat/flatten"
	"github.com/arloliu/jsonflat/stream"
	"github.com/arloliu/jsonflat/table"
	"github.com/arloliu/jsonflat/value"
)

// Flatten parses a single JSON document and flattens it into one record.
//
// The whole document is one record regardless of its root kind; an
// array-rooted document flattens with index paths ("0", "1.x", ...). Use
// FlattenFile or FlattenFileStreaming to treat top-level array elements as
// separate records.
func Flatten(data []byte, opts ...flatten.Option) (flatten.Record, error) {
	policy, err := flatten.NewPolicy(opts...)
	if err != nil {
		return nil, err
	}

	v, err := value.Parse(data)
	if err != nil {
		return nil, err
	}

	return flatten.FlattenValue(v, policy), nil
}

// FlattenString is Flatten for string input.
func FlattenString(data string, opts ...flatten.Option) (flatten.Record, error) {
	return Flatten([]byte(data), opts...)
}

// FlattenValue flattens an already-parsed value into one record.
func FlattenValue(v *value.Value, opts ...flatten.Option) (flatten.Record, error) {
	policy, err := flatten.NewPolicy(opts...)
	if err != nil {
		return nil, err
	}

	return flatten.FlattenValue(v, policy), nil
}

// FlattenFile decodes a whole JSON file and returns one record per
// top-level array element, or a single record for any other root.
// Compressed files are decompressed transparently.
//
// The entire document is materialized; for files too large for that, use
// FlattenFileStreaming.
func FlattenFile(path string, opts ...flatten.Option) ([]flatten.Record, error) {
	policy, err := flatten.NewPolicy(opts...)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	cr, _, err := compress.NewAutoReader(f)
	if err != nil {
		return nil, err
	}
	defer cr.Close()

	data, err := io.ReadAll(cr)
	if err != nil {
		return nil, err
	}

	v, err := value.Parse(data)
	if err != nil {
		return nil, err
	}

	if v.Kind() != value.KindArray {
		return []flatten.Record{flatten.FlattenValue(v, policy)}, nil
	}

	fl := flatten.NewFlattener(policy)
	elems := v.Elems()
	recs := make([]flatten.Record, len(elems))
	for i := range elems {
		recs[i] = fl.Flatten(&elems[i])
	}

	return recs, nil
}

// FlattenFileStreaming processes a JSON file into a Table with peak memory
// bounded by the policy chunk size, per the stream package contract. It
// always yields the full table of rows, one per top-level array element
// (or a single row for a non-array root).
func FlattenFileStreaming(path string, opts ...flatten.Option) (*table.Table, error) {
	policy, err := flatten.NewPolicy(opts...)
	if err != nil {
		return nil, err
	}

	return stream.ProcessFile(path, policy)
}

// FlattenReader is FlattenFileStreaming over an arbitrary reader.
func FlattenReader(r io.Reader, opts ...flatten.Option) (*table.Table, error) {
	policy, err := flatten.NewPolicy(opts...)
	if err != nil {
		return nil, err
	}

	return stream.Process(r, policy)
}

// FlattenLines processes line-delimited JSON (JSONL/NDJSON) into a Table,
// one row per non-blank line, with the same memory bound and transparent
// decompression as FlattenReader.
func FlattenLines(r io.Reader, opts ...flatten.Option) (*table.Table, error) {
	policy, err := flatten.NewPolicy(opts...)
	if err != nil {
		return nil, err
	}

	return stream.ProcessLines(r, policy)
}

// FlattenLinesFile is FlattenLines over a file path.
func FlattenLinesFile(path string, opts ...flatten.Option) (*table.Table, error) {
	policy, err := flatten.NewPolicy(opts...)
	if err != nil {
		return nil, err
	}

	return stream.ProcessLinesFile(path, policy)
}

// FlattenDocuments parses and flattens independent raw JSON documents
// concurrently into a Table, one row per document in input order.
// Per-document failures are reported index-aligned (see
// stream.Coordinator.ProcessDocuments).
func FlattenDocuments(ctx context.Context, docs [][]byte, opts ...flatten.Option) (*table.Table, []stream.ElementError, error) {
	policy, err := flatten.NewPolicy(opts...)
	if err != nil {
		return nil, nil, err
	}

	return stream.NewCoordinator(policy).ProcessDocuments(ctx, docs)
}

// FlattenValues flattens already-parsed values concurrently into a Table,
// one row per value in input order.
func FlattenValues(ctx context.Context, values []*value.Value, opts ...flatten.Option) (*table.Table, error) {
	policy, err := flatten.NewPolicy(opts...)
	if err != nil {
		return nil, err
	}

	return stream.NewCoordinator(policy).ProcessValues(ctx, values)
}
