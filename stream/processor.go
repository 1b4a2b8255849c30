// Package stream implements the drivers that feed many top-level JSON
// records through the flatten core and schema reconciler: a memory-bounded
// streaming file processor and a chunked concurrent coordinator.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/jsonflat/compress"
	"github.com/arloliu/jsonflat/flatten"
	"github.com/arloliu/jsonflat/table"
	"github.com/arloliu/jsonflat/value"
)

// Process flattens a JSON stream into a Table without materializing the
// whole input.
//
// Compressed input (gzip, zstd, lz4, s2) is detected and decompressed
// transparently. An array-rooted document is decoded one element at a
// time: elements accumulate into chunks of the policy chunk size, each
// chunk is flattened across the worker pool and appended to the table in
// input order, then discarded, bounding peak memory by the chunk, not the
// file. Any other root is flattened as a single record.
//
// A failure after at least one chunk has been committed returns a
// *PartialError carrying the table of the committed rows; the pending
// partially-decoded chunk is discarded. A failure before any commit
// returns the underlying error alone.
func Process(r io.Reader, policy *flatten.Policy) (*table.Table, error) {
	if policy == nil {
		policy = flatten.DefaultPolicy()
	}

	cr, _, err := compress.NewAutoReader(r)
	if err != nil {
		return nil, err
	}
	defer cr.Close()

	dec := value.NewDecoder(cr)
	root, err := dec.Root()
	if err != nil {
		return nil, err
	}

	builder := table.NewBuilder()

	if root == value.RootValue {
		doc, err := dec.Document()
		if err != nil {
			return nil, err
		}
		builder.Append(flatten.FlattenValue(doc, policy))

		return builder.Finish(), nil
	}

	chunk := make([]*value.Value, 0, policy.ChunkSize())
	flush := func() error {
		recs, err := flattenChunk(context.Background(), policy, chunk)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			builder.Append(rec)
		}
		chunk = chunk[:0]

		return nil
	}

	for {
		v, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, failWith(builder, err)
		}

		chunk = append(chunk, v)
		if len(chunk) >= policy.ChunkSize() {
			if err := flush(); err != nil {
				return nil, failWith(builder, err)
			}
		}
	}

	if len(chunk) > 0 {
		if err := flush(); err != nil {
			return nil, failWith(builder, err)
		}
	}

	return builder.Finish(), nil
}

// failWith converts a mid-stream failure into a PartialError carrying the
// committed rows, or passes the error through untouched when nothing has
// been committed yet.
func failWith(builder *table.Builder, err error) error {
	if builder.NumRows() > 0 {
		return &PartialError{Table: builder.Finish(), Err: err}
	}

	return err
}

// ProcessLines flattens line-delimited JSON (JSONL/NDJSON) into a Table:
// one document per line, one row per document, in line order. Blank lines
// are skipped. Compressed input is detected and decompressed transparently,
// and memory is bounded by the policy chunk size exactly as in Process.
//
// A malformed line aborts the run; the error names the offending line
// number, and committed rows are preserved in a *PartialError as usual.
func ProcessLines(r io.Reader, policy *flatten.Policy) (*table.Table, error) {
	if policy == nil {
		policy = flatten.DefaultPolicy()
	}

	cr, _, err := compress.NewAutoReader(r)
	if err != nil {
		return nil, err
	}
	defer cr.Close()

	br := bufio.NewReaderSize(cr, 64*1024)
	builder := table.NewBuilder()

	chunk := make([]*value.Value, 0, policy.ChunkSize())
	flush := func() error {
		recs, err := flattenChunk(context.Background(), policy, chunk)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			builder.Append(rec)
		}
		chunk = chunk[:0]

		return nil
	}

	lineNo := 0
	for {
		line, readErr := br.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, failWith(builder, readErr)
		}
		lineNo++

		if doc := bytes.TrimSpace(line); len(doc) > 0 {
			v, err := value.Parse(doc)
			if err != nil {
				return nil, failWith(builder, fmt.Errorf("line %d: %w", lineNo, err))
			}

			chunk = append(chunk, v)
			if len(chunk) >= policy.ChunkSize() {
				if err := flush(); err != nil {
					return nil, failWith(builder, err)
				}
			}
		}

		if readErr != nil {
			break
		}
	}

	if len(chunk) > 0 {
		if err := flush(); err != nil {
			return nil, failWith(builder, err)
		}
	}

	return builder.Finish(), nil
}

// ProcessLinesFile opens path and processes it with ProcessLines.
func ProcessLinesFile(path string, policy *flatten.Policy) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	return ProcessLines(f, policy)
}

// ProcessFile opens path and processes it with Process.
func ProcessFile(path string, policy *flatten.Policy) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	return Process(f, policy)
}
