package table

import "github.com/arloliu/jsonflat/flatten"

// Builder reconciles a sequence of flat records into one Table.
//
// Appending a record extends the column set with any paths not yet seen,
// in order of first appearance across the whole ingestion sequence. Rows
// are buffered and materialized only by Finish (finalize-then-materialize):
// the column set is not stable and no row is exposed until the full
// sequence has been ingested, which is what makes the result deterministic
// even when records were produced by concurrent workers.
//
// A Builder is exclusively owned by a single driver goroutine; it is NOT
// safe for concurrent use. After Finish the builder is spent and any
// further call panics.
type Builder struct {
	columns  []string
	colIndex map[string]int
	records  []flatten.Record
	finished bool
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		colIndex: make(map[string]int, 64),
	}
}

// Append ingests one record, in input order.
func (b *Builder) Append(rec flatten.Record) {
	if b.finished {
		panic("table: Append called after Finish")
	}

	for i := range rec {
		path := rec[i].Path
		if _, ok := b.colIndex[path]; !ok {
			b.colIndex[path] = len(b.columns)
			b.columns = append(b.columns, path)
		}
	}
	b.records = append(b.records, rec)
}

// NumRows returns the number of records ingested so far.
func (b *Builder) NumRows() int {
	return len(b.records)
}

// Finish materializes the Table: every buffered record becomes one row
// aligned to the final column set, with MISSING cells for paths the record
// lacks. The builder releases its buffers and must not be used again.
func (b *Builder) Finish() *Table {
	if b.finished {
		panic("table: Finish called twice")
	}
	b.finished = true

	rows := make([][]Cell, len(b.records))
	for i, rec := range b.records {
		row := make([]Cell, len(b.columns))
		for j := range rec {
			row[b.colIndex[rec[j].Path]] = NewCell(rec[j].Value)
		}
		rows[i] = row
	}

	t := &Table{
		columns:  b.columns,
		colIndex: b.colIndex,
		rows:     rows,
	}
	b.records = nil

	return t
}
