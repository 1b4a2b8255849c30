// Package table implements the schema-reconciled tabular result of
// flattening many records: a unified, first-seen-ordered column set and
// row-aligned values with an explicit MISSING sentinel, plus the columnar
// and row-map output adapters.
package table

import "iter"

// Cell is one table slot: either a flattened value or the MISSING sentinel.
//
// The zero Cell is MISSING, which marks "path absent from this record" and
// is distinct from every JSON value including null (null flattens to the
// literal text "null").
type Cell struct {
	text    string
	present bool
}

// Missing is the MISSING sentinel cell.
var Missing = Cell{}

// NewCell creates a present cell holding text.
func NewCell(text string) Cell {
	return Cell{text: text, present: true}
}

// IsMissing reports whether the cell is the MISSING sentinel.
func (c Cell) IsMissing() bool {
	return !c.present
}

// Text returns the cell value, or "" for MISSING.
func (c Cell) Text() string {
	return c.text
}

// String implements fmt.Stringer, rendering MISSING distinguishably.
func (c Cell) String() string {
	if !c.present {
		return "<missing>"
	}

	return c.text
}

// Column is one column of the columnar adapter output: a name and its
// cells in row order.
type Column struct {
	Name  string
	Cells []Cell
}

// Table is the finalized result of reconciling a record sequence.
//
// Columns hold the union of all paths seen, in first-seen order; every row
// has exactly one cell per column. A Table is immutable and safe for
// concurrent reads.
type Table struct {
	columns  []string
	colIndex map[string]int
	rows     [][]Cell
}

// Columns returns the column names in first-seen order.
// The caller must not modify the returned slice.
func (t *Table) Columns() []string {
	return t.columns
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// Row returns row i. The caller must not modify the returned slice.
func (t *Table) Row(i int) []Cell {
	return t.rows[i]
}

// Cell returns the cell at row i and the named column. The second result
// is false when the column does not exist.
func (t *Table) Cell(i int, column string) (Cell, bool) {
	j, ok := t.colIndex[column]
	if !ok {
		return Missing, false
	}

	return t.rows[i][j], true
}

// All returns an iterator over (row index, row) pairs in row order.
func (t *Table) All() iter.Seq2[int, []Cell] {
	return func(yield func(int, []Cell) bool) {
		for i, row := range t.rows {
			if !yield(i, row) {
				return
			}
		}
	}
}

// Columnar transposes the table into parallel per-column cell slices, the
// shape columnar analytics libraries ingest directly. Column names and the
// Cell values are shared with the table; only the per-column slices are
// allocated.
func (t *Table) Columnar() []Column {
	cols := make([]Column, len(t.columns))
	for j, name := range t.columns {
		cells := make([]Cell, len(t.rows))
		for i := range t.rows {
			cells[i] = t.rows[i][j]
		}
		cols[j] = Column{Name: name, Cells: cells}
	}

	return cols
}

// RowMaps converts the table into one map per row for row-by-row
// consumers. MISSING cells are omitted, so key absence in the map mirrors
// path absence in the record.
func (t *Table) RowMaps() []map[string]string {
	out := make([]map[string]string, len(t.rows))
	for i, row := range t.rows {
		m := make(map[string]string, len(row))
		for j, c := range row {
			if !c.IsMissing() {
				m[t.columns[j]] = c.Text()
			}
		}
		out[i] = m
	}

	return out
}
