package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jsonflat/flatten"
)

func rec(pairs ...string) flatten.Record {
	r := make(flatten.Record, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		r = append(r, flatten.Field{Path: pairs[i], Value: pairs[i+1]})
	}

	return r
}

func TestBuilder_SchemaUnion(t *testing.T) {
	b := NewBuilder()
	b.Append(rec("x", "1"))
	b.Append(rec("y", "2"))
	tbl := b.Finish()

	require.Equal(t, []string{"x", "y"}, tbl.Columns())
	require.Equal(t, 2, tbl.NumRows())

	c, ok := tbl.Cell(0, "x")
	require.True(t, ok)
	require.Equal(t, "1", c.Text())

	c, ok = tbl.Cell(0, "y")
	require.True(t, ok)
	require.True(t, c.IsMissing())

	c, ok = tbl.Cell(1, "x")
	require.True(t, ok)
	require.True(t, c.IsMissing())

	c, ok = tbl.Cell(1, "y")
	require.True(t, ok)
	require.Equal(t, "2", c.Text())
}

func TestBuilder_FirstSeenColumnOrder(t *testing.T) {
	b := NewBuilder()
	b.Append(rec("b", "1", "a", "2"))
	b.Append(rec("a", "3", "c", "4"))
	b.Append(rec("c", "5", "b", "6", "d", "7"))
	tbl := b.Finish()

	require.Equal(t, []string{"b", "a", "c", "d"}, tbl.Columns())
	require.Equal(t, 3, tbl.NumRows())
}

func TestBuilder_EmptyRecordBecomesAllMissingRow(t *testing.T) {
	b := NewBuilder()
	b.Append(rec("x", "1"))
	b.Append(rec())
	tbl := b.Finish()

	require.Equal(t, 2, tbl.NumRows())
	for _, c := range tbl.Row(1) {
		require.True(t, c.IsMissing())
	}
}

func TestBuilder_NoRecords(t *testing.T) {
	tbl := NewBuilder().Finish()
	require.Equal(t, 0, tbl.NumRows())
	require.Equal(t, 0, tbl.NumColumns())
	require.Empty(t, tbl.Columnar())
	require.Empty(t, tbl.RowMaps())
}

func TestBuilder_PanicsAfterFinish(t *testing.T) {
	b := NewBuilder()
	b.Append(rec("x", "1"))
	b.Finish()

	require.Panics(t, func() { b.Append(rec("y", "2")) })
	require.Panics(t, func() { b.Finish() })
}

func TestCell_MissingDistinctFromNull(t *testing.T) {
	// JSON null flattens to the text "null"; MISSING is a different state.
	null := NewCell("null")
	require.False(t, null.IsMissing())
	require.Equal(t, "null", null.Text())

	require.True(t, Missing.IsMissing())
	require.Equal(t, "", Missing.Text())
	require.Equal(t, "<missing>", Missing.String())
	require.NotEqual(t, null, Missing)
}

func TestTable_CellUnknownColumn(t *testing.T) {
	b := NewBuilder()
	b.Append(rec("x", "1"))
	tbl := b.Finish()

	_, ok := tbl.Cell(0, "nope")
	require.False(t, ok)
}

func TestTable_All(t *testing.T) {
	b := NewBuilder()
	b.Append(rec("x", "1"))
	b.Append(rec("x", "2"))
	tbl := b.Finish()

	var seen []string
	for i, row := range tbl.All() {
		require.Equal(t, len(seen), i)
		seen = append(seen, row[0].Text())
	}
	require.Equal(t, []string{"1", "2"}, seen)
}

func TestTable_Columnar(t *testing.T) {
	b := NewBuilder()
	b.Append(rec("x", "1", "y", "a"))
	b.Append(rec("y", "b"))
	tbl := b.Finish()

	cols := tbl.Columnar()
	require.Len(t, cols, 2)

	require.Equal(t, "x", cols[0].Name)
	require.Equal(t, "1", cols[0].Cells[0].Text())
	require.True(t, cols[0].Cells[1].IsMissing())

	require.Equal(t, "y", cols[1].Name)
	require.Equal(t, "a", cols[1].Cells[0].Text())
	require.Equal(t, "b", cols[1].Cells[1].Text())
}

func TestTable_RowMapsOmitMissing(t *testing.T) {
	b := NewBuilder()
	b.Append(rec("x", "1"))
	b.Append(rec("y", "2"))
	tbl := b.Finish()

	maps := tbl.RowMaps()
	require.Equal(t, []map[string]string{
		{"x": "1"},
		{"y": "2"},
	}, maps)

	_, ok := maps[0]["y"]
	require.False(t, ok)
}
