package stream

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jsonflat/compress"
	"github.com/arloliu/jsonflat/errs"
	"github.com/arloliu/jsonflat/flatten"
	"github.com/arloliu/jsonflat/table"
	"github.com/arloliu/jsonflat/value"
)

func testPolicy(t *testing.T, opts ...flatten.Option) *flatten.Policy {
	t.Helper()
	p, err := flatten.NewPolicy(opts...)
	require.NoError(t, err)

	return p
}

func requireSameTable(t *testing.T, want, got *table.Table) {
	t.Helper()
	require.Equal(t, want.Columns(), got.Columns())
	require.Equal(t, want.NumRows(), got.NumRows())
	require.Equal(t, want.RowMaps(), got.RowMaps())
}

func TestProcess_ArrayStream(t *testing.T) {
	input := `[{"name":"ada","age":36},{"name":"lin","city":"Oslo"}]`
	tbl, err := Process(strings.NewReader(input), testPolicy(t))
	require.NoError(t, err)

	require.Equal(t, []string{"name", "age", "city"}, tbl.Columns())
	require.Equal(t, 2, tbl.NumRows())
	require.Equal(t, []map[string]string{
		{"name": "ada", "age": "36"},
		{"name": "lin", "city": "Oslo"},
	}, tbl.RowMaps())
}

func TestProcess_SingleDocumentRoot(t *testing.T) {
	tbl, err := Process(strings.NewReader(`{"a":{"b":1}}`), testPolicy(t))
	require.NoError(t, err)

	require.Equal(t, 1, tbl.NumRows())
	require.Equal(t, []string{"a.b"}, tbl.Columns())
}

func TestProcess_ScalarRoot(t *testing.T) {
	tbl, err := Process(strings.NewReader(`42`), testPolicy(t))
	require.NoError(t, err)

	require.Equal(t, 1, tbl.NumRows())
	require.Equal(t, []string{""}, tbl.Columns())

	c, ok := tbl.Cell(0, "")
	require.True(t, ok)
	require.Equal(t, "42", c.Text())
}

func TestProcess_EmptyArray(t *testing.T) {
	tbl, err := Process(strings.NewReader(`[]`), testPolicy(t))
	require.NoError(t, err)
	require.Equal(t, 0, tbl.NumRows())
	require.Equal(t, 0, tbl.NumColumns())
}

func TestProcess_ChunkingMatchesUnchunked(t *testing.T) {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < 25; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(`{"i":`)
		sb.WriteString(strings.Repeat("1", i%3+1))
		sb.WriteString(`,"grp":{"mod":`)
		sb.WriteByte(byte('0' + i%4))
		sb.WriteString(`}}`)
	}
	sb.WriteByte(']')
	input := sb.String()

	whole, err := Process(strings.NewReader(input), testPolicy(t))
	require.NoError(t, err)
	require.Equal(t, 25, whole.NumRows())

	chunked, err := Process(strings.NewReader(input), testPolicy(t, flatten.WithChunkSize(4)))
	require.NoError(t, err)

	requireSameTable(t, whole, chunked)
}

func TestProcess_PartialErrorKeepsCommittedRows(t *testing.T) {
	// Chunk size 1 commits each element as soon as it is decoded, so the
	// malformed third element aborts with two rows already in the table.
	input := `[{"x":1},{"x":2},{]`
	_, err := Process(strings.NewReader(input), testPolicy(t, flatten.WithChunkSize(1)))
	require.Error(t, err)

	var pe *PartialError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, 2, pe.Table.NumRows())
	require.Equal(t, []string{"x"}, pe.Table.Columns())

	var parseErr *value.ParseError
	require.ErrorAs(t, pe.Err, &parseErr)
}

func TestProcess_ErrorBeforeFirstCommit(t *testing.T) {
	// Default chunk size buffers all three elements, so nothing was
	// committed when decoding fails and no PartialError is produced.
	input := `[{"x":1},{"x":2},{]`
	_, err := Process(strings.NewReader(input), testPolicy(t))
	require.Error(t, err)

	var pe *PartialError
	require.False(t, errors.As(err, &pe))
}

func TestProcess_MalformedDocumentRoot(t *testing.T) {
	_, err := Process(strings.NewReader(`{"a":`), testPolicy(t))
	require.Error(t, err)

	var parseErr *value.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestProcess_CompressedInputs(t *testing.T) {
	input := `[{"x":1},{"y":2}]`
	want, err := Process(strings.NewReader(input), testPolicy(t))
	require.NoError(t, err)

	types := []compress.Type{
		compress.TypeGzip,
		compress.TypeZstd,
		compress.TypeLZ4,
		compress.TypeS2,
	}

	for _, ct := range types {
		t.Run(ct.String(), func(t *testing.T) {
			var buf strings.Builder
			w, err := compress.NewWriter(ct, &buf)
			require.NoError(t, err)
			_, err = w.Write([]byte(input))
			require.NoError(t, err)
			require.NoError(t, w.Close())

			got, err := Process(strings.NewReader(buf.String()), testPolicy(t))
			require.NoError(t, err)
			requireSameTable(t, want, got)
		})
	}
}

func TestProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"x":1},{"x":2}]`), 0o644))

	tbl, err := ProcessFile(path, testPolicy(t))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.NumRows())
}

func TestProcessFile_Missing(t *testing.T) {
	_, err := ProcessFile(filepath.Join(t.TempDir(), "absent.json"), testPolicy(t))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Contains(t, err.Error(), "open input file")
}

func TestProcess_EmptyInput(t *testing.T) {
	_, err := Process(strings.NewReader(""), testPolicy(t))
	require.Error(t, err)
}

func TestProcessLines(t *testing.T) {
	input := `{"name":"ada","age":36}
{"name":"lin","city":"Oslo"}

{"age":7}
`
	tbl, err := ProcessLines(strings.NewReader(input), testPolicy(t))
	require.NoError(t, err)

	require.Equal(t, []string{"name", "age", "city"}, tbl.Columns())
	require.Equal(t, []map[string]string{
		{"name": "ada", "age": "36"},
		{"name": "lin", "city": "Oslo"},
		{"age": "7"},
	}, tbl.RowMaps())
}

func TestProcessLines_MixedRoots(t *testing.T) {
	// Any document root is legal per line: arrays and bare scalars flatten
	// like any other single document.
	input := "[1,2]\n42\n{\"x\":3}"
	tbl, err := ProcessLines(strings.NewReader(input), testPolicy(t))
	require.NoError(t, err)

	require.Equal(t, []string{"0", "1", "", "x"}, tbl.Columns())
	require.Equal(t, []map[string]string{
		{"0": "1", "1": "2"},
		{"": "42"},
		{"x": "3"},
	}, tbl.RowMaps())
}

func TestProcessLines_CRLFAndNoFinalNewline(t *testing.T) {
	input := "{\"x\":1}\r\n{\"x\":2}"
	tbl, err := ProcessLines(strings.NewReader(input), testPolicy(t))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.NumRows())
}

func TestProcessLines_ChunkingMatchesUnchunked(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 25; i++ {
		sb.WriteString(`{"i":`)
		sb.WriteByte(byte('0' + i%10))
		sb.WriteString("}\n")
	}
	input := sb.String()

	whole, err := ProcessLines(strings.NewReader(input), testPolicy(t))
	require.NoError(t, err)
	require.Equal(t, 25, whole.NumRows())

	chunked, err := ProcessLines(strings.NewReader(input), testPolicy(t, flatten.WithChunkSize(4)))
	require.NoError(t, err)
	requireSameTable(t, whole, chunked)
}

func TestProcessLines_PartialErrorKeepsCommittedRows(t *testing.T) {
	input := "{\"x\":1}\n{\"x\":2}\n{oops}\n{\"x\":4}"
	_, err := ProcessLines(strings.NewReader(input), testPolicy(t, flatten.WithChunkSize(1)))
	require.Error(t, err)

	var pe *PartialError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, 2, pe.Table.NumRows())
	require.Contains(t, pe.Err.Error(), "line 3")

	var parseErr *value.ParseError
	require.ErrorAs(t, pe.Err, &parseErr)
}

func TestProcessLines_ErrorBeforeFirstCommit(t *testing.T) {
	_, err := ProcessLines(strings.NewReader("not json\n{\"x\":1}"), testPolicy(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 1")

	var pe *PartialError
	require.False(t, errors.As(err, &pe))
}

func TestProcessLines_TrailingDataOnLine(t *testing.T) {
	_, err := ProcessLines(strings.NewReader(`{"x":1} {"x":2}`), testPolicy(t))
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrTrailingData)
}

func TestProcessLines_Empty(t *testing.T) {
	for _, input := range []string{"", "\n\n", "  \n \r\n"} {
		tbl, err := ProcessLines(strings.NewReader(input), testPolicy(t))
		require.NoError(t, err)
		require.Equal(t, 0, tbl.NumRows())
	}
}

func TestProcessLines_Compressed(t *testing.T) {
	input := "{\"x\":1}\n{\"y\":2}\n"
	want, err := ProcessLines(strings.NewReader(input), testPolicy(t))
	require.NoError(t, err)

	var buf strings.Builder
	w, err := compress.NewWriter(compress.TypeGzip, &buf)
	require.NoError(t, err)
	_, err = w.Write([]byte(input))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := ProcessLines(strings.NewReader(buf.String()), testPolicy(t))
	require.NoError(t, err)
	requireSameTable(t, want, got)
}

func TestProcessLinesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"x\":1}\n{\"x\":2}\n"), 0o644))

	tbl, err := ProcessLinesFile(path, testPolicy(t))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.NumRows())
}

func TestProcessLinesFile_Missing(t *testing.T) {
	_, err := ProcessLinesFile(filepath.Join(t.TempDir(), "absent.jsonl"), testPolicy(t))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}
