// Package compress provides transparent stream compression for JSON input
// and output files.
//
// Large JSON exports are routinely stored compressed; the streaming
// processor accepts them directly by sniffing the container format from the
// stream's magic bytes and wrapping the reader accordingly. Supported
// formats: gzip, Zstandard, LZ4 (frame), and S2/Snappy (framed). Plain JSON
// passes through untouched.
//
// The symmetric writer side exists for producing compressed fixtures and
// re-emitting processed data; it is not involved in flattening itself.
package compress

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/pierrec/lz4/v4"
)

// Type identifies a stream compression format.
type Type uint8

const (
	TypeNone Type = iota // TypeNone represents uncompressed input.
	TypeGzip             // TypeGzip represents a gzip stream.
	TypeZstd             // TypeZstd represents a Zstandard stream.
	TypeLZ4              // TypeLZ4 represents an LZ4 frame stream.
	TypeS2               // TypeS2 represents an S2 or Snappy framed stream.
)

// String returns a human-readable name for the compression type.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeGzip:
		return "gzip"
	case TypeZstd:
		return "zstd"
	case TypeLZ4:
		return "lz4"
	case TypeS2:
		return "s2"
	default:
		return "invalid"
	}
}

// Stream magic numbers.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}

	// S2 and Snappy share the framed stream identifier chunk header; the
	// body distinguishes the two, and the s2 reader consumes both.
	framedPrefix = []byte{0xff, 0x06, 0x00, 0x00}
)

// MagicLen is the number of leading bytes Detect needs to classify a
// stream.
const MagicLen = 4

// Detect classifies a stream from its leading bytes. Inputs shorter than
// MagicLen, and any unrecognized leader, classify as TypeNone.
func Detect(head []byte) Type {
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return TypeGzip
	case bytes.HasPrefix(head, zstdMagic):
		return TypeZstd
	case bytes.HasPrefix(head, lz4Magic):
		return TypeLZ4
	case bytes.HasPrefix(head, framedPrefix):
		return TypeS2
	default:
		return TypeNone
	}
}

// NewReader wraps r with the decompressor for the given type.
// TypeNone returns r unchanged behind a no-op closer.
func NewReader(t Type, r io.Reader) (io.ReadCloser, error) {
	switch t {
	case TypeNone:
		return io.NopCloser(r), nil
	case TypeGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}

		return zr, nil
	case TypeZstd:
		return newZstdReader(r)
	case TypeLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case TypeS2:
		return io.NopCloser(s2.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unknown compression type %d", t)
	}
}

// NewAutoReader sniffs the compression format of r from its magic bytes
// and returns a decompressing reader together with the detected type.
func NewAutoReader(r io.Reader) (io.ReadCloser, Type, error) {
	br := bufio.NewReaderSize(r, 32*1024)

	head, err := br.Peek(MagicLen)
	if err != nil && len(head) == 0 && !errors.Is(err, io.EOF) {
		return nil, TypeNone, err
	}

	t := Detect(head)
	rc, err := NewReader(t, br)
	if err != nil {
		return nil, t, err
	}

	return rc, t, nil
}

// NewWriter wraps w with the compressor for the given type. The returned
// writer must be closed to flush the compressed stream.
func NewWriter(t Type, w io.Writer) (io.WriteCloser, error) {
	switch t {
	case TypeNone:
		return nopWriteCloser{w}, nil
	case TypeGzip:
		return gzip.NewWriter(w), nil
	case TypeZstd:
		return newZstdWriter(w)
	case TypeLZ4:
		return lz4.NewWriter(w), nil
	case TypeS2:
		return s2.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown compression type %d", t)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
