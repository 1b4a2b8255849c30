package value

import (
	"bufio"
	"errors"
	"io"

	"github.com/arloliu/jsonflat/errs"
	"github.com/arloliu/jsonflat/internal/pool"
)

// RootKind describes the shape of a document root as seen by the Decoder.
type RootKind uint8

const (
	// RootValue indicates a single-document root: an object or bare scalar.
	RootValue RootKind = iota

	// RootArray indicates a top-level array whose elements are decoded
	// incrementally.
	RootArray
)

// Decoder state errors.
var (
	// ErrNotArray is returned by Next when the document root is not an
	// array.
	ErrNotArray = errors.New("document root is not an array")

	// ErrArrayRoot is returned by Document when the document root is an
	// array; array roots must be consumed element by element via Next.
	ErrArrayRoot = errors.New("document root is an array")
)

// Decoder reads a JSON document from a stream without materializing it
// whole.
//
// For array-rooted documents, Next decodes one top-level element at a time:
// the element's bytes are scanned into a pooled buffer, parsed, and the
// buffer is released before the next element is touched, so peak memory is
// bounded by the largest single element, not the file.
//
// The read buffer size is fixed; the decoder never seeks. ParseErrors carry
// byte offsets absolute within the input stream.
type Decoder struct {
	br         *bufio.Reader
	offset     int64 // bytes consumed from the underlying reader
	root       RootKind
	rooted     bool
	first      bool  // true until the first array element has been consumed
	done       bool  // array fully consumed and trailer checked
	trailerErr error // trailer failure held until the last element has been returned
}

const decoderBufferSize = 64 * 1024

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{br: bufio.NewReaderSize(r, decoderBufferSize)}
}

// InputOffset returns the number of bytes consumed from the underlying
// reader so far.
func (d *Decoder) InputOffset() int64 {
	return d.offset
}

// Root detects the document root kind by inspecting the first
// non-whitespace byte. For RootArray the opening bracket is consumed.
func (d *Decoder) Root() (RootKind, error) {
	if d.rooted {
		return d.root, nil
	}

	if err := d.skipSpace(); err != nil {
		return 0, err
	}

	b, err := d.peekByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, &ParseError{Offset: d.offset, Msg: "empty input", err: errs.ErrEmptyInput}
		}

		return 0, err
	}

	if b == '[' {
		d.mustReadByte()
		d.root = RootArray
		d.first = true
	} else {
		d.root = RootValue
	}
	d.rooted = true

	return d.root, nil
}

// Next decodes the next top-level array element. It returns io.EOF after
// the closing bracket (and trailing-whitespace check) has been consumed.
func (d *Decoder) Next() (*Value, error) {
	if !d.rooted {
		if _, err := d.Root(); err != nil {
			return nil, err
		}
	}
	if d.root != RootArray {
		return nil, ErrNotArray
	}
	if d.done {
		if d.trailerErr != nil {
			return nil, d.trailerErr
		}

		return nil, io.EOF
	}

	if err := d.skipSpace(); err != nil {
		return nil, err
	}

	b, err := d.peekByte()
	if err != nil {
		return nil, d.endOfInput(err)
	}

	if d.first && b == ']' {
		d.mustReadByte()
		if err := d.checkTrailer(); err != nil {
			return nil, err
		}
		d.done = true

		return nil, io.EOF
	}
	d.first = false

	elemStart := d.offset
	buf := pool.GetElementBuffer()
	defer pool.PutElementBuffer(buf)

	if err := d.scanValue(buf); err != nil {
		return nil, err
	}

	// The parser copies every string it produces, so the pooled buffer can
	// be released as soon as parsing completes.
	v, err := parseAt(buf.Bytes(), elemStart)
	if err != nil {
		return nil, err
	}

	if err := d.skipSpace(); err != nil {
		return nil, err
	}

	b, err = d.peekByte()
	if err != nil {
		return nil, d.endOfInput(err)
	}
	switch b {
	case ',':
		d.mustReadByte()
	case ']':
		// The trailer failure, if any, is reported by the next call so the
		// element decoded here is not lost.
		d.mustReadByte()
		d.done = true
		d.trailerErr = d.checkTrailer()
	default:
		d.mustReadByte()
		return nil, &ParseError{Offset: d.offset - 1, Msg: "expected ',' or ']' after array element"}
	}

	return v, nil
}

// Document decodes a non-array root as a single value, consuming the rest
// of the stream and rejecting trailing data.
func (d *Decoder) Document() (*Value, error) {
	if !d.rooted {
		if _, err := d.Root(); err != nil {
			return nil, err
		}
	}
	if d.root == RootArray {
		return nil, ErrArrayRoot
	}

	base := d.offset
	data, err := io.ReadAll(d.br)
	if err != nil {
		return nil, err
	}
	d.offset += int64(len(data))

	return parseAt(data, base)
}

// scanValue copies the bytes of exactly one JSON value into buf. Structure
// is tracked only far enough to find the value's extent; full validation
// happens when the scanned bytes are parsed.
func (d *Decoder) scanValue(buf *pool.ByteBuffer) error {
	b, err := d.peekByte()
	if err != nil {
		return d.endOfInput(err)
	}

	switch b {
	case '{', '[':
		return d.scanContainer(buf)
	case '"':
		return d.scanString(buf)
	default:
		return d.scanScalar(buf)
	}
}

func (d *Decoder) scanContainer(buf *pool.ByteBuffer) error {
	depth := 0
	inString := false
	escaped := false

	for {
		b, err := d.readByte()
		if err != nil {
			return d.endOfInput(err)
		}
		_ = buf.WriteByte(b)

		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}

			continue
		}

		switch b {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
}

func (d *Decoder) scanString(buf *pool.ByteBuffer) error {
	b, err := d.readByte() // opening quote
	if err != nil {
		return d.endOfInput(err)
	}
	_ = buf.WriteByte(b)

	escaped := false
	for {
		b, err := d.readByte()
		if err != nil {
			return d.endOfInput(err)
		}
		_ = buf.WriteByte(b)

		switch {
		case escaped:
			escaped = false
		case b == '\\':
			escaped = true
		case b == '"':
			return nil
		}
	}
}

// scanScalar copies bytes up to the next structural delimiter. EOF is a
// valid terminator here; the trailer check owns end-of-stream handling.
func (d *Decoder) scanScalar(buf *pool.ByteBuffer) error {
	for {
		b, err := d.peekByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		switch b {
		case ' ', '\t', '\n', '\r', ',', ']', '}':
			return nil
		default:
			d.mustReadByte()
			_ = buf.WriteByte(b)
		}
	}
}

// checkTrailer verifies that nothing but whitespace follows the closing
// bracket.
func (d *Decoder) checkTrailer() error {
	if err := d.skipSpace(); err != nil {
		return err
	}

	_, err := d.peekByte()
	if err == nil {
		return &ParseError{Offset: d.offset, Msg: "trailing data after top-level value", err: errs.ErrTrailingData}
	}
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

func (d *Decoder) skipSpace() error {
	for {
		b, err := d.peekByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		switch b {
		case ' ', '\t', '\n', '\r':
			d.mustReadByte()
		default:
			return nil
		}
	}
}

func (d *Decoder) peekByte() (byte, error) {
	p, err := d.br.Peek(1)
	if err != nil {
		return 0, err
	}

	return p[0], nil
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.br.ReadByte()
	if err != nil {
		return 0, err
	}
	d.offset++

	return b, nil
}

// mustReadByte consumes one byte that a preceding Peek has already proven
// present.
func (d *Decoder) mustReadByte() {
	_, _ = d.br.ReadByte()
	d.offset++
}

// endOfInput converts an io error during element scanning into a
// ParseError at the current offset; non-EOF errors pass through untouched.
func (d *Decoder) endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return &ParseError{Offset: d.offset, Msg: "unexpected end of input"}
	}

	return err
}
