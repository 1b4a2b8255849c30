package value

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/arloliu/jsonflat/errs"
)

// ParseError reports malformed JSON input.
//
// Offset is the byte position of the failure relative to the start of the
// input stream; for the incremental Decoder it is absolute within the file.
type ParseError struct {
	err    error
	Msg    string
	Offset int64
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("json parse error at offset %d: %s", e.Offset, e.Msg)
}

// Unwrap returns the wrapped sentinel, if any.
func (e *ParseError) Unwrap() error {
	return e.err
}

// Parse decodes a complete JSON document.
//
// Object member order is preserved. Duplicate object keys follow
// last-write-wins semantics: the member keeps its first position but holds
// the last value. Numbers keep their lexical form. Non-whitespace bytes
// after the top-level value fail with a ParseError wrapping
// errs.ErrTrailingData.
func Parse(data []byte) (*Value, error) {
	return parseAt(data, 0)
}

// parseAt parses data whose first byte sits at absolute offset base in the
// enclosing stream. Used by the Decoder so that mid-file errors carry
// absolute offsets.
func parseAt(data []byte, base int64) (*Value, error) {
	p := &parser{data: data, base: base}
	p.skipSpace()
	if p.pos >= len(p.data) {
		return nil, p.wrapped("empty input", errs.ErrEmptyInput)
	}

	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.pos < len(p.data) {
		return nil, p.wrapped("trailing data after top-level value", errs.ErrTrailingData)
	}

	return &v, nil
}

// dupMapThreshold is the object size at which duplicate-key detection
// switches from linear scan to a key index map.
const dupMapThreshold = 32

type parser struct {
	data []byte
	pos  int
	base int64
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Offset: p.base + int64(p.pos), Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) wrapped(msg string, sentinel error) error {
	return &ParseError{Offset: p.base + int64(p.pos), Msg: msg, err: sentinel}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseValue() (Value, error) {
	if p.pos >= len(p.data) {
		return Value{}, p.errorf("unexpected end of input")
	}

	switch c := p.data[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return Value{}, err
		}

		return String(s), nil
	case c == 't':
		return p.parseLiteral("true", Bool(true))
	case c == 'f':
		return p.parseLiteral("false", Bool(false))
	case c == 'n':
		return p.parseLiteral("null", Null())
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return Value{}, p.errorf("unexpected character %q", c)
	}
}

func (p *parser) parseLiteral(lit string, v Value) (Value, error) {
	if len(p.data)-p.pos < len(lit) || string(p.data[p.pos:p.pos+len(lit)]) != lit {
		return Value{}, p.errorf("invalid literal")
	}
	p.pos += len(lit)

	return v, nil
}

func (p *parser) parseObject() (Value, error) {
	p.pos++ // consume '{'
	var members []Member
	var keyIndex map[string]int

	p.skipSpace()
	if p.pos < len(p.data) && p.data[p.pos] == '}' {
		p.pos++
		return Object(), nil
	}

	for {
		p.skipSpace()
		if p.pos >= len(p.data) || p.data[p.pos] != '"' {
			return Value{}, p.errorf("expected object key")
		}

		key, err := p.parseString()
		if err != nil {
			return Value{}, err
		}

		p.skipSpace()
		if p.pos >= len(p.data) || p.data[p.pos] != ':' {
			return Value{}, p.errorf("expected ':' after object key")
		}
		p.pos++

		p.skipSpace()
		val, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}

		// Last-write-wins on duplicate keys: keep the first position,
		// replace the value. Small objects use a linear scan; large ones
		// switch to an index map.
		replaced := false
		if keyIndex != nil {
			if i, ok := keyIndex[key]; ok {
				members[i].Value = val
				replaced = true
			}
		} else {
			for i := range members {
				if members[i].Key == key {
					members[i].Value = val
					replaced = true
					break
				}
			}
		}
		if !replaced {
			members = append(members, Member{Key: key, Value: val})
			if keyIndex != nil {
				keyIndex[key] = len(members) - 1
			} else if len(members) == dupMapThreshold {
				keyIndex = make(map[string]int, 2*dupMapThreshold)
				for i := range members {
					keyIndex[members[i].Key] = i
				}
			}
		}

		p.skipSpace()
		if p.pos >= len(p.data) {
			return Value{}, p.errorf("unexpected end of input in object")
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return Object(members...), nil
		default:
			return Value{}, p.errorf("expected ',' or '}' in object, got %q", p.data[p.pos])
		}
	}
}

func (p *parser) parseArray() (Value, error) {
	p.pos++ // consume '['
	var elems []Value

	p.skipSpace()
	if p.pos < len(p.data) && p.data[p.pos] == ']' {
		p.pos++
		return Array(), nil
	}

	for {
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)

		p.skipSpace()
		if p.pos >= len(p.data) {
			return Value{}, p.errorf("unexpected end of input in array")
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return Array(elems...), nil
		default:
			return Value{}, p.errorf("expected ',' or ']' in array, got %q", p.data[p.pos])
		}
	}
}

// parseString decodes a JSON string literal. The fast path covers strings
// without escapes and returns a slice-backed copy; escaped strings are
// rewritten into fresh memory, including \uXXXX sequences and UTF-16
// surrogate pairs.
func (p *parser) parseString() (string, error) {
	p.pos++ // consume opening quote
	start := p.pos

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == '"':
			s := string(p.data[start:p.pos])
			p.pos++

			return s, nil
		case c == '\\':
			return p.parseStringEscaped(start)
		case c < 0x20:
			return "", p.errorf("unescaped control character in string")
		default:
			p.pos++
		}
	}

	p.pos = start - 1

	return "", p.errorf("unterminated string")
}

func (p *parser) parseStringEscaped(start int) (string, error) {
	buf := make([]byte, 0, len(p.data)-start+8)
	buf = append(buf, p.data[start:p.pos]...)

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == '"':
			p.pos++
			return string(buf), nil
		case c == '\\':
			p.pos++
			if p.pos >= len(p.data) {
				return "", p.errorf("unterminated escape sequence")
			}
			esc := p.data[p.pos]
			p.pos++
			switch esc {
			case '"', '\\', '/':
				buf = append(buf, esc)
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'u':
				r, err := p.parseHexRune()
				if err != nil {
					return "", err
				}
				if utf16.IsSurrogate(r) {
					r2, ok := p.peekLowSurrogate()
					if ok {
						r = utf16.DecodeRune(r, r2)
					} else {
						r = utf8.RuneError
					}
				}
				buf = utf8.AppendRune(buf, r)
			default:
				return "", p.errorf("invalid escape character %q", esc)
			}
		case c < 0x20:
			return "", p.errorf("unescaped control character in string")
		default:
			buf = append(buf, c)
			p.pos++
		}
	}

	return "", p.errorf("unterminated string")
}

// parseHexRune decodes the four hex digits of a \u escape. The leading \u
// has already been consumed.
func (p *parser) parseHexRune() (rune, error) {
	if len(p.data)-p.pos < 4 {
		return 0, p.errorf("truncated \\u escape")
	}

	var r rune
	for i := 0; i < 4; i++ {
		c := p.data[p.pos+i]
		switch {
		case c >= '0' && c <= '9':
			r = r<<4 | rune(c-'0')
		case c >= 'a' && c <= 'f':
			r = r<<4 | rune(c-'a'+10)
		case c >= 'A' && c <= 'F':
			r = r<<4 | rune(c-'A'+10)
		default:
			return 0, p.errorf("invalid hex digit %q in \\u escape", c)
		}
	}
	p.pos += 4

	return r, nil
}

// peekLowSurrogate consumes a following \uXXXX escape if it forms the low
// half of a surrogate pair.
func (p *parser) peekLowSurrogate() (rune, bool) {
	if len(p.data)-p.pos < 6 || p.data[p.pos] != '\\' || p.data[p.pos+1] != 'u' {
		return 0, false
	}

	save := p.pos
	p.pos += 2
	r, err := p.parseHexRune()
	if err != nil || !utf16.IsSurrogate(r) {
		p.pos = save
		return 0, false
	}

	return r, true
}

// parseNumber validates the JSON number grammar and captures the lexical
// form verbatim, so values like 0.1 or 18446744073709551615 survive
// untouched.
func (p *parser) parseNumber() (Value, error) {
	start := p.pos

	if p.data[p.pos] == '-' {
		p.pos++
	}

	// integer part
	switch {
	case p.pos >= len(p.data):
		return Value{}, p.errorf("truncated number")
	case p.data[p.pos] == '0':
		p.pos++
	case p.data[p.pos] >= '1' && p.data[p.pos] <= '9':
		for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			p.pos++
		}
	default:
		return Value{}, p.errorf("invalid number")
	}

	// fraction
	if p.pos < len(p.data) && p.data[p.pos] == '.' {
		p.pos++
		if p.pos >= len(p.data) || !isDigit(p.data[p.pos]) {
			return Value{}, p.errorf("invalid number: missing fraction digits")
		}
		for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			p.pos++
		}
	}

	// exponent
	if p.pos < len(p.data) && (p.data[p.pos] == 'e' || p.data[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.data) && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
			p.pos++
		}
		if p.pos >= len(p.data) || !isDigit(p.data[p.pos]) {
			return Value{}, p.errorf("invalid number: missing exponent digits")
		}
		for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			p.pos++
		}
	}

	return Number(string(p.data[start:p.pos])), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
