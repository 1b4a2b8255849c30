// Package value implements the in-memory JSON value model used by the
// flattening engine, together with a byte-level parser and an incremental
// decoder for array-rooted streams.
//
// A Value is a closed tagged variant with one case per JSON kind. Object
// members preserve insertion order and numbers keep their original lexical
// form, so a parsed document round-trips to text without precision loss.
// Values are immutable once parsed; the flattening engine only ever reads
// them.
package value

import (
	"iter"
	"strconv"
)

// Kind identifies the JSON kind stored in a Value.
type Kind uint8

const (
	KindNull Kind = iota // KindNull represents JSON null.
	KindBool             // KindBool represents true or false.
	KindNumber           // KindNumber represents a number in lexical form.
	KindString           // KindString represents a string.
	KindArray            // KindArray represents an ordered array.
	KindObject           // KindObject represents an insertion-ordered object.
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is an immutable JSON value.
//
// The zero Value is JSON null.
type Value struct {
	text    string // string content, or the lexical form of a number
	elems   []Value
	members []Member
	boolean bool
	kind    Kind
}

// Member is one key/value entry of a JSON object.
type Member struct {
	Key   string
	Value Value
}

// Null returns the JSON null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a JSON boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

// Number returns a JSON number value from its lexical form.
// The text is stored as-is; no validation or conversion is performed.
func Number(lexical string) Value {
	return Value{kind: KindNumber, text: lexical}
}

// String returns a JSON string value.
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Array returns a JSON array value. The slice is retained, not copied.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, elems: elems}
}

// Object returns a JSON object value. The slice is retained, not copied;
// callers are responsible for key uniqueness.
func Object(members ...Member) Value {
	return Value{kind: KindObject, members: members}
}

// Kind returns the JSON kind of the value.
func (v *Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is JSON null.
func (v *Value) IsNull() bool {
	return v.kind == KindNull
}

// BoolVal returns the boolean content. Valid only for KindBool.
func (v *Value) BoolVal() bool {
	return v.boolean
}

// Text returns the string content for KindString, or the lexical form for
// KindNumber. Empty for other kinds.
func (v *Value) Text() string {
	return v.text
}

// Float64 converts a KindNumber value to float64.
func (v *Value) Float64() (float64, error) {
	return strconv.ParseFloat(v.text, 64)
}

// Len returns the number of elements (KindArray) or members (KindObject).
// Zero for scalar kinds.
func (v *Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.elems)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Elems returns the backing element slice of a KindArray value.
// The caller must not modify the returned slice.
func (v *Value) Elems() []Value {
	return v.elems
}

// Members returns the backing member slice of a KindObject value in
// insertion order. The caller must not modify the returned slice.
func (v *Value) Members() []Member {
	return v.members
}

// Items returns an iterator over the elements of a KindArray value.
func (v *Value) Items() iter.Seq2[int, *Value] {
	return func(yield func(int, *Value) bool) {
		for i := range v.elems {
			if !yield(i, &v.elems[i]) {
				return
			}
		}
	}
}

// Fields returns an iterator over the members of a KindObject value in
// insertion order.
func (v *Value) Fields() iter.Seq2[string, *Value] {
	return func(yield func(string, *Value) bool) {
		for i := range v.members {
			if !yield(v.members[i].Key, &v.members[i].Value) {
				return
			}
		}
	}
}

// IsScalar reports whether the value is a leaf kind (null, bool, number or
// string).
func (v *Value) IsScalar() bool {
	return v.kind <= KindString
}

// AppendJSON appends the compact JSON encoding of the value to dst and
// returns the extended slice. The output round-trips through Parse.
func (v *Value) AppendJSON(dst []byte) []byte {
	switch v.kind {
	case KindNull:
		return append(dst, "null"...)
	case KindBool:
		if v.boolean {
			return append(dst, "true"...)
		}

		return append(dst, "false"...)
	case KindNumber:
		return append(dst, v.text...)
	case KindString:
		return appendQuoted(dst, v.text)
	case KindArray:
		dst = append(dst, '[')
		for i := range v.elems {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = v.elems[i].AppendJSON(dst)
		}

		return append(dst, ']')
	case KindObject:
		dst = append(dst, '{')
		for i := range v.members {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendQuoted(dst, v.members[i].Key)
			dst = append(dst, ':')
			dst = v.members[i].Value.AppendJSON(dst)
		}

		return append(dst, '}')
	default:
		return dst
	}
}

// JSONString returns the compact JSON encoding of the value.
func (v *Value) JSONString() string {
	return string(v.AppendJSON(nil))
}

const hexDigits = "0123456789abcdef"

// appendQuoted appends s as a JSON string literal, escaping the quote,
// backslash and control characters. Valid UTF-8 passes through unescaped.
func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		}
		start = i + 1
	}

	dst = append(dst, s[start:]...)

	return append(dst, '"')
}
