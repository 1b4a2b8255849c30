// Package flatten implements the core path-walking engine that turns one
// parsed JSON value into a flat record of separator-joined paths and scalar
// values, under an immutable Policy.
package flatten

import (
	"strconv"

	"github.com/arloliu/jsonflat/internal/hash"
	"github.com/arloliu/jsonflat/internal/pool"
	"github.com/arloliu/jsonflat/value"
)

// NullText is the rendering of JSON null leaves. It is a legal JSON value,
// distinct from the table MISSING sentinel which marks absent paths.
const NullText = "null"

// Field is one path/value pair of a flat record.
type Field struct {
	Path  string
	Value string
}

// Record is the ordered flattening of exactly one root value. Paths are
// unique within a record; on a last-write-wins collision the field keeps
// its first position and the latest value.
type Record []Field

// Get returns the value at the given path.
func (r Record) Get(path string) (string, bool) {
	for i := range r {
		if r[i].Path == path {
			return r[i].Value, true
		}
	}

	return "", false
}

// ToMap copies the record into a path-keyed map, losing field order.
func (r Record) ToMap() map[string]string {
	m := make(map[string]string, len(r))
	for i := range r {
		m[r[i].Path] = r[i].Value
	}

	return m
}

// frame is one pending node of the iterative depth-first traversal.
type frame struct {
	v     *value.Value
	path  string
	depth int
}

// Flattener runs the flattening algorithm. It owns reusable traversal state
// (work stack, path scratch, path interner), so one instance amortizes
// allocations across many records.
//
// A Flattener is NOT safe for concurrent use. Concurrent drivers give each
// worker its own instance; the shared Policy is read-only.
type Flattener struct {
	policy  *Policy
	intern  *hash.Interner
	stack   []frame
	index   map[string]int
	scratch []byte
}

// NewFlattener creates a Flattener bound to the given policy. A nil policy
// selects the defaults.
func NewFlattener(policy *Policy) *Flattener {
	if policy == nil {
		policy = DefaultPolicy()
	}

	return &Flattener{
		policy:  policy,
		intern:  hash.NewInterner(),
		stack:   make([]frame, 0, 64),
		index:   make(map[string]int, 32),
		scratch: make([]byte, 0, 128),
	}
}

// FlattenValue flattens a single value with a one-off Flattener.
// Callers flattening many records should reuse a Flattener instead.
func FlattenValue(v *value.Value, policy *Policy) Record {
	return NewFlattener(policy).Flatten(v)
}

// Flatten produces the flat record of one root value.
//
// The traversal is depth-first in document order, driven by an explicit
// work stack so that adversarially deep documents cannot exhaust the
// goroutine call stack. The operation is total: any parsed value yields a
// record, never an error.
//
// A bare scalar root produces a single field with the empty path. Empty
// objects and empty expanded arrays produce no fields.
func (f *Flattener) Flatten(root *value.Value) Record {
	rec := make(Record, 0, 16)
	clear(f.index)
	f.stack = append(f.stack[:0], frame{v: root})

	put := func(path, val string) {
		if i, ok := f.index[path]; ok {
			rec[i].Value = val
			return
		}
		f.index[path] = len(rec)
		rec = append(rec, Field{Path: path, Value: val})
	}

	maxDepth := f.policy.maxDepth
	for len(f.stack) > 0 {
		fr := f.stack[len(f.stack)-1]
		f.stack = f.stack[:len(f.stack)-1]
		v := fr.v

		// A container past the depth limit is truncated: emitted at its
		// own path as round-trippable JSON instead of being descended.
		if maxDepth > 0 && fr.depth > maxDepth && !v.IsScalar() {
			put(fr.path, serialize(v))
			continue
		}

		switch v.Kind() {
		case value.KindNull:
			put(fr.path, NullText)
		case value.KindBool:
			if v.BoolVal() {
				put(fr.path, "true")
			} else {
				put(fr.path, "false")
			}
		case value.KindNumber, value.KindString:
			put(fr.path, v.Text())
		case value.KindObject:
			members := v.Members()
			for i := len(members) - 1; i >= 0; i-- {
				f.stack = append(f.stack, frame{
					v:     &members[i].Value,
					path:  f.join(fr.path, members[i].Key),
					depth: fr.depth + 1,
				})
			}
		case value.KindArray:
			if !f.policy.expandArrays {
				put(fr.path, serialize(v))
				continue
			}
			elems := v.Elems()
			for i := len(elems) - 1; i >= 0; i-- {
				childPath := fr.path
				if f.policy.includeArrayIndices {
					childPath = f.joinIndex(fr.path, i)
				}
				f.stack = append(f.stack, frame{
					v:     &elems[i],
					path:  childPath,
					depth: fr.depth + 1,
				})
			}
		}
	}

	return rec
}

// join produces the interned path prefix+separator+key. An empty prefix
// joins to the bare key, with no leading separator.
func (f *Flattener) join(prefix, key string) string {
	f.scratch = f.scratch[:0]
	if prefix != "" {
		f.scratch = append(f.scratch, prefix...)
		f.scratch = append(f.scratch, f.policy.separator...)
	}
	f.scratch = append(f.scratch, key...)

	return f.intern.Intern(f.scratch)
}

// joinIndex produces the interned path prefix+separator+index.
func (f *Flattener) joinIndex(prefix string, i int) string {
	f.scratch = f.scratch[:0]
	if prefix != "" {
		f.scratch = append(f.scratch, prefix...)
		f.scratch = append(f.scratch, f.policy.separator...)
	}
	f.scratch = strconv.AppendInt(f.scratch, int64(i), 10)

	return f.intern.Intern(f.scratch)
}

// serialize renders a subtree as compact JSON using a pooled buffer.
func serialize(v *value.Value) string {
	bb := pool.GetScratchBuffer()
	bb.B = v.AppendJSON(bb.B)
	s := string(bb.B)
	pool.PutScratchBuffer(bb)

	return s
}
