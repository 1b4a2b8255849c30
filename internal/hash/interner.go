// Package hash provides an xxHash64-backed string interner for flat path
// strings.
//
// Flattening a large homogeneous array produces the same path strings over
// and over ("items.0.price", "items.1.price", ...); interning lets every
// record share one allocation per distinct path instead of re-allocating it
// per record.
package hash

import (
	"github.com/cespare/xxhash/v2"
)

// Interner deduplicates byte slices into shared strings.
//
// It is a cache, not an identity map: entries are keyed by xxHash64 and
// verified by full comparison, so a hash collision costs one missed
// deduplication, never a wrong string. Not safe for concurrent use; each
// worker owns its own Interner.
type Interner struct {
	entries map[uint64]string
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{
		entries: make(map[uint64]string, 64),
	}
}

// Intern returns a string with the contents of b, reusing a previously
// interned string when one exists.
func (it *Interner) Intern(b []byte) string {
	sum := xxhash.Sum64(b)
	if s, ok := it.entries[sum]; ok && s == string(b) {
		return s
	}

	s := string(b)
	it.entries[sum] = s

	return s
}

// Len returns the number of cached entries.
func (it *Interner) Len() int {
	return len(it.entries)
}
