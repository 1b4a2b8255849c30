// Package pool provides pooled byte buffers for the hot paths of the
// flattening engine: the streaming decoder's per-element scratch and the
// subtree serializer used by depth truncation.
package pool

import (
	"io"
	"sync"
)

const (
	// ElementBufferDefaultSize is the initial capacity of buffers from the
	// element pool. Sized for a typical top-level array element.
	ElementBufferDefaultSize = 1024 * 16 // 16KiB

	// ElementBufferMaxThreshold is the largest buffer the element pool will
	// retain. Buffers grown past this (oversized elements) are discarded
	// rather than pinned in the pool.
	ElementBufferMaxThreshold = 1024 * 1024 // 1MiB

	// ScratchBufferDefaultSize is the initial capacity of buffers from the
	// scratch pool used for serialized subtrees and path assembly.
	ScratchBufferDefaultSize = 1024 // 1KiB

	// ScratchBufferMaxThreshold is the largest buffer the scratch pool
	// will retain.
	ScratchBufferMaxThreshold = 1024 * 64 // 64KiB
)

// ByteBuffer is a growable byte slice with an exported backing array.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified initial capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer while retaining its allocation.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// WriteByte appends a single byte, growing the buffer as needed.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// Write appends the contents of data, growing the buffer as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteString appends the contents of s, growing the buffer as needed.
func (bb *ByteBuffer) WriteString(s string) (int, error) {
	bb.B = append(bb.B, s...)
	return len(s), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// Grow ensures the buffer can hold requiredBytes more bytes without
// reallocating. Small buffers grow by the pool default size, larger buffers
// by 25% of their capacity, so long runs of large elements settle quickly.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := ElementBufferDefaultSize
	if cap(bb.B) > 4*ElementBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// ByteBufferPool is a pool of ByteBuffers backed by sync.Pool.
//
// A maximum retention threshold prevents one pathological element from
// pinning a huge buffer in the pool for the rest of the process lifetime.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool producing buffers of the given initial
// capacity and retaining returned buffers up to maxThreshold bytes.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	elementPool = NewByteBufferPool(ElementBufferDefaultSize, ElementBufferMaxThreshold)
	scratchPool = NewByteBufferPool(ScratchBufferDefaultSize, ScratchBufferMaxThreshold)
)

// GetElementBuffer retrieves a ByteBuffer from the element pool.
func GetElementBuffer() *ByteBuffer {
	return elementPool.Get()
}

// PutElementBuffer returns a ByteBuffer to the element pool.
func PutElementBuffer(bb *ByteBuffer) {
	elementPool.Put(bb)
}

// GetScratchBuffer retrieves a ByteBuffer from the scratch pool.
func GetScratchBuffer() *ByteBuffer {
	return scratchPool.Get()
}

// PutScratchBuffer returns a ByteBuffer to the scratch pool.
func PutScratchBuffer(bb *ByteBuffer) {
	scratchPool.Put(bb)
}
