//go:build cgo

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

// newZstdReader decompresses a Zstandard stream with the cgo libzstd
// binding, which outperforms the pure-Go decoder on large inputs.
func newZstdReader(r io.Reader) (io.ReadCloser, error) {
	return &gozstdReadCloser{zr: gozstd.NewReader(r)}, nil
}

// gozstdReadCloser adapts gozstd's Release lifecycle to io.ReadCloser.
type gozstdReadCloser struct {
	zr *gozstd.Reader
}

func (g *gozstdReadCloser) Read(p []byte) (int, error) {
	return g.zr.Read(p)
}

func (g *gozstdReadCloser) Close() error {
	g.zr.Release()
	return nil
}

// newZstdWriter compresses to a Zstandard stream with the cgo libzstd
// binding.
func newZstdWriter(w io.Writer) (io.WriteCloser, error) {
	return &gozstdWriteCloser{zw: gozstd.NewWriter(w)}, nil
}

// gozstdWriteCloser releases the writer's native resources on Close.
type gozstdWriteCloser struct {
	zw *gozstd.Writer
}

func (g *gozstdWriteCloser) Write(p []byte) (int, error) {
	return g.zw.Write(p)
}

func (g *gozstdWriteCloser) Close() error {
	err := g.zw.Close()
	g.zw.Release()

	return err
}
