package flatten

import (
	"runtime"

	"github.com/arloliu/jsonflat/errs"
	"github.com/arloliu/jsonflat/internal/options"
)

const (
	// DefaultSeparator joins path segments when no separator is configured.
	DefaultSeparator = "."

	// DefaultChunkSize is the number of top-level records processed per
	// chunk by the streaming and concurrent drivers.
	DefaultChunkSize = 10000
)

// Policy is the immutable configuration of one flattening invocation.
//
// A Policy is resolved once by NewPolicy and never mutated afterwards, so a
// single instance is safely shared by every worker of a concurrent run
// without synchronization.
type Policy struct {
	separator           string
	maxDepth            int
	chunkSize           int
	maxConcurrency      int
	includeArrayIndices bool
	expandArrays        bool
	failFast            bool
}

// Option configures a Policy under construction.
type Option = options.Option[*Policy]

// NewPolicy creates a Policy from the default configuration with the given
// options applied.
//
// Defaults: separator ".", unlimited depth, array indices embedded in
// paths, arrays expanded, chunk size 10000, concurrency bound
// runtime.GOMAXPROCS(0), fail-fast disabled.
func NewPolicy(opts ...Option) (*Policy, error) {
	p := &Policy{
		separator:           DefaultSeparator,
		chunkSize:           DefaultChunkSize,
		maxConcurrency:      runtime.GOMAXPROCS(0),
		includeArrayIndices: true,
		expandArrays:        true,
	}

	if err := options.Apply(p, opts...); err != nil {
		return nil, err
	}

	return p, nil
}

// DefaultPolicy returns the default Policy.
func DefaultPolicy() *Policy {
	p, _ := NewPolicy()
	return p
}

// WithSeparator sets the string joining path segments.
// Returns errs.ErrEmptySeparator for an empty separator.
func WithSeparator(sep string) Option {
	return options.New(func(p *Policy) error {
		if sep == "" {
			return errs.ErrEmptySeparator
		}
		p.separator = sep

		return nil
	})
}

// WithMaxDepth limits how deep flattening descends; container nodes beyond
// the limit are emitted as serialized JSON at their truncated path.
// Zero (the default) means unlimited.
func WithMaxDepth(depth int) Option {
	return options.New(func(p *Policy) error {
		if depth < 0 {
			return errs.ErrInvalidMaxDepth
		}
		p.maxDepth = depth

		return nil
	})
}

// WithArrayIndices controls whether array element indices become path
// segments. When disabled, elements share their parent path and repeated
// scalars overwrite one another (a documented lossy mode intended for
// arrays of scalars).
func WithArrayIndices(include bool) Option {
	return options.NoError(func(p *Policy) {
		p.includeArrayIndices = include
	})
}

// WithExpandArrays controls whether arrays are expanded into per-element
// entries. When disabled, each array is emitted as a single serialized JSON
// value at its own path.
func WithExpandArrays(expand bool) Option {
	return options.NoError(func(p *Policy) {
		p.expandArrays = expand
	})
}

// WithChunkSize sets how many top-level records the streaming and
// concurrent drivers hold in memory at once.
// Returns errs.ErrInvalidChunkSize for non-positive sizes.
func WithChunkSize(n int) Option {
	return options.New(func(p *Policy) error {
		if n <= 0 {
			return errs.ErrInvalidChunkSize
		}
		p.chunkSize = n

		return nil
	})
}

// WithMaxConcurrency bounds the worker pool width of concurrent drivers.
// Returns errs.ErrInvalidConcurrency for non-positive bounds.
func WithMaxConcurrency(n int) Option {
	return options.New(func(p *Policy) error {
		if n <= 0 {
			return errs.ErrInvalidConcurrency
		}
		p.maxConcurrency = n

		return nil
	})
}

// WithFailFast makes concurrent drivers abort the whole run on the first
// per-element failure instead of isolating it to that element's slot.
func WithFailFast(enabled bool) Option {
	return options.NoError(func(p *Policy) {
		p.failFast = enabled
	})
}

// Separator returns the configured path separator.
func (p *Policy) Separator() string { return p.separator }

// MaxDepth returns the configured depth limit; zero means unlimited.
func (p *Policy) MaxDepth() int { return p.maxDepth }

// IncludeArrayIndices reports whether array indices become path segments.
func (p *Policy) IncludeArrayIndices() bool { return p.includeArrayIndices }

// ExpandArrays reports whether arrays are expanded into per-element entries.
func (p *Policy) ExpandArrays() bool { return p.expandArrays }

// ChunkSize returns the configured chunk size.
func (p *Policy) ChunkSize() int { return p.chunkSize }

// MaxConcurrency returns the configured worker pool bound.
func (p *Policy) MaxConcurrency() int { return p.maxConcurrency }

// FailFast reports whether per-element failures abort the whole run.
func (p *Policy) FailFast() bool { return p.failFast }
