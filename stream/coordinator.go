package stream

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/jsonflat/flatten"
	"github.com/arloliu/jsonflat/table"
	"github.com/arloliu/jsonflat/value"
)

// Coordinator distributes independent top-level elements across a bounded
// worker pool and merges the results back in input order.
//
// Workers never touch shared mutable state: each owns a private Flattener
// and writes into its own pre-assigned result slots, so the final column
// and row order depend only on the input order, never on completion order.
type Coordinator struct {
	policy *flatten.Policy
}

// NewCoordinator creates a Coordinator bound to the given policy. A nil
// policy selects the defaults.
func NewCoordinator(policy *flatten.Policy) *Coordinator {
	if policy == nil {
		policy = flatten.DefaultPolicy()
	}

	return &Coordinator{policy: policy}
}

// ProcessValues flattens a sequence of already-parsed values into a Table.
//
// Elements are processed in chunks of the policy chunk size; within each
// chunk the elements are flattened in parallel. Flattening is total, so the
// only failure mode is context cancellation; a cancellation after at least
// one committed chunk returns a PartialError carrying the committed rows.
func (c *Coordinator) ProcessValues(ctx context.Context, elements []*value.Value) (*table.Table, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	builder := table.NewBuilder()
	size := c.policy.ChunkSize()

	for start := 0; start < len(elements); start += size {
		end := min(start+size, len(elements))
		recs, err := flattenChunk(ctx, c.policy, elements[start:end])
		if err != nil {
			if builder.NumRows() > 0 {
				return nil, &PartialError{Table: builder.Finish(), Err: err}
			}

			return nil, err
		}
		for _, rec := range recs {
			builder.Append(rec)
		}
	}

	return builder.Finish(), nil
}

// ProcessDocuments parses and flattens a sequence of raw JSON documents
// into a Table.
//
// A malformed document fails only its own slot: its row is emitted with
// every cell MISSING and the failure is reported in the returned slice,
// index-aligned with the input, so row i always corresponds to document i.
// With the fail-fast policy the first failure cancels the whole run and is
// returned as a *ElementError.
func (c *Coordinator) ProcessDocuments(ctx context.Context, docs [][]byte) (*table.Table, []ElementError, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	recs := make([]flatten.Record, len(docs))
	errSlots := make([]error, len(docs))
	size := c.policy.ChunkSize()

	for start := 0; start < len(docs); start += size {
		end := min(start+size, len(docs))
		if err := c.parseFlattenChunk(ctx, docs, recs, errSlots, start, end); err != nil {
			return nil, nil, err
		}
	}

	builder := table.NewBuilder()
	var elemErrs []ElementError
	for i, rec := range recs {
		builder.Append(rec)
		if errSlots[i] != nil {
			elemErrs = append(elemErrs, ElementError{Index: i, Err: errSlots[i]})
		}
	}

	return builder.Finish(), elemErrs, nil
}

// parseFlattenChunk processes docs[start:end] across the worker pool,
// filling the matching slots of recs and errSlots.
func (c *Coordinator) parseFlattenChunk(ctx context.Context, docs [][]byte, recs []flatten.Record, errSlots []error, start, end int) error {
	failFast := c.policy.FailFast()

	g, gctx := errgroup.WithContext(ctx)
	for lo, hi := range shards(end-start, c.policy.MaxConcurrency()) {
		lo, hi := start+lo, start+hi
		g.Go(func() error {
			fl := flatten.NewFlattener(c.policy)
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				v, err := value.Parse(docs[i])
				if err != nil {
					if failFast {
						return &ElementError{Index: i, Err: err}
					}
					errSlots[i] = err

					continue
				}
				recs[i] = fl.Flatten(v)
			}

			return nil
		})
	}

	return g.Wait()
}

// flattenChunk flattens elements in parallel, keeping each result in its
// input slot.
func flattenChunk(ctx context.Context, policy *flatten.Policy, elements []*value.Value) ([]flatten.Record, error) {
	recs := make([]flatten.Record, len(elements))

	g, gctx := errgroup.WithContext(ctx)
	for lo, hi := range shards(len(elements), policy.MaxConcurrency()) {
		g.Go(func() error {
			fl := flatten.NewFlattener(policy)
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				recs[i] = fl.Flatten(elements[i])
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return recs, nil
}

// shards yields up to workers contiguous [lo, hi) ranges covering n items.
// Contiguous ranges keep results slot-aligned with the input, which is what
// lets the coordinator skip any re-sequencing step.
func shards(n, workers int) func(yield func(int, int) bool) {
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	per := (n + workers - 1) / workers

	return func(yield func(int, int) bool) {
		for lo := 0; lo < n; lo += per {
			if !yield(lo, min(lo+per, n)) {
				return
			}
		}
	}
}
