package flatten

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jsonflat/errs"
)

func TestNewPolicy_Defaults(t *testing.T) {
	p, err := NewPolicy()
	require.NoError(t, err)

	require.Equal(t, ".", p.Separator())
	require.Equal(t, 0, p.MaxDepth())
	require.True(t, p.IncludeArrayIndices())
	require.True(t, p.ExpandArrays())
	require.Equal(t, DefaultChunkSize, p.ChunkSize())
	require.Equal(t, runtime.GOMAXPROCS(0), p.MaxConcurrency())
	require.False(t, p.FailFast())
}

func TestNewPolicy_Options(t *testing.T) {
	p, err := NewPolicy(
		WithSeparator("_"),
		WithMaxDepth(3),
		WithArrayIndices(false),
		WithExpandArrays(false),
		WithChunkSize(128),
		WithMaxConcurrency(2),
		WithFailFast(true),
	)
	require.NoError(t, err)

	require.Equal(t, "_", p.Separator())
	require.Equal(t, 3, p.MaxDepth())
	require.False(t, p.IncludeArrayIndices())
	require.False(t, p.ExpandArrays())
	require.Equal(t, 128, p.ChunkSize())
	require.Equal(t, 2, p.MaxConcurrency())
	require.True(t, p.FailFast())
}

func TestNewPolicy_Validation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		want error
	}{
		{name: "empty separator", opt: WithSeparator(""), want: errs.ErrEmptySeparator},
		{name: "negative depth", opt: WithMaxDepth(-1), want: errs.ErrInvalidMaxDepth},
		{name: "zero chunk size", opt: WithChunkSize(0), want: errs.ErrInvalidChunkSize},
		{name: "negative chunk size", opt: WithChunkSize(-5), want: errs.ErrInvalidChunkSize},
		{name: "zero concurrency", opt: WithMaxConcurrency(0), want: errs.ErrInvalidConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolicy(tt.opt)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
