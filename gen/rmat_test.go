package gen

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/parconn/comm"
	"github.com/hupe1980/parconn/tuple"
)

// collect runs generate on every rank of a fresh group and concatenates
// the per-rank outputs in rank order.
func collect(t *testing.T, procs int, generate func(ctx context.Context, c *comm.Comm) ([]tuple.Tuple, error)) []tuple.Tuple {
	t.Helper()

	g := comm.NewGroup(procs)
	outs := make([][]tuple.Tuple, procs)
	errs := make([]error, procs)

	var wg sync.WaitGroup
	for r := 0; r < procs; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			outs[r], errs[r] = generate(context.Background(), g.Rank(r))
		}(r)
	}
	wg.Wait()

	var all []tuple.Tuple
	for r := 0; r < procs; r++ {
		require.NoError(t, errs[r], "rank %d", r)
		all = append(all, outs[r]...)
	}
	return all
}

func TestRMATGenerate(t *testing.T) {
	src := NewRMAT(4, 8)
	all := collect(t, 1, src.Generate)

	require.Len(t, all, 8<<4)
	for _, tp := range all {
		assert.Less(t, tp.Key, uint64(16))
		assert.Less(t, tp.Pc, uint32(16))
		assert.Equal(t, uint32(tp.Key), tp.Pn)
	}
}

// The emitted stream must not depend on the rank count.
func TestRMATDeterminism(t *testing.T) {
	src := NewRMAT(5, 4)

	reference := collect(t, 1, src.Generate)
	for _, procs := range []int{2, 3, 7} {
		all := collect(t, procs, src.Generate)
		assert.Equal(t, reference, all, "P=%d", procs)
	}
}

func TestRMATValidation(t *testing.T) {
	_, err := NewRMAT(0, 16).Generate(context.Background(), comm.NewGroup(1).Rank(0))
	assert.Error(t, err)

	_, err = NewRMAT(40, 16).Generate(context.Background(), comm.NewGroup(1).Rank(0))
	assert.Error(t, err)

	_, err = NewRMAT(4, 0).Generate(context.Background(), comm.NewGroup(1).Rank(0))
	assert.Error(t, err)
}

func TestBlockSpan(t *testing.T) {
	// Spans must tile [0, n) in rank order.
	for _, tc := range []struct{ n, p uint64 }{{10, 3}, {7, 7}, {3, 5}, {0, 4}} {
		var next uint64
		for r := 0; r < int(tc.p); r++ {
			lo, hi := blockSpan(tc.n, int(tc.p), r)
			assert.Equal(t, next, lo)
			assert.GreaterOrEqual(t, hi, lo)
			next = hi
		}
		assert.Equal(t, tc.n, next)
	}
}
