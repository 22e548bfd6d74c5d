package comm

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run drives fn on every rank of a fresh group and returns the per-rank
// errors.
func run(t *testing.T, procs int, fn func(c *Comm) error) []error {
	t.Helper()

	g := NewGroup(procs)
	errs := make([]error, procs)

	var wg sync.WaitGroup
	for r := 0; r < procs; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			errs[r] = fn(g.Rank(r))
		}(r)
	}
	wg.Wait()
	return errs
}

func requireNoErrors(t *testing.T, errs []error) {
	t.Helper()
	for r, err := range errs {
		require.NoError(t, err, "rank %d", r)
	}
}

func TestNewGroup(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		g := NewGroup(4)
		assert.Equal(t, 4, g.Size())
		assert.Equal(t, 2, g.Rank(2).Rank())
		assert.Equal(t, 4, g.Rank(2).Size())
	})

	t.Run("invalid size", func(t *testing.T) {
		assert.Panics(t, func() { NewGroup(0) })
	})

	t.Run("rank out of range", func(t *testing.T) {
		g := NewGroup(2)
		assert.Panics(t, func() { g.Rank(2) })
		assert.Panics(t, func() { g.Rank(-1) })
	})
}

func TestAllGather(t *testing.T) {
	for _, procs := range []int{1, 2, 4} {
		out := make([][]int, procs)
		errs := run(t, procs, func(c *Comm) error {
			xs, err := AllGather(c, c.Rank()*10)
			out[c.Rank()] = xs
			return err
		})
		requireNoErrors(t, errs)
		for r := 0; r < procs; r++ {
			for i := 0; i < procs; i++ {
				assert.Equal(t, i*10, out[r][i])
			}
		}
	}
}

func TestAllGatherv(t *testing.T) {
	out := make([][]int, 3)
	errs := run(t, 3, func(c *Comm) error {
		local := make([]int, c.Rank())
		for i := range local {
			local[i] = c.Rank()*100 + i
		}
		xs, err := AllGatherv(c, local)
		out[c.Rank()] = xs
		return err
	})
	requireNoErrors(t, errs)
	want := []int{100, 200, 201}
	for r := 0; r < 3; r++ {
		assert.Equal(t, want, out[r])
	}
}

func TestAllToAllv(t *testing.T) {
	procs := 3
	out := make([][]int, procs)
	errs := run(t, procs, func(c *Comm) error {
		bufs := make([][]int, procs)
		for dst := 0; dst < procs; dst++ {
			bufs[dst] = []int{c.Rank()*10 + dst}
		}
		xs, err := AllToAllv(c, bufs)
		out[c.Rank()] = xs
		return err
	})
	requireNoErrors(t, errs)
	for r := 0; r < procs; r++ {
		want := make([]int, procs)
		for src := 0; src < procs; src++ {
			want[src] = src*10 + r
		}
		assert.Equal(t, want, out[r])
	}
}

func TestGatherVectors(t *testing.T) {
	procs := 4
	out := make([][]int, procs)
	errs := run(t, procs, func(c *Comm) error {
		xs, err := GatherVectors(c, []int{c.Rank(), c.Rank()}, 0)
		out[c.Rank()] = xs
		return err
	})
	requireNoErrors(t, errs)
	assert.Equal(t, []int{0, 0, 1, 1, 2, 2, 3, 3}, out[0])
	for r := 1; r < procs; r++ {
		assert.Nil(t, out[r])
	}
}

func TestExScan(t *testing.T) {
	procs := 4
	sums := make([]int, procs)
	oks := make([]bool, procs)
	errs := run(t, procs, func(c *Comm) error {
		s, ok, err := ExScan(c, c.Rank()+1, func(a, b int) int { return a + b })
		sums[c.Rank()] = s
		oks[c.Rank()] = ok
		return err
	})
	requireNoErrors(t, errs)
	assert.False(t, oks[0])
	assert.Equal(t, []int{0, 1, 3, 6}, sums)
}

func TestRevExScan(t *testing.T) {
	procs := 4
	sums := make([]int, procs)
	oks := make([]bool, procs)
	errs := run(t, procs, func(c *Comm) error {
		s, ok, err := RevExScan(c, c.Rank()+1, func(a, b int) int { return a + b })
		sums[c.Rank()] = s
		oks[c.Rank()] = ok
		return err
	})
	requireNoErrors(t, errs)
	assert.False(t, oks[procs-1])
	assert.Equal(t, []int{9, 7, 4, 0}, sums)
}

func TestShifts(t *testing.T) {
	procs := 3

	t.Run("right", func(t *testing.T) {
		got := make([]int, procs)
		oks := make([]bool, procs)
		errs := run(t, procs, func(c *Comm) error {
			v, ok, err := RightShift(c, c.Rank()*10)
			got[c.Rank()] = v
			oks[c.Rank()] = ok
			return err
		})
		requireNoErrors(t, errs)
		assert.Equal(t, []bool{false, true, true}, oks)
		assert.Equal(t, 0, got[1])
		assert.Equal(t, 10, got[2])
	})

	t.Run("left", func(t *testing.T) {
		got := make([]int, procs)
		oks := make([]bool, procs)
		errs := run(t, procs, func(c *Comm) error {
			v, ok, err := LeftShift(c, c.Rank()*10)
			got[c.Rank()] = v
			oks[c.Rank()] = ok
			return err
		})
		requireNoErrors(t, errs)
		assert.Equal(t, []bool{true, true, false}, oks)
		assert.Equal(t, 10, got[0])
		assert.Equal(t, 20, got[1])
	})
}

func TestTestAll(t *testing.T) {
	t.Run("all true", func(t *testing.T) {
		got := make([]bool, 3)
		errs := run(t, 3, func(c *Comm) error {
			v, err := TestAll(c, true)
			got[c.Rank()] = v
			return err
		})
		requireNoErrors(t, errs)
		assert.Equal(t, []bool{true, true, true}, got)
	})

	t.Run("one false", func(t *testing.T) {
		got := make([]bool, 3)
		errs := run(t, 3, func(c *Comm) error {
			v, err := TestAll(c, c.Rank() != 1)
			got[c.Rank()] = v
			return err
		})
		requireNoErrors(t, errs)
		assert.Equal(t, []bool{false, false, false}, got)
	})
}

func TestSort(t *testing.T) {
	procs := 3
	inputs := [][]int{{9, 1}, {5, 5, 3}, {7}}
	out := make([][]int, procs)
	errs := run(t, procs, func(c *Comm) error {
		xs, err := Sort(c, inputs[c.Rank()], func(a, b int) bool { return a < b })
		out[c.Rank()] = xs
		return err
	})
	requireNoErrors(t, errs)
	assert.Equal(t, []int{1, 3}, out[0])
	assert.Equal(t, []int{5, 5, 7}, out[1])
	assert.Equal(t, []int{9}, out[2])
}

func TestBlockDecompose(t *testing.T) {
	procs := 3
	inputs := [][]int{{1, 2, 3, 4, 5, 6, 7}, {}, {8, 9, 10}}
	out := make([][]int, procs)
	errs := run(t, procs, func(c *Comm) error {
		xs, err := BlockDecompose(c, inputs[c.Rank()])
		out[c.Rank()] = xs
		return err
	})
	requireNoErrors(t, errs)
	assert.Equal(t, []int{1, 2, 3, 4}, out[0])
	assert.Equal(t, []int{5, 6, 7}, out[1])
	assert.Equal(t, []int{8, 9, 10}, out[2])
}

func TestSplit(t *testing.T) {
	procs := 4
	sizes := make([]int, procs)
	subRanks := make([]int, procs)
	errs := run(t, procs, func(c *Comm) error {
		sub, err := Split(c, c.Rank()%2)
		if err != nil {
			return err
		}
		sizes[c.Rank()] = sub.Size()
		subRanks[c.Rank()] = sub.Rank()

		// The subgroup must be usable as a group of its own.
		xs, err := AllGather(sub, c.Rank())
		if err != nil {
			return err
		}
		if c.Rank()%2 == 0 {
			assert.Equal(t, []int{0, 2}, xs)
		} else {
			assert.Equal(t, []int{1, 3}, xs)
		}
		return nil
	})
	requireNoErrors(t, errs)
	assert.Equal(t, []int{2, 2, 2, 2}, sizes)
	assert.Equal(t, []int{0, 0, 1, 1}, subRanks)
}

func TestAbort(t *testing.T) {
	procs := 3
	errs := run(t, procs, func(c *Comm) error {
		if c.Rank() == 0 {
			c.g.Abort()
			return nil
		}
		_, err := AllGather(c, 1)
		return err
	})
	require.NoError(t, errs[0])
	for r := 1; r < procs; r++ {
		assert.True(t, errors.Is(errs[r], ErrAborted), "rank %d", r)
	}
}
