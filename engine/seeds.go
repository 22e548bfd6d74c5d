package engine

import (
	"sort"

	"github.com/hupe1980/parconn/comm"
	"github.com/hupe1980/parconn/tuple"
)

// seedSplitter announces the first seed label of a rank so that the other
// ranks can route their duplicates of boundary partitions to it.
type seedSplitter struct {
	rank int
	pc   uint32
}

// seeds extracts one representative label per partition from the union of
// the working set and the retired tuples. Every rank deduplicates its local
// share, boundary duplicates are routed to a single owner via splitter
// ranges, and the final seeds are concentrated at rank 0 in ascending label
// order. Ranks other than 0 return nil.
func (e *Engine) seeds() ([]uint32, error) {
	c := e.comm

	all := make([]tuple.Tuple, 0, len(e.active)+len(e.retired))
	all = append(all, e.active...)
	all = append(all, e.retired...)
	for i := range all {
		all[i].Pn = all[i].Pc
	}

	all, err := comm.BlockDecompose(c, all)
	if err != nil {
		return nil, err
	}
	byPc := func(a, b tuple.Tuple) bool { return a.Pc < b.Pc }
	all, err = comm.Sort(c, all, byPc)
	if err != nil {
		return nil, err
	}

	var seeds []tuple.Tuple
	for i, t := range all {
		if i == 0 || all[i-1].Pc < t.Pc {
			seeds = append(seeds, t)
		}
	}

	var local []seedSplitter
	if len(seeds) > 0 && c.Rank() > 0 {
		local = []seedSplitter{{rank: c.Rank(), pc: seeds[0].Pc}}
	}
	splitters, err := comm.AllGatherv(c, local)
	if err != nil {
		return nil, err
	}

	// Route each seed to the last rank whose first seed is not greater than
	// it; seeds below every splitter stay with rank 0. Both sides are
	// sorted, so one forward pass suffices.
	bufs := make([][]tuple.Tuple, c.Size())
	dst, si := 0, 0
	for _, s := range seeds {
		for si < len(splitters) && splitters[si].pc <= s.Pc {
			dst = splitters[si].rank
			si++
		}
		bufs[dst] = append(bufs[dst], s)
	}
	seeds, err = comm.AllToAllv(c, bufs)
	if err != nil {
		return nil, err
	}

	sort.Slice(seeds, func(i, j int) bool { return seeds[i].Pc < seeds[j].Pc })
	uniq := seeds[:0]
	for i, t := range seeds {
		if i == 0 || seeds[i-1].Pc < t.Pc {
			uniq = append(uniq, t)
		}
	}

	gathered, err := comm.GatherVectors(c, uniq, 0)
	if err != nil {
		return nil, err
	}
	if c.Rank() != 0 {
		return nil, nil
	}
	out := make([]uint32, len(gathered))
	for i, t := range gathered {
		out[i] = t.Pc
	}
	return out, nil
}
