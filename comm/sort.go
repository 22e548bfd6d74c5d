package comm

import "sort"

// Sort globally sorts the union of the per-rank slices by less and returns
// this rank's slice of the sorted sequence. Per-rank lengths are preserved:
// rank r ends up with exactly as many elements as it contributed, taken from
// offset sum(len of ranks < r) of the sorted whole. The sort is stable, so a
// fixed input multiset yields the same distribution for every run.
func Sort[T any](c *Comm, data []T, less func(a, b T) bool) ([]T, error) {
	g := c.g
	g.slots[c.rank] = data
	if err := g.await(); err != nil {
		return nil, err
	}

	if c.rank == 0 {
		total := 0
		for r := 0; r < g.procs; r++ {
			total += len(g.slots[r].([]T))
		}
		all := make([]T, 0, total)
		for r := 0; r < g.procs; r++ {
			all = append(all, g.slots[r].([]T)...)
		}
		sort.SliceStable(all, func(i, j int) bool { return less(all[i], all[j]) })
		g.aux = all
	}
	if err := g.await(); err != nil {
		return nil, err
	}

	all := g.aux.([]T)
	off := 0
	for r := 0; r < c.rank; r++ {
		off += len(g.slots[r].([]T))
	}
	out := make([]T, len(data))
	copy(out, all[off:off+len(data)])

	if err := g.await(); err != nil {
		return nil, err
	}
	if c.rank == 0 {
		g.aux = nil
	}
	return out, nil
}

// BlockDecompose redistributes the union of the per-rank slices into
// near-equal blocks, preserving the global element order. With N total
// elements over P ranks, the first N mod P ranks receive ceil(N/P) elements
// and the rest floor(N/P).
func BlockDecompose[T any](c *Comm, data []T) ([]T, error) {
	g := c.g
	g.slots[c.rank] = data
	if err := g.await(); err != nil {
		return nil, err
	}

	total := 0
	for r := 0; r < g.procs; r++ {
		total += len(g.slots[r].([]T))
	}

	lo, hi := blockRange(total, g.procs, c.rank)
	out := make([]T, 0, hi-lo)
	pos := 0
	for r := 0; r < g.procs; r++ {
		chunk := g.slots[r].([]T)
		for i := range chunk {
			gi := pos + i
			if gi >= lo && gi < hi {
				out = append(out, chunk[i])
			}
		}
		pos += len(chunk)
	}

	if err := g.await(); err != nil {
		return nil, err
	}
	return out, nil
}

// blockRange returns the half-open global index range [lo, hi) owned by rank
// r under a block decomposition of n elements over p ranks.
func blockRange(n, p, r int) (int, int) {
	q, rem := n/p, n%p
	lo := r*q + min(r, rem)
	size := q
	if r < rem {
		size++
	}
	return lo, lo + size
}
