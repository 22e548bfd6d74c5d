// Package comm provides the collective layer of the partitioning engine: a
// bulk-synchronous message-passing substrate over in-process ranks.
//
// A Group owns P ranks, each driven by its own goroutine and addressed
// through a Comm handle. Collectives are rendezvous operations: every rank of
// a group must call the same collective in the same order, contributions are
// exchanged through per-rank slots, and a reusable barrier separates the
// post, compute and read phases. Local work between collectives never
// suspends.
//
// The layer is deterministic for a fixed input and a fixed P. It makes no
// attempt at fault tolerance: when any rank aborts the group, every pending
// and future collective of that group fails with ErrAborted so that the
// ranks go down together.
package comm

import (
	"errors"
	"fmt"
	"sync"
)

// ErrAborted is returned by collectives after the group has been aborted.
// Use errors.Is to test for it.
var ErrAborted = errors.New("comm: group aborted")

// abortState is shared between a group and all subgroups split off from it
// so that any of them can tear the whole tree down exactly once.
type abortState struct {
	once sync.Once
	ch   chan struct{}
}

func (a *abortState) abort() {
	a.once.Do(func() { close(a.ch) })
}

// Group is a set of ranks that exchange data through collectives.
type Group struct {
	procs int

	abort *abortState

	mu      sync.Mutex
	count   int
	release chan struct{}

	slots []any
	aux   any

	subs map[int]*Group
}

// NewGroup creates a group of procs ranks. It panics if procs is not
// positive; the number of ranks is fixed for the lifetime of the group.
func NewGroup(procs int) *Group {
	if procs <= 0 {
		panic(fmt.Sprintf("comm: invalid group size %d", procs))
	}
	return &Group{
		procs:   procs,
		abort:   &abortState{ch: make(chan struct{})},
		release: make(chan struct{}),
		slots:   make([]any, procs),
	}
}

// newSubGroup creates a group that shares the parent's abort state so that
// aborting either unblocks the collectives of both.
func newSubGroup(parent *Group, procs int) *Group {
	return &Group{
		procs:   procs,
		abort:   parent.abort,
		release: make(chan struct{}),
		slots:   make([]any, procs),
	}
}

// Size returns the number of ranks in the group.
func (g *Group) Size() int { return g.procs }

// Rank returns the Comm handle for rank r.
func (g *Group) Rank(r int) *Comm {
	if r < 0 || r >= g.procs {
		panic(fmt.Sprintf("comm: rank %d out of range [0,%d)", r, g.procs))
	}
	return &Comm{g: g, rank: r}
}

// Abort tears the group down. All collectives blocked in the group (and in
// any subgroup split off from it) return ErrAborted, as do all future ones.
// Abort is idempotent and safe to call from any goroutine.
func (g *Group) Abort() {
	g.abort.abort()
}

// await blocks until every rank of the group has arrived, or until the group
// is aborted.
func (g *Group) await() error {
	select {
	case <-g.abort.ch:
		return ErrAborted
	default:
	}

	g.mu.Lock()
	ch := g.release
	g.count++
	if g.count == g.procs {
		g.count = 0
		g.release = make(chan struct{})
		close(ch)
		g.mu.Unlock()
		return nil
	}
	g.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-g.abort.ch:
		return ErrAborted
	}
}

// Comm is a single rank's handle into a group. A Comm must only be used by
// the goroutine driving that rank.
type Comm struct {
	g    *Group
	rank int
}

// Rank returns this rank's index within the group.
func (c *Comm) Rank() int { return c.rank }

// Abort tears down the group this rank belongs to. See Group.Abort.
func (c *Comm) Abort() { c.g.Abort() }

// Size returns the number of ranks in the group.
func (c *Comm) Size() int { return c.g.procs }

// Split partitions the group into subgroups of ranks sharing the same color
// and returns this rank's handle in its subgroup. Ranks are ordered within
// the subgroup by their rank in the parent. Split is itself a collective:
// every rank of the parent group must call it.
func Split(c *Comm, color int) (*Comm, error) {
	g := c.g
	g.slots[c.rank] = color
	if err := g.await(); err != nil {
		return nil, err
	}

	size := 0
	subRank := 0
	for r := 0; r < g.procs; r++ {
		if g.slots[r].(int) != color {
			continue
		}
		if r < c.rank {
			subRank++
		}
		size++
	}

	g.mu.Lock()
	if g.subs == nil {
		g.subs = make(map[int]*Group)
	}
	sub, ok := g.subs[color]
	if !ok {
		sub = newSubGroup(g, size)
		g.subs[color] = sub
	}
	g.mu.Unlock()

	if err := g.await(); err != nil {
		return nil, err
	}
	if c.rank == 0 {
		g.subs = nil
	}
	return &Comm{g: sub, rank: subRank}, nil
}
