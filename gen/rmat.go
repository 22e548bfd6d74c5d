package gen

import (
	"context"
	"fmt"

	"github.com/hupe1980/parconn/comm"
	"github.com/hupe1980/parconn/tuple"
)

// R-MAT initiator matrix. The skew matches the Graph500 reference
// parameters and yields a scale-free degree distribution.
const (
	rmatA = 0.57
	rmatB = 0.19
	rmatC = 0.19
	rmatD = 0.05
)

// RMAT generates a synthetic scale-free edge stream. The graph has
// 2^Scale vertices and EdgeFactor * 2^Scale edges. Every edge is derived
// from its global index alone, so the emitted tuple multiset does not
// depend on the number of ranks.
type RMAT struct {
	Scale      int
	EdgeFactor int

	// Seed1 and Seed2 select the random stream. NewRMAT sets the
	// defaults 1 and 2.
	Seed1 uint64
	Seed2 uint64
}

// NewRMAT creates an R-MAT source with the default seeds.
func NewRMAT(scale, edgefactor int) *RMAT {
	return &RMAT{
		Scale:      scale,
		EdgeFactor: edgefactor,
		Seed1:      1,
		Seed2:      2,
	}
}

// Generate emits this rank's block of the edge stream, one tuple per
// edge: key and pn carry the source vertex, pc the destination.
func (g *RMAT) Generate(ctx context.Context, c *comm.Comm) ([]tuple.Tuple, error) {
	if g.Scale < 1 || g.Scale > 31 {
		return nil, fmt.Errorf("gen: scale %d out of range [1, 31]", g.Scale)
	}
	if g.EdgeFactor < 1 {
		return nil, fmt.Errorf("gen: edgefactor %d must be positive", g.EdgeFactor)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := uint64(g.EdgeFactor) << uint(g.Scale)
	lo, hi := blockSpan(total, c.Size(), c.Rank())

	out := make([]tuple.Tuple, 0, hi-lo)
	for i := lo; i < hi; i++ {
		u, v := g.edge(i)
		out = append(out, tuple.Tuple{Key: u, Pn: uint32(u), Pc: uint32(v)})
	}
	return out, nil
}

// edge derives edge i by recursive quadrant descent over the adjacency
// matrix, one level per scale bit.
func (g *RMAT) edge(i uint64) (uint64, uint64) {
	r := newEdgeRand(g.Seed1, g.Seed2, i)

	var u, v uint64
	for lvl := 0; lvl < g.Scale; lvl++ {
		u <<= 1
		v <<= 1
		p := r.next()
		switch {
		case p < rmatA:
		case p < rmatA+rmatB:
			v |= 1
		case p < rmatA+rmatB+rmatC:
			u |= 1
		default:
			u |= 1
			v |= 1
		}
	}
	return u, v
}

// edgeRand is a splitmix64 stream keyed by (seed1, seed2, edge index).
type edgeRand struct {
	state uint64
}

func newEdgeRand(seed1, seed2, i uint64) edgeRand {
	return edgeRand{state: mix64(seed1 ^ mix64(seed2^mix64(i)))}
}

func (r *edgeRand) next() float64 {
	r.state += 0x9e3779b97f4a7c15
	return float64(mix64(r.state)>>11) / (1 << 53)
}

func mix64(x uint64) uint64 {
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// blockSpan returns the half-open index range owned by rank r when n
// items are block-decomposed across p ranks.
func blockSpan(n uint64, p, r int) (uint64, uint64) {
	per := n / uint64(p)
	rem := n % uint64(p)

	lo := per*uint64(r) + min(uint64(r), rem)
	size := per
	if uint64(r) < rem {
		size++
	}
	return lo, lo + size
}
