package gen

import (
	"context"

	"github.com/hupe1980/parconn/comm"
	"github.com/hupe1980/parconn/tuple"
)

// EdgeList lowers an explicit set of unordered edges. Each edge receives
// a fresh key shared by its two endpoint tuples, so the endpoints reduce
// to a common minimum exactly like reads sharing a k-mer.
type EdgeList struct {
	Edges [][2]uint32
}

// NewEdgeList creates a source over the given edges.
func NewEdgeList(edges [][2]uint32) *EdgeList {
	return &EdgeList{Edges: edges}
}

// Generate emits two tuples per edge in this rank's block, keyed by the
// edge's global index.
func (g *EdgeList) Generate(ctx context.Context, c *comm.Comm) ([]tuple.Tuple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lo, hi := blockSpan(uint64(len(g.Edges)), c.Size(), c.Rank())

	out := make([]tuple.Tuple, 0, 2*(hi-lo))
	for i := lo; i < hi; i++ {
		e := g.Edges[i]
		out = append(out,
			tuple.Tuple{Key: i, Pn: e[0], Pc: e[0]},
			tuple.Tuple{Key: i, Pn: e[1], Pc: e[1]},
		)
	}
	return out, nil
}
