package parconn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/parconn/comm"
	"github.com/hupe1980/parconn/gen"
	"github.com/hupe1980/parconn/seedstore"
	"github.com/hupe1980/parconn/tuple"
)

func TestCluster(t *testing.T) {
	edges := [][2]uint32{{1, 2}, {2, 3}, {10, 11}}

	for _, method := range []Method{Standard, Inactive, LoadBalance} {
		for _, procs := range []int{1, 2, 4} {
			t.Run(fmt.Sprintf("%s/P%d", method, procs), func(t *testing.T) {
				res, err := Cluster(context.Background(), gen.NewEdgeList(edges), method, WithProcs(procs))
				require.NoError(t, err)

				assert.Equal(t, method, res.Method)
				assert.Equal(t, procs, res.Procs)
				assert.Equal(t, []uint32{1, 10}, res.Seeds)
				assert.Greater(t, res.Iterations, 0)
				assert.Greater(t, res.Duration.Nanoseconds(), int64(0))
			})
		}
	}
}

func TestClusterSeedStore(t *testing.T) {
	store := seedstore.NewMemoryStore()

	res, err := Cluster(context.Background(),
		gen.NewEdgeList([][2]uint32{{1, 2}, {2, 3}, {10, 11}}),
		Inactive,
		WithProcs(2),
		WithSeedStore(store, "out.inactive"),
	)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 10}, res.Seeds)

	r, err := store.Open(context.Background(), "out.inactive")
	require.NoError(t, err)
	defer r.Close()

	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "1\n10\n", string(content))
}

func TestClusterMetrics(t *testing.T) {
	collector := &BasicMetricsCollector{}

	_, err := Cluster(context.Background(),
		gen.NewEdgeList([][2]uint32{{1, 2}, {2, 3}}),
		Standard,
		WithProcs(2),
		WithMetricsCollector(collector),
	)
	require.NoError(t, err)

	stats := collector.GetStats()
	assert.Greater(t, stats.ReduceCount, int64(0))
	assert.Greater(t, stats.SuperstepCount, int64(0))
	assert.Equal(t, int64(1), stats.SeedCount)
}

func TestClusterValidation(t *testing.T) {
	t.Run("nil source", func(t *testing.T) {
		_, err := Cluster(context.Background(), nil, Standard)
		assert.ErrorIs(t, err, ErrNilSource)
	})

	t.Run("invalid procs", func(t *testing.T) {
		_, err := Cluster(context.Background(), gen.NewEdgeList(nil), Standard, WithProcs(-1))
		assert.ErrorIs(t, err, ErrInvalidProcs)
	})
}

func TestClusterSourceError(t *testing.T) {
	boom := errors.New("boom")
	src := SourceFunc(func(ctx context.Context, c *comm.Comm) ([]tuple.Tuple, error) {
		if c.Rank() == 1 {
			return nil, boom
		}
		return nil, nil
	})

	_, err := Cluster(context.Background(), src, Standard, WithProcs(4))
	assert.ErrorIs(t, err, boom)
}

func TestClusterCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Cluster(ctx, gen.NewEdgeList([][2]uint32{{1, 2}}), Standard, WithProcs(2))
	assert.Error(t, err)
}

func TestWriteSeeds(t *testing.T) {
	store := seedstore.NewMemoryStore()

	err := WriteSeeds(context.Background(), store, "seeds.standard", []uint32{3, 7, 42})
	require.NoError(t, err)

	r, err := store.Open(context.Background(), "seeds.standard")
	require.NoError(t, err)
	defer r.Close()

	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "3\n7\n42\n", string(content))
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("loadbalance")
	require.NoError(t, err)
	assert.Equal(t, LoadBalance, m)

	_, err = ParseMethod("bogus")
	var ume *UnknownMethodError
	require.ErrorAs(t, err, &ume)
	assert.Equal(t, "bogus", ume.Method)
}
