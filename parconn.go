package parconn

import (
	"bufio"
	"context"
	"errors"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/parconn/comm"
	"github.com/hupe1980/parconn/engine"
	"github.com/hupe1980/parconn/seedstore"
	"github.com/hupe1980/parconn/tuple"
)

// Method selects the super-step variant of the partitioning algorithm.
type Method = engine.Method

const (
	// Standard is the naive variant: all tuples stay in the working set.
	Standard = engine.Standard

	// Inactive retires the tuples of converged partitions.
	Inactive = engine.Inactive

	// LoadBalance retires converged partitions and re-balances the working
	// set across ranks after every super-step.
	LoadBalance = engine.LoadBalance
)

// ParseMethod maps the command-line method names onto Method values.
func ParseMethod(s string) (Method, error) {
	m, err := engine.ParseMethod(s)
	if err != nil {
		return 0, &UnknownMethodError{Method: s}
	}
	return m, nil
}

// Source produces one rank's share of the input tuples. Generate is called
// once per rank, concurrently; implementations may use the rank's Comm for
// collectives of their own (for example to agree on global numbering).
type Source interface {
	Generate(ctx context.Context, c *comm.Comm) ([]tuple.Tuple, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, c *comm.Comm) ([]tuple.Tuple, error)

// Generate implements Source.
func (f SourceFunc) Generate(ctx context.Context, c *comm.Comm) ([]tuple.Tuple, error) {
	return f(ctx, c)
}

// Result is the outcome of a partitioning run.
type Result struct {
	// Method is the variant that produced the result.
	Method Method

	// Procs is the number of ranks the run was decomposed over.
	Procs int

	// Iterations is the number of super-steps until convergence.
	Iterations int

	// Seeds holds the smallest label of every partition, ascending.
	Seeds []uint32

	// Duration is the wall-clock time of the whole run.
	Duration time.Duration
}

// Cluster partitions the tuples produced by src into connected components.
// It spawns one goroutine per rank, runs the selected method to convergence
// and returns the partition seeds. The first rank failure (or ctx
// cancellation) aborts the collective group, so the ranks go down together.
func Cluster(ctx context.Context, src Source, method Method, optFns ...Option) (*Result, error) {
	o := applyOptions(optFns...)
	if src == nil {
		return nil, ErrNilSource
	}
	if o.procs <= 0 {
		return nil, ErrInvalidProcs
	}

	logger := o.logger.WithMethod(method).WithProcs(o.procs)
	start := time.Now()

	g := comm.NewGroup(o.procs)
	eg, ctx := errgroup.WithContext(ctx)

	// Abort the group as soon as the context dies so that no rank stays
	// blocked inside a collective.
	watcherDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			g.Abort()
		case <-watcherDone:
		}
	}()

	rankErrs := make([]error, o.procs)
	results := make([]*engine.Result, o.procs)
	for r := 0; r < o.procs; r++ {
		eg.Go(func() error {
			c := g.Rank(r)
			data, err := src.Generate(ctx, c)
			if err != nil {
				g.Abort()
				rankErrs[r] = err
				return err
			}
			e := engine.New(c, method,
				engine.WithLogger(engineLogger{l: logger}),
				engine.WithMetrics(collectorMetrics{m: o.metricsCollector}),
				engine.WithMaxIterations(o.maxIterations),
			)
			res, err := e.Run(ctx, data)
			if err != nil {
				g.Abort()
				rankErrs[r] = err
				return err
			}
			results[r] = res
			return nil
		})
	}
	err := eg.Wait()
	close(watcherDone)

	if err != nil {
		// Prefer the root cause over the ErrAborted fallout of the
		// bystander ranks.
		for _, re := range rankErrs {
			if re != nil && !errors.Is(re, comm.ErrAborted) {
				err = re
				break
			}
		}
		logger.LogRun(ctx, method, o.procs, 0, err)
		return nil, err
	}

	res := &Result{
		Method:     method,
		Procs:      o.procs,
		Iterations: results[0].Iterations,
		Seeds:      results[0].Seeds,
		Duration:   time.Since(start),
	}
	logger.LogRun(ctx, method, o.procs, res.Iterations, nil)

	if o.seedStore != nil && o.seedName != "" {
		if err := writeSeeds(ctx, o, logger, res.Seeds); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// WriteSeeds writes one seed label per line to name in the given store.
func WriteSeeds(ctx context.Context, store seedstore.Store, name string, seeds []uint32) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return &SeedWriteError{Name: name, cause: err}
	}

	bw := bufio.NewWriter(w)
	for _, s := range seeds {
		bw.WriteString(strconv.FormatUint(uint64(s), 10))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		w.Close()
		return &SeedWriteError{Name: name, cause: err}
	}
	if err := w.Close(); err != nil {
		return &SeedWriteError{Name: name, cause: err}
	}
	return nil
}

func writeSeeds(ctx context.Context, o *options, logger *Logger, seeds []uint32) error {
	start := time.Now()
	err := WriteSeeds(ctx, o.seedStore, o.seedName, seeds)
	o.metricsCollector.RecordSeedWrite(len(seeds), time.Since(start), err)
	logger.LogSeedWrite(ctx, o.seedName, len(seeds), err)
	return err
}
