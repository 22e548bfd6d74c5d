// Package engine implements the log(D_max) partitioning algorithm on top of
// the collective layer. One Engine instance drives one rank: it reduces the
// k-mer graph into candidate labels, runs bulk-synchronous label-propagation
// super-steps until every rank reports a stable state, and extracts one seed
// per partition.
//
// Three methods are supported. Standard keeps every tuple in the working set
// for the whole run. Inactive retires the tuples of self-consistent
// partitions after a one-step witness period. LoadBalance additionally
// re-balances the shrinking working set across ranks after every super-step.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/parconn/comm"
	"github.com/hupe1980/parconn/tuple"
)

// Method selects the super-step variant.
type Method int

const (
	// Standard is the naive variant: all tuples stay in the working set.
	Standard Method = iota

	// Inactive retires the tuples of converged partitions.
	Inactive

	// LoadBalance retires converged partitions and re-balances the working
	// set across ranks after every super-step.
	LoadBalance
)

// ParseMethod maps the command-line method names onto Method values.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "standard":
		return Standard, nil
	case "inactive":
		return Inactive, nil
	case "loadbalance":
		return LoadBalance, nil
	default:
		return 0, fmt.Errorf("engine: unknown method %q", s)
	}
}

func (m Method) String() string {
	switch m {
	case Standard:
		return "standard"
	case Inactive:
		return "inactive"
	case LoadBalance:
		return "loadbalance"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

func (m Method) retire() bool  { return m == Inactive || m == LoadBalance }
func (m Method) balance() bool { return m == LoadBalance }

// Logger is a simple interface for logging.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

// noopLogger is a default logger that does nothing.
type noopLogger struct{}

func (l *noopLogger) Debugf(format string, args ...interface{}) {}
func (l *noopLogger) Infof(format string, args ...interface{})  {}

// Metrics receives engine progress events. Implementations must be safe for
// concurrent use since every rank reports through the same collector.
type Metrics interface {
	ObserveReduce(d time.Duration, tuples int)
	ObserveSuperstep(iteration int, d time.Duration, active, flips int)
	ObserveRetired(count int)
	ObserveSeeds(count int)
}

// noopMetrics is a default collector that does nothing.
type noopMetrics struct{}

func (noopMetrics) ObserveReduce(d time.Duration, tuples int)                 {}
func (noopMetrics) ObserveSuperstep(iteration int, d time.Duration, a, f int) {}
func (noopMetrics) ObserveRetired(count int)                                  {}
func (noopMetrics) ObserveSeeds(count int)                                    {}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics sets the metrics collector for the engine.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithMaxIterations bounds the number of super-steps. Zero means no bound.
// Exceeding the bound aborts the group and returns a NoConvergenceError on
// every rank.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		e.maxIter = n
	}
}

// Engine drives one rank of a partitioning run.
type Engine struct {
	comm    *comm.Comm
	method  Method
	logger  Logger
	metrics Metrics
	maxIter int

	active  []tuple.Tuple
	retired []tuple.Tuple
}

// New creates the engine for one rank of the group.
func New(c *comm.Comm, method Method, opts ...Option) *Engine {
	e := &Engine{
		comm:    c,
		method:  method,
		logger:  &noopLogger{},
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of a run on one rank.
type Result struct {
	// Iterations is the number of super-steps executed. It is identical on
	// every rank.
	Iterations int

	// Seeds holds the smallest label of every partition, sorted ascending.
	// It is populated on rank 0 only.
	Seeds []uint32
}

// Run executes the full pipeline on this rank's share of the input: k-mer
// reduction, label-propagation super-steps until global convergence, and
// seed extraction. Run is a collective: every rank of the group must call it
// with its own input slice. The input is consumed.
//
// Cancelling ctx aborts the whole group; the other ranks observe
// comm.ErrAborted.
func (e *Engine) Run(ctx context.Context, data []tuple.Tuple) (*Result, error) {
	e.active = data
	e.retired = nil

	start := time.Now()
	if err := e.reduce(); err != nil {
		return nil, err
	}
	e.metrics.ObserveReduce(time.Since(start), len(e.active))

	iterations := 0
	for {
		if err := ctx.Err(); err != nil {
			e.comm.Abort()
			return nil, err
		}
		if e.maxIter > 0 && iterations >= e.maxIter {
			e.comm.Abort()
			return nil, &NoConvergenceError{Iterations: iterations}
		}

		stepStart := time.Now()
		done, flips, err := e.superstep()
		if err != nil {
			return nil, err
		}
		iterations++
		e.metrics.ObserveSuperstep(iterations, time.Since(stepStart), len(e.active), flips)
		if e.comm.Rank() == 0 {
			e.logger.Debugf("iteration %d: active=%d flips=%d", iterations, len(e.active), flips)
		}
		if done {
			break
		}
	}

	seeds, err := e.seeds()
	if err != nil {
		return nil, err
	}
	if e.comm.Rank() == 0 {
		e.metrics.ObserveSeeds(len(seeds))
	}
	return &Result{Iterations: iterations, Seeds: seeds}, nil
}

// NoConvergenceError reports that the iteration bound was exceeded before
// every rank observed a stable state.
type NoConvergenceError struct {
	Iterations int
}

func (e *NoConvergenceError) Error() string {
	return fmt.Sprintf("engine: no convergence after %d iterations", e.Iterations)
}
