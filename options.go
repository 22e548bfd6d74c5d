package parconn

import (
	"runtime"

	"github.com/hupe1980/parconn/seedstore"
)

type options struct {
	procs            int
	maxIterations    int
	logger           *Logger
	metricsCollector MetricsCollector
	seedStore        seedstore.Store
	seedName         string
}

// Option configures a partitioning run.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		procs:            runtime.GOMAXPROCS(0),
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

func applyOptions(optFns ...Option) *options {
	o := defaultOptions()
	for _, fn := range optFns {
		if fn != nil {
			fn(o)
		}
	}
	return o
}

// WithProcs sets the number of ranks the input is decomposed over. The
// default is GOMAXPROCS. The seed set produced for a fixed input does not
// depend on this value.
func WithProcs(procs int) Option {
	return func(o *options) {
		o.procs = procs
	}
}

// WithMaxIterations bounds the number of super-steps as a diagnostic guard.
// Zero (the default) means no bound.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring the
// run. Pass nil to disable metrics collection.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metricsCollector = m
	}
}

// WithSeedStore makes the run write its seeds to name in the given store
// after a successful run.
func WithSeedStore(store seedstore.Store, name string) Option {
	return func(o *options) {
		o.seedStore = store
		o.seedName = name
	}
}
