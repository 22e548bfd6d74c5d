package parconn

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with parconn-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithMethod adds a method field to the logger.
func (l *Logger) WithMethod(m Method) *Logger {
	return &Logger{
		Logger: l.Logger.With("method", m.String()),
	}
}

// WithProcs adds a procs (rank count) field to the logger.
func (l *Logger) WithProcs(procs int) *Logger {
	return &Logger{
		Logger: l.Logger.With("procs", procs),
	}
}

// WithRank adds a rank field to the logger.
func (l *Logger) WithRank(rank int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rank", rank),
	}
}

// LogRun logs the outcome of a partitioning run.
func (l *Logger) LogRun(ctx context.Context, method Method, procs, iterations int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"method", method.String(),
			"procs", procs,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "run completed",
			"method", method.String(),
			"procs", procs,
			"iterations", iterations,
		)
	}
}

// LogSeedWrite logs a seed file write.
func (l *Logger) LogSeedWrite(ctx context.Context, name string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "seed write failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "seeds written",
			"name", name,
			"count", count,
		)
	}
}

// engineLogger bridges a Logger into the engine's printf-style interface.
type engineLogger struct {
	l *Logger
}

func (e engineLogger) Debugf(format string, args ...interface{}) {
	e.l.Debug(fmt.Sprintf(format, args...))
}

func (e engineLogger) Infof(format string, args ...interface{}) {
	e.l.Info(fmt.Sprintf(format, args...))
}
