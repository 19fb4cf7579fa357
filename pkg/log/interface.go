// Package log provides the structured logging interface used across digitcv.
//
// The interface is slog-compatible so callers pass alternating key/value
// fields. The production implementation is backed by zerolog (see zerolog.go);
// tests use TestLogger, which captures JSON lines in memory.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("validation").With(
//	    log.DescriptorKey, "hog",
//	)
//	logger.Info("Fold finished",
//	    log.FoldKey, 3,
//	    log.SamplesKey, 2533,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are key/value pairs. For Error, an error value passed as the first
// field is recorded under the "error" key together with its stack trace.
type Logger interface {
	// Debug logs detailed diagnostic information.
	Debug(msg string, fields ...any)

	// Info logs general progress of a run.
	Info(msg string, fields ...any)

	// Warn logs conditions that do not stop the run.
	Warn(msg string, fields ...any)

	// Error logs a failure.
	//
	// Example:
	//   logger.Error("Cross-validation failed",
	//       err,
	//       log.FoldKey, 2,
	//   )
	Error(msg string, fields ...any)

	// With returns a Logger that adds fields to every record.
	With(fields ...any) Logger

	// Enabled reports whether records at level are emitted.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates loggers. It allows swapping the implementation in
// tests.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
