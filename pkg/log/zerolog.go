package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

// zerologLogger implements Logger on top of a zerolog.Logger.
type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger creates a Logger that writes JSON lines to w.
func NewZerologLogger(w io.Writer, level Level) Logger {
	return &zerologLogger{logger: newZerolog(w, level)}
}

func newZerolog(w io.Writer, level Level) zerolog.Logger {
	return zerolog.New(w).
		Level(toZerologLevel(level)).
		With().
		Timestamp().
		Logger()
}

func (z *zerologLogger) Debug(msg string, fields ...any) {
	emit(z.logger.Debug(), msg, false, fields)
}

func (z *zerologLogger) Info(msg string, fields ...any) {
	emit(z.logger.Info(), msg, false, fields)
}

func (z *zerologLogger) Warn(msg string, fields ...any) {
	emit(z.logger.Warn(), msg, false, fields)
}

func (z *zerologLogger) Error(msg string, fields ...any) {
	emit(z.logger.Error(), msg, true, fields)
}

func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			ctx = ctx.Str(key, v.Error())
		case zerolog.LogObjectMarshaler:
			ctx = ctx.Object(key, v)
		default:
			ctx = ctx.Interface(key, v)
		}
	}
	return &zerologLogger{logger: ctx.Logger()}
}

func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= z.logger.GetLevel()
}

// emit adds fields to the event and sends it. A nil event (disabled level) is
// a no-op in zerolog, so no level check is needed here.
func emit(event *zerolog.Event, msg string, withStack bool, fields []any) {
	if event == nil {
		return
	}
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			event = event.Err(err)
			if withStack {
				event = event.Str(StacktraceKey, fmt.Sprintf("%+v", err))
			}
			fields = fields[1:]
		}
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			event = event.Str(key, v.Error())
		case zerolog.LogObjectMarshaler:
			event = event.Object(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg(msg)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ParseLevel converts "debug", "info", "warn" or "error" to a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewValidationError("log-level", "must be one of debug, info, warn, error", level)
	}
}

// ZerologProvider implements LoggerProvider with a shared zerolog writer.
type ZerologProvider struct {
	mu     sync.RWMutex
	writer io.Writer
	level  Level
	base   zerolog.Logger
}

// NewZerologProvider creates a provider writing to w at the given level.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	return &ZerologProvider{writer: w, level: level, base: newZerolog(w, level)}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{logger: p.base}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel. Loggers obtained earlier keep
// their level.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	p.base = newZerolog(p.writer, level)
}

// warn logs a library warning raised through errors.Warn.
func (p *ZerologProvider) warn(w error) {
	p.mu.RLock()
	base := p.base
	p.mu.RUnlock()

	event := base.Warn()
	if m, ok := w.(zerolog.LogObjectMarshaler); ok {
		event = event.Object("warning", m)
	}
	event.Msg(w.Error())
}

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewZerologProvider(os.Stderr, LevelInfo)
)

// SetProvider replaces the global provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetLogger returns the default logger of the global provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a component logger of the global provider.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// SetupLogger installs a zerolog provider writing to stderr and routes
// errors.Warn through it. With console set, output is human-readable
// instead of JSON.
func SetupLogger(level string, console bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stderr
	if console {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	p := NewZerologProvider(w, lvl)
	SetProvider(p)
	errors.SetZerologWarnFunc(p.warn)
	return nil
}
