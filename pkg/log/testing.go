package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// TestLogger records every entry as a JSON line in memory. Loggers derived
// with With write to the same buffer under the same lock, so one TestLogger
// can be handed to concurrent workers.
type TestLogger struct {
	mu     *sync.Mutex
	buffer *bytes.Buffer
	level  Level
	fields map[string]any
}

// NewTestLogger returns a logger that keeps entries at level and above, and
// the buffer it writes to.
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	return &TestLogger{
		mu:     &sync.Mutex{},
		buffer: buffer,
		level:  level,
		fields: map[string]any{},
	}, buffer
}

func (t *TestLogger) Debug(msg string, fields ...any) { t.write(LevelDebug, msg, fields) }
func (t *TestLogger) Info(msg string, fields ...any)  { t.write(LevelInfo, msg, fields) }
func (t *TestLogger) Warn(msg string, fields ...any)  { t.write(LevelWarn, msg, fields) }
func (t *TestLogger) Error(msg string, fields ...any) { t.write(LevelError, msg, fields) }

// With returns a logger that adds fields to every entry.
func (t *TestLogger) With(fields ...any) Logger {
	merged := make(map[string]any, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		merged[k] = v
	}
	addPairs(merged, fields)
	return &TestLogger{mu: t.mu, buffer: t.buffer, level: t.level, fields: merged}
}

func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	return level >= t.level
}

func (t *TestLogger) write(level Level, msg string, fields []any) {
	if level < t.level {
		return
	}
	entry := map[string]any{"level": level.String(), "message": msg}
	for k, v := range t.fields {
		entry[k] = v
	}
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			entry[ErrorKey] = err.Error()
			fields = fields[1:]
		}
	}
	addPairs(entry, fields)

	line, _ := json.Marshal(entry)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buffer.Write(line)
	t.buffer.WriteByte('\n')
}

// addPairs stores key/value pairs in m; errors are stored as their message.
func addPairs(m map[string]any, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if err, ok := fields[i+1].(error); ok {
			m[key] = err.Error()
			continue
		}
		m[key] = fields[i+1]
	}
}

// GetLogEntries decodes the recorded lines.
func (t *TestLogger) GetLogEntries() ([]map[string]any, error) {
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(t.snapshot()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ContainsMessage reports whether any recorded line contains message.
func (t *TestLogger) ContainsMessage(message string) bool {
	return strings.Contains(t.snapshot(), message)
}

// ContainsField reports whether an entry has key set to value. Numbers are
// compared as float64 after JSON decoding.
func (t *TestLogger) ContainsField(key string, value any) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if v, ok := entry[key]; ok && v == value {
			return true
		}
	}
	return false
}

func (t *TestLogger) snapshot() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buffer.String()
}

// TestLoggerProvider hands out TestLoggers sharing one buffer, for tests
// that install it with SetProvider.
type TestLoggerProvider struct {
	logger *TestLogger
}

// NewTestLoggerProvider returns a provider and the buffer its loggers write to.
func NewTestLoggerProvider(level Level) (*TestLoggerProvider, *bytes.Buffer) {
	logger, buffer := NewTestLogger(level)
	return &TestLoggerProvider{logger: logger}, buffer
}

func (p *TestLoggerProvider) GetLogger() Logger { return p.logger }

func (p *TestLoggerProvider) GetLoggerWithName(name string) Logger {
	return p.logger.With(ComponentKey, name)
}

// SetLevel changes the level of loggers obtained afterwards.
func (p *TestLoggerProvider) SetLevel(level Level) {
	p.logger = &TestLogger{mu: p.logger.mu, buffer: p.logger.buffer, level: level, fields: p.logger.fields}
}
