package log

// Test support: a Logger that captures records as JSON lines in
// memory, and a matching LoggerProvider that tests can install with
// SetProvider to inspect what library code logs.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// TestLogger captures log records in memory. Loggers derived with With
// share the buffer, so one logger inspects everything a component
// tree emitted.
type TestLogger struct {
	mu     *sync.Mutex
	buffer *bytes.Buffer
	level  Level
	fields map[string]interface{}
}

// NewTestLogger creates a capturing logger with the given minimum
// level and returns it together with its backing buffer.
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	return &TestLogger{
		mu:     &sync.Mutex{},
		buffer: buffer,
		level:  level,
		fields: map[string]interface{}{},
	}, buffer
}

// Debug implements Logger.Debug.
func (t *TestLogger) Debug(msg string, fields ...any) { t.write(LevelDebug, msg, fields) }

// Info implements Logger.Info.
func (t *TestLogger) Info(msg string, fields ...any) { t.write(LevelInfo, msg, fields) }

// Warn implements Logger.Warn.
func (t *TestLogger) Warn(msg string, fields ...any) { t.write(LevelWarn, msg, fields) }

// Error implements Logger.Error. A leading error value is recorded
// under the "error" key, mirroring the zerolog provider.
func (t *TestLogger) Error(msg string, fields ...any) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{"error", err}, fields[1:]...)
		}
	}
	t.write(LevelError, msg, fields)
}

// With implements Logger.With. The derived logger shares the buffer.
func (t *TestLogger) With(fields ...any) Logger {
	merged := make(map[string]interface{}, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		merged[k] = v
	}
	addFields(merged, fields)
	return &TestLogger{mu: t.mu, buffer: t.buffer, level: t.level, fields: merged}
}

// Enabled implements Logger.Enabled.
func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	return t.level <= level
}

// write appends one JSON record when the level passes the filter.
func (t *TestLogger) write(level Level, msg string, fields []any) {
	if t.level > level {
		return
	}
	entry := map[string]interface{}{
		"level":   level.String(),
		"message": msg,
	}
	for k, v := range t.fields {
		entry[k] = v
	}
	addFields(entry, fields)

	line, _ := json.Marshal(entry)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buffer.Write(line)
	t.buffer.WriteByte('\n')
}

// addFields folds alternating key-value pairs into the entry. Error
// values are stored by message so records stay JSON-serializable.
func addFields(entry map[string]interface{}, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		if err, ok := fields[i+1].(error); ok {
			entry[key] = err.Error()
			continue
		}
		entry[key] = fields[i+1]
	}
}

// GetBuffer returns the backing buffer.
func (t *TestLogger) GetBuffer() *bytes.Buffer {
	return t.buffer
}

// GetLogEntries parses the captured output into one map per record.
func (t *TestLogger) GetLogEntries() ([]map[string]interface{}, error) {
	t.mu.Lock()
	captured := t.buffer.String()
	t.mu.Unlock()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(captured), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ContainsMessage reports whether any captured record contains the
// given text.
func (t *TestLogger) ContainsMessage(message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Contains(t.buffer.String(), message)
}

// ContainsField reports whether any captured record holds the field
// with the given value. Numeric values compare as float64, the way
// JSON decoding leaves them.
func (t *TestLogger) ContainsField(key string, value interface{}) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if fieldValue, ok := entry[key]; ok && fieldValue == value {
			return true
		}
	}
	return false
}

// Clear discards everything captured so far.
func (t *TestLogger) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buffer.Reset()
}

// TestLoggerProvider implements LoggerProvider over a single shared
// TestLogger.
type TestLoggerProvider struct {
	logger *TestLogger
}

// NewTestLoggerProvider creates a capturing provider and returns it
// with the shared buffer.
func NewTestLoggerProvider(level Level) (*TestLoggerProvider, *bytes.Buffer) {
	logger, buffer := NewTestLogger(level)
	return &TestLoggerProvider{logger: logger}, buffer
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *TestLoggerProvider) GetLogger() Logger {
	return p.logger
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *TestLoggerProvider) GetLoggerWithName(name string) Logger {
	return p.logger.With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *TestLoggerProvider) SetLevel(level Level) {
	p.logger.level = level
}

// GetBuffer returns the shared capture buffer.
func (p *TestLoggerProvider) GetBuffer() *bytes.Buffer {
	return p.logger.GetBuffer()
}
