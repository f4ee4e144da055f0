// Package log provides the zerolog-backed default implementation of
// the Logger interface defined in interface.go.

package log

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	l zerolog.Logger
}

// fieldsToMap pairs up the variadic key-value fields. A trailing value
// without a key is recorded under "!BADKEY", matching slog behavior.
func fieldsToMap(fields []any) map[string]interface{} {
	m := make(map[string]interface{}, len(fields)/2+1)
	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			m["!BADKEY"] = fields[i]
			break
		}
		key, ok := fields[i].(string)
		if !ok {
			m["!BADKEY"] = fields[i]
			continue
		}
		m[key] = fields[i+1]
	}
	return m
}

// Debug implements Logger.Debug.
func (z *zerologLogger) Debug(msg string, fields ...any) {
	z.l.Debug().Fields(fieldsToMap(fields)).Msg(msg)
}

// Info implements Logger.Info.
func (z *zerologLogger) Info(msg string, fields ...any) {
	z.l.Info().Fields(fieldsToMap(fields)).Msg(msg)
}

// Warn implements Logger.Warn.
func (z *zerologLogger) Warn(msg string, fields ...any) {
	z.l.Warn().Fields(fieldsToMap(fields)).Msg(msg)
}

// Error implements Logger.Error. When the first field is an error it is
// attached as the structured error of the event, together with the
// stack trace the error carries when it has one.
func (z *zerologLogger) Error(msg string, fields ...any) {
	ev := z.l.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			ev = ev.Err(err)
			if st := stackTraceOf(err); st != "" {
				ev = ev.Str(StacktraceKey, st)
			}
			fields = fields[1:]
		}
	}
	ev.Fields(fieldsToMap(fields)).Msg(msg)
}

// stackTraceOf extracts the stack trace recorded by cockroachdb/errors
// from the error's verbose rendering. Empty when the error carries
// none.
func stackTraceOf(err error) string {
	verbose := fmt.Sprintf("%+v", err)
	if idx := strings.Index(verbose, "stack trace:"); idx >= 0 {
		return strings.TrimSpace(verbose[idx+len("stack trace:"):])
	}
	return ""
}

// With implements Logger.With.
func (z *zerologLogger) With(fields ...any) Logger {
	return &zerologLogger{l: z.l.With().Fields(fieldsToMap(fields)).Logger()}
}

// Enabled implements Logger.Enabled.
func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return zerolog.Level(toZerologLevel(level)) >= zerolog.GlobalLevel()
}

func toZerologLevel(level Level) int8 {
	switch {
	case level <= LevelDebug:
		return int8(zerolog.DebugLevel)
	case level <= LevelInfo:
		return int8(zerolog.InfoLevel)
	case level <= LevelWarn:
		return int8(zerolog.WarnLevel)
	default:
		return int8(zerolog.ErrorLevel)
	}
}

// zerologProvider is the default LoggerProvider.
type zerologProvider struct {
	mu   sync.RWMutex
	root zerolog.Logger
}

func newZerologProvider() *zerologProvider {
	return &zerologProvider{
		root: zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *zerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{l: p.root}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{l: p.root.With().Str(ComponentKey, name).Logger()}
}

// SetLevel implements LoggerProvider.SetLevel for all loggers created
// by this provider.
func (p *zerologProvider) SetLevel(level Level) {
	zerolog.SetGlobalLevel(zerolog.Level(toZerologLevel(level)))
}

var (
	providerMu      sync.RWMutex
	defaultProvider LoggerProvider = newZerologProvider()
)

// SetProvider replaces the package-level logger provider. Useful for
// routing library logs into an application's own logging stack or a
// TestLoggerProvider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultProvider = p
}

// GetLogger returns the default logger.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns a named component logger.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level of the default provider.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	defaultProvider.SetLevel(level)
}
