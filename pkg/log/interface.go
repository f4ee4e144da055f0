// Package log provides structured logging for the rule induction
// library. The Logger interface is slog-compatible so the backing
// implementation can be swapped; the default provider writes through
// zerolog. Components obtain named loggers from the package-level
// provider and attach the attribute keys defined in attributes.go:
//
//	logger := log.GetLoggerWithName("rules.furia")
//	logger.Debug("building stage",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, data.Len(),
//	)
package log

import "context"

// Logger is the structured logging interface of the library. Fields
// are alternating key-value pairs, as in log/slog.
type Logger interface {
	// Debug logs diagnostic detail, such as the per-rule progress of
	// a training run when the debug option is on.
	Debug(msg string, fields ...any)

	// Info logs operational information.
	Info(msg string, fields ...any)

	// Warn logs conditions that do not stop the operation.
	Warn(msg string, fields ...any)

	// Error logs error conditions. When the first field is an error
	// value it is attached as the event's structured error.
	Error(msg string, fields ...any)

	// With returns a logger that includes the given fields in every
	// subsequent record.
	With(fields ...any) Logger

	// Enabled reports whether a record at the given level would be
	// emitted, so callers can skip expensive field construction.
	Enabled(ctx context.Context, level Level) bool
}

// Level is a logging level, value-compatible with slog.Level.
type Level int

// Standard logging levels.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the level name.
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

// LoggerProvider creates and configures loggers. The package routes
// GetLogger/GetLoggerWithName/SetLevel through the installed provider;
// tests install a TestLoggerProvider to capture output.
type LoggerProvider interface {
	// GetLogger returns the default logger.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for loggers from this provider.
	SetLevel(level Level)
}
