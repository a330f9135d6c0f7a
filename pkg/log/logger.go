// Package log provides structured logging for nocodb-cli components.
package log

import (
	"os"
	"strings"
	"sync"
)

// Level represents the severity level of a log message.
type Level int

// Log levels
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. Unknown names map to InfoLevel.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger defines the logging interface for nocodb-cli components.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithComponent returns a logger that tags every entry with a component name.
	WithComponent(component string) Logger
	// WithFields returns a logger that includes the given fields in every entry.
	WithFields(fields ...Field) Logger

	SetLevel(level Level)
}

var (
	defaultLogger     Logger
	defaultLoggerOnce sync.Once
	defaultLoggerMu   sync.Mutex
)

// GetDefaultLogger returns the process-wide default logger, creating it on
// first use. Level is taken from NOCODB_LOG_LEVEL if set.
func GetDefaultLogger() Logger {
	defaultLoggerOnce.Do(func() {
		if defaultLogger == nil {
			l := NewLogger()
			if lvl, ok := os.LookupEnv("NOCODB_LOG_LEVEL"); ok {
				l.SetLevel(ParseLevel(lvl))
			}
			defaultLogger = l
		}
	})
	return defaultLogger
}

// SetDefaultLogger replaces the process-wide default logger. Intended for
// tests and embedding programs that bring their own logger.
func SetDefaultLogger(l Logger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLoggerOnce.Do(func() {})
	defaultLogger = l
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string, fields ...Field)     {}
func (n *nopLogger) Info(msg string, fields ...Field)      {}
func (n *nopLogger) Warn(msg string, fields ...Field)      {}
func (n *nopLogger) Error(msg string, fields ...Field)     {}
func (n *nopLogger) WithComponent(component string) Logger { return n }
func (n *nopLogger) WithFields(fields ...Field) Logger     { return n }
func (n *nopLogger) SetLevel(level Level)                  {}
