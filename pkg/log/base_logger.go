package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Format selects the output encoding of a BaseLogger.
type Format string

// Supported output formats
const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
)

// Options configures a BaseLogger.
type Options struct {
	Level  Level
	Format Format
	Output io.Writer
}

// BaseLogger is the standard Logger implementation. It writes one line per
// entry to a single output writer.
type BaseLogger struct {
	mu     sync.Mutex
	level  Level
	format Format
	out    io.Writer
	fields []Field
}

// NewLogger creates a text logger at InfoLevel writing to stderr.
func NewLogger() *BaseLogger {
	return NewLoggerWithOptions(Options{Level: InfoLevel, Format: TextFormat, Output: os.Stderr})
}

// NewLoggerWithOptions creates a logger with explicit options.
func NewLoggerWithOptions(opts Options) *BaseLogger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.Format == "" {
		opts.Format = TextFormat
	}
	return &BaseLogger{level: opts.Level, format: opts.Format, out: opts.Output}
}

// SetLevel sets the minimum level that will be emitted.
func (l *BaseLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Debug logs a message at DebugLevel.
func (l *BaseLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }

// Info logs a message at InfoLevel.
func (l *BaseLogger) Info(msg string, fields ...Field) { l.log(InfoLevel, msg, fields) }

// Warn logs a message at WarnLevel.
func (l *BaseLogger) Warn(msg string, fields ...Field) { l.log(WarnLevel, msg, fields) }

// Error logs a message at ErrorLevel.
func (l *BaseLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

// WithComponent returns a logger that tags every entry with a component name.
func (l *BaseLogger) WithComponent(component string) Logger {
	return l.WithFields(Component(component))
}

// WithFields returns a logger that includes the given fields in every entry.
func (l *BaseLogger) WithFields(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	child := &BaseLogger{level: l.level, format: l.format, out: l.out}
	child.fields = append(append([]Field{}, l.fields...), fields...)
	return child
}

func (l *BaseLogger) log(level Level, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	all := append(append([]Field{}, l.fields...), fields...)
	now := time.Now().UTC()

	switch l.format {
	case JSONFormat:
		entry := map[string]interface{}{
			"timestamp": now.Format(time.RFC3339Nano),
			"level":     level.String(),
			"message":   msg,
		}
		for _, f := range all {
			entry[f.Key] = f.Value
		}
		data, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(l.out, "{\"level\":\"ERROR\",\"message\":\"log entry marshal failed: %v\"}\n", err)
			return
		}
		fmt.Fprintln(l.out, string(data))
	default:
		var b strings.Builder
		b.WriteString(now.Format("2006-01-02T15:04:05.000Z"))
		b.WriteString(" ")
		b.WriteString(level.String())
		b.WriteString(" ")
		b.WriteString(msg)
		if len(all) > 0 {
			keys := make([]string, 0, len(all))
			values := make(map[string]interface{}, len(all))
			for _, f := range all {
				if _, seen := values[f.Key]; !seen {
					keys = append(keys, f.Key)
				}
				values[f.Key] = f.Value
			}
			sort.Strings(keys)
			for _, k := range keys {
				b.WriteString(fmt.Sprintf(" %s=%v", k, values[k]))
			}
		}
		fmt.Fprintln(l.out, b.String())
	}
}
