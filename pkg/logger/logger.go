// Package logger provides a simple leveled logging interface for the application.
package logger

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Logger is a thin printf-style facade over charmbracelet/log. Modules depend
// on their own narrow Logger interfaces; this type satisfies all of them.
type Logger struct {
	l *charmlog.Logger
}

// New creates a Logger with the given level ("debug", "info", "warn", "error").
// An unknown level falls back to info.
func New(level string) *Logger {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		lvl = charmlog.InfoLevel
	}

	return &Logger{
		l: charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Level:           lvl,
			ReportTimestamp: true,
		}),
	}
}

// WithPrefix returns a Logger whose messages carry the given prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{l: l.l.WithPrefix(prefix)}
}

// Debug logs a message with the DEBUG level.
func (l *Logger) Debug(format string, args ...any) {
	l.l.Debugf(format, args...)
}

// Info logs a message with the INFO level.
func (l *Logger) Info(format string, args ...any) {
	l.l.Infof(format, args...)
}

// Warn logs a message with the WARN level.
func (l *Logger) Warn(format string, args ...any) {
	l.l.Warnf(format, args...)
}

// Error logs a message with the ERROR level.
func (l *Logger) Error(format string, args ...any) {
	l.l.Errorf(format, args...)
}
