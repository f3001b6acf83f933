// Package logger provides the leveled logger shared by taskdeck components.
// Output is discarded unless a log file is configured, so the TUI is never
// written over.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Level represents a log level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of a log level
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

func (l Level) logrus() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ParseLevel parses a log level string
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

// Fields is an alias so callers don't import logrus directly.
type Fields = log.Fields

// Logger wraps a logrus logger with the printf-style API used across the
// codebase.
type Logger struct {
	mu    sync.Mutex
	level Level
	entry *log.Logger
	file  *os.File
}

// Default is the default logger instance
var Default *Logger

func init() {
	Default = New()
}

// New creates a new logger based on environment variables
func New() *Logger {
	// Discard by default so nothing lands on the terminal
	base := log.New()
	base.SetOutput(io.Discard)
	base.SetFormatter(&log.TextFormatter{DisableColors: true, FullTimestamp: true})

	l := &Logger{level: LevelInfo, entry: base}

	// Get log level from environment
	if levelStr := os.Getenv("TASKDECK_LOG_LEVEL"); levelStr != "" {
		if level, err := ParseLevel(levelStr); err == nil {
			l.level = level
		}
	}
	base.SetLevel(l.level.logrus())

	// Get log file from environment
	if logFile := os.Getenv("TASKDECK_LOG_FILE"); logFile != "" {
		_ = l.openFile(logFile)
	}

	return l
}

// Configure applies values from the config file. Empty values leave the
// current setting alone.
func (l *Logger) Configure(level, file string) error {
	if level != "" {
		lv, err := ParseLevel(level)
		if err != nil {
			return err
		}
		l.SetLevel(lv)
	}
	if file != "" {
		return l.openFile(file)
	}
	return nil
}

func (l *Logger) openFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	// Replace any previously opened file
	if l.file != nil {
		_ = l.file.Close()
	}
	l.file = f
	l.entry.SetOutput(f)
	return nil
}

// Close closes the logger and any open file handles
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.entry.SetOutput(io.Discard)
		return err
	}
	return nil
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.entry.SetLevel(level.logrus())
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entry.SetOutput(w)
}

// WithFields returns a logrus entry carrying structured fields.
func (l *Logger) WithFields(fields Fields) *log.Entry {
	return l.entry.WithFields(fields)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.entry.Debugf(format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.entry.Infof(format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.entry.Warnf(format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.entry.Errorf(format, v...)
}

// Package-level functions that use the default logger

// Debug logs a debug message using the default logger
func Debug(format string, v ...interface{}) {
	Default.Debug(format, v...)
}

// Info logs an info message using the default logger
func Info(format string, v ...interface{}) {
	Default.Info(format, v...)
}

// Warn logs a warning message using the default logger
func Warn(format string, v ...interface{}) {
	Default.Warn(format, v...)
}

// Error logs an error message using the default logger
func Error(format string, v ...interface{}) {
	Default.Error(format, v...)
}

// WithFields returns an entry on the default logger.
func WithFields(fields Fields) *log.Entry {
	return Default.WithFields(fields)
}

// Close closes the default logger
func Close() error {
	return Default.Close()
}
