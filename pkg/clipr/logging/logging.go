// Package logging provides component-scoped structured logging for clipr.
// CLI subcommands and the TUI share one log file under $XDG_STATE_HOME.
//
// Basic usage:
//
//	if err := logging.Init(logging.DefaultConfig()); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	logging.Get("ledger").Info("entry stored", "id", id)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) charm() log.Level {
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

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	// Rotation configures log file rotation.
	Rotation RotationConfig

	// Components maps component names to level overrides.
	Components map[string]string

	// ConsoleLevel mirrors records at or above this level to stderr.
	// Empty disables console output. Ignored in TUI mode.
	ConsoleLevel string

	// TUIMode keeps stderr quiet and records entries in a ring buffer
	// so the interface can surface them in its status line.
	TUIMode bool
}

// LogEntry is a single record kept in the TUI ring buffer.
type LogEntry struct {
	Time      time.Time
	Level     Level
	Component string
	Message   string
}

// Logger wraps charmbracelet/log with a component name.
type Logger struct {
	file      *log.Logger
	console   *log.Logger
	component string
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) { l.emit(LevelDebug, msg, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) { l.emit(LevelInfo, msg, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) { l.emit(LevelWarn, msg, args...) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) { l.emit(LevelError, msg, args...) }

// With returns a logger that attaches the given key/value pairs to every record.
func (l *Logger) With(args ...interface{}) *Logger {
	child := &Logger{file: l.file.With(args...), component: l.component}
	if l.console != nil {
		child.console = l.console.With(args...)
	}
	return child
}

func (l *Logger) emit(level Level, msg string, args ...interface{}) {
	write(l.file, level, msg, args...)
	if l.console != nil {
		write(l.console, level, msg, args...)
	}

	// Only records that pass the file logger's level reach the buffer.
	if level.charm() < l.file.GetLevel() {
		return
	}
	if buf := GetLogBuffer(); buf != nil {
		buf.Add(LogEntry{
			Time:      time.Now(),
			Level:     level,
			Component: l.component,
			Message:   msg,
		})
	}
}

func write(logger *log.Logger, level Level, msg string, args ...interface{}) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, args...)
	case LevelInfo:
		logger.Info(msg, args...)
	case LevelWarn:
		logger.Warn(msg, args...)
	case LevelError:
		logger.Error(msg, args...)
	}
}

// registry holds the process-wide logging configuration.
type registry struct {
	mu          sync.RWMutex
	initialized bool
	writer      *RotatingWriter
	level       Level
	overrides   map[string]Level
	loggers     map[string]*Logger
	console     bool
	consoleLvl  Level
	buffer      *LogBuffer
}

var global = &registry{
	overrides: make(map[string]Level),
	loggers:   make(map[string]*Logger),
}

// Init configures logging. Loggers obtained before Init write to io.Discard
// and are rebuilt in place so package-level loggers pick up the new sinks.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	overrides := make(map[string]Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		overrides[comp] = parsed
	}

	var consoleLvl Level
	console := cfg.ConsoleLevel != "" && !cfg.TUIMode
	if console {
		if consoleLvl, err = ParseLevel(cfg.ConsoleLevel); err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	writer, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if global.writer != nil {
		_ = global.writer.Close()
	}
	global.writer = writer
	global.level = level
	global.overrides = overrides
	global.console = console
	global.consoleLvl = consoleLvl
	global.buffer = nil
	if cfg.TUIMode {
		global.buffer = NewLogBuffer(DefaultBufferSize)
	}
	global.initialized = true

	for comp, logger := range global.loggers {
		*logger = *global.build(comp)
	}
	return nil
}

// Get returns the logger for a component, creating it on first use.
func Get(component string) *Logger {
	global.mu.RLock()
	logger, ok := global.loggers[component]
	global.mu.RUnlock()
	if ok {
		return logger
	}

	global.mu.Lock()
	defer global.mu.Unlock()
	if logger, ok := global.loggers[component]; ok {
		return logger
	}
	logger = global.build(component)
	global.loggers[component] = logger
	return logger
}

// build creates a logger for component. Must be called with mu held.
func (r *registry) build(component string) *Logger {
	level := r.level
	if override, ok := r.overrides[component]; ok {
		level = override
	}

	if !r.initialized {
		return &Logger{
			file:      log.NewWithOptions(io.Discard, log.Options{Level: level.charm(), Prefix: component}),
			component: component,
		}
	}

	logger := &Logger{
		file: log.NewWithOptions(r.writer, log.Options{
			Level:           level.charm(),
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		}),
		component: component,
	}
	if r.console {
		logger.console = log.NewWithOptions(os.Stderr, log.Options{
			Level:           r.consoleLvl.charm(),
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Prefix:          component,
		})
	}
	return logger
}

// Close flushes and closes the log file. Existing loggers fall back to io.Discard.
func Close() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	if !global.initialized {
		return nil
	}
	global.initialized = false
	global.buffer = nil
	for comp, logger := range global.loggers {
		*logger = *global.build(comp)
	}

	if global.writer == nil {
		return nil
	}
	err := global.writer.Close()
	global.writer = nil
	if err != nil {
		return fmt.Errorf("closing log writer: %w", err)
	}
	return nil
}

// GetLogBuffer returns the TUI ring buffer, or nil outside TUI mode.
func GetLogBuffer() *LogBuffer {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.buffer
}

// DefaultLogPath returns $XDG_STATE_HOME/clipr/clipr.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "clipr", "clipr.log")
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Path:     DefaultLogPath(),
		Rotation: DefaultRotationConfig(),
	}
}
