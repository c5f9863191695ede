// Package logging provides categorized file-based logging for windrose.
// Logs are written under <storage root>/logs/ with one file per category,
// backed by zap cores. Logging is a no-op unless debug mode is enabled in
// the config, so production runs leave no log footprint.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup and config loading
	CategorySession Category = "session" // Session lifecycle and status
	CategoryEngine  Category = "engine"  // Phase progression
	CategoryGateway Category = "gateway" // LLM provider calls
	CategoryStore   Category = "store"   // Persistence
	CategoryExport  Category = "export"  // Exporters
	CategoryTUI     Category = "tui"     // Terminal UI
)

// Logger wraps a zap sugared logger bound to one category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	loggers = make(map[Category]*Logger)
	logsDir string
	enabled bool
	level   zapcore.Level
	files   []*os.File
)

// Initialize sets up the logging directory. When debug is false every logger
// is a silent no-op and no directory is created.
func Initialize(root string, debug bool, levelName string) error {
	mu.Lock()
	defer mu.Unlock()

	enabled = debug
	if !enabled {
		return nil
	}
	if root == "" {
		return fmt.Errorf("storage root required")
	}

	switch levelName {
	case "debug":
		level = zapcore.DebugLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	logsDir = filepath.Join(root, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	get(CategoryBoot).Info("windrose logging initialized dir=%s level=%s", logsDir, level)
	return nil
}

// Close flushes and closes all open log files. Safe to call when logging is
// disabled.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		_ = l.sugar.Sync()
	}
	for _, f := range files {
		_ = f.Close()
	}
	loggers = make(map[Category]*Logger)
	files = nil
}

// Get returns the logger for a category, creating it on first use.
func Get(c Category) *Logger {
	mu.Lock()
	defer mu.Unlock()
	return get(c)
}

// get assumes mu is held.
func get(c Category) *Logger {
	if l, ok := loggers[c]; ok {
		return l
	}

	var core zapcore.Core
	if !enabled {
		core = zapcore.NewNopCore()
	} else {
		path := filepath.Join(logsDir, string(c)+".log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			core = zapcore.NewNopCore()
		} else {
			files = append(files, f)
			encCfg := zap.NewProductionEncoderConfig()
			encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
			core = zapcore.NewCore(
				zapcore.NewConsoleEncoder(encCfg),
				zapcore.Lock(f),
				level,
			)
		}
	}

	l := &Logger{
		category: c,
		sugar:    zap.New(core).Sugar().Named(string(c)),
	}
	loggers[c] = l
	return l
}

// Debug logs a printf-style debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs a printf-style info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a printf-style warning.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs a printf-style error.
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}
