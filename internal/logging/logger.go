// Package logging provides categorized file-based logging for the Absolute
// Solver. Logs are written under the state directory with one file per
// category per day. When tracing is disabled the whole package is a no-op,
// which keeps the hot paths (message XP, command dispatch) free of I/O.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config, shutdown
	CategoryGateway Category = "gateway" // Command dispatch, guards
	CategoryEconomy Category = "economy" // Ledger mutations, level-ups
	CategoryShop    Category = "shop"    // Purchases and sales
	CategoryRoles   Category = "roles"   // Role synchronization
	CategoryDrones  Category = "drones"  // Child bot lifecycle
	CategoryAPI     Category = "api"     // Discord / Gemini API calls
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	mu       sync.RWMutex
	loggers  = make(map[Category]*Logger)
	logsDir  string
	enabled  bool
	logLevel = LevelInfo
)

// Initialize sets up the logging directory. An empty dir or enable=false
// turns the package into a silent no-op.
func Initialize(dir string, enable bool, level string) error {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable
	logsDir = dir
	switch level {
	case "debug":
		logLevel = LevelDebug
	case "info", "":
		logLevel = LevelInfo
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}

	if !enabled || logsDir == "" {
		return nil
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}
	return nil
}

// Get returns (or creates) a logger for the given category. Returns a
// no-op logger when tracing is disabled or the file cannot be opened.
func Get(category Category) *Logger {
	mu.RLock()
	if !enabled || logsDir == "" {
		mu.RUnlock()
		return &Logger{category: category}
	}
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation a matter of deleting old files.
	filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), category)
	file, err := os.OpenFile(filepath.Join(logsDir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file for %s: %v\n", category, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes every open log file. Call at shutdown.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Convenience functions for the common categories.

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// Gateway logs to the gateway category.
func Gateway(format string, args ...interface{}) {
	Get(CategoryGateway).Info(format, args...)
}

// Economy logs to the economy category.
func Economy(format string, args ...interface{}) {
	Get(CategoryEconomy).Info(format, args...)
}

// RolesWarn logs a warning to the roles category. Role sync failures are
// warnings by policy: the ledger stays authoritative and the next sync
// retries.
func RolesWarn(format string, args ...interface{}) {
	Get(CategoryRoles).Warn(format, args...)
}

// Drones logs to the drones category.
func Drones(format string, args ...interface{}) {
	Get(CategoryDrones).Info(format, args...)
}
