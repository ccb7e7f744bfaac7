// Package debug is the engine's debug logger, backed by log/slog.
// Disabled by default; the CLI enables it with --debug.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
	enabled bool
)

// Init routes debug logs to stderr when enable is true and discards
// them otherwise.
func Init(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = enable
	if enable {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// Enabled reports whether debug logging is on
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs at debug level
func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

// Info logs at info level
func Info(msg string, args ...any) {
	get().Info(msg, args...)
}

// Warn logs at warn level
func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

// Error logs at error level
func Error(msg string, args ...any) {
	get().Error(msg, args...)
}

// Logger returns the underlying slog logger
func Logger() *slog.Logger {
	return get()
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
