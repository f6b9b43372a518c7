package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Verbosity levels
const (
	LevelQuiet = iota // Default: only errors and warnings
	LevelInfo         // -v: phase transitions, cache hits, inference latency
	LevelDebug        // -vv: upstream calls, state machine transitions
	LevelTrace        // -vvv: prompts, response sizes, stream writes
)

const slogLevelTrace = slog.Level(-8)

var (
	mu         sync.Mutex
	verbosity  int
	logger     *slog.Logger
	output     io.Writer
	inProgress bool
)

func slogLevel(level int) slog.Level {
	switch {
	case level >= LevelTrace:
		return slogLevelTrace
	case level >= LevelDebug:
		return slog.LevelDebug
	case level >= LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// Initialize sets up the global text logger with the specified verbosity level.
func Initialize(level int, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	verbosity = level
	output = w
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel(level)}))
}

// InitializeJSON sets up the global logger to emit JSON lines. Used by the
// long-running server where logs are shipped rather than read.
func InitializeJSON(level int, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	verbosity = level
	output = w
	logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel(level)}))
}

// With returns a child logger carrying the given attributes. The child
// honours the global verbosity at the time of the call.
func With(args ...any) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger.With(args...)
}

// Info logs at info level (-v)
func Info(msg string, args ...any) {
	if IsInfo() {
		emit(slog.LevelInfo, msg, args...)
	}
}

// Debug logs at debug level (-vv)
func Debug(msg string, args ...any) {
	if IsDebug() {
		emit(slog.LevelDebug, msg, args...)
	}
}

// Trace logs at trace level (-vvv)
func Trace(msg string, args ...any) {
	if IsTrace() {
		emit(slogLevelTrace, msg, args...)
	}
}

// Warn logs at warn level (always visible)
func Warn(msg string, args ...any) {
	emit(slog.LevelWarn, msg, args...)
}

// Error logs at error level (always visible)
func Error(msg string, args ...any) {
	emit(slog.LevelError, msg, args...)
}

func emit(level slog.Level, msg string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	clearProgress()
	logger.Log(context.Background(), level, msg, args...)
}

// Progress rewrites the current terminal line with a status message.
// Log lines emitted while a progress line is open start on a fresh line.
func Progress(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	inProgress = true
	_, _ = fmt.Fprintf(output, "\r\033[K"+format, args...)
}

// ProgressClear clears the current progress line
func ProgressClear() {
	mu.Lock()
	defer mu.Unlock()
	if inProgress {
		_, _ = fmt.Fprint(output, "\r\033[K")
		inProgress = false
	}
}

// clearProgress keeps log lines from overwriting a progress line.
// Callers hold mu.
func clearProgress() {
	if inProgress {
		_, _ = fmt.Fprintln(output)
		inProgress = false
	}
}

// IsInfo returns true if info-level logging is enabled
func IsInfo() bool {
	return Verbosity() >= LevelInfo
}

// IsDebug returns true if debug-level logging is enabled
func IsDebug() bool {
	return Verbosity() >= LevelDebug
}

// IsTrace returns true if trace-level logging is enabled
func IsTrace() bool {
	return Verbosity() >= LevelTrace
}

// Verbosity returns the current verbosity level
func Verbosity() int {
	mu.Lock()
	defer mu.Unlock()
	return verbosity
}

func init() {
	output = os.Stderr
	verbosity = LevelQuiet
	logger = slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}
