// Package logging provides the run logger of cardflow.
// Entries go to the run output (stderr in a workflow) and, when configured,
// are appended to a log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/runoshun/cardflow/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger writes leveled, issue-scoped log lines.
// Fields are ordered to minimize memory padding.
type Logger struct {
	out   io.Writer
	file  *os.File
	now   func() time.Time
	runID string
	path  string
	mu    sync.Mutex
	level slog.Level
}

// New creates a Logger writing to out. A nil out discards console output.
// Every logger gets a fresh run ID so lines of concurrent runs can be told apart.
func New(out io.Writer, level slog.Level) *Logger {
	if out == nil {
		out = io.Discard
	}
	return &Logger{
		out:   out,
		level: level,
		now:   time.Now,
		runID: uuid.NewString()[:8],
	}
}

// WithFile additionally appends entries to the file at path.
// The file and its directory are created on first write.
func (l *Logger) WithFile(path string) *Logger {
	l.path = path
	return l
}

// RunID returns the short identifier stamped on every line.
func (l *Logger) RunID() string {
	return l.runID
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ensureFile opens or returns the log file. Callers hold l.mu.
func (l *Logger) ensureFile() (*os.File, error) {
	if l.file != nil {
		return l.file, nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	// G302: Log files are append-only and need read access by repository users
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.file = f
	return f, nil
}

// Close closes the log file, if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// formatLog formats a log entry.
// Format: [2025-12-30 09:32:51] [INFO] [3f2a9c1e] [issue-42] [category] message
func formatLog(t time.Time, level slog.Level, runID string, issue int, category, msg string) string {
	scope := "run"
	if issue > 0 {
		scope = fmt.Sprintf("issue-%d", issue)
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		runID,
		scope,
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (l *Logger) log(level slog.Level, issue int, category, msg string) {
	if level < l.level {
		return
	}

	entry := formatLog(l.now(), level, l.runID, issue, category, msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = io.WriteString(l.out, entry)
	if l.path == "" {
		return
	}
	if f, err := l.ensureFile(); err == nil {
		_, _ = io.WriteString(f, entry)
	}
}

// Info logs an info message.
func (l *Logger) Info(issue int, category, msg string) {
	l.log(slog.LevelInfo, issue, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(issue int, category, msg string) {
	l.log(slog.LevelDebug, issue, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(issue int, category, msg string) {
	l.log(slog.LevelWarn, issue, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(issue int, category, msg string) {
	l.log(slog.LevelError, issue, category, msg)
}
