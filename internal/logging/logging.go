// Package logging builds the process logger: every record goes to the console
// and is appended to a log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TimeLayout is the timestamp format of log lines.
const TimeLayout = "02-01-2006 15:04:05"

// ParseLevel maps a level name to a slog level; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to console and appending to the file at path.
// If the file cannot be opened the logger writes to console only. The returned
// closer releases the file and is always non-nil.
func New(level string, console io.Writer, path string) (*slog.Logger, io.Closer) {
	w := &teeWriter{console: console}

	if path != "" {
		f, err := openLogFile(path)
		if err != nil {
			fmt.Fprintf(console, "failed to open log file %s: %v\n", path, err)
		} else {
			w.file = f
		}
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: formatTime,
	})
	return slog.New(h), w
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // operator-supplied path
}

func formatTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(slog.TimeKey, a.Value.Time().Format(TimeLayout))
	}
	return a
}

// teeWriter writes to the console and, best effort, to the log file.
// A file write error is reported once on the console and never returned.
type teeWriter struct {
	console io.Writer

	mu       sync.Mutex
	file     io.WriteCloser
	reported bool
}

func (w *teeWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, _ = w.console.Write(p)
	if w.file != nil {
		if _, err := w.file.Write(p); err != nil && !w.reported {
			w.reported = true
			fmt.Fprintf(w.console, "failed to write to log file: %v\n", err)
		}
	}
	return len(p), nil
}

func (w *teeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
