// Package cleanup removes stale output files.
package cleanup

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches every file directly inside a directory.
const DefaultPattern = "*"

// Cleaner deletes files older than a cutoff.
type Cleaner struct {
	maxAge  time.Duration
	pattern string
	log     *slog.Logger
	now     func() time.Time
}

// New creates a Cleaner deleting files older than maxAge whose names match
// pattern (doublestar syntax, relative to the cleaned directory).
func New(maxAge time.Duration, pattern string, log *slog.Logger) *Cleaner {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &Cleaner{
		maxAge:  maxAge,
		pattern: pattern,
		log:     log,
		now:     time.Now,
	}
}

// Clean deletes stale files in dir and returns how many were removed.
// A missing directory is logged and not an error.
func (c *Cleaner) Clean(dir string) (int, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.log.Warn("directory not found", "dir", dir)
			return 0, nil
		}
		return 0, fmt.Errorf("stat %s: %w", dir, err)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), c.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return 0, fmt.Errorf("match files in %s: %w", dir, err)
	}

	cutoff := c.now().Add(-c.maxAge)
	removed := 0
	for _, name := range matches {
		path := filepath.Join(dir, filepath.FromSlash(name))
		info, err := os.Stat(path)
		if err != nil {
			c.log.Error("stat file", "path", path, "error", err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		c.log.Info("deleting file", "path", path)
		if err := os.Remove(path); err != nil {
			c.log.Error("delete file", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
