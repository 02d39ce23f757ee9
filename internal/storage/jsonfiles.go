package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"tg_scanner/internal/model"
)

// JSONFiles implements Storage as one JSON array file per day in dir.
type JSONFiles struct {
	dir string
	log *slog.Logger

	mu sync.Mutex
}

// NewJSONFiles returns a JSONFiles store rooted at dir. The directory is
// created on first write.
func NewJSONFiles(dir string, log *slog.Logger) *JSONFiles {
	return &JSONFiles{dir: dir, log: log}
}

// Path returns the file holding the collection for dayKey.
func (s *JSONFiles) Path(dayKey string) string {
	return filepath.Join(s.dir, dayKey+".json")
}

// Append reads the whole collection, appends post and rewrites the file.
// An unreadable or corrupt collection is replaced by one holding only post.
func (s *JSONFiles) Append(_ context.Context, dayKey string, post model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.read(dayKey)
	if err != nil {
		s.log.Warn("existing collection unreadable, starting empty", "day", dayKey, "error", err)
		posts = nil
	}
	posts = append(posts, post)
	return s.write(dayKey, posts)
}

// List returns the collection for dayKey. A missing file yields no posts.
func (s *JSONFiles) List(_ context.Context, dayKey string) ([]model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(dayKey)
}

// Exists reports whether the file for dayKey is present.
func (s *JSONFiles) Exists(_ context.Context, dayKey string) (bool, error) {
	_, err := os.Stat(s.Path(dayKey))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat collection: %w", err)
	}
}

// Close is a no-op.
func (s *JSONFiles) Close() error {
	return nil
}

func (s *JSONFiles) read(dayKey string) ([]model.Post, error) {
	data, err := os.ReadFile(s.Path(dayKey))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read collection: %w", err)
	}
	var posts []model.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return posts, nil
}

func (s *JSONFiles) write(dayKey string, posts []model.Post) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create posts directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}

	target := s.Path(dayKey)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename collection: %w", err)
	}
	return nil
}
