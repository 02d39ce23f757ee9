package postid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type counterFile struct {
	LastID int64 `json:"last_id"`
}

// FileBackend stores the counter as {"last_id": N} in a JSON file.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend writing to path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// LoadCounter implements Backend.
func (f *FileBackend) LoadCounter(_ context.Context) (int64, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read counter: %w", err)
	}
	var c counterFile
	if err := json.Unmarshal(data, &c); err != nil {
		return 0, fmt.Errorf("decode counter: %w", err)
	}
	return c.LastID, nil
}

// SaveCounter implements Backend. The file is replaced atomically.
func (f *FileBackend) SaveCounter(_ context.Context, last int64) error {
	data, err := json.MarshalIndent(counterFile{LastID: last}, "", "    ")
	if err != nil {
		return fmt.Errorf("encode counter: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create counter directory: %w", err)
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write counter: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename counter: %w", err)
	}
	return nil
}
