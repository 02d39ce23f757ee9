package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tg_scanner/internal/config"
	"tg_scanner/internal/model"
	"tg_scanner/internal/postid"
	"tg_scanner/internal/storage"
)

// app carries what every command needs once the root command has loaded the
// configuration.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	logCloser io.Closer

	httpClient *http.Client
	now        func() time.Time
}

func newApp() *app {
	return &app{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		now:        time.Now,
	}
}

// today returns the run time in UTC; it names the day's collection.
func (a *app) today() time.Time {
	return a.now().UTC()
}

func (a *app) dayKey() string {
	return model.DayKey(a.today())
}

// openStore returns the configured post store and the backend of the post
// ID counter.
func (a *app) openStore(ctx context.Context) (storage.Storage, postid.Backend, error) {
	switch a.cfg.StorageBackend {
	case config.BackendSQLite:
		if dir := filepath.Dir(a.cfg.DatabasePath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, nil, fmt.Errorf("create data directory: %w", err)
			}
		}
		s, err := storage.NewSQLite(ctx, a.cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		return s, s, nil
	default:
		return storage.NewJSONFiles(a.cfg.PostsDir, a.log), postid.NewFileBackend(a.cfg.CounterFile), nil
	}
}

// todaysPosts returns the collection of the current UTC day.
func (a *app) todaysPosts(ctx context.Context) ([]model.Post, error) {
	store, _, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	posts, err := store.List(ctx, a.dayKey())
	if err != nil {
		return nil, fmt.Errorf("load posts for %s: %w", a.dayKey(), err)
	}
	return posts, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
