// Package postid provides the durable monotonic counter used to number posts.
//
// The counter is loaded once, advanced in memory for every accepted post and
// persisted once at the end of a run. A crash before Persist means the next
// run starts again from the last persisted value, so IDs of posts appended by
// the interrupted run can be reused.
package postid

import (
	"context"
	"log/slog"
	"sync"
)

// Backend is the durable storage behind an Allocator.
type Backend interface {
	// LoadCounter returns the last persisted value, or 0 if none exists.
	LoadCounter(ctx context.Context) (int64, error)
	SaveCounter(ctx context.Context, last int64) error
}

// Allocator hands out strictly increasing post IDs.
type Allocator struct {
	backend Backend
	log     *slog.Logger

	mu   sync.Mutex
	last int64
}

// New creates an Allocator over backend. Call Load before Next.
func New(backend Backend, log *slog.Logger) *Allocator {
	return &Allocator{backend: backend, log: log}
}

// Load reads the persisted counter. Missing or malformed state resets the
// counter to 0.
func (a *Allocator) Load(ctx context.Context) {
	last, err := a.backend.LoadCounter(ctx)
	if err != nil {
		a.log.Warn("load post counter, starting from 0", "error", err)
		last = 0
	}

	a.mu.Lock()
	a.last = last
	a.mu.Unlock()
	a.log.Debug("loaded post counter", "last_id", last)
}

// Next advances the counter and returns the new ID.
func (a *Allocator) Next() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last++
	return a.last
}

// Last returns the most recently allocated (or loaded) ID.
func (a *Allocator) Last() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Persist writes the current counter, replacing the previous value.
func (a *Allocator) Persist(ctx context.Context) error {
	return a.backend.SaveCounter(ctx, a.Last())
}
