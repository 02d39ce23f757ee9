// Package storage defines the persistence interface for daily post
// collections and its implementations.
package storage

import (
	"context"

	"tg_scanner/internal/model"
)

// Storage holds matched posts grouped by day key (DD-MM-YYYY, UTC).
//
// Implementations assume a single writer per run: Append on JSONFiles is a
// whole-collection read-modify-write, so concurrent processes appending to the
// same day can lose writes.
type Storage interface {
	// Append adds post to the end of the collection for dayKey, creating it
	// if needed.
	Append(ctx context.Context, dayKey string, post model.Post) error
	// List returns the collection for dayKey in append order.
	List(ctx context.Context, dayKey string) ([]model.Post, error)
	// Exists reports whether a collection for dayKey has been written.
	Exists(ctx context.Context, dayKey string) (bool, error)

	Close() error
}
