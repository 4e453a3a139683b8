// Package store persists encoded session snapshots.
//
// A Store is keyed by session ID and holds opaque snapshot bytes produced by
// package snapshot. Implementations are safe for concurrent use.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store saves and loads session snapshots.
type Store interface {
	// Save inserts or replaces the snapshot of a session.
	Save(ctx context.Context, id uuid.UUID, snapshot []byte) error
	// Load returns the snapshot of a session, or errs.ErrSessionNotFound.
	Load(ctx context.Context, id uuid.UUID) ([]byte, error)
	// Delete removes a session, or returns errs.ErrSessionNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
	// List describes every stored session, ordered by ID.
	List(ctx context.Context) ([]Info, error)
	// Close releases resources. Later calls return errs.ErrStoreClosed.
	Close() error
}

// Info describes a stored session.
type Info struct {
	ID        uuid.UUID
	UpdatedAt time.Time
	Size      int
}
