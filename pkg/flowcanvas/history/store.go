// Package history provides persistent storage for named workflows: the
// structural projection plus metadata, with an append-only version history
// per workflow.
package history

import (
	"context"
	"errors"
	"time"
)

// Meta is the metadata stored alongside a workflow definition.
type Meta struct {
	ID          string
	Name        string
	Description string
	NodeCount   int
	EdgeCount   int
	IsSystem    bool
	UpdatedAt   time.Time
}

// Version is one entry in a workflow's version history.
type Version struct {
	Version    int
	SavedAt    time.Time
	Definition []byte
}

// Store persists workflows. Implementations must be safe for concurrent
// use. Definitions are opaque serialized structural projections; the store
// never interprets them.
type Store interface {
	// Save upserts a workflow and appends a version history entry.
	Save(ctx context.Context, meta Meta, definition []byte) error

	// Load retrieves the latest definition and metadata for a workflow.
	// Returns ErrNotFound for unknown ids.
	Load(ctx context.Context, id string) (Meta, []byte, error)

	// List returns metadata for all stored workflows, most recently
	// updated first.
	List(ctx context.Context) ([]Meta, error)

	// Versions returns a workflow's version history in ascending order.
	// Returns an empty slice (not an error) for unknown ids.
	Versions(ctx context.Context, id string) ([]Version, error)

	// Delete removes a workflow and its version history.
	// Returns nil if the workflow doesn't exist.
	Delete(ctx context.Context, id string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates the workflow doesn't exist.
	ErrNotFound = errors.New("workflow not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("history store closed")
)
