package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory workflow store for testing and the local
// stub backend. Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	metas  map[string]Meta
	latest map[string][]byte
	vers   map[string][]Version
	closed bool
}

// NewMemoryStore creates a new in-memory workflow store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		metas:  make(map[string]Meta),
		latest: make(map[string][]byte),
		vers:   make(map[string][]Version),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, meta Meta, definition []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	// Copy to avoid retaining the caller's slice.
	stored := make([]byte, len(definition))
	copy(stored, definition)

	meta.UpdatedAt = time.Now().UTC()
	m.metas[meta.ID] = meta
	m.latest[meta.ID] = stored
	m.vers[meta.ID] = append(m.vers[meta.ID], Version{
		Version:    len(m.vers[meta.ID]) + 1,
		SavedAt:    meta.UpdatedAt,
		Definition: stored,
	})
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, id string) (Meta, []byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Meta{}, nil, ErrStoreClosed
	}

	meta, ok := m.metas[id]
	if !ok {
		return Meta{}, nil, ErrNotFound
	}

	def := m.latest[id]
	out := make([]byte, len(def))
	copy(out, def)
	return meta, out, nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context) ([]Meta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	out := make([]Meta, 0, len(m.metas))
	for _, meta := range m.metas {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Versions implements Store.
func (m *MemoryStore) Versions(_ context.Context, id string) ([]Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	vers := m.vers[id]
	out := make([]Version, len(vers))
	copy(out, vers)
	return out, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.metas, id)
	delete(m.latest, id)
	delete(m.vers, id)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.metas = nil
	m.latest = nil
	m.vers = nil
	return nil
}

// Len returns the number of stored workflows. Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.metas)
}
