package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// sqliteTimeLayout is fixed-width so lexicographic ORDER BY on the text
// column matches chronological order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore persists workflows to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite workflow store.
// The path should be a file path (e.g. "./workflows.db") or ":memory:"
// for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS workflows (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			node_count INTEGER NOT NULL,
			edge_count INTEGER NOT NULL,
			is_system INTEGER NOT NULL,
			updated_at TEXT NOT NULL,
			definition BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create workflows table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow_versions (
			workflow_id TEXT NOT NULL,
			version INTEGER NOT NULL,
			saved_at TEXT NOT NULL,
			definition BLOB NOT NULL,
			PRIMARY KEY (workflow_id, version)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create versions table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, meta Meta, definition []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	now := time.Now().UTC().Format(sqliteTimeLayout)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, description, node_count, edge_count, is_system, updated_at, definition)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			is_system = excluded.is_system,
			updated_at = excluded.updated_at,
			definition = excluded.definition
	`, meta.ID, meta.Name, meta.Description, meta.NodeCount, meta.EdgeCount, boolToInt(meta.IsSystem), now, definition)
	if err != nil {
		return fmt.Errorf("save workflow: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflow_versions (workflow_id, version, saved_at, definition)
		VALUES (
			?,
			COALESCE((SELECT MAX(version) FROM workflow_versions WHERE workflow_id = ?), 0) + 1,
			?, ?
		)
	`, meta.ID, meta.ID, now, definition)
	if err != nil {
		return fmt.Errorf("save workflow version: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, id string) (Meta, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Meta{}, nil, ErrStoreClosed
	}

	var (
		meta      Meta
		isSystem  int
		updatedAt string
		def       []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, node_count, edge_count, is_system, updated_at, definition
		FROM workflows WHERE id = ?
	`, id).Scan(&meta.ID, &meta.Name, &meta.Description, &meta.NodeCount, &meta.EdgeCount, &isSystem, &updatedAt, &def)

	if err == sql.ErrNoRows {
		return Meta{}, nil, ErrNotFound
	}
	if err != nil {
		return Meta{}, nil, fmt.Errorf("load workflow: %w", err)
	}

	meta.IsSystem = isSystem != 0
	meta.UpdatedAt, _ = time.Parse(sqliteTimeLayout, updatedAt)
	return meta, def, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, node_count, edge_count, is_system, updated_at
		FROM workflows
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var (
			meta      Meta
			isSystem  int
			updatedAt string
		)
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.Description, &meta.NodeCount, &meta.EdgeCount, &isSystem, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan workflow meta: %w", err)
		}
		meta.IsSystem = isSystem != 0
		meta.UpdatedAt, _ = time.Parse(sqliteTimeLayout, updatedAt)
		metas = append(metas, meta)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflows: %w", err)
	}
	return metas, nil
}

// Versions implements Store.
func (s *SQLiteStore) Versions(ctx context.Context, id string) ([]Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT version, saved_at, definition
		FROM workflow_versions
		WHERE workflow_id = ?
		ORDER BY version
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		var (
			v       Version
			savedAt string
		)
		if err := rows.Scan(&v.Version, &savedAt, &v.Definition); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		v.SavedAt, _ = time.Parse(sqliteTimeLayout, savedAt)
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM workflow_versions WHERE workflow_id = ?`, id); err != nil {
		return fmt.Errorf("delete workflow versions: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
