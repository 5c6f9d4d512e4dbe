package history

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists workflows to PostgreSQL. Suitable for deployments
// where several processes share one workflow library.
type PostgresStore struct {
	pool   *pgxpool.Pool
	mu     sync.RWMutex
	closed bool
}

// NewPostgresStore creates a Postgres workflow store and ensures the schema
// exists. connString is a standard Postgres connection string or URL.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS workflows (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			node_count INTEGER NOT NULL,
			edge_count INTEGER NOT NULL,
			is_system BOOLEAN NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			definition BYTEA NOT NULL
		)
	`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create workflows table: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS workflow_versions (
			workflow_id TEXT NOT NULL,
			version INTEGER NOT NULL,
			saved_at TIMESTAMPTZ NOT NULL,
			definition BYTEA NOT NULL,
			PRIMARY KEY (workflow_id, version)
		)
	`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create versions table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Save implements Store.
func (p *PostgresStore) Save(ctx context.Context, meta Meta, definition []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrStoreClosed
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO workflows (id, name, description, node_count, edge_count, is_system, updated_at, definition)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			node_count = EXCLUDED.node_count,
			edge_count = EXCLUDED.edge_count,
			is_system = EXCLUDED.is_system,
			updated_at = NOW(),
			definition = EXCLUDED.definition
	`, meta.ID, meta.Name, meta.Description, meta.NodeCount, meta.EdgeCount, meta.IsSystem, definition)
	if err != nil {
		return fmt.Errorf("save workflow: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO workflow_versions (workflow_id, version, saved_at, definition)
		SELECT $1, COALESCE(MAX(version), 0) + 1, NOW(), $2
		FROM workflow_versions WHERE workflow_id = $1
	`, meta.ID, definition)
	if err != nil {
		return fmt.Errorf("save workflow version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load implements Store.
func (p *PostgresStore) Load(ctx context.Context, id string) (Meta, []byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return Meta{}, nil, ErrStoreClosed
	}

	var (
		meta Meta
		def  []byte
	)
	err := p.pool.QueryRow(ctx, `
		SELECT id, name, description, node_count, edge_count, is_system, updated_at, definition
		FROM workflows WHERE id = $1
	`, id).Scan(&meta.ID, &meta.Name, &meta.Description, &meta.NodeCount, &meta.EdgeCount, &meta.IsSystem, &meta.UpdatedAt, &def)

	if errors.Is(err, pgx.ErrNoRows) {
		return Meta{}, nil, ErrNotFound
	}
	if err != nil {
		return Meta{}, nil, fmt.Errorf("load workflow: %w", err)
	}
	return meta, def, nil
}

// List implements Store.
func (p *PostgresStore) List(ctx context.Context) ([]Meta, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrStoreClosed
	}

	rows, err := p.pool.Query(ctx, `
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
		var meta Meta
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.Description, &meta.NodeCount, &meta.EdgeCount, &meta.IsSystem, &meta.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workflow meta: %w", err)
		}
		metas = append(metas, meta)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflows: %w", err)
	}
	return metas, nil
}

// Versions implements Store.
func (p *PostgresStore) Versions(ctx context.Context, id string) ([]Version, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrStoreClosed
	}

	rows, err := p.pool.Query(ctx, `
		SELECT version, saved_at, definition
		FROM workflow_versions
		WHERE workflow_id = $1
		ORDER BY version
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.Version, &v.SavedAt, &v.Definition); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

// Delete implements Store.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrStoreClosed
	}

	if _, err := p.pool.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if _, err := p.pool.Exec(ctx, `DELETE FROM workflow_versions WHERE workflow_id = $1`, id); err != nil {
		return fmt.Errorf("delete workflow versions: %w", err)
	}
	return nil
}

// Close implements Store.
func (p *PostgresStore) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	p.pool.Close()
	return nil
}
