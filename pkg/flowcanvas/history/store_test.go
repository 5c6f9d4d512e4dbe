package history_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/history"
)

// Compile-time checks: every implementation satisfies Store.
var (
	_ history.Store = (*history.MemoryStore)(nil)
	_ history.Store = (*history.SQLiteStore)(nil)
	_ history.Store = (*history.PostgresStore)(nil)
)

// runStoreTests exercises the Store contract against any implementation.
func runStoreTests(t *testing.T, store history.Store) {
	ctx := context.Background()

	t.Run("load missing returns ErrNotFound", func(t *testing.T) {
		_, _, err := store.Load(ctx, "nope")
		assert.ErrorIs(t, err, history.ErrNotFound)
	})

	t.Run("save and load round trip", func(t *testing.T) {
		meta := history.Meta{
			ID:        "wf-1",
			Name:      "Quote Pipeline",
			NodeCount: 3,
			EdgeCount: 2,
		}
		require.NoError(t, store.Save(ctx, meta, []byte(`{"nodes":[]}`)))

		got, def, err := store.Load(ctx, "wf-1")
		require.NoError(t, err)
		assert.Equal(t, "Quote Pipeline", got.Name)
		assert.Equal(t, 3, got.NodeCount)
		assert.Equal(t, 2, got.EdgeCount)
		assert.False(t, got.IsSystem)
		assert.False(t, got.UpdatedAt.IsZero())
		assert.JSONEq(t, `{"nodes":[]}`, string(def))
	})

	t.Run("save again appends a version", func(t *testing.T) {
		meta := history.Meta{ID: "wf-1", Name: "Quote Pipeline v2", NodeCount: 4, EdgeCount: 3}
		require.NoError(t, store.Save(ctx, meta, []byte(`{"nodes":["a"]}`)))

		got, def, err := store.Load(ctx, "wf-1")
		require.NoError(t, err)
		assert.Equal(t, "Quote Pipeline v2", got.Name)
		assert.JSONEq(t, `{"nodes":["a"]}`, string(def))

		versions, err := store.Versions(ctx, "wf-1")
		require.NoError(t, err)
		require.Len(t, versions, 2)
		assert.Equal(t, 1, versions[0].Version)
		assert.Equal(t, 2, versions[1].Version)
		assert.JSONEq(t, `{"nodes":[]}`, string(versions[0].Definition))
		assert.JSONEq(t, `{"nodes":["a"]}`, string(versions[1].Definition))
	})

	t.Run("versions of unknown workflow is empty", func(t *testing.T) {
		versions, err := store.Versions(ctx, "nope")
		require.NoError(t, err)
		assert.Empty(t, versions)
	})

	t.Run("list includes all workflows", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, history.Meta{ID: "wf-2", Name: "Other", IsSystem: true}, []byte(`{}`)))

		metas, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, metas, 2)
		// wf-2 was saved last, so newest-first ordering puts it first.
		assert.Equal(t, "wf-2", metas[0].ID)
		assert.True(t, metas[0].IsSystem)
		assert.Equal(t, "wf-1", metas[1].ID)
	})

	t.Run("delete removes workflow and history", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "wf-2"))

		_, _, err := store.Load(ctx, "wf-2")
		assert.ErrorIs(t, err, history.ErrNotFound)

		versions, err := store.Versions(ctx, "wf-2")
		require.NoError(t, err)
		assert.Empty(t, versions)
	})

	t.Run("delete of unknown workflow is a no-op", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "never-existed"))
	})
}

func TestMemoryStore(t *testing.T) {
	store := history.NewMemoryStore()
	defer store.Close()

	runStoreTests(t, store)
}

func TestMemoryStoreClosed(t *testing.T) {
	store := history.NewMemoryStore()
	require.NoError(t, store.Close())

	err := store.Save(context.Background(), history.Meta{ID: "x"}, nil)
	assert.ErrorIs(t, err, history.ErrStoreClosed)

	_, _, err = store.Load(context.Background(), "x")
	assert.ErrorIs(t, err, history.ErrStoreClosed)
}

func TestMemoryStoreCopiesDefinition(t *testing.T) {
	store := history.NewMemoryStore()
	defer store.Close()

	def := []byte(`{"nodes":[]}`)
	require.NoError(t, store.Save(context.Background(), history.Meta{ID: "wf"}, def))

	// Mutating the caller's slice must not affect the stored copy.
	def[0] = 'X'

	_, got, err := store.Load(context.Background(), "wf")
	require.NoError(t, err)
	assert.Equal(t, byte('{'), got[0])
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflows.db")
	store, err := history.NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	runStoreTests(t, store)
}

func TestSQLiteStoreClosed(t *testing.T) {
	store, err := history.NewSQLiteStore(filepath.Join(t.TempDir(), "workflows.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close()) // idempotent

	saveErr := store.Save(context.Background(), history.Meta{ID: "x"}, nil)
	assert.ErrorIs(t, saveErr, history.ErrStoreClosed)

	_, listErr := store.List(context.Background())
	assert.ErrorIs(t, listErr, history.ErrStoreClosed)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "workflows.db")

	store, err := history.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, history.Meta{ID: "wf", Name: "Durable"}, []byte(`{}`)))
	require.NoError(t, store.Close())

	reopened, err := history.NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	meta, _, err := reopened.Load(ctx, "wf")
	require.NoError(t, err)
	assert.Equal(t, "Durable", meta.Name)
}
