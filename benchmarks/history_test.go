package benchmarks

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/history"
)

func sampleDefinition(b *testing.B) []byte {
	b.Helper()
	nodes, edges := buildWorkflow(50)
	data, err := json.Marshal(map[string]any{"nodes": nodes, "edges": edges})
	if err != nil {
		b.Fatal(err)
	}
	return data
}

// BenchmarkMemoryStore_Save measures in-memory workflow save.
func BenchmarkMemoryStore_Save(b *testing.B) {
	store := history.NewMemoryStore()
	defer store.Close()
	def := sampleDefinition(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Save(ctx, history.Meta{ID: "wf", Name: "bench"}, def)
	}
}

// BenchmarkMemoryStore_Load measures in-memory workflow load.
func BenchmarkMemoryStore_Load(b *testing.B) {
	store := history.NewMemoryStore()
	defer store.Close()
	def := sampleDefinition(b)
	ctx := context.Background()
	_ = store.Save(ctx, history.Meta{ID: "wf", Name: "bench"}, def)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = store.Load(ctx, "wf")
	}
}

// BenchmarkSQLiteStore_Save measures SQLite workflow save.
func BenchmarkSQLiteStore_Save(b *testing.B) {
	store, err := history.NewSQLiteStore(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	def := sampleDefinition(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Save(ctx, history.Meta{ID: "wf", Name: "bench"}, def)
	}
}

// BenchmarkSQLiteStore_Load measures SQLite workflow load.
func BenchmarkSQLiteStore_Load(b *testing.B) {
	store, err := history.NewSQLiteStore(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	def := sampleDefinition(b)
	ctx := context.Background()
	_ = store.Save(ctx, history.Meta{ID: "wf", Name: "bench"}, def)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = store.Load(ctx, "wf")
	}
}
