package benchmarks

import (
	"fmt"
	"testing"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/catalog"
)

// buildWorkflow creates a chain of n text generation nodes with one dangling
// edge per 10 to exercise the sanitizer's removal path.
func buildWorkflow(n int) ([]flowcanvas.Node, []flowcanvas.Edge) {
	nodes := make([]flowcanvas.Node, 0, n)
	edges := make([]flowcanvas.Edge, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("node-%d", i)
		nodes = append(nodes, flowcanvas.Node{
			ID:     id,
			Type:   catalog.TypeTextGeneration,
			Inputs: map[string]any{"preset_id": "p", "tone": "neutral"},
		})
		if i > 0 {
			edges = append(edges, flowcanvas.Edge{
				ID:           fmt.Sprintf("edge-%d", i),
				Source:       fmt.Sprintf("node-%d", i-1),
				Target:       id,
				SourceHandle: "generated_text",
				TargetHandle: "context",
			})
		}
		if i%10 == 0 {
			edges = append(edges, flowcanvas.Edge{
				ID:     fmt.Sprintf("dangling-%d", i),
				Source: id,
				Target: "deleted-node",
			})
		}
	}
	return nodes, edges
}

// BenchmarkSanitizeEdges_Clean measures sanitizing a graph with nothing to
// remove.
func BenchmarkSanitizeEdges_Clean(b *testing.B) {
	nodes, edges := buildWorkflow(100)
	cat := catalog.Default()
	clean, _ := flowcanvas.SanitizeEdges(nodes, edges, cat)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = flowcanvas.SanitizeEdges(nodes, clean, cat)
	}
}

// BenchmarkSanitizeEdges_Dirty measures sanitizing a graph with dangling
// edges to prune.
func BenchmarkSanitizeEdges_Dirty(b *testing.B) {
	nodes, edges := buildWorkflow(100)
	cat := catalog.Default()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = flowcanvas.SanitizeEdges(nodes, edges, cat)
	}
}

// BenchmarkExportStructure measures the structural projection.
func BenchmarkExportStructure(b *testing.B) {
	store := flowcanvas.NewStore(nil)
	nodes, edges := buildWorkflow(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.ExportStructure(nodes, edges)
	}
}

// BenchmarkExportForExecution measures the executable projection including
// the sanitize pass.
func BenchmarkExportForExecution(b *testing.B) {
	store := flowcanvas.NewStore(nil)
	nodes, edges := buildWorkflow(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.ExportForExecution(nodes, edges)
	}
}

// BenchmarkImportStructure measures rehydrating a saved definition.
func BenchmarkImportStructure(b *testing.B) {
	store := flowcanvas.NewStore(nil)
	nodes, edges := buildWorkflow(100)
	g := store.ExportStructure(nodes, edges)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.ImportStructure(g)
	}
}

// BenchmarkStoreUpdateNode measures one patch application including the
// deep-equality no-op check.
func BenchmarkStoreUpdateNode(b *testing.B) {
	store := flowcanvas.NewStore(nil)
	id := store.AddNode(catalog.TypeTextGeneration, flowcanvas.Position{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tone := "neutral"
		if i%2 == 0 {
			tone = "formal"
		}
		store.UpdateNode(id, flowcanvas.Patch{
			Inputs: map[string]any{"preset_id": "", "tone": tone},
		})
	}
}
