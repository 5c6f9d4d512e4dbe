package canvas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/canvas"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/catalog"
)

func TestCreateNodeWritesStoreAndCanvas(t *testing.T) {
	store := flowcanvas.NewStore(nil)
	a := canvas.NewAdapter(store)

	id := a.CreateNode(catalog.TypeTextGeneration, flowcanvas.Position{X: 100, Y: 50})

	n, ok := store.Node(id)
	require.True(t, ok)
	assert.Equal(t, catalog.TypeTextGeneration, n.Type)

	local := a.Nodes()
	require.Len(t, local, 1)
	assert.Equal(t, id, local[0].ID)
	assert.Equal(t, flowcanvas.Position{X: 100, Y: 50}, local[0].Position)
}

func TestRemoveNodeCascadesIncidentEdges(t *testing.T) {
	store := flowcanvas.NewStore(nil)
	a := canvas.NewAdapter(store)

	n := a.CreateNode(catalog.TypeTextGeneration, flowcanvas.Position{})
	m := a.CreateNode(catalog.TypeLinkedInPost, flowcanvas.Position{})
	p := a.CreateNode(catalog.TypeImageBucket, flowcanvas.Position{})
	q := a.CreateNode(catalog.TypeImageGeneration, flowcanvas.Position{})

	a.Connect(flowcanvas.Edge{ID: "e1", Source: n, Target: m})
	a.Connect(flowcanvas.Edge{ID: "e2", Source: m, Target: n})
	a.Connect(flowcanvas.Edge{ID: "e3", Source: p, Target: q})

	a.ApplyNodeChanges([]canvas.NodeChange{{Type: canvas.NodeRemove, NodeID: n}})

	// Every edge touching the removed node goes, in either direction.
	edges := a.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "e3", edges[0].ID)

	_, ok := store.Node(n)
	assert.False(t, ok)
	assert.Len(t, a.Nodes(), 3)
}

func TestApplyNodeChangesInOrder(t *testing.T) {
	store := flowcanvas.NewStore(nil)
	a := canvas.NewAdapter(store)

	id := a.CreateNode(catalog.TypeTextGeneration, flowcanvas.Position{})

	selected := true
	a.ApplyNodeChanges([]canvas.NodeChange{
		{Type: canvas.NodePosition, NodeID: id, Position: &flowcanvas.Position{X: 10}},
		{Type: canvas.NodeSelect, NodeID: id, Selected: &selected},
		{Type: canvas.NodePosition, NodeID: id, Position: &flowcanvas.Position{X: 30}},
	})

	local := a.Nodes()
	require.Len(t, local, 1)
	assert.Equal(t, float64(30), local[0].Position.X, "later changes win within a batch")
	assert.True(t, local[0].Selected)
}

func TestApplyNodeChangesRemoveThenMove(t *testing.T) {
	store := flowcanvas.NewStore(nil)
	a := canvas.NewAdapter(store)
	id := a.CreateNode(catalog.TypeTextGeneration, flowcanvas.Position{})

	// A move arriving after the remove in the same batch targets a node
	// that no longer exists; it must not resurrect it.
	a.ApplyNodeChanges([]canvas.NodeChange{
		{Type: canvas.NodeRemove, NodeID: id},
		{Type: canvas.NodePosition, NodeID: id, Position: &flowcanvas.Position{X: 99}},
	})

	assert.Empty(t, a.Nodes())
	assert.Zero(t, store.Len())
}

func TestApplyEdgeChanges(t *testing.T) {
	store := flowcanvas.NewStore(nil)
	a := canvas.NewAdapter(store)

	n := a.CreateNode(catalog.TypeTextGeneration, flowcanvas.Position{})
	m := a.CreateNode(catalog.TypeLinkedInPost, flowcanvas.Position{})

	a.ApplyEdgeChanges([]canvas.EdgeChange{
		{Type: canvas.EdgeAdd, EdgeID: "e1", Edge: &flowcanvas.Edge{Source: n, Target: m}},
		{Type: canvas.EdgeAdd, Edge: &flowcanvas.Edge{ID: "e2", Source: m, Target: n}},
		{Type: canvas.EdgeRemove, EdgeID: "e2"},
	})

	edges := a.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "e1", edges[0].ID)
}

func TestConnectGeneratesID(t *testing.T) {
	store := flowcanvas.NewStore(nil)
	a := canvas.NewAdapter(store)

	id := a.Connect(flowcanvas.Edge{Source: "a", Target: "b"})
	assert.NotEmpty(t, id)

	edges := a.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, id, edges[0].ID)
}

func TestLoadGraphReplacesEverything(t *testing.T) {
	store := flowcanvas.NewStore(nil)
	a := canvas.NewAdapter(store)
	a.CreateNode(catalog.TypeTextGeneration, flowcanvas.Position{})
	a.Connect(flowcanvas.Edge{ID: "stale", Source: "x", Target: "y"})

	a.LoadGraph(flowcanvas.Graph{
		Nodes: []flowcanvas.GraphNode{
			{ID: "n1", Type: catalog.TypeImageBucket, Position: flowcanvas.Position{X: 1}},
			{ID: "n2", Type: "retired_node_type", Position: flowcanvas.Position{X: 2}},
		},
		Edges: []flowcanvas.Edge{{ID: "e1", Source: "n1", Target: "n2"}},
	})

	assert.Equal(t, 2, store.Len())
	assert.Len(t, a.Nodes(), 2)

	edges := a.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "e1", edges[0].ID)
}

func TestRenderNodesRemapsUnknownTypes(t *testing.T) {
	store := flowcanvas.NewStore(nil)
	a := canvas.NewAdapter(store)

	a.LoadGraph(flowcanvas.Graph{
		Nodes: []flowcanvas.GraphNode{
			{ID: "known", Type: catalog.TypeTextGeneration},
			{ID: "legacy", Type: "retired_node_type"},
		},
	})

	rendered := a.RenderNodes()
	require.Len(t, rendered, 2)

	byID := make(map[string]canvas.RenderNode, len(rendered))
	for _, rn := range rendered {
		byID[rn.ID] = rn
	}

	assert.Equal(t, catalog.TypeTextGeneration, byID["known"].Type)
	assert.Empty(t, byID["known"].OriginalType)

	assert.Equal(t, catalog.PlaceholderType, byID["legacy"].Type)
	assert.Equal(t, "retired_node_type", byID["legacy"].OriginalType)

	// The remap is render-only; the stored record keeps its type.
	n, ok := store.Node("legacy")
	require.True(t, ok)
	assert.Equal(t, "retired_node_type", n.Type)
}

func TestSnapshotMergesPositions(t *testing.T) {
	store := flowcanvas.NewStore(nil)
	a := canvas.NewAdapter(store)

	id := a.CreateNode(catalog.TypeTextGeneration, flowcanvas.Position{})
	a.ApplyNodeChanges([]canvas.NodeChange{
		{Type: canvas.NodePosition, NodeID: id, Position: &flowcanvas.Position{X: 400, Y: 250}},
	})

	nodes, _ := a.Snapshot()
	require.Len(t, nodes, 1)
	assert.Equal(t, flowcanvas.Position{X: 400, Y: 250}, nodes[0].Position)
	// Parameter state rides along from the store record.
	assert.Equal(t, "neutral", nodes[0].Inputs["tone"])
}

func TestEdgeColorFromSourcePort(t *testing.T) {
	store := flowcanvas.NewStore(nil)
	a := canvas.NewAdapter(store)

	gen := a.CreateNode(catalog.TypeTextGeneration, flowcanvas.Position{})
	post := a.CreateNode(catalog.TypeLinkedInPost, flowcanvas.Position{})
	a.Connect(flowcanvas.Edge{ID: "e1", Source: gen, Target: post, SourceHandle: "generated_text"})

	colors := a.EdgeColors()
	assert.Equal(t, canvas.Palette[catalog.TypeText], colors["e1"])
}

func TestEdgeColorFirstOutputWhenNoHandle(t *testing.T) {
	store := flowcanvas.NewStore(nil)
	a := canvas.NewAdapter(store)

	bucket := a.CreateNode(catalog.TypeImageBucket, flowcanvas.Position{})
	gen := a.CreateNode(catalog.TypeImageGeneration, flowcanvas.Position{})
	a.Connect(flowcanvas.Edge{ID: "e1", Source: bucket, Target: gen})

	colors := a.EdgeColors()
	assert.Equal(t, canvas.Palette[catalog.TypeImageRef], colors["e1"])
}

func TestEdgeColorTestModeOverride(t *testing.T) {
	store := flowcanvas.NewStore(nil)
	a := canvas.NewAdapter(store)

	gen := a.CreateNode(catalog.TypeTextGeneration, flowcanvas.Position{})
	post := a.CreateNode(catalog.TypeLinkedInPost, flowcanvas.Position{})
	a.Connect(flowcanvas.Edge{ID: "e1", Source: gen, Target: post, SourceHandle: "generated_text"})

	manual := true
	store.UpdateNode(post, flowcanvas.Patch{ManualInput: &manual})

	colors := a.EdgeColors()
	assert.Equal(t, canvas.NeutralColor, colors["e1"], "test mode on either endpoint overrides the type color")

	// Turning test mode off restores the type-derived color.
	manual = false
	store.UpdateNode(post, flowcanvas.Patch{ManualInput: &manual})
	colors = a.EdgeColors()
	assert.Equal(t, canvas.Palette[catalog.TypeText], colors["e1"])
}

func TestEdgeColorFallbacks(t *testing.T) {
	store := flowcanvas.NewStore(nil)
	a := canvas.NewAdapter(store)

	a.LoadGraph(flowcanvas.Graph{
		Nodes: []flowcanvas.GraphNode{
			{ID: "legacy", Type: "retired_node_type"},
			{ID: "post", Type: catalog.TypeLinkedInPost},
		},
		Edges: []flowcanvas.Edge{
			{ID: "unknown-src", Source: "legacy", Target: "post"},
			{ID: "missing-src", Source: "gone", Target: "post"},
		},
	})

	colors := a.EdgeColors()
	assert.Equal(t, canvas.DefaultColor, colors["unknown-src"])
	assert.Equal(t, canvas.DefaultColor, colors["missing-src"])
}

func TestRenderEdgesDoNotMutateEdgeRecords(t *testing.T) {
	store := flowcanvas.NewStore(nil)
	a := canvas.NewAdapter(store)

	gen := a.CreateNode(catalog.TypeTextGeneration, flowcanvas.Position{})
	post := a.CreateNode(catalog.TypeLinkedInPost, flowcanvas.Position{})
	a.Connect(flowcanvas.Edge{ID: "e1", Source: gen, Target: post})

	before := a.Edges()
	_ = a.RenderEdges()
	after := a.Edges()

	assert.Equal(t, before, after)
}
