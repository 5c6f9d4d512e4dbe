// Package canvas glues the rendering library's local node/edge arrays to
// the workflow store.
//
// The adapter owns render state: node positions, selection, and the edge
// array. Node parameter state stays in the store; the adapter's job is to
// keep the two consistent as change events arrive from the renderer, and to
// present a coherent graph even when the underlying data is not (unknown
// node types, edges left dangling by type changes).
package canvas

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/catalog"
)

// Node is the adapter's render record for one canvas node.
type Node struct {
	ID       string
	Type     string
	Position flowcanvas.Position
	Selected bool
}

// RenderNode is a Node as handed to the renderer. Unresolvable types have
// been remapped to the placeholder, with the original type kept for
// display.
type RenderNode struct {
	Node

	// OriginalType is the node's stored type when Type was remapped to
	// catalog.PlaceholderType; empty otherwise.
	OriginalType string
}

// Adapter synchronizes render state with a workflow store. It is the
// single writer of edge and position state; node records are only ever
// written through the store.
type Adapter struct {
	mu     sync.Mutex
	store  *flowcanvas.Store
	logger *slog.Logger

	nodes []Node
	edges []flowcanvas.Edge
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAdapter creates an adapter bound to a store.
func NewAdapter(store *flowcanvas.Store, opts ...Option) *Adapter {
	a := &Adapter{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CreateNode adds a node of the given type to both the store and the
// canvas, as when one is dropped from the sidebar. Returns the new id.
func (a *Adapter) CreateNode(nodeType string, pos flowcanvas.Position) string {
	id := a.store.AddNode(nodeType, pos)

	a.mu.Lock()
	a.nodes = append(a.nodes, Node{ID: id, Type: nodeType, Position: pos})
	a.mu.Unlock()
	return id
}

// LoadGraph replaces both the store contents and the canvas state with an
// imported structural graph. Unknown node types survive the load; they are
// remapped only at render time.
func (a *Adapter) LoadGraph(g flowcanvas.Graph) {
	nodes, edges := a.store.ImportStructure(g)
	a.store.ReplaceAll(nodes)

	local := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		local = append(local, Node{ID: n.ID, Type: n.Type, Position: n.Position})
	}

	a.mu.Lock()
	a.nodes = local
	a.edges = make([]flowcanvas.Edge, len(edges))
	copy(a.edges, edges)
	a.mu.Unlock()
}

// Connect adds an edge to the canvas. A missing id is generated.
func (a *Adapter) Connect(e flowcanvas.Edge) string {
	if e.ID == "" {
		e.ID = "edge-" + uuid.NewString()
	}

	a.mu.Lock()
	a.edges = append(a.edges, e)
	a.mu.Unlock()
	return e.ID
}

// Nodes returns a snapshot of the adapter's render nodes.
func (a *Adapter) Nodes() []Node {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Node, len(a.nodes))
	copy(out, a.nodes)
	return out
}

// Edges returns a snapshot of the adapter's edge array.
func (a *Adapter) Edges() []flowcanvas.Edge {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]flowcanvas.Edge, len(a.edges))
	copy(out, a.edges)
	return out
}

// Snapshot merges store node records with the adapter's positions,
// producing the node/edge sets handed to the export functions at save and
// execute boundaries.
func (a *Adapter) Snapshot() ([]flowcanvas.Node, []flowcanvas.Edge) {
	a.mu.Lock()
	local := make([]Node, len(a.nodes))
	copy(local, a.nodes)
	edges := make([]flowcanvas.Edge, len(a.edges))
	copy(edges, a.edges)
	a.mu.Unlock()

	nodes := make([]flowcanvas.Node, 0, len(local))
	for _, ln := range local {
		n, ok := a.store.Node(ln.ID)
		if !ok {
			continue
		}
		n.Position = ln.Position
		nodes = append(nodes, n)
	}
	return nodes, edges
}

// RenderNodes returns the node array for the renderer. Types the catalog
// cannot resolve are remapped to the placeholder so stale or corrupted
// saved graphs still render; the original type rides along for display.
func (a *Adapter) RenderNodes() []RenderNode {
	cat := a.store.Catalog()

	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]RenderNode, 0, len(a.nodes))
	for _, n := range a.nodes {
		rn := RenderNode{Node: n}
		if !cat.Has(n.Type) {
			rn.OriginalType = n.Type
			rn.Type = catalog.PlaceholderType
		}
		out = append(out, rn)
	}
	return out
}
