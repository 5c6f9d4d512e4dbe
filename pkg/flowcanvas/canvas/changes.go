package canvas

import "github.com/flowcanvas/flowcanvas/pkg/flowcanvas"

// NodeChangeType classifies a node-change event from the renderer.
type NodeChangeType string

// Node change types.
const (
	NodeRemove   NodeChangeType = "remove"
	NodePosition NodeChangeType = "position"
	NodeSelect   NodeChangeType = "select"
)

// NodeChange is one node-change event from the rendering library.
type NodeChange struct {
	Type     NodeChangeType
	NodeID   string
	Position *flowcanvas.Position
	Selected *bool
}

// EdgeChangeType classifies an edge-change event from the renderer.
type EdgeChangeType string

// Edge change types.
const (
	EdgeAdd    EdgeChangeType = "add"
	EdgeRemove EdgeChangeType = "remove"
)

// EdgeChange is one edge-change event from the rendering library.
type EdgeChange struct {
	Type   EdgeChangeType
	EdgeID string
	Edge   *flowcanvas.Edge
}

// ApplyNodeChanges processes a batch of node-change events in the order
// received.
//
// Removals are intercepted before the change is applied locally: the node
// is deleted from the store first, then incident edges are dropped from the
// local edge array. That ordering guarantees a concurrent edge-coloring
// recomputation never dereferences a deleted node. Changes within a batch
// are never reordered.
func (a *Adapter) ApplyNodeChanges(changes []NodeChange) {
	for _, ch := range changes {
		switch ch.Type {
		case NodeRemove:
			a.removeNode(ch.NodeID)
		case NodePosition:
			if ch.Position != nil {
				a.moveNode(ch.NodeID, *ch.Position)
			}
		case NodeSelect:
			if ch.Selected != nil {
				a.selectNode(ch.NodeID, *ch.Selected)
			}
		}
	}
}

// removeNode cascades a renderer-initiated deletion: store record first,
// incident edges second, local node last.
func (a *Adapter) removeNode(id string) {
	a.store.RemoveNode(id)

	a.mu.Lock()
	defer a.mu.Unlock()

	kept := a.edges[:0]
	for _, e := range a.edges {
		if !e.Touches(id) {
			kept = append(kept, e)
		}
	}
	a.edges = kept

	for i, n := range a.nodes {
		if n.ID == id {
			a.nodes = append(a.nodes[:i], a.nodes[i+1:]...)
			break
		}
	}
}

func (a *Adapter) moveNode(id string, pos flowcanvas.Position) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.nodes {
		if a.nodes[i].ID == id {
			a.nodes[i].Position = pos
			return
		}
	}
}

func (a *Adapter) selectNode(id string, selected bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.nodes {
		if a.nodes[i].ID == id {
			a.nodes[i].Selected = selected
			return
		}
	}
}

// ApplyEdgeChanges processes a batch of edge-change events in order.
func (a *Adapter) ApplyEdgeChanges(changes []EdgeChange) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, ch := range changes {
		switch ch.Type {
		case EdgeAdd:
			if ch.Edge != nil {
				e := *ch.Edge
				if e.ID == "" {
					e.ID = ch.EdgeID
				}
				a.edges = append(a.edges, e)
			}
		case EdgeRemove:
			for i, e := range a.edges {
				if e.ID == ch.EdgeID {
					a.edges = append(a.edges[:i], a.edges[i+1:]...)
					break
				}
			}
		}
	}
}
