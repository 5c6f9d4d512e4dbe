package canvas

import (
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/catalog"
)

// Edge colors. Palette entries are fixed per runtime type; NeutralColor
// marks test-mode edges and DefaultColor is the fallback when a type cannot
// be resolved.
const (
	NeutralColor = "#94a3b8"
	DefaultColor = "#9ca3af"
)

// Palette maps each runtime type to its edge color.
var Palette = map[catalog.RuntimeType]string{
	catalog.TypeText:     "#22c55e",
	catalog.TypeImageRef: "#3b82f6",
	catalog.TypeAudioRef: "#f59e0b",
	catalog.TypeVideoRef: "#a855f7",
	catalog.TypeJSON:     "#ef4444",
}

// RenderEdge is an edge plus its derived presentation color.
type RenderEdge struct {
	flowcanvas.Edge
	Color string
}

// RenderEdges returns the edge array with derived colors. The color is a
// computed view over current state, recomputed on every call; edge records
// are never mutated to carry presentation data.
//
// Color rules, in order:
//  1. either endpoint in test mode (manual input enabled): NeutralColor
//  2. source output port's runtime type resolvable: its Palette entry
//  3. otherwise: DefaultColor
func (a *Adapter) RenderEdges() []RenderEdge {
	a.mu.Lock()
	edges := make([]flowcanvas.Edge, len(a.edges))
	copy(edges, a.edges)
	types := make(map[string]string, len(a.nodes))
	for _, n := range a.nodes {
		types[n.ID] = n.Type
	}
	a.mu.Unlock()

	out := make([]RenderEdge, 0, len(edges))
	for _, e := range edges {
		out = append(out, RenderEdge{Edge: e, Color: a.edgeColor(e, types)})
	}
	return out
}

// EdgeColors returns the derived color per edge id.
func (a *Adapter) EdgeColors() map[string]string {
	colors := make(map[string]string)
	for _, re := range a.RenderEdges() {
		colors[re.ID] = re.Color
	}
	return colors
}

func (a *Adapter) edgeColor(e flowcanvas.Edge, types map[string]string) string {
	if a.manualInput(e.Source) || a.manualInput(e.Target) {
		return NeutralColor
	}

	srcType, ok := types[e.Source]
	if !ok {
		return DefaultColor
	}
	spec, ok := a.store.Catalog().Get(srcType)
	if !ok {
		return DefaultColor
	}

	var port catalog.OutputPort
	if e.SourceHandle != "" {
		port, ok = spec.OutputPort(e.SourceHandle)
		if !ok {
			return DefaultColor
		}
	} else if len(spec.Outputs) > 0 {
		port = spec.Outputs[0]
	} else {
		return DefaultColor
	}

	if color, ok := Palette[port.Type]; ok {
		return color
	}
	return DefaultColor
}

func (a *Adapter) manualInput(nodeID string) bool {
	n, ok := a.store.Node(nodeID)
	return ok && n.ManualInput
}
