package flowcanvas

// ExportStructure produces the structural projection used for save/load:
// position-preserving, parameter-light. For each node only the catalog's
// persist-worthy key subset of its inputs is serialized; large transient
// payloads never hit the backend.
//
// Nodes whose type the catalog does not know have no persist-key policy, so
// their full parameter map is kept. That keeps re-saving an imported legacy
// graph lossless.
func (s *Store) ExportStructure(nodes []Node, edges []Edge) Graph {
	out := Graph{
		Nodes: make([]GraphNode, 0, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	copy(out.Edges, edges)

	for _, n := range nodes {
		data := map[string]any{}
		if spec, ok := s.catalog.Get(n.Type); ok {
			for _, key := range spec.PersistKeys {
				if v, present := n.Inputs[key]; present {
					data[key] = cloneValue(v)
				}
			}
		} else {
			data = cloneMap(n.Inputs)
			if data == nil {
				data = map[string]any{}
			}
		}
		out.Nodes = append(out.Nodes, GraphNode{
			ID:       n.ID,
			Type:     n.Type,
			Position: n.Position,
			Data:     data,
		})
	}
	return out
}

// ImportStructure is the inverse of ExportStructure. Each serialized node
// is rehydrated with status reset to idle and outputs cleared; persisted
// parameters are layered over the catalog defaults for the type.
//
// Node types absent from the catalog are kept verbatim rather than
// rejected; the canvas adapter maps them to the placeholder at render time.
func (s *Store) ImportStructure(g Graph) ([]Node, []Edge) {
	nodes := make([]Node, 0, len(g.Nodes))
	for _, gn := range g.Nodes {
		inputs := map[string]any{}
		if spec, ok := s.catalog.Get(gn.Type); ok {
			inputs = cloneMap(spec.Defaults)
			if inputs == nil {
				inputs = map[string]any{}
			}
		}
		for k, v := range gn.Data {
			inputs[k] = cloneValue(v)
		}
		nodes = append(nodes, Node{
			ID:       gn.ID,
			Type:     gn.Type,
			Position: gn.Position,
			Inputs:   inputs,
			Status:   StatusIdle,
		})
	}

	edges := make([]Edge, len(g.Edges))
	copy(edges, g.Edges)
	return nodes, edges
}

// ExportForExecution produces the executable projection: every node carries
// its complete current parameter map (including bucket file selections),
// and the edge set has been passed through the sanitizer so the backend
// never sees a dangling connection.
//
// The removed count is reported so callers can show an informational notice
// when pruning healed an inconsistent graph.
func (s *Store) ExportForExecution(nodes []Node, edges []Edge) (Graph, int) {
	valid, removed := SanitizeEdges(nodes, edges, s.catalog)

	out := Graph{
		Nodes: make([]GraphNode, 0, len(nodes)),
		Edges: valid,
	}
	for _, n := range nodes {
		data := cloneMap(n.Inputs)
		if data == nil {
			data = map[string]any{}
		}
		out.Nodes = append(out.Nodes, GraphNode{
			ID:       n.ID,
			Type:     n.Type,
			Position: n.Position,
			Data:     data,
		})
	}
	return out, removed
}
