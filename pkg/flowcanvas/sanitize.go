package flowcanvas

import "github.com/flowcanvas/flowcanvas/pkg/flowcanvas/catalog"

// SanitizeEdges removes edges that no longer have a valid shape: edges
// whose endpoints are absent from the node set, or whose handles reference
// ports that do not exist on the endpoint's current catalog spec (after a
// type change, or after the catalog evolved).
//
// Rules, per edge:
//   - source or target id missing from nodes: dropped
//   - sourceHandle set but not an output port key of the source's spec: dropped
//   - targetHandle set but not an input port key of the target's spec: dropped
//   - no handle set: not validated against ports (type-agnostic)
//
// An endpoint whose type is unknown to the catalog has no ports, so any
// handle against it fails.
//
// The function is pure and idempotent: running it on its own output removes
// zero additional edges. Output order is the input order minus removed
// entries (stable filter, not a re-sort).
func SanitizeEdges(nodes []Node, edges []Edge, cat *catalog.Catalog) (valid []Edge, removed int) {
	types := make(map[string]string, len(nodes))
	for _, n := range nodes {
		types[n.ID] = n.Type
	}

	valid = make([]Edge, 0, len(edges))
	for _, e := range edges {
		srcType, srcOK := types[e.Source]
		tgtType, tgtOK := types[e.Target]
		if !srcOK || !tgtOK {
			removed++
			continue
		}
		if e.SourceHandle != "" && !hasOutputPort(cat, srcType, e.SourceHandle) {
			removed++
			continue
		}
		if e.TargetHandle != "" && !hasInputPort(cat, tgtType, e.TargetHandle) {
			removed++
			continue
		}
		valid = append(valid, e)
	}
	return valid, removed
}

func hasOutputPort(cat *catalog.Catalog, nodeType, key string) bool {
	spec, ok := cat.Get(nodeType)
	return ok && spec.HasOutput(key)
}

func hasInputPort(cat *catalog.Catalog, nodeType, key string) bool {
	spec, ok := cat.Get(nodeType)
	return ok && spec.HasInput(key)
}
