package flowcanvas

// Graph is the serialized projection of a workflow: the shape saved to and
// loaded from the backend, and the payload handed to the remote executor.
//
// Two projections share this type. The structural projection (save/load)
// keeps id, type, position and only the persist-worthy parameter subset per
// node type. The executable projection carries the complete parameter map
// and has been passed through the edge sanitizer.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []Edge      `json:"edges"`
}

// GraphNode is the serialized form of one node.
type GraphNode struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position Position       `json:"position"`
	Data     map[string]any `json:"data"`
}

// NodeCount returns the number of nodes in the graph.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges in the graph.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// NodeResult is the per-node outcome reported by the remote executor.
type NodeResult struct {
	NodeID          string         `json:"node_id"`
	NodeType        string         `json:"node_type"`
	Status          string         `json:"status"`
	Outputs         map[string]any `json:"outputs,omitempty"`
	Error           string         `json:"error,omitempty"`
	ExecutionTimeMS int64          `json:"execution_time_ms"`
}

// ExecutionResult is the remote executor's response for one run.
//
// A successful result may still carry PersistenceWarning: the run finished
// but could not be durably recorded. Callers must surface that separately
// from both success and error states.
type ExecutionResult struct {
	Success              bool           `json:"success"`
	WorkflowOutputs      map[string]any `json:"workflow_outputs,omitempty"`
	NodeResults          []NodeResult   `json:"node_results"`
	TotalExecutionTimeMS int64          `json:"total_execution_time_ms"`
	Error                string         `json:"error,omitempty"`
	PersistenceWarning   string         `json:"persistence_warning,omitempty"`
}
