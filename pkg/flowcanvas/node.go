package flowcanvas

import "time"

// NodeStatus is the execution status of a single canvas node.
type NodeStatus string

// Node execution statuses.
const (
	StatusIdle      NodeStatus = "idle"
	StatusPending   NodeStatus = "pending"
	StatusRunning   NodeStatus = "running"
	StatusCompleted NodeStatus = "completed"
	StatusError     NodeStatus = "error"
)

// Position is a node's location on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is the store-owned record for one canvas node.
//
// The id is stable for the node's lifetime. The type should match a catalog
// spec; when it doesn't, the node is treated as unknown and rendered via the
// placeholder path rather than rejected.
type Node struct {
	ID       string
	Type     string
	Position Position

	// Inputs holds the node's parameter map. Its shape depends on Type.
	Inputs map[string]any

	// Outputs holds values produced by execution. Nil until executed.
	Outputs map[string]any

	Status NodeStatus

	// Error is set only when Status is StatusError.
	Error string

	// ManualInput toggles test mode: the node accepts ad-hoc input values
	// instead of requiring an upstream connection.
	ManualInput bool
}

// Clone returns a deep copy of the node. Parameter and output maps are
// copied recursively so callers can't alias store-owned state.
func (n Node) Clone() Node {
	c := n
	c.Inputs = cloneMap(n.Inputs)
	c.Outputs = cloneMap(n.Outputs)
	return c
}

// cloneMap deep-copies a JSON-shaped map (maps, slices, scalars).
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}

// Edge connects an output port of one node to an input port of another.
// Handles are optional; an edge without handles is type-agnostic and is not
// validated against ports.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Touches reports whether the edge is incident to the node id.
func (e Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// BucketItem is one file in a bucket node's pool. It carries either inline
// content or a storage reference with a time-limited signed URL.
//
// Items are owned by the store's bucket cache; nodes reference them by id
// through their parameter maps, never by holding the item itself.
type BucketItem struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	AddedAt time.Time `json:"added_at"`

	// Inline content, if the item was added directly.
	Content []byte `json:"content,omitempty"`

	// Storage reference, if the item lives in the file store.
	FileID    string    `json:"file_id,omitempty"`
	SignedURL string    `json:"signed_url,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// URLExpired reports whether the item's signed URL is past its expiry.
// Items with inline content never expire.
func (b BucketItem) URLExpired(now time.Time) bool {
	if b.SignedURL == "" || b.ExpiresAt.IsZero() {
		return false
	}
	return now.After(b.ExpiresAt)
}
