package flowcanvas

import (
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/catalog"
)

// ChangeKind identifies what a store notification is about.
type ChangeKind string

// Store change kinds.
const (
	ChangeNodeAdded       ChangeKind = "node_added"
	ChangeNodeUpdated     ChangeKind = "node_updated"
	ChangeNodeRemoved     ChangeKind = "node_removed"
	ChangeGraphReplaced   ChangeKind = "graph_replaced"
	ChangeBucketRefreshed ChangeKind = "bucket_refreshed"
)

// Change is the summary delivered to store subscribers after a mutation.
type Change struct {
	Kind       ChangeKind
	NodeID     string
	BucketType string
}

// Subscriber receives store change notifications. Notifications are
// synchronous and delivered in subscription order after the mutation has
// fully applied.
type Subscriber func(Change)

// Patch is a partial node update. Nil fields are left untouched.
//
// Inputs and Outputs, when non-nil, replace the node's map wholesale; the
// store does not deep-merge. Callers who want a merge read the node first
// and submit the merged map.
type Patch struct {
	Type        *string
	Position    *Position
	Inputs      map[string]any
	Outputs     map[string]any
	Status      *NodeStatus
	Error       *string
	ManualInput *bool
}

// Store is the authoritative container for workflow node state and the
// bucket file cache. It is the single writer of node records; every other
// component mutates nodes through it.
//
// The store is explicit and injectable rather than ambient: construct one
// with NewStore and hand it to the canvas adapter and execution preparer.
type Store struct {
	mu      sync.RWMutex
	catalog *catalog.Catalog
	logger  *slog.Logger

	nodes   map[string]Node
	buckets map[string][]BucketItem

	generation uint64

	subMu   sync.Mutex
	subs    map[int]Subscriber
	nextSub int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger used for store-level events.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a store backed by the given catalog.
// A nil catalog defaults to the built-in node set.
func NewStore(cat *catalog.Catalog, opts ...StoreOption) *Store {
	if cat == nil {
		cat = catalog.Default()
	}
	s := &Store{
		catalog: cat,
		logger:  slog.Default(),
		nodes:   make(map[string]Node),
		buckets: make(map[string][]BucketItem),
		subs:    make(map[int]Subscriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the store resolves node types against.
func (s *Store) Catalog() *catalog.Catalog {
	return s.catalog
}

// Subscribe registers a change subscriber and returns a cancel function.
func (s *Store) Subscribe(fn Subscriber) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// notify delivers a change to subscribers in subscription order.
// Called after the mutation has been applied and the write lock released.
func (s *Store) notify(c Change) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	// Map iteration order is random; deliver in subscription order.
	sort.Ints(ids)
	fns := make([]Subscriber, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// Generation returns a counter incremented by every applied mutation.
// Callers compare generations to detect that a graph changed underneath a
// long-running remote call and discard the stale response.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// AddNode creates a node of the given type at the given position and
// returns its freshly generated id. Inputs start from the catalog defaults,
// status starts idle. Unknown types get an empty parameter map; they are
// legal and render via the placeholder path.
func (s *Store) AddNode(nodeType string, pos Position) string {
	id := uuid.NewString()

	inputs := map[string]any{}
	if spec, ok := s.catalog.Get(nodeType); ok {
		inputs = cloneMap(spec.Defaults)
		if inputs == nil {
			inputs = map[string]any{}
		}
	}

	s.mu.Lock()
	s.nodes[id] = Node{
		ID:       id,
		Type:     nodeType,
		Position: pos,
		Inputs:   inputs,
		Status:   StatusIdle,
	}
	s.generation++
	s.mu.Unlock()

	s.logger.Debug("node added", "node_id", id, "node_type", nodeType)
	s.notify(Change{Kind: ChangeNodeAdded, NodeID: id})
	return id
}

// UpdateNode shallow-merges a patch into the node record. A patch that
// leaves the node deeply equal to its previous value is a no-op and does
// not notify subscribers; that suppression is what keeps read-modify-write
// synchronization hooks from looping forever.
//
// Updating a non-existent id is a silent no-op.
func (s *Store) UpdateNode(id string, p Patch) {
	s.mu.Lock()
	old, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return
	}

	next := old.Clone()
	if p.Type != nil {
		next.Type = *p.Type
	}
	if p.Position != nil {
		next.Position = *p.Position
	}
	if p.Inputs != nil {
		next.Inputs = cloneMap(p.Inputs)
	}
	if p.Outputs != nil {
		next.Outputs = cloneMap(p.Outputs)
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.Error != nil {
		next.Error = *p.Error
	}
	if p.ManualInput != nil {
		next.ManualInput = *p.ManualInput
	}

	if reflect.DeepEqual(old, next) {
		s.mu.Unlock()
		return
	}

	s.nodes[id] = next
	s.generation++
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeNodeUpdated, NodeID: id})
}

// RemoveNode deletes a node record. The store does not own edges; the
// canvas adapter cascades the removal into incident-edge cleanup.
// Removing a non-existent id is a silent no-op.
func (s *Store) RemoveNode(id string) {
	s.mu.Lock()
	if _, ok := s.nodes[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.nodes, id)
	s.generation++
	s.mu.Unlock()

	s.logger.Debug("node removed", "node_id", id)
	s.notify(Change{Kind: ChangeNodeRemoved, NodeID: id})
}

// Node returns a copy of the node record and whether it exists.
func (s *Store) Node(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.Clone(), true
}

// Nodes returns a snapshot of all node records.
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n.Clone())
	}
	return out
}

// Len returns the number of nodes in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// ReplaceAll swaps the entire node set, used when a saved workflow is
// loaded over the current one. Existing nodes are discarded.
func (s *Store) ReplaceAll(nodes []Node) {
	replacement := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		replacement[n.ID] = n.Clone()
	}

	s.mu.Lock()
	s.nodes = replacement
	s.generation++
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeGraphReplaced})
}

// PutBucketItems replaces the available items for a bucket node type.
//
// This is the refresh path for background polling, so it replaces the
// options list only. Node selections (selected file ids held in node
// inputs) are never touched here; an in-progress user selection survives a
// poll even if it now references an item that disappeared.
func (s *Store) PutBucketItems(bucketType string, items []BucketItem) {
	copied := make([]BucketItem, len(items))
	copy(copied, items)

	s.mu.Lock()
	s.buckets[bucketType] = copied
	s.generation++
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeBucketRefreshed, BucketType: bucketType})
}

// BucketItems returns a snapshot of the available items for a bucket type.
func (s *Store) BucketItems(bucketType string) []BucketItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.buckets[bucketType]
	out := make([]BucketItem, len(items))
	copy(out, items)
	return out
}
