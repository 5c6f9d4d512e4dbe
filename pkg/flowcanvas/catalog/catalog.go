// Package catalog is the static registry of canvas node types.
//
// A Spec describes everything the rest of the system needs to know about a
// node type: its input and output ports (with runtime data types), the
// default parameter values a freshly placed node starts with, which
// parameter keys survive a structural save, and an optional JSON schema for
// parameter validation at execution time.
//
// Lookups are total: Get reports absence instead of failing, and callers
// are expected to degrade to the placeholder type rather than error out.
package catalog

import (
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// RuntimeType is the data-kind tag that flows along an edge.
// It drives edge coloring and port compatibility checks.
type RuntimeType string

// The closed set of runtime types.
const (
	TypeText     RuntimeType = "text"
	TypeImageRef RuntimeType = "image_ref"
	TypeAudioRef RuntimeType = "audio_ref"
	TypeVideoRef RuntimeType = "video_ref"
	TypeJSON     RuntimeType = "json"
)

// PlaceholderType is the reserved node type substituted for types that
// cannot be resolved against the catalog, so stale or corrupted saved
// graphs still render.
const PlaceholderType = "unknown"

// InputPort describes one input connection point on a node type.
type InputPort struct {
	Key   string
	Label string
	Type  RuntimeType
}

// OutputPort describes one output connection point on a node type.
type OutputPort struct {
	Key   string
	Label string
	Type  RuntimeType
}

// Spec is the immutable registry entry for a node type.
type Spec struct {
	// Type is the string key nodes carry, e.g. "image_generation".
	Type string

	// Label is the human-readable name shown in the sidebar.
	Label string

	// Inputs and Outputs are ordered port definitions. Keys are unique
	// within each list.
	Inputs  []InputPort
	Outputs []OutputPort

	// Defaults are the initial parameter values for a freshly added node.
	Defaults map[string]any

	// PersistKeys lists the parameter keys included in the structural
	// (save/load) projection. Everything else is treated as transient.
	PersistKeys []string

	// Params optionally constrains the node's parameter map. Validated
	// by the execution preparer before compilation.
	Params *jsonschema.Schema

	// Bucket marks source node types that hold a pool of uploaded files.
	// BucketLabel is the media name used in validation messages ("Image").
	Bucket      bool
	BucketLabel string
}

// InputPort returns the input port with the given key.
func (s Spec) InputPort(key string) (InputPort, bool) {
	for _, p := range s.Inputs {
		if p.Key == key {
			return p, true
		}
	}
	return InputPort{}, false
}

// OutputPort returns the output port with the given key.
func (s Spec) OutputPort(key string) (OutputPort, bool) {
	for _, p := range s.Outputs {
		if p.Key == key {
			return p, true
		}
	}
	return OutputPort{}, false
}

// HasInput reports whether the spec defines an input port with the key.
func (s Spec) HasInput(key string) bool {
	_, ok := s.InputPort(key)
	return ok
}

// HasOutput reports whether the spec defines an output port with the key.
func (s Spec) HasOutput(key string) bool {
	_, ok := s.OutputPort(key)
	return ok
}

// validate checks the port-key uniqueness invariant.
func (s Spec) validate() error {
	if s.Type == "" {
		return fmt.Errorf("catalog: spec has empty type")
	}
	seen := make(map[string]bool, len(s.Inputs))
	for _, p := range s.Inputs {
		if seen[p.Key] {
			return fmt.Errorf("catalog: %s: duplicate input port %q", s.Type, p.Key)
		}
		seen[p.Key] = true
	}
	seen = make(map[string]bool, len(s.Outputs))
	for _, p := range s.Outputs {
		if seen[p.Key] {
			return fmt.Errorf("catalog: %s: duplicate output port %q", s.Type, p.Key)
		}
		seen[p.Key] = true
	}
	return nil
}

// Catalog is a thread-safe table of node type specs.
// It uses sync.RWMutex for read-heavy lookup workloads.
type Catalog struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{specs: make(map[string]Spec)}
}

// Register adds or replaces a spec. It returns an error if the spec
// violates the port-key uniqueness invariant or uses the reserved
// placeholder type.
func (c *Catalog) Register(s Spec) error {
	if s.Type == PlaceholderType {
		return fmt.Errorf("catalog: %q is reserved", PlaceholderType)
	}
	if err := s.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs[s.Type] = s
	return nil
}

// Get returns the spec for a node type and whether it exists.
// Callers must treat a miss as "unknown type" and degrade gracefully.
func (c *Catalog) Get(nodeType string) (Spec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.specs[nodeType]
	return s, ok
}

// Has reports whether the node type is registered.
func (c *Catalog) Has(nodeType string) bool {
	_, ok := c.Get(nodeType)
	return ok
}

// Types returns all registered type keys. The order is not guaranteed.
func (c *Catalog) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	types := make([]string, 0, len(c.specs))
	for t := range c.specs {
		types = append(types, t)
	}
	return types
}

// Len returns the number of registered specs.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.specs)
}
