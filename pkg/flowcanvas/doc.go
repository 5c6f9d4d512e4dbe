/*
Package flowcanvas implements the synchronization core of a drag-and-drop
content-generation workflow builder: the authoritative workflow store, the
edge sanitizer, the structural and executable graph projections, and the
execution preparer that drives the validate/compile/execute boundary
against a remote backend.

# Overview

A workflow is a graph of typed nodes (media buckets, AI actions, output
targets) connected by edges between typed ports. Three representations of
that graph coexist and must stay consistent:

  - the Store's node map (parameters, statuses, bucket selections)
  - the canvas adapter's render state (positions, selection, edges)
  - the serialized Graph sent to the backend for saving or execution

The store is the single writer of node state; the canvas adapter (package
canvas) is the single writer of edge and position state; everything the
backend sees goes through an export at a save or execute boundary.

# Basic Usage

	store := flowcanvas.NewStore(catalog.Default())
	adapter := canvas.NewAdapter(store)

	id := adapter.CreateNode(catalog.TypeTextGeneration, flowcanvas.Position{X: 120, Y: 80})
	adapter.Connect(flowcanvas.Edge{Source: id, Target: other, SourceHandle: "generated_text"})

	nodes, edges := adapter.Snapshot()
	saved := store.ExportStructure(nodes, edges)

# Execution

The Preparer walks one attempt through

	NotPrepared -> Validated -> Compiled -> Executing -> Completed | Failed | Cancelled

validating bucket selections and parameter schemas locally, pruning
dangling edges, consulting the remote compiler, and fanning per-node
results back into the store:

	prep := flowcanvas.NewPreparer(store, backend, backend,
	    flowcanvas.WithProceedOnWarnings(true))
	outcome, err := prep.Run(ctx, nodes, edges)

Cancellation via the context yields PhaseCancelled with a nil error. A
completed run may carry a persistence warning, surfaced separately from
both success and failure.

# Integrity

Unknown node types and dangling edges are never user-blocking errors: the
canvas renders unknown types through a placeholder (keeping the original
type for display), and SanitizeEdges prunes invalid edges at export time,
idempotently and order-preservingly.

# Subpackages

  - catalog: static registry of node types, ports, and parameter schemas
  - canvas: render-state adapter (change interception, edge coloring)
  - client: HTTP clients for the compile/execute/persistence backends
  - files: content-hash deduplicated upload client
  - history: local workflow persistence (memory, SQLite, Postgres)
  - config: settings loading
  - observability: logging, metrics, and tracing helpers
*/
package flowcanvas
