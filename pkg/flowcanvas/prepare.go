package flowcanvas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/catalog"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/observability"
)

// Phase is the state of one execution preparation attempt.
type Phase string

// Preparation phases, in order of progression.
const (
	PhaseNotPrepared Phase = "not_prepared"
	PhaseValidated   Phase = "validated"
	PhaseCompiled    Phase = "compiled"
	PhaseExecuting   Phase = "executing"
	PhaseCompleted   Phase = "completed"
	PhaseFailed      Phase = "failed"
	PhaseCancelled   Phase = "cancelled"
)

// Compiler is the remote compile collaborator. It checks an executable
// graph and returns diagnostics; an empty list means the graph is clean.
type Compiler interface {
	Compile(ctx context.Context, g Graph) ([]Diagnostic, error)
}

// Executor is the remote execution collaborator.
type Executor interface {
	Execute(ctx context.Context, g Graph) (*ExecutionResult, error)
}

// Outcome summarizes one preparation attempt for the caller.
type Outcome struct {
	Phase        Phase
	Diagnostics  []Diagnostic
	RemovedEdges int
	Result       *ExecutionResult

	// PersistenceWarning is set when the run finished but could not be
	// durably recorded. It accompanies success; it is not an error.
	PersistenceWarning string
}

// Preparer drives one execution attempt through its state machine:
//
//	NotPrepared -> Validated -> Compiled -> Executing -> Completed | Failed | Cancelled
//
// A Preparer is single-use per attempt; call Reset (or build a new one) to
// start over after a terminal phase.
type Preparer struct {
	store    *Store
	compiler Compiler
	executor Executor

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	proceedOnWarnings bool
	onWarnings        func([]Diagnostic) bool

	attemptID  string
	phase      Phase
	generation uint64
	payload    Graph
	removed    int
}

// PrepareOption configures a Preparer.
type PrepareOption func(*Preparer)

// WithPrepareLogger sets the logger for preparation events.
func WithPrepareLogger(logger *slog.Logger) PrepareOption {
	return func(p *Preparer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(m observability.MetricsRecorder) PrepareOption {
	return func(p *Preparer) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithSpans sets the span manager. Default: no-op.
func WithSpans(s observability.SpanManager) PrepareOption {
	return func(p *Preparer) {
		if s != nil {
			p.spans = s
		}
	}
}

// WithProceedOnWarnings makes Run continue past compiler warnings without
// consulting a warning callback. Blocking errors always stop the attempt.
func WithProceedOnWarnings(proceed bool) PrepareOption {
	return func(p *Preparer) {
		p.proceedOnWarnings = proceed
	}
}

// WithWarningPolicy installs a callback consulted by Run when the compiler
// reports warnings (and only warnings). Returning true proceeds to
// execution; returning false stops after the compile phase so the caller
// can show diagnostics first. This is a user-facing policy choice, never an
// automatic decision.
func WithWarningPolicy(fn func([]Diagnostic) bool) PrepareOption {
	return func(p *Preparer) {
		p.onWarnings = fn
	}
}

// NewPreparer creates a preparer over the given store and collaborators.
func NewPreparer(store *Store, compiler Compiler, executor Executor, opts ...PrepareOption) *Preparer {
	p := &Preparer{
		store:     store,
		compiler:  compiler,
		executor:  executor,
		logger:    slog.Default(),
		metrics:   observability.NoopMetrics{},
		spans:     observability.NoopSpanManager{},
		attemptID: uuid.NewString(),
		phase:     PhaseNotPrepared,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Phase returns the attempt's current phase.
func (p *Preparer) Phase() Phase {
	return p.phase
}

// Reset returns the preparer to NotPrepared with a fresh attempt id.
func (p *Preparer) Reset() {
	p.phase = PhaseNotPrepared
	p.attemptID = uuid.NewString()
	p.payload = Graph{}
	p.removed = 0
	p.generation = 0
}

// Validate checks the graph is executable by the user: a non-empty node
// set, every bucket node with at least one selected file, and per-node
// parameters conforming to their catalog schema. On success the attempt
// transitions to Validated.
//
// Validation failures are user-fixable; they are returned as
// ValidationError (or ErrEmptyWorkflow) and never reach the compiler.
func (p *Preparer) Validate(nodes []Node) error {
	done := observability.TimedOperation()
	err := p.validate(nodes)
	p.metrics.RecordPhase(context.Background(), "validate", time.Duration(done())*time.Millisecond, err)

	if err != nil {
		observability.LogValidationFailed(p.logger, p.attemptID, err)
		return err
	}
	p.phase = PhaseValidated
	return nil
}

func (p *Preparer) validate(nodes []Node) error {
	if len(nodes) == 0 {
		return ErrEmptyWorkflow
	}

	for _, n := range nodes {
		spec, ok := p.store.Catalog().Get(n.Type)
		if !ok {
			// Unknown types are an integrity concern, healed elsewhere;
			// they are not the user's problem at validation time.
			continue
		}

		if spec.Bucket && len(selectedFileIDs(n.Inputs)) == 0 {
			return &ValidationError{
				NodeID:  n.ID,
				Message: fmt.Sprintf("%s bucket has no files selected", spec.BucketLabel),
			}
		}

		if spec.Params != nil {
			resolved, err := spec.Params.Resolve(nil)
			if err != nil {
				return fmt.Errorf("resolve parameter schema for %s: %w", n.Type, err)
			}
			if err := resolved.Validate(n.Inputs); err != nil {
				return &ValidationError{
					NodeID:  n.ID,
					Message: fmt.Sprintf("invalid parameters for %s: %v", spec.Label, err),
				}
			}
		}
	}
	return nil
}

// selectedFileIDs reads a bucket node's selection, tolerating both the
// typed and the JSON-decoded representation of the id list.
func selectedFileIDs(inputs map[string]any) []string {
	switch v := inputs[catalog.SelectedFilesKey].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Compile produces the executable projection and submits it to the remote
// compiler. Requires a Validated attempt.
//
// Blocking diagnostics transition to Failed and return a CompileError.
// Warnings transition to Compiled and are returned for the caller to act
// on. A compile response that arrives after the graph was altered is
// discarded with ErrStaleGraph.
func (p *Preparer) Compile(ctx context.Context, nodes []Node, edges []Edge) ([]Diagnostic, error) {
	if p.phase != PhaseValidated {
		return nil, fmt.Errorf("compile requires a validated attempt, attempt is %s", p.phase)
	}

	ctx, span := p.spans.StartPhaseSpan(ctx, "compile")
	done := observability.TimedOperation()

	p.generation = p.store.Generation()
	payload, removed := p.store.ExportForExecution(nodes, edges)
	observability.LogEdgesPruned(p.logger, p.attemptID, removed)
	p.metrics.RecordPrunedEdges(ctx, removed)

	diags, err := p.compiler.Compile(ctx, payload)
	p.metrics.RecordPhase(ctx, "compile", time.Duration(done())*time.Millisecond, err)
	p.spans.EndSpanWithError(span, err)
	if err != nil {
		p.phase = PhaseFailed
		return nil, fmt.Errorf("compile workflow: %w", err)
	}

	// The compile request itself is not cancelable; a late response for a
	// graph the user has since edited must not be acted on.
	if p.store.Generation() != p.generation {
		p.phase = PhaseNotPrepared
		return nil, ErrStaleGraph
	}

	errCount, warnCount := countDiagnostics(diags)
	observability.LogCompileDiagnostics(p.logger, p.attemptID, errCount, warnCount)

	if errCount > 0 {
		p.phase = PhaseFailed
		return diags, &CompileError{Diagnostics: diags}
	}

	p.payload = payload
	p.removed = removed
	p.phase = PhaseCompiled
	return diags, nil
}

func countDiagnostics(diags []Diagnostic) (errs, warns int) {
	for _, d := range diags {
		switch d.Level {
		case LevelError:
			errs++
		case LevelWarning:
			warns++
		}
	}
	return errs, warns
}

// Execute submits the compiled payload to the remote executor and fans the
// per-node results back into the store. Requires a Compiled attempt whose
// payload still matches the store's current generation.
//
// User-initiated cancellation (the context) transitions to Cancelled and
// is not treated as an error: the outcome carries PhaseCancelled and the
// returned error is nil.
func (p *Preparer) Execute(ctx context.Context) (*Outcome, error) {
	if p.phase != PhaseCompiled {
		return nil, ErrNotPrepared
	}
	if p.store.Generation() != p.generation {
		p.phase = PhaseNotPrepared
		return nil, ErrStaleGraph
	}

	ctx, span := p.spans.StartPhaseSpan(ctx, "execute")
	done := observability.TimedOperation()

	p.phase = PhaseExecuting
	p.markAll(StatusRunning)

	result, err := p.executor.Execute(ctx, p.payload)
	durationMs := done()

	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			p.phase = PhaseCancelled
			p.markAll(StatusIdle)
			p.spans.EndSpanWithError(span, nil)
			observability.LogExecuteCancelled(p.logger, p.attemptID)
			return &Outcome{Phase: PhaseCancelled, RemovedEdges: p.removed}, nil
		}

		p.phase = PhaseFailed
		p.markAll(StatusIdle)
		execErr := &ExecutionError{Message: "request failed", Err: err}
		p.spans.EndSpanWithError(span, execErr)
		p.metrics.RecordExecution(ctx, false, time.Duration(durationMs)*time.Millisecond)
		observability.LogExecuteError(p.logger, p.attemptID, execErr)
		return &Outcome{Phase: PhaseFailed, RemovedEdges: p.removed}, execErr
	}

	p.applyResults(result)
	p.metrics.RecordExecution(ctx, result.Success, time.Duration(durationMs)*time.Millisecond)

	outcome := &Outcome{
		RemovedEdges:       p.removed,
		Result:             result,
		PersistenceWarning: result.PersistenceWarning,
	}

	if !result.Success {
		p.phase = PhaseFailed
		outcome.Phase = PhaseFailed
		execErr := &ExecutionError{Message: result.Error}
		p.spans.EndSpanWithError(span, execErr)
		observability.LogExecuteError(p.logger, p.attemptID, execErr)
		observability.LogPersistenceWarning(p.logger, p.attemptID, result.PersistenceWarning)
		return outcome, execErr
	}

	p.phase = PhaseCompleted
	outcome.Phase = PhaseCompleted
	p.spans.EndSpanWithError(span, nil)
	observability.LogExecuteComplete(p.logger, p.attemptID, true, durationMs)
	observability.LogPersistenceWarning(p.logger, p.attemptID, result.PersistenceWarning)
	return outcome, nil
}

// markAll sets the status of every node in the payload through the store.
// Cross-writes always go through UpdateNode, never around it.
func (p *Preparer) markAll(status NodeStatus) {
	for _, gn := range p.payload.Nodes {
		st := status
		empty := ""
		p.store.UpdateNode(gn.ID, Patch{Status: &st, Error: &empty})
	}
}

// applyResults writes per-node execution results back into the store.
// Nodes the executor did not report on are returned to idle.
func (p *Preparer) applyResults(result *ExecutionResult) {
	reported := make(map[string]bool, len(result.NodeResults))
	for _, nr := range result.NodeResults {
		reported[nr.NodeID] = true

		status := NodeStatus(nr.Status)
		switch status {
		case StatusCompleted, StatusError, StatusRunning, StatusPending, StatusIdle:
		default:
			status = StatusError
		}
		errMsg := nr.Error
		p.store.UpdateNode(nr.NodeID, Patch{
			Status:  &status,
			Outputs: nr.Outputs,
			Error:   &errMsg,
		})
	}

	for _, gn := range p.payload.Nodes {
		if !reported[gn.ID] {
			idle := StatusIdle
			p.store.UpdateNode(gn.ID, Patch{Status: &idle})
		}
	}
}

// Run drives a full attempt: validate, compile, then execute, applying the
// warning policy in between. It is the one-call path used by the execution
// bar; the individual phase methods remain available for callers that stage
// the attempt themselves.
//
// When the compiler reports only warnings and neither WithProceedOnWarnings
// nor the warning policy allows proceeding, Run stops after the compile
// phase and returns the diagnostics with a nil error; the caller shows them
// and decides whether to retry with proceeding enabled.
func (p *Preparer) Run(ctx context.Context, nodes []Node, edges []Edge) (*Outcome, error) {
	ctx, span := p.spans.StartAttemptSpan(ctx, p.attemptID)
	observability.LogPrepareStart(p.logger, p.attemptID, len(nodes), len(edges))

	if err := p.Validate(nodes); err != nil {
		p.spans.EndSpanWithError(span, err)
		return nil, err
	}

	diags, err := p.Compile(ctx, nodes, edges)
	if err != nil {
		p.spans.EndSpanWithError(span, err)
		return &Outcome{Phase: p.phase, Diagnostics: diags}, err
	}

	_, warnCount := countDiagnostics(diags)
	if warnCount > 0 {
		proceed := p.proceedOnWarnings
		if !proceed && p.onWarnings != nil {
			proceed = p.onWarnings(diags)
		}
		if !proceed {
			p.spans.EndSpanWithError(span, nil)
			return &Outcome{Phase: p.phase, Diagnostics: diags, RemovedEdges: p.removed}, nil
		}
	}

	outcome, err := p.Execute(ctx)
	if outcome != nil {
		outcome.Diagnostics = diags
	}
	p.spans.EndSpanWithError(span, err)
	return outcome, err
}
