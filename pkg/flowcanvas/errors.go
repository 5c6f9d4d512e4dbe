package flowcanvas

import (
	"errors"
	"fmt"
)

// Sentinel errors for preparation and execution.
var (
	// ErrEmptyWorkflow indicates preparation was attempted on a graph with
	// no nodes.
	ErrEmptyWorkflow = errors.New("workflow has no nodes")

	// ErrStaleGraph indicates a compile or execution response arrived after
	// the graph was altered; the response was discarded.
	ErrStaleGraph = errors.New("graph changed during operation, result discarded")

	// ErrNotPrepared indicates Execute was requested before a successful
	// compile on the current preparer.
	ErrNotPrepared = errors.New("workflow not prepared")
)

// ValidationError is a user-fixable problem found before compilation, such
// as a bucket node with no selected files. Execution is not attempted.
type ValidationError struct {
	// NodeID is the offending node, when the problem is node-scoped.
	NodeID string
	// Message names what the user has to fix.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("validation failed for node %s: %s", e.NodeID, e.Message)
	}
	return "validation failed: " + e.Message
}

// DiagnosticLevel classifies a compiler diagnostic.
type DiagnosticLevel string

// Diagnostic levels.
const (
	LevelError   DiagnosticLevel = "error"
	LevelWarning DiagnosticLevel = "warning"
)

// Diagnostic is one finding reported by the remote compiler.
type Diagnostic struct {
	Level   DiagnosticLevel `json:"level"`
	NodeID  string          `json:"node_id,omitempty"`
	Field   string          `json:"field,omitempty"`
	Message string          `json:"message"`
}

// String formats the diagnostic for display.
func (d Diagnostic) String() string {
	if d.NodeID != "" {
		return fmt.Sprintf("[%s] node %s: %s", d.Level, d.NodeID, d.Message)
	}
	return fmt.Sprintf("[%s] %s", d.Level, d.Message)
}

// CompileError wraps blocking compiler diagnostics. Warnings never produce
// a CompileError; they are surfaced for the caller to decide on.
type CompileError struct {
	Diagnostics []Diagnostic
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	n := 0
	first := ""
	for _, d := range e.Diagnostics {
		if d.Level == LevelError {
			if first == "" {
				first = d.Message
			}
			n++
		}
	}
	if n == 1 {
		return "compilation failed: " + first
	}
	return fmt.Sprintf("compilation failed with %d errors: %s", n, first)
}

// ExecutionError indicates the remote executor failed or reported
// success=false. Per-node errors are carried on the node records.
type ExecutionError struct {
	// Message is the overall error from the executor.
	Message string
	// Err is the underlying transport error, if any.
	Err error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("execution failed: %s: %v", e.Message, e.Err)
	}
	return "execution failed: " + e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}
