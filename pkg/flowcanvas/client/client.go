// Package client implements HTTP clients for the backend collaborators:
// the workflow compiler, the executor, and named-workflow persistence.
//
// Every call is context-aware and independently retryable by the caller;
// the client never retries on its own. Transport and API failures are
// returned as wrapped errors for the call site to convert into a
// user-facing message.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas"
)

// ErrNotFound indicates the backend has no workflow with the given id.
var ErrNotFound = errors.New("workflow not found")

// Meta is the persistence metadata stored alongside a workflow's
// structural projection.
type Meta struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	NodeCount   int    `json:"node_count"`
	EdgeCount   int    `json:"edge_count"`
	IsSystem    bool   `json:"is_system"`
}

// Stored is a persisted workflow: metadata plus the structural projection.
type Stored struct {
	Meta
	Definition flowcanvas.Graph `json:"definition"`
}

// Version is one entry in a workflow's version history.
type Version struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
}

// Client talks to the workflow backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Compile-time checks: the client serves as both remote collaborators of
// the execution preparer.
var (
	_ flowcanvas.Compiler = (*Client)(nil)
	_ flowcanvas.Executor = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// compileResponse is the compile endpoint's body.
type compileResponse struct {
	Diagnostics []flowcanvas.Diagnostic `json:"diagnostics"`
}

// Compile submits an executable graph for checking and returns the
// compiler's diagnostics.
func (c *Client) Compile(ctx context.Context, g flowcanvas.Graph) ([]flowcanvas.Diagnostic, error) {
	var resp compileResponse
	if err := c.doJSON(ctx, http.MethodPost, "/workflows/compile", g, &resp); err != nil {
		return nil, fmt.Errorf("compile workflow: %w", err)
	}
	return resp.Diagnostics, nil
}

// Execute submits an executable graph and returns the run result.
func (c *Client) Execute(ctx context.Context, g flowcanvas.Graph) (*flowcanvas.ExecutionResult, error) {
	var resp flowcanvas.ExecutionResult
	if err := c.doJSON(ctx, http.MethodPost, "/workflows/execute", g, &resp); err != nil {
		return nil, fmt.Errorf("execute workflow: %w", err)
	}
	return &resp, nil
}

// saveRequest is the persistence save body.
type saveRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Definition  flowcanvas.Graph `json:"definition"`
}

// Save persists a workflow's structural projection under the given id.
// Node and edge counts are derived server-side from the definition.
func (c *Client) Save(ctx context.Context, id, name, description string, g flowcanvas.Graph) error {
	body := saveRequest{Name: name, Description: description, Definition: g}
	if err := c.doJSON(ctx, http.MethodPut, "/workflows/"+id, body, nil); err != nil {
		return fmt.Errorf("save workflow %s: %w", id, err)
	}
	return nil
}

// Load fetches a persisted workflow. Returns ErrNotFound for unknown ids.
func (c *Client) Load(ctx context.Context, id string) (*Stored, error) {
	var resp Stored
	if err := c.doJSON(ctx, http.MethodGet, "/workflows/"+id, nil, &resp); err != nil {
		return nil, fmt.Errorf("load workflow %s: %w", id, err)
	}
	return &resp, nil
}

// List returns metadata for all persisted workflows.
func (c *Client) List(ctx context.Context) ([]Meta, error) {
	var resp []Meta
	if err := c.doJSON(ctx, http.MethodGet, "/workflows", nil, &resp); err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	return resp, nil
}

// Versions returns a workflow's version history, newest last.
func (c *Client) Versions(ctx context.Context, id string) ([]Version, error) {
	var resp []Version
	if err := c.doJSON(ctx, http.MethodGet, "/workflows/"+id+"/versions", nil, &resp); err != nil {
		return nil, fmt.Errorf("workflow %s versions: %w", id, err)
	}
	return resp, nil
}

// apiError is the backend's error body.
type apiError struct {
	Error string `json:"error"`
}

// doJSON performs one JSON request/response round trip.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ae apiError
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if json.Unmarshal(data, &ae) == nil && ae.Error != "" {
			return fmt.Errorf("backend returned %d: %s", resp.StatusCode, ae.Error)
		}
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
