// Package files implements the client side of the content-addressed file
// storage API: a two-phase (init/complete) upload protocol deduplicated by
// content hash, and time-limited signed download URLs.
package files

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/observability"
)

// Ref identifies an uploaded file.
type Ref struct {
	FileID string `json:"file_id"`
	Name   string `json:"name"`
	Hash   string `json:"hash"`
	Size   int64  `json:"size"`

	// Deduplicated is true when the store already had the content and the
	// upload was short-circuited.
	Deduplicated bool `json:"-"`
}

// SignedURL is a time-limited download location for a stored file.
type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the URL is past its expiry.
func (s SignedURL) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Client talks to the file storage API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics observability.MetricsRecorder

	// parallelism bounds concurrent uploads in UploadAll.
	parallelism int
}

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

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithParallelism bounds concurrent uploads in UploadAll. Default: 4.
func WithParallelism(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// New creates a client for the file store at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		http:        &http.Client{Timeout: 5 * time.Minute},
		logger:      slog.Default(),
		metrics:     observability.NoopMetrics{},
		parallelism: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type initRequest struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
	Name string `json:"name"`
}

type initResponse struct {
	FileID    string `json:"file_id"`
	Exists    bool   `json:"exists"`
	UploadURL string `json:"upload_url"`
}

// Upload stores one file. The content is hashed locally; when the store
// already holds the content the upload is short-circuited and only the
// reference is returned.
func (c *Client) Upload(ctx context.Context, name string, content []byte) (*Ref, error) {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	initResp, err := c.initUpload(ctx, initRequest{
		Hash: hash,
		Size: int64(len(content)),
		Name: name,
	})
	if err != nil {
		return nil, fmt.Errorf("init upload %s: %w", name, err)
	}

	ref := &Ref{
		FileID:       initResp.FileID,
		Name:         name,
		Hash:         hash,
		Size:         int64(len(content)),
		Deduplicated: initResp.Exists,
	}

	if initResp.Exists {
		c.metrics.RecordUpload(ctx, ref.Size, true)
		observability.LogUploadComplete(c.logger, name, ref.FileID, len(content), true)
		return ref, nil
	}

	if err := c.putContent(ctx, initResp.UploadURL, content); err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}
	if err := c.completeUpload(ctx, initResp.FileID); err != nil {
		return nil, fmt.Errorf("complete upload %s: %w", name, err)
	}

	c.metrics.RecordUpload(ctx, ref.Size, false)
	observability.LogUploadComplete(c.logger, name, ref.FileID, len(content), false)
	return ref, nil
}

// UploadAll uploads several files with bounded parallelism. The first
// failure cancels the remaining uploads and is returned; the result order
// matches the input order.
func (c *Client) UploadAll(ctx context.Context, names []string, contents [][]byte) ([]*Ref, error) {
	if len(names) != len(contents) {
		return nil, fmt.Errorf("names and contents length mismatch: %d vs %d", len(names), len(contents))
	}

	refs := make([]*Ref, len(names))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.parallelism)

	for i := range names {
		eg.Go(func() error {
			ref, err := c.Upload(ctx, names[i], contents[i])
			if err != nil {
				return err
			}
			refs[i] = ref
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// Sign fetches a time-limited download URL for a stored file.
func (c *Client) Sign(ctx context.Context, fileID string) (*SignedURL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files/"+fileID+"/url", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sign file %s: backend returned %d", fileID, resp.StatusCode)
	}

	var signed SignedURL
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return nil, fmt.Errorf("decode signed url: %w", err)
	}
	return &signed, nil
}

func (c *Client) initUpload(ctx context.Context, body initRequest) (*initResponse, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files/init", bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned %d", resp.StatusCode)
	}

	var out initResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) putContent(ctx context.Context, uploadURL string, content []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload target returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) completeUpload(ctx context.Context, fileID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files/"+fileID+"/complete", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}
	return nil
}
