// Package authority implements tree.Authority over the treegrid REST API.
package authority

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/roach88/treegrid/internal/tree"
)

// LeveledSlog adapts slog to retryablehttp.LeveledLogger.
type LeveledSlog struct {
	inner *slog.Logger
}

// Error is logged at WARN; a failed attempt may still be retried.
func (l LeveledSlog) Error(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Warn(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Info(msg string, keysAndValues ...any) {
	l.inner.Info(msg, keysAndValues...)
}

func (l LeveledSlog) Debug(msg string, keysAndValues ...any) {
	l.inner.Debug(msg, keysAndValues...)
}

// Option configures the underlying retryablehttp client.
type Option func(*retryablehttp.Client)

// WithMaxRetries sets the number of retries after the first attempt.
func WithMaxRetries(maxRetries int) Option {
	return func(client *retryablehttp.Client) {
		client.RetryMax = maxRetries
	}
}

// WithRetryWait sets the backoff bounds between retries.
func WithRetryWait(waitMin, waitMax time.Duration) Option {
	return func(client *retryablehttp.Client) {
		client.RetryWaitMin = waitMin
		client.RetryWaitMax = waitMax
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(client *retryablehttp.Client) {
		client.Logger = retryablehttp.LeveledLogger(LeveledSlog{inner: logger})
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(client *retryablehttp.Client) {
		client.HTTPClient.Timeout = timeout
	}
}

// Client talks to a treegrid server. It never retries by default, so a
// refused request surfaces to the caller exactly once.
type Client struct {
	base string
	http *retryablehttp.Client
}

var _ tree.Authority = (*Client)(nil)

// New creates a Client for the server at baseURL.
func New(baseURL string, options ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.RetryMax = 0
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = retryablehttp.LeveledLogger(LeveledSlog{inner: slog.Default().With("subsystem", "authority")})
	rc.CheckRetry = RetryPolicy
	// the last response is decoded as a failure by the caller
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	for _, option := range options {
		option(rc)
	}

	return &Client{base: strings.TrimRight(baseURL, "/"), http: rc}
}

// RetryPolicy wraps retryablehttp.DefaultRetryPolicy. A create that reached
// the server is never repeated, since the server may have issued an id.
func RetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp != nil && resp.Request != nil && resp.Request.Method == http.MethodPut {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// ErrNoNodeID is returned when a create succeeds without naming the new node.
var ErrNoNodeID = errors.New("response carries no node id")

type createResponse struct {
	ID int64 `json:"id"`
}

// Create implements tree.Authority.
func (c *Client) Create(ctx context.Context, parentShortID string) (string, error) {
	var out createResponse
	path := nodePath(parentShortID)
	if err := c.do(ctx, http.MethodPut, path, &out); err != nil {
		return "", err
	}
	// 0 is the root token; a reply without a positive id created nothing usable.
	if out.ID <= 0 {
		return "", fmt.Errorf("%s %s: %w", http.MethodPut, path, ErrNoNodeID)
	}
	return strconv.FormatInt(out.ID, 10), nil
}

// Delete implements tree.Authority.
func (c *Client) Delete(ctx context.Context, shortID string) error {
	return c.do(ctx, http.MethodDelete, nodePath(shortID), nil)
}

// ListAll implements tree.Authority. The server answers with [[id, parent], ...].
func (c *Client) ListAll(ctx context.Context) ([]tree.Edge, error) {
	var pairs [][2]int64
	if err := c.do(ctx, http.MethodGet, nodePath(tree.RootToken), &pairs); err != nil {
		return nil, err
	}
	edges := make([]tree.Edge, len(pairs))
	for i, p := range pairs {
		edges[i] = tree.Edge{
			ID:       strconv.FormatInt(p[0], 10),
			ParentID: strconv.FormatInt(p[1], 10),
		}
	}
	return edges, nil
}

func nodePath(shortID string) string {
	return "/api/nodes/" + url.PathEscape(tree.NormalizeID(shortID))
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" || e.Body == "{}" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Code, e.Body)
}
