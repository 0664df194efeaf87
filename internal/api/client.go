// Package api is the HTTP client for the remote finance API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/finai-dev/finai/internal/log"
)

var (
	// ErrTransport wraps network failures and timeouts.
	ErrTransport = errors.New("transport failure")
	// ErrDecode wraps a 2xx response whose body is not the expected JSON.
	ErrDecode = errors.New("malformed response")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

const (
	apiPrefix    = "/api"
	maxErrorBody = 512
)

// Client talks to the finance API on behalf of one user.
type Client struct {
	base   *url.URL
	uid    string
	http   *http.Client
	logger *log.Logger
	group  singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(log.ComponentAPI) }
}

// NewClient creates a client for baseURL (scheme and host, without /api).
// When uid is non-empty it is sent as a query parameter on every call.
func NewClient(baseURL, uid string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", baseURL)
	}
	c := &Client{
		base:   u,
		uid:    uid,
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL returns the absolute URL for an API path, with the uid appended.
func (c *Client) URL(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + apiPrefix + path
	if c.uid != "" {
		q := u.Query()
		q.Set("uid", c.uid)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do sends one request and decodes a JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "request failed",
			log.FieldMethod, method,
			log.FieldPath, path,
			log.FieldError, err)
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "request done",
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s %s: %v", ErrDecode, method, path, err)
	}
	return nil
}

// get fetches path, sharing one in-flight request among concurrent callers.
func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	v, err, _ := c.group.Do(path, func() (any, error) {
		var out T
		if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
			return out, err
		}
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
