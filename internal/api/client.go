package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "trackside/1.0"
)

// CredentialStore holds the session token. Implementations must be safe for
// concurrent use; Clear must be idempotent.
type CredentialStore interface {
	Get() (string, bool)
	Set(token string) error
	Clear() error
}

// SessionExpired is published when the server rejects a request with 401.
type SessionExpired struct {
	Method    string
	Path      string
	RequestID string
}

// Client is the club API client. Every call goes through do, which attaches
// the stored bearer token and turns 401 responses into SessionExpired
// events.
type Client struct {
	baseURL string
	http    *http.Client
	store   CredentialStore
	logger  *slog.Logger

	mu       sync.RWMutex
	expiryFn []func(SessionExpired)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client rooted at baseURL (e.g. http://host/api).
func NewClient(baseURL string, store CredentialStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		store:   store,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnSessionExpired registers fn to run after the token is cleared on a 401
// and before the failing call returns. fn runs on the caller's goroutine.
func (c *Client) OnSessionExpired(fn func(SessionExpired)) {
	c.mu.Lock()
	c.expiryFn = append(c.expiryFn, fn)
	c.mu.Unlock()
}

// do sends one request and decodes a 2xx JSON body into dst (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, dst interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	requestID := c.prepare(req, body != nil)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		"method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start))

	return c.receive(resp, method, path, requestID, dst)
}

// prepare is the outgoing interception point.
func (c *Client) prepare(req *http.Request, hasBody bool) string {
	requestID := uuid.NewString()
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.store.Get(); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return requestID
}

// receive is the incoming interception point.
func (c *Client) receive(resp *http.Response, method, path, requestID string, dst interface{}) error {
	if resp.StatusCode == http.StatusUnauthorized {
		herr := newHTTPError(resp)
		c.expire(SessionExpired{Method: method, Path: path, RequestID: requestID})
		return herr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newHTTPError(resp)
	}

	if dst == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}

func (c *Client) expire(ev SessionExpired) {
	if err := c.store.Clear(); err != nil {
		c.logger.Error("clearing credentials after 401", "error", err)
	}
	c.logger.Warn("session expired", "method", ev.Method, "path", ev.Path, "request_id", ev.RequestID)

	c.mu.RLock()
	fns := make([]func(SessionExpired), len(c.expiryFn))
	copy(fns, c.expiryFn)
	c.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (c *Client) get(ctx context.Context, path string, dst interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, dst)
}

func (c *Client) post(ctx context.Context, path string, body, dst interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, dst)
}

func (c *Client) put(ctx context.Context, path string, body, dst interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, dst)
}

func (c *Client) delete(ctx context.Context, path string, dst interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, dst)
}
