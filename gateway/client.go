// Package gateway is the client for the Concierge orchestration backend. It
// exposes the synchronous chat call, the streaming chat call, thread resource
// calls, and action run submission/polling, with one typed error convention
// across all of them.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"goa.design/clue/log"
)

type (
	// TokenProvider supplies the bearer token attached to outgoing requests.
	// It may be asynchronous (refreshing cached credentials) and must be safe
	// for concurrent use. Returning an empty token with a nil error sends the
	// request unauthenticated; the backend decides whether that is allowed.
	TokenProvider func(ctx context.Context) (string, error)

	// Option configures the Client.
	Option func(*Client)

	// Client talks to the Concierge backend. Safe for concurrent use.
	Client struct {
		router Router
		http   *http.Client
		token  TokenProvider
	}
)

// StaticToken returns a TokenProvider that always yields the given token.
func StaticToken(token string) TokenProvider {
	return func(context.Context) (string, error) { return token, nil }
}

// WithHTTPClient overrides the underlying *http.Client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTokenProvider sets the bearer token source consulted on every call.
func WithTokenProvider(p TokenProvider) Option {
	return func(cl *Client) {
		cl.token = p
	}
}

// New constructs a Client routing requests through the given Router.
func New(router Router, opts ...Option) *Client {
	cl := &Client{
		router: router,
		http:   &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cl)
		}
	}
	if cl.http == nil {
		cl.http = &http.Client{Timeout: 60 * time.Second}
	}
	return cl
}

// newRequest builds a request for the logical path, attaching the bearer
// token when the provider yields one.
func (c *Client) newRequest(ctx context.Context, method, logical string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.router.Route(logical), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return nil, fmt.Errorf("token provider: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// doJSON executes the request and decodes a 2xx JSON response into out.
// Non-2xx responses and transport failures become typed errors.
func (c *Client) doJSON(ctx context.Context, method, logical string, body, out any) error {
	req, err := c.newRequest(ctx, method, logical, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return unreachableError(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.responseError(ctx, resp, logical)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// responseError drains the error body and converts it into the typed Error.
// Bodies that parse as JSON are kept structured; anything else is embedded as
// raw text.
func (c *Client) responseError(ctx context.Context, resp *http.Response, logical string) error {
	raw, _ := io.ReadAll(resp.Body)
	gerr := &Error{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("%s %s failed with status %d", resp.Request.Method, logical, resp.StatusCode),
	}
	var structured map[string]any
	if err := json.Unmarshal(raw, &structured); err == nil && structured != nil {
		gerr.Body = structured
		if msg, ok := structured["message"].(string); ok && msg != "" {
			gerr.Message = msg
		}
	} else {
		gerr.Body = string(raw)
	}
	logResponseError(ctx, resp.StatusCode, logical, gerr.Message)
	return gerr
}

// logResponseError logs a failed call at a severity matching the status
// class. Expected-degraded statuses are warnings, not hard errors, so a
// backend restart does not page anyone.
func logResponseError(ctx context.Context, status int, logical, msg string) {
	fields := []log.Fielder{
		log.KV{K: "path", V: logical},
		log.KV{K: "status", V: status},
		log.KV{K: "msg", V: msg},
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		log.Warn(ctx, fields...)
	default:
		log.Error(ctx, nil, fields...)
	}
}
