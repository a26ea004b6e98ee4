package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/conciergehq/concierge-go/gateway/sse"
)

type (
	// ChatRequest is the body of both the synchronous and streaming chat
	// calls.
	ChatRequest struct {
		TenantID  string         `json:"tenantId"`
		SessionID string         `json:"sessionId"`
		Channel   string         `json:"channel,omitempty"`
		Message   string         `json:"message"`
		Metadata  map[string]any `json:"metadata,omitempty"`
		Confirm   bool           `json:"confirm,omitempty"`
	}

	// ChatResponse is the synchronous chat result.
	ChatResponse struct {
		TenantID   string                `json:"tenantId"`
		SessionID  string                `json:"sessionId"`
		Channel    string                `json:"channel"`
		Content    string                `json:"content"`
		Steps      []sse.Step            `json:"steps,omitempty"`
		UIMessages []sse.UIMessage       `json:"uiMessages,omitempty"`
		Actions    []sse.SuggestedAction `json:"actions,omitempty"`
	}
)

// Chat posts a message and blocks for the full assistant reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatStream posts a message and drives the event-stream decoder against the
// incremental response, dispatching to the given handlers. A non-2xx initial
// response is rejected with a typed error before any stream processing
// begins; a transport failure becomes a connectivity error without the
// decoder ever being touched. Cancel ctx to abort the stream; the decoder
// then fires Handlers.OnAbort exactly once.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, h sse.Handlers) error {
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat/stream", req)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return unreachableError(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.responseError(ctx, resp, "/chat/stream")
	}
	if err := sse.New(h).Decode(ctx, resp.Body); err != nil {
		return fmt.Errorf("chat stream: %w", err)
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
