package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type (
	// Thread is a conversation container scoped to a tenant.
	Thread struct {
		ID        string    `json:"id"`
		TenantID  string    `json:"tenantId"`
		Title     string    `json:"title"`
		Channel   string    `json:"channel,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// Message is one turn inside a thread.
	Message struct {
		ID        string    `json:"id"`
		ThreadID  string    `json:"threadId"`
		Role      string    `json:"role"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// ListOptions bounds thread listing.
	ListOptions struct {
		Limit  int
		Offset int
	}

	// NewThread is the creation payload.
	NewThread struct {
		TenantID string `json:"tenantId"`
		Title    string `json:"title,omitempty"`
		Channel  string `json:"channel,omitempty"`
	}

	// ThreadPatch carries partial updates; nil fields are left unchanged.
	ThreadPatch struct {
		Title   *string `json:"title,omitempty"`
		Channel *string `json:"channel,omitempty"`
	}
)

// ListThreads returns the tenant's threads, newest first.
func (c *Client) ListThreads(ctx context.Context, tenantID string, opts ListOptions) ([]Thread, error) {
	q := url.Values{"tenantId": {tenantID}}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	var out []Thread
	if err := c.doJSON(ctx, http.MethodGet, "/threads?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchThreads returns threads matching the free-text query.
func (c *Client) SearchThreads(ctx context.Context, tenantID, query string) ([]Thread, error) {
	q := url.Values{"tenantId": {tenantID}, "q": {query}}
	var out []Thread
	if err := c.doJSON(ctx, http.MethodGet, "/threads/search?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateThread creates a new thread for the tenant.
func (c *Client) CreateThread(ctx context.Context, req NewThread) (*Thread, error) {
	var out Thread
	if err := c.doJSON(ctx, http.MethodPost, "/threads", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchThread applies a partial update to a thread.
func (c *Client) PatchThread(ctx context.Context, tenantID, threadID string, patch ThreadPatch) (*Thread, error) {
	q := url.Values{"tenantId": {tenantID}}
	var out Thread
	if err := c.doJSON(ctx, http.MethodPatch, "/threads/"+url.PathEscape(threadID)+"?"+q.Encode(), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ThreadMessages fetches the messages of a thread in chronological order.
func (c *Client) ThreadMessages(ctx context.Context, tenantID, threadID string) ([]Message, error) {
	q := url.Values{"tenantId": {tenantID}}
	var out []Message
	if err := c.doJSON(ctx, http.MethodGet, "/threads/"+url.PathEscape(threadID)+"/messages?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BranchMessage forks the thread at the given message, returning the new
// thread.
func (c *Client) BranchMessage(ctx context.Context, tenantID, messageID string) (*Thread, error) {
	body := map[string]string{"tenantId": tenantID}
	var out Thread
	if err := c.doJSON(ctx, http.MethodPost, "/messages/"+url.PathEscape(messageID)+"/branch", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EditMessage replaces the content of a message.
func (c *Client) EditMessage(ctx context.Context, tenantID, messageID, content string) (*Message, error) {
	body := map[string]string{"tenantId": tenantID, "content": content}
	var out Message
	if err := c.doJSON(ctx, http.MethodPost, "/messages/"+url.PathEscape(messageID)+"/edit", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegenerateMessage asks the backend to produce a fresh assistant reply in
// place of the given message.
func (c *Client) RegenerateMessage(ctx context.Context, tenantID, messageID string) (*Message, error) {
	body := map[string]string{"tenantId": tenantID}
	var out Message
	if err := c.doJSON(ctx, http.MethodPost, "/messages/"+url.PathEscape(messageID)+"/regenerate", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
