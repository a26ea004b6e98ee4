package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

type (
	// RunState is the backend-reported lifecycle state of an action run.
	// States transition only forward; completed and failed are terminal,
	// needs_input is terminal for the submitting call but resumable.
	RunState string

	// RunRequest submits one action execution.
	RunRequest struct {
		TenantID string `json:"tenantId"`
		ActionID string `json:"actionId"`
		Context  any    `json:"context"`
		Confirm  bool   `json:"confirm,omitempty"`
	}

	// RunStatus is the shape returned by both submission and polling.
	RunStatus struct {
		RunID         string          `json:"runId"`
		Status        RunState        `json:"status"`
		MissingFields []string        `json:"missingFields,omitempty"`
		Errors        []string        `json:"errors,omitempty"`
		ReasonCode    string          `json:"reasonCode,omitempty"`
		Result        json.RawMessage `json:"result,omitempty"`
		Error         string          `json:"error,omitempty"`
	}
)

const (
	RunRunning    RunState = "running"
	RunNeedsInput RunState = "needs_input"
	RunFailed     RunState = "failed"
	RunCompleted  RunState = "completed"
)

// SubmitRun submits an action run and returns its initial status.
func (c *Client) SubmitRun(ctx context.Context, req RunRequest) (*RunStatus, error) {
	var out RunStatus
	if err := c.doJSON(ctx, http.MethodPost, "/actions/runs", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRun polls the status of a previously submitted run.
func (c *Client) GetRun(ctx context.Context, tenantID, runID string) (*RunStatus, error) {
	q := url.Values{"tenantId": {tenantID}}
	var out RunStatus
	if err := c.doJSON(ctx, http.MethodGet, "/actions/runs/"+url.PathEscape(runID)+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
