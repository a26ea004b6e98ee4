package actions

import (
	"errors"
	"fmt"
)

type (
	// FailReason classifies why a run failed, so callers can branch on retry
	// policy without parsing message text.
	FailReason string

	// RunError reports a failed action run. Timeout is distinguished from an
	// explicit backend rejection so callers can retry with backoff instead
	// of treating the action as permanently rejected.
	RunError struct {
		// Action is the action that failed.
		Action ID
		// Reason classifies the failure.
		Reason FailReason
		// Detail carries the backend's error text, if any.
		Detail string
		// Cause stores the underlying gateway or validation error.
		Cause error
	}
)

const (
	// FailUnsupportedAction means the action id is not in the catalogue.
	FailUnsupportedAction FailReason = "unsupported_action"
	// FailUnsupportedDomain means the target domain is not supported by the
	// action's definition.
	FailUnsupportedDomain FailReason = "unsupported_domain"
	// FailMissingTarget means no usable target identifier could be derived.
	FailMissingTarget FailReason = "missing_target"
	// FailRejected means the backend reported an explicit failure status.
	FailRejected FailReason = "rejected"
	// FailTimeout means the polling attempt budget was exhausted while the
	// backend still reported the run as running.
	FailTimeout FailReason = "timeout"
	// FailInvalidOutput means the completed result failed shape validation.
	FailInvalidOutput FailReason = "invalid_output"
)

// Sentinels for errors.Is classification.
var (
	ErrUnsupportedAction = errors.New("action not supported")
	ErrMissingTarget     = errors.New("no usable target identifier")
	ErrRunRejected       = errors.New("run rejected by backend")
	ErrRunTimeout        = errors.New("run polling budget exhausted")
	ErrInvalidOutput     = errors.New("run output failed validation")
)

// Error returns a stable, human-readable classification for logs.
func (e *RunError) Error() string {
	if e == nil {
		return "action run failed"
	}
	if e.Detail != "" {
		return fmt.Sprintf("action %s failed (%s): %s", e.Action, e.Reason, e.Detail)
	}
	return fmt.Sprintf("action %s failed (%s)", e.Action, e.Reason)
}

// Unwrap exposes the underlying cause.
func (e *RunError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is maps each failure reason onto its sentinel.
func (e *RunError) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrUnsupportedAction:
		return e.Reason == FailUnsupportedAction || e.Reason == FailUnsupportedDomain
	case ErrMissingTarget:
		return e.Reason == FailMissingTarget
	case ErrRunRejected:
		return e.Reason == FailRejected
	case ErrRunTimeout:
		return e.Reason == FailTimeout
	case ErrInvalidOutput:
		return e.Reason == FailInvalidOutput
	}
	return false
}
