package gateway

import (
	"errors"
	"fmt"
)

type (
	// Error is the typed failure surfaced for any non-2xx backend response
	// and for connectivity failures. Callers branch on Status or on the
	// ErrBackendUnreachable sentinel to distinguish "got an error response"
	// from "never got a response".
	Error struct {
		// Status is the HTTP status code of the error response, or
		// StatusUnreachable when the request never reached the backend.
		Status int
		// Message is a human-readable description.
		Message string
		// Body holds the backend's structured error when it parsed as JSON,
		// the raw response text otherwise, or a connectivity descriptor for
		// transport-level failures.
		Body any
		// Cause stores the underlying transport error, if any.
		Cause error
	}
)

// StatusUnreachable is the synthetic status assigned to connectivity
// failures, mirroring how the proxy reports an unavailable upstream.
const StatusUnreachable = 503

// ErrBackendUnreachable matches connectivity failures via errors.Is: the
// request never reached the backend (DNS, refused connection, transport
// timeout). Application error responses never match this sentinel.
var ErrBackendUnreachable = errors.New("backend unreachable")

// Error returns a stable description for logs.
func (e *Error) Error() string {
	if e == nil {
		return "gateway error"
	}
	return fmt.Sprintf("gateway error %d: %s", e.Status, e.Message)
}

// Unwrap exposes the underlying transport error for connectivity failures.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is allows errors.Is(err, ErrBackendUnreachable) classification for
// connectivity failures.
func (e *Error) Is(target error) bool {
	return target == ErrBackendUnreachable && e != nil && e.Cause != nil
}

// unreachableError wraps a transport-level failure into the typed Error with
// the connectivity descriptor body.
func unreachableError(cause error) *Error {
	return &Error{
		Status:  StatusUnreachable,
		Message: "cannot reach the assistant backend",
		Body: map[string]any{
			"error": "backend_unreachable",
			"hint":  "check that the backend is running and the base URL is correct",
		},
		Cause: cause,
	}
}
