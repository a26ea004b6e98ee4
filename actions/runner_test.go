package actions

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conciergehq/concierge-go/actions/contextbuild"
	"github.com/conciergehq/concierge-go/gateway"
	"github.com/conciergehq/concierge-go/outputs"
)

type fakeGateway struct {
	mu      sync.Mutex
	submits int
	polls   int

	submitFn func(req gateway.RunRequest) (*gateway.RunStatus, error)
	pollFn   func(poll int) (*gateway.RunStatus, error)
}

func (f *fakeGateway) SubmitRun(_ context.Context, req gateway.RunRequest) (*gateway.RunStatus, error) {
	f.mu.Lock()
	f.submits++
	f.mu.Unlock()
	return f.submitFn(req)
}

func (f *fakeGateway) GetRun(_ context.Context, _, _ string) (*gateway.RunStatus, error) {
	f.mu.Lock()
	f.polls++
	n := f.polls
	f.mu.Unlock()
	return f.pollFn(n)
}

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []Notification
	fail  bool
	calls int
}

func (n *recordingNotifier) Notify(_ context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.fail {
		return errors.New("sink down")
	}
	n.sent = append(n.sent, notification)
	return nil
}

func inboxInput() RunInput {
	return RunInput{
		TenantID: "t-1",
		Target:   contextbuild.TargetRef{Domain: contextbuild.DomainInbox, TargetID: "th-1", Title: "Order status"},
	}
}

func fastRunner(gw Gateway, opts ...RunnerOption) *Runner {
	opts = append([]RunnerOption{
		WithPollInterval(time.Millisecond),
		WithMaxAttempts(3),
	}, opts...)
	return NewRunner(gw, opts...)
}

func TestRunCompletedValidatesOutput(t *testing.T) {
	gw := &fakeGateway{
		submitFn: func(req gateway.RunRequest) (*gateway.RunStatus, error) {
			require.Equal(t, "summarize_thread", req.ActionID)
			actx, ok := req.Context.(contextbuild.Context)
			require.True(t, ok)
			require.Equal(t, "th-1", actx.TargetID())
			return &gateway.RunStatus{
				RunID:  "run-1",
				Status: gateway.RunCompleted,
				Result: json.RawMessage(`{"kind":"summary","text":"All clear."}`),
			}, nil
		},
	}
	audit := NewAuditLog()
	notifier := &recordingNotifier{}
	runner := fastRunner(gw, WithNotifier(notifier), WithAuditLog(audit))

	result, err := runner.Run(context.Background(), SummarizeThread, inboxInput())
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, result.Status)
	require.Equal(t, "run-1", result.RunID)
	summary, ok := result.Output.(outputs.Summary)
	require.True(t, ok)
	require.Equal(t, "All clear.", summary.Text)

	require.Len(t, result.Effects, 1)
	require.Equal(t, EffectCompleted, result.Effects[0].Kind)
	require.Equal(t, SummarizeThread, result.Effects[0].Action)

	require.Len(t, notifier.sent, 1)
	entries := audit.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "completed", entries[0].Outcome)
}

// TestRunNeedsInputSkipsPolling verifies the interrupt path: a needs_input
// submission returns a resumable result with the field list unchanged and
// never enters the polling loop.
func TestRunNeedsInputSkipsPolling(t *testing.T) {
	gw := &fakeGateway{
		submitFn: func(gateway.RunRequest) (*gateway.RunStatus, error) {
			return &gateway.RunStatus{
				RunID:         "run-2",
				Status:        gateway.RunNeedsInput,
				MissingFields: []string{"thread_id"},
				Errors:        []string{"thread_id is required"},
				ReasonCode:    "missing_thread",
			}, nil
		},
	}
	runner := fastRunner(gw)

	result, err := runner.Run(context.Background(), SummarizeThread, inboxInput())
	require.NoError(t, err)
	require.Equal(t, StatusNeedsInput, result.Status)
	require.NotNil(t, result.NeedsInput)
	require.Equal(t, []string{"thread_id"}, result.NeedsInput.MissingFields)
	require.Equal(t, []string{"thread_id is required"}, result.NeedsInput.Errors)
	require.Equal(t, "missing_thread", result.NeedsInput.ReasonCode)
	require.Zero(t, gw.polls)
}

// TestRunTimeoutDistinctFromRejection verifies that exhausting the attempt
// budget while the backend still reports running yields a timeout error, not
// a rejection, and that the failure notification still names the action and
// target.
func TestRunTimeoutDistinctFromRejection(t *testing.T) {
	gw := &fakeGateway{
		submitFn: func(gateway.RunRequest) (*gateway.RunStatus, error) {
			return &gateway.RunStatus{RunID: "run-3", Status: gateway.RunRunning}, nil
		},
		pollFn: func(int) (*gateway.RunStatus, error) {
			return &gateway.RunStatus{RunID: "run-3", Status: gateway.RunRunning}, nil
		},
	}
	audit := NewAuditLog()
	notifier := &recordingNotifier{}
	runner := fastRunner(gw, WithNotifier(notifier), WithAuditLog(audit))

	_, err := runner.Run(context.Background(), SummarizeThread, inboxInput())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrRunTimeout)
	require.NotErrorIs(t, err, ErrRunRejected)
	require.Equal(t, 3, gw.polls)

	require.Len(t, notifier.sent, 1)
	require.Equal(t, EffectFailed, notifier.sent[0].Kind)
	require.Equal(t, SummarizeThread, notifier.sent[0].Action)
	require.Equal(t, "th-1", notifier.sent[0].TargetID)

	entries := audit.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "th-1", entries[0].TargetID)
}

func TestRunPollsUntilCompleted(t *testing.T) {
	gw := &fakeGateway{
		submitFn: func(gateway.RunRequest) (*gateway.RunStatus, error) {
			return &gateway.RunStatus{RunID: "run-4", Status: gateway.RunRunning}, nil
		},
		pollFn: func(poll int) (*gateway.RunStatus, error) {
			if poll < 2 {
				return &gateway.RunStatus{RunID: "run-4", Status: gateway.RunRunning}, nil
			}
			return &gateway.RunStatus{
				RunID:  "run-4",
				Status: gateway.RunCompleted,
				Result: json.RawMessage(`{"kind":"summary","text":"Done."}`),
			}, nil
		},
	}
	runner := fastRunner(gw)

	result, err := runner.Run(context.Background(), SummarizeThread, inboxInput())
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, result.Status)
	require.Equal(t, 2, gw.polls)
}

// TestRunExplicitFailure verifies that an explicit failed status becomes a
// rejection error and a failure notification fires before the error reaches
// the caller.
func TestRunExplicitFailure(t *testing.T) {
	gw := &fakeGateway{
		submitFn: func(gateway.RunRequest) (*gateway.RunStatus, error) {
			return &gateway.RunStatus{RunID: "run-5", Status: gateway.RunFailed, Error: "model unavailable"}, nil
		},
	}
	audit := NewAuditLog()
	notifier := &recordingNotifier{}
	runner := fastRunner(gw, WithNotifier(notifier), WithAuditLog(audit))

	_, err := runner.Run(context.Background(), SummarizeThread, inboxInput())
	require.ErrorIs(t, err, ErrRunRejected)

	var rerr *RunError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "model unavailable", rerr.Detail)

	require.Len(t, notifier.sent, 1)
	require.Equal(t, EffectFailed, notifier.sent[0].Kind)

	entries := audit.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "failed", entries[0].Outcome)
}

// TestRunInvalidOutputIsHardFailure verifies that a completed run whose
// result fails shape validation is a hard failure, never a silent
// pass-through.
func TestRunInvalidOutputIsHardFailure(t *testing.T) {
	gw := &fakeGateway{
		submitFn: func(gateway.RunRequest) (*gateway.RunStatus, error) {
			return &gateway.RunStatus{
				RunID:  "run-6",
				Status: gateway.RunCompleted,
				Result: json.RawMessage(`{"kind":"summary","text":""}`),
			}, nil
		},
	}
	runner := fastRunner(gw)

	_, err := runner.Run(context.Background(), SummarizeThread, inboxInput())
	require.ErrorIs(t, err, ErrInvalidOutput)
	require.ErrorIs(t, err, outputs.ErrShapeViolation)
}

// TestRunFailsFastWithoutNetwork verifies local rejection of unknown actions,
// unsupported domains, and unroutable targets before any network call.
func TestRunFailsFastWithoutNetwork(t *testing.T) {
	gw := &fakeGateway{
		submitFn: func(gateway.RunRequest) (*gateway.RunStatus, error) {
			t.Fatal("submit must not be called")
			return nil, nil
		},
	}
	runner := fastRunner(gw)
	ctx := context.Background()

	_, err := runner.Run(ctx, ID("compose_symphony"), inboxInput())
	require.ErrorIs(t, err, ErrUnsupportedAction)

	in := inboxInput()
	in.Target.Domain = contextbuild.DomainGrowth
	_, err = runner.Run(ctx, SummarizeThread, in)
	require.ErrorIs(t, err, ErrUnsupportedAction)

	in = inboxInput()
	in.Target.TargetID = ""
	_, err = runner.Run(ctx, SummarizeThread, in)
	require.ErrorIs(t, err, ErrMissingTarget)

	require.Zero(t, gw.submits)
}

// TestRunApprovalGate verifies that approval-required actions without Confirm
// yield a local needs-input result instead of hitting the backend.
func TestRunApprovalGate(t *testing.T) {
	gw := &fakeGateway{
		submitFn: func(req gateway.RunRequest) (*gateway.RunStatus, error) {
			require.True(t, req.Confirm)
			return &gateway.RunStatus{
				RunID:  "run-7",
				Status: gateway.RunCompleted,
				Result: json.RawMessage(`{"kind":"reply","text":"Thanks for the report!"}`),
			}, nil
		},
	}
	runner := fastRunner(gw)
	ctx := context.Background()

	in := inboxInput()
	result, err := runner.Run(ctx, DraftReply, in)
	require.NoError(t, err)
	require.Equal(t, StatusNeedsInput, result.Status)
	require.Equal(t, []string{"confirm"}, result.NeedsInput.MissingFields)
	require.Equal(t, "approval_required", result.NeedsInput.ReasonCode)
	require.Zero(t, gw.submits)

	in.Confirm = true
	result, err = runner.Run(ctx, DraftReply, in)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, result.Status)
	require.Equal(t, 1, gw.submits)
}

// TestNotifierFailureNeverMasksResult verifies that side-effect failures are
// swallowed: the call still succeeds and the effects list still records the
// notification.
func TestNotifierFailureNeverMasksResult(t *testing.T) {
	gw := &fakeGateway{
		submitFn: func(gateway.RunRequest) (*gateway.RunStatus, error) {
			return &gateway.RunStatus{
				RunID:  "run-8",
				Status: gateway.RunCompleted,
				Result: json.RawMessage(`{"kind":"summary","text":"fine"}`),
			}, nil
		},
	}
	notifier := &recordingNotifier{fail: true}
	runner := fastRunner(gw, WithNotifier(notifier))

	result, err := runner.Run(context.Background(), SummarizeThread, inboxInput())
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, result.Status)
	require.Len(t, result.Effects, 1)
	require.Equal(t, 1, notifier.calls)
}

// TestRunGatewayErrorPropagates verifies that transport and application
// errors from the gateway surface unchanged so callers can branch on the
// typed gateway error.
func TestRunGatewayErrorPropagates(t *testing.T) {
	gwErr := &gateway.Error{Status: 502, Message: "bad gateway"}
	gw := &fakeGateway{
		submitFn: func(gateway.RunRequest) (*gateway.RunStatus, error) {
			return nil, gwErr
		},
	}
	runner := fastRunner(gw)

	_, err := runner.Run(context.Background(), SummarizeThread, inboxInput())
	var gerr *gateway.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, 502, gerr.Status)
}

func TestRunPollCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gw := &fakeGateway{
		submitFn: func(gateway.RunRequest) (*gateway.RunStatus, error) {
			return &gateway.RunStatus{RunID: "run-9", Status: gateway.RunRunning}, nil
		},
		pollFn: func(int) (*gateway.RunStatus, error) {
			cancel()
			return &gateway.RunStatus{RunID: "run-9", Status: gateway.RunRunning}, nil
		},
	}
	runner := NewRunner(gw, WithPollInterval(time.Millisecond), WithMaxAttempts(10))

	_, err := runner.Run(ctx, SummarizeThread, inboxInput())
	require.ErrorIs(t, err, context.Canceled)
	require.LessOrEqual(t, gw.polls, 2)
}
