package actions

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"goa.design/clue/log"
	"golang.org/x/time/rate"

	"github.com/conciergehq/concierge-go/actions/contextbuild"
	"github.com/conciergehq/concierge-go/gateway"
	"github.com/conciergehq/concierge-go/outputs"
)

type (
	// Gateway is the subset of the gateway client the runner depends on.
	Gateway interface {
		SubmitRun(ctx context.Context, req gateway.RunRequest) (*gateway.RunStatus, error)
		GetRun(ctx context.Context, tenantID, runID string) (*gateway.RunStatus, error)
	}

	// RunnerOption configures the Runner.
	RunnerOption func(*Runner)

	// Runner executes one action end to end: build context, submit, poll to
	// completion or timeout, validate output. The runner is stateless across
	// calls and safe for concurrent use; resuming a needs-input run is the
	// caller's responsibility (re-invoke with the missing fields supplied).
	Runner struct {
		gw          Gateway
		notifier    Notifier
		audit       *AuditLog
		interval    time.Duration
		maxAttempts int
		tracer      trace.Tracer
	}

	// RunInput carries everything needed to execute one action.
	RunInput struct {
		// TenantID scopes the run. Required.
		TenantID string
		// Target identifies what the action acts on.
		Target contextbuild.TargetRef
		// ModuleContext is the free-form domain module context handed to the
		// context builder.
		ModuleContext map[string]any
		// UIContext is forwarded verbatim inside the canonical envelope.
		UIContext map[string]any
		// Confirm approves actions whose definition requires approval. Also
		// supplies the confirm answer when resuming a needs-input run.
		Confirm bool
	}

	// ResultStatus discriminates the two non-error outcomes of a call.
	ResultStatus string

	// NeedsInput carries the interrupt state of a run that is waiting for
	// required input. It is a first-class resumable outcome, not an error.
	NeedsInput struct {
		// MissingFields lists the required fields the backend could not find.
		MissingFields []string
		// Errors carries backend validation messages, if any.
		Errors []string
		// ReasonCode is an optional machine-readable reason.
		ReasonCode string
	}

	// Result is the outcome of a successful Run call.
	Result struct {
		Status ResultStatus
		// RunID is the backend run identifier, empty when the call never
		// reached the backend (local approval gate).
		RunID string
		// Output is set for completed runs. It has passed shape validation;
		// nothing else constructs Output values.
		Output outputs.Output
		// NeedsInput is set when Status is StatusNeedsInput.
		NeedsInput *NeedsInput
		// Effects lists the notifications this call emitted, so callers can
		// render toasts without depending on the Notifier wiring.
		Effects []Notification
	}
)

const (
	// StatusCompleted means the run finished and Output is valid.
	StatusCompleted ResultStatus = "completed"
	// StatusNeedsInput means the run is interrupted awaiting input.
	StatusNeedsInput ResultStatus = "needs_input"
)

const (
	defaultPollInterval = time.Second
	defaultMaxAttempts  = 30
)

// WithNotifier sets the sink for completion and failure notifications.
func WithNotifier(n Notifier) RunnerOption {
	return func(r *Runner) {
		r.notifier = n
	}
}

// WithAuditLog sets the audit trail appended to on run completion or failure.
func WithAuditLog(l *AuditLog) RunnerOption {
	return func(r *Runner) {
		r.audit = l
	}
}

// WithPollInterval overrides the fixed wait between poll attempts.
func WithPollInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithMaxAttempts overrides the polling attempt budget.
func WithMaxAttempts(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// NewRunner constructs a Runner submitting through the given gateway.
func NewRunner(gw Gateway, opts ...RunnerOption) *Runner {
	r := &Runner{
		gw:          gw,
		interval:    defaultPollInterval,
		maxAttempts: defaultMaxAttempts,
		tracer:      otel.Tracer("github.com/conciergehq/concierge-go/actions"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run executes one action. Unknown actions and unsupported target domains
// fail fast without a network call. A needs_input status returns a resumable
// result and never enters the polling loop. Completed results are shape
// checked before being returned; callers never see unvalidated output.
func (r *Runner) Run(ctx context.Context, id ID, in RunInput) (*Result, error) {
	def, ok := Lookup(id)
	if !ok {
		return nil, &RunError{Action: id, Reason: FailUnsupportedAction}
	}
	if !def.Supports(in.Target.Domain) {
		return nil, &RunError{Action: id, Reason: FailUnsupportedDomain, Detail: string(in.Target.Domain)}
	}
	build, ok := contextbuild.ForDomain(in.Target.Domain)
	if !ok {
		return nil, &RunError{Action: id, Reason: FailUnsupportedDomain, Detail: string(in.Target.Domain)}
	}
	actx := build(in.Target, in.ModuleContext, in.UIContext)
	if actx.TargetID() == "" {
		return nil, &RunError{Action: id, Reason: FailMissingTarget}
	}
	if def.RequiresApproval && !in.Confirm {
		// Local approval gate; no network call happens for unconfirmed
		// approval-required actions.
		return &Result{
			Status: StatusNeedsInput,
			NeedsInput: &NeedsInput{
				MissingFields: []string{"confirm"},
				ReasonCode:    "approval_required",
			},
		}, nil
	}

	ctx, span := r.tracer.Start(ctx, "actions.run",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("action.id", string(id)),
			attribute.String("action.domain", string(in.Target.Domain)),
			attribute.String("tenant.id", in.TenantID),
		),
	)
	defer span.End()

	result, err := r.execute(ctx, def, in, actx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return result, nil
}

func (r *Runner) execute(ctx context.Context, def Definition, in RunInput, actx contextbuild.Context) (*Result, error) {
	targetID := actx.TargetID()
	st, err := r.gw.SubmitRun(ctx, gateway.RunRequest{
		TenantID: in.TenantID,
		ActionID: string(def.ID),
		Context:  actx,
		Confirm:  in.Confirm,
	})
	if err != nil {
		return nil, err
	}
	log.Debug(ctx, log.KV{K: "action", V: def.ID}, log.KV{K: "run_id", V: st.RunID}, log.KV{K: "status", V: st.Status})

	if st.Status == gateway.RunRunning {
		st, err = r.poll(ctx, def, in.TenantID, targetID, st.RunID)
		if err != nil {
			return nil, err
		}
	}

	switch st.Status {
	case gateway.RunNeedsInput:
		return &Result{
			Status: StatusNeedsInput,
			RunID:  st.RunID,
			NeedsInput: &NeedsInput{
				MissingFields: st.MissingFields,
				Errors:        st.Errors,
				ReasonCode:    st.ReasonCode,
			},
		}, nil
	case gateway.RunFailed:
		r.finishFailed(ctx, def, in.TenantID, targetID, st.Error)
		return nil, &RunError{Action: def.ID, Reason: FailRejected, Detail: st.Error}
	case gateway.RunCompleted:
		out, verr := outputs.Validate(def.Output, st.Result)
		if verr != nil {
			r.finishFailed(ctx, def, in.TenantID, targetID, verr.Error())
			return nil, &RunError{Action: def.ID, Reason: FailInvalidOutput, Cause: verr}
		}
		result := &Result{Status: StatusCompleted, RunID: st.RunID, Output: out}
		result.Effects = append(result.Effects, r.emit(ctx, Notification{
			Kind:     EffectCompleted,
			TenantID: in.TenantID,
			Action:   def.ID,
			TargetID: targetID,
			Message:  "action " + string(def.ID) + " completed",
		}))
		if r.audit != nil {
			r.audit.Append(AuditEntry{
				At:       time.Now().UTC(),
				TenantID: in.TenantID,
				Action:   def.ID,
				TargetID: targetID,
				Outcome:  "completed",
			})
		}
		return result, nil
	default:
		return nil, &RunError{Action: def.ID, Reason: FailRejected, Detail: "unexpected run status " + string(st.Status)}
	}
}

// poll re-checks the run at a fixed interval until it leaves the running
// state or the attempt budget runs out. Polls are strictly sequential; the
// pacer honors context cancellation mid-interval.
func (r *Runner) poll(ctx context.Context, def Definition, tenantID, targetID, runID string) (*gateway.RunStatus, error) {
	limiter := rate.NewLimiter(rate.Every(r.interval), 1)
	// Drain the initial token so the first poll waits one full interval
	// instead of firing immediately after submission.
	_ = limiter.Allow()
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		st, err := r.gw.GetRun(ctx, tenantID, runID)
		if err != nil {
			return nil, err
		}
		log.Debug(ctx,
			log.KV{K: "action", V: def.ID},
			log.KV{K: "run_id", V: runID},
			log.KV{K: "status", V: st.Status},
			log.KV{K: "attempt", V: attempt},
		)
		if st.Status != gateway.RunRunning {
			return st, nil
		}
	}
	r.finishFailed(ctx, def, tenantID, targetID, "still running after "+(time.Duration(r.maxAttempts)*r.interval).String())
	return nil, &RunError{Action: def.ID, Reason: FailTimeout}
}

// finishFailed emits the failure notification and audit entry. Both are
// best-effort; the primary error is raised to the caller regardless.
func (r *Runner) finishFailed(ctx context.Context, def Definition, tenantID, targetID, detail string) {
	r.emit(ctx, Notification{
		Kind:     EffectFailed,
		TenantID: tenantID,
		Action:   def.ID,
		TargetID: targetID,
		Message:  "action " + string(def.ID) + " failed",
	})
	if r.audit != nil {
		r.audit.Append(AuditEntry{
			At:       time.Now().UTC(),
			TenantID: tenantID,
			Action:   def.ID,
			TargetID: targetID,
			Outcome:  "failed",
			Detail:   detail,
		})
	}
}

// emit timestamps the notification and delivers it to the configured sink.
// Sink failures are logged and swallowed.
func (r *Runner) emit(ctx context.Context, n Notification) Notification {
	n.At = time.Now().UTC()
	if r.notifier != nil {
		if err := r.notifier.Notify(ctx, n); err != nil {
			log.Warn(ctx,
				log.KV{K: "msg", V: "notification delivery failed"},
				log.KV{K: "action", V: n.Action},
				log.KV{K: "err", V: err.Error()},
			)
		}
	}
	return n
}
