package actions

import (
	"context"
	"time"
)

type (
	// EffectKind names the side effect a completed call produced.
	EffectKind string

	// Notification is the payload handed to the Notifier and recorded on the
	// result's effects list. It names the action and target so UI toasts and
	// team channels can describe what happened.
	Notification struct {
		Kind     EffectKind `json:"kind"`
		TenantID string     `json:"tenantId"`
		Action   ID         `json:"action"`
		TargetID string     `json:"targetId"`
		Message  string     `json:"message"`
		At       time.Time  `json:"at"`
	}

	// Notifier delivers notifications to an external sink. Delivery is
	// best-effort: the runner logs and swallows Notifier errors so a failing
	// sink never masks the primary result or error.
	Notifier interface {
		Notify(ctx context.Context, n Notification) error
	}
)

const (
	// EffectCompleted is emitted after a validated successful run.
	EffectCompleted EffectKind = "action_completed"
	// EffectFailed is emitted before a failure is raised to the caller.
	EffectFailed EffectKind = "action_failed"
)
