package actions

import (
	"sync"
	"time"
)

type (
	// AuditEntry records one finished action run.
	AuditEntry struct {
		At       time.Time
		TenantID string
		Action   ID
		TargetID string
		// Outcome is "completed" or "failed".
		Outcome string
		// Detail carries the failure reason for failed runs.
		Detail string
	}

	// AuditLog is an in-memory, append-only record of finished runs. Entries
	// are only ever appended; reads return a defensive copy.
	AuditLog struct {
		mu      sync.Mutex
		entries []AuditEntry
	}
)

// NewAuditLog constructs an empty audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Append records one entry.
func (l *AuditLog) Append(e AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Entries returns a copy of the log in append order.
func (l *AuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
