// internal/reminder/service.go
package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines the interface for the reminder service.
type Service interface {
	// RunSweep scans active members once and sends whatever reminders fall
	// due on the given day, at most one per (member, kind, cycle due date).
	RunSweep(ctx context.Context, today time.Time) (*RunSummary, error)
}

// Store is the persistence collaborator for reminder records and run
// summaries.
type Store interface {
	// ListActiveTargets returns active members whose reminders are enabled
	// or unset (unset means enabled).
	ListActiveTargets(ctx context.Context) ([]Target, error)
	// MarkSent inserts a sent record if no sent record exists for the dedup
	// key, reporting whether the insert happened. The insert must be
	// idempotent, not check-then-insert.
	MarkSent(ctx context.Context, rec *Record) (bool, error)
	// MarkFailed downgrades a previously claimed record to failed after a
	// transport error.
	MarkFailed(ctx context.Context, id uuid.UUID) error
	SaveRunSummary(ctx context.Context, sum *RunSummary) error
}

// Transport delivers reminder emails. The service only cares about the
// error outcome.
type Transport interface {
	SendReminder(ctx context.Context, email string, kind Kind, amount decimal.Decimal, dueDate time.Time) error
}
