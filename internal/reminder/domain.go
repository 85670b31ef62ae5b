// internal/reminder/domain.go
package reminder

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind distinguishes the two reminder emails a cycle can produce.
type Kind string

const (
	KindThreeDayPrior Kind = "three_day_prior"
	KindDueToday      Kind = "due_today"
)

// Status records the delivery outcome. Failed sends are recorded, not
// retried; the stored record is the only surface the failure has.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Record is one reminder occurrence. The tuple (MemberID, Kind,
// CycleDueDate) is the dedup key: at most one sent record exists per tuple.
type Record struct {
	ID           uuid.UUID `json:"id"`
	MemberID     uuid.UUID `json:"member_id"`
	Kind         Kind      `json:"kind"`
	CycleDueDate time.Time `json:"cycle_due_date"`
	Status       Status    `json:"status"`
	SentAt       time.Time `json:"sent_at"`
}

// Target is the member snapshot a sweep works from.
type Target struct {
	MemberID   uuid.UUID
	Name       string
	Email      string
	AmountOwed decimal.Decimal
	DueDate    time.Time
}

// RunSummary is the persisted outcome of a single sweep.
type RunSummary struct {
	RanAt        time.Time `json:"ran_at"`
	SentThreeDay int       `json:"sent_three_day"`
	SentDueToday int       `json:"sent_due_today"`
	Skipped      int       `json:"skipped"`
	Failed       int       `json:"failed"`
}
