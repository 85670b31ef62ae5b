// internal/billing/domain.go
package billing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("payment amount must be positive")
	ErrInvalidFee          = errors.New("monthly fee must be positive")
	ErrMemberNotFound      = errors.New("member not found")
	ErrConcurrencyConflict = errors.New("concurrency conflict: version mismatch")
)

// PaymentStatus is a projection of the outstanding balance: paid when
// amount_owed is zero, due otherwise. It is never set independently.
type PaymentStatus string

const (
	PaymentStatusDue  PaymentStatus = "due"
	PaymentStatusPaid PaymentStatus = "paid"
)

// MemberStatus controls scheduler participation; only active members are
// swept for reminders.
type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

// Member represents a gym member together with their billing state.
type Member struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	MonthlyFee       decimal.Decimal `json:"monthly_fee"`
	StartDate        time.Time       `json:"start_date"`
	DueDate          time.Time       `json:"due_date"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	AmountOwed       decimal.Decimal `json:"amount_owed"`
	RemindersEnabled *bool           `json:"reminders_enabled,omitempty"`
	Status           MemberStatus    `json:"status"`
	Version          int             `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// RemindersOn reports whether the member receives reminder emails. An unset
// flag means enabled; records written before the flag existed carry no value.
func (m *Member) RemindersOn() bool {
	return m.RemindersEnabled == nil || *m.RemindersEnabled
}

// PaymentEntry is one recorded payment. Entries are append-only and never
// mutated or reordered; they form the audit trail.
type PaymentEntry struct {
	ID          uuid.UUID       `json:"id"`
	MemberID    uuid.UUID       `json:"member_id"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      string          `json:"method"`
	Notes       string          `json:"notes,omitempty"`
	RecordedAt  time.Time       `json:"recorded_at"`
}

// PaymentOutcome reports the billing state after a payment was applied.
type PaymentOutcome struct {
	AmountOwed      decimal.Decimal `json:"amount_owed"`
	DueDateAdvanced bool            `json:"due_date_advanced"`
	NewDueDate      time.Time       `json:"new_due_date"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
}

// DeletionResult reports a completed member deletion cascade.
type DeletionResult struct {
	MemberName            string `json:"member_name"`
	MemberDeleted         bool   `json:"member_deleted"`
	PaymentRecordsDeleted int    `json:"payment_records_deleted"`
}

func statusFor(owed decimal.Decimal) PaymentStatus {
	if owed.IsZero() {
		return PaymentStatusPaid
	}
	return PaymentStatusDue
}
