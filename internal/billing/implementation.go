// internal/billing/implementation.go
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"gymledger/internal/dates"
)

// maxSaveAttempts bounds the optimistic-concurrency retry loop when two
// payments for the same member race on the version check.
const maxSaveAttempts = 5

// service implements the Service interface.
type service struct {
	store           Store
	log             zerolog.Logger
	registerLimiter *rate.Limiter
}

// NewService creates a new billing service instance.
func NewService(store Store, log zerolog.Logger) Service {
	return &service{
		store:           store,
		log:             log,
		registerLimiter: rate.NewLimiter(rate.Every(1*time.Minute), 5), // 5 registrations per minute
	}
}

// RegisterMember creates a new member with a fresh billing cycle. The first
// due date is one calendar month after the start date, and the opening
// balance is the full monthly fee unless the member is marked already paid.
func (s *service) RegisterMember(ctx context.Context, name, email string, monthlyFee decimal.Decimal, startDate time.Time, alreadyPaid bool) (*Member, error) {
	if !s.registerLimiter.Allow() {
		return nil, fmt.Errorf("rate limit exceeded")
	}
	if !monthlyFee.IsPositive() {
		return nil, ErrInvalidFee
	}

	now := time.Now().UTC()
	start := dates.Midnight(startDate)
	owed := monthlyFee
	if alreadyPaid {
		owed = decimal.Zero
	}

	member := &Member{
		ID:            uuid.New(),
		Name:          name,
		Email:         email,
		MonthlyFee:    monthlyFee,
		StartDate:     start,
		DueDate:       dates.AddOneMonth(start),
		PaymentStatus: statusFor(owed),
		AmountOwed:    owed,
		Status:        MemberStatusActive,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.InsertMember(ctx, member); err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}

	s.log.Info().
		Str("member_id", member.ID.String()).
		Str("due_date", member.DueDate.Format("2006-01-02")).
		Msg("member registered")

	return member, nil
}

// GetMember retrieves a member by their ID.
func (s *service) GetMember(ctx context.Context, id uuid.UUID) (*Member, error) {
	return s.store.GetMember(ctx, id)
}

// ListMembers returns all members.
func (s *service) ListMembers(ctx context.Context) ([]*Member, error) {
	return s.store.ListMembers(ctx)
}

// UpdateStartDate changes a member's start date and recomputes the due date
// from it. This is the one sanctioned recomputation outside the ledger.
func (s *service) UpdateStartDate(ctx context.Context, id uuid.UUID, startDate time.Time) (*Member, error) {
	member, err := s.store.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}

	member.StartDate = dates.Midnight(startDate)
	member.DueDate = dates.AddOneMonth(member.StartDate)

	if err := s.store.UpdateMemberBilling(ctx, member); err != nil {
		return nil, fmt.Errorf("save member: %w", err)
	}
	return member, nil
}

// RecordPayment applies a payment against the member's outstanding balance.
//
// The raw payment entry is appended unconditionally before the balance is
// touched and is never rolled back, so the audit trail covers partial
// payments too. The due date advances by one calendar month, anchored on the
// stored due date, if and only if this single payment covers the full
// monthly fee; several smaller payments that together reach the fee settle
// the balance without moving the cycle. Anchoring on the stored due date
// rather than the payment date keeps the cadence fixed for late and early
// payers alike.
func (s *service) RecordPayment(ctx context.Context, memberID uuid.UUID, amountPaid decimal.Decimal, paymentDate time.Time, method, notes string) (*PaymentOutcome, error) {
	if !amountPaid.IsPositive() {
		return nil, ErrInvalidAmount
	}

	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	entry := &PaymentEntry{
		ID:          uuid.New(),
		MemberID:    memberID,
		AmountPaid:  amountPaid,
		PaymentDate: dates.Midnight(paymentDate),
		Method:      method,
		Notes:       notes,
		RecordedAt:  time.Now().UTC(),
	}
	if err := s.store.AppendPayment(ctx, entry); err != nil {
		return nil, fmt.Errorf("append payment: %w", err)
	}

	var advanced bool
	for attempt := 0; ; attempt++ {
		owed := member.AmountOwed.Sub(amountPaid)
		if owed.IsNegative() {
			owed = decimal.Zero // overpayment carries no credit forward
		}
		advanced = amountPaid.GreaterThanOrEqual(member.MonthlyFee)

		member.AmountOwed = owed
		member.PaymentStatus = statusFor(owed)
		if advanced {
			member.DueDate = dates.AddOneMonth(member.DueDate)
		}

		err = s.store.UpdateMemberBilling(ctx, member)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrConcurrencyConflict) || attempt == maxSaveAttempts-1 {
			return nil, fmt.Errorf("save member: %w", err)
		}

		// Another payment won the race; recompute from fresh state.
		member, err = s.store.GetMember(ctx, memberID)
		if err != nil {
			return nil, err
		}
	}

	s.log.Info().
		Str("member_id", memberID.String()).
		Str("amount_paid", amountPaid.String()).
		Str("amount_owed", member.AmountOwed.String()).
		Bool("due_date_advanced", advanced).
		Msg("payment recorded")

	return &PaymentOutcome{
		AmountOwed:      member.AmountOwed,
		DueDateAdvanced: advanced,
		NewDueDate:      member.DueDate,
		PaymentStatus:   member.PaymentStatus,
	}, nil
}

// ListPayments returns the payment history for a member, oldest first.
func (s *service) ListPayments(ctx context.Context, memberID uuid.UUID) ([]*PaymentEntry, error) {
	if _, err := s.store.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	return s.store.ListPayments(ctx, memberID)
}

// DeleteMember removes a member together with their entire payment history
// as one logical unit. Reminder records are retained for audit; the
// scheduler's member fetch naturally excludes deleted members.
func (s *service) DeleteMember(ctx context.Context, id uuid.UUID) (*DeletionResult, error) {
	member, err := s.store.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.store.DeleteMemberAndPayments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete member: %w", err)
	}

	s.log.Info().
		Str("member_id", id.String()).
		Int("payments_deleted", count).
		Msg("member deleted")

	return &DeletionResult{
		MemberName:            member.Name,
		MemberDeleted:         true,
		PaymentRecordsDeleted: count,
	}, nil
}
