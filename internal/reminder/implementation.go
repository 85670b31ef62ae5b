// internal/reminder/implementation.go
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gymledger/internal/dates"
)

// service implements the Service interface.
type service struct {
	store     Store
	transport Transport
	log       zerolog.Logger
}

// NewService creates a new reminder service instance.
func NewService(store Store, transport Transport, log zerolog.Logger) Service {
	return &service{
		store:     store,
		transport: transport,
		log:       log,
	}
}

// RunSweep walks all active members and sends the reminder, if any, that
// falls due today: three days before the due date or on the due date itself.
//
// The dedup slot is claimed with an idempotent insert before the email goes
// out; a duplicate claim counts as skipped. A transport failure downgrades
// the claimed record to failed and the sweep moves on to the next member —
// one member's broken mailbox must not starve the rest. Failed sends are not
// retried within the run.
func (s *service) RunSweep(ctx context.Context, today time.Time) (*RunSummary, error) {
	today = dates.Midnight(today)
	summary := &RunSummary{RanAt: time.Now().UTC()}

	targets, err := s.store.ListActiveTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active members: %w", err)
	}

	for _, t := range targets {
		kind, due := reminderDue(today, t.DueDate)
		if !due {
			continue
		}

		rec := &Record{
			ID:           uuid.New(),
			MemberID:     t.MemberID,
			Kind:         kind,
			CycleDueDate: dates.Midnight(t.DueDate),
			Status:       StatusSent,
			SentAt:       time.Now().UTC(),
		}

		claimed, err := s.store.MarkSent(ctx, rec)
		if err != nil {
			s.log.Error().Err(err).
				Str("member_id", t.MemberID.String()).
				Str("kind", string(kind)).
				Msg("claim reminder record")
			summary.Failed++
			continue
		}
		if !claimed {
			summary.Skipped++
			continue
		}

		if err := s.transport.SendReminder(ctx, t.Email, kind, t.AmountOwed, t.DueDate); err != nil {
			s.log.Warn().Err(err).
				Str("member_id", t.MemberID.String()).
				Str("kind", string(kind)).
				Msg("reminder send failed")
			if err := s.store.MarkFailed(ctx, rec.ID); err != nil {
				s.log.Error().Err(err).
					Str("record_id", rec.ID.String()).
					Msg("mark reminder failed")
			}
			summary.Failed++
			continue
		}

		switch kind {
		case KindThreeDayPrior:
			summary.SentThreeDay++
		case KindDueToday:
			summary.SentDueToday++
		}
	}

	if err := s.store.SaveRunSummary(ctx, summary); err != nil {
		// The sweep itself succeeded; losing the summary row is a logging
		// matter, not a sweep failure.
		s.log.Error().Err(err).Msg("save run summary")
	}

	s.log.Info().
		Int("sent_three_day", summary.SentThreeDay).
		Int("sent_due_today", summary.SentDueToday).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("reminder sweep finished")

	return summary, nil
}

func reminderDue(today, dueDate time.Time) (Kind, bool) {
	switch {
	case dates.SameDay(today, dates.AddDays(dueDate, -3)):
		return KindThreeDayPrior, true
	case dates.SameDay(today, dueDate):
		return KindDueToday, true
	default:
		return "", false
	}
}
