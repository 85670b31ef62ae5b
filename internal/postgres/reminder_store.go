// internal/postgres/reminder_store.go
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gymledger/internal/reminder"
)

// ListActiveTargets returns the billing snapshot of every active member
// whose reminders are enabled or unset.
func (s *Store) ListActiveTargets(ctx context.Context) ([]reminder.Target, error) {
	query := `
		SELECT id, name, email, amount_owed, due_date
		FROM members
		WHERE status = 'active'
		AND (reminders_enabled IS NULL OR reminders_enabled)
		ORDER BY due_date
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query reminder targets: %w", err)
	}
	defer rows.Close()

	var targets []reminder.Target
	for rows.Next() {
		var t reminder.Target
		if err := rows.Scan(&t.MemberID, &t.Name, &t.Email, &t.AmountOwed, &t.DueDate); err != nil {
			return nil, fmt.Errorf("scan reminder target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// MarkSent claims the dedup slot for a reminder with a single idempotent
// insert. The partial unique index on (member_id, kind, cycle_due_date)
// WHERE status = 'sent' makes a duplicate claim a no-op rather than a
// check-then-insert race.
func (s *Store) MarkSent(ctx context.Context, rec *reminder.Record) (bool, error) {
	query := `
		INSERT INTO reminder_records (id, member_id, kind, cycle_due_date, status, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (member_id, kind, cycle_due_date) WHERE status = 'sent' DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.MemberID, rec.Kind, rec.CycleDueDate, rec.Status, rec.SentAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert reminder record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert reminder record rows: %w", err)
	}
	return affected == 1, nil
}

// MarkFailed downgrades a claimed record after a transport error. The slot
// it held stops counting as sent.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE reminder_records SET status = 'failed' WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark reminder failed: %w", err)
	}
	return nil
}

// SaveRunSummary persists one sweep's counters for observability.
func (s *Store) SaveRunSummary(ctx context.Context, sum *reminder.RunSummary) error {
	query := `
		INSERT INTO reminder_runs (ran_at, sent_three_day, sent_due_today, skipped, failed)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		sum.RanAt, sum.SentThreeDay, sum.SentDueToday, sum.Skipped, sum.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert run summary: %w", err)
	}
	return nil
}
