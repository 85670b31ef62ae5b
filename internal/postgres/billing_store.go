// internal/postgres/billing_store.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gymledger/internal/billing"
)

// InsertMember stores a freshly registered member.
func (s *Store) InsertMember(ctx context.Context, m *billing.Member) error {
	query := `
		INSERT INTO members (id, name, email, monthly_fee, start_date, due_date, payment_status, amount_owed, reminders_enabled, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.Name, m.Email, m.MonthlyFee, m.StartDate, m.DueDate,
		m.PaymentStatus, m.AmountOwed, remindersValue(m.RemindersEnabled),
		m.Status, m.Version, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// GetMember retrieves a member by ID.
func (s *Store) GetMember(ctx context.Context, id uuid.UUID) (*billing.Member, error) {
	query := `
		SELECT id, name, email, monthly_fee, start_date, due_date, payment_status, amount_owed, reminders_enabled, status, version, created_at, updated_at
		FROM members
		WHERE id = $1
	`
	return scanMember(s.db.QueryRowContext(ctx, query, id))
}

// ListMembers returns all members, oldest first.
func (s *Store) ListMembers(ctx context.Context) ([]*billing.Member, error) {
	query := `
		SELECT id, name, email, monthly_fee, start_date, due_date, payment_status, amount_owed, reminders_enabled, status, version, created_at, updated_at
		FROM members
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var members []*billing.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// UpdateMemberBilling persists the mutable billing state with an optimistic
// version check.
func (s *Store) UpdateMemberBilling(ctx context.Context, m *billing.Member) error {
	ctx, span := s.tracer.Start(ctx, "postgres.update_member_billing",
		trace.WithAttributes(
			attribute.String("member.id", m.ID.String()),
			attribute.Int("expected.version", m.Version),
		),
	)
	defer span.End()

	query := `
		UPDATE members
		SET start_date = $1, due_date = $2, payment_status = $3, amount_owed = $4, version = version + 1, updated_at = NOW()
		WHERE id = $5 AND version = $6
	`
	res, err := s.db.ExecContext(ctx, query,
		m.StartDate, m.DueDate, m.PaymentStatus, m.AmountOwed, m.ID, m.Version,
	)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update member rows: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or another writer bumped the version.
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM members WHERE id = $1)`, m.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check member: %w", err)
		}
		if !exists {
			return billing.ErrMemberNotFound
		}
		span.SetAttributes(attribute.Bool("conflict.detected", true))
		return billing.ErrConcurrencyConflict
	}

	m.Version++
	return nil
}

// AppendPayment stores one immutable payment entry.
func (s *Store) AppendPayment(ctx context.Context, e *billing.PaymentEntry) error {
	query := `
		INSERT INTO payment_entries (id, member_id, amount_paid, payment_date, method, notes, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.MemberID, e.AmountPaid, e.PaymentDate, e.Method, e.Notes, e.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("append payment: %w", err)
	}
	return nil
}

// ListPayments returns a member's payment history, oldest first.
func (s *Store) ListPayments(ctx context.Context, memberID uuid.UUID) ([]*billing.PaymentEntry, error) {
	query := `
		SELECT id, member_id, amount_paid, payment_date, method, notes, recorded_at
		FROM payment_entries
		WHERE member_id = $1
		ORDER BY recorded_at
	`
	rows, err := s.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var entries []*billing.PaymentEntry
	for rows.Next() {
		e := &billing.PaymentEntry{}
		err := rows.Scan(&e.ID, &e.MemberID, &e.AmountPaid, &e.PaymentDate, &e.Method, &e.Notes, &e.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteMemberAndPayments removes the member and all their payment entries
// in one transaction. A partial state is never observable.
func (s *Store) DeleteMemberAndPayments(ctx context.Context, id uuid.UUID) (int, error) {
	ctx, span := s.tracer.Start(ctx, "postgres.delete_member_cascade",
		trace.WithAttributes(attribute.String("member.id", id.String())),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM payment_entries WHERE member_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete payments: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete payments rows: %w", err)
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete member rows: %w", err)
	}
	if affected == 0 {
		return 0, billing.ErrMemberNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	span.SetAttributes(attribute.Int64("payments.deleted", deleted))
	return int(deleted), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*billing.Member, error) {
	m := &billing.Member{}
	var reminders sql.NullBool
	err := row.Scan(
		&m.ID, &m.Name, &m.Email, &m.MonthlyFee, &m.StartDate, &m.DueDate,
		&m.PaymentStatus, &m.AmountOwed, &reminders, &m.Status, &m.Version,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, billing.ErrMemberNotFound
		}
		return nil, fmt.Errorf("scan member: %w", err)
	}
	if reminders.Valid {
		m.RemindersEnabled = &reminders.Bool
	}
	return m, nil
}

func remindersValue(enabled *bool) sql.NullBool {
	if enabled == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *enabled, Valid: true}
}
