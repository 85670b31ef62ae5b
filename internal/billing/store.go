// internal/billing/store.go
package billing

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence collaborator for members and payments. The
// service is agnostic to the concrete implementation.
type Store interface {
	InsertMember(ctx context.Context, m *Member) error
	// GetMember returns ErrMemberNotFound for an unknown id.
	GetMember(ctx context.Context, id uuid.UUID) (*Member, error)
	ListMembers(ctx context.Context) ([]*Member, error)
	// UpdateMemberBilling persists the mutable billing state (start date,
	// due date, amount owed, payment status) with an optimistic version
	// check. It returns ErrConcurrencyConflict when the stored version no
	// longer matches m.Version, and bumps m.Version on success.
	UpdateMemberBilling(ctx context.Context, m *Member) error
	AppendPayment(ctx context.Context, e *PaymentEntry) error
	ListPayments(ctx context.Context, memberID uuid.UUID) ([]*PaymentEntry, error)
	// DeleteMemberAndPayments removes the member and every payment entry
	// attributed to it as one transaction, returning the number of payment
	// rows deleted. ErrMemberNotFound is returned with no rows touched when
	// the member does not exist.
	DeleteMemberAndPayments(ctx context.Context, id uuid.UUID) (int, error)
}
