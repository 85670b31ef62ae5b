// internal/billing/service.go
package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines the interface for the billing service.
type Service interface {
	RegisterMember(ctx context.Context, name, email string, monthlyFee decimal.Decimal, startDate time.Time, alreadyPaid bool) (*Member, error)
	GetMember(ctx context.Context, id uuid.UUID) (*Member, error)
	ListMembers(ctx context.Context) ([]*Member, error)
	UpdateStartDate(ctx context.Context, id uuid.UUID, startDate time.Time) (*Member, error)
	RecordPayment(ctx context.Context, memberID uuid.UUID, amountPaid decimal.Decimal, paymentDate time.Time, method, notes string) (*PaymentOutcome, error)
	ListPayments(ctx context.Context, memberID uuid.UUID) ([]*PaymentEntry, error)
	DeleteMember(ctx context.Context, id uuid.UUID) (*DeletionResult, error)
}
