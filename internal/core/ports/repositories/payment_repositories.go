package repositories

import (
	"context"

	"github.com/velopay/payment_platform_app/internal/core/domain"
)

// PaymentReader defines read operations for payment data.
type PaymentReader interface {
	// FindPaymentByID retrieves a payment with its full status history.
	// Returns apperrors.ErrNotFound when no payment exists for the tenant.
	FindPaymentByID(ctx context.Context, tenantID, paymentID string) (*domain.Payment, error)

	// FindPaymentByIdempotencyKey retrieves the payment previously created
	// with the given key, if any. Returns apperrors.ErrNotFound otherwise.
	FindPaymentByIdempotencyKey(ctx context.Context, tenantID, idempotencyKey string) (*domain.Payment, error)

	// ListPayments retrieves a paginated list of a tenant's payments using
	// token-based pagination. It returns the payments, a token for the next
	// page, and an error.
	ListPayments(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.Payment, *string, error)
}

// PaymentWriter defines write operations for payment data.
type PaymentWriter interface {
	// SavePayment persists a newly initiated payment together with its
	// initial status change, atomically. The storage layer enforces the
	// (tenant_id, idempotency_key) uniqueness constraint and returns
	// apperrors.ErrDuplicate on violation.
	SavePayment(ctx context.Context, payment *domain.Payment) error

	// UpdatePayment persists one transition: the payment row guarded by an
	// optimistic check against expectedVersion, plus the status changes
	// appended since the load, in one transaction. Returns
	// apperrors.ErrConflict when the version check fails.
	UpdatePayment(ctx context.Context, payment *domain.Payment, expectedVersion int64) error
}

// PaymentRepositoryFacade combines all payment repository interfaces.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}

// PaymentRepositoryWithTx extends PaymentRepositoryFacade with transaction
// capabilities.
type PaymentRepositoryWithTx interface {
	PaymentRepositoryFacade
	TransactionManager
}
