package services

import (
	"context"

	"github.com/velopay/payment_platform_app/internal/core/domain"
	"github.com/velopay/payment_platform_app/internal/dto"
)

// PaymentReaderSvc defines read operations for payment data.
type PaymentReaderSvc interface {
	// GetPaymentByID retrieves a payment with its status history.
	GetPaymentByID(ctx context.Context, tenantID, paymentID string) (*domain.Payment, error)

	// ListPayments retrieves a paginated list of a tenant's payments.
	ListPayments(ctx context.Context, tenantID string, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error)
}

// PaymentWriterSvc defines the lifecycle operations. Each successful call
// persists exactly one aggregate transition and publishes its domain event
// after the save commits.
type PaymentWriterSvc interface {
	// InitiatePayment creates a payment. Reusing an idempotency key within
	// a tenant returns apperrors.ErrDuplicate together with the payment the
	// key already belongs to.
	InitiatePayment(ctx context.Context, tenantID string, req dto.InitiatePaymentRequest, initiatedBy string) (*domain.Payment, error)

	// ValidatePayment applies a validation outcome. The fraud-toggle policy
	// is resolved first; when screening is disabled for the context the
	// payment is validated without consulting the supplied result.
	ValidatePayment(ctx context.Context, tenantID, paymentID string, result domain.ValidationResult, actor string) (*domain.Payment, error)

	// SubmitPaymentToClearing resolves the clearing route for the payment's
	// context and submits. An unresolved route surfaces
	// apperrors.ErrUnresolvedPolicy.
	SubmitPaymentToClearing(ctx context.Context, tenantID, paymentID, localInstrumentCode, actor string) (*domain.Payment, error)

	// MarkPaymentCleared records the clearing confirmation.
	MarkPaymentCleared(ctx context.Context, tenantID, paymentID, confirmationReference, actor string) (*domain.Payment, error)

	// CompletePayment finishes a cleared payment.
	CompletePayment(ctx context.Context, tenantID, paymentID, actor string) (*domain.Payment, error)

	// FailPayment fails any non-terminal payment with a reason.
	FailPayment(ctx context.Context, tenantID, paymentID, reason, actor string) (*domain.Payment, error)

	// UpdatePaymentStatus is the administrative correction path. It bypasses
	// the transition table but still records a status change.
	UpdatePaymentStatus(ctx context.Context, tenantID, paymentID string, status domain.PaymentStatus, reason, actor string) (*domain.Payment, error)
}

// PaymentSvcFacade combines all payment-related service interfaces.
type PaymentSvcFacade interface {
	PaymentReaderSvc
	PaymentWriterSvc
}
