package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/velopay/payment_platform_app/internal/apperrors"
	"github.com/velopay/payment_platform_app/internal/core/domain"
	portsrepo "github.com/velopay/payment_platform_app/internal/core/ports/repositories"
	portssvc "github.com/velopay/payment_platform_app/internal/core/ports/services"
	"github.com/velopay/payment_platform_app/internal/dto"
	"github.com/velopay/payment_platform_app/internal/middleware"
	"github.com/velopay/payment_platform_app/internal/utils"
)

// paymentService drives the payment lifecycle. Each operation loads the
// aggregate, applies exactly one transition, persists it under the
// optimistic version check and hands the drained domain events to the
// publisher. Single-writer discipline per payment comes from that version
// check: a concurrent transition loses with apperrors.ErrConflict.
type paymentService struct {
	paymentRepo portsrepo.PaymentRepositoryWithTx
	policySvc   portssvc.PolicyResolverSvc
	publisher   portssvc.EventPublisher
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	paymentRepo portsrepo.PaymentRepositoryWithTx,
	policySvc portssvc.PolicyResolverSvc,
	publisher portssvc.EventPublisher,
) portssvc.PaymentSvcFacade {
	return &paymentService{
		paymentRepo: paymentRepo,
		policySvc:   policySvc,
		publisher:   publisher,
	}
}

// Ensure paymentService implements the facade.
var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// InitiatePayment creates a new payment. The (tenant, idempotencyKey) pair
// is checked up front and again enforced by the storage layer's unique
// constraint, so a concurrent duplicate loses no matter how the race goes.
func (s *paymentService) InitiatePayment(ctx context.Context, tenantID string, req dto.InitiatePaymentRequest, initiatedBy string) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tenant, err := domain.NewTenantContext(tenantID, req.BusinessUnit)
	if err != nil {
		return nil, err
	}
	amount, err := domain.NewMoney(req.Amount, req.CurrencyCode)
	if err != nil {
		return nil, err
	}
	source, err := domain.NewAccountNumber(req.SourceAccount)
	if err != nil {
		return nil, err
	}
	destination, err := domain.NewAccountNumber(req.DestinationAccount)
	if err != nil {
		return nil, err
	}
	reference, err := domain.NewPaymentReference(req.Reference)
	if err != nil {
		return nil, err
	}

	existing, err := s.paymentRepo.FindPaymentByIdempotencyKey(ctx, tenantID, req.IdempotencyKey)
	if err == nil {
		logger.Warn("Idempotency key already used",
			slog.String("idempotency_key", req.IdempotencyKey),
			slog.String("existing_payment_id", existing.PaymentID))
		return existing, fmt.Errorf("idempotency key already used by payment %s: %w", existing.PaymentID, apperrors.ErrDuplicate)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}

	payment, err := domain.InitiatePayment(
		uuid.NewString(),
		tenant,
		amount,
		source,
		destination,
		reference,
		req.PaymentType,
		priority,
		initiatedBy,
		req.IdempotencyKey,
	)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.SavePayment(ctx, payment); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost the race to a concurrent initiate with the same key.
			if winner, findErr := s.paymentRepo.FindPaymentByIdempotencyKey(ctx, tenantID, req.IdempotencyKey); findErr == nil {
				return winner, fmt.Errorf("idempotency key already used by payment %s: %w", winner.PaymentID, apperrors.ErrDuplicate)
			}
		}
		return nil, err
	}

	logger.Info("Payment initiated",
		slog.String("payment_id", payment.PaymentID),
		slog.String("tenant_id", tenantID),
		slog.String("amount", amount.String()))
	s.publishEvents(ctx, payment)
	return payment, nil
}

// ValidatePayment applies the validation outcome. The fraud-toggle policy
// decides whether the supplied screening result counts at all.
func (s *paymentService) ValidatePayment(ctx context.Context, tenantID, paymentID string, result domain.ValidationResult, actor string) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	return s.transition(ctx, tenantID, paymentID, func(p *domain.Payment) error {
		rc := resolutionContextFor(p, "")
		if !s.policySvc.IsFraudCheckEnabled(ctx, rc) {
			logger.Info("Fraud screening disabled by policy, validating without screening result",
				slog.String("payment_id", paymentID),
				slog.String("tenant_id", tenantID))
			result = domain.PassedValidation()
		}
		return p.Validate(result, actor)
	})
}

// SubmitPaymentToClearing resolves the clearing route for the payment's
// context and submits. No route means no safe default: the unresolved
// condition surfaces to the caller untouched.
func (s *paymentService) SubmitPaymentToClearing(ctx context.Context, tenantID, paymentID, localInstrumentCode, actor string) (*domain.Payment, error) {
	return s.transition(ctx, tenantID, paymentID, func(p *domain.Payment) error {
		rc := resolutionContextFor(p, localInstrumentCode)
		route, err := s.policySvc.ResolveClearingRoute(ctx, rc)
		if err != nil {
			return err
		}
		suffix, err := utils.GenerateSecureRandomString(8)
		if err != nil {
			return fmt.Errorf("failed to generate clearing reference: %w", err)
		}
		return p.SubmitToClearing(route, "CLR-"+suffix, actor)
	})
}

// MarkPaymentCleared records the clearing confirmation.
func (s *paymentService) MarkPaymentCleared(ctx context.Context, tenantID, paymentID, confirmationReference, actor string) (*domain.Payment, error) {
	return s.transition(ctx, tenantID, paymentID, func(p *domain.Payment) error {
		return p.MarkCleared(confirmationReference, actor)
	})
}

// CompletePayment finishes a cleared payment.
func (s *paymentService) CompletePayment(ctx context.Context, tenantID, paymentID, actor string) (*domain.Payment, error) {
	return s.transition(ctx, tenantID, paymentID, func(p *domain.Payment) error {
		return p.Complete(actor)
	})
}

// FailPayment fails any non-terminal payment.
func (s *paymentService) FailPayment(ctx context.Context, tenantID, paymentID, reason, actor string) (*domain.Payment, error) {
	return s.transition(ctx, tenantID, paymentID, func(p *domain.Payment) error {
		return p.Fail(reason, actor)
	})
}

// UpdatePaymentStatus is the administrative correction path.
func (s *paymentService) UpdatePaymentStatus(ctx context.Context, tenantID, paymentID string, status domain.PaymentStatus, reason, actor string) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Warn("Administrative status update requested",
		slog.String("payment_id", paymentID),
		slog.String("target_status", string(status)),
		slog.String("actor", actor))

	return s.transition(ctx, tenantID, paymentID, func(p *domain.Payment) error {
		return p.UpdateStatus(status, reason, actor)
	})
}

// GetPaymentByID retrieves a payment with its status history.
func (s *paymentService) GetPaymentByID(ctx context.Context, tenantID, paymentID string) (*domain.Payment, error) {
	return s.paymentRepo.FindPaymentByID(ctx, tenantID, paymentID)
}

// ListPayments retrieves a paginated list of a tenant's payments.
func (s *paymentService) ListPayments(ctx context.Context, tenantID string, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	payments, nextToken, err := s.paymentRepo.ListPayments(ctx, tenantID, limit, params.NextToken)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListPaymentsResponse{
		Payments:  dto.ToPaymentResponses(payments),
		NextToken: nextToken,
	}
	return resp, nil
}

// transition runs one aggregate operation and persists it atomically.
// Either the full transition (status + timestamp + history + event)
// commits, or none of it does: a failed guard leaves the aggregate
// untouched, and a failed save discards the in-memory mutation with the
// loaded copy.
func (s *paymentService) transition(ctx context.Context, tenantID, paymentID string, op func(p *domain.Payment) error) (*domain.Payment, error) {
	payment, err := s.paymentRepo.FindPaymentByID(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}

	expectedVersion := payment.Version
	if err := op(payment); err != nil {
		return nil, err
	}
	payment.Version = expectedVersion + 1

	if err := s.paymentRepo.UpdatePayment(ctx, payment, expectedVersion); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, payment)
	return payment, nil
}

// publishEvents drains the aggregate's pending events into the publisher.
// Publish failures are logged, not propagated: the state change is already
// committed and the broker is an at-least-once side channel.
func (s *paymentService) publishEvents(ctx context.Context, p *domain.Payment) {
	events := p.DomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to publish domain events",
			slog.String("payment_id", p.PaymentID),
			slog.Int("event_count", len(events)),
			slog.String("error", err.Error()))
	}
	p.ClearDomainEvents()
}

// resolutionContextFor builds the policy resolution context for a payment.
func resolutionContextFor(p *domain.Payment, localInstrumentCode string) domain.ResolutionContext {
	return domain.ResolutionContext{
		TenantID:            p.Tenant.TenantID,
		PaymentType:         string(p.PaymentType),
		LocalInstrumentCode: localInstrumentCode,
		ClearingSystemCode:  p.ClearingSystemCode,
	}
}
