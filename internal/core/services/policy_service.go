package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/velopay/payment_platform_app/internal/apperrors"
	"github.com/velopay/payment_platform_app/internal/core/domain"
	"github.com/velopay/payment_platform_app/internal/core/policy"
	portsrepo "github.com/velopay/payment_platform_app/internal/core/ports/repositories"
	portssvc "github.com/velopay/payment_platform_app/internal/core/ports/services"
	"github.com/velopay/payment_platform_app/internal/dto"
	"github.com/velopay/payment_platform_app/internal/middleware"
)

// policyService fronts the resolution engine with the per-family cache and
// owns the administrative write paths. Every write invalidates the
// family's cache before the call returns, so once a write is acknowledged
// no resolution can observe the pre-write value beyond entries already
// being served.
type policyService struct {
	policyRepo portsrepo.PolicyRepositoryFacade
	cache      *policy.ResolutionCache
	now        func() time.Time
}

// NewPolicyService creates a new policy service.
func NewPolicyService(policyRepo portsrepo.PolicyRepositoryFacade, cache *policy.ResolutionCache) portssvc.PolicySvcFacade {
	return &policyService{
		policyRepo: policyRepo,
		cache:      cache,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.PolicySvcFacade = (*policyService)(nil)

// ResolvePolicy resolves the winning record for the context, consulting
// the cache first. A nil record with a nil error means nothing applies.
func (s *policyService) ResolvePolicy(ctx context.Context, family domain.PolicyFamily, rc domain.ResolutionContext) (*domain.PolicyRecord, error) {
	if !family.IsValid() {
		return nil, fmt.Errorf("%w: unknown policy family %q", apperrors.ErrValidation, family)
	}
	if cached, ok := s.cache.Get(family, rc); ok {
		return cached, nil
	}

	candidates, err := s.policyRepo.FindCandidates(ctx, family, rc.TenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPolicyStoreUnavailable, err)
	}

	resolved := policy.Resolve(s.now(), rc, candidates)
	s.cache.Put(family, rc, resolved)
	return resolved, nil
}

// IsFraudCheckEnabled resolves the fraud-API toggle. Fail open: both "no
// record" and any resolution error default to enabled, so a resolution
// outage can never silently switch risk screening off. The fallback is
// logged at WARN to keep the posture observable.
func (s *policyService) IsFraudCheckEnabled(ctx context.Context, rc domain.ResolutionContext) bool {
	record, err := s.ResolvePolicy(ctx, domain.PolicyFamilyFraudToggle, rc)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Fraud toggle resolution failed, failing open",
			slog.String("tenant_id", rc.TenantID),
			slog.String("payment_type", rc.PaymentType),
			slog.String("error", err.Error()))
		return true
	}
	if record == nil {
		return true
	}
	return record.Enabled()
}

// ResolveClearingRoute resolves the clearing system for the context. No
// safe default exists for routing.
func (s *policyService) ResolveClearingRoute(ctx context.Context, rc domain.ResolutionContext) (string, error) {
	record, err := s.ResolvePolicy(ctx, domain.PolicyFamilyClearingRoute, rc)
	if err != nil {
		return "", err
	}
	if record == nil {
		return "", fmt.Errorf("no clearing route configured for tenant %s, payment type %s: %w",
			rc.TenantID, rc.PaymentType, apperrors.ErrUnresolvedPolicy)
	}
	return record.Decision, nil
}

// ResolveGatewayAuth resolves the authentication method for a gateway hop.
// Unresolved contexts must be rejected by the caller.
func (s *policyService) ResolveGatewayAuth(ctx context.Context, rc domain.ResolutionContext) (string, error) {
	record, err := s.ResolvePolicy(ctx, domain.PolicyFamilyGatewayAuth, rc)
	if err != nil {
		return "", err
	}
	if record == nil {
		return "", fmt.Errorf("no gateway authentication method configured for tenant %s: %w",
			rc.TenantID, apperrors.ErrUnresolvedPolicy)
	}
	return record.Decision, nil
}

// CreatePolicy creates a policy record and invalidates the family cache.
func (s *policyService) CreatePolicy(ctx context.Context, tenantID string, req dto.CreatePolicyRequest, creatorID string) (*domain.PolicyRecord, error) {
	now := s.now()
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	record := domain.PolicyRecord{
		PolicyID: uuid.NewString(),
		Family:   req.Family,
		Scope: domain.PolicyScope{
			TenantID:            tenantID,
			PaymentType:         req.PaymentType,
			LocalInstrumentCode: req.LocalInstrumentCode,
			ClearingSystemCode:  req.ClearingSystemCode,
		},
		Decision:       req.Decision,
		Priority:       req.Priority,
		IsActive:       isActive,
		EffectiveFrom:  req.EffectiveFrom,
		EffectiveUntil: req.EffectiveUntil,
		Reason:         req.Reason,
		Version:        1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}
	if err := domain.ValidatePolicyRecord(record); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.policyRepo.SavePolicy(ctx, record); err != nil {
		return nil, err
	}
	s.cache.InvalidateFamily(record.Family)

	middleware.GetLoggerFromCtx(ctx).Info("Policy created",
		slog.String("policy_id", record.PolicyID),
		slog.String("family", string(record.Family)),
		slog.String("tenant_id", tenantID))
	return &record, nil
}

// findTenantPolicy loads a record and verifies it belongs to the tenant.
// A record owned by another tenant is reported as not found rather than
// forbidden, so the route does not leak the policy's existence.
func (s *policyService) findTenantPolicy(ctx context.Context, tenantID, policyID string) (*domain.PolicyRecord, error) {
	record, err := s.policyRepo.FindPolicyByID(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if record.Scope.TenantID != tenantID {
		return nil, fmt.Errorf("policy %s not found for tenant %s: %w", policyID, tenantID, apperrors.ErrNotFound)
	}
	return record, nil
}

// UpdatePolicy applies a partial update guarded by the optimistic version
// check and invalidates the family cache.
func (s *policyService) UpdatePolicy(ctx context.Context, tenantID, policyID string, req dto.UpdatePolicyRequest, updaterID string) (*domain.PolicyRecord, error) {
	record, err := s.findTenantPolicy(ctx, tenantID, policyID)
	if err != nil {
		return nil, err
	}
	if record.Version != req.Version {
		return nil, fmt.Errorf("policy %s is at version %d, expected %d: %w",
			policyID, record.Version, req.Version, apperrors.ErrConflict)
	}

	if req.Decision != nil {
		record.Decision = *req.Decision
	}
	if req.Priority != nil {
		record.Priority = *req.Priority
	}
	if req.IsActive != nil {
		record.IsActive = *req.IsActive
	}
	if req.EffectiveFrom != nil {
		record.EffectiveFrom = req.EffectiveFrom
	}
	if req.EffectiveUntil != nil {
		record.EffectiveUntil = req.EffectiveUntil
	}
	if req.Reason != nil {
		record.Reason = *req.Reason
	}
	record.Version = req.Version + 1
	record.LastUpdatedAt = s.now()
	record.LastUpdatedBy = updaterID

	if err := domain.ValidatePolicyRecord(*record); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.policyRepo.UpdatePolicy(ctx, *record, req.Version); err != nil {
		return nil, err
	}
	s.cache.InvalidateFamily(record.Family)

	middleware.GetLoggerFromCtx(ctx).Info("Policy updated",
		slog.String("policy_id", policyID),
		slog.String("family", string(record.Family)))
	return record, nil
}

// DeletePolicy removes a record and invalidates the family cache.
func (s *policyService) DeletePolicy(ctx context.Context, tenantID, policyID string, deleterID string) error {
	record, err := s.findTenantPolicy(ctx, tenantID, policyID)
	if err != nil {
		return err
	}

	if err := s.policyRepo.DeletePolicy(ctx, policyID); err != nil {
		return err
	}
	s.cache.InvalidateFamily(record.Family)

	middleware.GetLoggerFromCtx(ctx).Info("Policy deleted",
		slog.String("policy_id", policyID),
		slog.String("family", string(record.Family)),
		slog.String("deleted_by", deleterID))
	return nil
}

// GetPolicyByID retrieves a single policy record owned by the tenant.
func (s *policyService) GetPolicyByID(ctx context.Context, tenantID, policyID string) (*domain.PolicyRecord, error) {
	return s.findTenantPolicy(ctx, tenantID, policyID)
}

// ListPolicies lists all records of a family for a tenant.
func (s *policyService) ListPolicies(ctx context.Context, family domain.PolicyFamily, tenantID string) ([]domain.PolicyRecord, error) {
	if !family.IsValid() {
		return nil, fmt.Errorf("%w: unknown policy family %q", apperrors.ErrValidation, family)
	}
	return s.policyRepo.ListPolicies(ctx, family, tenantID)
}
