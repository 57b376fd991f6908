package services

import (
	"context"

	"github.com/velopay/payment_platform_app/internal/core/domain"
	"github.com/velopay/payment_platform_app/internal/dto"
)

// PolicyResolverSvc exposes cached policy resolution to the rest of the
// application. Resolution is read-only and safe under unbounded
// concurrency.
type PolicyResolverSvc interface {
	// IsFraudCheckEnabled resolves the fraud-API toggle for the context.
	// Fail open: defaults to true on no record and on any resolution error.
	IsFraudCheckEnabled(ctx context.Context, rc domain.ResolutionContext) bool

	// ResolveClearingRoute resolves the clearing system for the context.
	// There is no safe default; apperrors.ErrUnresolvedPolicy is returned
	// when no record applies.
	ResolveClearingRoute(ctx context.Context, rc domain.ResolutionContext) (string, error)

	// ResolveGatewayAuth resolves the authentication method for a gateway
	// hop. No safe default; unresolved contexts must be rejected.
	ResolveGatewayAuth(ctx context.Context, rc domain.ResolutionContext) (string, error)

	// ResolvePolicy runs resolution for an arbitrary family and returns the
	// winning record, or nil when none applies. Operator debugging aid.
	ResolvePolicy(ctx context.Context, family domain.PolicyFamily, rc domain.ResolutionContext) (*domain.PolicyRecord, error)
}

// PolicyAdminSvc defines the administrative write operations. Every write
// invalidates the family's resolution cache before returning.
type PolicyAdminSvc interface {
	CreatePolicy(ctx context.Context, tenantID string, req dto.CreatePolicyRequest, creatorID string) (*domain.PolicyRecord, error)
	UpdatePolicy(ctx context.Context, tenantID, policyID string, req dto.UpdatePolicyRequest, updaterID string) (*domain.PolicyRecord, error)
	DeletePolicy(ctx context.Context, tenantID, policyID string, deleterID string) error
	GetPolicyByID(ctx context.Context, tenantID, policyID string) (*domain.PolicyRecord, error)
	ListPolicies(ctx context.Context, family domain.PolicyFamily, tenantID string) ([]domain.PolicyRecord, error)
}

// PolicySvcFacade combines resolution and administration.
type PolicySvcFacade interface {
	PolicyResolverSvc
	PolicyAdminSvc
}
