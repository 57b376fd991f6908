package repositories

import (
	"context"

	"github.com/velopay/payment_platform_app/internal/core/domain"
)

// PolicyReader defines read operations for policy records.
type PolicyReader interface {
	// FindPolicyByID retrieves a single policy record.
	FindPolicyByID(ctx context.Context, policyID string) (*domain.PolicyRecord, error)

	// FindCandidates retrieves every record of the family scoped to the
	// tenant, regardless of active flag or effectiveness window. Filtering
	// is the resolution engine's job, not the store's.
	FindCandidates(ctx context.Context, family domain.PolicyFamily, tenantID string) ([]domain.PolicyRecord, error)

	// ListPolicies retrieves all records of a family for a tenant, for
	// administrative listing.
	ListPolicies(ctx context.Context, family domain.PolicyFamily, tenantID string) ([]domain.PolicyRecord, error)
}

// PolicyWriter defines write operations for policy records.
type PolicyWriter interface {
	// SavePolicy inserts a new record. Returns apperrors.ErrDuplicate when
	// the policy ID already exists.
	SavePolicy(ctx context.Context, record domain.PolicyRecord) error

	// UpdatePolicy updates a record guarded by an optimistic check against
	// expectedVersion. Returns apperrors.ErrConflict on mismatch.
	UpdatePolicy(ctx context.Context, record domain.PolicyRecord, expectedVersion int64) error

	// DeletePolicy removes a record. Returns apperrors.ErrNotFound when it
	// does not exist.
	DeletePolicy(ctx context.Context, policyID string) error
}

// PolicyRepositoryFacade combines all policy repository interfaces.
type PolicyRepositoryFacade interface {
	PolicyReader
	PolicyWriter
}
