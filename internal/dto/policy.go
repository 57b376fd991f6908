package dto

import (
	"time"

	"github.com/velopay/payment_platform_app/internal/core/domain"
)

// CreatePolicyRequest defines the request body for creating a policy record.
// Scope fields beyond the tenant are wildcards when omitted.
type CreatePolicyRequest struct {
	Family              domain.PolicyFamily `json:"family" binding:"required,oneof=FRAUD_API_TOGGLE CLEARING_ROUTE GATEWAY_AUTH"`
	PaymentType         string              `json:"paymentType"`
	LocalInstrumentCode string              `json:"localInstrumentCode"`
	ClearingSystemCode  string              `json:"clearingSystemCode"`
	Decision            string              `json:"decision" binding:"required"`
	Priority            int                 `json:"priority"`
	IsActive            *bool               `json:"isActive"`
	EffectiveFrom       *time.Time          `json:"effectiveFrom"`
	EffectiveUntil      *time.Time          `json:"effectiveUntil"`
	Reason              string              `json:"reason"`
}

// UpdatePolicyRequest defines the request body for updating a policy
// record. Nil fields are left unchanged. Version carries the expected
// current version for the optimistic check.
type UpdatePolicyRequest struct {
	Decision       *string    `json:"decision"`
	Priority       *int       `json:"priority"`
	IsActive       *bool      `json:"isActive"`
	EffectiveFrom  *time.Time `json:"effectiveFrom"`
	EffectiveUntil *time.Time `json:"effectiveUntil"`
	Reason         *string    `json:"reason"`
	Version        int64      `json:"version" binding:"required"`
}

// ResolvePolicyRequest defines the request body of the resolution
// debugging endpoint.
type ResolvePolicyRequest struct {
	Family              domain.PolicyFamily `json:"family" binding:"required,oneof=FRAUD_API_TOGGLE CLEARING_ROUTE GATEWAY_AUTH"`
	PaymentType         string              `json:"paymentType"`
	LocalInstrumentCode string              `json:"localInstrumentCode"`
	ClearingSystemCode  string              `json:"clearingSystemCode"`
}

// PolicyResponse defines the data returned for a policy record.
type PolicyResponse struct {
	PolicyID            string     `json:"policyID"`
	Family              string     `json:"family"`
	TenantID            string     `json:"tenantID"`
	PaymentType         string     `json:"paymentType,omitempty"`
	LocalInstrumentCode string     `json:"localInstrumentCode,omitempty"`
	ClearingSystemCode  string     `json:"clearingSystemCode,omitempty"`
	Decision            string     `json:"decision"`
	Priority            int        `json:"priority"`
	IsActive            bool       `json:"isActive"`
	EffectiveFrom       *time.Time `json:"effectiveFrom,omitempty"`
	EffectiveUntil      *time.Time `json:"effectiveUntil,omitempty"`
	Reason              string     `json:"reason,omitempty"`
	Version             int64      `json:"version"`
	CreatedAt           time.Time  `json:"createdAt"`
	CreatedBy           string     `json:"createdBy"`
	LastUpdatedAt       time.Time  `json:"lastUpdatedAt"`
	LastUpdatedBy       string     `json:"lastUpdatedBy"`
}

// ResolvePolicyResponse defines the outcome of a resolution debugging call.
type ResolvePolicyResponse struct {
	Resolved bool            `json:"resolved"`
	Policy   *PolicyResponse `json:"policy,omitempty"`
}

// ListPoliciesResponse defines the policy listing response.
type ListPoliciesResponse struct {
	Policies []PolicyResponse `json:"policies"`
}
