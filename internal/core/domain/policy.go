package domain

import (
	"fmt"
	"strings"
	"time"
)

// PolicyFamily groups policy records by the decision they govern. Each
// family gets its own resolution cache and its own default behaviour when
// resolution comes up empty.
type PolicyFamily string

const (
	// PolicyFamilyFraudToggle governs whether the fraud/risk API is
	// consulted during validation. Fail open: defaults to enabled.
	PolicyFamilyFraudToggle PolicyFamily = "FRAUD_API_TOGGLE"
	// PolicyFamilyClearingRoute governs which clearing system a payment is
	// routed to. No safe default.
	PolicyFamilyClearingRoute PolicyFamily = "CLEARING_ROUTE"
	// PolicyFamilyGatewayAuth governs the authentication method for a
	// gateway hop. No safe default.
	PolicyFamilyGatewayAuth PolicyFamily = "GATEWAY_AUTH"
)

// IsValid reports whether f names a known policy family.
func (f PolicyFamily) IsValid() bool {
	switch f {
	case PolicyFamilyFraudToggle, PolicyFamilyClearingRoute, PolicyFamilyGatewayAuth:
		return true
	}
	return false
}

// Decision payloads for the boolean families.
const (
	PolicyDecisionEnabled  = "ENABLED"
	PolicyDecisionDisabled = "DISABLED"
)

// PolicyScope is the ordered scope tuple of a policy record. TenantID is
// always present; the remaining fields are wildcards when empty. A more
// populated scope is more specific and overrides a less populated one.
type PolicyScope struct {
	TenantID            string `json:"tenantID"`
	PaymentType         string `json:"paymentType,omitempty"`
	LocalInstrumentCode string `json:"localInstrumentCode,omitempty"`
	ClearingSystemCode  string `json:"clearingSystemCode,omitempty"`
}

// Specificity counts the non-wildcard fields of the scope. Tenant counts
// too, so a fully wildcarded record can never outrank a scoped one.
func (s PolicyScope) Specificity() int {
	count := 0
	for _, f := range []string{s.TenantID, s.PaymentType, s.LocalInstrumentCode, s.ClearingSystemCode} {
		if f != "" {
			count++
		}
	}
	return count
}

// Matches reports whether every present scope field equals the
// corresponding context field. Wildcard (empty) fields always match.
func (s PolicyScope) Matches(rc ResolutionContext) bool {
	if s.TenantID != "" && s.TenantID != rc.TenantID {
		return false
	}
	if s.PaymentType != "" && s.PaymentType != rc.PaymentType {
		return false
	}
	if s.LocalInstrumentCode != "" && s.LocalInstrumentCode != rc.LocalInstrumentCode {
		return false
	}
	if s.ClearingSystemCode != "" && s.ClearingSystemCode != rc.ClearingSystemCode {
		return false
	}
	return true
}

// ResolutionContext is the concrete request context a policy decision is
// resolved for.
type ResolutionContext struct {
	TenantID            string `json:"tenantID"`
	PaymentType         string `json:"paymentType,omitempty"`
	LocalInstrumentCode string `json:"localInstrumentCode,omitempty"`
	ClearingSystemCode  string `json:"clearingSystemCode,omitempty"`
}

// CacheKey renders the full context tuple as a stable cache key.
func (rc ResolutionContext) CacheKey() string {
	return strings.Join([]string{rc.TenantID, rc.PaymentType, rc.LocalInstrumentCode, rc.ClearingSystemCode}, "|")
}

// PolicyRecord is the scoped, prioritised, time-bounded configuration unit
// shared by all resolution families. Lower Priority wins on a specificity
// tie. Records are created, updated and deleted only through the policy
// service, whose write paths invalidate the family's resolution cache.
type PolicyRecord struct {
	PolicyID string       `json:"policyID"`
	Family   PolicyFamily `json:"family"`
	Scope    PolicyScope  `json:"scope"`
	// Decision is family-specific: ENABLED/DISABLED for the fraud toggle,
	// a clearing system code for routing, an auth method for gateway auth.
	Decision       string     `json:"decision"`
	Priority       int        `json:"priority"`
	IsActive       bool       `json:"isActive"`
	EffectiveFrom  *time.Time `json:"effectiveFrom,omitempty"`
	EffectiveUntil *time.Time `json:"effectiveUntil,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	Version        int64      `json:"version"`
	AuditFields
}

// IsEffectiveAt reports whether the record's effectiveness window covers
// the given instant. Open bounds are unbounded.
func (r PolicyRecord) IsEffectiveAt(now time.Time) bool {
	if r.EffectiveFrom != nil && now.Before(*r.EffectiveFrom) {
		return false
	}
	if r.EffectiveUntil != nil && !now.Before(*r.EffectiveUntil) {
		return false
	}
	return true
}

// Enabled interprets the decision payload of a boolean-family record.
func (r PolicyRecord) Enabled() bool {
	return r.Decision == PolicyDecisionEnabled
}

// ValidatePolicyRecord checks the structural invariants of a record before
// it is persisted.
func ValidatePolicyRecord(r PolicyRecord) error {
	if strings.TrimSpace(r.PolicyID) == "" {
		return fmt.Errorf("%w: policy ID must not be blank", ErrInvalidPolicy)
	}
	if !r.Family.IsValid() {
		return fmt.Errorf("%w: unknown policy family %q", ErrInvalidPolicy, r.Family)
	}
	if strings.TrimSpace(r.Scope.TenantID) == "" {
		return fmt.Errorf("%w: policy scope requires a tenant", ErrInvalidPolicy)
	}
	if strings.TrimSpace(r.Decision) == "" {
		return fmt.Errorf("%w: policy decision must not be blank", ErrInvalidPolicy)
	}
	if r.Family == PolicyFamilyFraudToggle &&
		r.Decision != PolicyDecisionEnabled && r.Decision != PolicyDecisionDisabled {
		return fmt.Errorf("%w: fraud toggle decision must be %s or %s", ErrInvalidPolicy, PolicyDecisionEnabled, PolicyDecisionDisabled)
	}
	if r.EffectiveFrom != nil && r.EffectiveUntil != nil && !r.EffectiveFrom.Before(*r.EffectiveUntil) {
		return fmt.Errorf("%w: effectiveFrom must precede effectiveUntil", ErrInvalidPolicy)
	}
	return nil
}

// ErrInvalidPolicy indicates a malformed policy record.
var ErrInvalidPolicy = fmt.Errorf("invalid policy record")
