package models

import "time"

// PolicyRecord is the persistence model for the policy_records table.
// Scope columns beyond tenant_id are NULL for wildcards.
type PolicyRecord struct {
	PolicyID            string     `json:"policyID"` // Primary Key (UUID)
	Family              string     `json:"family"`
	TenantID            string     `json:"tenantID"`
	PaymentType         *string    `json:"paymentType"`
	LocalInstrumentCode *string    `json:"localInstrumentCode"`
	ClearingSystemCode  *string    `json:"clearingSystemCode"`
	Decision            string     `json:"decision"`
	Priority            int        `json:"priority"`
	IsActive            bool       `json:"isActive"`
	EffectiveFrom       *time.Time `json:"effectiveFrom"`
	EffectiveUntil      *time.Time `json:"effectiveUntil"`
	Reason              *string    `json:"reason"`
	Version             int64      `json:"version"`
	AuditFields
}
