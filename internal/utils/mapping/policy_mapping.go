package mapping

import (
	"github.com/velopay/payment_platform_app/internal/core/domain"
	"github.com/velopay/payment_platform_app/internal/models"
)

// ToModelPolicyRecord converts a domain PolicyRecord to its persistence model.
func ToModelPolicyRecord(d domain.PolicyRecord) models.PolicyRecord {
	return models.PolicyRecord{
		PolicyID:            d.PolicyID,
		Family:              string(d.Family),
		TenantID:            d.Scope.TenantID,
		PaymentType:         nilIfEmpty(d.Scope.PaymentType),
		LocalInstrumentCode: nilIfEmpty(d.Scope.LocalInstrumentCode),
		ClearingSystemCode:  nilIfEmpty(d.Scope.ClearingSystemCode),
		Decision:            d.Decision,
		Priority:            d.Priority,
		IsActive:            d.IsActive,
		EffectiveFrom:       d.EffectiveFrom,
		EffectiveUntil:      d.EffectiveUntil,
		Reason:              nilIfEmpty(d.Reason),
		Version:             d.Version,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPolicyRecord converts a persistence model to a domain PolicyRecord.
func ToDomainPolicyRecord(m models.PolicyRecord) domain.PolicyRecord {
	return domain.PolicyRecord{
		PolicyID: m.PolicyID,
		Family:   domain.PolicyFamily(m.Family),
		Scope: domain.PolicyScope{
			TenantID:            m.TenantID,
			PaymentType:         emptyIfNil(m.PaymentType),
			LocalInstrumentCode: emptyIfNil(m.LocalInstrumentCode),
			ClearingSystemCode:  emptyIfNil(m.ClearingSystemCode),
		},
		Decision:       m.Decision,
		Priority:       m.Priority,
		IsActive:       m.IsActive,
		EffectiveFrom:  m.EffectiveFrom,
		EffectiveUntil: m.EffectiveUntil,
		Reason:         emptyIfNil(m.Reason),
		Version:        m.Version,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPolicyRecords converts a slice of persistence models.
func ToDomainPolicyRecords(ms []models.PolicyRecord) []domain.PolicyRecord {
	out := make([]domain.PolicyRecord, len(ms))
	for i, m := range ms {
		out[i] = ToDomainPolicyRecord(m)
	}
	return out
}
