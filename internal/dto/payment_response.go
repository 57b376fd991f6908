package dto

import (
	"github.com/velopay/payment_platform_app/internal/core/domain"
)

// ToPaymentResponse converts a domain.Payment to PaymentResponse DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:            p.PaymentID,
		TenantID:             p.Tenant.TenantID,
		BusinessUnit:         p.Tenant.BusinessUnit,
		Amount:               p.Amount.Amount,
		CurrencyCode:         p.Amount.CurrencyCode,
		SourceAccount:        string(p.SourceAccount),
		DestinationAccount:   string(p.DestinationAccount),
		Reference:            string(p.Reference),
		PaymentType:          string(p.PaymentType),
		Priority:             string(p.Priority),
		Status:               string(p.Status),
		IdempotencyKey:       p.IdempotencyKey,
		ClearingSystemCode:   p.ClearingSystemCode,
		ClearingReference:    p.ClearingReference,
		ClearingConfirmation: p.ClearingConfirmation,
		FailureReason:        p.FailureReason,
		InitiatedAt:          p.InitiatedAt,
		ValidatedAt:          p.ValidatedAt,
		SubmittedAt:          p.SubmittedAt,
		ClearedAt:            p.ClearedAt,
		CompletedAt:          p.CompletedAt,
		FailedAt:             p.FailedAt,
		Version:              p.Version,
		CreatedAt:            p.CreatedAt,
		CreatedBy:            p.CreatedBy,
	}
}

// ToPaymentResponses converts a slice of domain payments.
func ToPaymentResponses(payments []domain.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}

// ToStatusChangeResponse converts a domain.StatusChange to its DTO.
func ToStatusChangeResponse(sc domain.StatusChange) StatusChangeResponse {
	var from *string
	if sc.FromStatus != nil {
		s := string(*sc.FromStatus)
		from = &s
	}
	return StatusChangeResponse{
		FromStatus: from,
		ToStatus:   string(sc.ToStatus),
		Reason:     sc.Reason,
		ChangedBy:  sc.ChangedBy,
		ChangedAt:  sc.ChangedAt,
	}
}

// ToStatusChangeResponses converts a payment's status history.
func ToStatusChangeResponses(history []domain.StatusChange) []StatusChangeResponse {
	responses := make([]StatusChangeResponse, len(history))
	for i, sc := range history {
		responses[i] = ToStatusChangeResponse(sc)
	}
	return responses
}

// ToPolicyResponse converts a domain.PolicyRecord to PolicyResponse DTO.
func ToPolicyResponse(r *domain.PolicyRecord) PolicyResponse {
	return PolicyResponse{
		PolicyID:            r.PolicyID,
		Family:              string(r.Family),
		TenantID:            r.Scope.TenantID,
		PaymentType:         r.Scope.PaymentType,
		LocalInstrumentCode: r.Scope.LocalInstrumentCode,
		ClearingSystemCode:  r.Scope.ClearingSystemCode,
		Decision:            r.Decision,
		Priority:            r.Priority,
		IsActive:            r.IsActive,
		EffectiveFrom:       r.EffectiveFrom,
		EffectiveUntil:      r.EffectiveUntil,
		Reason:              r.Reason,
		Version:             r.Version,
		CreatedAt:           r.CreatedAt,
		CreatedBy:           r.CreatedBy,
		LastUpdatedAt:       r.LastUpdatedAt,
		LastUpdatedBy:       r.LastUpdatedBy,
	}
}

// ToPolicyResponses converts a slice of domain policy records.
func ToPolicyResponses(records []domain.PolicyRecord) []PolicyResponse {
	responses := make([]PolicyResponse, len(records))
	for i := range records {
		responses[i] = ToPolicyResponse(&records[i])
	}
	return responses
}
