package mapping

import (
	"github.com/velopay/payment_platform_app/internal/core/domain"
	"github.com/velopay/payment_platform_app/internal/models"
)

// ToModelPayment converts a domain Payment to its persistence model.
func ToModelPayment(d *domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:            d.PaymentID,
		TenantID:             d.Tenant.TenantID,
		BusinessUnit:         d.Tenant.BusinessUnit,
		Amount:               d.Amount.Amount,
		CurrencyCode:         d.Amount.CurrencyCode,
		SourceAccount:        string(d.SourceAccount),
		DestinationAccount:   string(d.DestinationAccount),
		Reference:            string(d.Reference),
		PaymentType:          string(d.PaymentType),
		Priority:             string(d.Priority),
		Status:               models.PaymentStatus(d.Status),
		IdempotencyKey:       d.IdempotencyKey,
		ClearingSystemCode:   nilIfEmpty(d.ClearingSystemCode),
		ClearingReference:    nilIfEmpty(d.ClearingReference),
		ClearingConfirmation: nilIfEmpty(d.ClearingConfirmation),
		FailureReason:        nilIfEmpty(d.FailureReason),
		InitiatedAt:          d.InitiatedAt,
		ValidatedAt:          d.ValidatedAt,
		SubmittedAt:          d.SubmittedAt,
		ClearedAt:            d.ClearedAt,
		CompletedAt:          d.CompletedAt,
		FailedAt:             d.FailedAt,
		Version:              d.Version,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayment converts a persistence model to a domain Payment.
// History rows are attached separately by the repository.
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID: m.PaymentID,
		Tenant: domain.TenantContext{
			TenantID:     m.TenantID,
			BusinessUnit: m.BusinessUnit,
		},
		Amount: domain.Money{
			Amount:       m.Amount,
			CurrencyCode: m.CurrencyCode,
		},
		SourceAccount:        domain.AccountNumber(m.SourceAccount),
		DestinationAccount:   domain.AccountNumber(m.DestinationAccount),
		Reference:            domain.PaymentReference(m.Reference),
		PaymentType:          domain.PaymentType(m.PaymentType),
		Priority:             domain.Priority(m.Priority),
		Status:               domain.PaymentStatus(m.Status),
		IdempotencyKey:       m.IdempotencyKey,
		ClearingSystemCode:   emptyIfNil(m.ClearingSystemCode),
		ClearingReference:    emptyIfNil(m.ClearingReference),
		ClearingConfirmation: emptyIfNil(m.ClearingConfirmation),
		FailureReason:        emptyIfNil(m.FailureReason),
		InitiatedAt:          m.InitiatedAt,
		ValidatedAt:          m.ValidatedAt,
		SubmittedAt:          m.SubmittedAt,
		ClearedAt:            m.ClearedAt,
		CompletedAt:          m.CompletedAt,
		FailedAt:             m.FailedAt,
		Version:              m.Version,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelStatusChange converts a domain status change for persistence.
func ToModelStatusChange(paymentID, changeID string, d domain.StatusChange) models.StatusChange {
	var from *models.PaymentStatus
	if d.FromStatus != nil {
		s := models.PaymentStatus(*d.FromStatus)
		from = &s
	}
	return models.StatusChange{
		ChangeID:   changeID,
		PaymentID:  paymentID,
		FromStatus: from,
		ToStatus:   models.PaymentStatus(d.ToStatus),
		Reason:     d.Reason,
		ChangedBy:  d.ChangedBy,
		ChangedAt:  d.ChangedAt,
	}
}

// ToDomainStatusChange converts a persisted status change back to the domain.
func ToDomainStatusChange(m models.StatusChange) domain.StatusChange {
	var from *domain.PaymentStatus
	if m.FromStatus != nil {
		s := domain.PaymentStatus(*m.FromStatus)
		from = &s
	}
	return domain.StatusChange{
		FromStatus: from,
		ToStatus:   domain.PaymentStatus(m.ToStatus),
		Reason:     m.Reason,
		ChangedBy:  m.ChangedBy,
		ChangedAt:  m.ChangedAt,
	}
}
