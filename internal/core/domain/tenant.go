package domain

import (
	"fmt"
	"strings"
)

// TenantContext identifies the tenant a request or entity belongs to,
// together with the business-unit scope inside that tenant. It is an
// immutable value object compared by value.
type TenantContext struct {
	TenantID     string `json:"tenantID"`
	BusinessUnit string `json:"businessUnit"`
}

// NewTenantContext validates and builds a TenantContext.
func NewTenantContext(tenantID, businessUnit string) (TenantContext, error) {
	if strings.TrimSpace(tenantID) == "" {
		return TenantContext{}, fmt.Errorf("%w: tenant ID must not be blank", ErrInvalidPayment)
	}
	return TenantContext{
		TenantID:     strings.TrimSpace(tenantID),
		BusinessUnit: strings.TrimSpace(businessUnit),
	}, nil
}

// AccountNumber is an opaque account identifier on a payment leg.
type AccountNumber string

// NewAccountNumber validates and builds an AccountNumber.
func NewAccountNumber(value string) (AccountNumber, error) {
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: account number must not be blank", ErrInvalidPayment)
	}
	return AccountNumber(strings.TrimSpace(value)), nil
}

// MaxPaymentReferenceLength is the scheme limit for end-to-end references.
const MaxPaymentReferenceLength = 35

// PaymentReference is the end-to-end reference supplied by the initiating
// party, limited to 35 characters.
type PaymentReference string

// NewPaymentReference validates and builds a PaymentReference.
func NewPaymentReference(value string) (PaymentReference, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: payment reference must not be blank", ErrInvalidPayment)
	}
	if len(trimmed) > MaxPaymentReferenceLength {
		return "", fmt.Errorf("%w: payment reference exceeds %d characters", ErrInvalidPayment, MaxPaymentReferenceLength)
	}
	return PaymentReference(trimmed), nil
}
