package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/velopay/payment_platform_app/internal/core/domain"
)

// InitiatePaymentRequest defines the request body for initiating a payment.
type InitiatePaymentRequest struct {
	Amount              decimal.Decimal    `json:"amount" binding:"required"`
	CurrencyCode        string             `json:"currencyCode" binding:"required,iso4217"`
	SourceAccount       string             `json:"sourceAccount" binding:"required"`
	DestinationAccount  string             `json:"destinationAccount" binding:"required"`
	Reference           string             `json:"reference" binding:"required,max=35,paymentref"`
	PaymentType         domain.PaymentType `json:"paymentType" binding:"required,oneof=RTP EFT DEBIT_ORDER CROSS_BORDER"`
	Priority            domain.Priority    `json:"priority" binding:"omitempty,oneof=HIGH NORMAL LOW"`
	BusinessUnit        string             `json:"businessUnit"`
	LocalInstrumentCode string             `json:"localInstrumentCode"`
	IdempotencyKey      string             `json:"idempotencyKey" binding:"required"`
}

// ValidatePaymentRequest carries the validation outcome for a payment.
type ValidatePaymentRequest struct {
	Passed *bool  `json:"passed" binding:"required"`
	Reason string `json:"reason"`
}

// SubmitPaymentRequest defines the request body for clearing submission.
type SubmitPaymentRequest struct {
	LocalInstrumentCode string `json:"localInstrumentCode"`
}

// MarkClearedRequest carries the clearing confirmation.
type MarkClearedRequest struct {
	ConfirmationReference string `json:"confirmationReference" binding:"required"`
}

// FailPaymentRequest carries the failure reason.
type FailPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// UpdatePaymentStatusRequest defines the administrative status correction.
type UpdatePaymentStatusRequest struct {
	Status domain.PaymentStatus `json:"status" binding:"required,oneof=INITIATED VALIDATED CLEARING CLEARED COMPLETED FAILED"`
	Reason string               `json:"reason" binding:"required"`
}

// StatusChangeResponse defines one status history entry.
type StatusChangeResponse struct {
	FromStatus *string   `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus"`
	Reason     string    `json:"reason"`
	ChangedBy  string    `json:"changedBy"`
	ChangedAt  time.Time `json:"changedAt"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID            string          `json:"paymentID"`
	TenantID             string          `json:"tenantID"`
	BusinessUnit         string          `json:"businessUnit,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	CurrencyCode         string          `json:"currencyCode"`
	SourceAccount        string          `json:"sourceAccount"`
	DestinationAccount   string          `json:"destinationAccount"`
	Reference            string          `json:"reference"`
	PaymentType          string          `json:"paymentType"`
	Priority             string          `json:"priority"`
	Status               string          `json:"status"`
	IdempotencyKey       string          `json:"idempotencyKey"`
	ClearingSystemCode   string          `json:"clearingSystemCode,omitempty"`
	ClearingReference    string          `json:"clearingReference,omitempty"`
	ClearingConfirmation string          `json:"clearingConfirmation,omitempty"`
	FailureReason        string          `json:"failureReason,omitempty"`
	InitiatedAt          time.Time       `json:"initiatedAt"`
	ValidatedAt          *time.Time      `json:"validatedAt,omitempty"`
	SubmittedAt          *time.Time      `json:"submittedAt,omitempty"`
	ClearedAt            *time.Time      `json:"clearedAt,omitempty"`
	CompletedAt          *time.Time      `json:"completedAt,omitempty"`
	FailedAt             *time.Time      `json:"failedAt,omitempty"`
	Version              int64           `json:"version"`
	CreatedAt            time.Time       `json:"createdAt"`
	CreatedBy            string          `json:"createdBy"`
}

// ListPaymentsParams defines pagination parameters for listing payments.
type ListPaymentsParams struct {
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListPaymentsResponse defines the paginated list response.
type ListPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	NextToken *string           `json:"nextToken,omitempty"`
}
