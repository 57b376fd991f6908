package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus mirrors the domain lifecycle states at the persistence layer.
type PaymentStatus string

// Payment is the persistence model for the payments table.
type Payment struct {
	PaymentID            string          `json:"paymentID"` // Primary Key (UUID)
	TenantID             string          `json:"tenantID"`
	BusinessUnit         string          `json:"businessUnit"`
	Amount               decimal.Decimal `json:"amount"`
	CurrencyCode         string          `json:"currencyCode"`
	SourceAccount        string          `json:"sourceAccount"`
	DestinationAccount   string          `json:"destinationAccount"`
	Reference            string          `json:"reference"`
	PaymentType          string          `json:"paymentType"`
	Priority             string          `json:"priority"`
	Status               PaymentStatus   `json:"status"`
	IdempotencyKey       string          `json:"idempotencyKey"` // Unique per (tenant_id, idempotency_key)
	ClearingSystemCode   *string         `json:"clearingSystemCode"`
	ClearingReference    *string         `json:"clearingReference"`
	ClearingConfirmation *string         `json:"clearingConfirmation"`
	FailureReason        *string         `json:"failureReason"`
	InitiatedAt          time.Time       `json:"initiatedAt"`
	ValidatedAt          *time.Time      `json:"validatedAt"`
	SubmittedAt          *time.Time      `json:"submittedAt"`
	ClearedAt            *time.Time      `json:"clearedAt"`
	CompletedAt          *time.Time      `json:"completedAt"`
	FailedAt             *time.Time      `json:"failedAt"`
	Version              int64           `json:"version"` // Optimistic concurrency guard
	AuditFields
}

// StatusChange is the persistence model for the payment_status_history table.
type StatusChange struct {
	ChangeID   string         `json:"changeID"` // Primary Key (UUID)
	PaymentID  string         `json:"paymentID"`
	FromStatus *PaymentStatus `json:"fromStatus"` // NULL for the initial record
	ToStatus   PaymentStatus  `json:"toStatus"`
	Reason     string         `json:"reason"`
	ChangedBy  string         `json:"changedBy"`
	ChangedAt  time.Time      `json:"changedAt"`
}
