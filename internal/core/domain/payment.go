package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "INITIATED"
	PaymentStatusValidated PaymentStatus = "VALIDATED"
	PaymentStatusClearing  PaymentStatus = "CLEARING"
	PaymentStatusCleared   PaymentStatus = "CLEARED"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// IsTerminal reports whether no further transitions are legal from s.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// IsValid reports whether s is a known lifecycle state.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusInitiated, PaymentStatusValidated, PaymentStatusClearing,
		PaymentStatusCleared, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

// PaymentType classifies the payment scheme a payment rides on.
type PaymentType string

const (
	PaymentTypeRTP         PaymentType = "RTP"
	PaymentTypeEFT         PaymentType = "EFT"
	PaymentTypeDebitOrder  PaymentType = "DEBIT_ORDER"
	PaymentTypeCrossBorder PaymentType = "CROSS_BORDER"
)

// Priority indicates processing urgency.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityNormal Priority = "NORMAL"
	PriorityLow    Priority = "LOW"
)

// ValidationResult is the outcome of payment validation (business rules,
// fraud screening). A failing result is a normal lifecycle path, not an
// error: Validate routes it to the FAILED state.
type ValidationResult struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// PassedValidation builds a passing validation result.
func PassedValidation() ValidationResult {
	return ValidationResult{Passed: true}
}

// FailedValidation builds a failing validation result with a reason.
func FailedValidation(reason string) ValidationResult {
	return ValidationResult{Passed: false, Reason: reason}
}

// StatusChange is one immutable entry of a payment's status history.
// FromStatus is nil only for the initial record.
type StatusChange struct {
	FromStatus *PaymentStatus `json:"fromStatus,omitempty"`
	ToStatus   PaymentStatus  `json:"toStatus"`
	Reason     string         `json:"reason"`
	ChangedBy  string         `json:"changedBy"`
	ChangedAt  time.Time      `json:"changedAt"`
}

// ErrInvalidPayment indicates a malformed or business-rule-violating
// construction request. Not retryable without caller correction.
var ErrInvalidPayment = errors.New("invalid payment")

// ErrBlankReason indicates a failure transition without a reason.
var ErrBlankReason = errors.New("failure reason must not be blank")

// InvalidStateTransitionError is returned by lifecycle methods called
// against an incompatible current status. The aggregate is left unchanged.
type InvalidStateTransitionError struct {
	Operation     string
	CurrentStatus PaymentStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: cannot %s payment in status %s", e.Operation, e.CurrentStatus)
}

// Payment is the aggregate root for a single payment. It is the
// consistency boundary: state changes happen only through its methods,
// each legal transition appending exactly one StatusChange and exactly one
// DomainEvent. Methods are not safe for concurrent use on the same
// instance; the owning service must guarantee single-writer semantics per
// payment (the repository's optimistic version check backs that up).
type Payment struct {
	PaymentID          string           `json:"paymentID"`
	Tenant             TenantContext    `json:"tenant"`
	Amount             Money            `json:"amount"`
	SourceAccount      AccountNumber    `json:"sourceAccount"`
	DestinationAccount AccountNumber    `json:"destinationAccount"`
	Reference          PaymentReference `json:"reference"`
	PaymentType        PaymentType      `json:"paymentType"`
	Priority           Priority         `json:"priority"`
	Status             PaymentStatus    `json:"status"`
	IdempotencyKey     string           `json:"idempotencyKey"`

	// Clearing details, populated as the payment advances.
	ClearingSystemCode   string `json:"clearingSystemCode,omitempty"`
	ClearingReference    string `json:"clearingReference,omitempty"`
	ClearingConfirmation string `json:"clearingConfirmation,omitempty"`
	FailureReason        string `json:"failureReason,omitempty"`

	InitiatedAt time.Time  `json:"initiatedAt"`
	ValidatedAt *time.Time `json:"validatedAt,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	ClearedAt   *time.Time `json:"clearedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	FailedAt    *time.Time `json:"failedAt,omitempty"`

	StatusHistory []StatusChange `json:"statusHistory"`
	Version       int64          `json:"version"`
	AuditFields

	domainEvents []DomainEvent
}

// InitiatePayment is the only way to create a Payment. It validates the
// construction request, starts the aggregate in INITIATED and records the
// initial status change and the PaymentInitiated event.
func InitiatePayment(
	paymentID string,
	tenant TenantContext,
	amount Money,
	sourceAccount, destinationAccount AccountNumber,
	reference PaymentReference,
	paymentType PaymentType,
	priority Priority,
	initiatedBy string,
	idempotencyKey string,
) (*Payment, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, fmt.Errorf("%w: payment ID must not be blank", ErrInvalidPayment)
	}
	if strings.TrimSpace(tenant.TenantID) == "" {
		return nil, fmt.Errorf("%w: tenant must not be blank", ErrInvalidPayment)
	}
	if amount.IsNegativeOrZero() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidPayment, amount)
	}
	if sourceAccount == "" || destinationAccount == "" {
		return nil, fmt.Errorf("%w: source and destination accounts are required", ErrInvalidPayment)
	}
	if sourceAccount == destinationAccount {
		return nil, fmt.Errorf("%w: source and destination accounts must differ", ErrInvalidPayment)
	}
	if reference == "" {
		return nil, fmt.Errorf("%w: payment reference is required", ErrInvalidPayment)
	}
	if strings.TrimSpace(initiatedBy) == "" {
		return nil, fmt.Errorf("%w: initiating actor must not be blank", ErrInvalidPayment)
	}
	if strings.TrimSpace(idempotencyKey) == "" {
		return nil, fmt.Errorf("%w: idempotency key must not be blank", ErrInvalidPayment)
	}

	now := time.Now().UTC()
	p := &Payment{
		PaymentID:          paymentID,
		Tenant:             tenant,
		Amount:             amount,
		SourceAccount:      sourceAccount,
		DestinationAccount: destinationAccount,
		Reference:          reference,
		PaymentType:        paymentType,
		Priority:           priority,
		Status:             PaymentStatusInitiated,
		IdempotencyKey:     strings.TrimSpace(idempotencyKey),
		InitiatedAt:        now,
		Version:            1,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     initiatedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: initiatedBy,
		},
	}
	p.recordChange(nil, PaymentStatusInitiated, "payment initiated", initiatedBy, now)
	p.raise(PaymentInitiated{
		EventMeta:          newEventMeta(p, now),
		Amount:             amount,
		SourceAccount:      sourceAccount,
		DestinationAccount: destinationAccount,
		PaymentType:        paymentType,
	})
	return p, nil
}

// Validate consumes a validation outcome on an INITIATED payment. A
// passing result moves the payment to VALIDATED; a failing result routes
// through Fail, reusing its guard and event machinery.
func (p *Payment) Validate(result ValidationResult, actor string) error {
	if p.Status != PaymentStatusInitiated {
		return &InvalidStateTransitionError{Operation: "validate", CurrentStatus: p.Status}
	}
	if !result.Passed {
		reason := result.Reason
		if strings.TrimSpace(reason) == "" {
			reason = "validation failed"
		}
		return p.Fail(reason, actor)
	}

	now := time.Now().UTC()
	from := p.Status
	p.Status = PaymentStatusValidated
	p.ValidatedAt = &now
	p.touch(actor, now)
	p.recordChange(&from, PaymentStatusValidated, "validation passed", actor, now)
	p.raise(PaymentValidated{
		EventMeta: newEventMeta(p, now),
		Result:    result,
	})
	return nil
}

// SubmitToClearing moves a VALIDATED payment to CLEARING, recording the
// clearing system the payment was routed to and the submission reference.
func (p *Payment) SubmitToClearing(clearingSystemCode, clearingReference, actor string) error {
	if p.Status != PaymentStatusValidated {
		return &InvalidStateTransitionError{Operation: "submit to clearing", CurrentStatus: p.Status}
	}

	now := time.Now().UTC()
	from := p.Status
	p.Status = PaymentStatusClearing
	p.ClearingSystemCode = clearingSystemCode
	p.ClearingReference = clearingReference
	p.SubmittedAt = &now
	p.touch(actor, now)
	p.recordChange(&from, PaymentStatusClearing, fmt.Sprintf("submitted to clearing system %s", clearingSystemCode), actor, now)
	p.raise(PaymentSubmittedToClearing{
		EventMeta:          newEventMeta(p, now),
		ClearingSystemCode: clearingSystemCode,
		ClearingReference:  clearingReference,
	})
	return nil
}

// MarkCleared records the clearing confirmation on a CLEARING payment.
func (p *Payment) MarkCleared(confirmationReference, actor string) error {
	if p.Status != PaymentStatusClearing {
		return &InvalidStateTransitionError{Operation: "mark cleared", CurrentStatus: p.Status}
	}

	now := time.Now().UTC()
	from := p.Status
	p.Status = PaymentStatusCleared
	p.ClearingConfirmation = confirmationReference
	p.ClearedAt = &now
	p.touch(actor, now)
	p.recordChange(&from, PaymentStatusCleared, "clearing confirmed", actor, now)
	p.raise(PaymentCleared{
		EventMeta:             newEventMeta(p, now),
		ConfirmationReference: confirmationReference,
	})
	return nil
}

// Complete finishes a CLEARED payment. COMPLETED is terminal.
func (p *Payment) Complete(actor string) error {
	if p.Status != PaymentStatusCleared {
		return &InvalidStateTransitionError{Operation: "complete", CurrentStatus: p.Status}
	}

	now := time.Now().UTC()
	from := p.Status
	p.Status = PaymentStatusCompleted
	p.CompletedAt = &now
	p.touch(actor, now)
	p.recordChange(&from, PaymentStatusCompleted, "payment completed", actor, now)
	p.raise(PaymentCompleted{
		EventMeta: newEventMeta(p, now),
		Amount:    p.Amount,
	})
	return nil
}

// Fail moves any non-terminal payment to FAILED with a mandatory reason.
// FAILED is terminal; failed payments are retained for audit.
func (p *Payment) Fail(reason, actor string) error {
	if p.Status.IsTerminal() {
		return &InvalidStateTransitionError{Operation: "fail", CurrentStatus: p.Status}
	}
	if strings.TrimSpace(reason) == "" {
		return ErrBlankReason
	}

	now := time.Now().UTC()
	from := p.Status
	p.Status = PaymentStatusFailed
	p.FailureReason = reason
	p.FailedAt = &now
	p.touch(actor, now)
	p.recordChange(&from, PaymentStatusFailed, reason, actor, now)
	p.raise(PaymentFailed{
		EventMeta:      newEventMeta(p, now),
		Reason:         reason,
		PreviousStatus: from,
	})
	return nil
}

// UpdateStatus is an administrative escape hatch that bypasses the
// transition table. It still appends a StatusChange so corrections remain
// auditable. It emits no domain event and callers carry the responsibility
// of not violating the state graph with it.
func (p *Payment) UpdateStatus(status PaymentStatus, reason, actor string) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: unknown payment status %q", ErrInvalidPayment, status)
	}
	if strings.TrimSpace(reason) == "" {
		return ErrBlankReason
	}

	now := time.Now().UTC()
	from := p.Status
	p.Status = status
	p.touch(actor, now)
	p.recordChange(&from, status, reason, actor, now)
	return nil
}

// DomainEvents returns a read-only view of the pending domain events.
func (p *Payment) DomainEvents() []DomainEvent {
	out := make([]DomainEvent, len(p.domainEvents))
	copy(out, p.domainEvents)
	return out
}

// ClearDomainEvents drops the pending events. The owning unit of work
// calls this exactly once, after the events have been handed to the
// publisher.
func (p *Payment) ClearDomainEvents() {
	p.domainEvents = nil
}

func (p *Payment) raise(event DomainEvent) {
	p.domainEvents = append(p.domainEvents, event)
}

func (p *Payment) recordChange(from *PaymentStatus, to PaymentStatus, reason, actor string, at time.Time) {
	p.StatusHistory = append(p.StatusHistory, StatusChange{
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
		ChangedBy:  actor,
		ChangedAt:  at,
	})
}

func (p *Payment) touch(actor string, at time.Time) {
	p.LastUpdatedAt = at
	p.LastUpdatedBy = actor
}
