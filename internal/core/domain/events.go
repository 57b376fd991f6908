package domain

import "time"

// Event type names, one per legal transition. Subject/topic names are
// derived from these by the messaging adapter.
const (
	EventTypePaymentInitiated           = "payment.initiated"
	EventTypePaymentValidated           = "payment.validated"
	EventTypePaymentSubmittedToClearing = "payment.submitted_to_clearing"
	EventTypePaymentCleared             = "payment.cleared"
	EventTypePaymentCompleted           = "payment.completed"
	EventTypePaymentFailed              = "payment.failed"
)

// DomainEvent is a fact produced by a successful aggregate transition.
// Events are never mutated after creation.
type DomainEvent interface {
	Type() string
	Meta() EventMeta
}

// EventMeta carries the fields every payment event shares.
type EventMeta struct {
	PaymentID  string        `json:"paymentID"`
	Tenant     TenantContext `json:"tenant"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// Meta satisfies the DomainEvent interface for all embedding variants.
func (m EventMeta) Meta() EventMeta { return m }

func newEventMeta(p *Payment, at time.Time) EventMeta {
	return EventMeta{PaymentID: p.PaymentID, Tenant: p.Tenant, OccurredAt: at}
}

// PaymentInitiated is emitted once, by the initiate factory.
type PaymentInitiated struct {
	EventMeta
	Amount             Money         `json:"amount"`
	SourceAccount      AccountNumber `json:"sourceAccount"`
	DestinationAccount AccountNumber `json:"destinationAccount"`
	PaymentType        PaymentType   `json:"paymentType"`
}

func (PaymentInitiated) Type() string { return EventTypePaymentInitiated }

// PaymentValidated is emitted when validation passes.
type PaymentValidated struct {
	EventMeta
	Result ValidationResult `json:"result"`
}

func (PaymentValidated) Type() string { return EventTypePaymentValidated }

// PaymentSubmittedToClearing is emitted on submission to a clearing system.
type PaymentSubmittedToClearing struct {
	EventMeta
	ClearingSystemCode string `json:"clearingSystemCode"`
	ClearingReference  string `json:"clearingReference"`
}

func (PaymentSubmittedToClearing) Type() string { return EventTypePaymentSubmittedToClearing }

// PaymentCleared is emitted when the clearing system confirms.
type PaymentCleared struct {
	EventMeta
	ConfirmationReference string `json:"confirmationReference"`
}

func (PaymentCleared) Type() string { return EventTypePaymentCleared }

// PaymentCompleted is emitted on completion.
type PaymentCompleted struct {
	EventMeta
	Amount Money `json:"amount"`
}

func (PaymentCompleted) Type() string { return EventTypePaymentCompleted }

// PaymentFailed is emitted on any failure transition and records the
// status the payment failed from.
type PaymentFailed struct {
	EventMeta
	Reason         string        `json:"reason"`
	PreviousStatus PaymentStatus `json:"previousStatus"`
}

func (PaymentFailed) Type() string { return EventTypePaymentFailed }
