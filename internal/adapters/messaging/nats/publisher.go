package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/velopay/payment_platform_app/internal/core/domain"
	portssvc "github.com/velopay/payment_platform_app/internal/core/ports/services"
)

const (
	streamName  = "PAYMENTS"
	subjectRoot = "payments"
)

// envelope is the wire format for published payment events.
type envelope struct {
	ID            string          `json:"event_id"`
	Type          string          `json:"type"`
	Version       int             `json:"version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	TenantID      string          `json:"tenant_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	Data          json.RawMessage `json:"data"`
}

// Publisher publishes payment domain events to JetStream.
type Publisher struct {
	client *Client
	logger *slog.Logger
}

// NewPublisher creates a new event publisher.
func NewPublisher(client *Client, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		logger: logger,
	}
}

// Ensure Publisher implements the event publisher port
var _ portssvc.EventPublisher = (*Publisher)(nil)

// Publish wraps each domain event in an envelope and publishes it to the
// payment stream. Events are published in the order given.
func (p *Publisher) Publish(ctx context.Context, events []domain.DomainEvent) error {
	for _, event := range events {
		if err := p.publishOne(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publishOne(ctx context.Context, event domain.DomainEvent) error {
	meta := event.Meta()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event data: %w", err)
	}

	env := envelope{
		ID:            ulid.Make().String(),
		Type:          event.Type(),
		Version:       1,
		OccurredAt:    meta.OccurredAt,
		TenantID:      meta.Tenant.TenantID,
		AggregateType: "payment",
		AggregateID:   meta.PaymentID,
		Data:          data,
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling event envelope: %w", err)
	}

	subject := fmt.Sprintf("%s.%s.%s", subjectRoot, meta.Tenant.TenantID, event.Type())
	if _, err := p.client.js.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}

	p.logger.Debug("event published",
		"event_id", env.ID,
		"type", env.Type,
		"subject", subject,
	)
	return nil
}
