package services

import (
	"context"

	"github.com/velopay/payment_platform_app/internal/core/domain"
)

// EventPublisher hands drained domain events to the message broker. It is
// called after a successful unit of work; publish failures are logged and
// do not roll the work back.
type EventPublisher interface {
	Publish(ctx context.Context, events []domain.DomainEvent) error
}
