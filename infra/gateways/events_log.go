package gateways

import (
	"context"
	"log/slog"

	"github.com/giovaniif/motorent/protocols"
)

// EventPublisherLog is used when no broker is configured.
type EventPublisherLog struct {
	logger *slog.Logger
}

func NewEventPublisherLog(logger *slog.Logger) *EventPublisherLog {
	return &EventPublisherLog{logger: logger}
}

func (p *EventPublisherLog) Publish(ctx context.Context, events ...protocols.RentalEvent) error {
	for _, e := range events {
		p.logger.InfoContext(ctx, "rental event",
			"type", e.Type, "rental_id", e.RentalId, "order_id", e.OrderId, "bike_id", e.BikeId, "user_id", e.UserId)
	}
	return nil
}
