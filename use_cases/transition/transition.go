// Package transition moves a single rental through its lifecycle and
// announces the change.
package transition

import (
	"context"
	"log/slog"
	"time"

	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/infra/metrics"
	"github.com/giovaniif/motorent/protocols"
)

type Transition struct {
	rentals rental.Repository
	events  protocols.EventPublisher
	logger  *slog.Logger
	Now     func() time.Time
}

func New(rentals rental.Repository, events protocols.EventPublisher, logger *slog.Logger) *Transition {
	return &Transition{rentals: rentals, events: events, logger: logger, Now: time.Now}
}

// Apply moves r to next. The write is a compare-and-swap on r's current
// status, so two staff members acting on the same rental cannot both win.
func (t *Transition) Apply(ctx context.Context, r *rental.Rental, next rental.Status, event protocols.RentalEventType) (*rental.Rental, error) {
	moved, err := r.Transition(next)
	if err != nil {
		return nil, err
	}
	if err := t.rentals.UpdateStatus(ctx, r.Id, r.Status, moved.Status); err != nil {
		return nil, err
	}
	metrics.RentalTransitions.WithLabelValues(string(next)).Inc()

	err = t.events.Publish(ctx, protocols.RentalEvent{
		Type:       event,
		RentalId:   moved.Id,
		OrderId:    moved.OrderId,
		BikeId:     moved.BikeId,
		UserId:     moved.UserId,
		OccurredAt: t.Now(),
	})
	if err != nil {
		t.logger.WarnContext(ctx, "rental event not published", "rental_id", moved.Id, "type", event, "error", err)
	}
	return &moved, nil
}

// Load fetches a rental, hiding rentals of other users when ownerId is set.
func (t *Transition) Load(ctx context.Context, rentalId, ownerId string) (*rental.Rental, error) {
	r, err := t.rentals.FindById(ctx, rentalId)
	if err != nil {
		return nil, err
	}
	if ownerId != "" && r.UserId != ownerId {
		return nil, rental.ErrNotFound
	}
	return r, nil
}
