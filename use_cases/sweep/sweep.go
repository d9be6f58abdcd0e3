// Package sweep closes rentals whose end date has passed without a recorded return.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/infra/metrics"
	"github.com/giovaniif/motorent/protocols"
)

type Sweep struct {
	rentals rental.Repository
	events  protocols.EventPublisher
	logger  *slog.Logger
	now     func() time.Time
}

func NewSweep(rentals rental.Repository, events protocols.EventPublisher, logger *slog.Logger) *Sweep {
	return &Sweep{rentals: rentals, events: events, logger: logger, now: time.Now}
}

// CompleteOverdue moves every Active rental that ended before today to
// Completed so it stops holding stock.
func (s *Sweep) CompleteOverdue(ctx context.Context) ([]rental.Rental, error) {
	now := s.now()
	completed, err := s.rentals.CompleteOverdue(ctx, now)
	if err != nil {
		return nil, err
	}
	if len(completed) == 0 {
		return completed, nil
	}

	metrics.RentalTransitions.WithLabelValues(string(rental.Completed)).Add(float64(len(completed)))
	events := make([]protocols.RentalEvent, 0, len(completed))
	for _, r := range completed {
		events = append(events, protocols.RentalEvent{
			Type:       protocols.RentalReturned,
			RentalId:   r.Id,
			OrderId:    r.OrderId,
			BikeId:     r.BikeId,
			UserId:     r.UserId,
			OccurredAt: now,
		})
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.WarnContext(ctx, "overdue return events not published", "count", len(events), "error", err)
	}
	s.logger.InfoContext(ctx, "overdue rentals completed", "count", len(completed))
	return completed, nil
}
