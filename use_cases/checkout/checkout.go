package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/giovaniif/motorent/domain/availability"
	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/domain/session"
	"github.com/giovaniif/motorent/infra"
	"github.com/giovaniif/motorent/infra/metrics"
	"github.com/giovaniif/motorent/infra/tracing"
	"github.com/giovaniif/motorent/protocols"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	MAX_RETRIES = 4
	BASE_DELAY  = 200 * time.Millisecond
)

var ErrNoPendingOrder = errors.New("no pending order to check out")

func NewCheckout(
	bikes bike.Repository,
	rentals rental.Repository,
	sessions session.Store,
	paymentGateway protocols.PaymentGateway,
	checkoutGateway protocols.CheckoutGateway,
	events protocols.EventPublisher,
	sleeper protocols.Sleeper,
	logger *slog.Logger,
) *Checkout {
	return &Checkout{
		bikes:           bikes,
		rentals:         rentals,
		sessions:        sessions,
		paymentGateway:  paymentGateway,
		checkoutGateway: checkoutGateway,
		events:          events,
		sleeper:         sleeper,
		logger:          logger,
		now:             time.Now,
		newId:           uuid.NewString,
	}
}

func (c *Checkout) Checkout(ctx context.Context, input Input) (Output, error) {
	ctx, span := tracing.Start(ctx, "checkout", attribute.String("session.id", input.SessionId))
	defer span.End()

	key := input.scopedKey()
	result, err := c.checkoutGateway.ReserveIdempotencyKey(ctx, key)
	if err != nil {
		tracing.Fail(span, err)
		return Output{}, err
	}
	if result != nil {
		c.logger.InfoContext(ctx, "checkout replayed", "order_id", result.OrderId)
		return Output{OrderId: result.OrderId, Replayed: true}, nil
	}

	var orderId string
	success := false
	defer func() {
		// the request context may already be gone; the key must still be settled
		settle := context.WithoutCancel(ctx)
		if success {
			c.checkoutGateway.MarkSuccess(settle, key, orderId)
		} else {
			c.checkoutGateway.MarkFailure(settle, key)
		}
	}()

	order, err := c.sessions.PendingOrder(ctx, input.SessionId)
	if errors.Is(err, session.ErrNotFound) {
		return Output{}, ErrNoPendingOrder
	}
	if err != nil {
		return Output{}, err
	}

	units, total, err := c.buildUnits(ctx, input.UserId, order)
	if err != nil {
		c.fail(span, "invalid_order", err)
		return Output{}, err
	}
	orderId = units[0].OrderId
	span.SetAttributes(attribute.String("order.id", orderId), attribute.String("bike.id", order.BikeId))

	guard := stockGuard(units[0].StartDate, units[0].EndDate, order.Quantity)
	_, err = RetryWithBackoff(ctx, c.sleeper, isTransient, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.rentals.Reserve(ctx, order.BikeId, units, guard)
	})
	if err != nil {
		c.fail(span, "reserve", err)
		return Output{}, err
	}
	metrics.RentalsReserved.Add(float64(len(units)))

	_, err = RetryWithBackoff(ctx, c.sleeper, infra.IsRetriable, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.paymentGateway.Charge(ctx, orderId, total)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "charge failed, releasing units", "order_id", orderId, "error", err)
		c.release(context.WithoutCancel(ctx), units)
		c.fail(span, "charge", err)
		return Output{}, err
	}

	success = true
	c.publishCreated(ctx, units)
	if err := c.sessions.ClearPendingOrder(ctx, input.SessionId); err != nil {
		c.logger.WarnContext(ctx, "pending order not cleared", "session_id", input.SessionId, "error", err)
	}
	c.logger.InfoContext(ctx, "checkout completed", "order_id", orderId, "bike_id", order.BikeId, "units", len(units), "total", total)

	rentalIds := make([]string, 0, len(units))
	for _, u := range units {
		rentalIds = append(rentalIds, u.Id)
	}
	return Output{OrderId: orderId, RentalIds: rentalIds, TotalPrice: total}, nil
}

// buildUnits reprices the pending order against the current catalog and
// splits it into one rental per unit.
func (c *Checkout) buildUnits(ctx context.Context, userId string, order *session.PendingOrder) ([]rental.Rental, float64, error) {
	query, err := availability.NewQuery(order.BikeId, order.Start, order.End, order.Quantity)
	if err != nil {
		return nil, 0, err
	}
	if query.Quantity == 0 {
		return nil, 0, fmt.Errorf("%w: at least one unit is required", availability.ErrInvalidQuantity)
	}
	options, err := rental.LookupOptions(order.Options)
	if err != nil {
		return nil, 0, err
	}
	b, err := c.bikes.Get(ctx, order.BikeId)
	if err != nil {
		return nil, 0, err
	}

	total := availability.Price(b.PricePerDay, query.Range, query.Quantity, options)
	perUnit := math.Round(total/float64(query.Quantity)*100) / 100
	orderId := c.newId()
	now := c.now()
	units := make([]rental.Rental, 0, query.Quantity)
	for i := int32(0); i < query.Quantity; i++ {
		units = append(units, rental.Rental{
			Id:         c.newId(),
			OrderId:    orderId,
			BikeId:     b.Id,
			UserId:     userId,
			StartDate:  query.Range.Start,
			EndDate:    query.Range.End,
			TotalPrice: perUnit,
			Options:    order.Options,
			Status:     rental.Upcoming,
			BikeName:   b.Name,
			OrderDate:  now,
		})
	}
	return units, total, nil
}

func stockGuard(start, end time.Time, quantity int32) rental.Guard {
	rng := availability.Range{Start: start, End: end}
	return func(b *bike.Bike, existing []rental.Rental) error {
		result := availability.Calculate(b, rng, existing)
		if !result.CanFulfil(quantity) {
			return fmt.Errorf("%w: %d requested, %d available", rental.ErrInsufficientStock, quantity, result.AvailableQuantity)
		}
		return nil
	}
}

func isTransient(err error) bool {
	return !errors.Is(err, rental.ErrInsufficientStock) &&
		!errors.Is(err, bike.ErrNotFound) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func (c *Checkout) release(ctx context.Context, units []rental.Rental) {
	for _, u := range units {
		if err := c.rentals.UpdateStatus(ctx, u.Id, rental.Upcoming, rental.Cancelled); err != nil {
			c.logger.ErrorContext(ctx, "failed to release unit", "rental_id", u.Id, "error", err)
		}
	}
}

func (c *Checkout) publishCreated(ctx context.Context, units []rental.Rental) {
	events := make([]protocols.RentalEvent, 0, len(units))
	for _, u := range units {
		events = append(events, protocols.RentalEvent{
			Type:       protocols.RentalCreated,
			RentalId:   u.Id,
			OrderId:    u.OrderId,
			BikeId:     u.BikeId,
			UserId:     u.UserId,
			OccurredAt: u.OrderDate,
		})
	}
	if err := c.events.Publish(ctx, events...); err != nil {
		c.logger.WarnContext(ctx, "rental events not published", "error", err)
	}
}

func (c *Checkout) fail(span trace.Span, reason string, err error) {
	metrics.CheckoutFailures.WithLabelValues(reason).Inc()
	tracing.Fail(span, err)
}

type Input struct {
	IdempotencyKey string
	SessionId      string
	UserId         string
}

// Keys are per user: two shoppers picking the same key never share an order.
func (i Input) scopedKey() string {
	return i.UserId + ":" + i.IdempotencyKey
}

type Output struct {
	OrderId    string   `json:"orderId"`
	RentalIds  []string `json:"rentalIds,omitempty"`
	TotalPrice float64  `json:"totalPrice,omitempty"`
	Replayed   bool     `json:"replayed,omitempty"`
}

type Checkout struct {
	bikes           bike.Repository
	rentals         rental.Repository
	sessions        session.Store
	paymentGateway  protocols.PaymentGateway
	checkoutGateway protocols.CheckoutGateway
	events          protocols.EventPublisher
	sleeper         protocols.Sleeper
	logger          *slog.Logger
	now             func() time.Time
	newId           func() string
}
