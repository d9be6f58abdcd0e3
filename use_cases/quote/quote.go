package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/giovaniif/motorent/domain/availability"
	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/domain/session"
	"github.com/giovaniif/motorent/use_cases/check"
)

// Quote prices a rental and parks it in the session as the order awaiting checkout.
type Quote struct {
	bikes    bike.Repository
	rentals  rental.Repository
	sessions session.Store
}

func NewQuote(bikes bike.Repository, rentals rental.Repository, sessions session.Store) *Quote {
	return &Quote{bikes: bikes, rentals: rentals, sessions: sessions}
}

func (q *Quote) Quote(ctx context.Context, input Input) (*session.PendingOrder, error) {
	query, err := availability.NewQuery(input.BikeId, input.From, input.To, input.Quantity)
	if err != nil {
		return nil, err
	}
	if query.Quantity == 0 {
		return nil, fmt.Errorf("%w: at least one unit is required", availability.ErrInvalidQuantity)
	}
	options, err := rental.LookupOptions(input.Options)
	if err != nil {
		return nil, err
	}
	b, err := q.bikes.Get(ctx, query.BikeId)
	if err != nil {
		return nil, err
	}
	result, err := check.Evaluate(ctx, q.rentals, b, query.Range)
	if err != nil {
		return nil, err
	}
	if !result.CanFulfil(query.Quantity) {
		return nil, fmt.Errorf("%w: %d requested, %d available", rental.ErrInsufficientStock, query.Quantity, result.AvailableQuantity)
	}

	optionIds := make([]string, 0, len(options))
	for _, o := range options {
		optionIds = append(optionIds, o.Id)
	}
	order := session.PendingOrder{
		BikeId:     b.Id,
		BikeName:   b.Name,
		Start:      query.Range.Start,
		End:        query.Range.End,
		Options:    optionIds,
		Quantity:   query.Quantity,
		NumDays:    query.Range.NumDays(),
		TotalPrice: availability.Price(b.PricePerDay, query.Range, query.Quantity, options),
	}
	if err := q.sessions.SavePendingOrder(ctx, input.SessionId, order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (q *Quote) Pending(ctx context.Context, sessionId string) (*session.PendingOrder, error) {
	return q.sessions.PendingOrder(ctx, sessionId)
}

type Input struct {
	SessionId string
	BikeId    string
	From      time.Time
	To        time.Time
	Quantity  int32
	Options   []string
}
