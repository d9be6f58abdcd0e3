package check

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/giovaniif/motorent/domain/availability"
	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/infra/metrics"
)

// ErrReservationsUnavailable is returned instead of an answer when existing
// reservations cannot be read. A bike is never reported free on a failed read.
var ErrReservationsUnavailable = errors.New("reservations could not be loaded")

type Check struct {
	bikes   bike.Repository
	rentals rental.Repository
}

func NewCheck(bikes bike.Repository, rentals rental.Repository) *Check {
	return &Check{bikes: bikes, rentals: rentals}
}

func (c *Check) Check(ctx context.Context, input Input) (Output, error) {
	query, err := availability.NewQuery(input.BikeId, input.From, input.To, input.Quantity)
	if err != nil {
		return Output{}, err
	}
	b, err := c.bikes.Get(ctx, query.BikeId)
	if err != nil {
		return Output{}, err
	}
	result, err := Evaluate(ctx, c.rentals, b, query.Range)
	if err != nil {
		return Output{}, err
	}
	return Output{
		Bike:     b,
		Range:    query.Range,
		Result:   result,
		Quantity: availability.ClampQuantity(query.Quantity, result.AvailableQuantity),
		NumDays:  query.Range.NumDays(),
	}, nil
}

// Evaluate loads the reservations of b and runs the calculator over rng.
func Evaluate(ctx context.Context, rentals rental.Repository, b *bike.Bike, rng availability.Range) (availability.Result, error) {
	reservations, err := rentals.FindByBike(ctx, b.Id)
	if err != nil {
		return availability.Result{}, fmt.Errorf("%w: %w", ErrReservationsUnavailable, err)
	}
	result := availability.Calculate(b, rng, reservations)
	metrics.ObserveAvailability(result.IsAvailable)
	return result, nil
}

type Input struct {
	BikeId   string
	From     time.Time
	To       time.Time
	Quantity int32
}

type Output struct {
	Bike     *bike.Bike
	Range    availability.Range
	Result   availability.Result
	Quantity int32
	NumDays  int32
}
