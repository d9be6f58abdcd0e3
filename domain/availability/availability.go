// Package availability answers how many units of a bike model are free for an
// inclusive range of calendar days, and prices a rental over that range.
package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/rental"
)

var (
	ErrInvalidRange    = errors.New("start date is after end date")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
)

// Day truncates t to its calendar date, expressed as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// Range is an inclusive range of calendar days. Build it with NewRange.
type Range struct {
	Start time.Time
	End   time.Time
}

func NewRange(start, end time.Time) (Range, error) {
	s, e := Day(start), Day(end)
	if s.After(e) {
		return Range{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, s.Format(time.DateOnly), e.Format(time.DateOnly))
	}
	return Range{Start: s, End: e}, nil
}

// Overlaps uses inclusive bounds: ranges touching on a single day overlap.
func (r Range) Overlaps(start, end time.Time) bool {
	return !r.Start.After(Day(end)) && !r.End.Before(Day(start))
}

// NumDays counts both ends, so a same-day rental lasts one day.
func (r Range) NumDays() int32 {
	return int32((r.End.Unix()-r.Start.Unix())/secondsPerDay) + 1
}

type Result struct {
	AvailableQuantity int32 `json:"availableQuantity"`
	IsAvailable       bool  `json:"isAvailable"`
}

func (r Result) CanFulfil(quantity int32) bool {
	return r.IsAvailable && quantity > 0 && quantity <= r.AvailableQuantity
}

// Calculate counts the Upcoming and Active rentals of b that overlap rng and
// subtracts them from the owned stock. A bike switched off reports zero.
func Calculate(b *bike.Bike, rng Range, reservations []rental.Rental) Result {
	if !b.IsAvailable {
		return Result{}
	}
	var rented int32
	for _, r := range reservations {
		if r.BikeId != b.Id || !r.Status.Occupies() {
			continue
		}
		if rng.Overlaps(r.StartDate, r.EndDate) {
			rented++
		}
	}
	available := max(0, b.Amount-rented)
	return Result{AvailableQuantity: available, IsAvailable: available > 0}
}

// ClampQuantity adjusts a previously chosen quantity after availability changed.
func ClampQuantity(desired, available int32) int32 {
	if available <= 0 {
		return 0
	}
	if desired > available {
		return available
	}
	if desired <= 0 {
		return 1
	}
	return desired
}

// Price charges the bike per unit per day and each option once per day.
func Price(pricePerDay float64, rng Range, quantity int32, options []rental.Option) float64 {
	days := float64(rng.NumDays())
	var optionsPerDay float64
	for _, opt := range options {
		optionsPerDay += opt.PricePerDay
	}
	return pricePerDay*days*float64(quantity) + optionsPerDay*days
}

// Query is a validated availability request.
type Query struct {
	BikeId   string
	Range    Range
	Quantity int32
}

func NewQuery(bikeId string, start, end time.Time, quantity int32) (Query, error) {
	rng, err := NewRange(start, end)
	if err != nil {
		return Query{}, err
	}
	if quantity < 0 {
		return Query{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	return Query{BikeId: bikeId, Range: rng, Quantity: quantity}, nil
}
