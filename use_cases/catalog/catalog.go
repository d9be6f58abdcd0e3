package catalog

import (
	"context"
	"time"

	"github.com/giovaniif/motorent/domain/availability"
	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/domain/session"
	"github.com/giovaniif/motorent/use_cases/check"
	"github.com/giovaniif/motorent/use_cases/selection"
)

// Catalog lists bikes for the shopper's selection, each annotated with how
// many units are free over the selected days.
type Catalog struct {
	bikes    bike.Repository
	rentals  rental.Repository
	sessions session.Store
	now      func() time.Time
}

func NewCatalog(bikes bike.Repository, rentals rental.Repository, sessions session.Store) *Catalog {
	return &Catalog{bikes: bikes, rentals: rentals, sessions: sessions, now: time.Now}
}

func (c *Catalog) List(ctx context.Context, input Input) (Output, error) {
	sel, err := selection.Resolve(ctx, c.sessions, input.SessionId, selection.Input{From: input.From, To: input.To, Location: input.Location}, c.now())
	if err != nil {
		return Output{}, err
	}
	rng, err := availability.NewRange(sel.From, sel.To)
	if err != nil {
		return Output{}, err
	}
	location := sel.Location

	bikes, err := c.bikes.List(ctx, bike.Filter{Location: location, Category: input.Category, Cylinder: input.Cylinder})
	if err != nil {
		return Output{}, err
	}

	items := make([]Item, 0, len(bikes))
	for i := range bikes {
		result, err := check.Evaluate(ctx, c.rentals, &bikes[i], rng)
		if err != nil {
			return Output{}, err
		}
		if input.OnlyAvailable && !result.IsAvailable {
			continue
		}
		items = append(items, Item{Bike: bikes[i], Availability: result})
	}
	return Output{From: rng.Start, To: rng.End, Location: location, NumDays: rng.NumDays(), Items: items}, nil
}

type Input struct {
	SessionId     string
	From          time.Time
	To            time.Time
	Location      string
	Category      bike.Category
	Cylinder      bike.CylinderClass
	OnlyAvailable bool
}

type Item struct {
	Bike         bike.Bike           `json:"bike"`
	Availability availability.Result `json:"availability"`
}

type Output struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Location string    `json:"location"`
	NumDays  int32     `json:"numDays"`
	Items    []Item    `json:"items"`
}
