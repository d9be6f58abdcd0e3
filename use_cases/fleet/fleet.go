// Package fleet is the admin side of the catalog.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/rental"
	"github.com/gosimple/slug"
)

var ErrBikeInUse = errors.New("bike has upcoming or active rentals")

type Fleet struct {
	bikes   bike.Repository
	rentals rental.Repository
}

func NewFleet(bikes bike.Repository, rentals rental.Repository) *Fleet {
	return &Fleet{bikes: bikes, rentals: rentals}
}

func (f *Fleet) List(ctx context.Context, filter bike.Filter) ([]bike.Bike, error) {
	return f.bikes.List(ctx, filter)
}

func (f *Fleet) Get(ctx context.Context, bikeId string) (*bike.Bike, error) {
	return f.bikes.Get(ctx, bikeId)
}

// Create stores a new bike under an id derived from its name. Taken ids get
// a numeric suffix: trail-blazer, trail-blazer-2, ...
func (f *Fleet) Create(ctx context.Context, b bike.Bike) (*bike.Bike, error) {
	normalize(&b)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	base := slug.Make(b.Name)
	if base == "" {
		base = "bike"
	}
	for n := 1; ; n++ {
		b.Id = base
		if n > 1 {
			b.Id = fmt.Sprintf("%s-%d", base, n)
		}
		err := f.bikes.Create(ctx, &b)
		if err == nil {
			return &b, nil
		}
		if !errors.Is(err, bike.ErrAlreadyExists) {
			return nil, err
		}
	}
}

// Update replaces every field of an existing bike except its id.
func (f *Fleet) Update(ctx context.Context, bikeId string, b bike.Bike) (*bike.Bike, error) {
	if _, err := f.bikes.Get(ctx, bikeId); err != nil {
		return nil, err
	}
	b.Id = bikeId
	normalize(&b)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := f.bikes.Save(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (f *Fleet) Delete(ctx context.Context, bikeId string) error {
	if _, err := f.bikes.Get(ctx, bikeId); err != nil {
		return err
	}
	open, err := f.rentals.List(ctx, rental.Filter{BikeId: bikeId, Statuses: []rental.Status{rental.Upcoming, rental.Active}})
	if err != nil {
		return err
	}
	if len(open) > 0 {
		return fmt.Errorf("%w: %s has %d", ErrBikeInUse, bikeId, len(open))
	}
	return f.bikes.Delete(ctx, bikeId)
}

func normalize(b *bike.Bike) {
	b.Name = strings.TrimSpace(b.Name)
	b.Location = strings.TrimSpace(b.Location)
	features := b.Features[:0:0]
	for _, feature := range b.Features {
		if feature = strings.TrimSpace(feature); feature != "" {
			features = append(features, feature)
		}
	}
	b.Features = features
	if b.Category == bike.Electric {
		b.CylinderVolume = nil
	}
}
