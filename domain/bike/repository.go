package bike

import "context"

type Repository interface {
	Get(ctx context.Context, bikeId string) (*Bike, error)
	List(ctx context.Context, filter Filter) ([]Bike, error)
	// Create inserts a new bike and fails with ErrAlreadyExists when the id is taken.
	Create(ctx context.Context, b *Bike) error
	Save(ctx context.Context, b *Bike) error
	Delete(ctx context.Context, bikeId string) error
	Locations(ctx context.Context) ([]string, error)
}
