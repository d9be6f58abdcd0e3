package rental

import (
	"context"
	"time"

	"github.com/giovaniif/motorent/domain/bike"
)

// Guard decides, with the bike row and its rentals locked, whether the new
// rentals may be written. Returning an error aborts the reservation.
type Guard func(b *bike.Bike, existing []Rental) error

type Filter struct {
	UserId   string
	BikeId   string
	Statuses []Status
}

type Repository interface {
	FindById(ctx context.Context, rentalId string) (*Rental, error)
	FindByBike(ctx context.Context, bikeId string) ([]Rental, error)
	List(ctx context.Context, filter Filter) ([]Rental, error)
	// Reserve runs guard and inserts rentals as one atomic step per bike.
	Reserve(ctx context.Context, bikeId string, rentals []Rental, guard Guard) error
	// UpdateStatus moves a rental from one status to another, failing with
	// ErrStaleStatus when the stored status is no longer from.
	UpdateStatus(ctx context.Context, rentalId string, from, to Status) error
	CompleteOverdue(ctx context.Context, today time.Time) ([]Rental, error)
}
