package repositories

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/giovaniif/motorent/domain/availability"
	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/rental"
)

// RentalRepositoryMemory serialises every reservation behind one mutex, so the
// guard and the insert it allows cannot interleave with another checkout.
type RentalRepositoryMemory struct {
	mutex   sync.RWMutex
	bikes   bike.Repository
	rentals map[string]*rental.Rental
}

func NewRentalRepositoryMemory(bikes bike.Repository, rentals ...rental.Rental) *RentalRepositoryMemory {
	r := &RentalRepositoryMemory{bikes: bikes, rentals: make(map[string]*rental.Rental, len(rentals))}
	for i := range rentals {
		stored := rentals[i]
		r.rentals[stored.Id] = &stored
	}
	return r
}

func (r *RentalRepositoryMemory) FindById(ctx context.Context, rentalId string) (*rental.Rental, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	stored, ok := r.rentals[rentalId]
	if !ok {
		return nil, fmt.Errorf("%w: %s", rental.ErrNotFound, rentalId)
	}
	out := *stored
	return &out, nil
}

func (r *RentalRepositoryMemory) FindByBike(ctx context.Context, bikeId string) ([]rental.Rental, error) {
	return r.List(ctx, rental.Filter{BikeId: bikeId})
}

func (r *RentalRepositoryMemory) List(ctx context.Context, filter rental.Filter) ([]rental.Rental, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.list(filter), nil
}

func (r *RentalRepositoryMemory) list(filter rental.Filter) []rental.Rental {
	out := make([]rental.Rental, 0)
	for _, stored := range r.rentals {
		if filter.BikeId != "" && stored.BikeId != filter.BikeId {
			continue
		}
		if filter.UserId != "" && stored.UserId != filter.UserId {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, stored.Status) {
			continue
		}
		out = append(out, *stored)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].Id < out[j].Id
	})
	return out
}

func (r *RentalRepositoryMemory) Reserve(ctx context.Context, bikeId string, rentals []rental.Rental, guard rental.Guard) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	reservationBike, err := r.bikes.Get(ctx, bikeId)
	if err != nil {
		return err
	}
	if err := guard(reservationBike, r.list(rental.Filter{BikeId: bikeId})); err != nil {
		return err
	}
	for i := range rentals {
		stored := rentals[i]
		r.rentals[stored.Id] = &stored
	}
	return nil
}

func (r *RentalRepositoryMemory) UpdateStatus(ctx context.Context, rentalId string, from, to rental.Status) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	stored, ok := r.rentals[rentalId]
	if !ok {
		return fmt.Errorf("%w: %s", rental.ErrNotFound, rentalId)
	}
	if stored.Status != from {
		return fmt.Errorf("%w: %s is %s", rental.ErrStaleStatus, rentalId, stored.Status)
	}
	stored.Status = to
	return nil
}

func (r *RentalRepositoryMemory) CompleteOverdue(ctx context.Context, today time.Time) ([]rental.Rental, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	cutoff := availability.Day(today)
	var completed []rental.Rental
	for _, stored := range r.rentals {
		if stored.Status != rental.Active || !availability.Day(stored.EndDate).Before(cutoff) {
			continue
		}
		stored.Status = rental.Completed
		completed = append(completed, *stored)
	}
	sort.Slice(completed, func(i, j int) bool { return completed[i].Id < completed[j].Id })
	return completed, nil
}
