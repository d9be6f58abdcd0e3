package history

import (
	"context"
	"sort"

	"github.com/giovaniif/motorent/domain/rental"
)

// History lists a renter's own rentals, most recent order first.
type History struct {
	rentals rental.Repository
}

func NewHistory(rentals rental.Repository) *History {
	return &History{rentals: rentals}
}

func (h *History) List(ctx context.Context, userId string) ([]rental.Rental, error) {
	rentals, err := h.rentals.List(ctx, rental.Filter{UserId: userId})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rentals, func(i, j int) bool {
		return rentals[i].OrderDate.After(rentals[j].OrderDate)
	})
	return rentals, nil
}
