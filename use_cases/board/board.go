// Package board builds the staff view of rentals waiting for pickup and
// rentals currently out on the road.
package board

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/giovaniif/motorent/domain/availability"
	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/domain/support"
	"github.com/giovaniif/motorent/domain/user"
)

type Board struct {
	rentals  rental.Repository
	bikes    bike.Repository
	users    user.Repository
	messages support.Repository
}

func NewBoard(rentals rental.Repository, bikes bike.Repository, users user.Repository, messages support.Repository) *Board {
	return &Board{rentals: rentals, bikes: bikes, users: users, messages: messages}
}

func (b *Board) List(ctx context.Context, input Input) (Output, error) {
	if !input.From.IsZero() && !input.To.IsZero() {
		if _, err := availability.NewRange(input.From, input.To); err != nil {
			return Output{}, err
		}
	}
	rentals, err := b.rentals.List(ctx, rental.Filter{Statuses: []rental.Status{rental.Upcoming, rental.Active}})
	if err != nil {
		return Output{}, err
	}

	bikes := map[string]*bike.Bike{}
	users := map[string]*user.User{}
	output := Output{Active: []Entry{}, Upcoming: []Entry{}}
	for _, r := range rentals {
		if !input.matchesDates(r) {
			continue
		}
		location, err := b.bikeLocation(ctx, bikes, r.BikeId)
		if err != nil {
			return Output{}, err
		}
		if input.Location != "" && input.Location != bike.AnyLocation && !strings.EqualFold(input.Location, location) {
			continue
		}
		entry := Entry{Rental: r, Location: location, UserName: b.userName(ctx, users, r.UserId)}
		if r.Status == rental.Active {
			output.Active = append(output.Active, entry)
		} else {
			output.Upcoming = append(output.Upcoming, entry)
		}
	}

	sort.SliceStable(output.Active, func(i, j int) bool {
		return output.Active[i].Rental.EndDate.Before(output.Active[j].Rental.EndDate)
	})
	sort.SliceStable(output.Upcoming, func(i, j int) bool {
		return output.Upcoming[i].Rental.StartDate.Before(output.Upcoming[j].Rental.StartDate)
	})
	return output, nil
}

// Summary counts what the staff dashboard shows: rentals out and due, the
// rental locations in the catalog and support messages nobody picked up yet.
func (b *Board) Summary(ctx context.Context) (Summary, error) {
	rentals, err := b.rentals.List(ctx, rental.Filter{Statuses: []rental.Status{rental.Upcoming, rental.Active}})
	if err != nil {
		return Summary{}, err
	}
	locations, err := b.bikes.Locations(ctx)
	if err != nil {
		return Summary{}, err
	}
	messages, err := b.messages.List(ctx)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{Locations: int32(len(locations))}
	for _, r := range rentals {
		switch r.Status {
		case rental.Active:
			out.ActiveRentals++
		case rental.Upcoming:
			out.UpcomingRentals++
		}
	}
	for _, m := range messages {
		if m.Status == support.New {
			out.PendingMessages++
		}
	}
	return out, nil
}

// A bike deleted from the catalog keeps its rentals on the board without a location.
func (b *Board) bikeLocation(ctx context.Context, cache map[string]*bike.Bike, bikeId string) (string, error) {
	if found, ok := cache[bikeId]; ok {
		if found == nil {
			return "", nil
		}
		return found.Location, nil
	}
	found, err := b.bikes.Get(ctx, bikeId)
	if err != nil && !errors.Is(err, bike.ErrNotFound) {
		return "", err
	}
	cache[bikeId] = found
	if found == nil {
		return "", nil
	}
	return found.Location, nil
}

func (b *Board) userName(ctx context.Context, cache map[string]*user.User, userId string) string {
	found, ok := cache[userId]
	if !ok {
		found, _ = b.users.Get(ctx, userId)
		cache[userId] = found
	}
	if found == nil {
		return "Unknown user"
	}
	return found.Name
}

type Input struct {
	From     time.Time
	To       time.Time
	Location string
}

// matchesDates keeps rentals overlapping [From, To]. With only From set it
// keeps rentals that have not ended before From.
func (i Input) matchesDates(r rental.Rental) bool {
	switch {
	case !i.From.IsZero() && !i.To.IsZero():
		return availability.Range{Start: availability.Day(i.From), End: availability.Day(i.To)}.Overlaps(r.StartDate, r.EndDate)
	case !i.From.IsZero():
		return !availability.Day(r.EndDate).Before(availability.Day(i.From))
	case !i.To.IsZero():
		return !availability.Day(r.StartDate).After(availability.Day(i.To))
	}
	return true
}

type Entry struct {
	Rental   rental.Rental `json:"rental"`
	UserName string        `json:"userName"`
	Location string        `json:"location"`
}

type Output struct {
	Active   []Entry `json:"active"`
	Upcoming []Entry `json:"upcoming"`
}

type Summary struct {
	ActiveRentals   int32 `json:"activeRentals"`
	UpcomingRentals int32 `json:"upcomingRentals"`
	Locations       int32 `json:"managedLocations"`
	PendingMessages int32 `json:"pendingSupportMessages"`
}
