package rental

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	Upcoming  Status = "Upcoming"
	Active    Status = "Active"
	Completed Status = "Completed"
	Cancelled Status = "Cancelled"
)

var (
	ErrNotFound          = errors.New("rental not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStaleStatus       = errors.New("rental status changed concurrently")
)

// Occupies reports whether a rental in this status holds a unit of stock.
func (s Status) Occupies() bool {
	return s == Upcoming || s == Active
}

func (s Status) Terminal() bool {
	return s == Completed || s == Cancelled
}

func (s Status) Valid() bool {
	switch s {
	case Upcoming, Active, Completed, Cancelled:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	Upcoming: {Active, Cancelled},
	Active:   {Completed},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Rental is one reserved unit of a bike model. Orders for several units
// produce several rentals sharing an OrderId.
type Rental struct {
	Id         string    `json:"id"`
	OrderId    string    `json:"orderId"`
	BikeId     string    `json:"bikeId"`
	UserId     string    `json:"userId"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	TotalPrice float64   `json:"totalPrice"`
	Options    []string  `json:"options"`
	Status     Status    `json:"status"`
	BikeName   string    `json:"bikeName"`
	OrderDate  time.Time `json:"orderDate"`
}

// Transition returns a copy of r moved to next. Nothing but the status changes.
func (r Rental) Transition(next Status) (Rental, error) {
	if !r.Status.CanTransitionTo(next) {
		return r, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, next)
	}
	r.Status = next
	return r, nil
}
