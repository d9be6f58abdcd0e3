// Package session holds what a shopper picked before checkout: the date
// range and location used to browse, and the priced order awaiting payment.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("nothing stored for session")

type Selection struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Location string    `json:"location"`
}

type PendingOrder struct {
	BikeId     string    `json:"bikeId"`
	BikeName   string    `json:"bikeName"`
	Start      time.Time `json:"startDate"`
	End        time.Time `json:"endDate"`
	Options    []string  `json:"options"`
	Quantity   int32     `json:"quantityRented"`
	NumDays    int32     `json:"numDays"`
	TotalPrice float64   `json:"totalPrice"`
}

type Store interface {
	SaveSelection(ctx context.Context, sessionId string, s Selection) error
	Selection(ctx context.Context, sessionId string) (*Selection, error)
	SavePendingOrder(ctx context.Context, sessionId string, o PendingOrder) error
	PendingOrder(ctx context.Context, sessionId string) (*PendingOrder, error)
	ClearPendingOrder(ctx context.Context, sessionId string) error
}
