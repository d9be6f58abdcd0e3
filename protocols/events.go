package protocols

import (
	"context"
	"time"
)

type RentalEventType string

const (
	RentalCreated   RentalEventType = "rental.created"
	RentalPickedUp  RentalEventType = "rental.picked_up"
	RentalReturned  RentalEventType = "rental.returned"
	RentalCancelled RentalEventType = "rental.cancelled"
)

type RentalEvent struct {
	Type       RentalEventType `json:"type"`
	RentalId   string          `json:"rentalId"`
	OrderId    string          `json:"orderId,omitempty"`
	BikeId     string          `json:"bikeId"`
	UserId     string          `json:"userId"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type EventPublisher interface {
	Publish(ctx context.Context, events ...RentalEvent) error
}
