package protocols

import (
	"context"
	"errors"
)

var ErrCheckoutInProgress = errors.New("idempotency key is already being processed")

type CheckoutIdempotencyKeyResult struct {
	Success bool   `json:"success"`
	OrderId string `json:"orderId,omitempty"`
}

type CheckoutGateway interface {
	ReserveIdempotencyKey(ctx context.Context, idempotencyKey string) (*CheckoutIdempotencyKeyResult, error)
	MarkFailure(ctx context.Context, idempotencyKey string) error
	MarkSuccess(ctx context.Context, idempotencyKey string, orderId string) error
}
