package protocols

import "context"

// PaymentGateway charges an order once. Charging an order that was already
// paid is a no-op, so retries after a lost response are safe.
type PaymentGateway interface {
	Charge(ctx context.Context, orderId string, amount float64) error
}
