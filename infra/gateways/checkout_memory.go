package gateways

import (
	"context"
	"sync"
	"time"

	"github.com/giovaniif/motorent/protocols"
)

// CheckoutGatewayMemory tracks idempotency keys in process. Keys expire
// after the same TTL the Redis gateway uses.
type CheckoutGatewayMemory struct {
	mutex sync.Mutex
	keys  map[string]*keyEntry
	now   func() time.Time
}

type keyEntry struct {
	status    string
	orderId   string
	expiresAt time.Time
}

func NewCheckoutGatewayMemory() *CheckoutGatewayMemory {
	return &CheckoutGatewayMemory{keys: make(map[string]*keyEntry), now: time.Now}
}

func (c *CheckoutGatewayMemory) ReserveIdempotencyKey(ctx context.Context, idempotencyKey string) (*protocols.CheckoutIdempotencyKeyResult, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	now := c.now()
	if entry, ok := c.keys[idempotencyKey]; ok && now.Before(entry.expiresAt) {
		if entry.status == statusSuccess {
			return &protocols.CheckoutIdempotencyKeyResult{Success: true, OrderId: entry.orderId}, nil
		}
		return nil, protocols.ErrCheckoutInProgress
	}
	c.keys[idempotencyKey] = &keyEntry{status: statusProcessing, expiresAt: now.Add(idempotencyTTL)}
	return nil, nil
}

func (c *CheckoutGatewayMemory) MarkFailure(ctx context.Context, idempotencyKey string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.keys, idempotencyKey)
	return nil
}

func (c *CheckoutGatewayMemory) MarkSuccess(ctx context.Context, idempotencyKey string, orderId string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.keys[idempotencyKey] = &keyEntry{status: statusSuccess, orderId: orderId, expiresAt: c.now().Add(idempotencyTTL)}
	return nil
}
