package gateways

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/giovaniif/motorent/protocols"
	"github.com/redis/go-redis/v9"
)

const (
	statusProcessing = "processing"
	statusSuccess    = "success"

	idempotencyKeyPrefix = "idempotency:checkout:"
	idempotencyTTL       = 24 * time.Hour
)

type checkoutRedisState struct {
	Status string                                  `json:"status"`
	Result *protocols.CheckoutIdempotencyKeyResult `json:"result,omitempty"`
}

type CheckoutGatewayRedis struct {
	client *redis.Client
}

func NewCheckoutGatewayRedis(client *redis.Client) *CheckoutGatewayRedis {
	return &CheckoutGatewayRedis{client: client}
}

func (c *CheckoutGatewayRedis) key(idempotencyKey string) string {
	return idempotencyKeyPrefix + idempotencyKey
}

func (c *CheckoutGatewayRedis) ReserveIdempotencyKey(ctx context.Context, idempotencyKey string) (*protocols.CheckoutIdempotencyKeyResult, error) {
	k := c.key(idempotencyKey)
	processing, _ := json.Marshal(checkoutRedisState{Status: statusProcessing})

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		data, err := c.client.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			_, err := c.client.SetArgs(ctx, k, processing, redis.SetArgs{Mode: "NX", TTL: idempotencyTTL}).Result()
			if errors.Is(err, redis.Nil) {
				// lost the race to another request, read its state
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("redis set: %w", err)
			}
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}

		var state checkoutRedisState
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("redis unmarshal: %w", err)
		}

		switch state.Status {
		case statusSuccess:
			return state.Result, nil
		case statusProcessing:
			return nil, protocols.ErrCheckoutInProgress
		default:
			if err := c.client.Set(ctx, k, processing, idempotencyTTL).Err(); err != nil {
				return nil, fmt.Errorf("redis set: %w", err)
			}
			return nil, nil
		}
	}
}

func (c *CheckoutGatewayRedis) MarkFailure(ctx context.Context, idempotencyKey string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return c.client.Del(ctx, c.key(idempotencyKey)).Err()
}

func (c *CheckoutGatewayRedis) MarkSuccess(ctx context.Context, idempotencyKey string, orderId string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	raw, err := json.Marshal(checkoutRedisState{
		Status: statusSuccess,
		Result: &protocols.CheckoutIdempotencyKeyResult{Success: true, OrderId: orderId},
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(idempotencyKey), raw, idempotencyTTL).Err()
}
