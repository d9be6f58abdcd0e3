package gateways

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/giovaniif/motorent/domain/session"
	"github.com/redis/go-redis/v9"
)

const (
	selectionKeyPrefix    = "session:selection:"
	pendingOrderKeyPrefix = "session:order:"
	sessionTTL            = 7 * 24 * time.Hour
)

type SessionStoreRedis struct {
	client *redis.Client
}

func NewSessionStoreRedis(client *redis.Client) *SessionStoreRedis {
	return &SessionStoreRedis{client: client}
}

func (s *SessionStoreRedis) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, raw, sessionTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *SessionStoreRedis) load(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("redis unmarshal: %w", err)
	}
	return nil
}

func (s *SessionStoreRedis) SaveSelection(ctx context.Context, sessionId string, sel session.Selection) error {
	return s.save(ctx, selectionKeyPrefix+sessionId, sel)
}

func (s *SessionStoreRedis) Selection(ctx context.Context, sessionId string) (*session.Selection, error) {
	var sel session.Selection
	if err := s.load(ctx, selectionKeyPrefix+sessionId, &sel); err != nil {
		return nil, err
	}
	return &sel, nil
}

func (s *SessionStoreRedis) SavePendingOrder(ctx context.Context, sessionId string, o session.PendingOrder) error {
	return s.save(ctx, pendingOrderKeyPrefix+sessionId, o)
}

func (s *SessionStoreRedis) PendingOrder(ctx context.Context, sessionId string) (*session.PendingOrder, error) {
	var o session.PendingOrder
	if err := s.load(ctx, pendingOrderKeyPrefix+sessionId, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *SessionStoreRedis) ClearPendingOrder(ctx context.Context, sessionId string) error {
	if err := s.client.Del(ctx, pendingOrderKeyPrefix+sessionId).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
