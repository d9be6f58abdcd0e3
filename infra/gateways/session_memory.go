package gateways

import (
	"context"
	"sync"

	"github.com/giovaniif/motorent/domain/session"
)

type SessionStoreMemory struct {
	mutex      sync.RWMutex
	selections map[string]session.Selection
	orders     map[string]session.PendingOrder
}

func NewSessionStoreMemory() *SessionStoreMemory {
	return &SessionStoreMemory{
		selections: make(map[string]session.Selection),
		orders:     make(map[string]session.PendingOrder),
	}
}

func (s *SessionStoreMemory) SaveSelection(ctx context.Context, sessionId string, sel session.Selection) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.selections[sessionId] = sel
	return nil
}

func (s *SessionStoreMemory) Selection(ctx context.Context, sessionId string) (*session.Selection, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	sel, ok := s.selections[sessionId]
	if !ok {
		return nil, session.ErrNotFound
	}
	return &sel, nil
}

func (s *SessionStoreMemory) SavePendingOrder(ctx context.Context, sessionId string, o session.PendingOrder) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.orders[sessionId] = o
	return nil
}

func (s *SessionStoreMemory) PendingOrder(ctx context.Context, sessionId string) (*session.PendingOrder, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	o, ok := s.orders[sessionId]
	if !ok {
		return nil, session.ErrNotFound
	}
	return &o, nil
}

func (s *SessionStoreMemory) ClearPendingOrder(ctx context.Context, sessionId string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.orders, sessionId)
	return nil
}
