package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/giovaniif/motorent/domain/support"
)

type SupportRepositoryMemory struct {
	mutex    sync.RWMutex
	messages map[string]*support.Message
}

func NewSupportRepositoryMemory(messages ...support.Message) *SupportRepositoryMemory {
	r := &SupportRepositoryMemory{messages: make(map[string]*support.Message, len(messages))}
	for i := range messages {
		m := messages[i]
		r.messages[m.Id] = &m
	}
	return r
}

func (r *SupportRepositoryMemory) Create(ctx context.Context, m *support.Message) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	stored := *m
	r.messages[m.Id] = &stored
	return nil
}

func (r *SupportRepositoryMemory) Get(ctx context.Context, messageId string) (*support.Message, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	m, ok := r.messages[messageId]
	if !ok {
		return nil, fmt.Errorf("%w: %s", support.ErrNotFound, messageId)
	}
	out := *m
	return &out, nil
}

func (r *SupportRepositoryMemory) List(ctx context.Context) ([]support.Message, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]support.Message, 0, len(r.messages))
	for _, m := range r.messages {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *SupportRepositoryMemory) Update(ctx context.Context, m *support.Message) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.messages[m.Id]; !ok {
		return fmt.Errorf("%w: %s", support.ErrNotFound, m.Id)
	}
	stored := *m
	r.messages[m.Id] = &stored
	return nil
}
