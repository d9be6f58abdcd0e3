package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/giovaniif/motorent/domain/user"
)

type UserRepositoryMemory struct {
	mutex sync.RWMutex
	users map[string]*user.User
}

func NewUserRepositoryMemory(users ...user.User) *UserRepositoryMemory {
	r := &UserRepositoryMemory{users: make(map[string]*user.User, len(users))}
	for i := range users {
		u := users[i]
		r.users[u.Id] = &u
	}
	return r
}

func (r *UserRepositoryMemory) Get(ctx context.Context, userId string) (*user.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	u, ok := r.users[userId]
	if !ok {
		return nil, fmt.Errorf("%w: %s", user.ErrNotFound, userId)
	}
	out := *u
	return &out, nil
}

func (r *UserRepositoryMemory) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", user.ErrNotFound, email)
}

func (r *UserRepositoryMemory) List(ctx context.Context) ([]user.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

func (r *UserRepositoryMemory) Save(ctx context.Context, u *user.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	stored := *u
	r.users[u.Id] = &stored
	return nil
}
