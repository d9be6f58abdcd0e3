package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/giovaniif/motorent/domain/bike"
)

type BikeRepositoryMemory struct {
	mutex sync.RWMutex
	bikes map[string]*bike.Bike
}

func NewBikeRepositoryMemory(bikes ...bike.Bike) *BikeRepositoryMemory {
	r := &BikeRepositoryMemory{bikes: make(map[string]*bike.Bike, len(bikes))}
	for i := range bikes {
		b := bikes[i]
		r.bikes[b.Id] = &b
	}
	return r
}

func (r *BikeRepositoryMemory) Get(ctx context.Context, bikeId string) (*bike.Bike, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	b, ok := r.bikes[bikeId]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bike.ErrNotFound, bikeId)
	}
	out := *b
	return &out, nil
}

func (r *BikeRepositoryMemory) List(ctx context.Context, filter bike.Filter) ([]bike.Bike, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]bike.Bike, 0, len(r.bikes))
	for _, b := range r.bikes {
		if filter.Matches(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

func (r *BikeRepositoryMemory) Create(ctx context.Context, b *bike.Bike) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.bikes[b.Id]; ok {
		return fmt.Errorf("%w: %s", bike.ErrAlreadyExists, b.Id)
	}
	stored := *b
	r.bikes[b.Id] = &stored
	return nil
}

func (r *BikeRepositoryMemory) Save(ctx context.Context, b *bike.Bike) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	stored := *b
	r.bikes[b.Id] = &stored
	return nil
}

func (r *BikeRepositoryMemory) Delete(ctx context.Context, bikeId string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.bikes[bikeId]; !ok {
		return fmt.Errorf("%w: %s", bike.ErrNotFound, bikeId)
	}
	delete(r.bikes, bikeId)
	return nil
}

func (r *BikeRepositoryMemory) Locations(ctx context.Context) ([]string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, b := range r.bikes {
		if !seen[b.Location] {
			seen[b.Location] = true
			out = append(out, b.Location)
		}
	}
	sort.Strings(out)
	return out, nil
}
