package store

import (
	"context"
	"sync"

	"github.com/kakaka820/Titanic/pkg/data"
)

// Store holds the processed passenger records served by the API.
type Store interface {
	// SeedPassengers replaces the stored records with ps.
	SeedPassengers(ctx context.Context, ps []data.Passenger) error
	// Passengers returns every record in load order.
	Passengers(ctx context.Context) ([]data.Passenger, error)
}

// MemoryStore keeps records for the lifetime of the process.
type MemoryStore struct {
	mu         sync.RWMutex
	passengers []data.Passenger
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SeedPassengers(_ context.Context, ps []data.Passenger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passengers = append([]data.Passenger(nil), ps...)
	return nil
}

// Passengers returns a copy; callers may mutate it.
func (s *MemoryStore) Passengers(_ context.Context) ([]data.Passenger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]data.Passenger, 0, len(s.passengers)), s.passengers...), nil
}
