package memory

import (
	"context"
	"sync"
)

// PoolStore is an in-memory domain.PoolStore.
type PoolStore struct {
	mu    sync.Mutex
	pools map[uint64]uint64
}

// NewPoolStore creates an empty PoolStore.
func NewPoolStore() *PoolStore {
	return &PoolStore{pools: make(map[uint64]uint64)}
}

// Set records the canonical pool for a market.
func (s *PoolStore) Set(ctx context.Context, marketID, poolID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[marketID] = poolID
	return nil
}

// Get returns the pool id for a market and whether one is registered.
func (s *PoolStore) Get(ctx context.Context, marketID uint64) (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.pools[marketID]
	return id, ok, nil
}

// Delete removes the market's pool entry.
func (s *PoolStore) Delete(ctx context.Context, marketID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pools, marketID)
	return nil
}
