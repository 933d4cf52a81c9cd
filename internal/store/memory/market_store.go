// Package memory implements the domain store interfaces with mutex-guarded
// maps. It is the deterministic in-process backend used by the serialized
// settlement core and by tests.
package memory

import (
	"context"
	"math"
	"sync"

	"github.com/openpredict/marketd/internal/domain"
)

// MarketStore is an in-memory domain.MarketStore.
type MarketStore struct {
	mu      sync.Mutex
	markets map[uint64]domain.Market
	nextID  uint64
}

// NewMarketStore creates an empty MarketStore with the id counter at zero.
func NewMarketStore() *MarketStore {
	return &MarketStore{markets: make(map[uint64]domain.Market)}
}

// NextID returns the next sequential market id. Ids are never reused, even
// after deletion.
func (s *MarketStore) NextID(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nextID == math.MaxUint64 {
		return 0, domain.ErrIDOverflow
	}
	id := s.nextID
	s.nextID++
	return id, nil
}

// Insert stores a new market record.
func (s *MarketStore) Insert(ctx context.Context, m domain.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markets[m.ID] = m
	return nil
}

// Get returns the market with the given id.
func (s *MarketStore) Get(ctx context.Context, id uint64) (domain.Market, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markets[id]
	if !ok {
		return domain.Market{}, domain.ErrMarketNotFound
	}
	return m, nil
}

// Update overwrites an existing market record.
func (s *MarketStore) Update(ctx context.Context, m domain.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markets[m.ID]; !ok {
		return domain.ErrMarketNotFound
	}
	s.markets[m.ID] = m
	return nil
}

// Delete removes a market record.
func (s *MarketStore) Delete(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markets[id]; !ok {
		return domain.ErrMarketNotFound
	}
	delete(s.markets, id)
	return nil
}
