package memory

import (
	"context"
	"sync"

	"github.com/openpredict/marketd/internal/domain"
)

// DisputeStore is an in-memory domain.DisputeStore.
type DisputeStore struct {
	mu       sync.Mutex
	disputes map[uint64][]domain.MarketDispute
}

// NewDisputeStore creates an empty DisputeStore.
func NewDisputeStore() *DisputeStore {
	return &DisputeStore{disputes: make(map[uint64][]domain.MarketDispute)}
}

// Append adds a dispute to the end of the market's sequence.
func (s *DisputeStore) Append(ctx context.Context, marketID uint64, d domain.MarketDispute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disputes[marketID] = append(s.disputes[marketID], d)
	return nil
}

// List returns a copy of the market's dispute sequence in insertion order.
func (s *DisputeStore) List(ctx context.Context, marketID uint64) ([]domain.MarketDispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.disputes[marketID]
	out := make([]domain.MarketDispute, len(seq))
	copy(out, seq)
	return out, nil
}

// Delete removes the market's entire dispute sequence.
func (s *DisputeStore) Delete(ctx context.Context, marketID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.disputes, marketID)
	return nil
}
