package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/openpredict/marketd/internal/domain"
)

// pool records the assets a deployed pool trades over.
type pool struct {
	creator string
	assets  []string
	weights []uint64
}

// SwapRegistry is an in-memory domain.Swaps that assigns sequential pool ids.
// It stands in for an external AMM; the pool ids it issues are what the
// market registry records.
type SwapRegistry struct {
	mu    sync.Mutex
	next  uint64
	pools map[uint64]pool
}

// NewSwapRegistry creates an empty SwapRegistry.
func NewSwapRegistry() *SwapRegistry {
	return &SwapRegistry{pools: make(map[uint64]pool)}
}

// CreatePool registers a pool over the given assets and returns its id. The
// weights slice, when non-empty, must match the asset list in length.
func (r *SwapRegistry) CreatePool(ctx context.Context, creator string, assets []string, weights []uint64) (uint64, error) {
	if len(assets) < 2 {
		return 0, fmt.Errorf("swaps: pool needs at least two assets, got %d", len(assets))
	}
	if len(weights) > 0 && len(weights) != len(assets) {
		return 0, fmt.Errorf("swaps: %d weights for %d assets", len(weights), len(assets))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.pools[id] = pool{
		creator: creator,
		assets:  append([]string(nil), assets...),
		weights: append([]uint64(nil), weights...),
	}
	return id, nil
}

// Assets returns the asset list of a pool, if it exists.
func (r *SwapRegistry) Assets(id uint64) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pools[id]
	if !ok {
		return nil, false
	}
	return append([]string(nil), p.assets...), true
}

// Compile-time interface check.
var _ domain.Swaps = (*SwapRegistry)(nil)
