package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolStore implements domain.PoolStore using PostgreSQL.
type PoolStore struct {
	pool *pgxpool.Pool
}

// NewPoolStore creates a new PoolStore.
func NewPoolStore(pool *pgxpool.Pool) *PoolStore {
	return &PoolStore{pool: pool}
}

// Set records the canonical swap pool for a market.
func (s *PoolStore) Set(ctx context.Context, marketID, poolID uint64) error {
	const query = `
		INSERT INTO market_pools (market_id, pool_id)
		VALUES ($1, $2)
		ON CONFLICT (market_id) DO UPDATE SET pool_id = EXCLUDED.pool_id`
	_, err := s.pool.Exec(ctx, query, int64(marketID), int64(poolID))
	if err != nil {
		return fmt.Errorf("postgres: set pool for market %d: %w", marketID, err)
	}
	return nil
}

// Get returns the registered pool id, if any.
func (s *PoolStore) Get(ctx context.Context, marketID uint64) (uint64, bool, error) {
	const query = `SELECT pool_id FROM market_pools WHERE market_id = $1`
	var poolID int64
	err := s.pool.QueryRow(ctx, query, int64(marketID)).Scan(&poolID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("postgres: get pool for market %d: %w", marketID, err)
	}
	return uint64(poolID), true, nil
}

// Delete removes the market's pool registration.
func (s *PoolStore) Delete(ctx context.Context, marketID uint64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM market_pools WHERE market_id = $1`, int64(marketID))
	if err != nil {
		return fmt.Errorf("postgres: delete pool for market %d: %w", marketID, err)
	}
	return nil
}
