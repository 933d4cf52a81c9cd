package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openpredict/marketd/internal/domain"
)

// DisputeStore implements domain.DisputeStore using PostgreSQL.
type DisputeStore struct {
	pool *pgxpool.Pool
}

// NewDisputeStore creates a new DisputeStore.
func NewDisputeStore(pool *pgxpool.Pool) *DisputeStore {
	return &DisputeStore{pool: pool}
}

// Append adds a dispute at the end of the market's sequence.
func (s *DisputeStore) Append(ctx context.Context, marketID uint64, d domain.MarketDispute) error {
	const query = `
		INSERT INTO disputes (market_id, seq, at, disputed_by, outcome)
		VALUES ($1, (SELECT COALESCE(MAX(seq), -1) + 1 FROM disputes WHERE market_id = $1), $2, $3, $4)`
	_, err := s.pool.Exec(ctx, query, int64(marketID), int64(d.At), d.By, int64(d.Outcome))
	if err != nil {
		return fmt.Errorf("postgres: append dispute for market %d: %w", marketID, err)
	}
	return nil
}

// List returns the market's disputes in insertion order.
func (s *DisputeStore) List(ctx context.Context, marketID uint64) ([]domain.MarketDispute, error) {
	const query = `
		SELECT at, disputed_by, outcome FROM disputes
		WHERE market_id = $1 ORDER BY seq`
	rows, err := s.pool.Query(ctx, query, int64(marketID))
	if err != nil {
		return nil, fmt.Errorf("postgres: list disputes for market %d: %w", marketID, err)
	}
	defer rows.Close()

	var disputes []domain.MarketDispute
	for rows.Next() {
		var at, outcome int64
		var by string
		if err := rows.Scan(&at, &by, &outcome); err != nil {
			return nil, fmt.Errorf("postgres: scan dispute for market %d: %w", marketID, err)
		}
		disputes = append(disputes, domain.MarketDispute{
			At:      uint64(at),
			By:      by,
			Outcome: uint16(outcome),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list disputes for market %d: %w", marketID, err)
	}
	return disputes, nil
}

// Delete removes the market's whole dispute sequence.
func (s *DisputeStore) Delete(ctx context.Context, marketID uint64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM disputes WHERE market_id = $1`, int64(marketID))
	if err != nil {
		return fmt.Errorf("postgres: delete disputes for market %d: %w", marketID, err)
	}
	return nil
}
