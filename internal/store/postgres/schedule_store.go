package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openpredict/marketd/internal/domain"
)

// ScheduleStore implements domain.ScheduleStore using PostgreSQL.
type ScheduleStore struct {
	pool *pgxpool.Pool
}

// NewScheduleStore creates a new ScheduleStore.
func NewScheduleStore(pool *pgxpool.Pool) *ScheduleStore {
	return &ScheduleStore{pool: pool}
}

// Add places a market id into the bucket at height.
func (s *ScheduleStore) Add(ctx context.Context, kind domain.ScheduleKind, height, marketID uint64) error {
	const query = `
		INSERT INTO schedule (kind, height, market_id)
		VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
	_, err := s.pool.Exec(ctx, query, string(kind), int64(height), int64(marketID))
	if err != nil {
		return fmt.Errorf("postgres: schedule market %d at height %d: %w", marketID, height, err)
	}
	return nil
}

// Remove deletes a single market id from a bucket.
func (s *ScheduleStore) Remove(ctx context.Context, kind domain.ScheduleKind, height, marketID uint64) error {
	const query = `
		DELETE FROM schedule WHERE kind = $1 AND height = $2 AND market_id = $3`
	_, err := s.pool.Exec(ctx, query, string(kind), int64(height), int64(marketID))
	if err != nil {
		return fmt.Errorf("postgres: unschedule market %d at height %d: %w", marketID, height, err)
	}
	return nil
}

// Take drains every bucket at height <= upTo and returns the ids they held.
func (s *ScheduleStore) Take(ctx context.Context, kind domain.ScheduleKind, upTo uint64) ([]uint64, error) {
	const query = `
		DELETE FROM schedule WHERE kind = $1 AND height <= $2
		RETURNING market_id`
	rows, err := s.pool.Query(ctx, query, string(kind), int64(upTo))
	if err != nil {
		return nil, fmt.Errorf("postgres: take schedule buckets %s/<=%d: %w", kind, upTo, err)
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: scan schedule buckets %s/<=%d: %w", kind, upTo, err)
		}
		ids = append(ids, uint64(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: take schedule buckets %s/<=%d: %w", kind, upTo, err)
	}
	return ids, nil
}
