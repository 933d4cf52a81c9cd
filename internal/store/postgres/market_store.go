package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openpredict/marketd/internal/domain"
)

// MarketStore implements domain.MarketStore using PostgreSQL.
type MarketStore struct {
	pool *pgxpool.Pool
}

// NewMarketStore creates a new MarketStore.
func NewMarketStore(pool *pgxpool.Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

// NextID atomically advances the monotonic counter and returns the id it held.
func (s *MarketStore) NextID(ctx context.Context) (uint64, error) {
	const query = `
		UPDATE market_counter SET next_id = next_id + 1
		WHERE singleton RETURNING next_id - 1`
	var id int64
	if err := s.pool.QueryRow(ctx, query).Scan(&id); err != nil {
		return 0, fmt.Errorf("postgres: next market id: %w", err)
	}
	return uint64(id), nil
}

// Insert stores a new market record.
func (s *MarketStore) Insert(ctx context.Context, m domain.Market) error {
	const query = `
		INSERT INTO markets (id, creator, creation, creator_fee, oracle, end_kind, end_value,
			metadata, market_type, categories, status, report_at, report_by, report_outcome, resolved_outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := s.pool.Exec(ctx, query, marketArgs(m)...)
	if err != nil {
		return fmt.Errorf("postgres: insert market %d: %w", m.ID, err)
	}
	return nil
}

// Get returns the market with the given id.
func (s *MarketStore) Get(ctx context.Context, id uint64) (domain.Market, error) {
	const query = `
		SELECT id, creator, creation, creator_fee, oracle, end_kind, end_value,
			metadata, market_type, categories, status, report_at, report_by, report_outcome, resolved_outcome
		FROM markets WHERE id = $1`
	m, err := scanMarket(s.pool.QueryRow(ctx, query, int64(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Market{}, domain.ErrMarketNotFound
		}
		return domain.Market{}, fmt.Errorf("postgres: get market %d: %w", id, err)
	}
	return m, nil
}

// Update overwrites an existing market record.
func (s *MarketStore) Update(ctx context.Context, m domain.Market) error {
	const query = `
		UPDATE markets SET
			creator = $2, creation = $3, creator_fee = $4, oracle = $5, end_kind = $6,
			end_value = $7, metadata = $8, market_type = $9, categories = $10, status = $11,
			report_at = $12, report_by = $13, report_outcome = $14, resolved_outcome = $15,
			updated_at = NOW()
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, marketArgs(m)...)
	if err != nil {
		return fmt.Errorf("postgres: update market %d: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMarketNotFound
	}
	return nil
}

// Delete removes a market record.
func (s *MarketStore) Delete(ctx context.Context, id uint64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM markets WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("postgres: delete market %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMarketNotFound
	}
	return nil
}

func marketArgs(m domain.Market) []any {
	var reportAt, reportOutcome, resolvedOutcome *int64
	var reportBy *string
	if m.Report != nil {
		at := int64(m.Report.At)
		outcome := int64(m.Report.Outcome)
		reportAt, reportBy, reportOutcome = &at, &m.Report.By, &outcome
	}
	if m.ResolvedOutcome != nil {
		outcome := int64(*m.ResolvedOutcome)
		resolvedOutcome = &outcome
	}
	return []any{
		int64(m.ID), m.Creator, string(m.Creation), int64(m.CreatorFee), m.Oracle,
		string(m.End.Kind), int64(m.End.Value), m.Metadata, string(m.MarketType),
		int32(m.Categories), string(m.Status), reportAt, reportBy, reportOutcome, resolvedOutcome,
	}
}

func scanMarket(row pgx.Row) (domain.Market, error) {
	var (
		m               domain.Market
		id, creatorFee  int64
		endValue        int64
		endKind         string
		creation        string
		marketType      string
		categories      int32
		status          string
		reportAt        *int64
		reportBy        *string
		reportOutcome   *int64
		resolvedOutcome *int64
	)
	err := row.Scan(&id, &m.Creator, &creation, &creatorFee, &m.Oracle, &endKind, &endValue,
		&m.Metadata, &marketType, &categories, &status, &reportAt, &reportBy, &reportOutcome, &resolvedOutcome)
	if err != nil {
		return domain.Market{}, err
	}
	m.ID = uint64(id)
	m.Creation = domain.CreationMode(creation)
	m.CreatorFee = uint64(creatorFee)
	m.End = domain.MarketEnd{Kind: domain.EndKind(endKind), Value: uint64(endValue)}
	m.MarketType = domain.MarketType(marketType)
	m.Categories = uint16(categories)
	m.Status = domain.MarketStatus(status)
	if reportAt != nil && reportBy != nil && reportOutcome != nil {
		m.Report = &domain.Report{
			At:      uint64(*reportAt),
			By:      *reportBy,
			Outcome: uint16(*reportOutcome),
		}
	}
	if resolvedOutcome != nil {
		outcome := uint16(*resolvedOutcome)
		m.ResolvedOutcome = &outcome
	}
	return m, nil
}
