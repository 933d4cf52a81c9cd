package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openpredict/marketd/internal/domain"
)

// BaseAsset is the currency asset included ahead of the outcome shares when a
// swap pool is deployed.
const BaseAsset = "currency/base"

// TradingService guards the complete-set operations with the trading gate and
// delegates asset mutation to the external ledgers.
type TradingService struct {
	deps   Deps
	logger *slog.Logger
}

// NewTradingService creates a TradingService.
func NewTradingService(deps Deps, logger *slog.Logger) *TradingService {
	return &TradingService{
		deps:   deps,
		logger: logger.With(slog.String("component", "trading_service")),
	}
}

// BuyCompleteSet escrows amount of currency into the market's custodial
// account and mints amount of every outcome's share to the buyer. This is the
// only way new shares come into existence.
func (s *TradingService) BuyCompleteSet(ctx context.Context, buyer string, marketID, amount uint64) error {
	free, err := s.deps.Bank.FreeBalance(ctx, buyer)
	if err != nil {
		return fmt.Errorf("trading_service: free balance of %q: %w", buyer, err)
	}
	if free < amount {
		return domain.ErrInsufficientFunds
	}

	m, err := s.deps.Markets.Get(ctx, marketID)
	if err != nil {
		return fmt.Errorf("trading_service: buy set for %d: %w", marketID, err)
	}
	if !m.End.Open(s.deps.Clock.Now()) {
		return domain.ErrMarketNotActive
	}

	account := domain.MarketAccount(marketID)
	if err := s.deps.Bank.Transfer(ctx, buyer, account, amount); err != nil {
		return fmt.Errorf("trading_service: fund market account: %w", err)
	}

	for i := uint16(0); i < m.Outcomes(); i++ {
		if err := s.deps.Shares.Mint(ctx, domain.OutcomeShare(marketID, i), buyer, amount); err != nil {
			return fmt.Errorf("trading_service: mint outcome %d: %w", i, err)
		}
	}

	publishEvent(ctx, s.deps.Bus, s.logger, domain.EventBoughtCompleteSet, marketID, buyer, nil)
	return nil
}

// SellCompleteSet burns amount of every outcome's share from the seller and
// pays back the matching currency from the market's custodial account. The
// seller's balance of every outcome is validated before any share is burned,
// so a late failure cannot leave a partially burned set.
func (s *TradingService) SellCompleteSet(ctx context.Context, seller string, marketID, amount uint64) error {
	m, err := s.deps.Markets.Get(ctx, marketID)
	if err != nil {
		return fmt.Errorf("trading_service: sell set for %d: %w", marketID, err)
	}
	if !m.End.Open(s.deps.Clock.Now()) {
		return domain.ErrMarketNotActive
	}

	account := domain.MarketAccount(marketID)
	reserve, err := s.deps.Bank.FreeBalance(ctx, account)
	if err != nil {
		return fmt.Errorf("trading_service: market account balance: %w", err)
	}
	if reserve < amount {
		// Outstanding sets are always fully backed; this is an accounting
		// fault, not a user error.
		return domain.ErrInsufficientMarketFunds
	}

	for i := uint16(0); i < m.Outcomes(); i++ {
		bal, err := s.deps.Shares.Balance(ctx, domain.OutcomeShare(marketID, i), seller)
		if err != nil {
			return fmt.Errorf("trading_service: balance of outcome %d: %w", i, err)
		}
		if bal < amount {
			return domain.ErrInsufficientShares
		}
	}

	// Second pass: the whole set was verified above, mutate now.
	for i := uint16(0); i < m.Outcomes(); i++ {
		if err := s.deps.Shares.Burn(ctx, domain.OutcomeShare(marketID, i), seller, amount); err != nil {
			return fmt.Errorf("trading_service: burn outcome %d: %w", i, err)
		}
	}

	if err := s.deps.Bank.Transfer(ctx, account, seller, amount); err != nil {
		return fmt.Errorf("trading_service: pay seller: %w", err)
	}

	publishEvent(ctx, s.deps.Bus, s.logger, domain.EventSoldCompleteSet, marketID, seller, nil)
	return nil
}

// DeployPool creates the single canonical swap pool for an active market over
// the base asset and every outcome share, and records its id.
func (s *TradingService) DeployPool(ctx context.Context, creator string, marketID uint64, weights []uint64) (uint64, error) {
	m, err := s.deps.Markets.Get(ctx, marketID)
	if err != nil {
		return 0, fmt.Errorf("trading_service: deploy pool for %d: %w", marketID, err)
	}
	if m.Status != domain.MarketStatusActive {
		return 0, domain.ErrMarketNotActive
	}

	if _, exists, err := s.deps.Pools.Get(ctx, marketID); err != nil {
		return 0, fmt.Errorf("trading_service: pool lookup for %d: %w", marketID, err)
	} else if exists {
		return 0, domain.ErrPoolExists
	}

	assets := make([]string, 0, int(m.Outcomes())+1)
	assets = append(assets, BaseAsset)
	for i := uint16(0); i < m.Outcomes(); i++ {
		assets = append(assets, domain.OutcomeShare(marketID, i).String())
	}

	poolID, err := s.deps.Swaps.CreatePool(ctx, creator, assets, weights)
	if err != nil {
		return 0, fmt.Errorf("trading_service: create pool: %w", err)
	}
	if err := s.deps.Pools.Set(ctx, marketID, poolID); err != nil {
		return 0, fmt.Errorf("trading_service: record pool %d: %w", poolID, err)
	}

	s.logger.InfoContext(ctx, "swap pool deployed",
		slog.Uint64("market_id", marketID),
		slog.Uint64("pool_id", poolID),
	)
	return poolID, nil
}
