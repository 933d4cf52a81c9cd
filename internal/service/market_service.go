package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openpredict/marketd/internal/domain"
)

// MarketService is the market registry: it owns market creation and the
// administrative lifecycle operations (approve, reject, cancel, destroy,
// force-close).
type MarketService struct {
	deps   Deps
	params domain.Params
	logger *slog.Logger
}

// NewMarketService creates a MarketService.
func NewMarketService(deps Deps, params domain.Params, logger *slog.Logger) *MarketService {
	return &MarketService{
		deps:   deps,
		params: params,
		logger: logger.With(slog.String("component", "market_service")),
	}
}

// Create registers a new categorical market and escrows the creation bond
// from the creator. Permissionless markets start active; advised markets
// start proposed, awaiting approval. Escrow failure aborts creation entirely.
func (s *MarketService) Create(
	ctx context.Context,
	creator, oracle string,
	end domain.MarketEnd,
	metadata []byte,
	mode domain.CreationMode,
	categories uint16,
) (uint64, error) {
	if categories > s.params.MaxCategories {
		return 0, domain.ErrInvalidCategoryCount
	}

	// The end must be strictly in the future in its own unit.
	if !end.Open(s.deps.Clock.Now()) {
		return 0, domain.ErrEndTooSoon
	}

	bond := s.params.CreationBond(mode)
	if err := s.deps.Bank.Escrow(ctx, creator, bond); err != nil {
		return 0, fmt.Errorf("market_service: escrow creation bond: %w", err)
	}

	status := domain.MarketStatusActive
	if mode == domain.CreationAdvised {
		status = domain.MarketStatusProposed
	}

	id, err := s.deps.Markets.NextID(ctx)
	if err != nil {
		s.refundCreationBond(ctx, creator, bond)
		return 0, fmt.Errorf("market_service: next id: %w", err)
	}

	market := domain.Market{
		ID:         id,
		Creator:    creator,
		Creation:   mode,
		CreatorFee: 0,
		Oracle:     oracle,
		End:        end,
		Metadata:   metadata,
		MarketType: domain.MarketTypeCategorical,
		Categories: categories,
		Status:     status,
	}
	if err := s.deps.Markets.Insert(ctx, market); err != nil {
		s.refundCreationBond(ctx, creator, bond)
		return 0, fmt.Errorf("market_service: insert market %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "market created",
		slog.Uint64("market_id", id),
		slog.String("creator", creator),
		slog.String("mode", string(mode)),
		slog.Uint64("bond", bond),
	)
	publishEvent(ctx, s.deps.Bus, s.logger, domain.EventMarketCreated, id, creator, nil)

	return id, nil
}

// refundCreationBond undoes the escrow when creation fails after it. A failed
// refund leaves the bond escrowed, so it must not pass silently.
func (s *MarketService) refundCreationBond(ctx context.Context, creator string, bond uint64) {
	if err := s.deps.Bank.Release(ctx, creator, bond); err != nil {
		s.logger.WarnContext(ctx, "creation bond refund failed",
			slog.String("creator", creator),
			slog.Uint64("bond", bond),
			slog.String("error", err.Error()),
		)
	}
}

// Approve moves a proposed market to active and returns the advisory bond to
// the creator. Admin-only.
func (s *MarketService) Approve(ctx context.Context, caller string, id uint64) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}

	m, err := s.deps.Markets.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("market_service: approve %d: %w", id, err)
	}
	if m.Status != domain.MarketStatusProposed {
		return domain.ErrMarketNotProposed
	}

	if err := s.deps.Bank.Release(ctx, m.Creator, s.params.AdvisoryBond); err != nil {
		return fmt.Errorf("market_service: release advisory bond: %w", err)
	}

	m.Status = domain.MarketStatusActive
	if err := s.deps.Markets.Update(ctx, m); err != nil {
		return fmt.Errorf("market_service: update market %d: %w", id, err)
	}

	publishEvent(ctx, s.deps.Bus, s.logger, domain.EventMarketApproved, id, caller, nil)
	return nil
}

// Reject forfeits the advisory bond to the penalty sink and deletes the
// market record. Admin-only.
func (s *MarketService) Reject(ctx context.Context, caller string, id uint64) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}

	m, err := s.deps.Markets.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("market_service: reject %d: %w", id, err)
	}

	forfeited, err := s.deps.Bank.Forfeit(ctx, m.Creator, s.params.AdvisoryBond)
	if err != nil {
		return fmt.Errorf("market_service: forfeit advisory bond: %w", err)
	}
	if err := s.deps.Bank.Deposit(ctx, s.params.PenaltySink, forfeited); err != nil {
		return fmt.Errorf("market_service: pay penalty sink: %w", err)
	}

	if err := s.deps.Markets.Delete(ctx, id); err != nil {
		return fmt.Errorf("market_service: delete market %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "market rejected",
		slog.Uint64("market_id", id),
		slog.Uint64("forfeited", forfeited),
	)
	publishEvent(ctx, s.deps.Bus, s.logger, domain.EventMarketRejected, id, caller, nil)
	return nil
}

// CancelPending lets the creator withdraw a market that is still awaiting
// approval, returning the advisory bond.
func (s *MarketService) CancelPending(ctx context.Context, caller string, id uint64) error {
	m, err := s.deps.Markets.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("market_service: cancel %d: %w", id, err)
	}
	if m.Creator != caller {
		return domain.ErrNotCreator
	}
	if m.Status != domain.MarketStatusProposed {
		return domain.ErrMarketNotProposed
	}

	if err := s.deps.Bank.Release(ctx, m.Creator, s.params.AdvisoryBond); err != nil {
		return fmt.Errorf("market_service: release advisory bond: %w", err)
	}
	if err := s.deps.Markets.Delete(ctx, id); err != nil {
		return fmt.Errorf("market_service: delete market %d: %w", id, err)
	}

	publishEvent(ctx, s.deps.Bus, s.logger, domain.EventMarketCancelled, id, caller, nil)
	return nil
}

// Destroy unconditionally removes a market: scheduling entries, the dispute
// sequence, the pool mapping, the record itself, and every outstanding share
// of every outcome. Bonds still escrowed at this point are irrecoverably
// discarded (known limitation). Admin-only.
func (s *MarketService) Destroy(ctx context.Context, caller string, id uint64) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}

	m, err := s.deps.Markets.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("market_service: destroy %d: %w", id, err)
	}

	if err := clearAutoResolve(ctx, s.deps, m); err != nil {
		return fmt.Errorf("market_service: clear auto-resolve for %d: %w", id, err)
	}

	if err := s.deps.Markets.Delete(ctx, id); err != nil {
		return fmt.Errorf("market_service: delete market %d: %w", id, err)
	}
	if err := s.deps.Disputes.Delete(ctx, id); err != nil {
		return fmt.Errorf("market_service: delete disputes for %d: %w", id, err)
	}
	if err := s.deps.Pools.Delete(ctx, id); err != nil {
		return fmt.Errorf("market_service: delete pool for %d: %w", id, err)
	}

	for i := uint16(0); i < m.Outcomes(); i++ {
		shareID := domain.OutcomeShare(id, i)
		holders, err := s.deps.Shares.Holders(ctx, shareID)
		if err != nil {
			return fmt.Errorf("market_service: list holders of %s: %w", shareID, err)
		}
		if err := s.deps.Shares.DestroyAll(ctx, shareID, holders); err != nil {
			return fmt.Errorf("market_service: destroy shares %s: %w", shareID, err)
		}
	}

	s.logger.InfoContext(ctx, "market destroyed", slog.Uint64("market_id", id))
	return nil
}

// ForceClose sets the market end to the current time in the end's own unit,
// closing trading immediately. Admin-only.
func (s *MarketService) ForceClose(ctx context.Context, caller string, id uint64) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}

	m, err := s.deps.Markets.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("market_service: force close %d: %w", id, err)
	}

	now := s.deps.Clock.Now()
	if m.End.Kind == domain.EndKindBlock {
		m.End = domain.EndAtBlock(now.Height)
	} else {
		m.End = domain.EndAtTimestamp(now.UnixMs)
	}

	if err := s.deps.Markets.Update(ctx, m); err != nil {
		return fmt.Errorf("market_service: update market %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "market force-closed", slog.Uint64("market_id", id))
	return nil
}

// Get returns the market with the given id.
func (s *MarketService) Get(ctx context.Context, id uint64) (domain.Market, error) {
	m, err := s.deps.Markets.Get(ctx, id)
	if err != nil {
		return domain.Market{}, fmt.Errorf("market_service: get %d: %w", id, err)
	}
	return m, nil
}

func (s *MarketService) requireAdmin(ctx context.Context, caller string) error {
	ok, err := s.deps.Auth.IsAdmin(ctx, caller)
	if err != nil {
		return fmt.Errorf("market_service: authorize %q: %w", caller, err)
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}
