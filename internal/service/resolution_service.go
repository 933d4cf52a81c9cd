package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openpredict/marketd/internal/domain"
)

// ResolutionService handles outcome reporting, disputing, resolution and the
// redemption of winning shares.
type ResolutionService struct {
	deps   Deps
	params domain.Params
	logger *slog.Logger
}

// NewResolutionService creates a ResolutionService.
func NewResolutionService(deps Deps, params domain.Params, logger *slog.Logger) *ResolutionService {
	return &ResolutionService{
		deps:   deps,
		params: params,
		logger: logger.With(slog.String("component", "resolution_service")),
	}
}

// Report files the first outcome report for a closed market. Until the
// reporting grace window past close has elapsed, only the designated oracle
// may report; afterwards anyone may.
func (s *ResolutionService) Report(ctx context.Context, caller string, marketID uint64, outcome uint16) error {
	m, err := s.deps.Markets.Get(ctx, marketID)
	if err != nil {
		return fmt.Errorf("resolution_service: report on %d: %w", marketID, err)
	}

	if outcome > m.Outcomes() {
		return domain.ErrOutcomeOutOfRange
	}
	if m.Report != nil {
		return domain.ErrAlreadyReported
	}

	now := s.deps.Clock.Now()
	if m.End.Open(now) {
		return domain.ErrMarketNotClosed
	}

	if s.oracleOnly(m.End, now) && caller != m.Oracle {
		return domain.ErrNotOracle
	}

	m.Report = &domain.Report{At: now.Height, By: caller, Outcome: outcome}
	m.Status = domain.MarketStatusReported
	if err := s.deps.Markets.Update(ctx, m); err != nil {
		return fmt.Errorf("resolution_service: update market %d: %w", marketID, err)
	}
	if err := s.deps.Schedule.Add(ctx, domain.ScheduleReport, now.Height, marketID); err != nil {
		return fmt.Errorf("resolution_service: schedule report window: %w", err)
	}

	s.logger.InfoContext(ctx, "market reported",
		slog.Uint64("market_id", marketID),
		slog.String("by", caller),
		slog.Int("outcome", int(outcome)),
	)
	publishEvent(ctx, s.deps.Bus, s.logger, domain.EventMarketReported, marketID, caller, &outcome)
	return nil
}

// oracleOnly reports whether the reporting grace window is still running, in
// the unit of the market end.
func (s *ResolutionService) oracleOnly(end domain.MarketEnd, now domain.ChainTime) bool {
	if end.Kind == domain.EndKindBlock {
		return now.Height <= end.Value+s.params.ReportingPeriod
	}
	return now.UnixMs <= end.Value+s.params.ReportingPeriod*domain.BlockMillis
}

// Dispute files a dispute against the current default outcome, escrowing an
// escalating bond from the caller, and moves the market's dispute-window
// bucket to the current block.
func (s *ResolutionService) Dispute(ctx context.Context, caller string, marketID uint64, outcome uint16) error {
	m, err := s.deps.Markets.Get(ctx, marketID)
	if err != nil {
		return fmt.Errorf("resolution_service: dispute %d: %w", marketID, err)
	}

	if m.Report == nil {
		return domain.ErrMarketNotReported
	}
	if outcome >= m.Outcomes() {
		return domain.ErrOutcomeOutOfRange
	}

	seq, err := s.deps.Disputes.List(ctx, marketID)
	if err != nil {
		return fmt.Errorf("resolution_service: list disputes for %d: %w", marketID, err)
	}
	count := uint16(len(seq))
	if count >= s.params.MaxDisputes {
		return domain.ErrTooManyDisputes
	}
	// Only the immediately preceding dispute is checked, not the full
	// history.
	if count > 0 && seq[count-1].Outcome == outcome {
		return domain.ErrDuplicateOutcome
	}

	bond := domain.DisputeBond(s.params, count)
	if err := s.deps.Bank.Escrow(ctx, caller, bond); err != nil {
		return fmt.Errorf("resolution_service: escrow dispute bond: %w", err)
	}

	now := s.deps.Clock.Now()

	// A newer dispute supersedes the older one's window: move the market to
	// the bucket at the current block.
	if count > 0 {
		prev := seq[count-1]
		if err := s.deps.Schedule.Remove(ctx, domain.ScheduleDispute, prev.At, marketID); err != nil {
			return fmt.Errorf("resolution_service: clear previous dispute window: %w", err)
		}
	}
	if err := s.deps.Schedule.Add(ctx, domain.ScheduleDispute, now.Height, marketID); err != nil {
		return fmt.Errorf("resolution_service: schedule dispute window: %w", err)
	}

	if err := s.deps.Disputes.Append(ctx, marketID, domain.MarketDispute{
		At:      now.Height,
		By:      caller,
		Outcome: outcome,
	}); err != nil {
		return fmt.Errorf("resolution_service: append dispute: %w", err)
	}

	if m.Status != domain.MarketStatusDisputed {
		m.Status = domain.MarketStatusDisputed
		if err := s.deps.Markets.Update(ctx, m); err != nil {
			return fmt.Errorf("resolution_service: update market %d: %w", marketID, err)
		}
	}

	s.logger.InfoContext(ctx, "market disputed",
		slog.Uint64("market_id", marketID),
		slog.String("by", caller),
		slog.Int("outcome", int(outcome)),
		slog.Uint64("bond", bond),
	)
	publishEvent(ctx, s.deps.Bus, s.logger, domain.EventMarketDisputed, marketID, caller, &outcome)
	return nil
}

// Resolve finalizes a reported or disputed market: it fixes the winning
// outcome, settles every bond, rewards correct parties from the forfeit pool,
// and destroys all losing-outcome shares. Callers are responsible for
// invoking it only from the Reported or Disputed status.
func (s *ResolutionService) Resolve(ctx context.Context, marketID uint64) error {
	m, err := s.deps.Markets.Get(ctx, marketID)
	if err != nil {
		return fmt.Errorf("resolution_service: resolve %d: %w", marketID, err)
	}
	if m.Report == nil {
		return fmt.Errorf("resolution_service: resolve %d: %w", marketID, domain.ErrMarketNotReported)
	}
	report := *m.Report

	// The validity bond is returned unconditionally; resolution does not
	// differentiate by outcome.
	if err := s.deps.Bank.Release(ctx, m.Creator, s.params.ValidityBond); err != nil {
		return fmt.Errorf("resolution_service: release validity bond: %w", err)
	}

	now := s.deps.Clock.Now()
	rec := domain.SettlementRecord{
		MarketID:   marketID,
		ResolvedAt: now.Height,
	}

	var resolved uint16
	switch m.Status {
	case domain.MarketStatusReported:
		resolved = report.Outcome
		if err := s.settleOracleBondReported(ctx, m, report, &rec); err != nil {
			return err
		}

	case domain.MarketStatusDisputed:
		resolved, err = s.settleDisputed(ctx, m, report, &rec)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("resolution_service: market %d is neither reported nor disputed", marketID)
	}

	// Losing-outcome shares are destroyed for every holder; the winning
	// outcome's shares stay redeemable.
	for i := uint16(0); i < m.Outcomes(); i++ {
		if i == resolved {
			continue
		}
		shareID := domain.OutcomeShare(marketID, i)
		holders, err := s.deps.Shares.Holders(ctx, shareID)
		if err != nil {
			return fmt.Errorf("resolution_service: list holders of %s: %w", shareID, err)
		}
		if err := s.deps.Shares.DestroyAll(ctx, shareID, holders); err != nil {
			return fmt.Errorf("resolution_service: destroy shares %s: %w", shareID, err)
		}
	}

	m.ResolvedOutcome = &resolved
	m.Status = domain.MarketStatusResolved
	if err := s.deps.Markets.Update(ctx, m); err != nil {
		return fmt.Errorf("resolution_service: update market %d: %w", marketID, err)
	}

	rec.ResolvedOutcome = resolved
	rec.ArchivedAt = time.Now().UTC()
	if s.deps.Archive != nil {
		if err := s.deps.Archive.ArchiveSettlement(ctx, rec); err != nil {
			s.logger.WarnContext(ctx, "settlement archive failed",
				slog.Uint64("market_id", marketID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "market resolved",
		slog.Uint64("market_id", marketID),
		slog.Int("outcome", int(resolved)),
	)
	publishEvent(ctx, s.deps.Bus, s.logger, domain.EventMarketResolved, marketID, "", &resolved)
	return nil
}

// settleOracleBondReported settles the oracle bond for an undisputed market:
// returned to the creator when the oracle itself reported, otherwise
// forfeited and paid to the actual reporter as a reward for covering an
// absent oracle.
func (s *ResolutionService) settleOracleBondReported(ctx context.Context, m domain.Market, report domain.Report, rec *domain.SettlementRecord) error {
	if report.By == m.Oracle {
		if err := s.deps.Bank.Release(ctx, m.Creator, s.params.OracleBond); err != nil {
			return fmt.Errorf("resolution_service: release oracle bond: %w", err)
		}
		rec.OracleBond = domain.BondSettlement{Account: m.Creator, Amount: s.params.OracleBond, Released: true}
		return nil
	}

	forfeited, err := s.deps.Bank.Forfeit(ctx, m.Creator, s.params.OracleBond)
	if err != nil {
		return fmt.Errorf("resolution_service: forfeit oracle bond: %w", err)
	}
	if err := s.deps.Bank.Deposit(ctx, report.By, forfeited); err != nil {
		return fmt.Errorf("resolution_service: reward reporter: %w", err)
	}
	rec.OracleBond = domain.BondSettlement{Account: m.Creator, Amount: forfeited, Released: false}
	return nil
}

// settleDisputed fixes the winning outcome for a disputed market (the most
// recently filed dispute wins) and settles every bond: matching claims are
// released, the rest are forfeited into a pooled penalty balance that is then
// split evenly across correct parties by floor division. The remainder is not
// redistributed; it goes to the penalty sink, as does the whole pool in the
// (derivation-impossible) case of no correct party.
func (s *ResolutionService) settleDisputed(ctx context.Context, m domain.Market, report domain.Report, rec *domain.SettlementRecord) (uint16, error) {
	seq, err := s.deps.Disputes.List(ctx, m.ID)
	if err != nil {
		return 0, fmt.Errorf("resolution_service: list disputes for %d: %w", m.ID, err)
	}
	if len(seq) == 0 {
		return 0, fmt.Errorf("resolution_service: market %d disputed with empty dispute sequence", m.ID)
	}
	resolved := seq[len(seq)-1].Outcome

	var pool uint64
	var correct []string

	if report.Outcome == resolved {
		if err := s.deps.Bank.Release(ctx, m.Creator, s.params.OracleBond); err != nil {
			return 0, fmt.Errorf("resolution_service: release oracle bond: %w", err)
		}
		rec.OracleBond = domain.BondSettlement{Account: m.Creator, Amount: s.params.OracleBond, Released: true}
	} else {
		forfeited, err := s.deps.Bank.Forfeit(ctx, m.Creator, s.params.OracleBond)
		if err != nil {
			return 0, fmt.Errorf("resolution_service: forfeit oracle bond: %w", err)
		}
		pool += forfeited
		rec.OracleBond = domain.BondSettlement{Account: m.Creator, Amount: forfeited, Released: false}
	}

	for k, d := range seq {
		bond := domain.DisputeBond(s.params, uint16(k))
		if d.Outcome == resolved {
			if err := s.deps.Bank.Release(ctx, d.By, bond); err != nil {
				return 0, fmt.Errorf("resolution_service: release dispute bond %d: %w", k, err)
			}
			correct = append(correct, d.By)
			rec.DisputeBonds = append(rec.DisputeBonds, domain.BondSettlement{Account: d.By, Amount: bond, Released: true})
		} else {
			forfeited, err := s.deps.Bank.Forfeit(ctx, d.By, bond)
			if err != nil {
				return 0, fmt.Errorf("resolution_service: forfeit dispute bond %d: %w", k, err)
			}
			pool += forfeited
			rec.DisputeBonds = append(rec.DisputeBonds, domain.BondSettlement{Account: d.By, Amount: forfeited, Released: false})
		}
	}

	rec.RewardPool = pool
	rec.CorrectParties = correct

	// The last disputer always claims the resolved outcome, so correct is
	// never empty here; the guard protects the division regardless.
	if len(correct) > 0 {
		per := pool / uint64(len(correct))
		rec.RewardPerParty = per
		for _, account := range correct {
			if err := s.deps.Bank.Deposit(ctx, account, per); err != nil {
				return 0, fmt.Errorf("resolution_service: pay reward to %q: %w", account, err)
			}
			pool -= per
		}
	}
	if pool > 0 {
		if err := s.deps.Bank.Deposit(ctx, s.params.PenaltySink, pool); err != nil {
			return 0, fmt.Errorf("resolution_service: pay penalty sink: %w", err)
		}
	}

	return resolved, nil
}

// ForceResolve clears the market's scheduling entries and resolves it
// immediately, bypassing the time-based path. Valid only from Reported or
// Disputed. Admin-only.
func (s *ResolutionService) ForceResolve(ctx context.Context, caller string, marketID uint64) error {
	ok, err := s.deps.Auth.IsAdmin(ctx, caller)
	if err != nil {
		return fmt.Errorf("resolution_service: authorize %q: %w", caller, err)
	}
	if !ok {
		return domain.ErrUnauthorized
	}

	m, err := s.deps.Markets.Get(ctx, marketID)
	if err != nil {
		return fmt.Errorf("resolution_service: force resolve %d: %w", marketID, err)
	}
	if m.Status != domain.MarketStatusReported && m.Status != domain.MarketStatusDisputed {
		return fmt.Errorf("resolution_service: force resolve %d: %w", marketID, domain.ErrMarketNotReported)
	}

	if err := clearAutoResolve(ctx, s.deps, m); err != nil {
		return fmt.Errorf("resolution_service: clear auto-resolve for %d: %w", marketID, err)
	}

	return s.Resolve(ctx, marketID)
}

// Redeem burns the caller's winning-outcome shares and pays out one unit of
// currency per share from the market's custodial account.
func (s *ResolutionService) Redeem(ctx context.Context, caller string, marketID uint64) error {
	m, err := s.deps.Markets.Get(ctx, marketID)
	if err != nil {
		return fmt.Errorf("resolution_service: redeem %d: %w", marketID, err)
	}
	if m.Status != domain.MarketStatusResolved || m.ResolvedOutcome == nil {
		return domain.ErrMarketNotResolved
	}

	shareID := domain.OutcomeShare(marketID, *m.ResolvedOutcome)
	winning, err := s.deps.Shares.Balance(ctx, shareID, caller)
	if err != nil {
		return fmt.Errorf("resolution_service: winning balance of %q: %w", caller, err)
	}
	if winning == 0 {
		return nil
	}

	account := domain.MarketAccount(marketID)
	reserve, err := s.deps.Bank.FreeBalance(ctx, account)
	if err != nil {
		return fmt.Errorf("resolution_service: market account balance: %w", err)
	}
	if reserve < winning {
		// Every winning share must be backed 1:1; anything less is an
		// internal accounting fault.
		return domain.ErrInsufficientMarketFunds
	}

	if err := s.deps.Shares.Burn(ctx, shareID, caller, winning); err != nil {
		return fmt.Errorf("resolution_service: burn winning shares: %w", err)
	}
	if err := s.deps.Bank.Transfer(ctx, account, caller, winning); err != nil {
		return fmt.Errorf("resolution_service: pay out winnings: %w", err)
	}

	s.logger.InfoContext(ctx, "shares redeemed",
		slog.Uint64("market_id", marketID),
		slog.String("account", caller),
		slog.Uint64("amount", winning),
	)
	return nil
}

// clearAutoResolve removes the market from whichever scheduling-index bucket
// currently holds it.
func clearAutoResolve(ctx context.Context, deps Deps, m domain.Market) error {
	switch m.Status {
	case domain.MarketStatusReported:
		if m.Report == nil {
			return domain.ErrMarketNotReported
		}
		return deps.Schedule.Remove(ctx, domain.ScheduleReport, m.Report.At, m.ID)
	case domain.MarketStatusDisputed:
		seq, err := deps.Disputes.List(ctx, m.ID)
		if err != nil {
			return err
		}
		if len(seq) == 0 {
			return nil
		}
		return deps.Schedule.Remove(ctx, domain.ScheduleDispute, seq[len(seq)-1].At, m.ID)
	}
	return nil
}
