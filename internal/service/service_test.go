package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpredict/marketd/internal/chain"
	"github.com/openpredict/marketd/internal/domain"
	"github.com/openpredict/marketd/internal/ledger"
	"github.com/openpredict/marketd/internal/store/memory"
)

// manualClock is a test clock advanced explicitly, one block per
// domain.BlockMillis.
type manualClock struct {
	height uint64
}

func (c *manualClock) Now() domain.ChainTime {
	return domain.ChainTime{
		Height: c.height,
		UnixMs: c.height * domain.BlockMillis,
	}
}

func (c *manualClock) advanceTo(height uint64) {
	c.height = height
}

func testParams() domain.Params {
	return domain.Params{
		MaxCategories:   8,
		MaxDisputes:     6,
		ReportingPeriod: 10,
		DisputePeriod:   10,
		AdvisoryBond:    25,
		OracleBond:      50,
		ValidityBond:    50,
		DisputeBond:     100,
		DisputeFactor:   25,
		PenaltySink:     "treasury",
	}
}

// fixture bundles the full in-memory environment the services run against.
type fixture struct {
	deps   Deps
	params domain.Params
	clock  *manualClock
	bank   *ledger.Bank
	shares *ledger.ShareBank

	markets    *MarketService
	trading    *TradingService
	resolution *ResolutionService
	scheduler  *Scheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &manualClock{height: 1}
	bank := ledger.NewBank()
	shares := ledger.NewShareBank()

	deps := Deps{
		Markets:  memory.NewMarketStore(),
		Disputes: memory.NewDisputeStore(),
		Schedule: memory.NewScheduleStore(),
		Pools:    memory.NewPoolStore(),
		Bank:     bank,
		Shares:   shares,
		Swaps:    ledger.NewSwapRegistry(),
		Auth:     chain.NewStaticAuthorizer([]string{"admin"}),
		Clock:    clock,
	}

	params := testParams()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolution := NewResolutionService(deps, params, logger)

	return &fixture{
		deps:       deps,
		params:     params,
		clock:      clock,
		bank:       bank,
		shares:     shares,
		markets:    NewMarketService(deps, params, logger),
		trading:    NewTradingService(deps, logger),
		resolution: resolution,
		scheduler:  NewScheduler(deps, resolution, params, 0, logger),
	}
}

// createMarket funds the creator and registers a two-outcome market ending at
// block 100.
func (f *fixture) createMarket(t *testing.T, mode domain.CreationMode) uint64 {
	t.Helper()

	f.bank.Mint("alice", 1000)
	id, err := f.markets.Create(
		context.Background(),
		"alice", "oracle",
		domain.EndAtBlock(100),
		[]byte("meta"),
		mode,
		2,
	)
	require.NoError(t, err)
	return id
}

// free returns the free balance, failing the test on ledger error.
func (f *fixture) free(t *testing.T, account string) uint64 {
	t.Helper()
	bal, err := f.bank.FreeBalance(context.Background(), account)
	require.NoError(t, err)
	return bal
}

// escrowed returns the escrowed balance.
func (f *fixture) escrowed(t *testing.T, account string) uint64 {
	t.Helper()
	bal, err := f.bank.EscrowedBalance(context.Background(), account)
	require.NoError(t, err)
	return bal
}

// shareBalance returns the account's balance of one outcome share.
func (f *fixture) shareBalance(t *testing.T, marketID uint64, outcome uint16, account string) uint64 {
	t.Helper()
	bal, err := f.shares.Balance(context.Background(), domain.OutcomeShare(marketID, outcome), account)
	require.NoError(t, err)
	return bal
}

// status returns the market's current status.
func (f *fixture) status(t *testing.T, marketID uint64) domain.MarketStatus {
	t.Helper()
	m, err := f.deps.Markets.Get(context.Background(), marketID)
	require.NoError(t, err)
	return m.Status
}
