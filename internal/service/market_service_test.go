package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpredict/marketd/internal/domain"
)

func TestCreatePermissionlessEscrowsValidityAndOracleBond(t *testing.T) {
	f := newFixture(t)

	id := f.createMarket(t, domain.CreationPermissionless)

	require.Equal(t, uint64(0), id)
	require.Equal(t, domain.MarketStatusActive, f.status(t, id))
	// ValidityBond (50) + OracleBond (50).
	require.Equal(t, uint64(100), f.escrowed(t, "alice"))
	require.Equal(t, uint64(900), f.free(t, "alice"))
}

func TestCreateAdvisedEscrowsAdvisoryAndOracleBond(t *testing.T) {
	f := newFixture(t)

	id := f.createMarket(t, domain.CreationAdvised)

	require.Equal(t, domain.MarketStatusProposed, f.status(t, id))
	// AdvisoryBond (25) + OracleBond (50).
	require.Equal(t, uint64(75), f.escrowed(t, "alice"))
}

func TestCreateRejectsTooManyCategories(t *testing.T) {
	f := newFixture(t)
	f.bank.Mint("alice", 1000)

	_, err := f.markets.Create(
		context.Background(),
		"alice", "oracle",
		domain.EndAtBlock(100),
		nil,
		domain.CreationPermissionless,
		9,
	)
	require.ErrorIs(t, err, domain.ErrInvalidCategoryCount)
}

func TestCreateRejectsPastEnd(t *testing.T) {
	f := newFixture(t)
	f.bank.Mint("alice", 1000)
	f.clock.advanceTo(100)

	// End equal to the current block is already closed.
	_, err := f.markets.Create(
		context.Background(),
		"alice", "oracle",
		domain.EndAtBlock(100),
		nil,
		domain.CreationPermissionless,
		2,
	)
	require.ErrorIs(t, err, domain.ErrEndTooSoon)

	_, err = f.markets.Create(
		context.Background(),
		"alice", "oracle",
		domain.EndAtTimestamp(f.clock.Now().UnixMs),
		nil,
		domain.CreationPermissionless,
		2,
	)
	require.ErrorIs(t, err, domain.ErrEndTooSoon)
}

func TestCreateFailsWithoutBondFunds(t *testing.T) {
	f := newFixture(t)
	f.bank.Mint("poor", 99)

	_, err := f.markets.Create(
		context.Background(),
		"poor", "oracle",
		domain.EndAtBlock(100),
		nil,
		domain.CreationPermissionless,
		2,
	)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	require.Equal(t, uint64(99), f.free(t, "poor"))
}

// insertFailStore rejects every Insert so the compensating refund path runs.
type insertFailStore struct {
	domain.MarketStore
}

func (insertFailStore) Insert(ctx context.Context, m domain.Market) error {
	return errors.New("insert refused")
}

func TestCreateRefundsBondWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	deps := f.deps
	deps.Markets = insertFailStore{MarketStore: deps.Markets}
	svc := NewMarketService(deps, f.params, slog.New(slog.NewTextHandler(io.Discard, nil)))

	f.bank.Mint("alice", 1000)
	_, err := svc.Create(
		context.Background(),
		"alice", "oracle",
		domain.EndAtBlock(100),
		[]byte("meta"),
		domain.CreationPermissionless,
		2,
	)
	require.Error(t, err)
	require.Equal(t, uint64(1000), f.free(t, "alice"))
	require.Zero(t, f.escrowed(t, "alice"))
}

func TestMarketIDsAreSequential(t *testing.T) {
	f := newFixture(t)

	first := f.createMarket(t, domain.CreationPermissionless)
	second := f.createMarket(t, domain.CreationPermissionless)

	require.Equal(t, first+1, second)
}

func TestApproveActivatesAndReturnsAdvisoryBond(t *testing.T) {
	f := newFixture(t)
	id := f.createMarket(t, domain.CreationAdvised)

	require.NoError(t, f.markets.Approve(context.Background(), "admin", id))

	require.Equal(t, domain.MarketStatusActive, f.status(t, id))
	// Only the oracle bond (50) stays escrowed.
	require.Equal(t, uint64(50), f.escrowed(t, "alice"))
	require.Equal(t, uint64(950), f.free(t, "alice"))
}

func TestApproveRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	id := f.createMarket(t, domain.CreationAdvised)

	err := f.markets.Approve(context.Background(), "mallory", id)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestApproveRejectsNonProposedMarket(t *testing.T) {
	f := newFixture(t)
	id := f.createMarket(t, domain.CreationPermissionless)

	err := f.markets.Approve(context.Background(), "admin", id)
	require.ErrorIs(t, err, domain.ErrMarketNotProposed)
}

func TestRejectForfeitsAdvisoryBondToPenaltySink(t *testing.T) {
	f := newFixture(t)
	id := f.createMarket(t, domain.CreationAdvised)

	require.NoError(t, f.markets.Reject(context.Background(), "admin", id))

	_, err := f.deps.Markets.Get(context.Background(), id)
	require.ErrorIs(t, err, domain.ErrMarketNotFound)
	require.Equal(t, uint64(25), f.free(t, "treasury"))
	// The oracle bond remains escrowed; only the advisory bond is forfeited.
	require.Equal(t, uint64(50), f.escrowed(t, "alice"))
}

func TestCancelPendingReturnsBondAndDeletes(t *testing.T) {
	f := newFixture(t)
	id := f.createMarket(t, domain.CreationAdvised)

	require.NoError(t, f.markets.CancelPending(context.Background(), "alice", id))

	_, err := f.deps.Markets.Get(context.Background(), id)
	require.ErrorIs(t, err, domain.ErrMarketNotFound)
	require.Equal(t, uint64(50), f.escrowed(t, "alice"))
}

func TestCancelPendingRequiresCreator(t *testing.T) {
	f := newFixture(t)
	id := f.createMarket(t, domain.CreationAdvised)

	err := f.markets.CancelPending(context.Background(), "bob", id)
	require.ErrorIs(t, err, domain.ErrNotCreator)
}

func TestCancelPendingRejectsActiveMarket(t *testing.T) {
	f := newFixture(t)
	id := f.createMarket(t, domain.CreationPermissionless)

	err := f.markets.CancelPending(context.Background(), "alice", id)
	require.ErrorIs(t, err, domain.ErrMarketNotProposed)
}

func TestDestroyRemovesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createMarket(t, domain.CreationPermissionless)

	f.bank.Mint("bob", 100)
	require.NoError(t, f.trading.BuyCompleteSet(ctx, "bob", id, 40))

	require.NoError(t, f.markets.Destroy(ctx, "admin", id))

	_, err := f.deps.Markets.Get(ctx, id)
	require.ErrorIs(t, err, domain.ErrMarketNotFound)
	require.Equal(t, uint64(0), f.shareBalance(t, id, 0, "bob"))
	require.Equal(t, uint64(0), f.shareBalance(t, id, 1, "bob"))
}

func TestForceCloseStopsTrading(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createMarket(t, domain.CreationPermissionless)
	f.bank.Mint("bob", 100)

	require.NoError(t, f.markets.ForceClose(ctx, "admin", id))

	err := f.trading.BuyCompleteSet(ctx, "bob", id, 10)
	require.ErrorIs(t, err, domain.ErrMarketNotActive)
}
