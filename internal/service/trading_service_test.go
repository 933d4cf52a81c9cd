package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpredict/marketd/internal/domain"
)

func TestBuyCompleteSetMintsEveryOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createMarket(t, domain.CreationPermissionless)
	f.bank.Mint("bob", 100)

	require.NoError(t, f.trading.BuyCompleteSet(ctx, "bob", id, 40))

	require.Equal(t, uint64(60), f.free(t, "bob"))
	require.Equal(t, uint64(40), f.free(t, domain.MarketAccount(id)))
	require.Equal(t, uint64(40), f.shareBalance(t, id, 0, "bob"))
	require.Equal(t, uint64(40), f.shareBalance(t, id, 1, "bob"))
}

func TestBuyCompleteSetRequiresFunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createMarket(t, domain.CreationPermissionless)
	f.bank.Mint("bob", 39)

	err := f.trading.BuyCompleteSet(ctx, "bob", id, 40)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	require.Equal(t, uint64(0), f.shareBalance(t, id, 0, "bob"))
}

func TestBuyCompleteSetRejectsClosedMarket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createMarket(t, domain.CreationPermissionless)
	f.bank.Mint("bob", 100)
	f.clock.advanceTo(100)

	err := f.trading.BuyCompleteSet(ctx, "bob", id, 10)
	require.ErrorIs(t, err, domain.ErrMarketNotActive)
}

func TestSellCompleteSetRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createMarket(t, domain.CreationPermissionless)
	f.bank.Mint("bob", 100)

	require.NoError(t, f.trading.BuyCompleteSet(ctx, "bob", id, 40))
	require.NoError(t, f.trading.SellCompleteSet(ctx, "bob", id, 40))

	require.Equal(t, uint64(100), f.free(t, "bob"))
	require.Equal(t, uint64(0), f.free(t, domain.MarketAccount(id)))
	require.Equal(t, uint64(0), f.shareBalance(t, id, 0, "bob"))
	require.Equal(t, uint64(0), f.shareBalance(t, id, 1, "bob"))
}

func TestSellCompleteSetRequiresFullSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createMarket(t, domain.CreationPermissionless)
	f.bank.Mint("bob", 100)
	require.NoError(t, f.trading.BuyCompleteSet(ctx, "bob", id, 40))

	// Burn one side of the set; the seller no longer holds a complete set.
	require.NoError(t, f.shares.Burn(ctx, domain.OutcomeShare(id, 1), "bob", 10))

	err := f.trading.SellCompleteSet(ctx, "bob", id, 40)
	require.ErrorIs(t, err, domain.ErrInsufficientShares)
	// The first outcome's shares are untouched by the failed sell.
	require.Equal(t, uint64(40), f.shareBalance(t, id, 0, "bob"))
}

func TestSellCompleteSetDetectsUnderfundedMarketAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createMarket(t, domain.CreationPermissionless)
	f.bank.Mint("bob", 100)
	require.NoError(t, f.trading.BuyCompleteSet(ctx, "bob", id, 40))

	// Corrupt the custodial account to simulate an accounting fault.
	require.NoError(t, f.bank.Transfer(ctx, domain.MarketAccount(id), "thief", 20))

	err := f.trading.SellCompleteSet(ctx, "bob", id, 40)
	require.ErrorIs(t, err, domain.ErrInsufficientMarketFunds)
}

func TestDeployPoolRecordsCanonicalPool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createMarket(t, domain.CreationPermissionless)

	poolID, err := f.trading.DeployPool(ctx, "alice", id, nil)
	require.NoError(t, err)

	got, exists, err := f.deps.Pools.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, poolID, got)
}

func TestDeployPoolRejectsSecondPool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createMarket(t, domain.CreationPermissionless)

	_, err := f.trading.DeployPool(ctx, "alice", id, nil)
	require.NoError(t, err)

	_, err = f.trading.DeployPool(ctx, "alice", id, nil)
	require.ErrorIs(t, err, domain.ErrPoolExists)
}

func TestDeployPoolRequiresActiveMarket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createMarket(t, domain.CreationAdvised)

	_, err := f.trading.DeployPool(ctx, "alice", id, nil)
	require.ErrorIs(t, err, domain.ErrMarketNotActive)
}
