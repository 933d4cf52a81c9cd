package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpredict/marketd/internal/domain"
)

func TestTickResolvesReportedMarketAfterDisputePeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := reportedMarket(t, f) // reported at block 101

	// The dispute window has not elapsed yet.
	f.clock.advanceTo(110)
	f.scheduler.Tick(ctx, f.clock.Now())
	require.Equal(t, domain.MarketStatusReported, f.status(t, id))

	f.clock.advanceTo(111)
	f.scheduler.Tick(ctx, f.clock.Now())
	require.Equal(t, domain.MarketStatusResolved, f.status(t, id))
}

func TestTickResolvesDisputedMarketFromLatestWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := reportedMarket(t, f)
	f.bank.Mint("bob", 100)

	f.clock.advanceTo(105)
	require.NoError(t, f.resolution.Dispute(ctx, "bob", id, 1))

	// The report-window bucket still lists the market, but its status moved
	// on; the tick must skip it there.
	f.clock.advanceTo(111)
	f.scheduler.Tick(ctx, f.clock.Now())
	require.Equal(t, domain.MarketStatusDisputed, f.status(t, id))

	f.clock.advanceTo(115)
	f.scheduler.Tick(ctx, f.clock.Now())

	m, err := f.deps.Markets.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.MarketStatusResolved, m.Status)
	require.Equal(t, uint16(1), *m.ResolvedOutcome)
}

func TestTickMovedDisputeWindowSupersedesOlderOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := reportedMarket(t, f)
	f.bank.Mint("bob", 100)
	f.bank.Mint("carol", 125)

	f.clock.advanceTo(105)
	require.NoError(t, f.resolution.Dispute(ctx, "bob", id, 1))

	f.clock.advanceTo(108)
	require.NoError(t, f.resolution.Dispute(ctx, "carol", id, 0))

	// Block 115 drains the superseded bucket from the first dispute; the
	// market must not resolve yet.
	f.clock.advanceTo(115)
	f.scheduler.Tick(ctx, f.clock.Now())
	require.Equal(t, domain.MarketStatusDisputed, f.status(t, id))

	f.clock.advanceTo(118)
	f.scheduler.Tick(ctx, f.clock.Now())
	require.Equal(t, domain.MarketStatusResolved, f.status(t, id))
}

func TestTickDrainsBucketsSkippedByMissedTicks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := reportedMarket(t, f) // reported at block 101, bucket matures at 111

	f.clock.advanceTo(110)
	f.scheduler.Tick(ctx, f.clock.Now())
	require.Equal(t, domain.MarketStatusReported, f.status(t, id))

	// No tick fires at height 111. The next tick must pick up the backlog or
	// the bucket would never be revisited and the bonds stay escrowed forever.
	f.clock.advanceTo(112)
	f.scheduler.Tick(ctx, f.clock.Now())
	require.Equal(t, domain.MarketStatusResolved, f.status(t, id))
}

func TestTickBucketIsDrainedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := reportedMarket(t, f)

	f.clock.advanceTo(111)
	f.scheduler.Tick(ctx, f.clock.Now())
	require.Equal(t, domain.MarketStatusResolved, f.status(t, id))

	// A second tick over the same height finds the bucket empty; resolving an
	// already-resolved market would fail loudly.
	f.scheduler.Tick(ctx, f.clock.Now())
	require.Equal(t, domain.MarketStatusResolved, f.status(t, id))
}

func TestTickSurvivesFailingMarket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := f.createMarket(t, domain.CreationPermissionless)
	good := f.createMarket(t, domain.CreationPermissionless)
	f.clock.advanceTo(101)
	require.NoError(t, f.resolution.Report(ctx, "oracle", bad, 0))
	require.NoError(t, f.resolution.Report(ctx, "oracle", good, 0))

	// Delete the first market out from under the schedule; its bucket entry
	// dangles.
	require.NoError(t, f.deps.Markets.Delete(ctx, bad))

	f.clock.advanceTo(111)
	f.scheduler.Tick(ctx, f.clock.Now())

	require.Equal(t, domain.MarketStatusResolved, f.status(t, good))
}

func TestTickBeforeDisputePeriodElapsesDoesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Heights at or below the dispute period cannot have matured buckets.
	f.clock.advanceTo(10)
	f.scheduler.Tick(ctx, f.clock.Now())
}
