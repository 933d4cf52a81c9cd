package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarketEndOpenBlockKind(t *testing.T) {
	end := EndAtBlock(100)

	require.True(t, end.Open(ChainTime{Height: 99}))
	// Closing is inclusive of the end value.
	require.False(t, end.Open(ChainTime{Height: 100}))
	require.False(t, end.Open(ChainTime{Height: 101}))
}

func TestMarketEndOpenTimestampKind(t *testing.T) {
	end := EndAtTimestamp(600000)

	require.True(t, end.Open(ChainTime{UnixMs: 599999}))
	require.False(t, end.Open(ChainTime{UnixMs: 600000}))
}

func TestDisputeBondEscalates(t *testing.T) {
	p := Params{DisputeBond: 100, DisputeFactor: 25}

	require.Equal(t, uint64(100), DisputeBond(p, 0))
	require.Equal(t, uint64(125), DisputeBond(p, 1))
	require.Equal(t, uint64(250), DisputeBond(p, 6))
}

func TestCreationBondByMode(t *testing.T) {
	p := Params{AdvisoryBond: 25, OracleBond: 50, ValidityBond: 40}

	require.Equal(t, uint64(90), p.CreationBond(CreationPermissionless))
	require.Equal(t, uint64(75), p.CreationBond(CreationAdvised))
}

func TestAccountAndShareNaming(t *testing.T) {
	require.Equal(t, "market/7", MarketAccount(7))

	id := OutcomeShare(7, 2)
	require.Equal(t, uint64(7), id.MarketID)
	require.Equal(t, uint16(2), id.Outcome)
	require.Equal(t, "market/7/outcome/2", id.String())
}
