package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpredict/marketd/internal/domain"
)

func TestBankEscrowMovesFreeToReserved(t *testing.T) {
	b := NewBank()
	ctx := context.Background()
	b.Mint("alice", 100)

	require.NoError(t, b.Escrow(ctx, "alice", 60))

	free, err := b.FreeBalance(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(40), free)

	escrowed, err := b.EscrowedBalance(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(60), escrowed)
}

func TestBankEscrowRequiresFreeBalance(t *testing.T) {
	b := NewBank()
	b.Mint("alice", 10)

	err := b.Escrow(context.Background(), "alice", 11)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestBankReleaseSaturates(t *testing.T) {
	b := NewBank()
	ctx := context.Background()
	b.Mint("alice", 100)
	require.NoError(t, b.Escrow(ctx, "alice", 30))

	// Releasing more than is reserved releases what is there.
	require.NoError(t, b.Release(ctx, "alice", 50))

	free, err := b.FreeBalance(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(100), free)
}

func TestBankForfeitReturnsTakenAmount(t *testing.T) {
	b := NewBank()
	ctx := context.Background()
	b.Mint("alice", 100)
	require.NoError(t, b.Escrow(ctx, "alice", 30))

	taken, err := b.Forfeit(ctx, "alice", 50)
	require.NoError(t, err)
	require.Equal(t, uint64(30), taken)

	escrowed, err := b.EscrowedBalance(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(0), escrowed)
	// Forfeited value left the account entirely.
	free, err := b.FreeBalance(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(70), free)
}

func TestBankTransferChecksSource(t *testing.T) {
	b := NewBank()
	ctx := context.Background()
	b.Mint("alice", 10)

	require.ErrorIs(t, b.Transfer(ctx, "alice", "bob", 11), domain.ErrInsufficientFunds)
	require.NoError(t, b.Transfer(ctx, "alice", "bob", 10))

	free, err := b.FreeBalance(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, uint64(10), free)
}

func TestShareBankBurnRequiresBalance(t *testing.T) {
	s := NewShareBank()
	ctx := context.Background()
	id := domain.OutcomeShare(1, 0)

	require.NoError(t, s.Mint(ctx, id, "bob", 5))
	require.ErrorIs(t, s.Burn(ctx, id, "bob", 6), domain.ErrInsufficientShares)
	require.NoError(t, s.Burn(ctx, id, "bob", 5))

	bal, err := s.Balance(ctx, id, "bob")
	require.NoError(t, err)
	require.Equal(t, uint64(0), bal)
}

func TestShareBankHoldersSkipsZeroBalances(t *testing.T) {
	s := NewShareBank()
	ctx := context.Background()
	id := domain.OutcomeShare(1, 0)

	require.NoError(t, s.Mint(ctx, id, "carol", 3))
	require.NoError(t, s.Mint(ctx, id, "bob", 2))
	require.NoError(t, s.Burn(ctx, id, "carol", 3))

	holders, err := s.Holders(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{"bob"}, holders)
}

func TestShareBankDestroyAll(t *testing.T) {
	s := NewShareBank()
	ctx := context.Background()
	id := domain.OutcomeShare(1, 1)

	require.NoError(t, s.Mint(ctx, id, "bob", 2))
	require.NoError(t, s.Mint(ctx, id, "carol", 9))

	holders, err := s.Holders(ctx, id)
	require.NoError(t, err)
	require.NoError(t, s.DestroyAll(ctx, id, holders))

	for _, acct := range []string{"bob", "carol"} {
		bal, err := s.Balance(ctx, id, acct)
		require.NoError(t, err)
		require.Equal(t, uint64(0), bal)
	}
}

func TestSwapRegistryAssignsSequentialIDs(t *testing.T) {
	r := NewSwapRegistry()
	ctx := context.Background()
	assets := []string{"currency/base", "market/0/outcome/0", "market/0/outcome/1"}

	first, err := r.CreatePool(ctx, "alice", assets, nil)
	require.NoError(t, err)
	second, err := r.CreatePool(ctx, "alice", assets, nil)
	require.NoError(t, err)
	require.Equal(t, first+1, second)

	got, ok := r.Assets(first)
	require.True(t, ok)
	require.Equal(t, assets, got)
}

func TestSwapRegistryValidatesInput(t *testing.T) {
	r := NewSwapRegistry()
	ctx := context.Background()

	_, err := r.CreatePool(ctx, "alice", []string{"only-one"}, nil)
	require.Error(t, err)

	_, err = r.CreatePool(ctx, "alice", []string{"a", "b"}, []uint64{1})
	require.Error(t, err)
}
