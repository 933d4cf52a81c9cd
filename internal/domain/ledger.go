package domain

import "context"

// CurrencyLedger is the external fungible-currency ledger. All operations are
// synchronous and atomic: they either fully apply or fully fail with no
// partial effect.
type CurrencyLedger interface {
	// FreeBalance returns the spendable (unescrowed) balance of an account.
	FreeBalance(ctx context.Context, account string) (uint64, error)
	// Transfer moves free balance between accounts. It fails with
	// ErrInsufficientFunds when from cannot cover amount.
	Transfer(ctx context.Context, from, to string, amount uint64) error
	// Escrow reserves amount of the account's free balance as a bond. It
	// fails with ErrInsufficientFunds when the free balance is below amount.
	Escrow(ctx context.Context, account string, amount uint64) error
	// Release returns escrowed balance to the account's free balance.
	Release(ctx context.Context, account string, amount uint64) error
	// Forfeit removes up to amount from the account's escrowed balance and
	// returns how much was actually taken. The forfeited value leaves the
	// account entirely; the caller decides where it is paid.
	Forfeit(ctx context.Context, account string, amount uint64) (uint64, error)
	// Deposit credits amount to the account's free balance, creating the
	// account if needed. Used to pay out forfeited value.
	Deposit(ctx context.Context, account string, amount uint64) error
}

// ShareLedger is the external multi-asset outcome-share ledger.
type ShareLedger interface {
	Mint(ctx context.Context, id ShareID, account string, amount uint64) error
	Burn(ctx context.Context, id ShareID, account string, amount uint64) error
	Balance(ctx context.Context, id ShareID, account string) (uint64, error)
	// Holders returns every account with a non-zero balance of the share.
	Holders(ctx context.Context, id ShareID) ([]string, error)
	// DestroyAll burns the full balance of the share for each listed account.
	DestroyAll(ctx context.Context, id ShareID, accounts []string) error
}

// Swaps is the external automated market-making pool used for trading shares.
type Swaps interface {
	// CreatePool deploys a pool over the given asset list and returns its id.
	CreatePool(ctx context.Context, creator string, assets []string, weights []uint64) (uint64, error)
}

// Authorizer gates administrative actions.
type Authorizer interface {
	IsAdmin(ctx context.Context, account string) (bool, error)
}
