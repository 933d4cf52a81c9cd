// Package ledger provides reference in-memory implementations of the external
// currency and share ledgers. The production system is expected to plug real
// ledgers in behind the domain interfaces; these implementations back the
// local storage mode and the test suite.
package ledger

import (
	"context"
	"sync"

	"github.com/openpredict/marketd/internal/domain"
)

type balance struct {
	free     uint64
	escrowed uint64
}

// Bank is an in-memory domain.CurrencyLedger with free and escrowed balances
// per account.
type Bank struct {
	mu       sync.Mutex
	accounts map[string]*balance
}

// NewBank creates an empty Bank.
func NewBank() *Bank {
	return &Bank{accounts: make(map[string]*balance)}
}

func (b *Bank) account(name string) *balance {
	acct, ok := b.accounts[name]
	if !ok {
		acct = &balance{}
		b.accounts[name] = acct
	}
	return acct
}

// Mint credits free balance out of thin air. Test and genesis helper; a real
// ledger would not expose this.
func (b *Bank) Mint(account string, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.account(account).free += amount
}

// FreeBalance returns the spendable balance of an account.
func (b *Bank) FreeBalance(ctx context.Context, account string) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.account(account).free, nil
}

// EscrowedBalance returns the escrowed balance of an account.
func (b *Bank) EscrowedBalance(ctx context.Context, account string) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.account(account).escrowed, nil
}

// Transfer moves free balance between accounts.
func (b *Bank) Transfer(ctx context.Context, from, to string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	src := b.account(from)
	if src.free < amount {
		return domain.ErrInsufficientFunds
	}
	src.free -= amount
	b.account(to).free += amount
	return nil
}

// Escrow reserves amount of the account's free balance.
func (b *Bank) Escrow(ctx context.Context, account string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.account(account)
	if acct.free < amount {
		return domain.ErrInsufficientFunds
	}
	acct.free -= amount
	acct.escrowed += amount
	return nil
}

// Release returns escrowed balance to the account's free balance. Releasing
// more than is escrowed releases what is there, matching the saturating
// semantics of reserve-based ledgers.
func (b *Bank) Release(ctx context.Context, account string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.account(account)
	if amount > acct.escrowed {
		amount = acct.escrowed
	}
	acct.escrowed -= amount
	acct.free += amount
	return nil
}

// Forfeit removes up to amount from the account's escrowed balance and
// returns how much was actually taken.
func (b *Bank) Forfeit(ctx context.Context, account string, amount uint64) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.account(account)
	if amount > acct.escrowed {
		amount = acct.escrowed
	}
	acct.escrowed -= amount
	return amount, nil
}

// Deposit credits free balance to an account.
func (b *Bank) Deposit(ctx context.Context, account string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.account(account).free += amount
	return nil
}
