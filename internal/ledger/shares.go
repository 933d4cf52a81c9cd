package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/openpredict/marketd/internal/domain"
)

// ShareBank is an in-memory domain.ShareLedger keyed by share id and account.
type ShareBank struct {
	mu       sync.Mutex
	balances map[domain.ShareID]map[string]uint64
}

// NewShareBank creates an empty ShareBank.
func NewShareBank() *ShareBank {
	return &ShareBank{balances: make(map[domain.ShareID]map[string]uint64)}
}

func (s *ShareBank) holders(id domain.ShareID) map[string]uint64 {
	h, ok := s.balances[id]
	if !ok {
		h = make(map[string]uint64)
		s.balances[id] = h
	}
	return h
}

// Mint credits amount of the share to the account.
func (s *ShareBank) Mint(ctx context.Context, id domain.ShareID, account string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holders(id)[account] += amount
	return nil
}

// Burn debits amount of the share from the account.
func (s *ShareBank) Burn(ctx context.Context, id domain.ShareID, account string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.holders(id)
	if h[account] < amount {
		return domain.ErrInsufficientShares
	}
	h[account] -= amount
	if h[account] == 0 {
		delete(h, account)
	}
	return nil
}

// Balance returns the account's balance of the share.
func (s *ShareBank) Balance(ctx context.Context, id domain.ShareID, account string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[id][account], nil
}

// Holders returns every account with a non-zero balance of the share, in
// stable order.
func (s *ShareBank) Holders(ctx context.Context, id domain.ShareID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := make([]string, 0, len(s.balances[id]))
	for acct, bal := range s.balances[id] {
		if bal > 0 {
			accounts = append(accounts, acct)
		}
	}
	sort.Strings(accounts)
	return accounts, nil
}

// DestroyAll burns the full balance of the share for each listed account.
func (s *ShareBank) DestroyAll(ctx context.Context, id domain.ShareID, accounts []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.balances[id]
	for _, acct := range accounts {
		delete(h, acct)
	}
	return nil
}
