package domain

import (
	"context"
	"time"
)

// BondSettlement records the fate of one escrowed bond at resolution.
type BondSettlement struct {
	Account  string `json:"account"`
	Amount   uint64 `json:"amount"`
	Released bool   `json:"released"` // false means forfeited
}

// SettlementRecord is the immutable per-market record produced by the
// resolution engine, suitable for archival.
type SettlementRecord struct {
	MarketID        uint64           `json:"market_id"`
	ResolvedOutcome uint16           `json:"resolved_outcome"`
	ResolvedAt      uint64           `json:"resolved_at"` // block height
	OracleBond      BondSettlement   `json:"oracle_bond"`
	DisputeBonds    []BondSettlement `json:"dispute_bonds,omitempty"`
	RewardPool      uint64           `json:"reward_pool"`
	RewardPerParty  uint64           `json:"reward_per_party"`
	CorrectParties  []string         `json:"correct_parties,omitempty"`
	ArchivedAt      time.Time        `json:"archived_at"`
}

// SettlementArchiver persists settlement records to long-term storage.
// Archival is best-effort and must never block or fail resolution.
type SettlementArchiver interface {
	ArchiveSettlement(ctx context.Context, rec SettlementRecord) error
}
