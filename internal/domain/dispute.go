package domain

// MarketDispute is one entry in a market's ordered dispute sequence. Entries
// are appended, never mutated or removed; sequence order is significant
// because the most recent entry determines the default winning outcome.
type MarketDispute struct {
	At      uint64 // block height the dispute was filed at
	By      string
	Outcome uint16
}

// DisputeBond returns the bond required for the k-th dispute (0-indexed) on a
// market: a base bond plus an escalation factor per prior dispute.
func DisputeBond(params Params, k uint16) uint64 {
	return params.DisputeBond + params.DisputeFactor*uint64(k)
}
