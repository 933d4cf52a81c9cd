package domain

import "fmt"

// MarketStatus represents the lifecycle state of a market.
type MarketStatus string

const (
	// MarketStatusProposed means the market was created in advised mode and is
	// waiting for approval before trading can begin.
	MarketStatusProposed MarketStatus = "proposed"
	// MarketStatusActive means complete sets can be bought and sold until the
	// market end is reached.
	MarketStatusActive MarketStatus = "active"
	// MarketStatusReported means an outcome has been reported and the dispute
	// window is open.
	MarketStatusReported MarketStatus = "reported"
	// MarketStatusDisputed means at least one dispute has been filed against
	// the reported outcome.
	MarketStatusDisputed MarketStatus = "disputed"
	// MarketStatusResolved is terminal: the winning outcome is fixed and all
	// bonds are settled.
	MarketStatusResolved MarketStatus = "resolved"
)

// CreationMode selects the bonding rules applied at market creation.
type CreationMode string

const (
	// CreationPermissionless markets go straight to active and bond
	// ValidityBond + OracleBond.
	CreationPermissionless CreationMode = "permissionless"
	// CreationAdvised markets start proposed, pending approval, and bond
	// AdvisoryBond + OracleBond.
	CreationAdvised CreationMode = "advised"
)

// MarketType is the kind of outcome space a market has.
type MarketType string

// MarketTypeCategorical is currently the only supported market type: a finite
// set of mutually exclusive outcomes.
const MarketTypeCategorical MarketType = "categorical"

// EndKind tags whether a market end is expressed as a block height or a unix
// millisecond timestamp.
type EndKind string

const (
	EndKindBlock     EndKind = "block"
	EndKindTimestamp EndKind = "timestamp"
)

// MarketEnd is the point at which trading closes, tagged by unit. Comparisons
// must always use the matching component of the current chain time.
type MarketEnd struct {
	Kind  EndKind
	Value uint64
}

// EndAtBlock returns a MarketEnd closing at the given block height.
func EndAtBlock(height uint64) MarketEnd {
	return MarketEnd{Kind: EndKindBlock, Value: height}
}

// EndAtTimestamp returns a MarketEnd closing at the given unix millisecond
// timestamp.
func EndAtTimestamp(unixMs uint64) MarketEnd {
	return MarketEnd{Kind: EndKindTimestamp, Value: unixMs}
}

// Open reports whether trading is still open at now: strictly before the end
// in the end's own unit.
func (e MarketEnd) Open(now ChainTime) bool {
	if e.Kind == EndKindBlock {
		return now.Height < e.Value
	}
	return now.UnixMs < e.Value
}

// ChainTime is a snapshot of the external time source. Height drives the
// scheduling indices; UnixMs is used for timestamp-ended markets.
type ChainTime struct {
	Height uint64
	UnixMs uint64
}

// Clock is the external block/time source that drives periodic resolution.
type Clock interface {
	Now() ChainTime
}

// BlockMillis is the assumed wall-clock duration of one block, used to convert
// block-denominated periods for timestamp-ended markets.
const BlockMillis uint64 = 6000

// Report records the first outcome report for a market. It is created once and
// never mutated; disputes do not overwrite it.
type Report struct {
	At      uint64 // block height the report was filed at
	By      string
	Outcome uint16
}

// Market is a categorical prediction market owned by the registry.
type Market struct {
	ID              uint64
	Creator         string
	Creation        CreationMode
	CreatorFee      uint64 // reserved, always zero
	Oracle          string
	End             MarketEnd
	Metadata        []byte
	MarketType      MarketType
	Categories      uint16
	Status          MarketStatus
	Report          *Report
	ResolvedOutcome *uint16
}

// Outcomes returns the number of outcomes for the market.
func (m Market) Outcomes() uint16 {
	return m.Categories
}

// MarketAccount derives the per-market custodial account holding the currency
// that backs outstanding complete sets.
func MarketAccount(marketID uint64) string {
	return fmt.Sprintf("market/%d", marketID)
}

// ShareID identifies one outcome's share asset for a market.
type ShareID struct {
	MarketID uint64
	Outcome  uint16
}

// OutcomeShare returns the ShareID for the given market and outcome index.
func OutcomeShare(marketID uint64, outcome uint16) ShareID {
	return ShareID{MarketID: marketID, Outcome: outcome}
}

// String renders the share id in the canonical asset-path form used by the
// share ledger and the swap pool.
func (s ShareID) String() string {
	return fmt.Sprintf("market/%d/outcome/%d", s.MarketID, s.Outcome)
}
