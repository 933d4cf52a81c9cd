package domain

// Params holds the settlement parameters shared by the registry, lifecycle
// and resolution services. Bond amounts are in base currency units; periods
// are in blocks.
type Params struct {
	// MaxCategories caps the outcome count of a categorical market.
	MaxCategories uint16
	// MaxDisputes caps the length of any market's dispute sequence.
	MaxDisputes uint16
	// ReportingPeriod is the grace window after close during which only the
	// designated oracle may report.
	ReportingPeriod uint64
	// DisputePeriod is the window after a report or dispute during which a
	// (further) dispute may be filed before auto-resolution.
	DisputePeriod uint64

	AdvisoryBond  uint64
	OracleBond    uint64
	ValidityBond  uint64
	DisputeBond   uint64
	DisputeFactor uint64

	// PenaltySink receives forfeited bonds that are not redistributed to
	// correct parties (rejected advisory bonds, undisputed forfeits, and the
	// floor-division remainder of reward splits).
	PenaltySink string
}

// CreationBond returns the total bond escrowed from the creator for the given
// creation mode.
func (p Params) CreationBond(mode CreationMode) uint64 {
	if mode == CreationAdvised {
		return p.AdvisoryBond + p.OracleBond
	}
	return p.ValidityBond + p.OracleBond
}
