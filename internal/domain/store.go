package domain

import "context"

// MarketStore owns Market records keyed by id. Ids come from NextID, so
// Insert never sees a duplicate; Get, Update and Delete return
// ErrMarketNotFound for unknown ids.
type MarketStore interface {
	// NextID returns the next sequential market id and advances the counter.
	// Ids are monotonic and never reused, even across deletions.
	NextID(ctx context.Context) (uint64, error)
	Insert(ctx context.Context, m Market) error
	Get(ctx context.Context, id uint64) (Market, error)
	Update(ctx context.Context, m Market) error
	Delete(ctx context.Context, id uint64) error
}

// DisputeStore owns the append-only dispute sequence per market.
type DisputeStore interface {
	Append(ctx context.Context, marketID uint64, d MarketDispute) error
	// List returns the dispute sequence in insertion order. An unknown market
	// id yields an empty sequence, not an error.
	List(ctx context.Context, marketID uint64) ([]MarketDispute, error)
	// Delete removes the whole sequence; used only by administrative
	// destruction.
	Delete(ctx context.Context, marketID uint64) error
}

// ScheduleKind selects one of the two time-bucketed resolution indices.
type ScheduleKind string

const (
	// ScheduleReport indexes markets by the block their report was filed at.
	ScheduleReport ScheduleKind = "report"
	// ScheduleDispute indexes markets by the block their latest dispute was
	// filed at.
	ScheduleDispute ScheduleKind = "dispute"
)

// ScheduleStore maps block heights to the set of market ids whose window
// closes at that height. A market id occupies at most one bucket per kind.
type ScheduleStore interface {
	Add(ctx context.Context, kind ScheduleKind, height uint64, marketID uint64) error
	// Remove deletes a single market id from a bucket. Removing an id that is
	// not present is a no-op.
	Remove(ctx context.Context, kind ScheduleKind, height uint64, marketID uint64) error
	// Take drains every bucket at height <= upTo: it returns the ids listed
	// there and removes them, so no bucket is revisited. Draining by range
	// keeps a bucket from being stranded when ticks skip heights.
	Take(ctx context.Context, kind ScheduleKind, upTo uint64) ([]uint64, error)
}

// PoolStore records the single canonical swap pool per market.
type PoolStore interface {
	Set(ctx context.Context, marketID, poolID uint64) error
	// Get returns the pool id and whether one is registered.
	Get(ctx context.Context, marketID uint64) (uint64, bool, error)
	Delete(ctx context.Context, marketID uint64) error
}
