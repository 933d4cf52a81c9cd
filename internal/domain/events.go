package domain

import "time"

// Lifecycle event channels published on the signal bus.
const (
	EventMarketCreated     = "market_created"
	EventMarketApproved    = "market_approved"
	EventMarketRejected    = "market_rejected"
	EventMarketCancelled   = "market_cancelled"
	EventBoughtCompleteSet = "bought_complete_set"
	EventSoldCompleteSet   = "sold_complete_set"
	EventMarketReported    = "market_reported"
	EventMarketDisputed    = "market_disputed"
	EventMarketResolved    = "market_resolved"
)

// MarketEvent is the JSON payload published for every lifecycle transition.
type MarketEvent struct {
	ID       string    `json:"id"` // UUID for dedup
	Event    string    `json:"event"`
	MarketID uint64    `json:"market_id"`
	Account  string    `json:"account,omitempty"`
	Outcome  *uint16   `json:"outcome,omitempty"`
	At       time.Time `json:"at"`
}

// StreamMessage represents a single entry from a durable event stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}
