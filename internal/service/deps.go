// Package service implements the market settlement lifecycle: registry,
// trading gates, reporting, disputing, resolution, and the auto-resolution
// scheduler. Services hold no state of their own; all state lives behind the
// domain store and ledger interfaces, and every external call is processed to
// completion before the next (the stores serialize access).
package service

import (
	"github.com/openpredict/marketd/internal/domain"
)

// Deps bundles the store and collaborator interfaces shared by the services.
// Bus and Archive are optional; a nil value disables events or archival.
type Deps struct {
	Markets  domain.MarketStore
	Disputes domain.DisputeStore
	Schedule domain.ScheduleStore
	Pools    domain.PoolStore

	Bank   domain.CurrencyLedger
	Shares domain.ShareLedger
	Swaps  domain.Swaps
	Auth   domain.Authorizer
	Clock  domain.Clock

	Bus     domain.SignalBus
	Archive domain.SettlementArchiver
}
