package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openpredict/marketd/internal/domain"
)

// eventStream is the durable stream every lifecycle event is appended to, in
// addition to its own pub/sub channel.
const eventStream = "market_events"

// EventChannelPrefix namespaces the per-event pub/sub channels so consumers
// can pattern-subscribe to all of them at once.
const EventChannelPrefix = "events."

// publishEvent emits a lifecycle event on the signal bus. Event delivery is
// best-effort: failures are logged and never fail the operation that
// triggered them.
func publishEvent(ctx context.Context, bus domain.SignalBus, logger *slog.Logger, event string, marketID uint64, account string, outcome *uint16) {
	if bus == nil {
		return
	}

	payload, err := json.Marshal(domain.MarketEvent{
		ID:       uuid.NewString(),
		Event:    event,
		MarketID: marketID,
		Account:  account,
		Outcome:  outcome,
		At:       time.Now().UTC(),
	})
	if err != nil {
		return
	}

	if err := bus.Publish(ctx, EventChannelPrefix+event, payload); err != nil {
		logger.WarnContext(ctx, "event publish failed",
			slog.String("event", event),
			slog.Uint64("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}
	if err := bus.StreamAppend(ctx, eventStream, payload); err != nil {
		logger.WarnContext(ctx, "event stream append failed",
			slog.String("event", event),
			slog.Uint64("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}
}
