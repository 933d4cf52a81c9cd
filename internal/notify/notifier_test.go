package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openpredict/marketd/internal/domain"
)

type fakeSender struct {
	titles []string
	bodies []string
}

func (s *fakeSender) Send(ctx context.Context, title, message string) error {
	s.titles = append(s.titles, title)
	s.bodies = append(s.bodies, message)
	return nil
}

func (s *fakeSender) Name() string { return "fake" }

func testEvent(event string) domain.MarketEvent {
	outcome := uint16(1)
	return domain.MarketEvent{
		ID:       "evt-1",
		Event:    event,
		MarketID: 7,
		Account:  "alice",
		Outcome:  &outcome,
		At:       time.Unix(0, 0).UTC(),
	}
}

func TestNotifyEventDelivers(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier([]Sender{sender}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, n.NotifyEvent(context.Background(), testEvent(domain.EventMarketResolved)))

	require.Len(t, sender.titles, 1)
	require.Equal(t, "Market 7: market resolved", sender.titles[0])
	require.Contains(t, sender.bodies[0], "account: alice")
	require.Contains(t, sender.bodies[0], "outcome: 1")
}

func TestNotifyEventFiltersByType(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier([]Sender{sender}, []string{domain.EventMarketResolved}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	require.NoError(t, n.NotifyEvent(ctx, testEvent(domain.EventMarketCreated)))
	require.Empty(t, sender.titles)

	require.NoError(t, n.NotifyEvent(ctx, testEvent(domain.EventMarketResolved)))
	require.Len(t, sender.titles, 1)
}

func TestNotifyAllBypassesFilter(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier([]Sender{sender}, []string{domain.EventMarketResolved}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, n.NotifyAll(context.Background(), "title", "body"))
	require.Len(t, sender.titles, 1)
}
