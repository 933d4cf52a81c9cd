// Package notify delivers market lifecycle alerts to operator channels.
// Notifications fan out to all registered senders (Telegram, Discord) and can
// be filtered by event type so operators receive only the alerts they care
// about.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openpredict/marketd/internal/domain"
)

// Sender is the interface that each notification channel must implement.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier dispatches notifications to one or more Senders. It maintains a
// set of allowed event types; Notify only forwards events in the allowed set.
type Notifier struct {
	senders []Sender
	events  map[string]bool // allowed event types
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that will deliver to the given senders. Only
// events whose type appears in the events slice are forwarded. If events is
// empty, all event types are allowed.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// NotifyEvent renders a market lifecycle event and dispatches it, subject to
// the event type filter.
func (n *Notifier) NotifyEvent(ctx context.Context, ev domain.MarketEvent) error {
	if len(n.events) > 0 && !n.events[ev.Event] {
		n.logger.DebugContext(ctx, "event filtered out",
			slog.String("event", ev.Event),
		)
		return nil
	}

	title, message := renderEvent(ev)
	return n.dispatch(ctx, title, message)
}

// NotifyAll sends a notification to all senders regardless of event type.
func (n *Notifier) NotifyAll(ctx context.Context, title, message string) error {
	return n.dispatch(ctx, title, message)
}

// dispatch sends to every sender. Errors are collected and returned combined;
// a single sender failure does not prevent delivery to the remaining senders.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			n.logger.DebugContext(ctx, "notification sent",
				slog.String("sender", s.Name()),
				slog.String("title", title),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

// renderEvent builds a human-readable title and body for a lifecycle event.
func renderEvent(ev domain.MarketEvent) (title, message string) {
	title = fmt.Sprintf("Market %d: %s", ev.MarketID, strings.ReplaceAll(ev.Event, "_", " "))

	var b strings.Builder
	fmt.Fprintf(&b, "market %d", ev.MarketID)
	if ev.Account != "" {
		fmt.Fprintf(&b, "\naccount: %s", ev.Account)
	}
	if ev.Outcome != nil {
		fmt.Fprintf(&b, "\noutcome: %d", *ev.Outcome)
	}
	fmt.Fprintf(&b, "\nat: %s", ev.At.UTC().Format(time.RFC3339))
	return title, b.String()
}
