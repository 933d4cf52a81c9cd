// Package app provides the top-level application lifecycle for the market
// settlement daemon. It wires together stores, ledgers, the signal bus, the
// settlement archive, services, and notifications, and runs the resolution
// scheduler until shutdown.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/openpredict/marketd/internal/config"
	"github.com/openpredict/marketd/internal/domain"
	"github.com/openpredict/marketd/internal/service"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the scheduler and the notification pump,
// and blocks until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting daemon",
		slog.String("storage", a.cfg.Storage),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Scheduler.Run(ctx)
	})

	if deps.Deps.Bus != nil {
		g.Go(func() error {
			return a.notifyPump(ctx, deps)
		})
	}

	err = g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// notifyPump subscribes to every lifecycle event channel and forwards the
// events to the operator notification channels.
func (a *App) notifyPump(ctx context.Context, deps *Dependencies) error {
	events, err := deps.Deps.Bus.Subscribe(ctx, service.EventChannelPrefix+"*")
	if err != nil {
		return fmt.Errorf("app: subscribe lifecycle events: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-events:
			if !ok {
				return nil
			}
			var ev domain.MarketEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				a.logger.WarnContext(ctx, "malformed lifecycle event",
					slog.String("error", err.Error()),
				)
				continue
			}
			if err := deps.Notifier.NotifyEvent(ctx, ev); err != nil {
				a.logger.WarnContext(ctx, "event notification failed",
					slog.String("event", ev.Event),
					slog.Uint64("market_id", ev.MarketID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down daemon")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
