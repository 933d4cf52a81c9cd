package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/openpredict/marketd/internal/domain"
)

// Scheduler drives time-based resolution: on every tick it drains the
// report-window and dispute-window buckets whose period has elapsed and
// resolves the markets listed there. A failure on one market is logged and
// does not block resolution of the rest of the bucket.
type Scheduler struct {
	deps       Deps
	resolution *ResolutionService
	params     domain.Params
	interval   time.Duration
	logger     *slog.Logger
}

// NewScheduler creates a Scheduler ticking at the given interval.
func NewScheduler(deps Deps, resolution *ResolutionService, params domain.Params, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 6 * time.Second
	}
	return &Scheduler{
		deps:       deps,
		resolution: resolution,
		params:     params,
		interval:   interval,
		logger:     logger.With(slog.String("component", "scheduler")),
	}
}

// Run ticks until the context is cancelled. Call in a goroutine.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx, s.deps.Clock.Now())
		}
	}
}

// Tick drains every bucket that has matured by now. The ticker gives no
// guarantee of one tick per height, so each pass takes the full backlog up to
// the matured height rather than a single bucket. Exported so a deterministic
// driver (or test) can advance time explicitly.
func (s *Scheduler) Tick(ctx context.Context, now domain.ChainTime) {
	if now.Height <= s.params.DisputePeriod {
		return
	}
	matured := now.Height - s.params.DisputePeriod

	// Reported markets whose dispute window has elapsed without a dispute. A
	// market found disputed here was already migrated to the dispute-window
	// index and is skipped.
	ids, err := s.deps.Schedule.Take(ctx, domain.ScheduleReport, matured)
	if err != nil {
		s.logger.ErrorContext(ctx, "drain report bucket failed",
			slog.Uint64("height", matured),
			slog.String("error", err.Error()),
		)
	}
	for _, id := range ids {
		m, err := s.deps.Markets.Get(ctx, id)
		if err != nil {
			s.logger.ErrorContext(ctx, "scheduled market lookup failed",
				slog.Uint64("market_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		if m.Status != domain.MarketStatusReported {
			continue
		}
		if err := s.resolution.Resolve(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "auto-resolution failed",
				slog.Uint64("market_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	// Disputed markets whose last dispute window has elapsed resolve
	// unconditionally.
	ids, err = s.deps.Schedule.Take(ctx, domain.ScheduleDispute, matured)
	if err != nil {
		s.logger.ErrorContext(ctx, "drain dispute bucket failed",
			slog.Uint64("height", matured),
			slog.String("error", err.Error()),
		)
	}
	for _, id := range ids {
		if err := s.resolution.Resolve(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "auto-resolution failed",
				slog.Uint64("market_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
}
