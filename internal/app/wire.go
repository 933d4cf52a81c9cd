package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	s3blob "github.com/openpredict/marketd/internal/blob/s3"
	"github.com/openpredict/marketd/internal/cache/redis"
	"github.com/openpredict/marketd/internal/chain"
	"github.com/openpredict/marketd/internal/config"
	"github.com/openpredict/marketd/internal/domain"
	"github.com/openpredict/marketd/internal/ledger"
	"github.com/openpredict/marketd/internal/notify"
	"github.com/openpredict/marketd/internal/service"
	"github.com/openpredict/marketd/internal/store/memory"
	"github.com/openpredict/marketd/internal/store/postgres"
)

// Dependencies bundles every constructed component the application needs to
// run. It is built by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Deps service.Deps

	Markets    *service.MarketService
	Trading    *service.TradingService
	Resolution *service.ResolutionService
	Scheduler  *service.Scheduler

	Notifier *notify.Notifier
	Archiver *s3blob.Archiver // nil when archival is disabled
}

// paramsFromConfig maps the markets section onto the domain parameters.
func paramsFromConfig(cfg config.MarketsConfig) domain.Params {
	return domain.Params{
		MaxCategories:   cfg.MaxCategories,
		MaxDisputes:     cfg.MaxDisputes,
		ReportingPeriod: cfg.ReportingPeriod,
		DisputePeriod:   cfg.DisputePeriod,
		AdvisoryBond:    cfg.AdvisoryBond,
		OracleBond:      cfg.OracleBond,
		ValidityBond:    cfg.ValidityBond,
		DisputeBond:     cfg.DisputeBond,
		DisputeFactor:   cfg.DisputeFactor,
		PenaltySink:     cfg.PenaltySink,
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := service.Deps{
		Bank:   ledger.NewBank(),
		Shares: ledger.NewShareBank(),
		Swaps:  ledger.NewSwapRegistry(),
		Auth:   chain.NewStaticAuthorizer(cfg.Admins),
		Clock:  chain.SystemClock{},
	}

	// --- Stores ---
	switch cfg.Storage {
	case "postgres":
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.Markets = postgres.NewMarketStore(pool)
		deps.Disputes = postgres.NewDisputeStore(pool)
		deps.Schedule = postgres.NewScheduleStore(pool)
		deps.Pools = postgres.NewPoolStore(pool)
	default:
		deps.Markets = memory.NewMarketStore()
		deps.Disputes = memory.NewDisputeStore()
		deps.Schedule = memory.NewScheduleStore()
		deps.Pools = memory.NewPoolStore()
	}

	// --- Redis signal bus (optional) ---
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Bus = redis.NewSignalBusWithMaxLen(redisClient, int64(cfg.Redis.StreamMaxLen))
	}

	out := &Dependencies{}

	// --- Settlement archive (optional) ---
	if cfg.S3.Bucket != "" {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		archiver := s3blob.NewArchiver(s3blob.NewWriter(s3Client))
		closers = append(closers, func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := archiver.Flush(flushCtx); err != nil {
				logger.Warn("settlement batch flush failed", slog.String("error", err.Error()))
			}
		})
		deps.Archive = archiver
		out.Archiver = archiver
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	out.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Services ---
	params := paramsFromConfig(cfg.Markets)
	out.Deps = deps
	out.Markets = service.NewMarketService(deps, params, logger)
	out.Trading = service.NewTradingService(deps, logger)
	out.Resolution = service.NewResolutionService(deps, params, logger)
	out.Scheduler = service.NewScheduler(
		deps, out.Resolution, params,
		time.Duration(cfg.Scheduler.TickSeconds)*time.Second,
		logger,
	)

	return out, cleanup, nil
}
