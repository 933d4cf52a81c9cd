// Package config defines the top-level configuration for the market
// settlement daemon and provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by MARKETD_* environment variables.
type Config struct {
	Markets   MarketsConfig   `toml:"markets"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	Notify    NotifyConfig    `toml:"notify"`
	Admins    []string        `toml:"admins"`
	Storage   string          `toml:"storage"` // "memory" or "postgres"
	LogLevel  string          `toml:"log_level"`
}

// MarketsConfig holds the settlement parameters: bond amounts in base
// currency units and windows in blocks.
type MarketsConfig struct {
	MaxCategories   uint16 `toml:"max_categories"`
	MaxDisputes     uint16 `toml:"max_disputes"`
	ReportingPeriod uint64 `toml:"reporting_period"`
	DisputePeriod   uint64 `toml:"dispute_period"`
	AdvisoryBond    uint64 `toml:"advisory_bond"`
	OracleBond      uint64 `toml:"oracle_bond"`
	ValidityBond    uint64 `toml:"validity_bond"`
	DisputeBond     uint64 `toml:"dispute_bond"`
	DisputeFactor   uint64 `toml:"dispute_factor"`
	PenaltySink     string `toml:"penalty_sink"`
}

// SchedulerConfig holds the auto-resolution tick parameters.
type SchedulerConfig struct {
	TickSeconds int `toml:"tick_seconds"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters for the signal bus. An empty
// Addr disables the bus.
type RedisConfig struct {
	Addr         string `toml:"addr"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"pool_size"`
	MaxRetries   int    `toml:"max_retries"`
	TLSEnabled   bool   `toml:"tls_enabled"`
	StreamMaxLen int    `toml:"stream_max_len"`
}

// S3Config holds S3-compatible object storage parameters for the settlement
// archive. An empty Bucket disables archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// NotifyConfig holds notification channel credentials and the event filter.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validStorage = map[string]bool{
	"memory": true, "postgres": true,
}

// Validate checks the configuration for internal consistency and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validStorage[strings.ToLower(c.Storage)] {
		errs = append(errs, fmt.Sprintf("unknown storage %q (valid: memory, postgres)", c.Storage))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Markets.MaxCategories == 0 {
		errs = append(errs, "markets: max_categories must be positive")
	}
	if c.Markets.MaxDisputes == 0 {
		errs = append(errs, "markets: max_disputes must be positive")
	}
	if c.Markets.DisputePeriod == 0 {
		errs = append(errs, "markets: dispute_period must be positive")
	}
	if c.Markets.PenaltySink == "" {
		errs = append(errs, "markets: penalty_sink account must be set")
	}

	if c.Scheduler.TickSeconds <= 0 {
		errs = append(errs, "scheduler: tick_seconds must be positive")
	}

	if strings.ToLower(c.Storage) == "postgres" {
		if c.Postgres.DSN == "" && (c.Postgres.Host == "" || c.Postgres.Database == "" || c.Postgres.User == "") {
			errs = append(errs, "postgres: either dsn or host/database/user must be set")
		}
	}

	if c.Notify.TelegramToken != "" && c.Notify.TelegramChatID == "" {
		errs = append(errs, "notify: telegram_chat_id is required when telegram_token is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
