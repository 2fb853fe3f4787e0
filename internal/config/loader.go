// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads configuration from environment variables.
// It attempts to load from .env file first (for local development),
// then parses environment variables into the Config struct.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file found or error loading it: %v", err)
	} else {
		logrus.Infof("loaded environment variables from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration.
//
// ============================================================
// DEVELOPER: Add custom validation logic here.
// ============================================================
// This function is called after environment variables are parsed.
// Keep it to ranges and cross-field checks; missing files are
// handled by the components that read them.
// ============================================================
func (c *Config) Validate() error {
	// METRICS_PORT=0 disables the metrics server
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid METRICS_PORT: %d (must be 0-65535)", c.MetricsPort)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %q (must be text or json)", c.LogFormat)
	}

	if c.ScenarioPath == "" {
		return fmt.Errorf("SCENARIO_PATH is required")
	}
	if c.TickRate < 0 || c.TickRate > 1000 {
		return fmt.Errorf("invalid TICK_RATE: %d (must be 0-1000)", c.TickRate)
	}
	if c.AbsenceThreshold < 1 {
		return fmt.Errorf("invalid ABSENCE_THRESHOLD_TICKS: %d (must be positive)", c.AbsenceThreshold)
	}
	if c.ArrivalGraceMs < 0 {
		return fmt.Errorf("invalid ARRIVAL_GRACE_MS: %d (must be non-negative)", c.ArrivalGraceMs)
	}
	if c.MaxEvictionsPerTick < 0 {
		return fmt.Errorf("invalid MAX_EVICTIONS_PER_TICK: %d (must be non-negative)", c.MaxEvictionsPerTick)
	}

	if c.JournalEnabled {
		if c.JournalWorkers < 1 {
			return fmt.Errorf("invalid JOURNAL_WORKERS: %d (must be positive)", c.JournalWorkers)
		}
		if c.JournalQueueSize < 1 {
			return fmt.Errorf("invalid JOURNAL_QUEUE_SIZE: %d (must be positive)", c.JournalQueueSize)
		}
		if c.RedisHost == "" {
			return fmt.Errorf("REDIS_HOST is required when the journal is enabled")
		}
	}

	if c.OtelEnabled && c.ZipkinEndpoint == "" {
		return fmt.Errorf("OTEL_EXPORTER_ZIPKIN_ENDPOINT is required when telemetry is enabled")
	}

	return nil
}

// ArrivalGrace returns ARRIVAL_GRACE_MS as a duration.
func (c *Config) ArrivalGrace() time.Duration {
	return time.Duration(c.ArrivalGraceMs) * time.Millisecond
}

// JournalTTL returns JOURNAL_TTL_HOURS as a duration.
func (c *Config) JournalTTL() time.Duration {
	return time.Duration(c.JournalTTLHours) * time.Hour
}

// RedisRetryDelay returns REDIS_RETRY_DELAY_MS as a duration.
func (c *Config) RedisRetryDelay() time.Duration {
	return time.Duration(c.RedisRetryDelayMs) * time.Millisecond
}
