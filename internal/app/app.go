// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/AccelByte/extend-doorbell/internal/bootstrap"
	"github.com/AccelByte/extend-doorbell/internal/config"
	"github.com/AccelByte/extend-doorbell/internal/server"
	"github.com/AccelByte/extend-doorbell/pkg/audio"
	"github.com/AccelByte/extend-doorbell/pkg/host/replay"
	"github.com/AccelByte/extend-doorbell/pkg/journal"
	"github.com/AccelByte/extend-doorbell/pkg/plugin"
	"github.com/AccelByte/extend-doorbell/pkg/presence"
	"github.com/AccelByte/extend-doorbell/pkg/settings"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	shutdownTelemetry func(context.Context) error

	host   *replay.Host
	plugin *plugin.Plugin
}

// New creates and initializes a new application instance.
//
// ============================================================
// DEVELOPER: Application initialization order
// ============================================================
// Components are initialized in dependency order:
// 1. Redis (only when the visit journal is enabled)
// 2. User settings (YAML, falls back to defaults)
// 3. Replay scenario (drives the host interfaces)
// 4. External services (journal, sound backend)
// 5. Plugin (tracker, silence timer, alerts)
// 6. Metrics and health server
// 7. Telemetry (OpenTelemetry tracing)
// ============================================================
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	// ============================================================
	// Step 1: Initialize Redis
	// ============================================================
	if cfg.JournalEnabled {
		if err := app.initRedis(ctx); err != nil {
			return nil, fmt.Errorf("failed to init Redis: %w", err)
		}
	}

	// ============================================================
	// Step 2: Load user settings
	// ============================================================
	// A missing or corrupt settings file is not fatal: the
	// defaults are used and the error is logged.
	// ============================================================
	userSettings, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		if !errors.Is(err, settings.ErrConfigLoad) {
			return nil, err
		}
		logrus.Warnf("%v; using default settings", err)
	} else {
		logrus.Infof("loaded settings from %s", cfg.SettingsPath)
	}

	// ============================================================
	// Step 3: Load replay scenario
	// ============================================================
	scenario, err := replay.LoadScenario(cfg.ScenarioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario from %s: %w", cfg.ScenarioPath, err)
	}
	if cfg.TickRate > 0 {
		scenario.TickRate = cfg.TickRate
	}
	logrus.Infof("loaded scenario from %s (%d steps, %d ticks/s)", cfg.ScenarioPath, len(scenario.Steps), scenario.TickRate)

	// ============================================================
	// Step 4: Initialize external services
	// ============================================================
	visitJournal := bootstrap.InitJournal(app.redisClient, bootstrap.JournalOptions{
		Workers:    cfg.JournalWorkers,
		QueueSize:  cfg.JournalQueueSize,
		MaxEntries: cfg.JournalMaxEntries,
		TTL:        cfg.JournalTTL(),
	})
	opener := audio.NewOpener(nil)

	// ============================================================
	// Step 5: Bootstrap the plugin
	// ============================================================
	app.host = replay.New(scenario, os.Stdout)
	app.plugin, err = bootstrap.InitPlugin(app.host, bootstrap.PluginOptions{
		Settings:     userSettings,
		SettingsPath: cfg.SettingsPath,
		Tracker: presence.Options{
			AbsenceThreshold:    cfg.AbsenceThreshold,
			ArrivalGrace:        cfg.ArrivalGrace(),
			MaxEvictionsPerTick: cfg.MaxEvictionsPerTick,
		},
		Opener:    opener,
		AssetsDir: cfg.AssetsDir,
		Journal:   visitJournal,
	})
	if err != nil {
		visitJournal.Close()
		return nil, err
	}

	// ============================================================
	// Step 6: Setup metrics server
	// ============================================================
	if cfg.MetricsPort > 0 {
		var health server.HealthCheck
		if rj, ok := visitJournal.(*journal.RedisJournal); ok {
			health = rj.Ping
		}
		app.metricsServer, err = server.NewMetricsServer(cfg.MetricsPort, health)
		if err != nil {
			return nil, fmt.Errorf("failed to setup metrics server: %w", err)
		}
	}

	// ============================================================
	// Step 7: Setup telemetry
	// ============================================================
	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(cfg.ZipkinEndpoint, cfg.ServiceName, cfg.Environment)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized successfully")

	return app, nil
}

// initRedis initializes the Redis client.
func (a *App) initRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         a.cfg.RedisHost + ":" + a.cfg.RedisPort,
		Password:     a.cfg.RedisPassword,
		DB:           0, // use default DB
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.cfg.RedisRetryDelay()
	maxRetries := backoff.WithContext(backoff.WithMaxRetries(b, uint64(a.cfg.RedisMaxRetries)), ctx)

	err := backoff.Retry(
		func() error {
			_, err := client.Ping(ctx).Result()
			if err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		maxRetries,
	)

	if err != nil {
		client.Close()
		return err
	}

	a.redisClient = client
	logrus.Info("Redis client initialized")
	return nil
}
