// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

// Config holds all application configuration loaded from environment variables.
// This struct uses github.com/caarlos0/env for automatic environment variable parsing.
//
// ============================================================
// DEVELOPER: Add new configuration fields here.
// ============================================================
// Use struct tags to define:
// - `env:"VAR_NAME"` - the environment variable name
// - `env:",required"` - make it required
// - `envDefault:"value"` - set a default value
//
// User-facing alert settings (chat format, sound file, volume)
// are NOT configured here. They live in the settings YAML file
// at SETTINGS_PATH and are edited through the settings window.
// ============================================================
type Config struct {
	// ============================================================
	// Service configuration
	// ============================================================
	MetricsPort int    `env:"METRICS_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"ExtendDoorbell"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`

	// ============================================================
	// Doorbell configuration
	// ============================================================
	SettingsPath string `env:"SETTINGS_PATH" envDefault:"config/doorbell.yaml"`
	ScenarioPath string `env:"SCENARIO_PATH" envDefault:"config/scenario.yaml"`
	AssetsDir    string `env:"ASSETS_DIR" envDefault:"assets"`
	// TickRate overrides the scenario tick rate when non-zero.
	TickRate            int  `env:"TICK_RATE" envDefault:"0"`
	AbsenceThreshold    int  `env:"ABSENCE_THRESHOLD_TICKS" envDefault:"60"`
	ArrivalGraceMs      int  `env:"ARRIVAL_GRACE_MS" envDefault:"1000"`
	MaxEvictionsPerTick int  `env:"MAX_EVICTIONS_PER_TICK" envDefault:"0"`
	ReadStdin           bool `env:"READ_STDIN" envDefault:"true"`

	// ============================================================
	// Journal configuration
	// ============================================================
	JournalEnabled    bool `env:"JOURNAL_ENABLED" envDefault:"false"`
	JournalWorkers    int  `env:"JOURNAL_WORKERS" envDefault:"2"`
	JournalQueueSize  int  `env:"JOURNAL_QUEUE_SIZE" envDefault:"256"`
	JournalMaxEntries int  `env:"JOURNAL_MAX_ENTRIES" envDefault:"500"`
	JournalTTLHours   int  `env:"JOURNAL_TTL_HOURS" envDefault:"720"`

	// ============================================================
	// Redis configuration (used only when the journal is enabled)
	// ============================================================
	RedisHost         string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisMaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisRetryDelayMs int    `env:"REDIS_RETRY_DELAY_MS" envDefault:"1000"`

	// ============================================================
	// Telemetry configuration
	// ============================================================
	OtelEnabled    bool   `env:"OTEL_ENABLED" envDefault:"false"`
	ZipkinEndpoint string `env:"OTEL_EXPORTER_ZIPKIN_ENDPOINT" envDefault:"http://localhost:9411/api/v2/spans"`
}
