package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is centralized process configuration. Values are layered: defaults,
// then the YAML file, then a local .env file, then the process environment.
type Config struct {
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	HTTPPort    string `yaml:"http_port" envconfig:"HTTP_PORT"`

	DatabaseDriver string `yaml:"database_driver" envconfig:"DATABASE_DRIVER"`
	PostgresDSN    string `yaml:"postgres_dsn" envconfig:"POSTGRES_DSN"`
	SQLitePath     string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	AutoMigrate    bool   `yaml:"auto_migrate" envconfig:"AUTO_MIGRATE"`
	DBTracing      bool   `yaml:"db_tracing" envconfig:"DB_TRACING"`
	TracingStdout  bool   `yaml:"tracing_stdout" envconfig:"TRACING_STDOUT"`

	KafkaBrokers []string `yaml:"kafka_brokers" envconfig:"KAFKA_BROKERS"`

	TokenHashAlgorithm string        `yaml:"token_hash_algorithm" envconfig:"TOKEN_HASH_ALGORITHM"`
	TokenTTL           time.Duration `yaml:"token_ttl" envconfig:"TOKEN_TTL"`
	TokenBatchLimit    int           `yaml:"token_batch_limit" envconfig:"TOKEN_BATCH_LIMIT"`
	CastPrevalidate    bool          `yaml:"cast_prevalidate" envconfig:"CAST_PREVALIDATE"`

	OutboxPollInterval   time.Duration `yaml:"outbox_poll_interval" envconfig:"OUTBOX_POLL_INTERVAL"`
	OutboxBatchSize      int           `yaml:"outbox_batch_size" envconfig:"OUTBOX_BATCH_SIZE"`
	EnableBallotConsumer bool          `yaml:"enable_ballot_consumer" envconfig:"ENABLE_BALLOT_CONSUMER"`

	MetricsEnabled  bool          `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

func Default() Config {
	return Config{
		ServiceName:          "ballotbox",
		HTTPPort:             "8080",
		DatabaseDriver:       DriverPostgres,
		SQLitePath:           "ballotbox.db",
		KafkaBrokers:         []string{"localhost:9092"},
		TokenHashAlgorithm:   "sha256",
		TokenTTL:             24 * time.Hour,
		TokenBatchLimit:      5000,
		OutboxPollInterval:   2 * time.Second,
		OutboxBatchSize:      100,
		EnableBallotConsumer: true,
		MetricsEnabled:       true,
		ShutdownTimeout:      10 * time.Second,
	}
}

// Load builds the process configuration. An empty configFile falls back to
// the CONFIG_FILE environment variable; no file at all is fine.
func Load(configFile string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(configFile) == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	// .env never overrides variables already present in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}

	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("POSTGRES_DSN is required for the postgres driver")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}

// DSN returns the connection string for the selected driver.
func (c Config) DSN() string {
	if c.DatabaseDriver == DriverSQLite {
		return c.SQLitePath
	}
	return c.PostgresDSN
}

type contextKey struct{}

func WithContext(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

func FromContext(ctx context.Context) (Config, bool) {
	cfg, ok := ctx.Value(contextKey{}).(Config)
	return cfg, ok
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if value := strings.TrimSpace(item); value != "" {
			out = append(out, value)
		}
	}
	return out
}
