package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Redis backs the recommendation cache and the analysis queue. Both
	// degrade to no-ops when unset.
	RedisURL string        `envconfig:"REDIS_URL"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"1h"`

	ArxivEnabled           bool          `envconfig:"ARXIV_ENABLED" default:"true"`
	SemanticScholarEnabled bool          `envconfig:"SEMANTIC_SCHOLAR_ENABLED" default:"true"`
	ProviderConnectTimeout time.Duration `envconfig:"PROVIDER_CONNECT_TIMEOUT" default:"15s"`
	ProviderReadTimeout    time.Duration `envconfig:"PROVIDER_READ_TIMEOUT" default:"60s"`

	GenerateDelay time.Duration `envconfig:"GENERATE_DELAY" default:"2s"`

	SentryDSN         string  `envconfig:"SENTRY_DSN"`
	SentryEnvironment string  `envconfig:"SENTRY_ENVIRONMENT" default:"development"`
	SentrySampleRate  float64 `envconfig:"SENTRY_SAMPLE_RATE" default:"1.0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("PAPERDESK", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}
