// Package config loads service configuration from environment variables,
// optionally seeded from a .env file for local development.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port   string `envconfig:"PORT" default:"8080"`
	DBPath string `envconfig:"DB_PATH" default:"stockboard.db"`

	Provider  Provider
	Collector Collector

	// QuoteTTL is how long a stored quote is served without revalidation.
	QuoteTTL time.Duration `envconfig:"QUOTE_TTL" default:"5m"`
	Workers  int           `envconfig:"WORKERS" default:"5"`
}

type Provider struct {
	APIKey  string        `envconfig:"ALPHAVANTAGE_API_KEY"`
	BaseURL string        `envconfig:"ALPHAVANTAGE_BASE_URL" default:"https://www.alphavantage.co/query"`
	Timeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"15s"`
	// RequestsPerMinute paces outgoing calls below the provider's quota.
	RequestsPerMinute int `envconfig:"PROVIDER_REQUESTS_PER_MINUTE" default:"5"`
}

type Collector struct {
	Interval time.Duration `envconfig:"COLLECT_INTERVAL" default:"5m"`
	Symbols  []string      `envconfig:"COLLECT_SYMBOLS" default:"AAPL,MSFT,GOOGL,AMZN,TSLA"`
}

// Load reads the environment into a Config. A missing .env file is not an
// error; production environments set variables directly.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
