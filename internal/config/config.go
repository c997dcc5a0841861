// Package config loads the runtime configuration: typed environment
// variables plus the optional YAML watchlist of monitored markets.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting. Secrets stay empty when unset;
// the components behind them degrade to their not-configured paths
// instead of failing at startup.
type Config struct {
	// Persisted stores
	PostgresDSN   string `env:"POSTGRES_DSN"`
	ClickhouseDSN string `env:"CLICKHOUSE_DSN"`
	RedisURL      string `env:"REDIS_URL"`

	// Upstream APIs
	GammaBaseURL  string `env:"GAMMA_BASE_URL" envDefault:"https://gamma-api.polymarket.com"`
	TradesBaseURL string `env:"TRADES_BASE_URL" envDefault:"https://data-api.polymarket.com"`
	CLOBWSURL     string `env:"CLOB_WS_URL" envDefault:"wss://ws-subscriptions-clob.polymarket.com/ws/market"`
	LiveFeed      bool   `env:"LIVE_FEED" envDefault:"false"`

	// Research providers
	NewsAPIKey string `env:"NEWSAPI_KEY"`

	// Generative provider
	GroqAPIKey  string `env:"GROQ_API_KEY"`
	GroqBaseURL string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`

	// Delivery
	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID string `env:"TELEGRAM_CHAT_ID"`

	// Cycle tuning (parsed as seconds)
	PollIntervalSec   int `env:"POLL_INTERVAL_SEC" envDefault:"900"`
	ResearchBudgetSec int `env:"RESEARCH_BUDGET_SEC" envDefault:"300"`

	// Computed durations (not from env)
	PollInterval   time.Duration `env:"-"`
	ResearchBudget time.Duration `env:"-"`

	MarketLimit  int    `env:"MARKET_LIMIT" envDefault:"100"`
	CycleWorkers int    `env:"CYCLE_WORKERS" envDefault:"4"`
	Watchlist    string `env:"WATCHLIST_PATH"`

	// Observability
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"9090"`
}

// Load reads .env when present, then parses the environment. A missing
// .env file is not an error; explicit environment always wins.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.PollInterval = time.Duration(cfg.PollIntervalSec) * time.Second
	cfg.ResearchBudget = time.Duration(cfg.ResearchBudgetSec) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no safe fallback.
func (c *Config) Validate() error {
	if c.PollInterval < time.Minute {
		return fmt.Errorf("poll interval must be at least 60 seconds, got %d", c.PollIntervalSec)
	}
	if c.ResearchBudget < 10*time.Second {
		return fmt.Errorf("research budget must be at least 10 seconds, got %d", c.ResearchBudgetSec)
	}
	if c.MarketLimit <= 0 {
		return fmt.Errorf("market limit must be positive, got %d", c.MarketLimit)
	}
	if c.CycleWorkers <= 0 {
		return fmt.Errorf("cycle workers must be positive, got %d", c.CycleWorkers)
	}
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == "") {
		return fmt.Errorf("telegram token and chat id must be set together")
	}
	return nil
}

// Mask shortens a secret for startup logs: first and last two
// characters with the middle elided.
func Mask(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 6 {
		return "****"
	}
	return s[:2] + "****" + s[len(s)-2:]
}
