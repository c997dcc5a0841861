package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Vitor-VarelAI/Polymarket/internal/config"
	"github.com/Vitor-VarelAI/Polymarket/internal/curation"
	"github.com/Vitor-VarelAI/Polymarket/internal/cycle"
	"github.com/Vitor-VarelAI/Polymarket/internal/detect"
	"github.com/Vitor-VarelAI/Polymarket/internal/digest"
	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/llm"
	"github.com/Vitor-VarelAI/Polymarket/internal/notify"
	"github.com/Vitor-VarelAI/Polymarket/internal/polymarket"
	"github.com/Vitor-VarelAI/Polymarket/internal/ratelimit"
	"github.com/Vitor-VarelAI/Polymarket/internal/research"
	"github.com/Vitor-VarelAI/Polymarket/internal/scanner"
	"github.com/Vitor-VarelAI/Polymarket/internal/score"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
	chstore "github.com/Vitor-VarelAI/Polymarket/internal/storage/clickhouse"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage/memory"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage/migrations"
	pgstore "github.com/Vitor-VarelAI/Polymarket/internal/storage/postgres"
	"github.com/Vitor-VarelAI/Polymarket/internal/track"
)

// app holds the wired components one command needs. Stores fall back
// to in-memory implementations when their backend is not configured,
// which keeps single-shot commands usable in development but loses
// state between runs.
type app struct {
	cfg *config.Config

	pool   *pgstore.Pool
	chConn *chstore.Conn

	history   storage.WalletHistoryStore
	dayCounts storage.WalletDayCountStore
	sent      storage.SentAlertStore
	progress  storage.FeedProgressStore
	outcomes  storage.OutcomeStore

	gamma    *polymarket.GammaClient
	feed     *polymarket.Feed
	channel  notify.Channel
	runner   *cycle.Runner
	scanner  *scanner.Scanner
	digests  *digest.Builder
	schedule *digest.Scheduler
	tracker  *track.Tracker
}

// buildApp loads configuration, connects the configured backends, runs
// migrations and wires the pipeline.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().
		Str("postgres", config.Mask(cfg.PostgresDSN)).
		Str("clickhouse", config.Mask(cfg.ClickhouseDSN)).
		Str("newsapi_key", config.Mask(cfg.NewsAPIKey)).
		Str("groq_key", config.Mask(cfg.GroqAPIKey)).
		Str("telegram_token", config.Mask(cfg.TelegramToken)).
		Bool("live_feed", cfg.LiveFeed).
		Msg("Configuration loaded")

	a := &app{cfg: cfg}

	if err := a.connectStores(ctx); err != nil {
		a.Close()
		return nil, err
	}

	watchlist, err := config.LoadWatchlist(cfg.Watchlist)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.gamma = polymarket.NewGammaClientWithBase(cfg.GammaBaseURL)
	trades := polymarket.NewTradesClientWithBase(cfg.TradesBaseURL)
	if cfg.LiveFeed {
		a.feed = polymarket.NewFeed(cfg.CLOBWSURL)
	}

	providers := []research.Provider{
		research.NewGoogleNewsProvider(research.GoogleNewsBaseURL),
		research.NewArxivProvider(research.ArxivBaseURL),
	}
	if cfg.NewsAPIKey != "" {
		providers = append(providers, research.NewNewsAPIProvider(research.NewsAPIBaseURL, cfg.NewsAPIKey))
	}
	aggregator := research.NewAggregator(providers, research.NewCache(ctx, cfg.RedisURL))

	var completer curation.Completer
	if cfg.GroqAPIKey != "" {
		completer = llm.NewClient(cfg.GroqBaseURL, cfg.GroqAPIKey)
	} else {
		log.Warn().Msg("GROQ_API_KEY unset, curation uses the deterministic fallback")
	}
	curator := curation.NewCurator(completer)

	a.channel = notify.NewTelegram("", cfg.TelegramToken, cfg.TelegramChatID)

	marketFilter := func(m *domain.Market) bool {
		if !watchlist.Match(m) {
			return false
		}
		watchlist.Apply(m)
		return true
	}

	opts := cycle.Options{
		Markets:        a.gamma,
		Trades:         trades,
		Progress:       a.progress,
		Detector:       detect.NewDetector(a.history, a.dayCounts),
		Filter:         detect.NewFilter(),
		Stats:          detect.NewStatsBuilder(a.dayCounts),
		Research:       aggregator,
		Scorer:         score.NewScorer(),
		Curator:        curator,
		Limiter:        ratelimit.NewLimiter(a.sent),
		Channel:        a.channel,
		MarketFilter:   marketFilter,
		MarketLimit:    cfg.MarketLimit,
		Workers:        cfg.CycleWorkers,
		ResearchBudget: cfg.ResearchBudget,
	}
	if a.feed != nil {
		opts.Buffer = a.feed
	}
	a.runner = cycle.New(opts)

	a.scanner = scanner.NewScanner(a.gamma)
	a.digests = digest.NewBuilder(curator)
	a.schedule = digest.NewScheduler()
	a.tracker = track.NewTracker(a.sent, a.outcomes, a.gamma)

	return a, nil
}

// connectStores wires PostgreSQL and ClickHouse when configured and
// falls back to memory stores otherwise.
func (a *app) connectStores(ctx context.Context) error {
	if a.cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, a.cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return fmt.Errorf("postgres migrations: %w", err)
		}
		a.pool = pool
		a.history = pgstore.NewWalletHistoryStore(pool)
		a.dayCounts = pgstore.NewWalletDayCountStore(pool)
		a.sent = pgstore.NewSentAlertStore(pool)
		a.progress = pgstore.NewFeedProgressStore(pool)
	} else {
		log.Warn().Msg("POSTGRES_DSN unset, using in-memory stores (state is lost on exit)")
		a.history = memory.NewWalletHistoryStore()
		a.dayCounts = memory.NewWalletDayCountStore()
		a.sent = memory.NewSentAlertStore()
		a.progress = memory.NewFeedProgressStore()
	}

	if a.cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, a.cfg.ClickhouseDSN)
		if err != nil {
			return fmt.Errorf("clickhouse migrations: %w", err)
		}
		a.chConn = conn
		a.outcomes = chstore.NewOutcomeStore(conn)
	} else {
		a.outcomes = memory.NewOutcomeStore()
	}
	return nil
}

// Close releases backend connections.
func (a *app) Close() {
	if a.feed != nil {
		a.feed.Stop()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.chConn != nil {
		if err := a.chConn.Close(); err != nil {
			log.Warn().Err(err).Msg("Closing clickhouse connection failed")
		}
	}
}
