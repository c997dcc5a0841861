// Package cycle orchestrates one detection cycle end to end:
// poll markets → fetch trades → detect → exclude → research → score →
// curate → validate → rate-limit → send → record.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Vitor-VarelAI/Polymarket/internal/curation"
	"github.com/Vitor-VarelAI/Polymarket/internal/detect"
	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/notify"
	"github.com/Vitor-VarelAI/Polymarket/internal/observability"
	"github.com/Vitor-VarelAI/Polymarket/internal/ratelimit"
	"github.com/Vitor-VarelAI/Polymarket/internal/score"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// Defaults for the per-cycle knobs.
const (
	DefaultWorkers        = 4
	DefaultMarketLimit    = 100
	DefaultResearchBudget = 5 * time.Minute

	// defaultLookback bounds the first trade fetch when no feed cursor
	// has been persisted yet.
	defaultLookback = time.Hour

	// tradeFetchLimit caps one polling fetch.
	tradeFetchLimit = 1000
)

// MarketSource lists the monitored markets with current liquidity and odds.
type MarketSource interface {
	ListEvents(ctx context.Context, limit int) ([]*domain.Market, error)
}

// TradeSource polls the trade feed for records after a cursor.
type TradeSource interface {
	FetchSince(ctx context.Context, afterMs int64, limit int) ([]*domain.TradeRecord, error)
}

// TradeBuffer drains trades buffered by a live feed between cycles.
type TradeBuffer interface {
	Drain() []*domain.TradeRecord
}

// Researcher gathers evidence for one whale event.
type Researcher interface {
	Research(ctx context.Context, query domain.ResearchQuery) ([]domain.ResearchResult, error)
}

// Options wires a Runner. Markets, Trades (or Buffer), Detector,
// Filter, Stats, Research, Scorer, Curator, Limiter and Channel are
// required; the rest defaults.
type Options struct {
	Markets  MarketSource
	Trades   TradeSource
	Buffer   TradeBuffer // when set, trades come from the live feed instead of polling
	Progress storage.FeedProgressStore

	Detector *detect.Detector
	Filter   *detect.Filter
	Stats    *detect.StatsBuilder
	Research Researcher
	Scorer   *score.Scorer
	Curator  *curation.Curator
	Limiter  *ratelimit.Limiter
	Channel  notify.Channel

	// MarketFilter restricts monitoring; nil monitors every listed market.
	MarketFilter func(*domain.Market) bool

	MarketLimit    int
	Workers        int
	ResearchBudget time.Duration
	Now            func() time.Time
}

// Runner executes detection cycles. Stateless between runs except for
// the persisted stores behind its collaborators.
type Runner struct {
	opts Options
}

// New creates a Runner. Zero-valued knobs take their defaults.
func New(opts Options) *Runner {
	if opts.MarketLimit <= 0 {
		opts.MarketLimit = DefaultMarketLimit
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.ResearchBudget <= 0 {
		opts.ResearchBudget = DefaultResearchBudget
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{opts: opts}
}

// Result summarizes one cycle. Per-market failures land in Errors and
// never abort the cycle; only store unavailability does.
type Result struct {
	CycleID  string
	Markets  int
	Trades   int
	Events   int
	Excluded int
	Scored   int
	Eligible int
	Curated  int
	Sent     int
	Blocked  int
	Errors   []string
}

// Run executes one full detection cycle. The returned error is non-nil
// only for fatal conditions: the market registry unreachable, or a
// persisted store failing where rate limits could no longer be
// enforced. Everything else degrades per market or per candidate.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := r.opts.Now()
	result := &Result{CycleID: uuid.NewString()[:8]}
	logger := log.With().Str("cycle_id", result.CycleID).Logger()

	markets, err := r.loadMarkets(ctx)
	if err != nil {
		observability.RecordCycle("error", time.Since(started).Seconds())
		return result, fmt.Errorf("load markets: %w", err)
	}
	result.Markets = len(markets)
	observability.DefaultMetrics.MarketsPolled.Set(float64(len(markets)))

	trades, cursor, err := r.loadTrades(ctx, markets, started)
	if err != nil {
		observability.RecordCycle("error", time.Since(started).Seconds())
		return result, fmt.Errorf("load trades: %w", err)
	}
	result.Trades = len(trades)
	observability.DefaultMetrics.TradesProcessed.Add(float64(len(trades)))

	queue := curation.NewQueue()
	r.detectAndScore(ctx, markets, trades, queue, result, &logger)

	if err := r.curateAndSend(ctx, queue, result, &logger); err != nil {
		observability.RecordCycle("error", time.Since(started).Seconds())
		return result, err
	}

	r.saveCursor(ctx, cursor, &logger)

	observability.RecordCycle("ok", time.Since(started).Seconds())
	logger.Info().
		Int("markets", result.Markets).
		Int("trades", result.Trades).
		Int("events", result.Events).
		Int("excluded", result.Excluded).
		Int("eligible", result.Eligible).
		Int("sent", result.Sent).
		Int("blocked", result.Blocked).
		Int("errors", len(result.Errors)).
		Dur("took", time.Since(started)).
		Msg("Cycle complete")
	return result, nil
}

// loadMarkets fetches the active market set and applies the watch and
// short-horizon filters.
func (r *Runner) loadMarkets(ctx context.Context) ([]*domain.Market, error) {
	listed, err := r.opts.Markets.ListEvents(ctx, r.opts.MarketLimit)
	if err != nil {
		return nil, err
	}

	now := r.opts.Now()
	markets := make([]*domain.Market, 0, len(listed))
	for _, m := range listed {
		if !m.Active || m.Closed {
			continue
		}
		if r.opts.MarketFilter != nil && !r.opts.MarketFilter(m) {
			continue
		}
		if detect.IsExcludedMarket(m, now) {
			continue
		}
		markets = append(markets, m)
	}
	return markets, nil
}

// loadTrades drains the live buffer or polls the feed after the
// persisted cursor, returning the trades for monitored markets and the
// new cursor position. A progress store failure other than a missing
// cursor is fatal: without the cursor the same trades would be
// refetched forever.
func (r *Runner) loadTrades(ctx context.Context, markets []*domain.Market, now time.Time) ([]*domain.TradeRecord, *storage.FeedProgress, error) {
	monitored := make(map[string]bool, len(markets))
	for _, m := range markets {
		monitored[m.MarketID] = true
	}

	var raw []*domain.TradeRecord
	if r.opts.Buffer != nil {
		raw = r.opts.Buffer.Drain()
	} else {
		afterMs := now.Add(-defaultLookback).UnixMilli()
		if r.opts.Progress != nil {
			p, err := r.opts.Progress.GetLastProcessed(ctx)
			switch {
			case err == nil:
				afterMs = p.Timestamp
			case errors.Is(err, storage.ErrNotFound):
			default:
				return nil, nil, fmt.Errorf("load feed cursor: %w", err)
			}
		}
		fetched, err := r.opts.Trades.FetchSince(ctx, afterMs, tradeFetchLimit)
		if err != nil {
			return nil, nil, err
		}
		raw = fetched
	}

	var cursor *storage.FeedProgress
	trades := make([]*domain.TradeRecord, 0, len(raw))
	for _, t := range raw {
		if cursor == nil || t.Timestamp > cursor.Timestamp {
			cursor = &storage.FeedProgress{Timestamp: t.Timestamp, TradeID: t.TradeID}
		}
		if monitored[t.MarketID] {
			trades = append(trades, t)
		}
	}
	return trades, cursor, nil
}

// detectAndScore fans per-market detection out to the worker pool and
// pushes alert-eligible candidates onto the queue. Research runs under
// the cycle-wide budget; once it expires remaining events score without
// evidence and the candidates already queued still flush downstream.
func (r *Runner) detectAndScore(ctx context.Context, markets []*domain.Market, trades []*domain.TradeRecord, queue *curation.Queue, result *Result, logger *zerolog.Logger) {
	byMarket := make(map[string][]*domain.TradeRecord)
	for _, t := range trades {
		byMarket[t.MarketID] = append(byMarket[t.MarketID], t)
	}

	researchCtx, cancel := context.WithTimeout(ctx, r.opts.ResearchBudget)
	defer cancel()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, r.opts.Workers)
	)
	addErr := func(format string, args ...interface{}) {
		mu.Lock()
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
		mu.Unlock()
	}

	for _, m := range markets {
		window := byMarket[m.MarketID]
		if len(window) == 0 {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(m *domain.Market, window []*domain.TradeRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			events, err := r.opts.Detector.ProcessWindow(ctx, m, window)
			if err != nil {
				addErr("detect %s: %v", m.MarketID, err)
				return
			}
			mu.Lock()
			result.Events += len(events)
			mu.Unlock()

			for _, event := range events {
				observability.RecordWhaleEvent()
				excluded, reason, err := r.excludeEvent(ctx, event, trades)
				if err != nil {
					addErr("exclusion stats %s: %v", event.EventID, err)
					continue
				}
				if excluded {
					observability.RecordExclusion(reason)
					mu.Lock()
					result.Excluded++
					mu.Unlock()
					continue
				}

				evidence := r.researchEvent(researchCtx, m, event, logger)
				scored := r.opts.Scorer.Score(event, evidence, m.YesOdds, r.opts.Now())
				observability.RecordScored(scored.AlertEligible)
				mu.Lock()
				result.Scored++
				if scored.AlertEligible {
					result.Eligible++
				}
				mu.Unlock()
				if !scored.AlertEligible {
					continue
				}
				queue.Push(curation.BuildCandidate(scored, m, r.opts.Now().UnixMilli()))
			}
		}(m, window)
	}
	wg.Wait()
}

// excludeEvent runs the mechanical-wallet gate for one event.
func (r *Runner) excludeEvent(ctx context.Context, event *domain.WhaleEvent, window []*domain.TradeRecord) (bool, string, error) {
	if reason, ok := r.opts.Filter.Blacklisted(event.Wallet); ok {
		return true, reason, nil
	}
	stats, err := r.opts.Stats.Build(ctx, event.Wallet, window, r.opts.Now())
	if err != nil {
		return false, "", err
	}
	excluded, reason := r.opts.Filter.IsExcluded(stats)
	return excluded, reason, nil
}

// researchEvent gathers evidence under the cycle budget. A failed or
// budget-expired lookup degrades to no evidence: the event still
// scores, it just cannot reach the alert threshold.
func (r *Runner) researchEvent(ctx context.Context, m *domain.Market, event *domain.WhaleEvent, logger *zerolog.Logger) []domain.ResearchResult {
	if ctx.Err() != nil {
		observability.DefaultMetrics.ResearchFailures.WithLabelValues("budget_expired").Inc()
		logger.Warn().Str("event_id", event.EventID).Msg("Research budget expired, scoring without evidence")
		return nil
	}

	observability.DefaultMetrics.ResearchLookups.Inc()
	evidence, err := r.opts.Research.Research(ctx, domain.ResearchQuery{
		MarketID:  m.MarketID,
		Question:  m.Question,
		Tags:      m.Tags,
		Direction: event.Direction,
	})
	if err != nil {
		observability.DefaultMetrics.ResearchFailures.WithLabelValues("providers").Inc()
		logger.Warn().Err(err).Str("event_id", event.EventID).Msg("Research failed, scoring without evidence")
		return nil
	}
	return evidence
}

// curateAndSend drains the cycle's candidates through curation and the
// rate limiter. A limiter store failure is fatal before anything is
// sent; a delivery failure skips that candidate without recording it.
func (r *Runner) curateAndSend(ctx context.Context, queue *curation.Queue, result *Result, logger *zerolog.Logger) error {
	candidates := queue.Drain()
	if len(candidates) == 0 {
		return nil
	}

	items := r.opts.Curator.Curate(ctx, candidates)
	result.Curated = len(items)
	observability.DefaultMetrics.ItemsCurated.Add(float64(len(items)))

	for _, item := range items {
		alert := notify.BuildAlert(item, r.opts.Now())
		if alert == nil {
			continue
		}

		decision, err := r.opts.Limiter.Allow(ctx, alert.MarketID, r.opts.Now())
		if err != nil {
			return fmt.Errorf("rate limit check: %w", err)
		}
		if !decision.Allowed {
			result.Blocked++
			observability.RecordAlertBlocked(decision.Reason)
			logger.Info().
				Str("market_id", alert.MarketID).
				Str("reason", decision.Reason).
				Msg("Alert blocked by rate limiter")
			continue
		}

		if err := r.opts.Channel.Send(ctx, alert.Body); err != nil {
			observability.RecordSendError()
			result.Errors = append(result.Errors, fmt.Sprintf("send %s: %v", alert.AlertID, err))
			if errors.Is(err, notify.ErrNotConfigured) {
				logger.Warn().Msg("Notification channel not configured, skipping remaining sends")
				return nil
			}
			continue
		}
		if err := r.opts.Limiter.Record(ctx, alert, r.opts.Now()); err != nil {
			// A sent alert that cannot be recorded leaves quota state
			// unknown; stop sending rather than risk a double alert.
			return fmt.Errorf("record sent alert: %w", err)
		}
		result.Sent++
		observability.RecordAlertSent()
	}
	return nil
}

// saveCursor persists the feed position once the cycle's trades are
// fully processed. Failures are logged, not fatal: the next cycle
// refetches and the detector's replay guard absorbs the overlap.
func (r *Runner) saveCursor(ctx context.Context, cursor *storage.FeedProgress, logger *zerolog.Logger) {
	if cursor == nil || r.opts.Progress == nil || r.opts.Buffer != nil {
		return
	}
	if err := r.opts.Progress.SetLastProcessed(ctx, cursor); err != nil {
		logger.Warn().Err(err).Msg("Failed to persist feed cursor")
	}
}
