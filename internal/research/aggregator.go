package research

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/observability"
)

// DefaultQueryBudget bounds one research fan-out. The cycle-wide
// research budget arrives through the context deadline.
const DefaultQueryBudget = 45 * time.Second

const (
	breakerConsecutiveFailures = 3
	breakerOpenTimeout         = 10 * time.Minute
)

// Aggregator fans a research query out to every configured provider,
// guarded by a per-provider circuit breaker and backed by a shared
// result cache.
type Aggregator struct {
	providers []Provider
	breakers  []*gobreaker.CircuitBreaker
	cache     Cache
	budget    time.Duration
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithQueryBudget caps the wall time of one research fan-out.
func WithQueryBudget(d time.Duration) AggregatorOption {
	return func(a *Aggregator) { a.budget = d }
}

// NewAggregator creates an aggregator over providers. cache must not be
// nil; use NewMemoryCache when no Redis is configured.
func NewAggregator(providers []Provider, cache Cache, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		providers: providers,
		cache:     cache,
		budget:    DefaultQueryBudget,
	}
	for _, opt := range opts {
		opt(a)
	}
	for _, p := range a.providers {
		a.breakers = append(a.breakers, newProviderBreaker(p.Name()))
	}
	return a
}

func newProviderBreaker(name string) *gobreaker.CircuitBreaker {
	st := gobreaker.Settings{Name: name}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= breakerConsecutiveFailures
	}
	st.Interval = 0
	st.Timeout = breakerOpenTimeout
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().
			Str("provider", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("Research provider breaker state changed")
	}
	return gobreaker.NewCircuitBreaker(st)
}

// Research gathers evidence for the query from all providers. A failed
// provider is skipped for this lookup; the returned error is non-nil
// only when every provider failed. Fully successful lookups are cached
// for CacheTTL.
func (a *Aggregator) Research(ctx context.Context, query domain.ResearchQuery) ([]domain.ResearchResult, error) {
	key := query.CacheKey()
	if cached, ok := a.cache.Get(ctx, key); ok {
		observability.DefaultMetrics.ResearchCacheHits.Inc()
		log.Debug().Str("market_id", query.MarketID).Msg("Research cache hit")
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.budget)
	defer cancel()

	perProvider := make([][]domain.ResearchResult, len(a.providers))
	errs := make([]error, len(a.providers))

	var wg sync.WaitGroup
	for i, p := range a.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			out, err := a.breakers[i].Execute(func() (interface{}, error) {
				return p.Search(ctx, query)
			})
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", p.Name(), err)
				return
			}
			perProvider[i], _ = out.([]domain.ResearchResult)
		}(i, p)
	}
	wg.Wait()

	var results []domain.ResearchResult
	failed := 0
	for i := range a.providers {
		if errs[i] != nil {
			failed++
			log.Warn().Err(errs[i]).Str("market_id", query.MarketID).Msg("Research provider failed")
			continue
		}
		results = append(results, perProvider[i]...)
	}

	if len(a.providers) > 0 && failed == len(a.providers) {
		return nil, errors.Join(errs...)
	}
	if failed == 0 {
		a.cache.Set(ctx, key, results)
	}

	log.Info().
		Str("market_id", query.MarketID).
		Int("results", len(results)).
		Int("providers_failed", failed).
		Msg("Research complete")

	return results, nil
}
