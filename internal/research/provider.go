package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// Provider is one research evidence source.
type Provider interface {
	// Name identifies the provider in logs, cache keys, and breaker state.
	Name() string
	// Search returns evidence for the query, best result first.
	Search(ctx context.Context, query domain.ResearchQuery) ([]domain.ResearchResult, error)
}

const (
	providerTimeout  = 30 * time.Second
	maxExcerptLen    = 300
	maxProviderItems = 5

	fetchRetries    = 2
	fetchRetryDelay = 500 * time.Millisecond
)

// fetch GETs url with bounded retries and exponential backoff. Retries
// cover transport errors, 429, and 5xx; any other status fails
// immediately.
func fetch(ctx context.Context, client *http.Client, limiter *rate.Limiter, url string, header http.Header) ([]byte, error) {
	delay := fetchRetryDelay
	var lastErr error

	for attempt := 0; attempt <= fetchRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		default:
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, clip(string(body), 200))
		}
	}

	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// squish collapses all whitespace runs to single spaces. Feed entries
// wrap long titles and abstracts across lines.
func squish(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// relevanceForRank assigns a positional relevance weight to the i-th
// result of a provider that returns items best-first.
func relevanceForRank(i int) float64 {
	r := 1.0 - 0.1*float64(i)
	if r < 0.1 {
		r = 0.1
	}
	return r
}

// parsePublished converts an RFC 3339 timestamp to Unix ms, 0 if
// missing or malformed.
func parsePublished(s string) int64 {
	if s == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
