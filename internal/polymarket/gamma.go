package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// GammaBaseURL is the Polymarket Gamma API endpoint for market data.
const GammaBaseURL = "https://gamma-api.polymarket.com"

// DefaultMarketLimit is the number of events fetched per scan.
const DefaultMarketLimit = 200

// GammaClient reads markets, odds and liquidity from the Gamma API.
// Read-only, no auth.
type GammaClient struct {
	http *HTTPClient
}

// NewGammaClient creates a Gamma API client.
func NewGammaClient(opts ...ClientOption) *GammaClient {
	return NewGammaClientWithBase(GammaBaseURL, opts...)
}

// NewGammaClientWithBase creates a Gamma API client against a custom base URL.
func NewGammaClientWithBase(baseURL string, opts ...ClientOption) *GammaClient {
	return &GammaClient{http: NewHTTPClient(baseURL, opts...)}
}

// gammaTag is a topical tag attached to an event.
type gammaTag struct {
	Label string `json:"label"`
}

// gammaMarket is a market object as returned by the Gamma API.
// Array-valued fields arrive as JSON arrays encoded into strings.
type gammaMarket struct {
	ID            string  `json:"id"`
	Question      string  `json:"question"`
	Slug          string  `json:"slug"`
	Active        bool    `json:"active"`
	Closed        bool    `json:"closed"`
	Liquidity     string  `json:"liquidity"`
	LiquidityNum  float64 `json:"liquidityNum"`
	VolumeNum     float64 `json:"volumeNum"`
	Outcomes      string  `json:"outcomes"`      // JSON array as string
	OutcomePrices string  `json:"outcomePrices"` // JSON array as string
	ClobTokenIDs  string  `json:"clobTokenIds"`  // JSON array as string
	EndDate       string  `json:"endDate"`
}

// gammaEvent is an event object as returned by /events. Liquidity and volume
// arrive as numbers here but as strings on /markets, hence json.Number.
type gammaEvent struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Slug      string        `json:"slug"`
	Liquidity json.Number   `json:"liquidity"`
	Volume    json.Number   `json:"volume"`
	EndDate   string        `json:"endDate"`
	Tags      []gammaTag    `json:"tags"`
	Markets   []gammaMarket `json:"markets"`
}

// ListEvents fetches active events ordered by volume descending and maps
// each binary-outcome event to a domain.Market. Multi-outcome events are
// skipped.
func (g *GammaClient) ListEvents(ctx context.Context, limit int) ([]*domain.Market, error) {
	if limit <= 0 {
		limit = DefaultMarketLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("active", "true")
	query.Set("order", "volume")
	query.Set("ascending", "false")

	var events []gammaEvent
	if err := g.http.getJSON(ctx, "/events", query, &events); err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}

	markets := make([]*domain.Market, 0, len(events))
	for i := range events {
		if m := mapEvent(&events[i]); m != nil {
			markets = append(markets, m)
		}
	}
	return markets, nil
}

// GetEventBySlug fetches a single event. Returns nil when the slug matches
// nothing or the event is not a binary market.
func (g *GammaClient) GetEventBySlug(ctx context.Context, slug string) (*domain.Market, error) {
	query := url.Values{}
	query.Set("slug", slug)

	var events []gammaEvent
	if err := g.http.getJSON(ctx, "/events", query, &events); err != nil {
		return nil, fmt.Errorf("fetch event %s: %w", slug, err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return mapEvent(&events[0]), nil
}

// GetMarketByID fetches a single market directly from /markets, which
// still serves markets that have closed and left the active event
// listings. Market ids fall back to slugs for events whose primary
// market carries no id, so a miss retries as a slug lookup. Returns nil
// when neither matches.
func (g *GammaClient) GetMarketByID(ctx context.Context, marketID string) (*domain.Market, error) {
	if marketID == "" {
		return nil, fmt.Errorf("empty market id")
	}

	query := url.Values{}
	query.Set("id", marketID)

	var markets []gammaMarket
	if err := g.http.getJSON(ctx, "/markets", query, &markets); err != nil {
		return nil, fmt.Errorf("fetch market %s: %w", marketID, err)
	}
	if len(markets) == 0 {
		query = url.Values{}
		query.Set("slug", marketID)
		if err := g.http.getJSON(ctx, "/markets", query, &markets); err != nil {
			return nil, fmt.Errorf("fetch market %s: %w", marketID, err)
		}
	}
	if len(markets) == 0 {
		return nil, nil
	}
	return mapMarket(&markets[0]), nil
}

// AssetIndex maps CLOB token ids to their market and outcome for the top
// active events, so the WebSocket feed can resolve trades. Only binary
// YES/NO markets are indexed.
func (g *GammaClient) AssetIndex(ctx context.Context, limit int) (map[string]AssetMeta, error) {
	if limit <= 0 {
		limit = DefaultMarketLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("active", "true")
	query.Set("order", "volume")
	query.Set("ascending", "false")

	var events []gammaEvent
	if err := g.http.getJSON(ctx, "/events", query, &events); err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}

	index := make(map[string]AssetMeta)
	for i := range events {
		ev := &events[i]
		if len(ev.Markets) == 0 {
			continue
		}
		primary := &ev.Markets[0]

		outcomes, err := decodeStringArray(primary.Outcomes)
		if err != nil || len(outcomes) != 2 {
			continue
		}
		tokens, err := decodeStringArray(primary.ClobTokenIDs)
		if err != nil || len(tokens) != len(outcomes) {
			continue
		}

		marketID := primary.ID
		if marketID == "" {
			marketID = ev.Slug
		}
		for j, token := range tokens {
			if token == "" {
				continue
			}
			index[token] = AssetMeta{MarketID: marketID, Outcome: outcomes[j]}
		}
	}
	return index, nil
}

// mapEvent converts a Gamma event to a domain.Market. Returns nil for events
// without a simple YES/NO primary market.
func mapEvent(ev *gammaEvent) *domain.Market {
	if len(ev.Markets) == 0 {
		return nil
	}
	primary := &ev.Markets[0]

	yesName, noName, yesPrice, ok := binaryPrices(primary)
	if !ok {
		return nil
	}

	title := ev.Title
	if title == "" {
		title = primary.Question
	}

	tags := make([]string, 0, len(ev.Tags))
	for _, t := range ev.Tags {
		if t.Label != "" {
			tags = append(tags, t.Label)
		}
	}

	endDate := ev.EndDate
	if endDate == "" {
		endDate = primary.EndDate
	}

	marketID := primary.ID
	if marketID == "" {
		marketID = ev.Slug
	}

	return &domain.Market{
		MarketID:     marketID,
		Slug:         ev.Slug,
		Question:     title,
		YesOutcome:   yesName,
		NoOutcome:    noName,
		Category:     DetectCategory(title, tags),
		Tags:         tags,
		LiquidityUSD: eventLiquidity(ev, primary),
		YesOdds:      yesPrice * 100,
		EndDate:      parseEndDate(endDate),
		Active:       primary.Active && !primary.Closed,
		Closed:       primary.Closed,
	}
}

// mapMarket converts a bare /markets object to a domain.Market. Returns
// nil for markets that are not simple YES/NO.
func mapMarket(m *gammaMarket) *domain.Market {
	yesName, noName, yesPrice, ok := binaryPrices(m)
	if !ok {
		return nil
	}

	return &domain.Market{
		MarketID:     m.ID,
		Slug:         m.Slug,
		Question:     m.Question,
		YesOutcome:   yesName,
		NoOutcome:    noName,
		Category:     DetectCategory(m.Question, nil),
		LiquidityUSD: marketLiquidity(m),
		YesOdds:      yesPrice * 100,
		EndDate:      parseEndDate(m.EndDate),
		Active:       m.Active && !m.Closed,
		Closed:       m.Closed,
	}
}

// binaryPrices extracts the YES/NO outcome names and the YES price from
// a market's encoded arrays. ok is false for anything but a two-outcome
// YES/NO market with a parseable price.
func binaryPrices(m *gammaMarket) (yesName, noName string, yesPrice float64, ok bool) {
	outcomes, err := decodeStringArray(m.Outcomes)
	if err != nil || len(outcomes) != 2 {
		return "", "", 0, false
	}
	yesIdx, noIdx := -1, -1
	for i, name := range outcomes {
		switch strings.ToLower(name) {
		case "yes":
			yesIdx = i
		case "no":
			noIdx = i
		}
	}
	if yesIdx < 0 || noIdx < 0 {
		return "", "", 0, false
	}

	prices, err := decodeStringArray(m.OutcomePrices)
	if err != nil || len(prices) != len(outcomes) {
		return "", "", 0, false
	}
	price, err := strconv.ParseFloat(prices[yesIdx], 64)
	if err != nil {
		return "", "", 0, false
	}
	return outcomes[yesIdx], outcomes[noIdx], price, true
}

// eventLiquidity prefers the event-level figure, falling back to the market.
func eventLiquidity(ev *gammaEvent, m *gammaMarket) float64 {
	if v, err := ev.Liquidity.Float64(); err == nil && v > 0 {
		return v
	}
	return marketLiquidity(m)
}

// marketLiquidity reads the market-level figure, which /markets serves as
// a string and /events as a number.
func marketLiquidity(m *gammaMarket) float64 {
	if m.LiquidityNum > 0 {
		return m.LiquidityNum
	}
	if v, err := strconv.ParseFloat(m.Liquidity, 64); err == nil {
		return v
	}
	return 0
}

// decodeStringArray parses a JSON array that the API encodes into a string,
// e.g. "[\"Yes\", \"No\"]".
func decodeStringArray(encoded string) ([]string, error) {
	if encoded == "" {
		return nil, fmt.Errorf("empty array field")
	}
	var out []string
	if err := json.Unmarshal([]byte(encoded), &out); err != nil {
		return nil, fmt.Errorf("decode array field: %w", err)
	}
	return out, nil
}

// parseEndDate converts an RFC3339 end date to Unix ms, 0 if absent or invalid.
func parseEndDate(s string) int64 {
	if s == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}

// Category keyword tables. Matching is per word so "rain" does not hit "ai".
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{domain.CategoryPolitics, []string{"trump", "biden", "election", "president", "congress", "governor", "senate"}},
	{domain.CategoryCrypto, []string{"bitcoin", "ethereum", "crypto", "btc", "eth", "solana", "xrp"}},
	{domain.CategoryAITech, []string{"ai", "openai", "gpt", "claude", "gemini", "anthropic"}},
	{domain.CategorySports, []string{"nba", "nfl", "mlb", "soccer", "football", "game", "match", "championship"}},
	{domain.CategoryWeather, []string{"weather", "temperature", "snow", "rain"}},
}

// DetectCategory classifies a market by tag labels first, then title words.
func DetectCategory(title string, tags []string) string {
	for _, tag := range tags {
		switch strings.ToLower(tag) {
		case "politics":
			return domain.CategoryPolitics
		case "crypto":
			return domain.CategoryCrypto
		case "ai", "tech", "science":
			return domain.CategoryAITech
		case "sports":
			return domain.CategorySports
		case "weather":
			return domain.CategoryWeather
		}
	}

	words := titleWords(title)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.words {
			if words[kw] {
				return entry.category
			}
		}
	}
	return domain.CategoryOther
}

// titleWords lowercases and splits a title into a word set.
func titleWords(title string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
