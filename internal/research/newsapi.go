package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// NewsAPIBaseURL is the NewsAPI v2 endpoint. The free tier allows 100
// requests per day, so the client-side limiter stays conservative.
const NewsAPIBaseURL = "https://newsapi.org/v2"

const newsAPIWindowDays = 7

// NewsAPIProvider searches recent news coverage via /v2/everything.
type NewsAPIProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	nowFn   func() time.Time
}

// NewNewsAPIProvider creates a NewsAPI provider. An empty baseURL uses
// the public endpoint.
func NewNewsAPIProvider(baseURL, apiKey string) *NewsAPIProvider {
	if baseURL == "" {
		baseURL = NewsAPIBaseURL
	}
	return &NewsAPIProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: providerTimeout},
		limiter: rate.NewLimiter(rate.Limit(1), 2),
		nowFn:   time.Now,
	}
}

// Name implements Provider.
func (p *NewsAPIProvider) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// Search implements Provider.
func (p *NewsAPIProvider) Search(ctx context.Context, query domain.ResearchQuery) ([]domain.ResearchResult, error) {
	from := p.nowFn().AddDate(0, 0, -newsAPIWindowDays).UTC().Format("2006-01-02")

	params := url.Values{}
	params.Set("q", query.Question)
	params.Set("language", "en")
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", strconv.Itoa(maxProviderItems))
	params.Set("from", from)

	header := http.Header{}
	header.Set("X-Api-Key", p.apiKey)

	body, err := fetch(ctx, p.client, p.limiter, p.baseURL+"/everything?"+params.Encode(), header)
	if err != nil {
		return nil, fmt.Errorf("newsapi search: %w", err)
	}

	var decoded newsAPIResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}
	if decoded.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %q", decoded.Status)
	}

	results := make([]domain.ResearchResult, 0, len(decoded.Articles))
	for i, a := range decoded.Articles {
		if i >= maxProviderItems {
			break
		}
		text := a.Title + " " + a.Description
		authority := domain.AuthoritySecondaryAnalyst
		if a.Source.Name == "" {
			authority = domain.AuthorityUnknown
		}
		results = append(results, domain.ResearchResult{
			Title:       a.Title,
			URL:         a.URL,
			Excerpt:     clip(a.Description, maxExcerptLen),
			Source:      p.Name(),
			Authority:   authority,
			PublishedAt: parsePublished(a.PublishedAt),
			Relevance:   relevanceForRank(i),
			Lean:        ClassifyLean(text),
			Specific:    ClassifySpecific(text),
		})
	}
	return results, nil
}
