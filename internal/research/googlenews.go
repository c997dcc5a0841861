package research

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// GoogleNewsBaseURL is the Google News RSS search endpoint. Free and
// unmetered.
const GoogleNewsBaseURL = "https://news.google.com/rss/search"

// Publishers that speak for themselves rather than report on others.
var primaryPublishers = []string{
	"openai", "deepmind", "anthropic", "meta ai", "google research",
	"microsoft research",
}

// GoogleNewsProvider searches breaking news via the Google News RSS
// feed.
type GoogleNewsProvider struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewGoogleNewsProvider creates a Google News provider. An empty
// baseURL uses the public endpoint.
func NewGoogleNewsProvider(baseURL string) *GoogleNewsProvider {
	if baseURL == "" {
		baseURL = GoogleNewsBaseURL
	}
	return &GoogleNewsProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: providerTimeout},
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
}

// Name implements Provider.
func (p *GoogleNewsProvider) Name() string { return "googlenews" }

type googleNewsFeed struct {
	XMLName xml.Name         `xml:"rss"`
	Items   []googleNewsItem `xml:"channel>item"`
}

type googleNewsItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
	Source      string `xml:"source"`
}

// Search implements Provider.
func (p *GoogleNewsProvider) Search(ctx context.Context, query domain.ResearchQuery) ([]domain.ResearchResult, error) {
	endpoint := p.baseURL + "?q=" + url.QueryEscape(query.Question) + "&hl=en&gl=US&ceid=US:en"

	body, err := fetch(ctx, p.client, p.limiter, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("google news search: %w", err)
	}

	var feed googleNewsFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode google news feed: %w", err)
	}

	results := make([]domain.ResearchResult, 0, len(feed.Items))
	for i, item := range feed.Items {
		if i >= maxProviderItems {
			break
		}
		title, source := splitGoogleNewsTitle(item.Title, item.Source)
		text := title + " " + item.Description
		results = append(results, domain.ResearchResult{
			Title:       title,
			URL:         item.Link,
			Excerpt:     clip(squish(item.Description), maxExcerptLen),
			Source:      p.Name(),
			Authority:   googleNewsAuthority(source),
			PublishedAt: parsePubDate(item.PubDate),
			Relevance:   relevanceForRank(i),
			Lean:        ClassifyLean(text),
			Specific:    ClassifySpecific(text),
		})
	}
	return results, nil
}

// splitGoogleNewsTitle strips the " - Publisher" suffix Google News
// appends to every headline, preferring the feed's source element for
// the publisher name.
func splitGoogleNewsTitle(title, source string) (string, string) {
	if idx := strings.LastIndex(title, " - "); idx >= 0 {
		if source == "" {
			source = title[idx+3:]
		}
		title = title[:idx]
	}
	return title, source
}

func googleNewsAuthority(source string) domain.AuthorityClass {
	if source == "" {
		return domain.AuthorityUnknown
	}
	lower := strings.ToLower(source)
	for _, pub := range primaryPublishers {
		if strings.Contains(lower, pub) {
			return domain.AuthorityPrimaryExpert
		}
	}
	return domain.AuthoritySecondaryAnalyst
}

// parsePubDate converts an RSS RFC 1123 timestamp to Unix ms, 0 if
// missing or malformed.
func parsePubDate(s string) int64 {
	if s == "" {
		return 0
	}
	for _, layout := range []string{time.RFC1123, time.RFC1123Z} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}
