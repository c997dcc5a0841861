package research

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// ArxivBaseURL is the arXiv Atom export endpoint. HTTPS avoids the 301
// the plain-HTTP host answers with.
const ArxivBaseURL = "https://export.arxiv.org/api/query"

// ArxivProvider searches academic papers via the arXiv API.
type ArxivProvider struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewArxivProvider creates an arXiv provider. An empty baseURL uses the
// public endpoint.
func NewArxivProvider(baseURL string) *ArxivProvider {
	if baseURL == "" {
		baseURL = ArxivBaseURL
	}
	return &ArxivProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: providerTimeout},
		// arXiv asks automated clients to stay under 1 request per 3s.
		limiter: rate.NewLimiter(rate.Limit(1.0/3.0), 1),
	}
}

// Name implements Provider.
func (p *ArxivProvider) Name() string { return "arxiv" }

type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// Search implements Provider.
func (p *ArxivProvider) Search(ctx context.Context, query domain.ResearchQuery) ([]domain.ResearchResult, error) {
	params := url.Values{}
	params.Set("search_query", "all:"+query.Question)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxProviderItems))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	body, err := fetch(ctx, p.client, p.limiter, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("arxiv search: %w", err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode arxiv feed: %w", err)
	}

	results := make([]domain.ResearchResult, 0, len(feed.Entries))
	for i, entry := range feed.Entries {
		if i >= maxProviderItems {
			break
		}
		title := squish(entry.Title)
		summary := squish(entry.Summary)
		text := title + " " + summary
		results = append(results, domain.ResearchResult{
			Title:       title,
			URL:         entry.ID,
			Excerpt:     clip(summary, maxExcerptLen),
			Source:      p.Name(),
			Authority:   domain.AuthorityLabPublication,
			PublishedAt: parsePublished(entry.Published),
			Relevance:   relevanceForRank(i),
			Lean:        ClassifyLean(text),
			Specific:    ClassifySpecific(text),
		})
	}
	return results, nil
}
