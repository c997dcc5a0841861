package domain

// AuthorityClass ranks how authoritative a research source is.
type AuthorityClass string

const (
	AuthorityPrimaryExpert    AuthorityClass = "PRIMARY_EXPERT"
	AuthorityLabPublication   AuthorityClass = "LAB_PUBLICATION"
	AuthoritySecondaryAnalyst AuthorityClass = "SECONDARY_ANALYST"
	AuthorityUnknown          AuthorityClass = "UNAUTHORITATIVE"
)

// Points returns the credibility points the class contributes before
// relevance weighting.
func (a AuthorityClass) Points() float64 {
	switch a {
	case AuthorityPrimaryExpert:
		return 30
	case AuthorityLabPublication:
		return 28
	case AuthoritySecondaryAnalyst:
		return 15
	default:
		return 0
	}
}

// Lean is the directional sentiment a research result expresses about
// the market outcome.
type Lean string

const (
	LeanYes  Lean = "YES"
	LeanNo   Lean = "NO"
	LeanNone Lean = "NONE"
)

// ResearchResult is one evidence item returned by a research provider.
// Read-only to the scorer.
type ResearchResult struct {
	Title       string         // headline or paper title
	URL         string         // source link
	Excerpt     string         // snippet used for lean classification
	Source      string         // provider name: newsapi | googlenews | arxiv
	Authority   AuthorityClass // source authority class
	PublishedAt int64          // publication timestamp, Unix ms (0 if unknown)
	Relevance   float64        // provider relevance score in [0,1]
	Lean        Lean           // inferred directional lean
	Specific    bool           // names an explicit, concrete prediction
}

// ResearchQuery describes one research lookup for a whale event.
type ResearchQuery struct {
	MarketID  string
	Question  string
	Tags      []string
	Direction Direction
}

// CacheKey is the deterministic cache identity for this query: market,
// direction, and the query terms in order.
func (q ResearchQuery) CacheKey() string {
	key := q.MarketID + "|" + string(q.Direction) + "|" + q.Question
	for _, t := range q.Tags {
		key += "|" + t
	}
	return key
}
