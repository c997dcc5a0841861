package domain

// Market represents a binary-outcome Polymarket market.
// Loaded from the Gamma API at cycle start; immutable afterward.
type Market struct {
	MarketID     string   // Gamma market id
	Slug         string   // URL slug, e.g. "will-x-happen-by-2026"
	Question     string   // human-readable market question
	YesOutcome   string   // definition of the YES side
	NoOutcome    string   // definition of the NO side
	Category     string   // Politics | Crypto | AI/Tech | Sports | Weather | Other
	Tags         []string // free-form topical tags from Gamma
	LiquidityUSD float64  // current liquidity in USD
	YesOdds      float64  // current YES price as percent (0-100)
	EndDate      int64    // market resolution deadline, Unix ms (0 if unknown)
	Active       bool     // accepting trades
	Closed       bool     // resolved, no longer tradeable
}

// Market category constants
const (
	CategoryPolitics = "Politics"
	CategoryCrypto   = "Crypto"
	CategoryAITech   = "AI/Tech"
	CategorySports   = "Sports"
	CategoryWeather  = "Weather"
	CategoryOther    = "Other"
)

// URL returns the public market page.
func (m *Market) URL() string {
	return "https://polymarket.com/event/" + m.Slug
}

// DaysToResolution returns whole days until EndDate relative to now (Unix ms).
// Returns 0 when the end date is unknown or already passed.
func (m *Market) DaysToResolution(nowMs int64) int {
	if m.EndDate <= nowMs {
		return 0
	}
	return int((m.EndDate - nowMs) / (24 * 60 * 60 * 1000))
}

// Odds bounds a closed market must have settled past before a winner
// is read off its price.
const (
	resolvedYesMinPct = 99.0
	resolvedNoMaxPct  = 1.0
)

// Resolution returns the winning side of a closed market. ok is false
// while the market is still open, or closed but with prices that have
// not settled to either side.
func (m *Market) Resolution() (Direction, bool) {
	if !m.Closed {
		return "", false
	}
	switch {
	case m.YesOdds >= resolvedYesMinPct:
		return DirectionYes, true
	case m.YesOdds <= resolvedNoMaxPct:
		return DirectionNo, true
	}
	return "", false
}
