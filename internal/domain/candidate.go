package domain

// Confidence labels for curated candidates.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// Candidate is one curation input: a scored event plus its market
// context and the precomputed numeric facts the generative step is
// allowed to phrase. Every number a curated message may contain must
// trace back to one of these fields.
type Candidate struct {
	Score     *ScoreResult // nil for value-bet candidates
	Market    *Market
	Direction Direction // market side the candidate backs

	// Precomputed facts, immutable once built.
	OddsPct          float64 // market YES/NO odds for the event direction, percent
	ImpliedPct       float64 // evidence-implied probability, percent
	DivergencePts    float64 // |ImpliedPct - OddsPct| in percentage points
	EntryPrice       float64 // price of the event-direction outcome in [0,1]
	PayoutMultiple   float64 // 1 / EntryPrice
	ExpectedValue    float64 // per-$1 EV, rounded to 3 decimals
	LiquidityUSD     float64
	SizeUSD          float64
	DaysToResolution int
	ConfidencePoints int    // liquidity + resolution + category points
	Confidence       string // HIGH | MEDIUM | LOW
}

// CuratedItem is one validated selection produced by the curation stage.
type CuratedItem struct {
	Candidate *Candidate
	Rank      int    // 1-based position in the digest
	Rationale string // phrased text, numerically validated
	Fallback  bool   // rationale came from the deterministic template
}
