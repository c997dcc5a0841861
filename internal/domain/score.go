package domain

// Score component names and sub-range maxima.
const (
	ComponentCredibility = "Credibility"
	ComponentRecency     = "Recency"
	ComponentConsensus   = "Consensus"
	ComponentSpecificity = "Specificity"
	ComponentDivergence  = "Divergence"

	MaxCredibility = 30.0
	MaxRecency     = 20.0
	MaxConsensus   = 25.0
	MaxSpecificity = 15.0
	MaxDivergence  = 10.0

	// AlertScoreThreshold is the minimum total score for alert eligibility.
	AlertScoreThreshold = 70.0
)

// ScoreComponent is one independently computed contribution to the
// alignment score.
type ScoreComponent struct {
	Name   string  // component name
	Points float64 // awarded points, within [0, Max]
	Max    float64 // sub-range ceiling
	Reason string  // human-readable justification
}

// ScoreResult fuses a whale event with its research evidence into a
// deterministic 0-100 alignment score. Created once per surviving
// event; immutable.
type ScoreResult struct {
	Event         *WhaleEvent
	Evidence      []ResearchResult
	Total         float64          // sum of the five components
	Components    []ScoreComponent // fixed order: credibility, recency, consensus, specificity, divergence
	TopReasons    []string         // reasons of the two highest-scoring components
	ImpliedOdds   float64          // evidence-implied YES probability, percent
	MarketOdds    float64          // market YES odds at scoring time, percent
	AlertEligible bool             // Total >= AlertScoreThreshold
}
