package score

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// Scorer computes deterministic 0-100 alignment scores. It holds no
// state; identical inputs always produce identical results.
type Scorer struct{}

// NewScorer creates a new alignment scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score fuses a whale event with its research evidence into an
// alignment score: five independent components summed, alert-eligible
// at or above the threshold. marketOdds is the market's current YES
// odds in percent; now anchors the recency buckets. Empty evidence
// zeroes the research components, it is never an error.
func (s *Scorer) Score(event *domain.WhaleEvent, evidence []domain.ResearchResult, marketOdds float64, now time.Time) *domain.ScoreResult {
	if event == nil {
		return nil
	}

	implied, directional := impliedYesOdds(evidence)

	components := []domain.ScoreComponent{
		credibility(evidence),
		recency(evidence, now),
		consensus(event.Direction, evidence),
		specificity(evidence),
		divergence(implied, marketOdds, directional),
	}

	var total float64
	for _, c := range components {
		total += c.Points
	}

	result := &domain.ScoreResult{
		Event:         event,
		Evidence:      evidence,
		Total:         total,
		Components:    components,
		TopReasons:    topReasons(components),
		ImpliedOdds:   implied,
		MarketOdds:    marketOdds,
		AlertEligible: total >= domain.AlertScoreThreshold,
	}

	log.Debug().
		Str("market_id", event.MarketID).
		Str("direction", string(event.Direction)).
		Float64("score", total).
		Bool("alert_eligible", result.AlertEligible).
		Msg("Alignment score computed")

	return result
}

// topReasons picks the reasons of the two largest-contributing
// components. Ties keep the fixed component order.
func topReasons(components []domain.ScoreComponent) []string {
	ranked := make([]domain.ScoreComponent, len(components))
	copy(ranked, components)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})

	reasons := make([]string, 0, 2)
	for _, c := range ranked {
		if len(reasons) == 2 {
			break
		}
		reasons = append(reasons, c.Name+": "+c.Reason)
	}
	return reasons
}
