package curation

import (
	"fmt"
	"math"
	"sort"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/observability"
)

// Fallback selects without the completer: rank by confidence points
// plus a liquidity credit capped at 3 plus EV weighted tenfold, then
// phrase each pick from structured fields only. Nothing here can
// hallucinate, so the output needs no validation pass.
func (cu *Curator) Fallback(candidates []*domain.Candidate) []domain.CuratedItem {
	if len(candidates) > 0 {
		observability.DefaultMetrics.FallbackSelections.Inc()
	}
	ranked := make([]*domain.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return fallbackRank(ranked[i]) > fallbackRank(ranked[j])
	})
	n := cu.picks
	if len(ranked) < n {
		n = len(ranked)
	}
	items := make([]domain.CuratedItem, 0, n)
	for i, c := range ranked[:n] {
		items = append(items, domain.CuratedItem{
			Candidate: c,
			Rank:      i + 1,
			Rationale: fallbackRationale(c),
			Fallback:  true,
		})
	}
	return items
}

func fallbackRank(c *domain.Candidate) float64 {
	return float64(c.ConfidencePoints) + math.Min(3, c.LiquidityUSD/20_000) + c.ExpectedValue*10
}

func fallbackRationale(c *domain.Candidate) string {
	return fmt.Sprintf("%s confidence, $%s liquidity, EV %+.2f, resolves in %d days.",
		c.Confidence, FormatUSD(c.LiquidityUSD), c.ExpectedValue, c.DaysToResolution)
}
