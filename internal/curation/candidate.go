package curation

import (
	"math"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// Confidence point thresholds. Liquidity, resolution proximity, and
// category reliability each contribute; five points or more is HIGH.
const (
	liquidityHighUSD = 50_000
	liquidityMidUSD  = 10_000
	liquidityLowUSD  = 1_000

	resolutionSoonDays = 14
	resolutionNearDays = 30

	confidenceHighMin   = 5
	confidenceMediumMin = 3
)

// BuildCandidate precomputes the numeric facts for one alert-eligible
// score result. Every number a curated message may contain is fixed
// here; nothing downstream recomputes or invents one. Odds and implied
// probability are restated from the event's own side, so a NO whale
// carries the NO price. Returns nil when the event's side has no price
// to enter at.
func BuildCandidate(res *domain.ScoreResult, m *domain.Market, nowMs int64) *domain.Candidate {
	if res == nil || res.Event == nil || m == nil {
		return nil
	}
	oddsPct := res.MarketOdds
	impliedPct := res.ImpliedOdds
	if res.Event.Direction == domain.DirectionNo {
		oddsPct = 100 - oddsPct
		impliedPct = 100 - impliedPct
	}
	if oddsPct <= 0 {
		return nil
	}
	entry := oddsPct / 100
	days := m.DaysToResolution(nowMs)
	points := confidencePoints(m.LiquidityUSD, days, m.EndDate > 0, m.Category)
	return &domain.Candidate{
		Score:            res,
		Market:           m,
		Direction:        res.Event.Direction,
		OddsPct:          oddsPct,
		ImpliedPct:       impliedPct,
		DivergencePts:    math.Abs(impliedPct - oddsPct),
		EntryPrice:       entry,
		PayoutMultiple:   1 / entry,
		ExpectedValue:    expectedValue(impliedPct/100, 1/entry),
		LiquidityUSD:     m.LiquidityUSD,
		SizeUSD:          res.Event.SizeUSD,
		DaysToResolution: days,
		ConfidencePoints: points,
		Confidence:       confidenceLabel(points),
	}
}

// BuildValueBetCandidate adapts a scanned value bet for the digest
// curation pass. Long shots have no research evidence, so the entry
// price doubles as the win probability. The EV uses the whole-share
// win amount a $1 stake actually buys, which sits slightly under the
// exact multiple.
func BuildValueBetCandidate(vb *domain.ValueBet) *domain.Candidate {
	if vb == nil || vb.Market == nil || vb.EntryPrice <= 0 {
		return nil
	}
	points := confidencePoints(vb.LiquidityUSD, vb.DaysToResolution, vb.Market.EndDate > 0, vb.Market.Category)
	return &domain.Candidate{
		Market:           vb.Market,
		Direction:        vb.Side,
		OddsPct:          vb.EntryPrice,
		ImpliedPct:       vb.EntryPrice,
		EntryPrice:       vb.EntryPrice / 100,
		PayoutMultiple:   vb.PayoutMultiple,
		ExpectedValue:    expectedValue(vb.EntryPrice/100, vb.WinAmount),
		LiquidityUSD:     vb.LiquidityUSD,
		DaysToResolution: vb.DaysToResolution,
		ConfidencePoints: points,
		Confidence:       confidenceLabel(points),
	}
}

// expectedValue is the per-dollar EV of a $1 stake: win the net payout
// with probability winProb, lose the stake otherwise.
func expectedValue(winProb, payout float64) float64 {
	ev := winProb*(payout-1) - (1 - winProb)
	return math.Round(ev*1000) / 1000
}

func confidencePoints(liquidityUSD float64, days int, endKnown bool, category string) int {
	points := 0
	switch {
	case liquidityUSD >= liquidityHighUSD:
		points += 3
	case liquidityUSD >= liquidityMidUSD:
		points += 2
	case liquidityUSD >= liquidityLowUSD:
		points++
	}
	if endKnown {
		switch {
		case days <= resolutionSoonDays:
			points += 2
		case days <= resolutionNearDays:
			points++
		}
	}
	switch category {
	case domain.CategoryPolitics, domain.CategoryCrypto:
		points += 2
	case domain.CategoryWeather, domain.CategoryAITech:
		points++
	}
	return points
}

func confidenceLabel(points int) string {
	switch {
	case points >= confidenceHighMin:
		return domain.ConfidenceHigh
	case points >= confidenceMediumMin:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
