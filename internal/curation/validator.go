package curation

import "github.com/Vitor-VarelAI/Polymarket/internal/domain"

// StakeUSD is the unit stake every digest pick is sized at.
const StakeUSD = 1.0

// Facts collects every structured number a phrased text about the
// candidate may legitimately contain. Numbers embedded in the market
// question itself count as facts too, so "Will GPT-5 ship in 2026?"
// does not get a pick rejected for echoing its own title.
func Facts(c *domain.Candidate) []float64 {
	if c == nil {
		return nil
	}
	facts := []float64{
		c.OddsPct,
		c.ImpliedPct,
		c.DivergencePts,
		c.EntryPrice,
		c.PayoutMultiple,
		c.ExpectedValue,
		c.LiquidityUSD,
		c.SizeUSD,
		float64(c.DaysToResolution),
		float64(c.ConfidencePoints),
		StakeUSD,
	}
	if c.Score != nil {
		facts = append(facts, c.Score.Total)
	}
	if c.Market != nil {
		for _, tok := range extractNumbers(c.Market.Question) {
			facts = append(facts, tok.Value)
		}
	}
	return facts
}

// Validate reports whether every numeric token in text traces back to
// one of the given facts. A token matches a fact when they differ by
// at most half a unit of the token's last printed decimal; one
// untraceable number marks the whole text as fabricated.
func Validate(text string, facts []float64) bool {
	for _, tok := range extractNumbers(text) {
		if !tok.matchesAny(facts) {
			return false
		}
	}
	return true
}
