package curation

import (
	"testing"
	"time"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

var curationNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func scoredEvent(dir domain.Direction) *domain.ScoreResult {
	return &domain.ScoreResult{
		Event: &domain.WhaleEvent{
			EventID:   "ev1",
			MarketID:  "0xmarket1",
			Direction: dir,
			SizeUSD:   25000,
			Timestamp: curationNow.UnixMilli(),
		},
		Total:         80,
		ImpliedOdds:   35,
		MarketOdds:    20,
		AlertEligible: true,
	}
}

func candidateMarket() *domain.Market {
	return &domain.Market{
		MarketID:     "0xmarket1",
		Slug:         "will-the-bill-pass",
		Question:     "Will the bill pass?",
		Category:     domain.CategoryPolitics,
		LiquidityUSD: 60000,
		YesOdds:      20,
		EndDate:      curationNow.Add(10 * 24 * time.Hour).UnixMilli(),
		Active:       true,
	}
}

func TestBuildCandidate_YesDirection(t *testing.T) {
	c := BuildCandidate(scoredEvent(domain.DirectionYes), candidateMarket(), curationNow.UnixMilli())
	if c == nil {
		t.Fatal("expected candidate")
	}
	if c.Direction != domain.DirectionYes {
		t.Errorf("Direction = %s, want YES", c.Direction)
	}
	if c.OddsPct != 20 {
		t.Errorf("OddsPct = %g, want 20", c.OddsPct)
	}
	if c.ImpliedPct != 35 {
		t.Errorf("ImpliedPct = %g, want 35", c.ImpliedPct)
	}
	if c.DivergencePts != 15 {
		t.Errorf("DivergencePts = %g, want 15", c.DivergencePts)
	}
	if c.EntryPrice != 0.2 {
		t.Errorf("EntryPrice = %g, want 0.2", c.EntryPrice)
	}
	if c.PayoutMultiple != 5 {
		t.Errorf("PayoutMultiple = %g, want 5", c.PayoutMultiple)
	}
	// EV = 0.35*(5-1) - 0.65
	if c.ExpectedValue != 0.75 {
		t.Errorf("ExpectedValue = %g, want 0.75", c.ExpectedValue)
	}
	if c.SizeUSD != 25000 {
		t.Errorf("SizeUSD = %g, want 25000", c.SizeUSD)
	}
	if c.DaysToResolution != 10 {
		t.Errorf("DaysToResolution = %d, want 10", c.DaysToResolution)
	}
	// liquidity 3 + resolution 2 + Politics 2
	if c.ConfidencePoints != 7 {
		t.Errorf("ConfidencePoints = %d, want 7", c.ConfidencePoints)
	}
	if c.Confidence != domain.ConfidenceHigh {
		t.Errorf("Confidence = %s, want HIGH", c.Confidence)
	}
}

func TestBuildCandidate_NoDirectionRestatesOdds(t *testing.T) {
	res := scoredEvent(domain.DirectionNo)
	res.MarketOdds = 80
	res.ImpliedOdds = 30

	c := BuildCandidate(res, candidateMarket(), curationNow.UnixMilli())
	if c == nil {
		t.Fatal("expected candidate")
	}
	if c.OddsPct != 20 {
		t.Errorf("OddsPct = %g, want 20", c.OddsPct)
	}
	if c.ImpliedPct != 70 {
		t.Errorf("ImpliedPct = %g, want 70", c.ImpliedPct)
	}
	if c.DivergencePts != 50 {
		t.Errorf("DivergencePts = %g, want 50", c.DivergencePts)
	}
	// EV = 0.70*(5-1) - 0.30
	if c.ExpectedValue != 2.5 {
		t.Errorf("ExpectedValue = %g, want 2.5", c.ExpectedValue)
	}
}

func TestBuildCandidate_PricelessSide(t *testing.T) {
	res := scoredEvent(domain.DirectionNo)
	res.MarketOdds = 100

	if c := BuildCandidate(res, candidateMarket(), curationNow.UnixMilli()); c != nil {
		t.Errorf("expected nil candidate for a zero-priced side, got %+v", c)
	}
}

func TestBuildCandidate_UnknownEndDate(t *testing.T) {
	m := candidateMarket()
	m.EndDate = 0
	m.LiquidityUSD = 12000

	c := BuildCandidate(scoredEvent(domain.DirectionYes), m, curationNow.UnixMilli())
	if c == nil {
		t.Fatal("expected candidate")
	}
	if c.DaysToResolution != 0 {
		t.Errorf("DaysToResolution = %d, want 0", c.DaysToResolution)
	}
	// liquidity 2 + Politics 2, no resolution credit without an end date
	if c.ConfidencePoints != 4 {
		t.Errorf("ConfidencePoints = %d, want 4", c.ConfidencePoints)
	}
	if c.Confidence != domain.ConfidenceMedium {
		t.Errorf("Confidence = %s, want MEDIUM", c.Confidence)
	}
}

func TestBuildCandidate_NilInputs(t *testing.T) {
	if c := BuildCandidate(nil, candidateMarket(), curationNow.UnixMilli()); c != nil {
		t.Error("expected nil for nil score result")
	}
	if c := BuildCandidate(&domain.ScoreResult{}, candidateMarket(), curationNow.UnixMilli()); c != nil {
		t.Error("expected nil for score result without event")
	}
	if c := BuildCandidate(scoredEvent(domain.DirectionYes), nil, curationNow.UnixMilli()); c != nil {
		t.Error("expected nil for nil market")
	}
}

func TestBuildCandidate_EVRounding(t *testing.T) {
	res := scoredEvent(domain.DirectionYes)
	res.MarketOdds = 68
	res.ImpliedOdds = 82.05

	c := BuildCandidate(res, candidateMarket(), curationNow.UnixMilli())
	if c == nil {
		t.Fatal("expected candidate")
	}
	// 0.8205*(1/0.68-1) - 0.1795 = 0.20661..., rounded to 3 decimals
	if c.ExpectedValue != 0.207 {
		t.Errorf("ExpectedValue = %g, want 0.207", c.ExpectedValue)
	}
}

func TestBuildValueBetCandidate(t *testing.T) {
	vb := &domain.ValueBet{
		Market: &domain.Market{
			MarketID:     "0xlongshot",
			Slug:         "will-it-snow",
			Question:     "Will it snow in Miami?",
			Category:     domain.CategoryWeather,
			LiquidityUSD: 8000,
			EndDate:      curationNow.Add(40 * 24 * time.Hour).UnixMilli(),
		},
		Side:             domain.DirectionNo,
		EntryPrice:       7,
		PayoutMultiple:   100.0 / 7,
		WinAmount:        14,
		LiquidityUSD:     8000,
		DaysToResolution: 40,
	}

	c := BuildValueBetCandidate(vb)
	if c == nil {
		t.Fatal("expected candidate")
	}
	if c.Score != nil {
		t.Error("value-bet candidate should carry no score result")
	}
	if c.Direction != domain.DirectionNo {
		t.Errorf("Direction = %s, want NO", c.Direction)
	}
	if c.OddsPct != 7 || c.ImpliedPct != 7 {
		t.Errorf("OddsPct = %g, ImpliedPct = %g, want both 7", c.OddsPct, c.ImpliedPct)
	}
	if c.EntryPrice != 0.07 {
		t.Errorf("EntryPrice = %g, want 0.07", c.EntryPrice)
	}
	if c.PayoutMultiple != 100.0/7 {
		t.Errorf("PayoutMultiple = %g, want %g", c.PayoutMultiple, 100.0/7)
	}
	// 14 whole shares at 7c: EV = 0.07*13 - 0.93
	if c.ExpectedValue != -0.02 {
		t.Errorf("ExpectedValue = %g, want -0.02", c.ExpectedValue)
	}
	// liquidity 1 + Weather 1
	if c.ConfidencePoints != 2 {
		t.Errorf("ConfidencePoints = %d, want 2", c.ConfidencePoints)
	}
	if c.Confidence != domain.ConfidenceLow {
		t.Errorf("Confidence = %s, want LOW", c.Confidence)
	}

	if BuildValueBetCandidate(nil) != nil {
		t.Error("expected nil for nil value bet")
	}
	vb.EntryPrice = 0
	if BuildValueBetCandidate(vb) != nil {
		t.Error("expected nil for zero entry price")
	}
}

func TestConfidencePoints(t *testing.T) {
	cases := []struct {
		name      string
		liquidity float64
		days      int
		category  string
		points    int
		label     string
	}{
		{"deep liquid soon politics", 60000, 7, domain.CategoryPolitics, 7, domain.ConfidenceHigh},
		{"mid liquid near crypto", 12000, 20, domain.CategoryCrypto, 5, domain.ConfidenceHigh},
		{"thin far tech", 5000, 45, domain.CategoryAITech, 2, domain.ConfidenceLow},
		{"dust soon other", 900, 10, domain.CategoryOther, 2, domain.ConfidenceLow},
		{"mid far weather", 12000, 45, domain.CategoryWeather, 3, domain.ConfidenceMedium},
		{"deep far sports", 60000, 31, domain.CategorySports, 3, domain.ConfidenceMedium},
	}
	for _, tc := range cases {
		points := confidencePoints(tc.liquidity, tc.days, true, tc.category)
		if points != tc.points {
			t.Errorf("%s: points = %d, want %d", tc.name, points, tc.points)
		}
		if label := confidenceLabel(points); label != tc.label {
			t.Errorf("%s: label = %s, want %s", tc.name, label, tc.label)
		}
	}
}
