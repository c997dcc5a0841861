package digest

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Vitor-VarelAI/Polymarket/internal/curation"
	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

var digestNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func longShot(id, question, category string, side domain.Direction, entry, win, liquidity float64, days int) *domain.ValueBet {
	return &domain.ValueBet{
		Market: &domain.Market{
			MarketID:     id,
			Slug:         "longshot-" + id,
			Question:     question,
			Category:     category,
			LiquidityUSD: liquidity,
			EndDate:      digestNow.Add(time.Duration(days) * 24 * time.Hour).UnixMilli(),
			Active:       true,
		},
		Side:             side,
		EntryPrice:       entry,
		PayoutMultiple:   100 / entry,
		WinAmount:        win,
		LiquidityUSD:     liquidity,
		DaysToResolution: days,
	}
}

// Three bets whose fallback ranks order alpha > beta > gamma.
func digestBets() []*domain.ValueBet {
	alpha := longShot("mkt-alpha", "Will Bitcoin close above $100k in June?", domain.CategoryCrypto,
		domain.DirectionYes, 20, 5, 60_000, 10)
	beta := longShot("mkt-beta", "Will the challenger win the runoff?", domain.CategoryPolitics,
		domain.DirectionNo, 12, 8, 12_000, 20)
	gamma := longShot("mkt-gamma", "Will it snow in Lisbon?", domain.CategoryWeather,
		domain.DirectionYes, 7, 14, 8_000, 40)
	return []*domain.ValueBet{gamma, alpha, beta}
}

func rowsFor(t *testing.T, d *domain.Digest, bets []*domain.ValueBet) []pickRow {
	t.Helper()
	byID := make(map[string]*domain.ValueBet, len(bets))
	for _, vb := range bets {
		byID[vb.Market.MarketID] = vb
	}
	rows := make([]pickRow, 0, len(d.Picks))
	for _, item := range d.Picks {
		vb := byID[item.Candidate.Market.MarketID]
		if vb == nil {
			t.Fatalf("pick %s has no source bet", item.Candidate.Market.MarketID)
		}
		rows = append(rows, pickRow{item: item, bet: vb})
	}
	return rows
}

type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(context.Context, string, string) (string, error) {
	return s.response, s.err
}

func TestBuild_FallbackOrdersByFormula(t *testing.T) {
	bets := digestBets()
	b := NewBuilder(curation.NewCurator(nil))

	d := b.Build(context.Background(), bets, EditionMorning, digestNow)
	if d == nil {
		t.Fatal("Build returned nil")
	}
	if err := uuid.Validate(d.DigestID); err != nil {
		t.Errorf("DigestID %q is not a uuid: %v", d.DigestID, err)
	}
	if d.GeneratedAt != digestNow.UnixMilli() {
		t.Errorf("GeneratedAt = %d", d.GeneratedAt)
	}
	if d.Edition != EditionMorning {
		t.Errorf("Edition = %q", d.Edition)
	}
	if d.Scanned != 3 {
		t.Errorf("Scanned = %d, want 3", d.Scanned)
	}
	if len(d.Picks) != 3 {
		t.Fatalf("picks = %d, want 3", len(d.Picks))
	}

	// Formula rank: alpha 10, beta 5.2, gamma 2.2.
	order := []string{"mkt-alpha", "mkt-beta", "mkt-gamma"}
	for i, want := range order {
		if got := d.Picks[i].Candidate.Market.MarketID; got != want {
			t.Errorf("pick %d = %s, want %s", i, got, want)
		}
		if d.Picks[i].Rank != i+1 {
			t.Errorf("pick %d rank = %d", i, d.Picks[i].Rank)
		}
		if !d.Picks[i].Fallback {
			t.Errorf("pick %d should be marked fallback", i)
		}
	}

	if d.Invested != 3 {
		t.Errorf("Invested = %v, want 3", d.Invested)
	}
	if d.MaxReturn != 27 {
		t.Errorf("MaxReturn = %v, want 27", d.MaxReturn)
	}
	if d.BreakEvenPc != 33 {
		t.Errorf("BreakEvenPc = %d, want 33", d.BreakEvenPc)
	}
	// EVs: 0, -0.04, -0.02.
	if math.Abs(d.AvgEV-(-0.02)) > 1e-12 {
		t.Errorf("AvgEV = %v, want -0.02", d.AvgEV)
	}
}

func TestBuild_BodyFormat(t *testing.T) {
	bets := digestBets()
	d := NewBuilder(curation.NewCurator(nil)).Build(context.Background(), bets, EditionMorning, digestNow)
	if d == nil {
		t.Fatal("Build returned nil")
	}

	wantLines := []string{
		"🎯 *POLYMARKET DIGEST*",
		"📅 Morning • May 15, 2024 • 12:00 UTC",
		"From 3 scanned markets, selected 3 data-driven picks.",
		"*#1* 🟢 HIGH",
		"📊 *Will Bitcoin close above $100k in June?*",
		"   Odds: YES 20.0% | Liquidity: $60,000",
		"   Resolves: 10 days | EV: +0.00",
		"💵 *$1 Bet:* Win $4.00 (5.0x) or Lose $1",
		"🔗 [Place Bet](https://polymarket.com/event/longshot-mkt-alpha)",
		"*#2* 🟢 HIGH",
		"   Odds: NO 12.0% | Liquidity: $12,000",
		"💵 *$1 Bet:* Win $7.00 (8.3x) or Lose $1",
		"*#3* 🔴 LOW",
		"   Resolves: 40 days | EV: -0.02",
		"💵 *$1 Bet:* Win $13.00 (14.3x) or Lose $1",
		"📊 *SUMMARY*",
		"• Invested: $3.00 | Max Return: $27.00",
		"• Average EV: -0.020",
		"• Break-even: ~33% win rate",
		"⚠️ *Not financial advice. Data from Polymarket at 12:00 UTC.*",
		"⏰ Next digest: 16:00 UTC",
	}
	for _, want := range wantLines {
		if !strings.Contains(d.Body, want) {
			t.Errorf("body missing %q\n%s", want, d.Body)
		}
	}

	// Picks render in rank order.
	alpha := strings.Index(d.Body, "Bitcoin")
	beta := strings.Index(d.Body, "challenger")
	gamma := strings.Index(d.Body, "snow")
	if !(alpha < beta && beta < gamma) {
		t.Errorf("pick order wrong: %d %d %d", alpha, beta, gamma)
	}
}

func TestBuild_BodyPassesValidator(t *testing.T) {
	bets := digestBets()
	d := NewBuilder(curation.NewCurator(nil)).Build(context.Background(), bets, EditionMorning, digestNow)
	if d == nil {
		t.Fatal("Build returned nil")
	}

	facts := digestFacts(d, rowsFor(t, d, bets), digestNow)
	if !curation.Validate(d.Body, facts) {
		t.Errorf("digest body failed numeric validation:\n%s", d.Body)
	}
}

func TestBuild_CuratedSelection(t *testing.T) {
	bets := []*domain.ValueBet{
		longShot("mkt-alpha", "Will Bitcoin close above $100k in June?", domain.CategoryCrypto,
			domain.DirectionYes, 20, 5, 60_000, 10),
		longShot("mkt-beta", "Will the challenger win the runoff?", domain.CategoryPolitics,
			domain.DirectionNo, 12, 8, 12_000, 20),
	}
	completer := &stubCompleter{
		response: `{"selections": [{"id": 1, "rationale": "HIGH confidence at 12.0% odds with $12,000 liquidity."}]}`,
	}
	d := NewBuilder(curation.NewCurator(completer)).Build(context.Background(), bets, EditionEvening, digestNow)
	if d == nil {
		t.Fatal("Build returned nil")
	}

	if len(d.Picks) != 1 {
		t.Fatalf("picks = %d, want 1", len(d.Picks))
	}
	pick := d.Picks[0]
	if pick.Candidate.Market.MarketID != "mkt-beta" {
		t.Errorf("picked %s, want mkt-beta", pick.Candidate.Market.MarketID)
	}
	if pick.Fallback {
		t.Error("curated pick should not be marked fallback")
	}
	if d.Scanned != 2 || d.Invested != 1 || d.MaxReturn != 8 || d.BreakEvenPc != 100 {
		t.Errorf("summary = %+v", d)
	}
	if !strings.Contains(d.Body, "From 2 scanned markets, selected 1 data-driven picks.") {
		t.Errorf("body header wrong:\n%s", d.Body)
	}
	if !strings.Contains(d.Body, "🧠 _HIGH confidence at 12.0% odds with $12,000 liquidity._") {
		t.Errorf("rationale not rendered:\n%s", d.Body)
	}
}

func TestBuild_NothingToSend(t *testing.T) {
	b := NewBuilder(curation.NewCurator(nil))
	ctx := context.Background()

	if d := b.Build(ctx, nil, EditionMorning, digestNow); d != nil {
		t.Error("empty input should produce no digest")
	}

	unpriced := longShot("mkt-alpha", "Will it happen?", domain.CategoryOther,
		domain.DirectionYes, 0, 0, 60_000, 10)
	if d := b.Build(ctx, []*domain.ValueBet{unpriced}, EditionMorning, digestNow); d != nil {
		t.Error("unpriceable input should produce no digest")
	}
}
