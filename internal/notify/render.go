package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Vitor-VarelAI/Polymarket/internal/curation"
	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/idhash"
)

const (
	headerQuestionLen = 60
	bulletTitleLen    = 100
	maxEvidenceLines  = 3
)

// BuildAlert renders one validated whale selection into the final
// alert. Every number in the body comes from the candidate's
// precomputed fields or the score result; nothing is generated here.
func BuildAlert(item domain.CuratedItem, now time.Time) *domain.Alert {
	c := item.Candidate
	if c == nil || c.Score == nil || c.Score.Event == nil || c.Market == nil {
		return nil
	}
	res := c.Score
	ev := res.Event

	alert := &domain.Alert{
		AlertID:         idhash.ComputeAlertID(c.Market.MarketID, ev.Direction, ev.EventID),
		MarketID:        c.Market.MarketID,
		MarketName:      c.Market.Question,
		MarketURL:       c.Market.URL(),
		Category:        c.Market.Category,
		Direction:       ev.Direction,
		OddsPct:         c.OddsPct,
		SizeUSD:         ev.SizeUSD,
		Score:           res.Total,
		ExpectedValue:   c.ExpectedValue,
		EventSummary:    eventSummary(ev),
		EvidenceBullets: evidenceBullets(res.Evidence),
		Mispricing:      mispricingSentence(c),
		Confidence:      c.Confidence,
		TopReasons:      res.TopReasons,
		CreatedAt:       now.UnixMilli(),
	}
	alert.Body = renderAlert(alert)
	return alert
}

func eventSummary(ev *domain.WhaleEvent) string {
	if ev.NewPosition {
		return fmt.Sprintf("New $%s %s position from a wallet inactive %.0f days",
			curation.FormatUSD(ev.SizeUSD), ev.Direction, ev.InactivityDays)
	}
	return fmt.Sprintf("%s position grown to $%s from $%s",
		ev.Direction, curation.FormatUSD(ev.SizeUSD), curation.FormatUSD(ev.PreviousSize))
}

// evidenceBullets keeps the most relevant sources, at most three.
func evidenceBullets(evidence []domain.ResearchResult) []string {
	ranked := make([]domain.ResearchResult, len(evidence))
	copy(ranked, evidence)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Relevance > ranked[j].Relevance
	})
	if len(ranked) > maxEvidenceLines {
		ranked = ranked[:maxEvidenceLines]
	}
	bullets := make([]string, 0, len(ranked))
	for _, r := range ranked {
		bullets = append(bullets, fmt.Sprintf("%s (%s)", clipRunes(r.Title, bulletTitleLen), r.Source))
	}
	return bullets
}

func mispricingSentence(c *domain.Candidate) string {
	return fmt.Sprintf("Evidence implies %.0f%% vs %.0f%% market odds, a %.0f point gap.",
		c.ImpliedPct, c.OddsPct, c.DivergencePts)
}

func renderAlert(a *domain.Alert) string {
	emoji := "🟢"
	if a.Direction == domain.DirectionNo {
		emoji = "🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s* | %s\n\n", emoji, a.Direction, clipRunes(a.MarketName, headerQuestionLen))
	fmt.Fprintf(&b, "💰 Whale: $%s\n", curation.FormatUSD(a.SizeUSD))
	fmt.Fprintf(&b, "📊 Odds: %.0f%%\n", a.OddsPct)
	fmt.Fprintf(&b, "🎯 Score: %.0f/100\n", a.Score)
	b.WriteString(a.EventSummary)
	b.WriteString("\n")

	if len(a.EvidenceBullets) > 0 {
		b.WriteString("\n*Evidence:*\n")
		for _, bullet := range a.EvidenceBullets {
			fmt.Fprintf(&b, "• %s\n", bullet)
		}
	}

	b.WriteString("\n")
	b.WriteString(a.Mispricing)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Confidence: %s\n", a.Confidence)
	for _, reason := range a.TopReasons {
		fmt.Fprintf(&b, "• %s\n", reason)
	}

	fmt.Fprintf(&b, "\n[View on Polymarket](%s)\n\n", a.MarketURL)
	fmt.Fprintf(&b, "⚠️ %s", domain.AlertDisclaimer)

	return clipRunes(b.String(), domain.AlertMaxMessageLen)
}

func clipRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
