package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/Vitor-VarelAI/Polymarket/internal/curation"
	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

const digestDivider = "━━━━━━━━━━━━━━━━━━━━━"

const digestTitleLen = 60

func renderDigest(d *domain.Digest, rows []pickRow, now time.Time) string {
	cur := now.UTC()
	fetchTime := cur.Format("15:04") + " UTC"
	dateStr := cur.Format("Jan 02, 2006")

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 *POLYMARKET DIGEST*\n")
	fmt.Fprintf(&b, "📅 %s • %s • %s\n\n", d.Edition, dateStr, fetchTime)
	fmt.Fprintf(&b, "From %d scanned markets, selected %d data-driven picks.\n\n", d.Scanned, len(rows))
	b.WriteString(digestDivider)

	for _, row := range rows {
		c := row.item.Candidate
		vb := row.bet
		fmt.Fprintf(&b, "\n\n*#%d* %s %s\n\n", row.item.Rank, confidenceEmoji(c.Confidence), c.Confidence)
		fmt.Fprintf(&b, "📊 *%s*\n", clipTitle(vb.Market.Question, digestTitleLen))
		fmt.Fprintf(&b, "   Odds: %s %.1f%% | Liquidity: $%s\n", vb.Side, vb.EntryPrice, curation.FormatUSD(vb.LiquidityUSD))
		fmt.Fprintf(&b, "   Resolves: %d days | EV: %+.2f\n\n", vb.DaysToResolution, c.ExpectedValue)
		fmt.Fprintf(&b, "💵 *$1 Bet:* Win $%.2f (%.1fx) or Lose $1\n\n", vb.WinAmount-1, vb.PayoutMultiple)
		fmt.Fprintf(&b, "🧠 _%s_\n\n", row.item.Rationale)
		fmt.Fprintf(&b, "🔗 [Place Bet](%s)\n\n", vb.Market.URL())
		b.WriteString(digestDivider)
	}

	fmt.Fprintf(&b, "\n\n📊 *SUMMARY*\n")
	fmt.Fprintf(&b, "• Invested: $%.2f | Max Return: $%.2f\n", d.Invested, d.MaxReturn)
	fmt.Fprintf(&b, "• Average EV: %+.3f\n", d.AvgEV)
	fmt.Fprintf(&b, "• Break-even: ~%d%% win rate\n\n", d.BreakEvenPc)
	fmt.Fprintf(&b, "⚠️ *%s Data from Polymarket at %s.*\n\n", domain.AlertDisclaimer, fetchTime)
	fmt.Fprintf(&b, "⏰ Next digest: %s", NextTime(now))
	return b.String()
}

func confidenceEmoji(confidence string) string {
	switch confidence {
	case domain.ConfidenceHigh:
		return "🟢"
	case domain.ConfidenceMedium:
		return "🟡"
	case domain.ConfidenceLow:
		return "🔴"
	}
	return "⚪"
}

func clipTitle(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
