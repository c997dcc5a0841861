package digest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Vitor-VarelAI/Polymarket/internal/curation"
	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// pickRow pairs a curated selection with the value bet it came from,
// which carries the $1-bet arithmetic the candidate does not.
type pickRow struct {
	item domain.CuratedItem
	bet  *domain.ValueBet
}

// Builder turns queued value bets into one digest.
type Builder struct {
	curator *curation.Curator
}

// NewBuilder builds a Builder over the given curator.
func NewBuilder(curator *curation.Curator) *Builder {
	return &Builder{curator: curator}
}

// Build curates picks from the queued value bets and renders the
// digest for the given edition. Returns nil when nothing qualifies.
// Every number in the body traces to scanner output or to arithmetic
// over it; a failed self-check logs and still returns the digest,
// since the body is deterministic.
func (b *Builder) Build(ctx context.Context, bets []*domain.ValueBet, edition string, now time.Time) *domain.Digest {
	if len(bets) == 0 {
		return nil
	}

	byMarket := make(map[string]*domain.ValueBet, len(bets))
	candidates := make([]*domain.Candidate, 0, len(bets))
	for _, vb := range bets {
		c := curation.BuildValueBetCandidate(vb)
		if c == nil {
			continue
		}
		candidates = append(candidates, c)
		byMarket[vb.Market.MarketID] = vb
	}
	if len(candidates) == 0 {
		return nil
	}

	items := b.curator.Curate(ctx, candidates)
	if len(items) == 0 {
		return nil
	}

	rows := make([]pickRow, 0, len(items))
	var maxReturn, evSum float64
	for _, item := range items {
		vb := byMarket[item.Candidate.Market.MarketID]
		if vb == nil {
			continue
		}
		rows = append(rows, pickRow{item: item, bet: vb})
		maxReturn += vb.WinAmount
		evSum += item.Candidate.ExpectedValue
	}
	if len(rows) == 0 {
		return nil
	}

	d := &domain.Digest{
		DigestID:    uuid.NewString(),
		GeneratedAt: now.UnixMilli(),
		Edition:     edition,
		Scanned:     len(bets),
		Picks:       items,
		Invested:    float64(len(rows)),
		MaxReturn:   maxReturn,
		AvgEV:       evSum / float64(len(rows)),
		BreakEvenPc: 100 / len(rows),
	}
	d.Body = renderDigest(d, rows, now)

	if !curation.Validate(d.Body, digestFacts(d, rows, now)) {
		log.Warn().
			Str("digest_id", d.DigestID).
			Msg("Digest body failed the numeric self-check")
	}

	log.Info().
		Str("edition", edition).
		Int("scanned", d.Scanned).
		Int("picks", len(rows)).
		Msg("Digest built")
	return d
}

// digestFacts is the union of every pick's fact set with the
// digest-level arithmetic and timestamp components the body prints.
func digestFacts(d *domain.Digest, rows []pickRow, now time.Time) []float64 {
	cur := now.UTC()
	facts := []float64{
		curation.StakeUSD,
		float64(cur.Hour()), float64(cur.Minute()),
		float64(cur.Day()), float64(cur.Year()),
		float64(d.Scanned), float64(len(rows)),
		d.Invested, d.MaxReturn, d.AvgEV, float64(d.BreakEvenPc),
	}
	for _, slot := range digestSlots {
		facts = append(facts, float64(slot.hour), float64(slot.minute))
	}
	for _, row := range rows {
		facts = append(facts, curation.Facts(row.item.Candidate)...)
		facts = append(facts, float64(row.item.Rank), row.bet.WinAmount, row.bet.WinAmount-1)
	}
	return facts
}
