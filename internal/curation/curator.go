package curation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/observability"
)

// DefaultPicks is how many selections one curation pass asks for.
const DefaultPicks = 10

const systemPrompt = "You are a data analyst. Output ONLY valid JSON. Never invent facts."

// Completer produces one chat completion. The curation stage treats it
// as untrusted: anything it returns is re-validated before use.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Curator runs the selection-and-phrasing pass over a closed candidate
// set. The completer picks candidates and writes prose around the
// precomputed numbers; it is never allowed to introduce one.
type Curator struct {
	completer Completer
	picks     int
}

type CuratorOption func(*Curator)

// WithPicks overrides how many selections a pass may keep.
func WithPicks(n int) CuratorOption {
	return func(c *Curator) {
		if n > 0 {
			c.picks = n
		}
	}
}

func NewCurator(completer Completer, opts ...CuratorOption) *Curator {
	c := &Curator{completer: completer, picks: DefaultPicks}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type promptCandidate struct {
	ID             int     `json:"id"`
	Market         string  `json:"market"`
	Category       string  `json:"category"`
	Side           string  `json:"side"`
	OddsPct        float64 `json:"odds_pct"`
	PayoutMultiple float64 `json:"payout_multiple"`
	LiquidityUSD   float64 `json:"liquidity_usd"`
	DaysToResolve  int     `json:"days_to_resolve"`
	EVScore        float64 `json:"ev_score"`
	Confidence     string  `json:"confidence"`
	Score          float64 `json:"score,omitempty"`
}

type selectionResponse struct {
	Selections []struct {
		ID        int    `json:"id"`
		Rationale string `json:"rationale"`
	} `json:"selections"`
}

type rephraseResponse struct {
	Rationale string `json:"rationale"`
}

// Curate asks the completer to select and phrase up to the pick limit
// from the offered candidates. Each rationale is validated against the
// candidate's structured facts; a failed one is regenerated once and
// the selection dropped if it fails again. A completer error or an
// unusable response falls back to the deterministic selection.
func (cu *Curator) Curate(ctx context.Context, candidates []*domain.Candidate) []domain.CuratedItem {
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) > QueueCap {
		candidates = candidates[:QueueCap]
	}
	if cu.completer == nil {
		return cu.Fallback(candidates)
	}
	offered := promptCandidates(candidates)
	raw, err := cu.completer.Complete(ctx, systemPrompt, selectionPrompt(offered, cu.picks))
	if err != nil {
		log.Warn().Err(err).Msg("Curation completer failed, using fallback selection")
		return cu.Fallback(candidates)
	}
	var resp selectionResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &resp); err != nil {
		log.Warn().Err(err).Msg("Curation response is not valid JSON, using fallback selection")
		return cu.Fallback(candidates)
	}

	items := make([]domain.CuratedItem, 0, cu.picks)
	used := make(map[int]bool)
	dropped := 0
	for _, sel := range resp.Selections {
		if len(items) == cu.picks {
			break
		}
		if sel.ID < 0 || sel.ID >= len(candidates) || used[sel.ID] {
			log.Warn().Int("id", sel.ID).Msg("Curation selection id not in offered set")
			continue
		}
		used[sel.ID] = true
		c := candidates[sel.ID]
		rationale, ok := cu.vetRationale(ctx, c, offered[sel.ID], sel.Rationale)
		if !ok {
			dropped++
			observability.DefaultMetrics.RationalesRejected.Inc()
			continue
		}
		items = append(items, domain.CuratedItem{Candidate: c, Rank: len(items) + 1, Rationale: rationale})
	}
	log.Info().
		Int("offered", len(candidates)).
		Int("selected", len(items)).
		Int("dropped", dropped).
		Msg("Curation complete")
	return items
}

// vetRationale enforces the numeric grounding contract: a rationale
// carrying a number that traces to no structured fact is regenerated
// once from the candidate's data alone, then abandoned.
func (cu *Curator) vetRationale(ctx context.Context, c *domain.Candidate, offered promptCandidate, rationale string) (string, bool) {
	facts := Facts(c)
	if rationale != "" && Validate(rationale, facts) {
		return rationale, true
	}
	log.Warn().
		Str("market_id", c.Market.MarketID).
		Str("rationale", rationale).
		Msg("Curated rationale failed numeric validation, regenerating")
	raw, err := cu.completer.Complete(ctx, systemPrompt, rephrasePrompt(offered))
	if err != nil {
		return "", false
	}
	var resp rephraseResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &resp); err != nil {
		return "", false
	}
	if resp.Rationale == "" || !Validate(resp.Rationale, facts) {
		log.Warn().
			Str("market_id", c.Market.MarketID).
			Msg("Regenerated rationale failed numeric validation, dropping selection")
		return "", false
	}
	return resp.Rationale, true
}

func promptCandidates(candidates []*domain.Candidate) []promptCandidate {
	out := make([]promptCandidate, len(candidates))
	for i, c := range candidates {
		out[i] = promptCandidate{
			ID:             i,
			Market:         c.Market.Question,
			Category:       c.Market.Category,
			Side:           c.Direction.String(),
			OddsPct:        round1(c.OddsPct),
			PayoutMultiple: round2(c.PayoutMultiple),
			LiquidityUSD:   math.Round(c.LiquidityUSD),
			DaysToResolve:  c.DaysToResolution,
			EVScore:        c.ExpectedValue,
			Confidence:     c.Confidence,
		}
		if c.Score != nil {
			out[i].Score = c.Score.Total
		}
	}
	return out
}

func selectionPrompt(offered []promptCandidate, picks int) string {
	blob, _ := json.MarshalIndent(offered, "", "  ")
	var b strings.Builder
	fmt.Fprintf(&b, "You are a Polymarket analyst. From this list of candidates, select exactly %d (or fewer if not enough qualify).\n\n", picks)
	b.WriteString("SELECTION RULES (use ONLY provided data):\n")
	b.WriteString("1. Prioritize DIVERSE categories (max 3 from the same category)\n")
	b.WriteString("2. Prefer HIGH confidence candidates\n")
	b.WriteString("3. Prefer positive ev_score\n")
	b.WriteString("4. Prefer higher liquidity_usd\n")
	b.WriteString("5. Prefer sooner resolution\n\n")
	b.WriteString("CANDIDATES (all data is live from Polymarket):\n")
	b.Write(blob)
	b.WriteString("\n\nFor each selection give the candidate id (must match the list) and a one-sentence rationale that uses ONLY the provided metrics.\n\n")
	b.WriteString("OUTPUT STRICT JSON ONLY:\n")
	b.WriteString(`{"selections":[{"id":0,"rationale":"..."}]}`)
	b.WriteString("\n\nRULES:\n")
	b.WriteString("- Reference ONLY numbers from the provided data\n")
	b.WriteString("- Do NOT invent facts or news\n")
	b.WriteString("- Do NOT make price predictions\n")
	fmt.Fprintf(&b, "- If fewer than %d qualify, return fewer\n", picks)
	return b.String()
}

func rephrasePrompt(offered promptCandidate) string {
	blob, _ := json.MarshalIndent(offered, "", "  ")
	var b strings.Builder
	b.WriteString("Rewrite the rationale for this candidate in one sentence. Use ONLY the numbers shown below, verbatim.\n\n")
	b.WriteString("CANDIDATE:\n")
	b.Write(blob)
	b.WriteString("\n\nOUTPUT STRICT JSON ONLY:\n")
	b.WriteString(`{"rationale":"..."}`)
	return b.String()
}

// stripCodeFence unwraps a completion the model wrapped in a markdown
// code fence despite the JSON-only instruction.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	for _, fence := range []string{"```json", "```"} {
		i := strings.Index(s, fence)
		if i < 0 {
			continue
		}
		rest := s[i+len(fence):]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	return s
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
