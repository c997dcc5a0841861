// Package track joins final market outcomes onto the sent-alert log.
// Every delivered alert carries its direction, odds and score at send
// time; once the market resolves, the tracker records whether the
// alerted side won and what a $1 stake at the alerted odds returned.
package track

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// ResolutionSource fetches the current state of one market, including
// markets that have closed and left the active listings.
type ResolutionSource interface {
	GetMarketByID(ctx context.Context, marketID string) (*domain.Market, error)
}

// Result summarizes one tracking pass.
type Result struct {
	Checked  int // alerts without a recorded outcome examined
	Recorded int // outcomes written this pass
	Pending  int // alerts whose market has not settled yet
	Missing  int // alerts whose market the API no longer serves
	Errors   []error
}

// Tracker resolves sent alerts against final market outcomes and keeps
// aggregate performance figures per category.
type Tracker struct {
	sent     storage.SentAlertStore
	outcomes storage.OutcomeStore
	source   ResolutionSource
}

func NewTracker(sent storage.SentAlertStore, outcomes storage.OutcomeStore, source ResolutionSource) *Tracker {
	return &Tracker{sent: sent, outcomes: outcomes, source: source}
}

// Run examines every logged alert without a recorded outcome, fetches
// its market once and records an outcome row for markets that have
// resolved. Fetch and insert failures are collected per market, never
// fatal; unresolved alerts stay pending for the next pass.
func (t *Tracker) Run(ctx context.Context, now time.Time) (*Result, error) {
	sent, err := t.sent.GetSince(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("load sent alerts: %w", err)
	}

	res := &Result{}

	// Group unresolved alerts per market, oldest market first.
	pending := make(map[string][]*domain.SentAlert)
	var order []string
	for _, sa := range sent {
		done, err := t.outcomes.Has(ctx, sa.AlertID)
		if err != nil {
			return nil, fmt.Errorf("check outcome %s: %w", sa.AlertID, err)
		}
		if done {
			continue
		}
		res.Checked++
		if _, ok := pending[sa.MarketID]; !ok {
			order = append(order, sa.MarketID)
		}
		pending[sa.MarketID] = append(pending[sa.MarketID], sa)
	}

	for _, marketID := range order {
		market, err := t.source.GetMarketByID(ctx, marketID)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("fetch market %s: %w", marketID, err))
			continue
		}
		if market == nil {
			res.Missing += len(pending[marketID])
			continue
		}

		winner, resolved := market.Resolution()
		if !resolved {
			res.Pending += len(pending[marketID])
			continue
		}

		for _, sa := range pending[marketID] {
			outcome := buildOutcome(sa, winner, now)
			err := t.outcomes.Insert(ctx, outcome)
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			if err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("record outcome %s: %w", sa.AlertID, err))
				continue
			}
			res.Recorded++
			log.Info().
				Str("alert_id", sa.AlertID).
				Str("market_id", sa.MarketID).
				Str("winner", string(winner)).
				Bool("won", outcome.Won).
				Msg("Alert outcome recorded")
		}
	}

	log.Info().
		Int("checked", res.Checked).
		Int("recorded", res.Recorded).
		Int("pending", res.Pending).
		Int("missing", res.Missing).
		Int("errors", len(res.Errors)).
		Msg("Tracking pass complete")
	return res, nil
}

// Stats returns aggregate performance per category with the overall
// row last.
func (t *Tracker) Stats(ctx context.Context) ([]*domain.OutcomeStats, error) {
	return t.outcomes.Stats(ctx)
}

// buildOutcome scores one sent alert against the winning side. The
// realized multiple is the gross payout per $1 staked at the alerted
// odds, zero on a loss.
func buildOutcome(sa *domain.SentAlert, winner domain.Direction, now time.Time) *domain.AlertOutcome {
	won := sa.Direction == winner
	var multiple float64
	if won && sa.OddsPct > 0 {
		multiple = 100 / sa.OddsPct
	}
	return &domain.AlertOutcome{
		AlertID:          sa.AlertID,
		MarketID:         sa.MarketID,
		Category:         sa.Category,
		Direction:        string(sa.Direction),
		Score:            sa.Score,
		ExpectedValue:    sa.ExpectedValue,
		OddsAtAlert:      sa.OddsPct,
		SentAt:           sa.SentAt,
		ResolvedAt:       now.UnixMilli(),
		Won:              won,
		RealizedMultiple: multiple,
	}
}

// FormatStats renders aggregate performance as a Telegram-ready block.
func FormatStats(stats []*domain.OutcomeStats) string {
	var overall *domain.OutcomeStats
	var categories []*domain.OutcomeStats
	for _, s := range stats {
		if s.Category == "ALL" {
			overall = s
		} else {
			categories = append(categories, s)
		}
	}
	if overall == nil || overall.Alerts == 0 {
		return "📊 *Signal Performance*\n\n_No resolved alerts yet._"
	}

	var b strings.Builder
	b.WriteString("📊 *Signal Performance*\n\n")
	fmt.Fprintf(&b, "*Win Rate:* %.1f%% [%s]\n", overall.WinRate*100, winBar(overall.WinRate))
	fmt.Fprintf(&b, "├ ✅ Wins: %d\n", overall.Wins)
	fmt.Fprintf(&b, "└ ❌ Losses: %d\n", overall.Alerts-overall.Wins)
	b.WriteString("\n")
	fmt.Fprintf(&b, "*Avg Score:* %.1f\n", overall.AvgScore)
	fmt.Fprintf(&b, "*Avg Realized Multiple:* %.2fx\n", overall.AvgMultiple)

	if len(categories) > 0 {
		b.WriteString("\n*By Category:*\n")
		for i, s := range categories {
			branch := "├"
			if i == len(categories)-1 {
				branch = "└"
			}
			fmt.Fprintf(&b, "%s %s: %.1f%% (%d/%d)\n", branch, s.Category, s.WinRate*100, s.Wins, s.Alerts)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// winBar draws the ten-segment win rate bar.
func winBar(rate float64) string {
	filled := int(rate*100) / 10
	if filled > 10 {
		filled = 10
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}
