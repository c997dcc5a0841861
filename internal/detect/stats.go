package detect

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// StatsBuilder assembles a wallet's behavioral profile from the cycle's
// trade window plus the persisted day counts.
type StatsBuilder struct {
	dayCounts storage.WalletDayCountStore
}

// NewStatsBuilder creates a stats builder over the day-count store.
func NewStatsBuilder(dayCounts storage.WalletDayCountStore) *StatsBuilder {
	return &StatsBuilder{dayCounts: dayCounts}
}

// Build computes WalletStats for one wallet. window holds the cycle's
// trades in any order; trades of other wallets are ignored.
func (b *StatsBuilder) Build(ctx context.Context, wallet string, window []*domain.TradeRecord, now time.Time) (*domain.WalletStats, error) {
	today := now.UTC().Format("2006-01-02")
	fromDay := now.UTC().AddDate(0, 0, -30).Format("2006-01-02")

	todayCount, err := b.dayCounts.CountDay(ctx, wallet, today)
	if err != nil {
		return nil, fmt.Errorf("count today: %w", err)
	}
	count30, err := b.dayCounts.CountSince(ctx, wallet, fromDay)
	if err != nil {
		return nil, fmt.Errorf("count 30d: %w", err)
	}

	stats := &domain.WalletStats{
		Wallet:       wallet,
		TradesToday:  todayCount,
		Trades30Days: count30,
	}
	foldWindow(stats, wallet, window)
	return stats, nil
}

// foldWindow derives both-sides and holding-time stats from the window.
func foldWindow(stats *domain.WalletStats, wallet string, window []*domain.TradeRecord) {
	trades := make([]*domain.TradeRecord, 0, len(window))
	for _, t := range window {
		if t.Wallet == wallet {
			trades = append(trades, t)
		}
	}
	// Pairing needs execution order.
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp < trades[j].Timestamp
	})

	type sides struct{ yes, no bool }
	bought := make(map[string]*sides)

	// Open buy timestamps per market and outcome token, FIFO.
	opens := make(map[string][]int64)

	var totalMinutes float64
	closed := 0

	for _, t := range trades {
		if t.Side == domain.TradeSideBuy && t.Outcome != "" {
			s := bought[t.MarketID]
			if s == nil {
				s = &sides{}
				bought[t.MarketID] = s
			}
			if t.Outcome == "No" {
				s.no = true
			} else {
				s.yes = true
			}
			if s.yes && s.no {
				stats.HoldsBothSides = true
			}
		}

		key := t.MarketID + "|" + t.Outcome
		switch t.Side {
		case domain.TradeSideBuy:
			opens[key] = append(opens[key], t.Timestamp)
		case domain.TradeSideSell:
			if q := opens[key]; len(q) > 0 {
				totalMinutes += float64(t.Timestamp-q[0]) / 60000
				opens[key] = q[1:]
				closed++
			}
		}
	}

	stats.ClosedPositions = closed
	if closed > 0 {
		stats.AvgHoldingMinutes = totalMinutes / float64(closed)
	}
}
