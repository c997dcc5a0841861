package detect

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/idhash"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// Detection thresholds.
const (
	MinSizeUSD       = 10_000 // absolute notional floor in USD
	LiquidityPercent = 0.02   // dynamic floor as a share of market liquidity
	InactivityDays   = 14     // required idle days in the specific market
	GrowthRatio      = 0.5    // a re-entry must grow the position by more than this
	HedgeRatio       = 0.8    // opposing exposure cap relative to the dominant side
)

// Retention horizons for the persisted detection state.
const (
	HistoryRetentionDays  = 90 // wallet_history rows idle longer are pruned
	DayCountRetentionDays = 35 // wallet_day_counts rows older are pruned
)

const msPerDay = 24 * 60 * 60 * 1000

// Threshold returns the dynamic notional floor for a market: the fixed USD
// minimum or 2% of liquidity, whichever is larger.
func Threshold(liquidityUSD float64) float64 {
	if dyn := liquidityUSD * LiquidityPercent; dyn > MinSizeUSD {
		return dyn
	}
	return MinSizeUSD
}

// Detector turns a market's trade window into whale events. Every processed
// trade updates wallet history whether or not an event is emitted, and
// replaying an already-applied trade id is a no-op.
type Detector struct {
	history   storage.WalletHistoryStore
	dayCounts storage.WalletDayCountStore
	nowFn     func() time.Time
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithDetectorNow injects the clock, for tests.
func WithDetectorNow(fn func() time.Time) DetectorOption {
	return func(d *Detector) {
		d.nowFn = fn
	}
}

// NewDetector creates a detector over the persisted wallet state.
func NewDetector(history storage.WalletHistoryStore, dayCounts storage.WalletDayCountStore, opts ...DetectorOption) *Detector {
	d := &Detector{
		history:   history,
		dayCounts: dayCounts,
		nowFn:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ProcessWindow evaluates a market's trades oldest first and returns the
// whale events found. A store failure aborts the window: the replay guard
// and frequency ceilings cannot be enforced without the stores.
func (d *Detector) ProcessWindow(ctx context.Context, market *domain.Market, trades []*domain.TradeRecord) ([]*domain.WhaleEvent, error) {
	if market == nil {
		return nil, fmt.Errorf("market required")
	}
	threshold := Threshold(market.LiquidityUSD)

	var events []*domain.WhaleEvent
	for _, trade := range trades {
		event, err := d.processTrade(ctx, market, threshold, trade)
		if err != nil {
			return events, fmt.Errorf("process trade %s: %w", trade.TradeID, err)
		}
		if event != nil {
			events = append(events, event)
		}
	}

	if len(events) > 0 {
		log.Info().
			Str("market", market.MarketID).
			Int("events", len(events)).
			Float64("threshold", threshold).
			Msg("Whale events detected")
	}
	return events, nil
}

// processTrade applies one trade to the wallet's history and evaluates the
// detection rules against the state before and after it.
func (d *Detector) processTrade(ctx context.Context, market *domain.Market, threshold float64, trade *domain.TradeRecord) (*domain.WhaleEvent, error) {
	if trade.Wallet == "" || trade.TradeID == "" || trade.MarketID == "" {
		return nil, nil
	}

	dir := domain.TradeDirection(trade.Side, trade.Outcome)
	nowMs := d.nowFn().UnixMilli()

	var prev *domain.WalletHistory
	replay := false

	next, err := d.history.Upsert(ctx, trade.Wallet, trade.MarketID, func(cur *domain.WalletHistory) *domain.WalletHistory {
		if cur != nil {
			if cur.LastTradeID == trade.TradeID {
				replay = true
				return nil
			}
			cp := *cur
			prev = &cp
		}
		return applyTrade(cur, trade, dir, nowMs)
	})
	if err != nil {
		return nil, fmt.Errorf("update wallet history: %w", err)
	}
	if replay {
		return nil, nil
	}

	day := time.UnixMilli(trade.Timestamp).UTC().Format("2006-01-02")
	if err := d.dayCounts.Increment(ctx, trade.Wallet, day, 1); err != nil {
		return nil, fmt.Errorf("increment day count: %w", err)
	}

	// Rule 1: notional floor, dynamic per market.
	if trade.SizeUSD < threshold {
		return nil, nil
	}

	// Rule 2: the wallet must have been idle in this specific market.
	inactivity := 0.0
	if prev != nil {
		inactivity = float64(trade.Timestamp-prev.LastSeenAt) / msPerDay
		if inactivity < InactivityDays {
			return nil, nil
		}
	}

	// Rule 3: a new position, or a re-entry grown by more than half.
	prevSide := 0.0
	if prev != nil {
		prevSide = sideExposure(prev, dir)
	}
	newPosition := prevSide <= 0
	if !newPosition && sideExposure(next, dir) <= prevSide*(1+GrowthRatio) {
		return nil, nil
	}

	// Rule 4: exposure must be clearly directional toward the trade side.
	dominant, dominantDir := next.DominantExposure()
	if dominantDir != dir {
		return nil, nil
	}
	if opposing := next.OpposingExposure(dir); dominant > 0 && opposing > dominant*HedgeRatio {
		return nil, nil
	}

	ratio := 0.0
	if market.LiquidityUSD > 0 {
		ratio = trade.SizeUSD / market.LiquidityUSD
	}

	return &domain.WhaleEvent{
		EventID:        idhash.ComputeEventID(trade.MarketID, trade.Wallet, dir, trade.SizeUSD, trade.Timestamp),
		MarketID:       trade.MarketID,
		Direction:      dir,
		SizeUSD:        trade.SizeUSD,
		Wallet:         trade.Wallet,
		InactivityDays: inactivity,
		LiquidityRatio: ratio,
		Timestamp:      trade.Timestamp,
		NewPosition:    newPosition,
		PreviousSize:   prevSide,
	}, nil
}

// applyTrade folds one trade into the wallet's history record. Directional
// exposure accumulates per side: buying YES and selling NO both add to the
// YES side.
func applyTrade(cur *domain.WalletHistory, trade *domain.TradeRecord, dir domain.Direction, nowMs int64) *domain.WalletHistory {
	next := &domain.WalletHistory{}
	if cur != nil {
		*next = *cur
	} else {
		next.Wallet = trade.Wallet
		next.MarketID = trade.MarketID
		next.CreatedAt = nowMs
	}

	if dir == domain.DirectionYes {
		next.YesSizeUSD += trade.SizeUSD
	} else {
		next.NoSizeUSD += trade.SizeUSD
	}
	next.LastSizeUSD = sideExposure(next, dir)
	next.LastDirection = dir
	next.LastSeenAt = trade.Timestamp
	next.LastTradeID = trade.TradeID
	next.TradeCount++
	next.UpdatedAt = nowMs
	return next
}

// sideExposure returns the record's exposure on one side.
func sideExposure(h *domain.WalletHistory, dir domain.Direction) float64 {
	if dir == domain.DirectionYes {
		return h.YesSizeUSD
	}
	return h.NoSizeUSD
}
