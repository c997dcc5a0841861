package domain

// WhaleEvent represents a detected large, new, directional position
// opened by a previously inactive wallet. Created by the detector when
// every detection predicate holds; immutable afterward.
type WhaleEvent struct {
	EventID        string    // deterministic hash, dedup key
	MarketID       string    // market the position was opened in
	Direction      Direction // YES | NO
	SizeUSD        float64   // notional position size in USD
	Wallet         string    // originating wallet
	InactivityDays float64   // days since the wallet's last activity in this market
	LiquidityRatio float64   // size / market liquidity at detection time
	Timestamp      int64     // trade timestamp, Unix ms
	NewPosition    bool      // true for a first position, false for >50% growth
	PreviousSize   float64   // last known position size before this trade
}
