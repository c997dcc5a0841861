package domain

// WalletHistory tracks a wallet's last known position in one market.
// Corresponds to wallet_history table in PostgreSQL, keyed by
// (wallet_address, market_id). Mutated exactly once per processed trade
// through an atomic upsert; rows idle past the retention horizon are
// pruned.
type WalletHistory struct {
	Wallet        string    // proxy wallet address
	MarketID      string    // market id
	LastSizeUSD   float64   // size of the last observed position change
	LastDirection Direction // direction of the last observed trade
	YesSizeUSD    float64   // cumulative YES-side exposure in USD
	NoSizeUSD     float64   // cumulative NO-side exposure in USD
	LastSeenAt    int64     // timestamp of last observed trade (ms)
	LastTradeID   string    // last applied trade id, guards replays
	TradeCount    int       // trades observed for this wallet/market
	CreatedAt     int64     // first observation timestamp (ms)
	UpdatedAt     int64     // last mutation timestamp (ms)
}

// DominantExposure returns the larger of the two side exposures and the
// direction holding it.
func (h *WalletHistory) DominantExposure() (float64, Direction) {
	if h.NoSizeUSD > h.YesSizeUSD {
		return h.NoSizeUSD, DirectionNo
	}
	return h.YesSizeUSD, DirectionYes
}

// OpposingExposure returns the exposure on the side opposite to dir.
func (h *WalletHistory) OpposingExposure(dir Direction) float64 {
	if dir == DirectionYes {
		return h.NoSizeUSD
	}
	return h.YesSizeUSD
}

// WalletDayCount is one day's trade tally for a wallet across all markets.
// Corresponds to wallet_day_counts table in PostgreSQL, keyed by
// (wallet_address, day). Backs the per-day and rolling 30-day exclusion
// ceilings; rows older than 35 days are pruned.
type WalletDayCount struct {
	Wallet     string // proxy wallet address
	Day        string // UTC day in YYYY-MM-DD form
	TradeCount int    // trades observed that day
}

// WalletStats is the behavioral profile the exclusion filter classifies.
// Assembled per cycle from the trade window and persisted day counts;
// never stored.
type WalletStats struct {
	Wallet            string
	TradesToday       int     // trades observed in the current UTC day
	Trades30Days      int     // trades observed over the trailing 30 days
	HoldsBothSides    bool    // concurrently holds YES and NO in one market
	AvgHoldingMinutes float64 // mean open-to-close time across closed positions
	ClosedPositions   int     // positions with an observed open and close
}
