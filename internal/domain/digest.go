package domain

// ValueBet is a long-shot candidate surfaced by the market scanner:
// a cheap outcome on a liquid market resolving soon. Feeds the digest
// path through the same curation machinery as whale candidates.
type ValueBet struct {
	Market           *Market
	Side             Direction // cheap side being backed
	EntryPrice       float64   // price of that side, percent (0-100)
	PayoutMultiple   float64   // 100 / EntryPrice
	WinAmount        float64   // gross return of a $1 stake
	LiquidityUSD     float64
	DaysToResolution int
}

// Digest is one scheduled digest message: the validated selections plus
// the deterministic summary block.
type Digest struct {
	DigestID    string // uuid
	GeneratedAt int64  // Unix ms
	Edition     string // Morning | Afternoon | Evening
	Scanned     int    // candidate markets scanned this pass
	Picks       []CuratedItem
	Invested    float64 // $1 per pick
	MaxReturn   float64 // sum of win amounts
	AvgEV       float64
	BreakEvenPc int    // win percentage needed to break even
	Body        string // rendered message
}
