package domain

// TradeRecord represents one executed trade from the Polymarket feed.
// Read-only input to the detector; never mutated or persisted.
type TradeRecord struct {
	TradeID   string  // feed trade id, dedup key for replays
	MarketID  string  // market the trade executed in
	Wallet    string  // proxy wallet address (0x hex)
	Side      string  // "BUY" | "SELL" of the outcome token
	Outcome   string  // outcome token traded, "Yes" | "No"
	SizeUSD   float64 // notional value in USD
	Price     float64 // execution price in [0,1]
	Timestamp int64   // Unix timestamp in milliseconds
	TxHash    string  // Polygon transaction hash
}

// Trade side constants
const (
	TradeSideBuy  = "BUY"
	TradeSideSell = "SELL"
)

// Direction is the binary position direction a trade or event expresses.
type Direction string

const (
	DirectionYes Direction = "YES"
	DirectionNo  Direction = "NO"
)

// String returns the string representation of Direction.
func (d Direction) String() string {
	return string(d)
}

// Opposite returns the other side of the binary market.
func (d Direction) Opposite() Direction {
	if d == DirectionYes {
		return DirectionNo
	}
	return DirectionYes
}

// TradeDirection maps a trade's side and outcome token to the position
// direction it expresses: buying Yes and selling No both lean YES.
func TradeDirection(side, outcome string) Direction {
	buying := side == TradeSideBuy
	yesToken := outcome != "No"
	if buying == yesToken {
		return DirectionYes
	}
	return DirectionNo
}
