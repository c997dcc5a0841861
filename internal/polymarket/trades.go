package polymarket

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// DataAPIBaseURL is the Polymarket Data API endpoint for trade history.
const DataAPIBaseURL = "https://data-api.polymarket.com"

// DefaultTradeLimit caps trades returned per fetch.
const DefaultTradeLimit = 500

// TradesClient polls executed trades from the Data API.
type TradesClient struct {
	http *HTTPClient
}

// NewTradesClient creates a Data API trades client.
func NewTradesClient(opts ...ClientOption) *TradesClient {
	return NewTradesClientWithBase(DataAPIBaseURL, opts...)
}

// NewTradesClientWithBase creates a trades client against a custom base URL.
func NewTradesClientWithBase(baseURL string, opts ...ClientOption) *TradesClient {
	return &TradesClient{http: NewHTTPClient(baseURL, opts...)}
}

// apiTrade is a trade as returned by the Data API.
type apiTrade struct {
	ID              string `json:"id"`
	TradeID         string `json:"trade_id"`
	Market          string `json:"market"`
	AssetID         string `json:"asset_id"`
	MakerAddress    string `json:"maker_address"`
	TakerAddress    string `json:"taker_address"`
	Side            string `json:"side"`
	Size            string `json:"size"`
	Price           string `json:"price"`
	Outcome         string `json:"outcome"`
	Timestamp       int64  `json:"timestamp"` // Unix ms
	TransactionHash string `json:"transaction_hash"`
}

// FetchSince returns trades executed after the given timestamp (Unix ms),
// oldest first so the detector replays them in execution order.
func (c *TradesClient) FetchSince(ctx context.Context, afterMs int64, limit int) ([]*domain.TradeRecord, error) {
	if limit <= 0 {
		limit = DefaultTradeLimit
	}

	query := url.Values{}
	query.Set("after", strconv.FormatInt(afterMs, 10))
	query.Set("limit", strconv.Itoa(limit))

	var apiTrades []apiTrade
	if err := c.http.getJSON(ctx, "/trades", query, &apiTrades); err != nil {
		return nil, fmt.Errorf("fetch trades: %w", err)
	}

	trades := make([]*domain.TradeRecord, 0, len(apiTrades))
	for i := range apiTrades {
		if t := mapTrade(&apiTrades[i]); t != nil {
			trades = append(trades, t)
		}
	}

	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Timestamp != trades[j].Timestamp {
			return trades[i].Timestamp < trades[j].Timestamp
		}
		return trades[i].TradeID < trades[j].TradeID
	})

	return trades, nil
}

// FetchMarketSince returns trades for a single market after the timestamp.
func (c *TradesClient) FetchMarketSince(ctx context.Context, marketID string, afterMs int64, limit int) ([]*domain.TradeRecord, error) {
	if marketID == "" {
		return nil, fmt.Errorf("market id required")
	}
	if limit <= 0 {
		limit = DefaultTradeLimit
	}

	query := url.Values{}
	query.Set("market", marketID)
	query.Set("after", strconv.FormatInt(afterMs, 10))
	query.Set("limit", strconv.Itoa(limit))

	var apiTrades []apiTrade
	if err := c.http.getJSON(ctx, "/trades", query, &apiTrades); err != nil {
		return nil, fmt.Errorf("fetch trades for %s: %w", marketID, err)
	}

	trades := make([]*domain.TradeRecord, 0, len(apiTrades))
	for i := range apiTrades {
		if t := mapTrade(&apiTrades[i]); t != nil {
			trades = append(trades, t)
		}
	}

	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Timestamp != trades[j].Timestamp {
			return trades[i].Timestamp < trades[j].Timestamp
		}
		return trades[i].TradeID < trades[j].TradeID
	})

	return trades, nil
}

// mapTrade converts an API trade to the domain record. Trades without a
// wallet or id are dropped.
func mapTrade(t *apiTrade) *domain.TradeRecord {
	wallet := t.MakerAddress
	if wallet == "" {
		wallet = t.TakerAddress
	}
	tradeID := t.TradeID
	if tradeID == "" {
		tradeID = t.ID
	}
	if wallet == "" || tradeID == "" {
		return nil
	}

	price := parseFloatSafe(t.Price)
	size := parseFloatSafe(t.Size)

	return &domain.TradeRecord{
		TradeID:   tradeID,
		MarketID:  t.Market,
		Wallet:    wallet,
		Side:      t.Side,
		Outcome:   t.Outcome,
		SizeUSD:   price * size,
		Price:     price,
		Timestamp: t.Timestamp,
		TxHash:    t.TransactionHash,
	}
}

// parseFloatSafe parses a decimal string, returning 0 on error.
func parseFloatSafe(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
