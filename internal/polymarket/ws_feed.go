package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// WSBaseURL is the Polymarket CLOB WebSocket endpoint (market channel).
const WSBaseURL = "wss://ws-subscriptions-clob.polymarket.com/ws/market"

// Reconnection and heartbeat tuning.
const (
	wsInitialBackoff   = 1 * time.Second
	wsMaxBackoff       = 60 * time.Second
	wsBackoffFactor    = 2.0
	wsJitterPercent    = 0.2
	wsHandshakeTimeout = 10 * time.Second
	wsWriteTimeout     = 10 * time.Second
	wsReadTimeout      = 70 * time.Second
	wsPingInterval     = 10 * time.Second

	// DefaultFeedBuffer bounds trades held between cycle drains.
	DefaultFeedBuffer = 10000
)

// AssetMeta resolves a CLOB asset id to its market and outcome side.
type AssetMeta struct {
	MarketID string
	Outcome  string
}

// Feed maintains a CLOB WebSocket subscription and buffers executed trades
// until the next cycle drains them. Reconnects with jittered exponential
// backoff and resubscribes the current asset set.
type Feed struct {
	url    string
	conn   *websocket.Conn
	connMu sync.Mutex

	closed   atomic.Bool
	stopChan chan struct{}
	wg       sync.WaitGroup
	backoff  time.Duration

	assetsMu sync.RWMutex
	assets   map[string]AssetMeta

	bufMu     sync.Mutex
	buf       []*domain.TradeRecord
	maxBuffer int
	dropped   uint64

	nowFn func() time.Time
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithFeedBuffer bounds the number of trades buffered between drains.
func WithFeedBuffer(n int) FeedOption {
	return func(f *Feed) {
		if n > 0 {
			f.maxBuffer = n
		}
	}
}

// WithNowFunc injects the clock, for tests.
func WithNowFunc(fn func() time.Time) FeedOption {
	return func(f *Feed) {
		f.nowFn = fn
	}
}

// NewFeed creates a trade feed for the given WebSocket URL.
func NewFeed(url string, opts ...FeedOption) *Feed {
	if url == "" {
		url = WSBaseURL
	}
	f := &Feed{
		url:       url,
		stopChan:  make(chan struct{}),
		backoff:   wsInitialBackoff,
		assets:    make(map[string]AssetMeta),
		maxBuffer: DefaultFeedBuffer,
		nowFn:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetAssets replaces the subscribed asset set. Takes effect on the next
// (re)connect.
func (f *Feed) SetAssets(assets map[string]AssetMeta) {
	f.assetsMu.Lock()
	f.assets = assets
	f.assetsMu.Unlock()
}

// Start launches the connection loop.
func (f *Feed) Start(ctx context.Context) {
	f.wg.Add(1)
	go f.runLoop(ctx)
}

// Stop closes the feed and waits for goroutines to exit.
func (f *Feed) Stop() {
	if !f.closed.CompareAndSwap(false, true) {
		return
	}
	close(f.stopChan)
	f.closeConnection()
	f.wg.Wait()
}

// Drain returns all buffered trades, oldest first, and empties the buffer.
func (f *Feed) Drain() []*domain.TradeRecord {
	f.bufMu.Lock()
	defer f.bufMu.Unlock()

	out := f.buf
	f.buf = nil
	return out
}

// Dropped reports trades discarded because the buffer was full.
func (f *Feed) Dropped() uint64 {
	f.bufMu.Lock()
	defer f.bufMu.Unlock()
	return f.dropped
}

func (f *Feed) runLoop(ctx context.Context) {
	defer f.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.stopChan:
			return
		default:
		}

		if err := f.connect(ctx); err != nil {
			log.Warn().Err(err).Dur("backoff", f.backoff).Msg("ws connect failed")
			f.waitBackoff(ctx)
			continue
		}

		pingDone := make(chan struct{})
		f.wg.Add(1)
		go f.pingLoop(pingDone)

		if err := f.readLoop(ctx); err != nil {
			log.Warn().Err(err).Msg("ws read error")
		}

		close(pingDone)
		f.closeConnection()

		select {
		case <-ctx.Done():
			return
		case <-f.stopChan:
			return
		default:
			f.waitBackoff(ctx)
		}
	}
}

func (f *Feed) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}

	headers := http.Header{}
	headers.Set("Origin", "https://polymarket.com")

	conn, resp, err := dialer.DialContext(ctx, f.url, headers)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial failed: %w", err)
	}

	f.connMu.Lock()
	f.conn = conn
	f.connMu.Unlock()

	f.backoff = wsInitialBackoff

	if err := f.subscribe(); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	log.Info().Str("endpoint", f.url).Msg("ws connected")
	return nil
}

// subscribe sends the market-channel subscription for the current asset set.
func (f *Feed) subscribe() error {
	f.assetsMu.RLock()
	ids := make([]string, 0, len(f.assets))
	for id := range f.assets {
		ids = append(ids, id)
	}
	f.assetsMu.RUnlock()

	msg := map[string]interface{}{
		"type":       "market",
		"assets_ids": ids,
	}

	f.connMu.Lock()
	defer f.connMu.Unlock()

	if f.conn == nil {
		return fmt.Errorf("connection is nil")
	}

	f.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := f.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send subscribe message: %w", err)
	}
	return nil
}

func (f *Feed) readLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.stopChan:
			return nil
		default:
		}

		f.connMu.Lock()
		conn := f.conn
		f.connMu.Unlock()
		if conn == nil {
			return fmt.Errorf("connection is nil")
		}

		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		f.handleMessage(message)
	}
}

func (f *Feed) pingLoop(done <-chan struct{}) {
	defer f.wg.Done()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-f.stopChan:
			return
		case <-ticker.C:
			f.connMu.Lock()
			conn := f.conn
			f.connMu.Unlock()
			if conn == nil {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Msg("ws ping failed")
				return
			}
		}
	}
}

// wsTrade is a trade event as delivered on the market channel. Polymarket
// sends both bare objects and arrays; numbers arrive as strings.
type wsTrade struct {
	EventType string `json:"event_type"`
	Type      string `json:"type"`
	ID        string `json:"id"`
	TradeID   string `json:"trade_id"`
	Market    string `json:"market"`
	AssetID   string `json:"asset_id"`
	Maker     string `json:"maker_address"`
	Taker     string `json:"taker_address"`
	Side      string `json:"side"`
	Size      string `json:"size"`
	Price     string `json:"price"`
	Outcome   string `json:"outcome"`
	Timestamp string `json:"timestamp"`
	TxHash    string `json:"transaction_hash"`
}

func (f *Feed) handleMessage(data []byte) {
	var batch []wsTrade
	if err := json.Unmarshal(data, &batch); err != nil {
		var single wsTrade
		if err := json.Unmarshal(data, &single); err != nil {
			return
		}
		batch = []wsTrade{single}
	}

	for i := range batch {
		if t := f.mapWSTrade(&batch[i]); t != nil {
			f.push(t)
		}
	}
}

// mapWSTrade converts a trade event into a domain record, resolving asset
// ids through the subscribed asset set. Book snapshots and price updates
// carry no wallet and are ignored.
func (f *Feed) mapWSTrade(t *wsTrade) *domain.TradeRecord {
	kind := t.EventType
	if kind == "" {
		kind = t.Type
	}
	if kind != "trade" {
		return nil
	}

	marketID := t.Market
	outcome := t.Outcome
	if t.AssetID != "" {
		f.assetsMu.RLock()
		meta, ok := f.assets[t.AssetID]
		f.assetsMu.RUnlock()
		if ok {
			if marketID == "" {
				marketID = meta.MarketID
			}
			if outcome == "" {
				outcome = meta.Outcome
			}
		}
	}

	wallet := t.Maker
	if wallet == "" {
		wallet = t.Taker
	}
	if marketID == "" || wallet == "" {
		return nil
	}

	tradeID := t.TradeID
	if tradeID == "" {
		tradeID = t.ID
	}
	if tradeID == "" {
		tradeID = fmt.Sprintf("ws-%s-%s-%s", marketID, wallet, t.Timestamp)
	}

	price := parseFloatSafe(t.Price)
	size := parseFloatSafe(t.Size)

	return &domain.TradeRecord{
		TradeID:   tradeID,
		MarketID:  marketID,
		Wallet:    wallet,
		Side:      t.Side,
		Outcome:   outcome,
		SizeUSD:   price * size,
		Price:     price,
		Timestamp: f.parseWSTimestamp(t.Timestamp),
		TxHash:    t.TxHash,
	}
}

// parseWSTimestamp accepts unix seconds, unix ms, or RFC3339.
func (f *Feed) parseWSTimestamp(s string) int64 {
	if s == "" {
		return f.nowFn().UnixMilli()
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ts > 1e12 {
			return ts
		}
		return ts * 1000
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UnixMilli()
	}
	return f.nowFn().UnixMilli()
}

// push appends a trade, evicting the oldest entry when the buffer is full.
func (f *Feed) push(t *domain.TradeRecord) {
	f.bufMu.Lock()
	defer f.bufMu.Unlock()

	if len(f.buf) >= f.maxBuffer {
		f.buf = f.buf[1:]
		f.dropped++
	}
	f.buf = append(f.buf, t)
}

func (f *Feed) closeConnection() {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
}

func (f *Feed) waitBackoff(ctx context.Context) {
	jitter := time.Duration(float64(f.backoff) * wsJitterPercent * (rand.Float64()*2 - 1))
	wait := f.backoff + jitter

	select {
	case <-ctx.Done():
	case <-f.stopChan:
	case <-time.After(wait):
	}

	f.backoff = time.Duration(float64(f.backoff) * wsBackoffFactor)
	if f.backoff > wsMaxBackoff {
		f.backoff = wsMaxBackoff
	}
}
