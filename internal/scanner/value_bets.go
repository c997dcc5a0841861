// Package scanner finds long-shot value picks: cheap outcomes on
// liquid markets that resolve soon. Candidates accumulate in a queue
// between digests and leave it only when a digest sends them.
package scanner

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// Entry window and market quality floors for a value pick.
const (
	MinOddsPct          = 5.0
	MaxOddsPct          = 30.0
	MinLiquidityUSD     = 5000.0
	MaxDaysToResolution = 60

	// DefaultScanLimit is how many events one scan pass fetches.
	DefaultScanLimit = 200
)

// Sent-market memory is bounded: once it exceeds sentMarketCap the
// oldest entries are dropped down to sentMarketKeep, so a long-lived
// process can eventually re-pick a market that resurfaces.
const (
	sentMarketCap  = 500
	sentMarketKeep = 250
)

var excludedCategories = map[string]bool{
	domain.CategorySports: true,
}

// MarketSource lists active markets ordered by volume.
type MarketSource interface {
	ListEvents(ctx context.Context, limit int) ([]*domain.Market, error)
}

// Stats is a snapshot of scanner counters.
type Stats struct {
	Scans           int
	MarketsChecked  int
	CandidatesFound int
	Queued          int
	SentMarkets     int
}

// Scanner scans active markets for value bets and queues them for the
// digest. Safe for concurrent use.
type Scanner struct {
	source MarketSource
	limit  int

	mu        sync.Mutex
	queue     []*domain.ValueBet
	queued    map[string]bool
	sent      map[string]bool
	sentOrder []string

	scans   int
	checked int
	found   int
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithScanLimit overrides how many events each scan pass fetches.
func WithScanLimit(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.limit = n
		}
	}
}

// NewScanner builds a Scanner over the given market source.
func NewScanner(source MarketSource, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		source: source,
		limit:  DefaultScanLimit,
		queued: make(map[string]bool),
		sent:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan fetches active markets, analyzes each for value bet potential
// and queues new finds. Markets already queued or already sent are
// skipped. Returns the value bets found this pass, before dedupe.
func (s *Scanner) Scan(ctx context.Context, nowMs int64) ([]*domain.ValueBet, error) {
	markets, err := s.source.ListEvents(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var found []*domain.ValueBet
	for _, m := range markets {
		if vb := Analyze(m, nowMs); vb != nil {
			found = append(found, vb)
		}
	}

	s.mu.Lock()
	s.scans++
	s.checked += len(markets)
	s.found += len(found)
	for _, vb := range found {
		id := vb.Market.MarketID
		if s.sent[id] || s.queued[id] {
			continue
		}
		s.queued[id] = true
		s.queue = append(s.queue, vb)
	}
	queueSize := len(s.queue)
	s.mu.Unlock()

	log.Info().
		Int("markets_checked", len(markets)).
		Int("new_candidates", len(found)).
		Int("queue_size", queueSize).
		Msg("Value scan complete")
	return found, nil
}

// Analyze checks one market for value bet potential. Returns nil when
// the market fails any filter: excluded category, thin liquidity,
// unknown or distant resolution, or no side priced inside the entry
// window. The YES side is considered first.
func Analyze(m *domain.Market, nowMs int64) *domain.ValueBet {
	if m == nil {
		return nil
	}
	if excludedCategories[m.Category] {
		return nil
	}
	if m.LiquidityUSD < MinLiquidityUSD {
		return nil
	}
	if m.EndDate == 0 {
		return nil
	}
	days := m.DaysToResolution(nowMs)
	if days > MaxDaysToResolution {
		return nil
	}

	yesPct := m.YesOdds
	noPct := 100 - m.YesOdds

	var side domain.Direction
	var entryPct float64
	switch {
	case yesPct >= MinOddsPct && yesPct <= MaxOddsPct:
		side = domain.DirectionYes
		entryPct = yesPct
	case noPct >= MinOddsPct && noPct <= MaxOddsPct:
		side = domain.DirectionNo
		entryPct = noPct
	default:
		return nil
	}

	shares := int(1.0 / (entryPct / 100))
	return &domain.ValueBet{
		Market:           m,
		Side:             side,
		EntryPrice:       entryPct,
		PayoutMultiple:   100 / entryPct,
		WinAmount:        float64(shares),
		LiquidityUSD:     m.LiquidityUSD,
		DaysToResolution: days,
	}
}

// Candidates returns a copy of the current queue.
func (s *Scanner) Candidates() []*domain.ValueBet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.ValueBet, len(s.queue))
	copy(out, s.queue)
	return out
}

// ClearSent removes the given markets from the queue and remembers
// them so later scans do not queue them again.
func (s *Scanner) ClearSent(marketIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range marketIDs {
		if !s.sent[id] {
			s.sent[id] = true
			s.sentOrder = append(s.sentOrder, id)
		}
	}

	kept := s.queue[:0]
	for _, vb := range s.queue {
		id := vb.Market.MarketID
		if s.sent[id] {
			delete(s.queued, id)
			continue
		}
		kept = append(kept, vb)
	}
	s.queue = kept

	if len(s.sentOrder) > sentMarketCap {
		drop := s.sentOrder[:len(s.sentOrder)-sentMarketKeep]
		for _, id := range drop {
			delete(s.sent, id)
		}
		s.sentOrder = append([]string(nil), s.sentOrder[len(s.sentOrder)-sentMarketKeep:]...)
	}
}

// Stats returns a snapshot of scanner counters.
func (s *Scanner) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Scans:           s.scans,
		MarketsChecked:  s.checked,
		CandidatesFound: s.found,
		Queued:          len(s.queue),
		SentMarkets:     len(s.sent),
	}
}
