package detect

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// Exclusion ceilings for mechanical behavior.
const (
	MaxTradesPerDay   = 50
	MaxTrades30Days   = 500
	MinHoldingMinutes = 15.0
)

// shortHorizon bounds how soon a pattern-matched market must resolve to be
// treated as a mechanical midpoint market.
const shortHorizon = 24 * time.Hour

// Market name patterns of short-horizon symmetric binaries. These attract
// arbitrage flow, not opinion.
var excludedMarketPatterns = []string{
	"up/down",
	"up or down",
	"above",
	"below",
	"price",
}

// Filter classifies wallets as informational or mechanical. A wallet
// excluded once is blacklisted so later cycles skip it without stats.
type Filter struct {
	mu        sync.Mutex
	blacklist map[string]string // wallet -> exclusion reason
}

// NewFilter creates an exclusion filter with an empty blacklist.
func NewFilter() *Filter {
	return &Filter{blacklist: make(map[string]string)}
}

// Blacklist marks a wallet as excluded.
func (f *Filter) Blacklist(wallet, reason string) {
	f.mu.Lock()
	f.blacklist[wallet] = reason
	f.mu.Unlock()
}

// Blacklisted returns the stored exclusion reason for a wallet, if any.
func (f *Filter) Blacklisted(wallet string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reason, ok := f.blacklist[wallet]
	return reason, ok
}

// IsExcluded classifies the wallet behind stats. Verdicts carry the reason
// and excluded wallets are remembered.
func (f *Filter) IsExcluded(stats *domain.WalletStats) (bool, string) {
	if reason, ok := f.Blacklisted(stats.Wallet); ok {
		return true, reason
	}

	excluded, reason := applyExclusionRules(stats)
	if excluded {
		f.Blacklist(stats.Wallet, reason)
		log.Info().
			Str("wallet", shortWallet(stats.Wallet)).
			Str("reason", reason).
			Msg("Wallet excluded")
	}
	return excluded, reason
}

// applyExclusionRules runs the mechanical-behavior rules in order. Any
// single rule excludes.
func applyExclusionRules(s *domain.WalletStats) (bool, string) {
	// Rule 1: daily ceiling.
	if s.TradesToday > MaxTradesPerDay {
		return true, fmt.Sprintf("high_frequency_today:%d", s.TradesToday)
	}

	// Rule 2: 30-day ceiling.
	if s.Trades30Days > MaxTrades30Days {
		return true, fmt.Sprintf("high_frequency_30d:%d", s.Trades30Days)
	}

	// Rule 3: holds YES and NO in the same market.
	if s.HoldsBothSides {
		return true, "hedging_detected"
	}

	// Rule 4: in and out faster than any news cycle.
	if s.ClosedPositions > 0 && s.AvgHoldingMinutes < MinHoldingMinutes {
		return true, fmt.Sprintf("short_holding:%.1fm", s.AvgHoldingMinutes)
	}

	return false, ""
}

// IsExcludedMarket reports whether the market itself is a short-horizon
// symmetric binary. The name must match a pattern and the market must
// resolve within 24 hours; an unknown end date on a matched name counts
// as short-horizon.
func IsExcludedMarket(m *domain.Market, now time.Time) bool {
	name := strings.ToLower(m.Question)

	matched := false
	for _, p := range excludedMarketPatterns {
		if strings.Contains(name, p) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	if m.EndDate == 0 {
		return true
	}
	return m.EndDate-now.UnixMilli() <= shortHorizon.Milliseconds()
}

func shortWallet(w string) string {
	if len(w) <= 10 {
		return w
	}
	return w[:10] + "..."
}
