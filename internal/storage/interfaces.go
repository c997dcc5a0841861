package storage

import (
	"context"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// WalletHistoryStore provides access to wallet_history storage.
// Keys are (wallet, market) pairs; Upsert is the only mutation path and
// must be atomic per key.
type WalletHistoryStore interface {
	// Get retrieves the history for a wallet/market pair. Returns ErrNotFound if none exists.
	Get(ctx context.Context, wallet, marketID string) (*domain.WalletHistory, error)

	// GetByWallet retrieves all histories for a wallet, ordered by market_id ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.WalletHistory, error)

	// Upsert applies fn to the current record (nil if absent) and stores the result
	// as a single atomic read-modify-write. fn returning nil leaves the store unchanged.
	Upsert(ctx context.Context, wallet, marketID string, fn func(cur *domain.WalletHistory) *domain.WalletHistory) (*domain.WalletHistory, error)

	// Prune deletes histories not updated since cutoff (Unix ms). Returns rows removed.
	Prune(ctx context.Context, cutoff int64) (int, error)
}

// WalletDayCountStore provides access to wallet_day_counts storage.
type WalletDayCountStore interface {
	// Increment adds delta to the wallet's tally for the given UTC day, creating the row if absent.
	Increment(ctx context.Context, wallet, day string, delta int) error

	// CountSince sums tallies for the wallet across days >= fromDay (inclusive, YYYY-MM-DD).
	CountSince(ctx context.Context, wallet, fromDay string) (int, error)

	// CountDay returns the wallet's tally for exactly one day. Missing rows count as zero.
	CountDay(ctx context.Context, wallet, day string) (int, error)

	// Prune deletes rows for days < beforeDay. Returns rows removed.
	Prune(ctx context.Context, beforeDay string) (int, error)
}

// SentAlertStore provides access to alerts_sent storage, the persisted
// backing for the rate limiter and the signal log the performance
// tracker joins resolutions onto. Implementations must enforce alert_id
// uniqueness.
type SentAlertStore interface {
	// Insert records a delivered alert. Returns ErrDuplicateKey if alert_id exists.
	Insert(ctx context.Context, s *domain.SentAlert) error

	// CountSince returns alerts sent at or after since (Unix ms), across all markets.
	CountSince(ctx context.Context, since int64) (int, error)

	// LastSentAt returns the most recent send timestamp for a market.
	// Returns ErrNotFound if the market has never been alerted.
	LastSentAt(ctx context.Context, marketID string) (int64, error)

	// GetSince retrieves alerts sent at or after since, ordered by sent_at ASC.
	GetSince(ctx context.Context, since int64) ([]*domain.SentAlert, error)

	// Prune deletes records sent before cutoff (Unix ms). Returns rows removed.
	Prune(ctx context.Context, cutoff int64) (int, error)
}

// OutcomeStore provides access to alert_outcomes storage (ClickHouse).
type OutcomeStore interface {
	// Insert records one resolved alert outcome. Returns ErrDuplicateKey if
	// an outcome for the alert_id is already recorded.
	Insert(ctx context.Context, o *domain.AlertOutcome) error

	// Has reports whether an outcome for alert_id is already recorded.
	Has(ctx context.Context, alertID string) (bool, error)

	// Stats aggregates outcomes per category, ordered by category ASC,
	// with an overall "ALL" row appended last.
	Stats(ctx context.Context) ([]*domain.OutcomeStats, error)
}
