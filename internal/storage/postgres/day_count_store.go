package postgres

import (
	"context"
	"fmt"

	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// WalletDayCountStore implements storage.WalletDayCountStore using PostgreSQL.
type WalletDayCountStore struct {
	pool *Pool
}

// NewWalletDayCountStore creates a new WalletDayCountStore.
func NewWalletDayCountStore(pool *Pool) *WalletDayCountStore {
	return &WalletDayCountStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletDayCountStore = (*WalletDayCountStore)(nil)

// Increment adds delta to the wallet's tally for the given UTC day,
// creating the row if absent.
func (s *WalletDayCountStore) Increment(ctx context.Context, wallet, day string, delta int) error {
	if wallet == "" || day == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO wallet_day_counts (wallet_address, day, trade_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (wallet_address, day) DO UPDATE SET
			trade_count = wallet_day_counts.trade_count + EXCLUDED.trade_count
	`

	if _, err := s.pool.Exec(ctx, query, wallet, day, delta); err != nil {
		return fmt.Errorf("increment day count: %w", err)
	}
	return nil
}

// CountSince sums the wallet's trade counts for all days >= fromDay.
func (s *WalletDayCountStore) CountSince(ctx context.Context, wallet, fromDay string) (int, error) {
	if wallet == "" || fromDay == "" {
		return 0, storage.ErrInvalidInput
	}

	query := `
		SELECT COALESCE(SUM(trade_count), 0)
		FROM wallet_day_counts
		WHERE wallet_address = $1 AND day >= $2
	`

	var total int
	if err := s.pool.QueryRow(ctx, query, wallet, fromDay).Scan(&total); err != nil {
		return 0, fmt.Errorf("count day counts since: %w", err)
	}
	return total, nil
}

// CountDay returns the wallet's trade count for a single day, zero if absent.
func (s *WalletDayCountStore) CountDay(ctx context.Context, wallet, day string) (int, error) {
	if wallet == "" || day == "" {
		return 0, storage.ErrInvalidInput
	}

	query := `
		SELECT COALESCE(SUM(trade_count), 0)
		FROM wallet_day_counts
		WHERE wallet_address = $1 AND day = $2
	`

	var count int
	if err := s.pool.QueryRow(ctx, query, wallet, day).Scan(&count); err != nil {
		return 0, fmt.Errorf("count day count: %w", err)
	}
	return count, nil
}

// Prune deletes buckets older than beforeDay. Returns rows removed.
func (s *WalletDayCountStore) Prune(ctx context.Context, beforeDay string) (int, error) {
	if beforeDay == "" {
		return 0, storage.ErrInvalidInput
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM wallet_day_counts WHERE day < $1`, beforeDay)
	if err != nil {
		return 0, fmt.Errorf("prune day counts: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
