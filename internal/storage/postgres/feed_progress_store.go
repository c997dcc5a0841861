package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// FeedProgressStore is a PostgreSQL implementation of storage.FeedProgressStore.
// Keeps a single row with the trade feed cursor.
type FeedProgressStore struct {
	pool *Pool
}

// NewFeedProgressStore creates a new PostgreSQL feed progress store.
func NewFeedProgressStore(pool *Pool) *FeedProgressStore {
	return &FeedProgressStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FeedProgressStore = (*FeedProgressStore)(nil)

// GetLastProcessed returns the last processed feed position.
func (s *FeedProgressStore) GetLastProcessed(ctx context.Context) (*storage.FeedProgress, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT last_timestamp, last_trade_id
		FROM feed_progress
		LIMIT 1
	`)

	var progress storage.FeedProgress
	err := row.Scan(&progress.Timestamp, &progress.TradeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	return &progress, nil
}

// SetLastProcessed saves the last processed feed position.
// Uses upsert to handle initial insert and subsequent updates.
func (s *FeedProgressStore) SetLastProcessed(ctx context.Context, progress *storage.FeedProgress) error {
	if progress == nil {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO feed_progress (id, last_timestamp, last_trade_id, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET last_timestamp = EXCLUDED.last_timestamp,
		    last_trade_id = EXCLUDED.last_trade_id,
		    updated_at = NOW()
	`, progress.Timestamp, progress.TradeID)

	return err
}
