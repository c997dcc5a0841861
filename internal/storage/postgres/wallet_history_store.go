package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// WalletHistoryStore implements storage.WalletHistoryStore using PostgreSQL.
type WalletHistoryStore struct {
	pool *Pool
}

// NewWalletHistoryStore creates a new WalletHistoryStore.
func NewWalletHistoryStore(pool *Pool) *WalletHistoryStore {
	return &WalletHistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletHistoryStore = (*WalletHistoryStore)(nil)

const walletHistoryColumns = `
	wallet_address, market_id, last_size_usd, last_direction,
	yes_size_usd, no_size_usd, last_seen_at, last_trade_id,
	trade_count, created_at, updated_at
`

// Get retrieves the history for a wallet/market pair. Returns ErrNotFound if none exists.
func (s *WalletHistoryStore) Get(ctx context.Context, wallet, marketID string) (*domain.WalletHistory, error) {
	if wallet == "" || marketID == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT ` + walletHistoryColumns + `
		FROM wallet_history
		WHERE wallet_address = $1 AND market_id = $2
	`

	row := s.pool.QueryRow(ctx, query, wallet, marketID)
	h, err := scanWalletHistory(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet history: %w", err)
	}
	return h, nil
}

// GetByWallet retrieves all histories for a wallet, ordered by market_id ASC.
func (s *WalletHistoryStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.WalletHistory, error) {
	if wallet == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT ` + walletHistoryColumns + `
		FROM wallet_history
		WHERE wallet_address = $1
		ORDER BY market_id ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get wallet histories: %w", err)
	}
	defer rows.Close()

	return scanWalletHistories(rows)
}

// Upsert applies fn to the current record inside a transaction holding a row
// lock, making the read-modify-write atomic per (wallet, market) key.
func (s *WalletHistoryStore) Upsert(ctx context.Context, wallet, marketID string, fn func(cur *domain.WalletHistory) *domain.WalletHistory) (*domain.WalletHistory, error) {
	if wallet == "" || marketID == "" || fn == nil {
		return nil, storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		SELECT ` + walletHistoryColumns + `
		FROM wallet_history
		WHERE wallet_address = $1 AND market_id = $2
		FOR UPDATE
	`

	var cur *domain.WalletHistory
	row := tx.QueryRow(ctx, query, wallet, marketID)
	h, err := scanWalletHistory(row)
	switch {
	case err == nil:
		cur = h
	case isNotFoundError(err):
		cur = nil
	default:
		return nil, fmt.Errorf("read wallet history for update: %w", err)
	}

	next := fn(cur)
	if next == nil {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit upsert tx: %w", err)
		}
		if cur == nil {
			return nil, storage.ErrNotFound
		}
		return cur, nil
	}

	next.Wallet = wallet
	next.MarketID = marketID

	upsert := `
		INSERT INTO wallet_history (
			wallet_address, market_id, last_size_usd, last_direction,
			yes_size_usd, no_size_usd, last_seen_at, last_trade_id,
			trade_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (wallet_address, market_id) DO UPDATE SET
			last_size_usd = EXCLUDED.last_size_usd,
			last_direction = EXCLUDED.last_direction,
			yes_size_usd = EXCLUDED.yes_size_usd,
			no_size_usd = EXCLUDED.no_size_usd,
			last_seen_at = EXCLUDED.last_seen_at,
			last_trade_id = EXCLUDED.last_trade_id,
			trade_count = EXCLUDED.trade_count,
			updated_at = EXCLUDED.updated_at
	`

	_, err = tx.Exec(ctx, upsert,
		next.Wallet,
		next.MarketID,
		next.LastSizeUSD,
		string(next.LastDirection),
		next.YesSizeUSD,
		next.NoSizeUSD,
		next.LastSeenAt,
		next.LastTradeID,
		next.TradeCount,
		next.CreatedAt,
		next.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert wallet history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit upsert tx: %w", err)
	}

	result := *next
	return &result, nil
}

// Prune deletes histories not updated since cutoff. Returns rows removed.
func (s *WalletHistoryStore) Prune(ctx context.Context, cutoff int64) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM wallet_history WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune wallet history: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// scanWalletHistory scans a single wallet history row.
func scanWalletHistory(row pgx.Row) (*domain.WalletHistory, error) {
	var h domain.WalletHistory
	var direction string

	err := row.Scan(
		&h.Wallet,
		&h.MarketID,
		&h.LastSizeUSD,
		&direction,
		&h.YesSizeUSD,
		&h.NoSizeUSD,
		&h.LastSeenAt,
		&h.LastTradeID,
		&h.TradeCount,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	h.LastDirection = domain.Direction(direction)
	return &h, nil
}

// scanWalletHistories scans all rows into a slice.
func scanWalletHistories(rows pgx.Rows) ([]*domain.WalletHistory, error) {
	var result []*domain.WalletHistory
	for rows.Next() {
		h, err := scanWalletHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet history row: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet history rows: %w", err)
	}
	return result, nil
}
