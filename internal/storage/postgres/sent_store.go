package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// SentAlertStore implements storage.SentAlertStore using PostgreSQL.
type SentAlertStore struct {
	pool *Pool
}

// NewSentAlertStore creates a new SentAlertStore.
func NewSentAlertStore(pool *Pool) *SentAlertStore {
	return &SentAlertStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SentAlertStore = (*SentAlertStore)(nil)

// Insert records a sent alert. Returns ErrDuplicateKey if the alert was
// already recorded.
func (s *SentAlertStore) Insert(ctx context.Context, sent *domain.SentAlert) error {
	if sent == nil || sent.AlertID == "" || sent.MarketID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alerts_sent (
			alert_id, market_id, market_name, category, direction,
			odds_pct, score, expected_value, sent_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		sent.AlertID, sent.MarketID, sent.MarketName, sent.Category, string(sent.Direction),
		sent.OddsPct, sent.Score, sent.ExpectedValue, sent.SentAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert sent alert: %w", err)
	}
	return nil
}

// CountSince returns how many alerts were sent at or after since.
func (s *SentAlertStore) CountSince(ctx context.Context, since int64) (int, error) {
	query := `SELECT COUNT(*) FROM alerts_sent WHERE sent_at >= $1`

	var count int
	if err := s.pool.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sent alerts: %w", err)
	}
	return count, nil
}

// LastSentAt returns the most recent send time for a market.
// Returns ErrNotFound if the market has never been alerted.
func (s *SentAlertStore) LastSentAt(ctx context.Context, marketID string) (int64, error) {
	if marketID == "" {
		return 0, storage.ErrInvalidInput
	}

	query := `
		SELECT sent_at
		FROM alerts_sent
		WHERE market_id = $1
		ORDER BY sent_at DESC
		LIMIT 1
	`

	var sentAt int64
	err := s.pool.QueryRow(ctx, query, marketID).Scan(&sentAt)
	if err != nil {
		if isNotFoundError(err) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("get last sent at: %w", err)
	}
	return sentAt, nil
}

// GetSince returns alerts sent at or after since, oldest first.
func (s *SentAlertStore) GetSince(ctx context.Context, since int64) ([]*domain.SentAlert, error) {
	query := `
		SELECT alert_id, market_id, market_name, category, direction,
		       odds_pct, score, expected_value, sent_at
		FROM alerts_sent
		WHERE sent_at >= $1
		ORDER BY sent_at ASC, alert_id ASC
	`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("get sent alerts: %w", err)
	}
	defer rows.Close()

	return scanSentAlerts(rows)
}

// Prune deletes send records older than cutoff. Returns rows removed.
func (s *SentAlertStore) Prune(ctx context.Context, cutoff int64) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM alerts_sent WHERE sent_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune sent alerts: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// scanSentAlerts scans all rows into a slice.
func scanSentAlerts(rows pgx.Rows) ([]*domain.SentAlert, error) {
	var result []*domain.SentAlert
	for rows.Next() {
		var sent domain.SentAlert
		var direction string
		err := rows.Scan(
			&sent.AlertID, &sent.MarketID, &sent.MarketName, &sent.Category, &direction,
			&sent.OddsPct, &sent.Score, &sent.ExpectedValue, &sent.SentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sent alert row: %w", err)
		}
		sent.Direction = domain.Direction(direction)
		result = append(result, &sent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sent alert rows: %w", err)
	}
	return result, nil
}
