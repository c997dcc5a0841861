package clickhouse

import (
	"context"
	"fmt"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// OutcomeStore implements storage.OutcomeStore using ClickHouse.
type OutcomeStore struct {
	conn *Conn
}

// NewOutcomeStore creates a new OutcomeStore.
func NewOutcomeStore(conn *Conn) *OutcomeStore {
	return &OutcomeStore{conn: conn}
}

// Compile-time interface check.
var _ storage.OutcomeStore = (*OutcomeStore)(nil)

// Insert records one resolved alert outcome. Returns ErrDuplicateKey if an
// outcome for the alert_id is already recorded.
func (s *OutcomeStore) Insert(ctx context.Context, o *domain.AlertOutcome) error {
	if o == nil || o.AlertID == "" {
		return storage.ErrInvalidInput
	}

	// Check if exists (ReplacingMergeTree will replace, but we want append-only semantics)
	exists, err := s.Has(ctx, o.AlertID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO alert_outcomes (
			alert_id, market_id, category, direction,
			score, expected_value, odds_at_alert,
			sent_at, resolved_at, won, realized_multiple
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?,
			?, ?, ?, ?
		)
	`

	var won uint8
	if o.Won {
		won = 1
	}

	err = s.conn.Exec(ctx, query,
		o.AlertID, o.MarketID, o.Category, o.Direction,
		o.Score, o.ExpectedValue, o.OddsAtAlert,
		o.SentAt, o.ResolvedAt, won, o.RealizedMultiple,
	)
	if err != nil {
		return fmt.Errorf("insert alert outcome: %w", err)
	}
	return nil
}

// Has reports whether an outcome for alert_id is already recorded.
func (s *OutcomeStore) Has(ctx context.Context, alertID string) (bool, error) {
	if alertID == "" {
		return false, storage.ErrInvalidInput
	}

	query := `
		SELECT count(*) FROM alert_outcomes FINAL
		WHERE alert_id = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, alertID).Scan(&count); err != nil {
		return false, fmt.Errorf("count alert outcomes: %w", err)
	}
	return count > 0, nil
}

// Stats aggregates outcomes per category, ordered by category ASC, with an
// overall "ALL" row appended last.
func (s *OutcomeStore) Stats(ctx context.Context) ([]*domain.OutcomeStats, error) {
	query := `
		SELECT
			category,
			toInt64(count(*)),
			toInt64(countIf(won = 1)),
			countIf(won = 1) / count(*),
			avg(score),
			avg(realized_multiple)
		FROM alert_outcomes FINAL
		GROUP BY category
		ORDER BY category ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query outcome stats: %w", err)
	}
	defer rows.Close()

	var result []*domain.OutcomeStats
	for rows.Next() {
		stat, err := scanOutcomeStats(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome stat rows: %w", err)
	}

	overall := `
		SELECT
			'ALL',
			toInt64(count(*)),
			toInt64(countIf(won = 1)),
			if(count(*) > 0, countIf(won = 1) / count(*), 0),
			if(count(*) > 0, avg(score), 0),
			if(count(*) > 0, avg(realized_multiple), 0)
		FROM alert_outcomes FINAL
	`

	all, err := scanOutcomeStats(s.conn.QueryRow(ctx, overall))
	if err != nil {
		return nil, err
	}
	if all.Alerts > 0 {
		result = append(result, all)
	}

	return result, nil
}

// chRow is the scan surface shared by QueryRow and Query results.
type chRow interface {
	Scan(dest ...interface{}) error
}

// scanOutcomeStats scans a single aggregate row.
func scanOutcomeStats(row chRow) (*domain.OutcomeStats, error) {
	var stat domain.OutcomeStats
	var alerts, wins int64

	err := row.Scan(
		&stat.Category,
		&alerts,
		&wins,
		&stat.WinRate,
		&stat.AvgScore,
		&stat.AvgMultiple,
	)
	if err != nil {
		return nil, fmt.Errorf("scan outcome stat row: %w", err)
	}

	stat.Alerts = int(alerts)
	stat.Wins = int(wins)
	return &stat, nil
}
