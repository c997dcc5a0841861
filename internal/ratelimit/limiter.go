package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// Alert delivery ceilings. Both survive restarts because every check
// reads the persisted sent store.
const (
	MaxAlertsPerWindow = 2
	GlobalWindow       = 24 * time.Hour
	MarketCooldown     = 24 * time.Hour
)

// Decision is the outcome of one Allow check. Denials carry the reason
// so blocked candidates are explainable in logs.
type Decision struct {
	Allowed bool
	Reason  string
}

// Limiter enforces the global rolling ceiling and the per-market
// cooldown. A single mutex covers every check and record, so two
// candidates for the same market evaluated back to back cannot both
// pass before the first is recorded.
type Limiter struct {
	mu    sync.Mutex
	store storage.SentAlertStore
}

func NewLimiter(store storage.SentAlertStore) *Limiter {
	return &Limiter{store: store}
}

// Allow reports whether an alert for marketID may be sent at now. A
// store error means the limiter state is unknown; callers must treat
// it as a hard stop, not a pass.
func (l *Limiter) Allow(ctx context.Context, marketID string, now time.Time) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	count, err := l.store.CountSince(ctx, now.Add(-GlobalWindow).UnixMilli())
	if err != nil {
		return Decision{}, fmt.Errorf("count sent alerts: %w", err)
	}
	if count >= MaxAlertsPerWindow {
		return Decision{Reason: fmt.Sprintf("global limit reached (%d/%d in 24h)", count, MaxAlertsPerWindow)}, nil
	}

	last, err := l.store.LastSentAt(ctx, marketID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Decision{Allowed: true, Reason: "ok"}, nil
		}
		return Decision{}, fmt.Errorf("load last sent: %w", err)
	}
	cooldownEnds := last + MarketCooldown.Milliseconds()
	if cooldownEnds > now.UnixMilli() {
		remaining := time.Duration(cooldownEnds-now.UnixMilli()) * time.Millisecond
		return Decision{Reason: fmt.Sprintf("market cooldown active (%.1fh remaining)", remaining.Hours())}, nil
	}
	return Decision{Allowed: true, Reason: "ok"}, nil
}

// Record persists a delivered alert so every later check sees it. The
// stored row carries the alert's key numbers, which the performance
// tracker joins market resolutions onto.
func (l *Limiter) Record(ctx context.Context, a *domain.Alert, now time.Time) error {
	if a == nil {
		return storage.ErrInvalidInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.store.Insert(ctx, &domain.SentAlert{
		MarketID:      a.MarketID,
		AlertID:       a.AlertID,
		MarketName:    a.MarketName,
		Category:      a.Category,
		Direction:     a.Direction,
		OddsPct:       a.OddsPct,
		Score:         a.Score,
		ExpectedValue: a.ExpectedValue,
		SentAt:        now.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("record sent alert: %w", err)
	}
	log.Info().Str("market_id", a.MarketID).Str("alert_id", a.AlertID).Msg("Alert recorded")
	return nil
}
