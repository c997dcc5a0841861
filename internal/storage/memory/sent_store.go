package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// SentAlertStore is an in-memory implementation of storage.SentAlertStore.
type SentAlertStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SentAlert // keyed by alert_id
}

// NewSentAlertStore creates a new in-memory sent alert store.
func NewSentAlertStore() *SentAlertStore {
	return &SentAlertStore{
		data: make(map[string]*domain.SentAlert),
	}
}

// Insert records a delivered alert. Returns ErrDuplicateKey if alert_id exists.
func (s *SentAlertStore) Insert(_ context.Context, sent *domain.SentAlert) error {
	if sent == nil || sent.AlertID == "" || sent.MarketID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sent.AlertID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *sent
	s.data[sent.AlertID] = &copy
	return nil
}

// CountSince returns alerts sent at or after since, across all markets.
func (s *SentAlertStore) CountSince(_ context.Context, since int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sent := range s.data {
		if sent.SentAt >= since {
			count++
		}
	}

	return count, nil
}

// LastSentAt returns the most recent send timestamp for a market.
// Returns ErrNotFound if the market has never been alerted.
func (s *SentAlertStore) LastSentAt(_ context.Context, marketID string) (int64, error) {
	if marketID == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var last int64
	found := false
	for _, sent := range s.data {
		if sent.MarketID == marketID && sent.SentAt > last {
			last = sent.SentAt
			found = true
		}
	}

	if !found {
		return 0, storage.ErrNotFound
	}
	return last, nil
}

// GetSince retrieves alerts sent at or after since, ordered by sent_at ASC.
func (s *SentAlertStore) GetSince(_ context.Context, since int64) ([]*domain.SentAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SentAlert
	for _, sent := range s.data {
		if sent.SentAt >= since {
			copy := *sent
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].SentAt != result[j].SentAt {
			return result[i].SentAt < result[j].SentAt
		}
		return result[i].AlertID < result[j].AlertID
	})

	return result, nil
}

// Prune deletes records sent before cutoff. Returns rows removed.
func (s *SentAlertStore) Prune(_ context.Context, cutoff int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sent := range s.data {
		if sent.SentAt < cutoff {
			delete(s.data, id)
			removed++
		}
	}

	return removed, nil
}

var _ storage.SentAlertStore = (*SentAlertStore)(nil)
