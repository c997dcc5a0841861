package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// OutcomeStore is an in-memory implementation of storage.OutcomeStore.
type OutcomeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AlertOutcome // keyed by alert_id
}

// NewOutcomeStore creates a new in-memory outcome store.
func NewOutcomeStore() *OutcomeStore {
	return &OutcomeStore{
		data: make(map[string]*domain.AlertOutcome),
	}
}

// Insert records one resolved alert outcome. Returns ErrDuplicateKey if
// an outcome for the alert_id is already recorded.
func (s *OutcomeStore) Insert(_ context.Context, o *domain.AlertOutcome) error {
	if o == nil || o.AlertID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[o.AlertID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *o
	s.data[o.AlertID] = &copy
	return nil
}

// Has reports whether an outcome for alert_id is already recorded.
func (s *OutcomeStore) Has(_ context.Context, alertID string) (bool, error) {
	if alertID == "" {
		return false, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data[alertID]
	return ok, nil
}

// Stats aggregates outcomes per category, ordered by category ASC, with
// an overall "ALL" row appended last.
func (s *OutcomeStore) Stats(_ context.Context) ([]*domain.OutcomeStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type agg struct {
		alerts   int
		wins     int
		scoreSum float64
		multSum  float64
	}

	perCategory := make(map[string]*agg)
	overall := &agg{}
	for _, o := range s.data {
		a := perCategory[o.Category]
		if a == nil {
			a = &agg{}
			perCategory[o.Category] = a
		}
		for _, target := range []*agg{a, overall} {
			target.alerts++
			if o.Won {
				target.wins++
			}
			target.scoreSum += o.Score
			target.multSum += o.RealizedMultiple
		}
	}

	categories := make([]string, 0, len(perCategory))
	for c := range perCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	toStats := func(category string, a *agg) *domain.OutcomeStats {
		n := float64(a.alerts)
		return &domain.OutcomeStats{
			Category:    category,
			Alerts:      a.alerts,
			Wins:        a.wins,
			WinRate:     float64(a.wins) / n,
			AvgScore:    a.scoreSum / n,
			AvgMultiple: a.multSum / n,
		}
	}

	var result []*domain.OutcomeStats
	for _, c := range categories {
		result = append(result, toStats(c, perCategory[c]))
	}
	if overall.alerts > 0 {
		result = append(result, toStats("ALL", overall))
	}
	return result, nil
}

var _ storage.OutcomeStore = (*OutcomeStore)(nil)
