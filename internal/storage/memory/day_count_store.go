package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// WalletDayCountStore is an in-memory implementation of storage.WalletDayCountStore.
type WalletDayCountStore struct {
	mu   sync.RWMutex
	data map[string]int               // keyed by wallet|day
	days map[string]map[string]string // wallet -> day -> key, for range scans
}

// NewWalletDayCountStore creates a new in-memory day count store.
func NewWalletDayCountStore() *WalletDayCountStore {
	return &WalletDayCountStore{
		data: make(map[string]int),
		days: make(map[string]map[string]string),
	}
}

func dayKey(wallet, day string) string {
	return fmt.Sprintf("%s|%s", wallet, day)
}

// Increment adds delta to the wallet's tally for the given UTC day.
func (s *WalletDayCountStore) Increment(_ context.Context, wallet, day string, delta int) error {
	if wallet == "" || day == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey(wallet, day)
	s.data[key] += delta
	if s.days[wallet] == nil {
		s.days[wallet] = make(map[string]string)
	}
	s.days[wallet][day] = key

	return nil
}

// CountSince sums tallies for the wallet across days >= fromDay.
// Lexical comparison works because days are YYYY-MM-DD.
func (s *WalletDayCountStore) CountSince(_ context.Context, wallet, fromDay string) (int, error) {
	if wallet == "" || fromDay == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for day, key := range s.days[wallet] {
		if day >= fromDay {
			total += s.data[key]
		}
	}

	return total, nil
}

// CountDay returns the wallet's tally for exactly one day.
func (s *WalletDayCountStore) CountDay(_ context.Context, wallet, day string) (int, error) {
	if wallet == "" || day == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data[dayKey(wallet, day)], nil
}

// Prune deletes rows for days < beforeDay. Returns rows removed.
func (s *WalletDayCountStore) Prune(_ context.Context, beforeDay string) (int, error) {
	if beforeDay == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for wallet, days := range s.days {
		for day, key := range days {
			if day < beforeDay {
				delete(s.data, key)
				delete(days, day)
				removed++
			}
		}
		if len(days) == 0 {
			delete(s.days, wallet)
		}
	}

	return removed, nil
}

var _ storage.WalletDayCountStore = (*WalletDayCountStore)(nil)
