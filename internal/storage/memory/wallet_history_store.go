package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// WalletHistoryStore is an in-memory implementation of storage.WalletHistoryStore.
type WalletHistoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WalletHistory // keyed by wallet|market_id
}

// NewWalletHistoryStore creates a new in-memory wallet history store.
func NewWalletHistoryStore() *WalletHistoryStore {
	return &WalletHistoryStore{
		data: make(map[string]*domain.WalletHistory),
	}
}

// historyKey generates a unique key for a wallet/market pair.
func historyKey(wallet, marketID string) string {
	return fmt.Sprintf("%s|%s", wallet, marketID)
}

// Get retrieves the history for a wallet/market pair. Returns ErrNotFound if none exists.
func (s *WalletHistoryStore) Get(_ context.Context, wallet, marketID string) (*domain.WalletHistory, error) {
	if wallet == "" || marketID == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	h, exists := s.data[historyKey(wallet, marketID)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *h
	return &copy, nil
}

// GetByWallet retrieves all histories for a wallet, ordered by market_id ASC.
func (s *WalletHistoryStore) GetByWallet(_ context.Context, wallet string) ([]*domain.WalletHistory, error) {
	if wallet == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WalletHistory
	for _, h := range s.data {
		if h.Wallet == wallet {
			copy := *h
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].MarketID < result[j].MarketID
	})

	return result, nil
}

// Upsert applies fn to the current record under the store lock, making the
// read-modify-write atomic per key. fn returning nil leaves the store unchanged.
func (s *WalletHistoryStore) Upsert(_ context.Context, wallet, marketID string, fn func(cur *domain.WalletHistory) *domain.WalletHistory) (*domain.WalletHistory, error) {
	if wallet == "" || marketID == "" || fn == nil {
		return nil, storage.ErrInvalidInput
	}

	key := historyKey(wallet, marketID)

	s.mu.Lock()
	defer s.mu.Unlock()

	var cur *domain.WalletHistory
	if existing, exists := s.data[key]; exists {
		copy := *existing
		cur = &copy
	}

	next := fn(cur)
	if next == nil {
		if cur == nil {
			return nil, storage.ErrNotFound
		}
		return cur, nil
	}

	next.Wallet = wallet
	next.MarketID = marketID
	stored := *next
	s.data[key] = &stored

	result := stored
	return &result, nil
}

// Prune deletes histories not updated since cutoff. Returns rows removed.
func (s *WalletHistoryStore) Prune(_ context.Context, cutoff int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, h := range s.data {
		if h.UpdatedAt < cutoff {
			delete(s.data, key)
			removed++
		}
	}

	return removed, nil
}

var _ storage.WalletHistoryStore = (*WalletHistoryStore)(nil)
