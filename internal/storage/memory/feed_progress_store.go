package memory

import (
	"context"
	"sync"

	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

// FeedProgressStore is an in-memory implementation of storage.FeedProgressStore.
type FeedProgressStore struct {
	mu       sync.RWMutex
	progress *storage.FeedProgress
}

// NewFeedProgressStore creates a new in-memory feed progress store.
func NewFeedProgressStore() *FeedProgressStore {
	return &FeedProgressStore{}
}

// GetLastProcessed returns the last processed feed position.
func (s *FeedProgressStore) GetLastProcessed(_ context.Context) (*storage.FeedProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.progress == nil {
		return nil, storage.ErrNotFound
	}

	copy := *s.progress
	return &copy, nil
}

// SetLastProcessed saves the last processed feed position.
func (s *FeedProgressStore) SetLastProcessed(_ context.Context, progress *storage.FeedProgress) error {
	if progress == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *progress
	s.progress = &copy
	return nil
}

var _ storage.FeedProgressStore = (*FeedProgressStore)(nil)
