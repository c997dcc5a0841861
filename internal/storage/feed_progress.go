package storage

import "context"

// FeedProgress represents the last processed position in the trade feed.
type FeedProgress struct {
	Timestamp int64  // last processed trade timestamp, Unix ms
	TradeID   string // last processed trade id
}

// FeedProgressStore persists the trade feed cursor.
// This enables resumption after restarts without refetching or double
// processing trades the detector has already seen.
type FeedProgressStore interface {
	// GetLastProcessed returns the last processed feed position.
	// Returns ErrNotFound if no progress has been saved yet.
	GetLastProcessed(ctx context.Context) (*FeedProgress, error)

	// SetLastProcessed saves the last processed feed position.
	SetLastProcessed(ctx context.Context, progress *FeedProgress) error
}
