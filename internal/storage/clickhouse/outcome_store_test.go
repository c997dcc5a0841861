package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

func testOutcome(alertID, category string, won bool) *domain.AlertOutcome {
	multiple := 0.0
	if won {
		multiple = 4.0
	}
	return &domain.AlertOutcome{
		AlertID:          alertID,
		MarketID:         "market-" + alertID,
		Category:         category,
		Direction:        "YES",
		Score:            78,
		ExpectedValue:    1.85,
		OddsAtAlert:      25,
		SentAt:           1700000000000,
		ResolvedAt:       1700600000000,
		Won:              won,
		RealizedMultiple: multiple,
	}
}

func TestOutcomeStore_InsertAndHas(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOutcomeStore(conn)

	has, err := store.Has(ctx, "alert-1")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.Insert(ctx, testOutcome("alert-1", "Politics", true)))

	has, err = store.Has(ctx, "alert-1")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestOutcomeStore_InsertDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOutcomeStore(conn)

	require.NoError(t, store.Insert(ctx, testOutcome("alert-1", "Politics", true)))

	err := store.Insert(ctx, testOutcome("alert-1", "Politics", false))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestOutcomeStore_InsertInvalid(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOutcomeStore(conn)

	err := store.Insert(ctx, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Insert(ctx, &domain.AlertOutcome{MarketID: "m1"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestOutcomeStore_StatsEmpty(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOutcomeStore(conn)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestOutcomeStore_Stats(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOutcomeStore(conn)

	require.NoError(t, store.Insert(ctx, testOutcome("alert-1", "Politics", true)))
	require.NoError(t, store.Insert(ctx, testOutcome("alert-2", "Politics", false)))
	require.NoError(t, store.Insert(ctx, testOutcome("alert-3", "Crypto", true)))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	// Categories ordered ASC, then the overall row
	assert.Equal(t, "Crypto", stats[0].Category)
	assert.Equal(t, 1, stats[0].Alerts)
	assert.Equal(t, 1, stats[0].Wins)
	assert.InDelta(t, 1.0, stats[0].WinRate, 1e-9)
	assert.InDelta(t, 4.0, stats[0].AvgMultiple, 1e-9)

	assert.Equal(t, "Politics", stats[1].Category)
	assert.Equal(t, 2, stats[1].Alerts)
	assert.Equal(t, 1, stats[1].Wins)
	assert.InDelta(t, 0.5, stats[1].WinRate, 1e-9)
	assert.InDelta(t, 2.0, stats[1].AvgMultiple, 1e-9)

	assert.Equal(t, "ALL", stats[2].Category)
	assert.Equal(t, 3, stats[2].Alerts)
	assert.Equal(t, 2, stats[2].Wins)
	assert.InDelta(t, 2.0/3.0, stats[2].WinRate, 1e-9)
	assert.InDelta(t, 78.0, stats[2].AvgScore, 1e-9)
}
