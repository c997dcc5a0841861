package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

func TestWalletDayCountStore_IncrementAndCountDay(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewWalletDayCountStore(pool)

	require.NoError(t, store.Increment(ctx, "0xWhale1", "2026-08-01", 1))
	require.NoError(t, store.Increment(ctx, "0xWhale1", "2026-08-01", 2))

	count, err := store.CountDay(ctx, "0xWhale1", "2026-08-01")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestWalletDayCountStore_CountDayMissing(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewWalletDayCountStore(pool)

	count, err := store.CountDay(ctx, "0xWhale1", "2026-08-01")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestWalletDayCountStore_CountSince(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewWalletDayCountStore(pool)

	require.NoError(t, store.Increment(ctx, "0xWhale1", "2026-07-30", 5))
	require.NoError(t, store.Increment(ctx, "0xWhale1", "2026-07-31", 7))
	require.NoError(t, store.Increment(ctx, "0xWhale1", "2026-08-01", 11))

	// Other wallets do not leak into the sum
	require.NoError(t, store.Increment(ctx, "0xWhale2", "2026-08-01", 100))

	total, err := store.CountSince(ctx, "0xWhale1", "2026-07-31")
	require.NoError(t, err)
	assert.Equal(t, 18, total)

	total, err = store.CountSince(ctx, "0xWhale1", "2026-07-01")
	require.NoError(t, err)
	assert.Equal(t, 23, total)

	total, err = store.CountSince(ctx, "0xWhale1", "2026-08-02")
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestWalletDayCountStore_Prune(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewWalletDayCountStore(pool)

	require.NoError(t, store.Increment(ctx, "0xWhale1", "2026-06-01", 1))
	require.NoError(t, store.Increment(ctx, "0xWhale1", "2026-07-01", 1))
	require.NoError(t, store.Increment(ctx, "0xWhale2", "2026-06-15", 1))

	removed, err := store.Prune(ctx, "2026-07-01")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// Boundary day survives
	count, err := store.CountDay(ctx, "0xWhale1", "2026-07-01")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.CountDay(ctx, "0xWhale1", "2026-06-01")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestWalletDayCountStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewWalletDayCountStore(pool)

	err := store.Increment(ctx, "", "2026-08-01", 1)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Increment(ctx, "0xWhale1", "", 1)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.CountSince(ctx, "0xWhale1", "")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.CountDay(ctx, "", "2026-08-01")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.Prune(ctx, "")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
