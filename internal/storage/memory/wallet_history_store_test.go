package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

func TestWalletHistoryStore_UpsertAndGet(t *testing.T) {
	store := NewWalletHistoryStore()
	ctx := context.Background()

	_, err := store.Upsert(ctx, "0xaaaa", "m1", func(cur *domain.WalletHistory) *domain.WalletHistory {
		if cur != nil {
			t.Fatal("expected nil current record on first upsert")
		}
		return &domain.WalletHistory{
			LastSizeUSD:   25000,
			LastDirection: domain.DirectionYes,
			YesSizeUSD:    25000,
			LastSeenAt:    1700000000000,
			TradeCount:    1,
			UpdatedAt:     1700000000000,
		}
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	h, err := store.Get(ctx, "0xaaaa", "m1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if h.Wallet != "0xaaaa" || h.MarketID != "m1" {
		t.Errorf("key fields not set: %s/%s", h.Wallet, h.MarketID)
	}
	if h.LastSizeUSD != 25000 {
		t.Errorf("LastSizeUSD = %f, want 25000", h.LastSizeUSD)
	}
}

func TestWalletHistoryStore_GetNotFound(t *testing.T) {
	store := NewWalletHistoryStore()

	_, err := store.Get(context.Background(), "0xaaaa", "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWalletHistoryStore_UpsertAccumulates(t *testing.T) {
	store := NewWalletHistoryStore()
	ctx := context.Background()

	add := func(size float64) {
		_, err := store.Upsert(ctx, "0xaaaa", "m1", func(cur *domain.WalletHistory) *domain.WalletHistory {
			next := &domain.WalletHistory{}
			if cur != nil {
				*next = *cur
			}
			next.YesSizeUSD += size
			next.TradeCount++
			return next
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	add(10000)
	add(5000)

	h, err := store.Get(ctx, "0xaaaa", "m1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if h.YesSizeUSD != 15000 {
		t.Errorf("YesSizeUSD = %f, want 15000", h.YesSizeUSD)
	}
	if h.TradeCount != 2 {
		t.Errorf("TradeCount = %d, want 2", h.TradeCount)
	}
}

func TestWalletHistoryStore_UpsertNilKeepsRecord(t *testing.T) {
	store := NewWalletHistoryStore()
	ctx := context.Background()

	_, err := store.Upsert(ctx, "0xaaaa", "m1", func(cur *domain.WalletHistory) *domain.WalletHistory {
		return &domain.WalletHistory{TradeCount: 3, UpdatedAt: 100}
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// A replayed trade returns nil from fn; the stored record must not change.
	h, err := store.Upsert(ctx, "0xaaaa", "m1", func(cur *domain.WalletHistory) *domain.WalletHistory {
		return nil
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if h.TradeCount != 3 {
		t.Errorf("TradeCount = %d, want 3", h.TradeCount)
	}
}

func TestWalletHistoryStore_ConcurrentUpserts(t *testing.T) {
	store := NewWalletHistoryStore()
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_, _ = store.Upsert(ctx, "0xaaaa", "m1", func(cur *domain.WalletHistory) *domain.WalletHistory {
				next := &domain.WalletHistory{}
				if cur != nil {
					*next = *cur
				}
				next.TradeCount++
				return next
			})
		}()
	}
	wg.Wait()

	h, err := store.Get(ctx, "0xaaaa", "m1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if h.TradeCount != goroutines {
		t.Errorf("TradeCount = %d, want %d (lost updates)", h.TradeCount, goroutines)
	}
}

func TestWalletHistoryStore_GetByWalletSorted(t *testing.T) {
	store := NewWalletHistoryStore()
	ctx := context.Background()

	for _, m := range []string{"m3", "m1", "m2"} {
		_, err := store.Upsert(ctx, "0xaaaa", m, func(cur *domain.WalletHistory) *domain.WalletHistory {
			return &domain.WalletHistory{UpdatedAt: 100}
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	result, err := store.GetByWallet(ctx, "0xaaaa")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("expected 3 histories, got %d", len(result))
	}
	for i, want := range []string{"m1", "m2", "m3"} {
		if result[i].MarketID != want {
			t.Errorf("result[%d].MarketID = %s, want %s", i, result[i].MarketID, want)
		}
	}
}

func TestWalletHistoryStore_Prune(t *testing.T) {
	store := NewWalletHistoryStore()
	ctx := context.Background()

	put := func(market string, updatedAt int64) {
		_, err := store.Upsert(ctx, "0xaaaa", market, func(cur *domain.WalletHistory) *domain.WalletHistory {
			return &domain.WalletHistory{UpdatedAt: updatedAt}
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	put("old", 1000)
	put("fresh", 5000)

	removed, err := store.Prune(ctx, 2000)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if _, err := store.Get(ctx, "0xaaaa", "old"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected old row pruned, got %v", err)
	}
	if _, err := store.Get(ctx, "0xaaaa", "fresh"); err != nil {
		t.Errorf("fresh row should survive, got %v", err)
	}
}
