package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
	"github.com/Vitor-VarelAI/Polymarket/internal/storage"
)

func TestOutcomeStore_InsertAndHas(t *testing.T) {
	store := NewOutcomeStore()
	ctx := context.Background()

	o := &domain.AlertOutcome{AlertID: "a1", MarketID: "m1", Category: "Crypto", Won: true}
	if err := store.Insert(ctx, o); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	has, err := store.Has(ctx, "a1")
	if err != nil || !has {
		t.Errorf("Has(a1) = %v, %v; want true", has, err)
	}
	has, err = store.Has(ctx, "a2")
	if err != nil || has {
		t.Errorf("Has(a2) = %v, %v; want false", has, err)
	}

	err = store.Insert(ctx, o)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("duplicate insert err = %v, want ErrDuplicateKey", err)
	}

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("nil insert err = %v, want ErrInvalidInput", err)
	}
	if _, err := store.Has(ctx, ""); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("empty Has err = %v, want ErrInvalidInput", err)
	}
}

func TestOutcomeStore_Stats(t *testing.T) {
	store := NewOutcomeStore()
	ctx := context.Background()

	outcomes := []*domain.AlertOutcome{
		{AlertID: "a1", MarketID: "m1", Category: "Politics", Score: 70, Won: true, RealizedMultiple: 2},
		{AlertID: "a2", MarketID: "m2", Category: "Crypto", Score: 80, Won: true, RealizedMultiple: 3},
		{AlertID: "a3", MarketID: "m3", Category: "Politics", Score: 75, Won: false, RealizedMultiple: 0},
	}
	for _, o := range outcomes {
		if err := store.Insert(ctx, o); err != nil {
			t.Fatalf("insert %s: %v", o.AlertID, err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(stats))
	}

	// Categories ASC, overall row last.
	crypto, politics, all := stats[0], stats[1], stats[2]
	if crypto.Category != "Crypto" || politics.Category != "Politics" || all.Category != "ALL" {
		t.Fatalf("unexpected row order: %s, %s, %s", crypto.Category, politics.Category, all.Category)
	}

	if crypto.Alerts != 1 || crypto.Wins != 1 || crypto.WinRate != 1 || crypto.AvgScore != 80 || crypto.AvgMultiple != 3 {
		t.Errorf("crypto row = %+v", crypto)
	}
	if politics.Alerts != 2 || politics.Wins != 1 || politics.WinRate != 0.5 || politics.AvgScore != 72.5 || politics.AvgMultiple != 1 {
		t.Errorf("politics row = %+v", politics)
	}
	if all.Alerts != 3 || all.Wins != 2 || all.AvgScore != 75 {
		t.Errorf("overall row = %+v", all)
	}
	if all.WinRate != 2.0/3.0 || all.AvgMultiple != 5.0/3.0 {
		t.Errorf("overall ratios = %f, %f", all.WinRate, all.AvgMultiple)
	}
}

func TestOutcomeStore_StatsEmpty(t *testing.T) {
	stats, err := NewOutcomeStore().Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("expected no rows, got %d", len(stats))
	}
}
