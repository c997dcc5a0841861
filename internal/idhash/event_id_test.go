package idhash

import (
	"testing"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

func TestComputeEventID(t *testing.T) {
	tests := []struct {
		name      string
		marketID  string
		wallet    string
		direction domain.Direction
		sizeUSD   float64
		timestamp int64
		wantLen   int
	}{
		{
			name:      "YES position",
			marketID:  "0x1234",
			wallet:    "0xabcdef0123456789",
			direction: domain.DirectionYes,
			sizeUSD:   25000,
			timestamp: 1700000000000,
			wantLen:   64,
		},
		{
			name:      "NO position",
			marketID:  "0x1234",
			wallet:    "0xabcdef0123456789",
			direction: domain.DirectionNo,
			sizeUSD:   25000,
			timestamp: 1700000000000,
			wantLen:   64,
		},
		{
			name:      "fractional size",
			marketID:  "0x9999",
			wallet:    "0x1111",
			direction: domain.DirectionYes,
			sizeUSD:   10000.55,
			timestamp: 1700000060000,
			wantLen:   64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeEventID(tt.marketID, tt.wallet, tt.direction, tt.sizeUSD, tt.timestamp)
			if len(got) != tt.wantLen {
				t.Errorf("length = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestComputeEventID_Deterministic(t *testing.T) {
	a := ComputeEventID("0x1234", "0xaaaa", domain.DirectionYes, 25000, 1700000000000)
	b := ComputeEventID("0x1234", "0xaaaa", domain.DirectionYes, 25000, 1700000000000)

	if a != b {
		t.Errorf("same inputs produced different ids: %s vs %s", a, b)
	}
}

func TestComputeEventID_DirectionChangesID(t *testing.T) {
	yes := ComputeEventID("0x1234", "0xaaaa", domain.DirectionYes, 25000, 1700000000000)
	no := ComputeEventID("0x1234", "0xaaaa", domain.DirectionNo, 25000, 1700000000000)

	if yes == no {
		t.Error("YES and NO events hashed to the same id")
	}
}

func TestComputeAlertID_Deterministic(t *testing.T) {
	event := ComputeEventID("0x1234", "0xaaaa", domain.DirectionYes, 25000, 1700000000000)

	a := ComputeAlertID("0x1234", domain.DirectionYes, event)
	b := ComputeAlertID("0x1234", domain.DirectionYes, event)

	if a != b {
		t.Errorf("same inputs produced different ids: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("length = %d, want 64", len(a))
	}
}
