package digest

import (
	"testing"
	"time"
)

func digestClock(hour, minute int) time.Time {
	return time.Date(2024, 5, 15, hour, minute, 0, 0, time.UTC)
}

func TestScheduler_Due(t *testing.T) {
	cases := []struct {
		name        string
		hour        int
		minute      int
		wantEdition string
		wantDue     bool
	}{
		{name: "morning slot exact", hour: 11, minute: 0, wantEdition: EditionMorning, wantDue: true},
		{name: "morning slot late edge", hour: 11, minute: 5, wantEdition: EditionMorning, wantDue: true},
		{name: "morning slot early edge", hour: 10, minute: 55, wantEdition: EditionMorning, wantDue: true},
		{name: "just past the window", hour: 11, minute: 6, wantDue: false},
		{name: "just before the window", hour: 10, minute: 54, wantDue: false},
		{name: "afternoon slot", hour: 16, minute: 2, wantEdition: EditionAfternoon, wantDue: true},
		{name: "evening slot", hour: 20, minute: 0, wantEdition: EditionEvening, wantDue: true},
		{name: "midday", hour: 13, minute: 0, wantDue: false},
		{name: "night", hour: 23, minute: 59, wantDue: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			edition, due := NewScheduler().Due(digestClock(tc.hour, tc.minute))
			if due != tc.wantDue {
				t.Fatalf("due = %v, want %v", due, tc.wantDue)
			}
			if edition != tc.wantEdition {
				t.Errorf("edition = %q, want %q", edition, tc.wantEdition)
			}
		})
	}
}

func TestScheduler_RetriggerGuard(t *testing.T) {
	s := NewScheduler()

	if _, due := s.Due(digestClock(11, 0)); !due {
		t.Fatal("first trigger should fire")
	}
	s.MarkSent(digestClock(11, 0))

	if _, due := s.Due(digestClock(11, 3)); due {
		t.Error("retriggered inside the guard")
	}

	edition, due := s.Due(digestClock(16, 0))
	if !due || edition != EditionAfternoon {
		t.Errorf("next slot should fire: edition %q, due %v", edition, due)
	}
}

func TestScheduler_DueNormalizesZone(t *testing.T) {
	lisbonSummer := time.FixedZone("WEST", 3600)
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, lisbonSummer) // 11:00 UTC

	edition, due := NewScheduler().Due(now)
	if !due || edition != EditionMorning {
		t.Errorf("edition %q, due %v, want Morning", edition, due)
	}
}

func TestNextTime(t *testing.T) {
	cases := []struct {
		hour   int
		minute int
		want   string
	}{
		{10, 0, "11:00 UTC"},
		{11, 0, "16:00 UTC"},
		{12, 30, "16:00 UTC"},
		{19, 59, "20:00 UTC"},
		{20, 0, "11:00 UTC"},
		{23, 59, "11:00 UTC"},
	}
	for _, tc := range cases {
		if got := NextTime(digestClock(tc.hour, tc.minute)); got != tc.want {
			t.Errorf("NextTime(%02d:%02d) = %q, want %q", tc.hour, tc.minute, got, tc.want)
		}
	}
}
