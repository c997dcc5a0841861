// Package digest builds the scheduled value-bets digest: picks are
// curated and validated the same way whale alerts are, then rendered
// into one message with deterministic summary arithmetic.
package digest

import (
	"fmt"
	"sync"
	"time"
)

// Digest editions, named after their UTC slot.
const (
	EditionMorning   = "Morning"
	EditionAfternoon = "Afternoon"
	EditionEvening   = "Evening"
)

type digestSlot struct {
	hour    int
	minute  int
	edition string
}

// Digest slots in UTC, ascending.
var digestSlots = []digestSlot{
	{11, 0, EditionMorning},
	{16, 0, EditionAfternoon},
	{20, 0, EditionEvening},
}

const (
	// triggerWindow is how far from a slot the minute check may land
	// and still trigger, so a coarse ticker cannot step over a slot.
	triggerWindow = 5 * time.Minute

	// retriggerGuard suppresses a second send while the trigger
	// window is still open.
	retriggerGuard = time.Hour
)

// Scheduler decides when the next digest is due. Safe for concurrent
// use.
type Scheduler struct {
	mu       sync.Mutex
	lastSent time.Time
}

// NewScheduler builds a Scheduler with no send history.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Due reports whether a digest should go out at now, and for which
// edition. A slot matches within triggerWindow minutes; a match is
// suppressed when the previous digest went out less than
// retriggerGuard ago.
func (s *Scheduler) Due(now time.Time) (string, bool) {
	cur := now.UTC()
	curMinutes := cur.Hour()*60 + cur.Minute()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range digestSlots {
		slotMinutes := slot.hour*60 + slot.minute
		diff := slotMinutes - curMinutes
		if diff < 0 {
			diff = -diff
		}
		if float64(diff) > triggerWindow.Minutes() {
			continue
		}
		if !s.lastSent.IsZero() && now.Sub(s.lastSent) < retriggerGuard {
			return "", false
		}
		return slot.edition, true
	}
	return "", false
}

// MarkSent records a successful send for the retrigger guard.
func (s *Scheduler) MarkSent(now time.Time) {
	s.mu.Lock()
	s.lastSent = now
	s.mu.Unlock()
}

// NextTime formats the first slot strictly after now, wrapping to the
// next day's first slot past the last one.
func NextTime(now time.Time) string {
	cur := now.UTC()
	curMinutes := cur.Hour()*60 + cur.Minute()

	for _, slot := range digestSlots {
		if slot.hour*60+slot.minute > curMinutes {
			return fmt.Sprintf("%02d:%02d UTC", slot.hour, slot.minute)
		}
	}
	first := digestSlots[0]
	return fmt.Sprintf("%02d:%02d UTC", first.hour, first.minute)
}
