package curation

import (
	"sort"
	"sync"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// QueueCap bounds how many candidates one cycle may accumulate; a
// curation pass never offers the completer more than this.
const QueueCap = 30

// Queue is the cycle-scoped candidate buffer. Pushes may come from
// concurrent per-market workers; Drain ends the cycle's accumulation
// and nothing survives past it.
type Queue struct {
	mu    sync.Mutex
	items []*domain.Candidate
	seen  map[string]bool
}

func NewQueue() *Queue {
	return &Queue{seen: make(map[string]bool)}
}

// Push adds a candidate unless the queue is full or the market is
// already queued. Reports whether the candidate was accepted.
func (q *Queue) Push(c *domain.Candidate) bool {
	if c == nil || c.Market == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= QueueCap || q.seen[c.Market.MarketID] {
		return false
	}
	q.seen[c.Market.MarketID] = true
	q.items = append(q.items, c)
	return true
}

// Len reports how many candidates are queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain empties the queue and returns its candidates ranked for
// selection: alignment score descending, then divergence descending as
// the direct measure of mispricing, then event time ascending.
func (q *Queue) Drain() []*domain.Candidate {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.seen = make(map[string]bool)
	q.mu.Unlock()

	sort.SliceStable(items, func(i, j int) bool {
		if ti, tj := scoreTotal(items[i]), scoreTotal(items[j]); ti != tj {
			return ti > tj
		}
		if items[i].DivergencePts != items[j].DivergencePts {
			return items[i].DivergencePts > items[j].DivergencePts
		}
		return eventTime(items[i]) < eventTime(items[j])
	})
	return items
}

func scoreTotal(c *domain.Candidate) float64 {
	if c.Score == nil {
		return 0
	}
	return c.Score.Total
}

func eventTime(c *domain.Candidate) int64 {
	if c.Score == nil || c.Score.Event == nil {
		return 0
	}
	return c.Score.Event.Timestamp
}
