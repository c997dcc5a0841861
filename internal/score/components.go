package score

import (
	"fmt"
	"time"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// Recency buckets by evidence age in days.
const (
	recencyFreshDays  = 7
	recencyRecentDays = 30
	recencyStaleDays  = 90
)

const msPerDay = 24 * 60 * 60 * 1000

// credibility awards 0-30 points from the relevance-weighted average of
// per-result authority points.
func credibility(evidence []domain.ResearchResult) domain.ScoreComponent {
	c := domain.ScoreComponent{Name: domain.ComponentCredibility, Max: domain.MaxCredibility}
	if len(evidence) == 0 {
		c.Reason = "no evidence"
		return c
	}

	var weighted, weight, best float64
	bestClass := domain.AuthorityUnknown
	for _, r := range evidence {
		pts := r.Authority.Points()
		weighted += pts * r.Relevance
		weight += r.Relevance
		if pts > best {
			best = pts
			bestClass = r.Authority
		}
	}

	avg := 0.0
	if weight > 0 {
		avg = weighted / weight
	} else {
		// Providers that report no relevance weigh everything equally.
		for _, r := range evidence {
			avg += r.Authority.Points()
		}
		avg /= float64(len(evidence))
	}
	if avg > c.Max {
		avg = c.Max
	}

	c.Points = avg
	c.Reason = fmt.Sprintf("strongest source %s of %d results", bestClass, len(evidence))
	return c
}

// recency awards 0-20 points from per-result age buckets averaged over
// all evidence. A result without a publication date scores zero but
// still dilutes the average.
func recency(evidence []domain.ResearchResult, now time.Time) domain.ScoreComponent {
	c := domain.ScoreComponent{Name: domain.ComponentRecency, Max: domain.MaxRecency}
	if len(evidence) == 0 {
		c.Reason = "no evidence"
		return c
	}

	nowMs := now.UnixMilli()
	var total float64
	fresh := 0
	for _, r := range evidence {
		if r.PublishedAt == 0 {
			continue
		}
		ageDays := float64(nowMs-r.PublishedAt) / msPerDay
		switch {
		case ageDays <= recencyFreshDays:
			total += 20
			fresh++
		case ageDays <= recencyRecentDays:
			total += 12
		case ageDays <= recencyStaleDays:
			total += 6
		}
	}

	c.Points = total / float64(len(evidence))
	c.Reason = fmt.Sprintf("%d of %d results within %dd", fresh, len(evidence), recencyFreshDays)
	return c
}

// consensus awards 0-25 points for directional agreement between the
// evidence and the event. Results without a clear lean do not vote.
func consensus(dir domain.Direction, evidence []domain.ResearchResult) domain.ScoreComponent {
	c := domain.ScoreComponent{Name: domain.ComponentConsensus, Max: domain.MaxConsensus}

	directional, aligned := 0, 0
	for _, r := range evidence {
		if r.Lean != domain.LeanYes && r.Lean != domain.LeanNo {
			continue
		}
		directional++
		if string(r.Lean) == string(dir) {
			aligned++
		}
	}
	if directional == 0 {
		c.Reason = "no directional evidence"
		return c
	}

	pct := float64(aligned) / float64(directional) * 100
	switch {
	case pct >= 70:
		c.Points = 25
	case pct >= 50:
		c.Points = 12
	}
	c.Reason = fmt.Sprintf("%.0f%% of %d directional results agree", pct, directional)
	return c
}

// specificity awards 0-15 points for explicit, named predictions.
func specificity(evidence []domain.ResearchResult) domain.ScoreComponent {
	c := domain.ScoreComponent{Name: domain.ComponentSpecificity, Max: domain.MaxSpecificity}
	if len(evidence) == 0 {
		c.Reason = "no evidence"
		return c
	}

	specific := 0
	for _, r := range evidence {
		if r.Specific {
			specific++
		}
	}
	switch {
	case specific >= 2:
		c.Points = 15
	case specific == 1:
		c.Points = 12
	default:
		c.Points = 4
	}
	c.Reason = fmt.Sprintf("%d specific predictions in %d results", specific, len(evidence))
	return c
}

// divergence awards 0-10 points for the gap between the
// evidence-implied probability and the market's current YES odds, both
// in percent.
func divergence(implied, marketOdds float64, directional bool) domain.ScoreComponent {
	c := domain.ScoreComponent{Name: domain.ComponentDivergence, Max: domain.MaxDivergence}
	if !directional {
		c.Reason = "no directional evidence"
		return c
	}

	gap := implied - marketOdds
	if gap < 0 {
		gap = -gap
	}
	switch {
	case gap >= 12:
		c.Points = 10
	case gap >= 8:
		c.Points = 7
	case gap >= 5:
		c.Points = 5
	case gap >= 2:
		c.Points = 2
	}
	c.Reason = fmt.Sprintf("implied %.0f%% vs market %.0f%%", implied, marketOdds)
	return c
}

// impliedYesOdds computes the relevance-weighted YES share among
// direction-bearing results, in percent. directional is false when no
// result carries a clear lean.
func impliedYesOdds(evidence []domain.ResearchResult) (implied float64, directional bool) {
	var yes, weight float64
	yesN, n := 0, 0
	for _, r := range evidence {
		if r.Lean != domain.LeanYes && r.Lean != domain.LeanNo {
			continue
		}
		n++
		weight += r.Relevance
		if r.Lean == domain.LeanYes {
			yesN++
			yes += r.Relevance
		}
	}
	if n == 0 {
		return 0, false
	}
	if weight <= 0 {
		return float64(yesN) / float64(n) * 100, true
	}
	return yes / weight * 100, true
}
