package domain

// AlertOutcome records how a sent alert resolved.
// Corresponds to alert_outcomes table in ClickHouse; written by the
// tracker once the market resolves, read for aggregate performance
// stats.
type AlertOutcome struct {
	AlertID          string  // alert id the outcome belongs to
	MarketID         string  // market id
	Category         string  // market category at alert time
	Direction        string  // alerted direction
	Score            float64 // alignment score at alert time
	ExpectedValue    float64 // EV attached to the alert
	OddsAtAlert      float64 // market odds when alerted, percent
	SentAt           int64   // alert delivery timestamp, Unix ms
	ResolvedAt       int64   // market resolution timestamp, Unix ms
	Won              bool    // alerted direction resolved true
	RealizedMultiple float64 // payout multiple realized (0 on loss)
}

// OutcomeStats is an aggregate over recorded outcomes.
type OutcomeStats struct {
	Category    string  // category the row aggregates, "ALL" for overall
	Alerts      int     // outcomes counted
	Wins        int     // outcomes where the alerted direction won
	WinRate     float64 // Wins / Alerts
	AvgScore    float64 // mean alignment score
	AvgMultiple float64 // mean realized multiple across all outcomes
}
