package domain

// AlertMaxMessageLen is the delivery channel's message body ceiling.
const AlertMaxMessageLen = 2000

// AlertDisclaimer is the fixed line closing every delivered message.
const AlertDisclaimer = "Not financial advice."

// Alert is the final curated notification for one whale event. Created
// only after numeric validation passes; consumed by the rate limiter
// and then handed to the notification channel.
type Alert struct {
	AlertID         string    // deterministic hash of market, direction and event
	MarketID        string    // market id
	MarketName      string    // market question
	MarketURL       string    // public market page
	Category        string    // market category
	Direction       Direction // event direction
	OddsPct         float64   // market odds for the direction, percent
	SizeUSD         float64   // whale position size
	Score           float64   // alignment score total
	ExpectedValue   float64   // per-$1 EV at the alerted odds
	EventSummary    string    // one-line whale event description
	EvidenceBullets []string  // up to 3 evidence source lines
	Mispricing      string    // one plain-language mispricing sentence
	Confidence      string    // HIGH | MEDIUM | LOW
	TopReasons      []string  // two highest-scoring component reasons
	Body            string    // rendered message, <= AlertMaxMessageLen
	CreatedAt       int64     // Unix ms
}

// SentAlert records one delivered alert. Corresponds to alerts_sent
// table in PostgreSQL; read before every send attempt, appended on
// every successful send, pruned past the retention horizon. Besides
// rate limiting, the rows double as the signal log the performance
// tracker joins resolutions onto, so the alert's key numbers are
// captured here at send time.
type SentAlert struct {
	MarketID      string    // market the alert concerned
	AlertID       string    // UNIQUE, deterministic alert id
	MarketName    string    // market question at alert time
	Category      string    // market category at alert time
	Direction     Direction // alerted direction
	OddsPct       float64   // market odds when alerted, percent
	Score         float64   // alignment score at alert time
	ExpectedValue float64   // per-$1 EV attached to the alert
	SentAt        int64     // delivery timestamp, Unix ms
}
