// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Cycle metrics
	CyclesTotal     *prometheus.CounterVec
	CycleDuration   prometheus.Histogram
	MarketsPolled   prometheus.Gauge
	TradesProcessed prometheus.Counter

	// Detection metrics
	WhaleEventsDetected prometheus.Counter
	WalletsExcluded     *prometheus.CounterVec
	CandidatesScored    prometheus.Counter
	CandidatesEligible  prometheus.Counter

	// Research metrics
	ResearchLookups   prometheus.Counter
	ResearchCacheHits prometheus.Counter
	ResearchFailures  *prometheus.CounterVec

	// Curation metrics
	ItemsCurated       prometheus.Counter
	RationalesRejected prometheus.Counter
	FallbackSelections prometheus.Counter

	// Delivery metrics
	AlertsSent    prometheus.Counter
	AlertsBlocked *prometheus.CounterVec
	DigestsSent   *prometheus.CounterVec
	SendErrors    prometheus.Counter

	// Health metrics
	LastSuccessfulCycle  prometheus.Gauge
	LastSuccessfulDigest prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "whalewatch"
	}

	return &Metrics{
		CyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "runs_total",
			Help:      "Total number of detection cycles by status",
		}, []string{"status"}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "duration_seconds",
			Help:      "Detection cycle duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		MarketsPolled: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "markets_polled",
			Help:      "Markets polled in the most recent cycle",
		}),
		TradesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "trades_processed_total",
			Help:      "Total number of trade records processed by the detector",
		}),

		WhaleEventsDetected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detect",
			Name:      "whale_events_total",
			Help:      "Total number of whale events emitted by the detector",
		}),
		WalletsExcluded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detect",
			Name:      "wallets_excluded_total",
			Help:      "Total number of events dropped by the exclusion filter, by rule",
		}, []string{"rule"}),
		CandidatesScored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "score",
			Name:      "candidates_scored_total",
			Help:      "Total number of events scored",
		}),
		CandidatesEligible: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "score",
			Name:      "candidates_eligible_total",
			Help:      "Total number of scored events at or above the alert threshold",
		}),

		ResearchLookups: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "research",
			Name:      "lookups_total",
			Help:      "Total number of research lookups issued",
		}),
		ResearchCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "research",
			Name:      "cache_hits_total",
			Help:      "Total number of research lookups served from cache",
		}),
		ResearchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "research",
			Name:      "failures_total",
			Help:      "Total number of failed research lookups by kind",
		}, []string{"kind"}),

		ItemsCurated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "curation",
			Name:      "items_total",
			Help:      "Total number of validated curated selections",
		}),
		RationalesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "curation",
			Name:      "rationales_rejected_total",
			Help:      "Total number of rationales dropped by the numeric validator",
		}),
		FallbackSelections: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "curation",
			Name:      "fallback_selections_total",
			Help:      "Total number of curation passes served by the deterministic fallback",
		}),

		AlertsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "alerts_sent_total",
			Help:      "Total number of whale alerts delivered",
		}),
		AlertsBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "alerts_blocked_total",
			Help:      "Total number of alerts blocked by the rate limiter, by reason",
		}, []string{"reason"}),
		DigestsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "digests_sent_total",
			Help:      "Total number of value digests delivered, by edition",
		}, []string{"edition"}),
		SendErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "send_errors_total",
			Help:      "Total number of failed delivery attempts",
		}),

		LastSuccessfulCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of the last cycle that completed without a fatal error",
		}),
		LastSuccessfulDigest: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_digest_timestamp",
			Help:      "Unix timestamp of the last digest delivered",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCycle records one finished detection cycle.
func RecordCycle(status string, durationSeconds float64) {
	DefaultMetrics.CyclesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.CycleDuration.Observe(durationSeconds)
	if status == "ok" {
		DefaultMetrics.LastSuccessfulCycle.SetToCurrentTime()
	}
}

// RecordWhaleEvent increments the whale events counter.
func RecordWhaleEvent() {
	DefaultMetrics.WhaleEventsDetected.Inc()
}

// RecordExclusion records one event dropped by the exclusion filter.
// Reasons carry a value suffix after a colon; only the rule name labels
// the series.
func RecordExclusion(reason string) {
	for i := 0; i < len(reason); i++ {
		if reason[i] == ':' {
			reason = reason[:i]
			break
		}
	}
	DefaultMetrics.WalletsExcluded.WithLabelValues(reason).Inc()
}

// RecordScored records one scored event and whether it crossed the
// alert threshold.
func RecordScored(eligible bool) {
	DefaultMetrics.CandidatesScored.Inc()
	if eligible {
		DefaultMetrics.CandidatesEligible.Inc()
	}
}

// RecordAlertSent increments the delivered alerts counter.
func RecordAlertSent() {
	DefaultMetrics.AlertsSent.Inc()
}

// RecordAlertBlocked records one alert the rate limiter denied.
func RecordAlertBlocked(reason string) {
	DefaultMetrics.AlertsBlocked.WithLabelValues(reason).Inc()
}

// RecordDigestSent records one delivered digest.
func RecordDigestSent(edition string) {
	DefaultMetrics.DigestsSent.WithLabelValues(edition).Inc()
	DefaultMetrics.LastSuccessfulDigest.SetToCurrentTime()
}

// RecordSendError increments the failed delivery counter.
func RecordSendError() {
	DefaultMetrics.SendErrors.Inc()
}
