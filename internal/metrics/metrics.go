// Package metrics holds the prometheus instruments for a hockeymetrics run.
//
// The CLI is a batch process, so nothing is scraped: when a textfile path is
// configured the registry is written once at exit in the node-exporter
// textfile-collector format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is private to the process so the textfile holds only our series.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	EventsNormalized = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hockeymetrics_events_normalized_total",
			Help: "Plays retained by the normalizer, by kind",
		},
		[]string{"kind"},
	)

	RecordsSkipped = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hockeymetrics_records_skipped_total",
			Help: "Play-by-play records dropped, by reason",
		},
		[]string{"reason"},
	)

	GamesProcessed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hockeymetrics_games_processed_total",
			Help: "Games run through the pipeline, by outcome",
		},
		[]string{"status"}, // "ok", "failed"
	)

	ProviderRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hockeymetrics_provider_requests_total",
			Help: "Provider API requests, by endpoint and result",
		},
		[]string{"endpoint", "result"}, // result: "ok", "cache", "error", "rejected"
	)

	ProviderLatency = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hockeymetrics_provider_request_seconds",
			Help:    "Provider API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ExpectedGoals = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hockeymetrics_shot_xg",
			Help:    "Distribution of predicted shot goal probabilities",
			Buckets: []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.3, 0.5, 0.75, 1},
		},
	)

	ConsistencyIssues = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hockeymetrics_consistency_issues_total",
			Help: "Aggregation consistency findings, by kind",
		},
		[]string{"kind"},
	)
)

// WriteTextfile dumps the registry to path. An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, Registry)
}
