// Package metrics holds the Prometheus collectors for fetching and extraction.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the scrape pipeline.
type Metrics struct {
	// One observation per HTTP attempt: outcome is "ok", "retry" or "fail"
	FetchAttemptsTotal *prometheus.CounterVec

	// Cache lookups: result is "hit" or "miss"
	CacheLookupsTotal *prometheus.CounterVec

	// Scrapes that ended in a FetchFailure
	FetchFailuresTotal prometheus.Counter

	// Time spent in field extraction per document
	ExtractDuration prometheus.Histogram

	// Records assembled
	RecordsTotal prometheus.Counter
}

// Default returns the process-wide metrics registered on the default registry.
//
// Registration happens once so repeated calls never panic with
// "duplicate metrics collector registration".
func Default() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = New(prometheus.DefaultRegisterer)
	})
	return globalMetrics
}

// New creates metrics registered on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FetchAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regscout_fetch_attempts_total",
				Help: "HTTP fetch attempts by outcome",
			},
			[]string{"outcome"},
		),
		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regscout_cache_lookups_total",
				Help: "Page cache lookups by result",
			},
			[]string{"result"},
		),
		FetchFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "regscout_fetch_failures_total",
			Help: "Scrapes that returned a fetch failure",
		}),
		ExtractDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "regscout_extract_duration_seconds",
			Help:    "Field extraction time per document",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		RecordsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "regscout_records_total",
			Help: "Regulation records assembled",
		}),
	}
}

// CacheHit records a cache hit
func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheLookupsTotal.WithLabelValues("hit").Inc()
	}
}

// CacheMiss records a cache miss
func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}
}

// Attempt records one HTTP attempt outcome
func (m *Metrics) Attempt(outcome string) {
	if m != nil {
		m.FetchAttemptsTotal.WithLabelValues(outcome).Inc()
	}
}

// Failure records a scrape that failed
func (m *Metrics) Failure() {
	if m != nil {
		m.FetchFailuresTotal.Inc()
	}
}

// ObserveExtract records extraction latency in seconds
func (m *Metrics) ObserveExtract(seconds float64) {
	if m != nil {
		m.ExtractDuration.Observe(seconds)
	}
}

// Record counts an assembled record
func (m *Metrics) Record() {
	if m != nil {
		m.RecordsTotal.Inc()
	}
}
