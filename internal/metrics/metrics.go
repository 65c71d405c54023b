// Package metrics holds the prometheus collectors of the search service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rrv"

// Metrics search service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	searches   *prometheus.CounterVec
	duration   prometheus.Histogram
	worksheets *prometheus.CounterVec
	verdicts   *prometheus.CounterVec
	matches    prometheus.Histogram
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Plate searches by outcome (found, empty, error).",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end search latency including the registry lookup.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		worksheets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worksheets_scanned_total",
			Help:      "Worksheets visited by status (searched, skipped, error).",
		}, []string{"status"}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_verdicts_total",
			Help:      "Registry verdicts by status.",
		}, []string{"verdict"}),
		matches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_matches",
			Help:      "Records returned per search.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
	}

	for _, c := range []prometheus.Collector{m.searches, m.duration, m.worksheets, m.verdicts, m.matches} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveSearch records one finished search.
func (m *Metrics) ObserveSearch(outcome string, matches int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	if outcome != "error" {
		m.matches.Observe(float64(matches))
	}
}

// ObserveWorksheet records the status of one worksheet.
func (m *Metrics) ObserveWorksheet(status string) {
	if m == nil {
		return
	}
	m.worksheets.WithLabelValues(status).Inc()
}

// ObserveVerdict records a registry verdict.
func (m *Metrics) ObserveVerdict(verdict string) {
	if m == nil {
		return
	}
	m.verdicts.WithLabelValues(verdict).Inc()
}
