// Package metrics holds the Prometheus collectors for page fetches and
// searches.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ratetool/fetch"
)

// Metrics holds all Prometheus metrics for the rate service.
type Metrics struct {
	PagesFetched   *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	RecordsFetched prometheus.Counter
	Searches       *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	pagesFetched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ratetool_pages_fetched_total",
		Help: "Total record pages requested, by outcome",
	}, []string{"outcome"})

	fetchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ratetool_page_fetch_seconds",
		Help:    "Latency of a single page request",
		Buckets: prometheus.DefBuckets,
	})

	recordsFetched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ratetool_records_fetched_total",
		Help: "Total rate records returned by page requests",
	})

	searches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ratetool_searches_total",
		Help: "Total searches, by outcome",
	}, []string{"outcome"})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ratetool_active_sessions",
		Help: "Number of open explorer sessions",
	})

	reg.MustRegister(pagesFetched, fetchDuration, recordsFetched, searches, activeSessions)

	return &Metrics{
		PagesFetched:   pagesFetched,
		FetchDuration:  fetchDuration,
		RecordsFetched: recordsFetched,
		Searches:       searches,
		ActiveSessions: activeSessions,
	}
}

// Search outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid"
	OutcomeError      = "error"
	OutcomeSuperseded = "superseded"
)

// ObserveSearch counts one search with the given outcome. Nil-safe.
func (m *Metrics) ObserveSearch(outcome string) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(outcome).Inc()
}

// Instrument wraps src so every page request is counted and timed.
func (m *Metrics) Instrument(src fetch.PageSource) fetch.PageSource {
	if m == nil {
		return src
	}
	return &instrumentedSource{src: src, m: m}
}

type instrumentedSource struct {
	src fetch.PageSource
	m   *Metrics
}

func (s *instrumentedSource) FetchPage(ctx context.Context, q fetch.Query) (fetch.Page, error) {
	start := time.Now()
	p, err := s.src.FetchPage(ctx, q)
	s.m.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.m.PagesFetched.WithLabelValues(OutcomeError).Inc()
		return p, err
	}
	s.m.PagesFetched.WithLabelValues(OutcomeOK).Inc()
	s.m.RecordsFetched.Add(float64(len(p.Data)))
	return p, nil
}
