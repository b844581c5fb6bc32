// Package observability holds the Prometheus metrics for analysis runs.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/chrissnell/tidegauge/internal/gauge"
)

const namespace = "tidegauge"

// Metrics holds the counters and gauges for one process. Each Metrics has its
// own registry so tests and repeated runs never collide.
type Metrics struct {
	registry *prometheus.Registry

	FilesParsed    prometheus.Counter
	ReadingsParsed prometheus.Counter
	ParseFailures  prometheus.Counter
	Flagged        *prometheus.CounterVec // labels: column={sea_level,residual}, flag

	RiseRate    *prometheus.GaugeVec // labels: station
	RunDuration prometheus.Histogram
	LastRun     *prometheus.GaugeVec // labels: station
}

// NewMetrics creates and registers all metrics on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FilesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_parsed_total",
			Help:      "Station files parsed successfully.",
		}),
		ReadingsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_parsed_total",
			Help:      "Data rows read from station files.",
		}),
		ParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_failures_total",
			Help:      "Station files rejected by the parser.",
		}),
		Flagged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flagged_readings_total",
			Help:      "Values carrying a quality flag, by column and flag letter.",
		}, []string{"column", "flag"}),
		RiseRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rise_rate_per_year",
			Help:      "Most recent fitted sea-level rise rate, units per year.",
		}, []string{"station"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a complete analysis run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		LastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last analysis run finished.",
		}, []string{"station"}),
	}

	m.registry.MustRegister(
		m.FilesParsed,
		m.ReadingsParsed,
		m.ParseFailures,
		m.Flagged,
		m.RiseRate,
		m.RunDuration,
		m.LastRun,
		collectors.NewGoCollector(),
	)

	return m
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFiles records per-file parse statistics
func (m *Metrics) ObserveFiles(stats []gauge.FileStats) {
	for _, st := range stats {
		m.FilesParsed.Inc()
		m.ReadingsParsed.Add(float64(st.Rows))
		for flag, n := range st.Flags {
			m.Flagged.WithLabelValues("sea_level", flag).Add(float64(n))
		}
		if st.FlaggedResidual > 0 {
			m.Flagged.WithLabelValues("residual", "any").Add(float64(st.FlaggedResidual))
		}
	}
}

// ObserveRun records the outcome of a finished run
func (m *Metrics) ObserveRun(station string, risePerYear float64, took time.Duration, finished time.Time) {
	m.RiseRate.WithLabelValues(station).Set(risePerYear)
	m.RunDuration.Observe(took.Seconds())
	m.LastRun.WithLabelValues(station).Set(float64(finished.Unix()))
}

// ObserveStoredRun sets the per-station gauges from a run persisted by an
// earlier process. The run-duration histogram is left alone.
func (m *Metrics) ObserveStoredRun(station string, risePerYear float64, finished time.Time) {
	m.RiseRate.WithLabelValues(station).Set(risePerYear)
	m.LastRun.WithLabelValues(station).Set(float64(finished.Unix()))
}

// Push sends the registry to a Prometheus Pushgateway under job
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	err := push.New(url, job).
		Gatherer(m.registry).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}
