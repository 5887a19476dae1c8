// Package metrics exposes Prometheus instruments for the polling loop.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

const namespace = "argo_signal"

// Error kinds recorded by ObserveError.
const (
	ErrorKindDataUnavailable = "data_unavailable"
	ErrorKindEvaluation      = "evaluation"
	ErrorKindPanic           = "panic"
	ErrorKindJournal         = "journal"
)

// Metrics holds the instruments of one engine instance on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	cycles           prometheus.Counter
	signals          *prometheus.CounterVec
	errors           *prometheus.CounterVec
	deliveryFailures *prometheus.CounterVec
	cycleDuration    prometheus.Histogram
	snapshotDuration *prometheus.HistogramVec
	lastCycle        prometheus.Gauge
}

// New creates and registers all instruments.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed polling cycles",
		}),
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_total",
			Help:      "Candidate signals by outcome",
		}, []string{"symbol", "strategy", "direction", "outcome"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instrument_errors_total",
			Help:      "Per-instrument failures by kind",
		}, []string{"symbol", "kind"}),
		deliveryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Notifications the channel rejected",
		}, []string{"symbol"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one polling cycle",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		snapshotDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Wall time to build one market snapshot",
			Buckets:   prometheus.DefBuckets,
		}, []string{"symbol"}),
		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time the last polling cycle finished",
		}),
	}

	m.registry.MustRegister(
		m.cycles,
		m.signals,
		m.errors,
		m.deliveryFailures,
		m.cycleDuration,
		m.snapshotDuration,
		m.lastCycle,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry the instruments live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveCycle records a finished polling cycle.
func (m *Metrics) ObserveCycle(duration time.Duration, finishedAt time.Time) {
	if m == nil {
		return
	}

	m.cycles.Inc()
	m.cycleDuration.Observe(duration.Seconds())
	m.lastCycle.Set(float64(finishedAt.Unix()))
}

// ObserveSnapshot records how long one snapshot took to build.
func (m *Metrics) ObserveSnapshot(symbol string, duration time.Duration) {
	if m == nil {
		return
	}

	m.snapshotDuration.WithLabelValues(symbol).Observe(duration.Seconds())
}

// ObserveSignal counts a candidate signal under its outcome.
func (m *Metrics) ObserveSignal(signal types.Signal, outcome types.SignalOutcome) {
	if m == nil {
		return
	}

	m.signals.WithLabelValues(signal.Symbol, string(signal.Strategy), string(signal.Direction), string(outcome)).Inc()

	if outcome == types.SignalOutcomeDeliveryFailed {
		m.deliveryFailures.WithLabelValues(signal.Symbol).Inc()
	}
}

// ObserveError counts a per-instrument failure.
func (m *Metrics) ObserveError(symbol, kind string) {
	if m == nil {
		return
	}

	m.errors.WithLabelValues(symbol, kind).Inc()
}
