// Package metrics instruments the four core lifecycle phases (build,
// set-constants, update, solve) plus resolver and cut-pool activity
// with Prometheus collectors, the way the teacher repo instruments
// its gRPC handlers and solve operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the container of every collector TuLiPa registers.
type Metrics struct {
	// Lifecycle phases
	ResolveDuration      prometheus.Histogram
	BuildDuration        *prometheus.HistogramVec
	SetConstantsDuration *prometheus.HistogramVec
	UpdateDuration       *prometheus.HistogramVec
	SolveDuration        *prometheus.HistogramVec
	SolveOperationsTotal *prometheus.CounterVec

	// Resolver
	ResolverPassesTotal    prometheus.Counter
	ResolverElementsLoaded prometheus.Gauge

	// Horizons
	AdaptiveReclusterTotal *prometheus.CounterVec
	ShrinkResetTotal       *prometheus.CounterVec

	// Cut pool
	CutPoolWraparoundsTotal *prometheus.CounterVec
	CutPoolActiveRows       *prometheus.GaugeVec

	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics creates and registers a fresh Metrics container.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		ResolveDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resolve_duration_seconds",
				Help:      "Duration of the data-element resolver fixed-point pass.",
				Buckets:   []float64{.001, .01, .05, .1, .5, 1, 5, 10, 30},
			},
		),

		BuildDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "build_duration_seconds",
				Help:      "Duration of the LP build phase, by object kind.",
				Buckets:   []float64{.0001, .001, .01, .1, 1, 5},
			},
			[]string{"object_kind"},
		),

		SetConstantsDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "set_constants_duration_seconds",
				Help:      "Duration of the set-constants phase, by object kind.",
				Buckets:   []float64{.0001, .001, .01, .1, 1, 5},
			},
			[]string{"object_kind"},
		),

		UpdateDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "update_duration_seconds",
				Help:      "Duration of a problem-time update, by object kind.",
				Buckets:   []float64{.0001, .001, .01, .1, 1, 5},
			},
			[]string{"object_kind"},
		),

		SolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Duration of solve operations, by backend adapter.",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
			},
			[]string{"backend"},
		),

		SolveOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_operations_total",
				Help:      "Total number of solve operations, by backend and status.",
			},
			[]string{"backend", "status"},
		),

		ResolverPassesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resolver_passes_total",
				Help:      "Total number of fixed-point passes the resolver performed.",
			},
		),

		ResolverElementsLoaded: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resolver_elements_loaded",
				Help:      "Number of data elements successfully loaded in the last resolution.",
			},
		),

		AdaptiveReclusterTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "adaptive_horizon_recluster_total",
				Help:      "Number of k-means re-clustering passes performed by adaptive horizons.",
			},
			[]string{"horizon"},
		),

		ShrinkResetTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "shrinkable_horizon_reset_total",
				Help:      "Number of resets performed by shrinkable horizons, by reset kind.",
			},
			[]string{"horizon", "kind"},
		),

		CutPoolWraparoundsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cut_pool_wraparounds_total",
				Help:      "Number of times a cut pool's ring buffer wrapped around to row 0.",
			},
			[]string{"pool"},
		),

		CutPoolActiveRows: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cut_pool_active_rows",
				Help:      "Number of currently-active cut rows in a cut pool.",
			},
			[]string{"pool"},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "build_info",
				Help:      "Static build information.",
			},
			[]string{"version"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the package-global Metrics, initializing defaults on first use.
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("tulipa", "core")
	}
	return defaultMetrics
}

// RecordSolve records one solve operation's outcome and duration.
func (m *Metrics) RecordSolve(backend string, success bool, duration time.Duration) {
	status := "optimal"
	if !success {
		status = "failure"
	}
	m.SolveOperationsTotal.WithLabelValues(backend, status).Inc()
	m.SolveDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// RecordCutPoolWraparound records one ring-buffer wraparound for the named pool.
func (m *Metrics) RecordCutPoolWraparound(pool string) {
	m.CutPoolWraparoundsTotal.WithLabelValues(pool).Inc()
}

// SetCutPoolActiveRows sets the current active-row gauge for the named pool.
func (m *Metrics) SetCutPoolActiveRows(pool string, n int) {
	m.CutPoolActiveRows.WithLabelValues(pool).Set(float64(n))
}

// SetServiceInfo stamps a static build_info gauge with the embedding application's version.
func (m *Metrics) SetServiceInfo(version string) {
	m.ServiceInfo.WithLabelValues(version).Set(1)
}

// Handler returns the http.Handler serving the registered collectors;
// callers that already run an HTTP server mount this at /metrics
// themselves — TuLiPa does not own a listener (it is a library, per
// spec.md §6).
func Handler() http.Handler {
	return promhttp.Handler()
}
