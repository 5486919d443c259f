// Package metrics exposes Prometheus instrumentation for snaps.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/1broseidon/snaptile/internal/platform"
)

// Failure reasons used for the reason label.
const (
	ReasonNoFocusedWindow     = "no_focused_window"
	ReasonNoScreen            = "no_screen"
	ReasonGeometryReadFailed  = "geometry_read_failed"
	ReasonGeometryWriteFailed = "geometry_write_failed"
	ReasonOther               = "other"
)

// Metrics holds the snap collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	snaps    *prometheus.CounterVec
	failures *prometheus.CounterVec
	tracked  prometheus.Gauge
	duration prometheus.Histogram
}

// New registers the snap collectors plus the Go and process collectors on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		snaps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snaptile_snaps_total",
			Help: "Windows moved, by hotkey direction (or place) and resulting position",
		}, []string{"direction", "position"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snaptile_snap_failures_total",
			Help: "Snaps aborted before the window was moved",
		}, []string{"reason"}),
		tracked: factory.NewGauge(prometheus.GaugeOpts{
			Name: "snaptile_tracked_windows",
			Help: "Window identities held in the cycle state",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "snaptile_snap_duration_seconds",
			Help:    "Time from hotkey to window geometry written",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}),
	}
}

// ObserveSnap records a successful snap.
func (m *Metrics) ObserveSnap(direction, position string, took time.Duration, tracked int) {
	if m == nil {
		return
	}
	m.snaps.WithLabelValues(direction, position).Inc()
	m.duration.Observe(took.Seconds())
	m.tracked.Set(float64(tracked))
}

// ObserveFailure records an aborted snap.
func (m *Metrics) ObserveFailure(err error) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(FailureReason(err)).Inc()
}

// FailureReason maps a backend error onto a reason label value.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, platform.ErrNoFocusedWindow):
		return ReasonNoFocusedWindow
	case errors.Is(err, platform.ErrNoScreen):
		return ReasonNoScreen
	case errors.Is(err, platform.ErrGeometryReadFailed):
		return ReasonGeometryReadFailed
	case errors.Is(err, platform.ErrGeometryWriteFailed):
		return ReasonGeometryWriteFailed
	default:
		return ReasonOther
	}
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
