// Package metrics provides Prometheus metrics for shape compilation runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "semshape"

// Collector holds the Prometheus metrics for compilation runs. A nil
// *Collector is valid and records nothing.
type Collector struct {
	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec

	// Output metrics
	Shapes     prometheus.Gauge
	Properties prometheus.Gauge
	Modules    prometheus.Gauge

	// Publish metrics
	PublishErrors prometheus.Counter

	// Watch metrics
	WatchEvents prometheus.Counter
	LastSuccess prometheus.Gauge
}

// New creates a collector with all metrics registered on reg. A nil reg
// creates unregistered metrics.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of compilation runs by mode and result",
			},
			[]string{"mode", "result"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Compilation run duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"mode"},
		),

		Shapes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "shapes",
				Help:      "Number of node shapes in the last successful run",
			},
		),
		Properties: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "property_shapes",
				Help:      "Number of property shapes in the last successful run",
			},
		),
		Modules: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "modules",
				Help:      "Number of ontology modules in the last successful run",
			},
		),

		PublishErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publish_errors_total",
				Help:      "Total number of failed shape graph publications",
			},
		),

		WatchEvents: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "watch_events_total",
				Help:      "Total number of debounced ontology change events",
			},
		),
		LastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful run",
			},
		),
	}
}

// RunStats summarizes a successful run.
type RunStats struct {
	Modules    int
	Shapes     int
	Properties int
}

// RecordSuccess records a successful run.
func (c *Collector) RecordSuccess(mode string, duration time.Duration, stats RunStats) {
	if c == nil {
		return
	}
	c.RunsTotal.WithLabelValues(mode, "success").Inc()
	c.RunDuration.WithLabelValues(mode).Observe(duration.Seconds())
	c.Modules.Set(float64(stats.Modules))
	c.Shapes.Set(float64(stats.Shapes))
	c.Properties.Set(float64(stats.Properties))
	c.LastSuccess.SetToCurrentTime()
}

// RecordFailure records a failed run. The mode may be empty when loading
// failed before the mode was known.
func (c *Collector) RecordFailure(mode string, duration time.Duration) {
	if c == nil {
		return
	}
	if mode == "" {
		mode = "unknown"
	}
	c.RunsTotal.WithLabelValues(mode, "failure").Inc()
	c.RunDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordPublishError records a failed publication.
func (c *Collector) RecordPublishError() {
	if c == nil {
		return
	}
	c.PublishErrors.Inc()
}

// RecordWatchEvent records a debounced change event.
func (c *Collector) RecordWatchEvent() {
	if c == nil {
		return
	}
	c.WatchEvents.Inc()
}
