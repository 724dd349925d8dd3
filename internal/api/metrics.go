package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exposed by this daemon's
// /metrics endpoint. Scoped down from the teacher's namespace-wide
// Metrics struct to just what a single mount daemon instance reports.
type Metrics struct {
	PulsesEmitted     *prometheus.CounterVec
	ActivityDurations *prometheus.HistogramVec
	AxisPosition      *prometheus.GaugeVec
	AxisVelocity      *prometheus.GaugeVec
	TrackGoalChanges  prometheus.Counter
	CoordinatorFaults prometheus.Counter
}

// NewMetrics registers a fresh set of collectors against reg. Tests
// should pass a private prometheus.NewRegistry() rather than the global
// default registry, since promauto panics on repeated registration of
// the same metric name.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PulsesEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skywatch",
			Subsystem: "axis",
			Name:      "pulses_emitted_total",
			Help:      "Total step pulses emitted, by axis and direction.",
		}, []string{"axis", "direction"}),
		ActivityDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "skywatch",
			Subsystem: "axis",
			Name:      "activity_duration_seconds",
			Help:      "Wall-clock duration of completed axis activities.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"axis", "status"}),
		AxisPosition: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "skywatch",
			Subsystem: "axis",
			Name:      "position_steps",
			Help:      "Current raw step position, by axis.",
		}, []string{"axis"}),
		AxisVelocity: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "skywatch",
			Subsystem: "axis",
			Name:      "velocity_steps_per_second",
			Help:      "Current commanded velocity, by axis.",
		}, []string{"axis"}),
		TrackGoalChanges: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "skywatch",
			Subsystem: "coordinator",
			Name:      "track_goal_changes_total",
			Help:      "Total number of times the coordinator's tracked target changed.",
		}),
		CoordinatorFaults: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "skywatch",
			Subsystem: "coordinator",
			Name:      "faults_total",
			Help:      "Total number of fatal coordinator faults (e.g. an unsolvable intercept) reported.",
		}),
	}
}
