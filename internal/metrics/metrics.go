// Package metrics exposes Prometheus instrumentation for the signal
// pipeline. Counters are auto-registered via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SignalsProcessed counts signal observations fed through the pipeline
	SignalsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_monitor_signals_processed_total",
			Help: "Total number of signal observations processed",
		},
		[]string{"symbol"},
	)

	// SignalsRejected counts observations rejected by validation
	SignalsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signal_monitor_signals_rejected_total",
			Help: "Total number of signal observations rejected by validation",
		},
	)

	// ChangesDetected counts classified changes by type
	ChangesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_monitor_changes_detected_total",
			Help: "Total number of classified signal changes",
		},
		[]string{"change_type", "impact_level"},
	)

	// RuleMatches counts rule firings
	RuleMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_monitor_rule_matches_total",
			Help: "Total number of rule matches against classified changes",
		},
		[]string{"rule_id"},
	)

	// AlertsCreated counts alerts raised by the rule engine
	AlertsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_monitor_alerts_created_total",
			Help: "Total number of alerts created",
		},
		[]string{"type"},
	)

	// CollaboratorFailures counts swallowed side-effect failures
	CollaboratorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_monitor_collaborator_failures_total",
			Help: "Total number of notification/audit/fetch failures (logged and swallowed)",
		},
		[]string{"collaborator"},
	)

	// TickDuration observes monitoring loop tick durations
	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signal_monitor_tick_duration_seconds",
			Help:    "Duration of monitoring loop ticks in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
