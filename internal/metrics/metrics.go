package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch metrics
var (
	// CommandsTotal tracks dispatched commands by command name, invocation
	// shape, and outcome status.
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Dispatched commands by command, shape, and status",
		},
		[]string{"command", "shape", "status"},
	)

	// CommandDuration tracks end-to-end handler latency in seconds.
	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_command_duration_seconds",
			Help:    "Command handling duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"command"},
	)
)

// Store metrics
var (
	// StoreOpDuration tracks store transaction latency by logical operation.
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Store transaction duration in seconds by operation",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// StoreErrorsTotal tracks failed store transactions by operation.
	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Failed store transactions by operation",
		},
		[]string{"operation"},
	)
)

// Feature toggle metrics
var (
	// FeatureTogglesTotal tracks feature flag flips by feature and new state.
	FeatureTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feature_toggles_total",
			Help: "Feature flag transitions by feature and new state",
		},
		[]string{"feature", "state"},
	)
)

// Settings cache metrics
var (
	SettingsCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "settings_cache_hits_total",
			Help: "Tenant settings cache hits",
		},
	)

	SettingsCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "settings_cache_misses_total",
			Help: "Tenant settings cache misses",
		},
	)
)
