// Package metrics holds the Prometheus collectors of the reconciliation engine.
// HTTP request metrics live with the router in internal/httpapi.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cleepadm"

var (
	pushNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "push",
			Name:      "notifications_total",
			Help:      "Push notifications consumed, by kind",
		},
		[]string{"kind"},
	)

	lifecycleTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Lifecycle transitions applied, by operation and resulting phase",
		},
		[]string{"kind", "phase"},
	)

	reloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "reloads_total",
			Help:      "Configuration reloads, by scope and result",
		},
		[]string{"scope", "result"},
	)

	reloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "reload_duration_seconds",
			Help:      "Duration of configuration reloads in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"scope"},
	)

	togglesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rendering",
			Name:      "toggles_total",
			Help:      "Suppression toggles, by result",
		},
		[]string{"result"},
	)

	advisoryRaised = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "advisory",
			Name:      "raised",
			Help:      "1 when the advisory flag is raised",
		},
		[]string{"flag"},
	)
)

func init() {
	prometheus.MustRegister(
		pushNotificationsTotal,
		lifecycleTransitionsTotal,
		reloadsTotal,
		reloadDuration,
		togglesTotal,
		advisoryRaised,
	)
}

func PushNotification(kind string) {
	pushNotificationsTotal.WithLabelValues(kind).Inc()
}

func LifecycleTransition(kind, phase string) {
	lifecycleTransitionsTotal.WithLabelValues(kind, phase).Inc()
}

// Reload records one reload. err decides the result label.
func Reload(scope string, seconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	reloadsTotal.WithLabelValues(scope, result).Inc()
	reloadDuration.WithLabelValues(scope).Observe(seconds)
}

// Toggle records a suppression toggle: ok, rejected (ineligible) or error.
func Toggle(result string) {
	togglesTotal.WithLabelValues(result).Inc()
}

func Advisory(flag string, raised bool) {
	v := 0.0
	if raised {
		v = 1
	}
	advisoryRaised.WithLabelValues(flag).Set(v)
}
