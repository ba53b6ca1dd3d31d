// Package metrics holds the Prometheus collectors for prefsync.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prefsync",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of backend API requests issued.",
		},
		[]string{"method", "endpoint", "status"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "prefsync",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "endpoint"},
	)

	syncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prefsync",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Total number of preference syncs by trigger and result.",
		},
		[]string{"trigger", "result"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prefsync",
			Subsystem: "notify",
			Name:      "messages_total",
			Help:      "Notifications shown to the user by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		apiRequests,
		apiDuration,
		syncRuns,
		notifications,
	)
}

// Handler exposes the registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordRequest captures one backend API call. status is 0 for transport failures.
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	apiRequests.WithLabelValues(method, endpoint, code).Inc()
	apiDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordSync counts a sync run.
func RecordSync(trigger string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	syncRuns.WithLabelValues(trigger, result).Inc()
}

// RecordNotification counts a non-empty notification.
func RecordNotification(kind string) {
	notifications.WithLabelValues(kind).Inc()
}
