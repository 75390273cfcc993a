// Where: internal/server/metrics.go
// What: Prometheus instrumentation for the webhook server.
// Why: Delivery and trigger rates are the first thing to check when alerts go quiet.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "tvwb"

// Metrics bundles the server's collectors on a private registry, so
// tests can build servers side by side without collisions.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	deliveries   prometheus.Counter
	triggers     *prometheus.CounterVec
	actionRuns   *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "webhook_deliveries_total",
			Help:      "Webhook payloads accepted for processing.",
		}),
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "event_triggers_total",
			Help:      "Event triggers by event name.",
		}, []string{"event"}),
		actionRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "action_runs_total",
			Help:      "Action runs by action name and outcome.",
		}, []string{"action", "outcome"}),
	}
	m.registry.MustRegister(m.httpRequests, m.httpDuration, m.deliveries, m.triggers, m.actionRuns)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) countDelivery() {
	m.deliveries.Inc()
}

func (m *Metrics) countTrigger(event string) {
	m.triggers.WithLabelValues(event).Inc()
}

func (m *Metrics) countActionRun(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.actionRuns.WithLabelValues(action, outcome).Inc()
}
