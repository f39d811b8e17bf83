// Package metrics exposes Prometheus instrumentation for the guardian
// service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/familyguardian/guardian/internal/core"
)

const namespace = "guardian"

// Metrics holds every collector on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Lifecycle
	eventsTotal         *prometheus.CounterVec
	alertsCreatedTotal  *prometheus.CounterVec
	actionsTotal        *prometheus.CounterVec
	contactsBlocked     prometheus.Counter
	openAlerts          *prometheus.GaugeVec
	digestRunsTotal     prometheus.Counter
	digestLastSuccessTs prometheus.Gauge
}

// New creates a metrics set registered on its own registry, including
// Go runtime and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		eventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Events submitted for screening, by type",
			},
			[]string{"type"},
		),
		alertsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_created_total",
				Help:      "Alerts recorded, by type",
			},
			[]string{"type"},
		),
		actionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alert_actions_total",
				Help:      "Family actions applied to alerts",
			},
			[]string{"action"},
		),
		contactsBlocked: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contacts_blocked_total",
				Help:      "Phone numbers added to the blocked list",
			},
		),
		openAlerts: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "open_alerts",
				Help:      "Unresolved alerts at the last digest, by status",
			},
			[]string{"status"},
		),
		digestRunsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "digest_runs_total",
				Help:      "Completed digest runs",
			},
		),
		digestLastSuccessTs: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "digest_last_success_timestamp_seconds",
				Help:      "Unix time of the last successful digest",
			},
		),
	}
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency per chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// EventReceived counts a submitted event
func (m *Metrics) EventReceived(t core.AlertType) {
	m.eventsTotal.WithLabelValues(string(t)).Inc()
}

// AlertCreated counts a recorded alert
func (m *Metrics) AlertCreated(a *core.Alert) {
	m.alertsCreatedTotal.WithLabelValues(string(a.Type)).Inc()
}

// ActionApplied counts a resolved alert
func (m *Metrics) ActionApplied(action core.Action) {
	m.actionsTotal.WithLabelValues(string(action)).Inc()
}

// ContactBlocked counts a blocked phone number
func (m *Metrics) ContactBlocked() {
	m.contactsBlocked.Inc()
}

// SetOpenAlerts publishes the current pending and emergency counts
func (m *Metrics) SetOpenAlerts(pending, emergency int) {
	m.openAlerts.WithLabelValues(string(core.StatusPending)).Set(float64(pending))
	m.openAlerts.WithLabelValues(string(core.StatusEmergency)).Set(float64(emergency))
}

// DigestCompleted records a successful digest run
func (m *Metrics) DigestCompleted(at time.Time) {
	m.digestRunsTotal.Inc()
	m.digestLastSuccessTs.Set(float64(at.Unix()))
}
