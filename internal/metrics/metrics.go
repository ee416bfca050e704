// Package metrics exposes Prometheus metrics for the HTTP surface and the
// parcel and payment operations.
//
// Every method is safe on a nil *Metrics so callers never need to check
// whether metrics are enabled.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parcel_server"

// Metrics owns a dedicated registry and the application collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	parcelOps    *prometheus.CounterVec
	paymentOps   *prometheus.CounterVec
	notifyOps    *prometheus.CounterVec
}

// New registers the application collectors plus the Go runtime and process
// collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		parcelOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parcel_operations_total",
			Help:      "Parcel store operations by operation and result.",
		}, []string{"operation", "result"}),
		paymentOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_intents_total",
			Help:      "Payment intent creations by result.",
		}, []string{"result"}),
		notifyOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parcel_notifications_total",
			Help:      "Parcel created notifications enqueued by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.parcelOps,
		m.paymentOps,
		m.notifyOps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveHTTP records one finished request. route is the matched route
// pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ParcelOperation records a parcel service call (list, get, create, delete).
func (m *Metrics) ParcelOperation(op string, err error) {
	if m == nil {
		return
	}
	m.parcelOps.WithLabelValues(op, result(err)).Inc()
}

// PaymentIntent records a payment intent creation.
func (m *Metrics) PaymentIntent(err error) {
	if m == nil {
		return
	}
	m.paymentOps.WithLabelValues(result(err)).Inc()
}

// Notification records a parcel-created enqueue attempt.
func (m *Metrics) Notification(err error) {
	if m == nil {
		return
	}
	m.notifyOps.WithLabelValues(result(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
