// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the token lifecycle.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gophauth"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	lifecycleTotal  *prometheus.CounterVec
	lifecycleTime   *prometheus.HistogramVec
	sweptTotal      prometheus.Counter
}

// New registers all collectors, including the Go runtime and process ones.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	lifecycleTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_lifecycle_total",
		Help:      "Token lifecycle calls by operation and outcome",
	}, []string{"operation", "outcome"})

	lifecycleTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "token_lifecycle_duration_seconds",
		Help:      "Duration of token lifecycle calls",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	sweptTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_tokens_swept_total",
		Help:      "Expired refresh tokens removed by the sweep",
	})

	registry.MustRegister(
		requestDuration, requestTotal, lifecycleTotal, lifecycleTime, sweptTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		lifecycleTotal:  lifecycleTotal,
		lifecycleTime:   lifecycleTime,
		sweptTotal:      sweptTotal,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
}

// ObserveLifecycle records one register/login/refresh/logout/sweep call.
func (m *Metrics) ObserveLifecycle(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.lifecycleTotal.WithLabelValues(operation, outcome).Inc()
	m.lifecycleTime.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// AddSwept counts rows removed by a sweep.
func (m *Metrics) AddSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sweptTotal.Add(float64(n))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
