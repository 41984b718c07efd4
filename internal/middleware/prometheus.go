// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kz_http_requests_in_flight",
		Help: "HTTP requests currently being served.",
	})

	metricRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kz_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route, and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// PrometheusMetrics records per-request latency and in-flight counts. Routes
// are labeled with the chi pattern, not the raw path, to keep cardinality
// bounded.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metricRequestsInFlight.Inc()
		defer metricRequestsInFlight.Dec()

		start := time.Now()
		wrapper := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metricRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(wrapper.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

// statusResponseWriter captures the status code written by the handler.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
