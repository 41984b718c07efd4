// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPrometheusMetricsRecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/maps/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/maps/kz_grotto", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}

	metric := findHistogram(t, "kz_http_request_duration_seconds", map[string]string{
		"method": http.MethodGet,
		"route":  "/maps/{name}",
		"status": "418",
	})
	if got := metric.GetHistogram().GetSampleCount(); got < 1 {
		t.Fatalf("sample count = %d, want at least 1", got)
	}
}

func TestPrometheusMetricsUnroutedRequest(t *testing.T) {
	h := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anywhere", nil))

	metric := findHistogram(t, "kz_http_request_duration_seconds", map[string]string{
		"method": http.MethodGet,
		"route":  "unmatched",
		"status": "204",
	})
	if got := metric.GetHistogram().GetSampleCount(); got < 1 {
		t.Fatalf("sample count = %d, want at least 1", got)
	}
}

// findHistogram gathers the default registry and returns the metric matching
// name and labels.
func findHistogram(t *testing.T, name string, labels map[string]string) *dto.Metric {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range family.GetMetric() {
			seen := make(map[string]string, len(metric.GetLabel()))
			for _, pair := range metric.GetLabel() {
				seen[pair.GetName()] = pair.GetValue()
			}
			for k, v := range labels {
				if seen[k] != v {
					continue metrics
				}
			}
			return metric
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return nil
}
