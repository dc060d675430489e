package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, metrics *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsHandlerExposesJobMetrics(t *testing.T) {
	metrics := NewMetrics()
	_ = metrics.Jobs().Track("records:warm").End(nil)
	_ = metrics.Jobs().Track("records:warm").End(errors.New("boom"))
	metrics.Jobs().AddWarmed("company")

	body := scrape(t, metrics)
	if !strings.Contains(body, `fms_jobs_total{job="records:warm",status="success"} 1`) {
		t.Fatalf("expected body to contain fms_jobs_total, got: %s", body)
	}
	if !strings.Contains(body, `fms_jobs_failures_total{job="records:warm"} 1`) {
		t.Fatalf("expected failure counter, got: %s", body)
	}
	if !strings.Contains(body, `fms_cache_warms_total{kind="company"} 1`) {
		t.Fatalf("expected warm counter, got: %s", body)
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	metricsBody := scrape(t, metrics)
	if !strings.Contains(metricsBody, "http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", metricsBody)
	}
	if !strings.Contains(metricsBody, "http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", metricsBody)
	}
}

func TestObserveUpstream(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveUpstream("company", "list", http.StatusOK, 20*time.Millisecond)
	metrics.ObserveUpstream("company", "delete", 0, time.Second)

	body := scrape(t, metrics)
	if !strings.Contains(body, `fms_upstream_requests_total{code="200",kind="company",op="list"} 1`) {
		t.Fatalf("expected upstream counter, got: %s", body)
	}
	if !strings.Contains(body, `fms_upstream_requests_total{code="error",kind="company",op="delete"} 1`) {
		t.Fatalf("expected transport error counter, got: %s", body)
	}
	if !strings.Contains(body, `fms_upstream_request_duration_seconds_count{kind="company",op="list"} 1`) {
		t.Fatalf("expected upstream histogram, got: %s", body)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveUpstream("company", "list", 200, time.Millisecond)
	if metrics.Jobs() != nil {
		t.Fatal("expected nil job metrics")
	}
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
