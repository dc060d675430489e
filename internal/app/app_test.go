package app

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunal1274/fms-dev-sub000/internal/documents"
	"github.com/kunal1274/fms-dev-sub000/internal/gateway"
	"github.com/kunal1274/fms-dev-sub000/internal/listing"
	"github.com/kunal1274/fms-dev-sub000/internal/observability"
	_ "github.com/kunal1274/fms-dev-sub000/internal/testing/guard"
	"github.com/kunal1274/fms-dev-sub000/jobs"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:4000/api")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 8, cfg.BulkDeleteConcurrency)
	assert.Equal(t, "*/15 * * * *", cfg.WarmCron)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("API_BASE_URL", "not a url")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsZeroConcurrency(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:4000/api")
	t.Setenv("BULK_DELETE_CONCURRENCY", "0")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestInTestMode(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())
	t.Setenv(testModeEnv, "true")
	RefreshTestMode()
	assert.True(t, InTestMode())
	t.Setenv(testModeEnv, "")
	RefreshTestMode()
	assert.False(t, InTestMode())
}

type backendCalls struct {
	mu         sync.Mutex
	requestIDs []string
}

func newTestRouter(t *testing.T) (http.Handler, *backendCalls) {
	t.Helper()
	calls := &backendCalls{}
	backend := chi.NewRouter()
	backend.Get("/api/companies", func(w http.ResponseWriter, r *http.Request) {
		calls.mu.Lock()
		calls.requestIDs = append(calls.requestIDs, r.Header.Get("X-Request-ID"))
		calls.mu.Unlock()
		_, _ = w.Write([]byte(`[{"_id":"1","companyName":"Acme","companyCode":"A1","active":true}]`))
	})
	backend.Get("/api/companies/metrics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"metrics":[{"totalCompanies":1}]}`))
	})
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := &Config{AppEnv: "test", APIBaseURL: srv.URL + "/api", BulkDeleteConcurrency: 2, RateLimit: 1000}
	metrics := observability.NewMetrics()
	client, err := gateway.NewClient(gateway.Config{BaseURL: cfg.APIBaseURL, BulkConcurrency: cfg.BulkDeleteConcurrency, Observer: metrics, Logger: discardLogger()})
	require.NoError(t, err)
	service := listing.NewService(client, nil, nil, discardLogger())

	router := NewRouter(RouterParams{
		Logger:           discardLogger(),
		Config:           cfg,
		ListingHandler:   listing.NewHandler(service, nil, discardLogger()),
		DocumentsHandler: documents.NewHandler(discardLogger()),
		JobHandler:       jobs.NewHandler(nil, discardLogger()),
		Metrics:          metrics,
	})
	return router, calls
}

func TestRouterHealthz(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestRouterPropagatesRequestID(t *testing.T) {
	router, calls := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "req-123", rr.Header().Get("X-Request-Id"))
	calls.mu.Lock()
	defer calls.mu.Unlock()
	assert.Equal(t, []string{"req-123"}, calls.requestIDs)

	var view listing.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "Acme", view.Rows[0].Name)
}

func TestRouterMountsDocumentsBeforeListing(t *testing.T) {
	router, _ := newTestRouter(t)
	body := `{"lines":[{"quantity":1,"unitPrice":10,"taxRate":10}]}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/documents/invoice/totals", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestRouterMetricsAndJobs(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/companies", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `fms_upstream_requests_total{code="200",kind="company",op="list"} 1`)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouterNotFoundIsProblem(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/problem+json")
}

func TestNewLoggerFormatAndLevel(t *testing.T) {
	var buf strings.Builder
	logger := newLogger(&buf, &Config{AppEnv: "staging", LogFormat: "json", LogLevel: "warn"})
	logger.Info("hidden")
	logger.Warn("shown", slog.String("kind", "company"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "staging", entry["env"])
	assert.Equal(t, "company", entry["kind"])
}
