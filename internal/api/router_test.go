package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kiranshivaraju/gamescout/internal/api"
	mw "github.com/kiranshivaraju/gamescout/internal/api/middleware"
	"github.com/kiranshivaraju/gamescout/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- stub cache that counts every request against one budget ---

type stubCache struct {
	count int64
}

func (c *stubCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *stubCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (c *stubCache) Delete(_ context.Context, _ ...string) error                      { return nil }
func (c *stubCache) Ping(_ context.Context) error                                     { return nil }
func (c *stubCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	c.count++
	return c.count, nil
}

var _ cache.Cache = (*stubCache)(nil)

func okJSON(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func newTestRouter(rl *mw.RateLimit) http.Handler {
	return api.NewRouter(api.Dependencies{
		RateLimit:              rl,
		HealthHandler:          okJSON,
		CreateJobHandler:       okJSON,
		GetJobHandler:          okJSON,
		ListSuggestionsHandler: okJSON,
	})
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(nil)

	endpoints := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/health"},
		{"POST", "/api/v1/jobs"},
		{"GET", "/api/v1/jobs/3f2c6a8e-7a52-4c44-9a55-0f7f7b0e2a11"},
		{"GET", "/api/v1/games/620/suggestions"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestRouter_UnwiredHandlerIsNotImplemented(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest("PUT", "/api/v1/games/620", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_IMPLEMENTED", body["error"].(map[string]any)["code"])
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRouter_RateLimitSkipsOperationalEndpoints(t *testing.T) {
	router := newTestRouter(mw.NewRateLimit(&stubCache{}, 1))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/jobs", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/jobs", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRouter_RecoversPanics(t *testing.T) {
	router := api.NewRouter(api.Dependencies{
		HealthHandler: func(http.ResponseWriter, *http.Request) { panic("boom") },
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/health", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
