package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/kiranshivaraju/gamescout/internal/api/middleware"
	"github.com/kiranshivaraju/gamescout/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit // nil disables rate limiting

	HealthHandler          http.HandlerFunc
	CreateJobHandler       http.HandlerFunc
	GetJobHandler          http.HandlerFunc
	ListSuggestionsHandler http.HandlerFunc
	PutGameHandler         http.HandlerFunc

	// MetricsHandler defaults to the Prometheus default registry.
	MetricsHandler http.Handler
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Operational endpoints stay outside the rate limit.
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	metrics := deps.MetricsHandler
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metrics)

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/jobs", orNotImplemented(deps.CreateJobHandler))
		r.Get("/api/v1/jobs/{jobID}", orNotImplemented(deps.GetJobHandler))

		r.Get("/api/v1/games/{appID}/suggestions", orNotImplemented(deps.ListSuggestionsHandler))
		r.Put("/api/v1/games/{appID}", orNotImplemented(deps.PutGameHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
