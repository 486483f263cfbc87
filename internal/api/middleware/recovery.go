package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"

	"github.com/kiranshivaraju/gamescout/internal/api/response"
	"github.com/kiranshivaraju/gamescout/internal/metrics"
)

// Recovery turns a handler panic into a 500 envelope, logged with the
// request's logger and counted per route. http.ErrAbortHandler is re-raised
// so net/http can drop the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			route := routePattern(r)
			metrics.HTTPPanics.WithLabelValues(route).Inc()
			LoggerFrom(r.Context()).Error("handler panicked",
				"panic", rec,
				"route", route,
				"method", r.Method,
				"stack", string(debug.Stack()),
			)
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "An unexpected error occurred", nil)
		}()
		next.ServeHTTP(w, r)
	})
}

// routePattern keeps the metric label set bounded; raw paths carry ids.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
