package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bobeautician/advisor/internal/observability"
)

// unmatchedRoute labels requests that no route matched, so raw paths never become labels.
const unmatchedRoute = "unmatched"

// Metrics records HTTP request count and duration. The route label is the chi route pattern
// (for example /api/products/{id}). A nil metrics disables recording.
// Mount it on the router (not around it) so the route context is populated.
func Metrics(metrics observability.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if metrics == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			metrics.RecordRequest(r.Context(), r.Method, routePattern(r), statusOrOK(ww.Status()), time.Since(start))
		})
	}
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}

	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}

	return unmatchedRoute
}

// statusOrOK treats "handler never called WriteHeader" as 200, like net/http does.
func statusOrOK(status int) int {
	if status == 0 {
		return http.StatusOK
	}

	return status
}
