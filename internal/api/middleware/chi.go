package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/bobeautician/advisor/internal/api/response"
)

// CORSConfig configures cross-origin access for the browser frontend.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int // seconds
}

// CORS returns the go-chi/cors handler. Credentials are allowed, so origins must be explicit.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	})
}

// RateLimitedRecorder records requests rejected by the rate limiter.
type RateLimitedRecorder interface {
	RecordRateLimited(ctx context.Context)
}

// RateLimitByIP limits each client IP to requests per window. A non-positive requests value
// disables limiting. recorder may be nil.
func RateLimitByIP(requests int, window time.Duration, recorder RateLimitedRecorder) func(http.Handler) http.Handler {
	if requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if recorder != nil {
				recorder.RecordRateLimited(r.Context())
			}

			response.RespondTooManyRequests(w, window)
		}),
	)
}
