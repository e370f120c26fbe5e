package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/bobeautician/advisor/internal/api/response"
)

// InternalErrorDetail is the problem detail sent for unexpected failures.
const InternalErrorDetail = "I'm sorry, I'm having trouble processing your request. Please try again."

// Recover turns a handler panic into a 500 problem response and logs the stack.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			if rec == http.ErrAbortHandler { //nolint:errorlint,err113 // sentinel compared by identity
				panic(rec)
			}

			slog.ErrorContext(r.Context(), "handler panic",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			response.RespondInternalServerError(w, InternalErrorDetail)
		}()

		next.ServeHTTP(w, r)
	})
}
