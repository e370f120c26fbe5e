// Package response writes JSON bodies and RFC 7807 problem details.
package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"
)

// ErrorDetail represents a single error detail in RFC 7807 Problem Details
type ErrorDetail struct {
	Location string `json:"location,omitempty"`
	Message  string `json:"message,omitempty"`
	Value    any    `json:"value,omitempty"`
}

// ProblemDetails represents an RFC 7807 Problem Details error response
type ProblemDetails struct {
	Type     string        `json:"type,omitempty"`
	Title    string        `json:"title"`
	Status   int           `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Instance string        `json:"instance,omitempty"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
}

// RespondProblem writes problem as application/problem+json with its Status.
// An empty Type or Title is filled from the status code.
func RespondProblem(w http.ResponseWriter, problem ProblemDetails) {
	if problem.Type == "" {
		problem.Type = "about:blank"
	}

	if problem.Title == "" {
		problem.Title = http.StatusText(problem.Status)
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)

	if err := json.NewEncoder(w).Encode(problem); err != nil {
		slog.Error("Failed to encode error response", "error", err, "status", problem.Status)
	}
}

// RespondError writes an RFC 7807 Problem Details error response
func RespondError(w http.ResponseWriter, statusCode int, title string, detail string) {
	RespondProblem(w, ProblemDetails{Title: title, Status: statusCode, Detail: detail})
}

// RespondBadRequest writes a 400 Bad Request error response
func RespondBadRequest(w http.ResponseWriter, detail string) {
	RespondError(w, http.StatusBadRequest, "Bad Request", detail)
}

// RespondNotFound writes a 404 Not Found error response
func RespondNotFound(w http.ResponseWriter, detail string) {
	RespondError(w, http.StatusNotFound, "Not Found", detail)
}

// RespondPayloadTooLarge writes a 413 naming the body limit in bytes.
func RespondPayloadTooLarge(w http.ResponseWriter, limit int64) {
	RespondError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
		fmt.Sprintf("request body exceeds the %d byte limit", limit))
}

// RespondTooManyRequests writes a 429. A positive retryAfter is sent as Retry-After.
func RespondTooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	setRetryAfter(w, retryAfter)
	RespondError(w, http.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded, please retry later")
}

// RespondServiceUnavailable writes a 503. A positive retryAfter is sent as Retry-After.
func RespondServiceUnavailable(w http.ResponseWriter, detail string, retryAfter time.Duration) {
	setRetryAfter(w, retryAfter)
	RespondError(w, http.StatusServiceUnavailable, "Service Unavailable", detail)
}

// RespondInternalServerError writes a 500 Internal Server Error response
func RespondInternalServerError(w http.ResponseWriter, detail string) {
	RespondError(w, http.StatusInternalServerError, "Internal Server Error", detail)
}

// RespondJSON writes a JSON response directly without wrapping
func RespondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// Retry-After carries whole seconds, rounded up. A value already set upstream wins.
func setRetryAfter(w http.ResponseWriter, d time.Duration) {
	if d <= 0 || w.Header().Get("Retry-After") != "" {
		return
	}

	w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.Seconds()))))
}
