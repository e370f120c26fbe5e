// Package observability provides OpenTelemetry metrics and tracing for the advisor API.
package observability

// Metric names (Prometheus / OpenTelemetry).
const (
	MetricNameHTTPRequests          = "advisor_http_requests_total"
	MetricNameHTTPDuration          = "advisor_http_request_duration_seconds"
	MetricNamePipelineRuns          = "advisor_pipeline_runs_total"
	MetricNamePipelineDuration      = "advisor_pipeline_duration_seconds"
	MetricNameRetrievalItems        = "advisor_retrieval_items"
	MetricNameRetrievalErrors       = "advisor_retrieval_errors_total"
	MetricNameConfidence            = "advisor_recommendation_confidence"
	MetricNameGenerations           = "advisor_generation_total"
	MetricNameGenerationDuration    = "advisor_generation_duration_seconds"
	MetricNameCacheLookups          = "advisor_cache_lookups_total"
	MetricNameCacheStores           = "advisor_cache_stores_total"
	MetricNameRequestBodyTooLarge   = "advisor_request_body_too_large_total"
	MetricNameRequestsRateLimited   = "advisor_requests_rate_limited_total"
	durationHistogramInstrumentGlob = "advisor_*_duration_seconds"
)

// Attribute keys.
const (
	AttrOutcome     = "outcome"
	AttrStage       = "stage"
	AttrModel       = "model"
	AttrCache       = "cache"
	AttrResult      = "result"
	AttrMethod      = "method"
	AttrRoute       = "route"
	AttrStatusClass = "status_class"
)

// Cache names used with CacheMetrics.
const (
	CacheProduct = "product"
	CacheIntake  = "intake"
)

// AllowedPipelineOutcomes for advisor_pipeline_runs_total.
var AllowedPipelineOutcomes = map[string]bool{
	"success":  true,
	"fallback": true,
	"manual":   true,
	"error":    true,
}

// AllowedRetrievalStages for advisor_retrieval_errors_total.
var AllowedRetrievalStages = map[string]bool{
	"skin_type":              true,
	"concern":                true,
	"beneficial_ingredients": true,
	"avoid_ingredients":      true,
	"general":                true,
}

// AllowedGenerationOutcomes for advisor_generation_total.
var AllowedGenerationOutcomes = map[string]bool{
	"success":      true,
	"no_api_key":   true,
	"network":      true,
	"unauthorized": true,
	"rate_limited": true,
	"http_error":   true,
	"empty":        true,
	"malformed":    true,
	"circuit_open": true,
	"canceled":     true,
}

// AllowedCacheNames for advisor_cache_lookups_total and advisor_cache_stores_total.
var AllowedCacheNames = map[string]bool{
	CacheProduct: true,
	CacheIntake:  true,
}

// NormalizeLabel returns v if allowed, otherwise "other".
func NormalizeLabel(v string, allowed map[string]bool) string {
	if allowed[v] {
		return v
	}

	return "other"
}

// NormalizeCacheName returns name if it is a known cache, otherwise "other".
func NormalizeCacheName(name string) string {
	return NormalizeLabel(name, AllowedCacheNames)
}

// StatusClass maps an HTTP status code to 1xx..5xx.
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	case status >= 100:
		return "1xx"
	default:
		return "unknown"
	}
}
