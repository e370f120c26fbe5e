package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		allowed map[string]bool
		want    string
	}{
		{"known outcome", "fallback", AllowedPipelineOutcomes, "fallback"},
		{"unknown outcome", "exploded", AllowedPipelineOutcomes, "other"},
		{"empty outcome", "", AllowedPipelineOutcomes, "other"},
		{"known stage", "avoid_ingredients", AllowedRetrievalStages, "avoid_ingredients"},
		{"unknown stage", "vector", AllowedRetrievalStages, "other"},
		{"known generation outcome", "rate_limited", AllowedGenerationOutcomes, "rate_limited"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLabel(tt.input, tt.allowed))
		})
	}
}

func TestNormalizeCacheName(t *testing.T) {
	assert.Equal(t, CacheProduct, NormalizeCacheName("product"))
	assert.Equal(t, CacheIntake, NormalizeCacheName("intake"))
	assert.Equal(t, "other", NormalizeCacheName("webhook_list"))
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{429, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
		{0, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusClass(tt.status), "status %d", tt.status)
	}
}

func TestNewMetrics_NilMeter(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	p, err := NewPipelineMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestNewMeterProvider_ExposesRecordedMetrics(t *testing.T) {
	meter, handler, shutdown, err := NewMeterProvider("advisor-test")
	require.NoError(t, err)

	t.Cleanup(func() { _ = shutdown(context.Background()) })

	metrics, err := NewMetrics(meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	ctx := context.Background()
	metrics.Pipeline.RecordRun(ctx, "success", 120*time.Millisecond)
	metrics.Pipeline.RecordRetrievalError(ctx, "skin_type")
	metrics.Pipeline.RecordConfidence(ctx, 0.87)
	metrics.Generation.RecordGeneration(ctx, "model-a", "rate_limited", time.Second)
	metrics.Cache.RecordLookup(ctx, CacheProduct, false)
	metrics.Cache.RecordStore(ctx, CacheIntake)
	metrics.HTTP.RecordRequest(ctx, "POST", "/api/chat/ask", 200, 50*time.Millisecond)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "advisor_pipeline_runs_total")
	assert.Contains(t, body, `outcome="success"`)
	assert.Contains(t, body, `stage="skin_type"`)
	assert.Contains(t, body, "advisor_generation_total")
	assert.Contains(t, body, "advisor_cache_lookups_total")
	assert.Contains(t, body, `cache="product"`)
	assert.Contains(t, body, `result="miss"`)
	assert.Contains(t, body, "advisor_cache_stores_total")
	assert.Contains(t, body, `cache="intake"`)
	assert.Contains(t, body, `status_class="2xx"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLogger_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(&buf, "json", "info")
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-123")

	logger.InfoContext(ctx, "hello")
	logger.DebugContext(ctx, "dropped")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "req-123", record["request_id"])
}

func TestParseTraceIDRatio(t *testing.T) {
	assert.InDelta(t, 0.25, parseTraceIDRatio("0.25"), 1e-9)
	assert.InDelta(t, defaultTraceIDRatio, parseTraceIDRatio(""), 1e-9)
	assert.InDelta(t, defaultTraceIDRatio, parseTraceIDRatio("2"), 1e-9)
	assert.InDelta(t, defaultTraceIDRatio, parseTraceIDRatio("abc"), 1e-9)
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), "", "")
	require.NoError(t, err)
	assert.Nil(t, tp)
	assert.NoError(t, ShutdownTracerProvider(context.Background(), tp))
}
