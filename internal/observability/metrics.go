package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	prometheusexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	meterScope       = "github.com/bobeautician/advisor/internal/observability"
	cardinalityLimit = 2000
)

// durationHistogramBounds are second-based buckets; a completion call can take tens of seconds.
var durationHistogramBounds = []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30}

// confidenceHistogramBounds cover the [0, 1] confidence range.
var confidenceHistogramBounds = []float64{0, 0.2, 0.4, 0.6, 0.7, 0.8, 0.9, 1}

// ShutdownFunc flushes and stops a provider.
type ShutdownFunc func(ctx context.Context) error

// NewMeterProvider creates a MeterProvider backed by a Prometheus exporter on its own registry.
// It returns the meter to build instruments from, the /metrics handler and a shutdown func.
func NewMeterProvider(serviceName string) (metric.Meter, http.Handler, ShutdownFunc, error) {
	res, err := newResource(serviceName)
	if err != nil {
		return nil, nil, nil, err
	}

	reg := prometheus.NewRegistry()

	exporter, err := prometheusexporter.New(prometheusexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
		sdkmetric.WithCardinalityLimit(cardinalityLimit),
		sdkmetric.WithView(
			sdkmetric.NewView(
				sdkmetric.Instrument{Name: durationHistogramInstrumentGlob},
				sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: durationHistogramBounds}},
			),
			sdkmetric.NewView(
				sdkmetric.Instrument{Name: MetricNameConfidence},
				sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: confidenceHistogramBounds}},
			),
		),
	)

	shutdown := func(ctx context.Context) error {
		if err := mp.Shutdown(ctx); err != nil {
			return fmt.Errorf("meter provider shutdown: %w", err)
		}

		return nil
	}

	return mp.Meter(meterScope), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), shutdown, nil
}

// HTTPMetrics records request count and duration per route.
type HTTPMetrics interface {
	RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewHTTPMetrics creates HTTPMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewHTTPMetrics(meter metric.Meter) (HTTPMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	requests, err := meter.Int64Counter(
		MetricNameHTTPRequests,
		metric.WithDescription("Total HTTP requests by method, route and status class"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http requests counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		MetricNameHTTPDuration,
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http duration histogram: %w", err)
	}

	return &httpMetrics{requests: requests, duration: duration}, nil
}

func (m *httpMetrics) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	m.requests.Add(ctx, 1, metric.WithAttributeSet(attribute.NewSet(
		attribute.String(AttrMethod, method),
		attribute.String(AttrRoute, route),
		attribute.String(AttrStatusClass, StatusClass(status)),
	)))
	m.duration.Record(ctx, duration.Seconds(), metric.WithAttributeSet(attribute.NewSet(
		attribute.String(AttrMethod, method),
		attribute.String(AttrRoute, route),
	)))
}
