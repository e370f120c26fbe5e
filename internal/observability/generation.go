package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// GenerationMetrics records completion-service call outcomes per model.
// The model label is bounded by the configured model list.
type GenerationMetrics interface {
	RecordGeneration(ctx context.Context, model, outcome string, duration time.Duration)
}

type generationMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewGenerationMetrics creates GenerationMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewGenerationMetrics(meter metric.Meter) (GenerationMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	calls, err := meter.Int64Counter(
		MetricNameGenerations,
		metric.WithDescription("Completion attempts by model and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create generation counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		MetricNameGenerationDuration,
		metric.WithDescription("Completion attempt duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create generation duration histogram: %w", err)
	}

	return &generationMetrics{calls: calls, duration: duration}, nil
}

func (g *generationMetrics) RecordGeneration(ctx context.Context, model, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrModel, model),
		attribute.String(AttrOutcome, NormalizeLabel(outcome, AllowedGenerationOutcomes)),
	)
	g.calls.Add(ctx, 1, attrs)
	g.duration.Record(ctx, duration.Seconds(), attrs)
}
