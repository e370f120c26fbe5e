package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics records recommendation pipeline metrics.
type PipelineMetrics interface {
	RecordRun(ctx context.Context, outcome string, duration time.Duration)
	RecordRetrievalItems(ctx context.Context, count int)
	RecordRetrievalError(ctx context.Context, stage string)
	RecordConfidence(ctx context.Context, confidence float64)
}

type pipelineMetrics struct {
	runs            metric.Int64Counter
	duration        metric.Float64Histogram
	retrievalItems  metric.Int64Histogram
	retrievalErrors metric.Int64Counter
	confidence      metric.Float64Histogram
}

// NewPipelineMetrics creates PipelineMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewPipelineMetrics(meter metric.Meter) (PipelineMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	runs, err := meter.Int64Counter(
		MetricNamePipelineRuns,
		metric.WithDescription("Pipeline runs by outcome (success, fallback, manual, error)"),
	)
	if err != nil {
		return nil, fmt.Errorf("create pipeline runs counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		MetricNamePipelineDuration,
		metric.WithDescription("End-to-end pipeline duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create pipeline duration histogram: %w", err)
	}

	retrievalItems, err := meter.Int64Histogram(
		MetricNameRetrievalItems,
		metric.WithDescription("Items returned per retrieval batch"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 4, 6, 8, 12, 16),
	)
	if err != nil {
		return nil, fmt.Errorf("create retrieval items histogram: %w", err)
	}

	retrievalErrors, err := meter.Int64Counter(
		MetricNameRetrievalErrors,
		metric.WithDescription("Retrieval failures by stage; the request continues on the fallback path"),
	)
	if err != nil {
		return nil, fmt.Errorf("create retrieval errors counter: %w", err)
	}

	confidence, err := meter.Float64Histogram(
		MetricNameConfidence,
		metric.WithDescription("Recommendation confidence of successful runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("create confidence histogram: %w", err)
	}

	return &pipelineMetrics{
		runs:            runs,
		duration:        duration,
		retrievalItems:  retrievalItems,
		retrievalErrors: retrievalErrors,
		confidence:      confidence,
	}, nil
}

func (p *pipelineMetrics) RecordRun(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(AttrOutcome, NormalizeLabel(outcome, AllowedPipelineOutcomes)))
	p.runs.Add(ctx, 1, attrs)
	p.duration.Record(ctx, duration.Seconds(), attrs)
}

func (p *pipelineMetrics) RecordRetrievalItems(ctx context.Context, count int) {
	p.retrievalItems.Record(ctx, int64(count))
}

func (p *pipelineMetrics) RecordRetrievalError(ctx context.Context, stage string) {
	p.retrievalErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrStage, NormalizeLabel(stage, AllowedRetrievalStages)),
	))
}

func (p *pipelineMetrics) RecordConfidence(ctx context.Context, confidence float64) {
	p.confidence.Record(ctx, confidence)
}
