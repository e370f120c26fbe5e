package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all advisor metric collectors. When metrics are disabled the struct itself is nil.
// Components accept the interface they need and already handle nil.
type Metrics struct {
	HTTP       HTTPMetrics
	Pipeline   PipelineMetrics
	Generation GenerationMetrics
	Cache      CacheMetrics
	API        APIMetrics
}

// NewMetrics creates every collector from the given meter.
// Returns (nil, nil) when meter is nil (metrics disabled).
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	httpMetrics, err := NewHTTPMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}

	pipeline, err := NewPipelineMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("pipeline metrics: %w", err)
	}

	generation, err := NewGenerationMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("generation metrics: %w", err)
	}

	cache, err := NewCacheMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("cache metrics: %w", err)
	}

	api, err := NewAPIMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("api metrics: %w", err)
	}

	return &Metrics{
		HTTP:       httpMetrics,
		Pipeline:   pipeline,
		Generation: generation,
		Cache:      cache,
		API:        api,
	}, nil
}
