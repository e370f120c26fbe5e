package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Cache lookup results.
const (
	CacheResultHit  = "hit"
	CacheResultMiss = "miss"
)

// CacheMetrics records lookups and stores of the in-process product and intake caches.
type CacheMetrics interface {
	// RecordLookup counts one lookup in cacheName. A product miss means a catalog query ran;
	// an intake miss means the intake_id expired or never existed.
	RecordLookup(ctx context.Context, cacheName string, hit bool)
	// RecordStore counts an entry written outside a lookup, such as a submitted intake form.
	RecordStore(ctx context.Context, cacheName string)
}

type cacheMetrics struct {
	lookups metric.Int64Counter
	stores  metric.Int64Counter
}

// NewCacheMetrics creates CacheMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewCacheMetrics(meter metric.Meter) (CacheMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	lookups, err := meter.Int64Counter(
		MetricNameCacheLookups,
		metric.WithDescription("Cache lookups by cache (product, intake) and result (hit, miss)."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cache lookups counter: %w", err)
	}

	stores, err := meter.Int64Counter(
		MetricNameCacheStores,
		metric.WithDescription("Entries written directly into a cache. Label cache: intake."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cache stores counter: %w", err)
	}

	return &cacheMetrics{lookups: lookups, stores: stores}, nil
}

func cacheResult(hit bool) string {
	if hit {
		return CacheResultHit
	}

	return CacheResultMiss
}

func (c *cacheMetrics) RecordLookup(ctx context.Context, cacheName string, hit bool) {
	c.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrCache, NormalizeCacheName(cacheName)),
		attribute.String(AttrResult, cacheResult(hit)),
	))
}

func (c *cacheMetrics) RecordStore(ctx context.Context, cacheName string) {
	c.stores.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrCache, NormalizeCacheName(cacheName))))
}
