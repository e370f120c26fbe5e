package service

import (
	"context"
	"fmt"

	"github.com/bobeautician/advisor/internal/models"
	"github.com/bobeautician/advisor/internal/observability"
	"github.com/bobeautician/advisor/pkg/cache"
)

// cachingCatalogRepo wraps a CatalogRepository with a cache for GetProduct.
// The catalog is read-only at runtime, so entries are only evicted by the LRU policy.
type cachingCatalogRepo struct {
	inner   CatalogRepository
	byID    *cache.LoaderCache[int64, *models.Product]
	metrics observability.CacheMetrics
}

// NewCachingCatalogRepository returns a CatalogRepository that caches GetProduct.
// metrics may be nil (no cache metrics recorded).
func NewCachingCatalogRepository(
	inner CatalogRepository,
	byID *cache.LoaderCache[int64, *models.Product],
	metrics observability.CacheMetrics,
) CatalogRepository {
	return &cachingCatalogRepo{inner: inner, byID: byID, metrics: metrics}
}

func (r *cachingCatalogRepo) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if r.metrics != nil {
		p, hit, err := r.byID.GetWithStats(ctx, id, r.inner.GetProduct)
		if err != nil {
			return nil, fmt.Errorf("get product by id: %w", err)
		}

		r.metrics.RecordLookup(ctx, observability.CacheProduct, hit)

		return p, nil
	}

	p, err := r.byID.Get(ctx, id, r.inner.GetProduct)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	return p, nil
}

func (r *cachingCatalogRepo) ListProducts(ctx context.Context, filters *models.ListProductsFilters) ([]models.Product, error) {
	products, err := r.inner.ListProducts(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return products, nil
}

func (r *cachingCatalogRepo) ListIngredients(ctx context.Context, filters *models.ListIngredientsFilters) ([]models.Ingredient, error) {
	ingredients, err := r.inner.ListIngredients(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}

	return ingredients, nil
}
