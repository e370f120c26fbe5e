package service

import (
	"context"

	"github.com/bobeautician/advisor/internal/models"
)

// Page size defaults for catalog browsing.
const (
	DefaultProductLimit    = 50
	DefaultIngredientLimit = 100
	MaxListLimit           = 1000
)

// CatalogRepository defines the catalog reads used by the browse endpoints.
type CatalogRepository interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, filters *models.ListProductsFilters) ([]models.Product, error)
	ListIngredients(ctx context.Context, filters *models.ListIngredientsFilters) ([]models.Ingredient, error)
}

// CatalogService handles product and ingredient browsing.
type CatalogService struct {
	repo CatalogRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// GetProduct retrieves a single product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// ListProducts lists products matching filters. A zero limit means DefaultProductLimit.
func (s *CatalogService) ListProducts(ctx context.Context, filters *models.ListProductsFilters) ([]models.Product, error) {
	filters.Limit = clampLimit(filters.Limit, DefaultProductLimit)

	products, err := s.repo.ListProducts(ctx, filters)
	if err != nil {
		return nil, err
	}

	if products == nil {
		products = []models.Product{}
	}

	return products, nil
}

// ListIngredients lists ingredients matching filters. A zero limit means DefaultIngredientLimit.
func (s *CatalogService) ListIngredients(ctx context.Context, filters *models.ListIngredientsFilters) ([]models.Ingredient, error) {
	filters.Limit = clampLimit(filters.Limit, DefaultIngredientLimit)

	ingredients, err := s.repo.ListIngredients(ctx, filters)
	if err != nil {
		return nil, err
	}

	if ingredients == nil {
		ingredients = []models.Ingredient{}
	}

	return ingredients, nil
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}

	return min(limit, MaxListLimit)
}
