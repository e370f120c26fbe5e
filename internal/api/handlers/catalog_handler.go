package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bobeautician/advisor/internal/api/response"
	"github.com/bobeautician/advisor/internal/api/validation"
	apperrors "github.com/bobeautician/advisor/internal/errors"
	"github.com/bobeautician/advisor/internal/models"
)

// CatalogService defines the interface for catalog browsing.
type CatalogService interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, filters *models.ListProductsFilters) ([]models.Product, error)
	ListIngredients(ctx context.Context, filters *models.ListIngredientsFilters) ([]models.Ingredient, error)
}

// CatalogHandler handles HTTP requests for products and ingredients
type CatalogHandler struct {
	service CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListProducts handles GET /api/products
// @Summary List products
// @Param search query string false "Substring of product or brand name"
// @Param skin_type query []string false "Skin type names (repeatable)"
// @Param ingredient query []string false "Ingredient INCI names (repeatable)"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Rows to return (default 50, max 1000)"
// @Success 200 {array} Product
// @Router /api/products [get]
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var filters models.ListProductsFilters
	if err := validation.ValidateAndDecodeQueryParams(r, &filters); err != nil {
		validation.RespondValidationError(w, err)

		return
	}

	products, err := h.service.ListProducts(r.Context(), &filters)
	if err != nil {
		slog.ErrorContext(r.Context(), "list products failed", "error", err)
		response.RespondInternalServerError(w, "An unexpected error occurred")

		return
	}

	response.RespondJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondBadRequest(w, "Invalid product ID")

		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Product not found")

			return
		}

		slog.ErrorContext(r.Context(), "get product failed", "product_id", id, "error", err)
		response.RespondInternalServerError(w, "An unexpected error occurred")

		return
	}

	response.RespondJSON(w, http.StatusOK, product)
}

// ListIngredients handles GET /api/ingredients
func (h *CatalogHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	var filters models.ListIngredientsFilters
	if err := validation.ValidateAndDecodeQueryParams(r, &filters); err != nil {
		validation.RespondValidationError(w, err)

		return
	}

	ingredients, err := h.service.ListIngredients(r.Context(), &filters)
	if err != nil {
		slog.ErrorContext(r.Context(), "list ingredients failed", "error", err)
		response.RespondInternalServerError(w, "An unexpected error occurred")

		return
	}

	response.RespondJSON(w, http.StatusOK, ingredients)
}
