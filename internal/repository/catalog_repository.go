// Package repository provides data access for the product catalog.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/bobeautician/advisor/internal/errors"
	"github.com/bobeautician/advisor/internal/models"
)

// productColumns selects a product row with its ingredient and skin type names flattened into arrays.
const productColumns = `
	SELECT p.product_id, p.product_name,
		COALESCE(p.brand_name, ''), COALESCE(p.category, ''), p.rank,
		ARRAY(
			SELECT i.inci_name FROM product_ingredients pi
			JOIN ingredients i ON i.ingredient_id = pi.ingredient_id
			WHERE pi.product_id = p.product_id
			ORDER BY i.ingredient_id
		) AS ingredients,
		ARRAY(
			SELECT st.type_name FROM product_skin_types pst
			JOIN skin_types st ON st.skin_type_id = pst.skin_type_id
			WHERE pst.product_id = p.product_id
			ORDER BY st.skin_type_id
		) AS skin_types
	FROM products p
`

// CatalogRepository handles read access to products, ingredients and skin types.
// The catalog is loaded by seed tooling and is read-only at request time.
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// containsPattern builds an ILIKE pattern matching s anywhere, with LIKE metacharacters escaped.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

	return "%" + r.Replace(s) + "%"
}

func containsPatterns(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = containsPattern(v)
	}

	return out
}

// ProductsForSkinType returns rated products tagged with a skin type whose name contains skinType,
// best ranked first.
func (r *CatalogRepository) ProductsForSkinType(
	ctx context.Context, skinType string, minRank float64, limit int,
) ([]models.Product, error) {
	query := productColumns + `
		WHERE p.rank IS NOT NULL AND p.rank >= $2
		  AND EXISTS (
			SELECT 1 FROM product_skin_types pst
			JOIN skin_types st ON st.skin_type_id = pst.skin_type_id
			WHERE pst.product_id = p.product_id AND st.type_name ILIKE $1
		  )
		ORDER BY p.rank DESC, p.product_id
		LIMIT $3
	`

	return r.queryProducts(ctx, "products for skin type", query, containsPattern(skinType), minRank, limit)
}

// ProductsInCategories returns rated products whose category contains any of categories,
// best ranked first.
func (r *CatalogRepository) ProductsInCategories(
	ctx context.Context, categories []string, minRank float64, limit int,
) ([]models.Product, error) {
	if len(categories) == 0 {
		return []models.Product{}, nil
	}

	query := productColumns + `
		WHERE p.rank IS NOT NULL AND p.rank >= $2
		  AND p.category ILIKE ANY($1)
		ORDER BY p.rank DESC, p.product_id
		LIMIT $3
	`

	return r.queryProducts(ctx, "products in categories", query, containsPatterns(categories), minRank, limit)
}

// TopRatedProducts returns the best ranked products with rank >= minRank.
func (r *CatalogRepository) TopRatedProducts(ctx context.Context, minRank float64, limit int) ([]models.Product, error) {
	query := productColumns + `
		WHERE p.rank IS NOT NULL AND p.rank >= $1
		ORDER BY p.rank DESC, p.product_id
		LIMIT $2
	`

	return r.queryProducts(ctx, "top rated products", query, minRank, limit)
}

// IngredientsMatching returns ingredients whose INCI name contains any of names.
func (r *CatalogRepository) IngredientsMatching(ctx context.Context, names []string, limit int) ([]models.Ingredient, error) {
	if len(names) == 0 {
		return []models.Ingredient{}, nil
	}

	query := `
		SELECT ingredient_id, inci_name
		FROM ingredients
		WHERE inci_name ILIKE ANY($1)
		ORDER BY ingredient_id
		LIMIT $2
	`

	return r.queryIngredients(ctx, "ingredients matching", query, containsPatterns(names), limit)
}

// GetProduct retrieves a single product by ID.
func (r *CatalogRepository) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	query := productColumns + ` WHERE p.product_id = $1`

	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("product", "Product not found")
		}

		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// buildProductFilterConditions builds the WHERE clause for product browsing.
func buildProductFilterConditions(filters *models.ListProductsFilters) (whereClause string, args []any) {
	var conditions []string

	argCount := 1

	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions,
			fmt.Sprintf("(p.product_name ILIKE $%d OR p.brand_name ILIKE $%d)", argCount, argCount))
		args = append(args, containsPattern(*filters.Search))
		argCount++
	}

	if len(filters.SkinTypes) > 0 {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM product_skin_types pst
			JOIN skin_types st ON st.skin_type_id = pst.skin_type_id
			WHERE pst.product_id = p.product_id AND st.type_name = ANY($%d))`, argCount))
		args = append(args, filters.SkinTypes)
		argCount++
	}

	if len(filters.Ingredients) > 0 {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM product_ingredients pi
			JOIN ingredients i ON i.ingredient_id = pi.ingredient_id
			WHERE pi.product_id = p.product_id AND i.inci_name = ANY($%d))`, argCount))
		args = append(args, filters.Ingredients)
	}

	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	return whereClause, args
}

// ListProducts browses products matching the filters, ordered by product ID.
func (r *CatalogRepository) ListProducts(ctx context.Context, filters *models.ListProductsFilters) ([]models.Product, error) {
	whereClause, args := buildProductFilterConditions(filters)
	query := productColumns + whereClause + " ORDER BY p.product_id"
	argCount := len(args) + 1

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)

		args = append(args, filters.Limit)
		argCount++
	}

	if filters.Skip > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)

		args = append(args, filters.Skip)
	}

	return r.queryProducts(ctx, "products", query, args...)
}

// ListIngredients browses ingredients, optionally filtered by a name substring.
func (r *CatalogRepository) ListIngredients(ctx context.Context, filters *models.ListIngredientsFilters) ([]models.Ingredient, error) {
	query := `SELECT ingredient_id, inci_name FROM ingredients`

	var args []any

	if filters.Search != nil && *filters.Search != "" {
		query += " WHERE inci_name ILIKE $1"

		args = append(args, containsPattern(*filters.Search))
	}

	query += " ORDER BY ingredient_id"
	argCount := len(args) + 1

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)

		args = append(args, filters.Limit)
		argCount++
	}

	if filters.Skip > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)

		args = append(args, filters.Skip)
	}

	return r.queryIngredients(ctx, "ingredients", query, args...)
}

// Ping checks that the catalog database is reachable.
func (r *CatalogRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping catalog database: %w", err)
	}

	return nil
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product

	if err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Rank, &p.Ingredients, &p.SkinTypes); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *CatalogRepository) queryProducts(ctx context.Context, what, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	defer rows.Close()

	products := []models.Product{}

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}

	return products, nil
}

func (r *CatalogRepository) queryIngredients(ctx context.Context, what, query string, args ...any) ([]models.Ingredient, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	defer rows.Close()

	ingredients := []models.Ingredient{}

	for rows.Next() {
		var ing models.Ingredient
		if err := rows.Scan(&ing.ID, &ing.INCIName); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}

		ingredients = append(ingredients, ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}

	return ingredients, nil
}
