package models

// Product is a catalog product with its ingredient and skin type names flattened.
type Product struct {
	ID          int64    `json:"product_id"`
	Name        string   `json:"product_name"`
	Brand       string   `json:"brand_name"`
	Category    string   `json:"category"`
	Rank        *float64 `json:"rank"`
	Ingredients []string `json:"ingredients"`
	SkinTypes   []string `json:"skin_types"`
}

// Ingredient is a catalog ingredient identified by its INCI name.
type Ingredient struct {
	ID       int64  `json:"ingredient_id"`
	INCIName string `json:"inci_name"`
}

// SkinTypeRow is a row of the skin_types table.
type SkinTypeRow struct {
	ID   int64  `json:"skin_type_id"`
	Name string `json:"type_name"`
}

// ListProductsFilters represents filters for browsing products.
// skin_type and ingredient may be repeated; a product matches when it has any of them.
// Limits above the service maximum are clamped rather than rejected.
type ListProductsFilters struct {
	Search      *string  `form:"search" validate:"omitempty,max=255,no_null_bytes"`
	SkinTypes   []string `form:"skin_type" validate:"omitempty,max=10,dive,max=50,no_null_bytes"`
	Ingredients []string `form:"ingredient" validate:"omitempty,max=20,dive,max=255,no_null_bytes"`
	Skip        int      `form:"skip" validate:"omitempty,min=0,max=2147483647"`
	Limit       int      `form:"limit" validate:"omitempty,min=1"`
}

// ListIngredientsFilters represents filters for browsing ingredients.
type ListIngredientsFilters struct {
	Search *string `form:"search" validate:"omitempty,max=255,no_null_bytes"`
	Skip   int     `form:"skip" validate:"omitempty,min=0,max=2147483647"`
	Limit  int     `form:"limit" validate:"omitempty,min=1"`
}
