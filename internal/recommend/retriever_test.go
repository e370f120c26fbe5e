package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bobeautician/advisor/internal/errors"
	"github.com/bobeautician/advisor/internal/models"
)

func itemIDs(items []models.RetrievedItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	return ids
}

func TestRetriever_AllStages(t *testing.T) {
	catalog := &fakeCatalog{
		productsForSkinTypeFunc: func(_ context.Context, _ string, _ float64, _ int) ([]models.Product, error) {
			return []models.Product{
				product(1, "CeraVe", "Foaming Cleanser", "Cleanser", 4.6, "Oily"),
				product(2, "The Ordinary", "Niacinamide", "Treatment", 4.2, "Oily"),
			}, nil
		},
		productsInCategoriesFunc: func(_ context.Context, _ []string, _ float64, _ int) ([]models.Product, error) {
			return []models.Product{
				product(2, "The Ordinary", "Niacinamide", "Treatment", 4.2, "Oily"),
				product(6, "Paula's Choice", "BHA Liquid", "Treatment", 3.9, "Oily"),
			}, nil
		},
		ingredientsMatchingFunc: func(_ context.Context, names []string, _ int) ([]models.Ingredient, error) {
			if names[0] == "Fragrance" {
				return []models.Ingredient{{ID: 6, INCIName: "Fragrance"}}, nil
			}

			return []models.Ingredient{
				{ID: 2, INCIName: "Niacinamide"},
				{ID: 3, INCIName: "Salicylic Acid"},
				{ID: 7, INCIName: "Zinc PCA"},
			}, nil
		},
	}

	profile := &models.Profile{
		SkinType:  models.SkinTypeOily,
		Sensitive: models.SensitivityYes,
		Concerns:  []models.Concern{models.ConcernAcne},
	}

	items, err := NewRetriever(catalog).Retrieve(context.Background(), "help", profile, "", 8)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"skintype_product_1",
		"skintype_product_2",
		"concern_product_6",
		"ingredient_2",
		"ingredient_3",
		"avoid_ingredient_6",
	}, itemIDs(items))

	assert.InDelta(t, 0.95, items[0].Score, 1e-9)
	assert.Equal(t, models.MatchSkinType, items[0].Metadata.MatchType)
	assert.Equal(t, models.SourceProducts, items[0].SourceID)
	assert.Equal(t, "Cleanser", items[0].Metadata.Category)
	assert.InDelta(t, 0.85, items[2].Score, 1e-9)
	assert.Equal(t, []string{"acne"}, items[2].Metadata.Concerns)
	assert.InDelta(t, 0.75, items[3].Score, 1e-9)
	assert.True(t, items[3].Metadata.Beneficial)
	assert.Equal(t, models.SourceIngredients, items[3].SourceID)
	assert.InDelta(t, 0.6, items[5].Score, 1e-9)
	assert.True(t, items[5].Metadata.Avoid)

	skinCalls := catalog.called("ProductsForSkinType")
	require.Len(t, skinCalls, 1)
	assert.Equal(t, "oily", skinCalls[0].arg)
	assert.InDelta(t, 3.5, skinCalls[0].minRank, 1e-9)
	assert.Equal(t, 4, skinCalls[0].limit)

	concernCalls := catalog.called("ProductsInCategories")
	require.Len(t, concernCalls, 1)
	assert.Equal(t, []string{"Cleanser", "Treatment"}, concernCalls[0].names)
	assert.Equal(t, 2, concernCalls[0].limit)

	ingredientCalls := catalog.called("IngredientsMatching")
	require.Len(t, ingredientCalls, 2)
	assert.Equal(t, 8, ingredientCalls[0].limit)
	assert.Equal(t, avoidIngredients, ingredientCalls[1].names)
	assert.Equal(t, 5, ingredientCalls[1].limit)

	assert.Empty(t, catalog.called("TopRatedProducts"), "general stage runs only below k/2 items")
}

func TestRetriever_OilyProfileRanksSkinTypeFirst(t *testing.T) {
	catalog := &fakeCatalog{
		productsForSkinTypeFunc: func(_ context.Context, _ string, minRank float64, limit int) ([]models.Product, error) {
			assert.InDelta(t, 3.5, minRank, 1e-9)
			assert.Equal(t, 4, limit)

			return []models.Product{
				product(3, "CeraVe", "Moisturizing Cream", "Moisturizer", 4.8, "Oily"),
				product(1, "CeraVe", "Foaming Cleanser", "Cleanser", 4.6, "Oily"),
				product(2, "The Ordinary", "Niacinamide", "Treatment", 4.2, "Oily"),
				product(6, "Paula's Choice", "BHA Liquid", "Treatment", 3.9, "Oily"),
			}, nil
		},
		productsInCategoriesFunc: func(_ context.Context, _ []string, _ float64, _ int) ([]models.Product, error) {
			return []models.Product{product(9, "Brand", "Spot Gel", "Treatment", 3.1)}, nil
		},
	}

	profile := &models.Profile{
		SkinType:  models.SkinTypeOily,
		Sensitive: models.SensitivityNo,
		Concerns:  []models.Concern{models.ConcernAcne},
	}

	items, err := NewRetriever(catalog).Retrieve(context.Background(), "What should I use?", profile, "", 8)
	require.NoError(t, err)

	firstConcern := -1

	for i, it := range items {
		if it.Metadata.MatchType == models.MatchConcern && firstConcern < 0 {
			firstConcern = i
		}
	}

	require.Equal(t, 4, firstConcern)

	for _, it := range items[:4] {
		assert.Equal(t, models.MatchSkinType, it.Metadata.MatchType)
	}

	assert.Empty(t, catalog.called("TopRatedProducts"))
}

func TestRetriever_SensitiveWithoutSkinType(t *testing.T) {
	catalog := &fakeCatalog{
		ingredientsMatchingFunc: func(_ context.Context, names []string, _ int) ([]models.Ingredient, error) {
			if names[0] == "Fragrance" {
				return []models.Ingredient{
					{ID: 6, INCIName: "Fragrance"},
					{ID: 11, INCIName: "Alcohol Denat."},
				}, nil
			}

			return []models.Ingredient{{ID: 20, INCIName: "Aloe Vera"}}, nil
		},
		topRatedProductsFunc: func(_ context.Context, _ float64, _ int) ([]models.Product, error) {
			return []models.Product{product(3, "CeraVe", "Moisturizing Cream", "Moisturizer", 4.8)}, nil
		},
	}

	profile := &models.Profile{Sensitive: models.SensitivityYes}

	items, err := NewRetriever(catalog).Retrieve(context.Background(), "What should I use?", profile, "", 8)
	require.NoError(t, err)

	assert.Empty(t, catalog.called("ProductsForSkinType"))
	assert.Empty(t, catalog.called("ProductsInCategories"))

	var avoid int

	for _, it := range items {
		if it.Metadata.Avoid {
			avoid++
		}
	}

	assert.Equal(t, 1, avoid)

	// Two items before the general stage, below k/2 = 4.
	general := catalog.called("TopRatedProducts")
	require.Len(t, general, 1)
	assert.Equal(t, 6, general[0].limit)
	assert.InDelta(t, 4.0, general[0].minRank, 1e-9)
	assert.Equal(t, []string{"ingredient_20", "avoid_ingredient_6", "general_product_3"}, itemIDs(items))
}

func TestRetriever_GeneralSkipsPresentProducts(t *testing.T) {
	catalog := &fakeCatalog{
		productsForSkinTypeFunc: func(_ context.Context, _ string, _ float64, _ int) ([]models.Product, error) {
			return []models.Product{product(3, "CeraVe", "Moisturizing Cream", "Moisturizer", 4.8, "Dry")}, nil
		},
		topRatedProductsFunc: func(_ context.Context, _ float64, limit int) ([]models.Product, error) {
			assert.Equal(t, 7, limit)

			return []models.Product{
				product(3, "CeraVe", "Moisturizing Cream", "Moisturizer", 4.8, "Dry"),
				product(1, "CeraVe", "Foaming Cleanser", "Cleanser", 4.6),
			}, nil
		},
	}

	items, err := NewRetriever(catalog).Retrieve(context.Background(), "", &models.Profile{SkinType: models.SkinTypeDry}, "", 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"skintype_product_3", "general_product_1"}, itemIDs(items))
	assert.InDelta(t, 0.7, items[1].Score, 1e-9)
}

func TestRetriever_NoSignalsUsesGeneralOnly(t *testing.T) {
	catalog := &fakeCatalog{
		topRatedProductsFunc: func(_ context.Context, _ float64, limit int) ([]models.Product, error) {
			assert.Equal(t, DefaultK, limit)

			return []models.Product{
				product(3, "CeraVe", "Moisturizing Cream", "Moisturizer", 4.8),
				product(1, "CeraVe", "Foaming Cleanser", "Cleanser", 4.6),
			}, nil
		},
	}

	items, err := NewRetriever(catalog).Retrieve(context.Background(), "anything good?", nil, "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"general_product_3", "general_product_1"}, itemIDs(items))
	assert.Empty(t, catalog.called("IngredientsMatching"))
}

func TestRetriever_TruncatesToK(t *testing.T) {
	catalog := &fakeCatalog{
		productsForSkinTypeFunc: func(_ context.Context, _ string, _ float64, limit int) ([]models.Product, error) {
			assert.Equal(t, 2, limit)

			return []models.Product{
				product(1, "CeraVe", "Foaming Cleanser", "Cleanser", 4.6),
				product(2, "The Ordinary", "Niacinamide", "Treatment", 4.2),
			}, nil
		},
		ingredientsMatchingFunc: func(_ context.Context, _ []string, _ int) ([]models.Ingredient, error) {
			return []models.Ingredient{{ID: 2, INCIName: "Niacinamide"}, {ID: 3, INCIName: "Salicylic Acid"}}, nil
		},
	}

	for _, k := range []int{1, 2, 3} {
		items, err := NewRetriever(catalog).Retrieve(context.Background(), "", &models.Profile{SkinType: models.SkinTypeOily}, "", k)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(items), k)

		seen := make(map[string]bool)
		for _, it := range items {
			assert.False(t, seen[it.ID], "duplicate id %s", it.ID)
			seen[it.ID] = true
		}
	}
}

func TestRetriever_StageErrors(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name      string
		catalog   *fakeCatalog
		profile   *models.Profile
		wantStage string
	}{
		{
			name: "skin type stage",
			catalog: &fakeCatalog{
				productsForSkinTypeFunc: func(context.Context, string, float64, int) ([]models.Product, error) { return nil, boom },
			},
			profile:   &models.Profile{SkinType: models.SkinTypeOily},
			wantStage: StageSkinType,
		},
		{
			name: "concern stage",
			catalog: &fakeCatalog{
				productsInCategoriesFunc: func(context.Context, []string, float64, int) ([]models.Product, error) { return nil, boom },
			},
			profile:   &models.Profile{Concerns: []models.Concern{models.ConcernAcne}},
			wantStage: StageConcern,
		},
		{
			name: "beneficial stage",
			catalog: &fakeCatalog{
				ingredientsMatchingFunc: func(context.Context, []string, int) ([]models.Ingredient, error) { return nil, boom },
			},
			profile:   &models.Profile{SkinType: models.SkinTypeDry},
			wantStage: StageBeneficial,
		},
		{
			name: "general stage",
			catalog: &fakeCatalog{
				topRatedProductsFunc: func(context.Context, float64, int) ([]models.Product, error) { return nil, boom },
			},
			wantStage: StageGeneral,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := NewRetriever(tt.catalog).Retrieve(context.Background(), "", tt.profile, "", 8)
			require.Error(t, err)
			assert.Nil(t, items)
			assert.ErrorIs(t, err, boom)

			var retrievalErr *apperrors.RetrievalError
			require.ErrorAs(t, err, &retrievalErr)
			assert.Equal(t, tt.wantStage, retrievalErr.Stage)
		})
	}
}

func TestRetriever_RepeatedRowsKeepIDsUnique(t *testing.T) {
	cleanser := product(1, "CeraVe", "Foaming Cleanser", "Cleanser", 4.6, "Oily")

	catalog := &fakeCatalog{
		productsForSkinTypeFunc: func(_ context.Context, _ string, _ float64, _ int) ([]models.Product, error) {
			return []models.Product{cleanser, cleanser}, nil
		},
		ingredientsMatchingFunc: func(_ context.Context, names []string, _ int) ([]models.Ingredient, error) {
			if names[0] == "Fragrance" {
				return []models.Ingredient{{ID: 6, INCIName: "Fragrance"}, {ID: 6, INCIName: "Fragrance"}}, nil
			}

			return []models.Ingredient{
				{ID: 2, INCIName: "Niacinamide"},
				{ID: 2, INCIName: "Niacinamide"},
				{ID: 3, INCIName: "Salicylic Acid"},
			}, nil
		},
		topRatedProductsFunc: func(_ context.Context, _ float64, _ int) ([]models.Product, error) {
			return []models.Product{cleanser, product(9, "Brand", "Toner", "Toner", 4.5)}, nil
		},
	}

	profile := &models.Profile{SkinType: models.SkinTypeOily, Sensitive: models.SensitivityYes}

	items, err := NewRetriever(catalog).Retrieve(context.Background(), "help", profile, "", 8)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"skintype_product_1",
		"ingredient_2",
		"ingredient_3",
		"avoid_ingredient_6",
		"general_product_9",
	}, itemIDs(items))
}
