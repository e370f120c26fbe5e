package recommend

import (
	"context"
	"time"

	"github.com/bobeautician/advisor/internal/models"
)

type catalogCall struct {
	method  string
	arg     string
	names   []string
	minRank float64
	limit   int
}

type fakeCatalog struct {
	productsForSkinTypeFunc  func(ctx context.Context, skinType string, minRank float64, limit int) ([]models.Product, error)
	productsInCategoriesFunc func(ctx context.Context, categories []string, minRank float64, limit int) ([]models.Product, error)
	ingredientsMatchingFunc  func(ctx context.Context, names []string, limit int) ([]models.Ingredient, error)
	topRatedProductsFunc     func(ctx context.Context, minRank float64, limit int) ([]models.Product, error)

	calls []catalogCall
}

func (f *fakeCatalog) ProductsForSkinType(ctx context.Context, skinType string, minRank float64, limit int) ([]models.Product, error) {
	f.calls = append(f.calls, catalogCall{method: "ProductsForSkinType", arg: skinType, minRank: minRank, limit: limit})
	if f.productsForSkinTypeFunc != nil {
		return f.productsForSkinTypeFunc(ctx, skinType, minRank, limit)
	}

	return nil, nil
}

func (f *fakeCatalog) ProductsInCategories(ctx context.Context, categories []string, minRank float64, limit int) ([]models.Product, error) {
	f.calls = append(f.calls, catalogCall{method: "ProductsInCategories", names: categories, minRank: minRank, limit: limit})
	if f.productsInCategoriesFunc != nil {
		return f.productsInCategoriesFunc(ctx, categories, minRank, limit)
	}

	return nil, nil
}

func (f *fakeCatalog) IngredientsMatching(ctx context.Context, names []string, limit int) ([]models.Ingredient, error) {
	f.calls = append(f.calls, catalogCall{method: "IngredientsMatching", names: names, limit: limit})
	if f.ingredientsMatchingFunc != nil {
		return f.ingredientsMatchingFunc(ctx, names, limit)
	}

	return nil, nil
}

func (f *fakeCatalog) TopRatedProducts(ctx context.Context, minRank float64, limit int) ([]models.Product, error) {
	f.calls = append(f.calls, catalogCall{method: "TopRatedProducts", minRank: minRank, limit: limit})
	if f.topRatedProductsFunc != nil {
		return f.topRatedProductsFunc(ctx, minRank, limit)
	}

	return nil, nil
}

func (f *fakeCatalog) called(method string) []catalogCall {
	var out []catalogCall

	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}

	return out
}

type mockRetriever struct {
	retrieveFunc func(ctx context.Context, query string, profile *models.Profile, concern string, k int) ([]models.RetrievedItem, error)
	gotK         int
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string, profile *models.Profile, concern string, k int) ([]models.RetrievedItem, error) {
	m.gotK = k

	return m.retrieveFunc(ctx, query, profile, concern, k)
}

type mockGenerator struct {
	generateFunc func(ctx context.Context, prompt string) (string, error)
	prompts      []string
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)

	return m.generateFunc(ctx, prompt)
}

type capturingPipelineMetrics struct {
	outcomes        []string
	retrievalErrors []string
	items           []int
	confidences     []float64
}

func (c *capturingPipelineMetrics) RecordRun(_ context.Context, outcome string, _ time.Duration) {
	c.outcomes = append(c.outcomes, outcome)
}

func (c *capturingPipelineMetrics) RecordRetrievalItems(_ context.Context, count int) {
	c.items = append(c.items, count)
}

func (c *capturingPipelineMetrics) RecordRetrievalError(_ context.Context, stage string) {
	c.retrievalErrors = append(c.retrievalErrors, stage)
}

func (c *capturingPipelineMetrics) RecordConfidence(_ context.Context, confidence float64) {
	c.confidences = append(c.confidences, confidence)
}

func rank(v float64) *float64 {
	return &v
}

func product(id int64, brand, name, category string, r float64, skinTypes ...string) models.Product {
	return models.Product{
		ID:          id,
		Name:        name,
		Brand:       brand,
		Category:    category,
		Rank:        rank(r),
		Ingredients: []string{"Water", "Glycerin"},
		SkinTypes:   skinTypes,
	}
}
