package recommend

import (
	"context"
	"fmt"

	apperrors "github.com/bobeautician/advisor/internal/errors"
	"github.com/bobeautician/advisor/internal/models"
)

// DefaultK is the result count used when a caller passes k <= 0.
const DefaultK = 8

// Stage rank thresholds, query caps and scores.
const (
	skinTypeMinRank = 3.5
	concernMinRank  = 3.0
	generalMinRank  = 4.0

	beneficialNameFilter = 10
	beneficialQueryLimit = 8
	avoidQueryLimit      = 5
	avoidTake            = 1

	scoreSkinType   = 0.95
	scoreConcern    = 0.85
	scoreBeneficial = 0.75
	scoreAvoid      = 0.6
	scoreGeneral    = 0.7
)

// Retrieval stage names, reported in RetrievalError.
const (
	StageSkinType   = "skin_type"
	StageConcern    = "concern"
	StageBeneficial = "beneficial_ingredients"
	StageAvoid      = "avoid_ingredients"
	StageGeneral    = "general"
)

// Catalog is the read-only query surface the retriever needs.
type Catalog interface {
	ProductsForSkinType(ctx context.Context, skinType string, minRank float64, limit int) ([]models.Product, error)
	ProductsInCategories(ctx context.Context, categories []string, minRank float64, limit int) ([]models.Product, error)
	IngredientsMatching(ctx context.Context, names []string, limit int) ([]models.Ingredient, error)
	TopRatedProducts(ctx context.Context, minRank float64, limit int) ([]models.Product, error)
}

// Retriever runs the five ordered catalog queries that make up a retrieval batch.
// Ordering is fixed by stage priority and, within a stage, by product rank.
type Retriever struct {
	catalog Catalog
}

// NewRetriever creates a retriever over the given catalog.
func NewRetriever(catalog Catalog) *Retriever {
	return &Retriever{catalog: catalog}
}

// batch accumulates items. Every append goes through add, so an item ID appears at most once
// and a product appears under at most one prefix.
type batch struct {
	items    []models.RetrievedItem
	ids      map[string]struct{}
	products map[int64]struct{}
}

func newBatch() *batch {
	return &batch{
		ids:      make(map[string]struct{}),
		products: make(map[int64]struct{}),
	}
}

func (b *batch) hasProduct(id int64) bool {
	_, ok := b.products[id]

	return ok
}

// add appends item unless its ID is already present. It reports whether the item was added.
func (b *batch) add(item models.RetrievedItem) bool {
	if _, dup := b.ids[item.ID]; dup {
		return false
	}

	b.ids[item.ID] = struct{}{}
	b.items = append(b.items, item)

	return true
}

// addProduct appends p unless the product is already in the batch under any prefix.
func (b *batch) addProduct(p models.Product, prefix string, match models.MatchType, score float64, meta models.ItemMetadata) {
	if b.hasProduct(p.ID) {
		return
	}

	meta.Type = models.ItemTypeProduct
	meta.MatchType = match
	meta.Category = p.Category

	added := b.add(models.RetrievedItem{
		ID:       fmt.Sprintf("%s_%d", prefix, p.ID),
		Text:     formatProductText(p, match),
		SourceID: models.SourceProducts,
		Score:    score,
		Metadata: meta,
	})
	if added {
		b.products[p.ID] = struct{}{}
	}
}

// Retrieve returns at most k items for the query and profile. Any catalog failure aborts the
// whole batch with a *errors.RetrievalError; partial results are never returned.
func (r *Retriever) Retrieve(
	ctx context.Context, query string, profile *models.Profile, concern string, k int,
) ([]models.RetrievedItem, error) {
	if k <= 0 {
		k = DefaultK
	}

	skinType, concerns := Extract(query, profile, concern)
	sensitive := profile.IsSensitive()

	b := newBatch()

	if skinType != "" {
		products, err := r.catalog.ProductsForSkinType(ctx, string(skinType), skinTypeMinRank, max(k/2, 2))
		if err != nil {
			return nil, apperrors.NewRetrievalError(StageSkinType, err)
		}

		for _, p := range products {
			b.addProduct(p, "skintype_product", models.MatchSkinType, scoreSkinType,
				models.ItemMetadata{SkinType: string(skinType)})
		}
	}

	if categories := categoriesFor(concerns); len(categories) > 0 {
		products, err := r.catalog.ProductsInCategories(ctx, categories, concernMinRank, max(k/3, 2))
		if err != nil {
			return nil, apperrors.NewRetrievalError(StageConcern, err)
		}

		concernNames := models.ConcernStrings(concerns)

		for _, p := range products {
			b.addProduct(p, "concern_product", models.MatchConcern, scoreConcern,
				models.ItemMetadata{Concerns: concernNames})
		}
	}

	if names := beneficialIngredientNames(skinType, sensitive, concerns); len(names) > 0 {
		if len(names) > beneficialNameFilter {
			names = names[:beneficialNameFilter]
		}

		ingredients, err := r.catalog.IngredientsMatching(ctx, names, beneficialQueryLimit)
		if err != nil {
			return nil, apperrors.NewRetrievalError(StageBeneficial, err)
		}

		take := max(k/4, 1)

		for _, ing := range ingredients {
			if take == 0 {
				break
			}

			added := b.add(models.RetrievedItem{
				ID:       fmt.Sprintf("ingredient_%d", ing.ID),
				Text:     formatIngredientText(ing.INCIName, skinType, concerns),
				SourceID: models.SourceIngredients,
				Score:    scoreBeneficial,
				Metadata: models.ItemMetadata{
					Type:       models.ItemTypeIngredient,
					MatchType:  models.MatchBeneficial,
					SkinType:   string(skinType),
					Beneficial: true,
				},
			})
			if added {
				take--
			}
		}
	}

	if sensitive {
		ingredients, err := r.catalog.IngredientsMatching(ctx, avoidIngredients, avoidQueryLimit)
		if err != nil {
			return nil, apperrors.NewRetrievalError(StageAvoid, err)
		}

		take := avoidTake

		for _, ing := range ingredients {
			if take == 0 {
				break
			}

			added := b.add(models.RetrievedItem{
				ID:       fmt.Sprintf("avoid_ingredient_%d", ing.ID),
				Text:     formatAvoidText(ing.INCIName),
				SourceID: models.SourceIngredients,
				Score:    scoreAvoid,
				Metadata: models.ItemMetadata{
					Type:      models.ItemTypeIngredient,
					MatchType: models.MatchAvoid,
					Avoid:     true,
				},
			})
			if added {
				take--
			}
		}
	}

	if len(b.items) < k/2 {
		products, err := r.catalog.TopRatedProducts(ctx, generalMinRank, k-len(b.items))
		if err != nil {
			return nil, apperrors.NewRetrievalError(StageGeneral, err)
		}

		for _, p := range products {
			b.addProduct(p, "general_product", models.MatchGeneral, scoreGeneral, models.ItemMetadata{})
		}
	}

	if len(b.items) > k {
		b.items = b.items[:k]
	}

	return b.items, nil
}
