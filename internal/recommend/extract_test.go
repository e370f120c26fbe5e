package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobeautician/advisor/internal/models"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name         string
		question     string
		profile      *models.Profile
		concern      string
		wantSkinType models.SkinType
		wantConcerns []models.Concern
	}{
		{
			name:         "profile skin type wins over question",
			question:     "What moisturizer for dry patches?",
			profile:      &models.Profile{SkinType: models.SkinTypeOily, Concerns: []models.Concern{models.ConcernAcne}},
			wantSkinType: models.SkinTypeOily,
			wantConcerns: []models.Concern{models.ConcernAcne, models.ConcernDryness},
		},
		{
			name:         "skin type from question",
			question:     "I have Combination skin with blackheads",
			wantSkinType: models.SkinTypeCombination,
			wantConcerns: []models.Concern{models.ConcernBlackheads},
		},
		{
			name:         "one keyword group yields one concern",
			question:     "My sensitive skin gets redness",
			wantSkinType: models.SkinTypeSensitive,
			wantConcerns: []models.Concern{models.ConcernSensitivity},
		},
		{
			name:         "explicit concern appended",
			question:     "",
			concern:      " Aging ",
			wantConcerns: []models.Concern{models.ConcernAging},
		},
		{
			name:         "no duplicates across sources",
			question:     "acne breakouts everywhere",
			profile:      &models.Profile{Concerns: []models.Concern{models.ConcernAcne}},
			concern:      "acne",
			wantConcerns: []models.Concern{models.ConcernAcne},
		},
		{
			name:     "nothing recognized",
			question: "What should I buy?",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skinType, concerns := Extract(tt.question, tt.profile, tt.concern)
			assert.Equal(t, tt.wantSkinType, skinType)
			assert.Equal(t, tt.wantConcerns, concerns)
		})
	}
}

func TestExtract_ProfileSkinTypeAlwaysReturned(t *testing.T) {
	questions := []string{"", "my oily skin", "dry and flaky", "normal routine please"}

	for _, st := range models.SkinTypes {
		for _, q := range questions {
			got, _ := Extract(q, &models.Profile{SkinType: st}, "")
			assert.Equal(t, st, got, "skin type %s, question %q", st, q)
		}
	}
}

func TestCategoriesFor(t *testing.T) {
	got := categoriesFor([]models.Concern{models.ConcernAcne, models.ConcernAging, models.ConcernSensitivity})
	assert.Equal(t, []string{"Cleanser", "Treatment", "Moisturizer", "Serum"}, got)
	assert.Empty(t, categoriesFor([]models.Concern{models.ConcernSensitivity}))
}

func TestBeneficialIngredientNames(t *testing.T) {
	t.Run("skin type list then concern lists, deduplicated", func(t *testing.T) {
		got := beneficialIngredientNames(models.SkinTypeOily, false, []models.Concern{models.ConcernAcne})
		assert.Equal(t, []string{
			"Niacinamide", "Salicylic Acid", "Zinc Oxide", "Clay", "Witch Hazel",
			"Benzoyl Peroxide", "Tea Tree Oil", "Zinc",
		}, got)
	})

	t.Run("sensitive list without skin type", func(t *testing.T) {
		got := beneficialIngredientNames("", true, nil)
		assert.Equal(t, []string{"Aloe Vera", "Chamomile", "Allantoin", "Colloidal Oatmeal", "Centella Asiatica"}, got)
	})

	t.Run("nothing known", func(t *testing.T) {
		assert.Empty(t, beneficialIngredientNames("", false, nil))
	})
}

func TestFormatProductText(t *testing.T) {
	p := models.Product{
		ID:          1,
		Name:        "Foaming Cleanser",
		Brand:       "CeraVe",
		Category:    "Cleanser",
		Rank:        rank(4.6),
		Ingredients: []string{"Water", "Glycerin", "Niacinamide", "Ceramide NP", "Zinc PCA", "Fragrance", "Salicylic Acid"},
		SkinTypes:   []string{"Oily", "Normal"},
	}

	want := "PERFECT MATCH: Product: CeraVe Foaming Cleanser\n" +
		"Category: Cleanser\n" +
		"Suitable for: Oily, Normal skin\n" +
		"Key ingredients: Water, Glycerin, Niacinamide, Ceramide NP, Zinc PCA (+ 2 more)\n" +
		"Rating: 4.6/5"
	assert.Equal(t, want, formatProductText(p, models.MatchSkinType))

	p.Brand = ""
	p.Rank = nil
	got := formatProductText(p, models.MatchGeneral)
	assert.Contains(t, got, "Product: Foaming Cleanser\n")
	assert.NotContains(t, got, "PERFECT MATCH")
	assert.Contains(t, got, "Rating: Not rated")
}

func TestFormatIngredientText(t *testing.T) {
	got := formatIngredientText("Salicylic Acid", models.SkinTypeOily, []models.Concern{models.ConcernAcne, models.ConcernBlackheads})
	assert.Equal(t,
		"BENEFICIAL INGREDIENT: Salicylic Acid - exfoliates inside pores, reduces blackheads and acne "+
			"(suitable for Oily skin; targets acne, blackheads)",
		got)

	assert.Equal(t,
		"BENEFICIAL INGREDIENT: Aloe Vera - provides skincare benefits for your skin type",
		formatIngredientText("Aloe Vera", "", nil))

	assert.Equal(t, "AVOID: Fragrance - may irritate sensitive skin", formatAvoidText("Fragrance"))
}

func TestExtract_NormalizesProfileCase(t *testing.T) {
	profile := &models.Profile{
		SkinType: "Oily",
		Concerns: []models.Concern{"Acne", " acne ", "AGING"},
	}

	skinType, concerns := Extract("", profile, "")
	assert.Equal(t, models.SkinTypeOily, skinType)
	assert.Equal(t, []models.Concern{models.ConcernAcne, models.ConcernAging}, concerns)
}
