package recommend

import (
	"strings"

	"github.com/bobeautician/advisor/internal/models"
)

// concernKeywordGroup maps a concern to the question keywords that signal it.
type concernKeywordGroup struct {
	concern  models.Concern
	keywords []string
}

// concernKeywords is scanned in order; the order fixes the order of extracted concerns.
var concernKeywords = []concernKeywordGroup{
	{models.ConcernAcne, []string{"acne", "breakout", "pimple", "blemish"}},
	{models.ConcernDryness, []string{"dry", "dehydrated", "flaky", "tight"}},
	{models.ConcernAging, []string{"wrinkle", "fine lines", "anti-aging", "firming"}},
	{models.ConcernPigmentation, []string{"dark spots", "hyperpigmentation", "melasma", "uneven tone"}},
	{models.ConcernSensitivity, []string{"sensitive", "irritation", "redness", "reactive"}},
	{models.ConcernBlackheads, []string{"blackhead", "clogged pores", "comedone"}},
	{models.ConcernSunDamage, []string{"sun damage", "age spots", "photo damage"}},
}

// concernCategories maps a concern to the product categories that address it.
// Sensitivity has no category of its own.
var concernCategories = map[models.Concern][]string{
	models.ConcernAcne:         {"Cleanser", "Treatment"},
	models.ConcernAging:        {"Moisturizer", "Treatment", "Serum"},
	models.ConcernPigmentation: {"Treatment", "Serum"},
	models.ConcernDryness:      {"Moisturizer", "Oil"},
	models.ConcernBlackheads:   {"Cleanser", "Treatment"},
	models.ConcernSunDamage:    {"Treatment", "Sunscreen"},
}

var skinTypeIngredients = map[models.SkinType][]string{
	models.SkinTypeOily:        {"Niacinamide", "Salicylic Acid", "Zinc Oxide", "Clay", "Witch Hazel"},
	models.SkinTypeDry:         {"Hyaluronic Acid", "Ceramides", "Glycerin", "Squalane", "Shea Butter"},
	models.SkinTypeCombination: {"Niacinamide", "Hyaluronic Acid", "Glycerin"},
	models.SkinTypeNormal:      {"Vitamin C", "Hyaluronic Acid", "Niacinamide"},
	models.SkinTypeSensitive:   {"Aloe Vera", "Chamomile", "Allantoin", "Colloidal Oatmeal", "Centella Asiatica"},
}

var concernIngredients = map[models.Concern][]string{
	models.ConcernAcne:         {"Salicylic Acid", "Benzoyl Peroxide", "Tea Tree Oil", "Zinc"},
	models.ConcernAging:        {"Retinol", "Vitamin C", "Peptides", "Alpha Hydroxy Acids"},
	models.ConcernPigmentation: {"Vitamin C", "Kojic Acid", "Arbutin", "Licorice Root"},
	models.ConcernDryness:      {"Hyaluronic Acid", "Ceramides", "Glycerin", "Squalane"},
	models.ConcernBlackheads:   {"Salicylic Acid", "Retinol", "Clay"},
	models.ConcernSunDamage:    {"Vitamin C", "Retinol", "Niacinamide"},
}

// avoidIngredients are common irritants for sensitive skin.
var avoidIngredients = []string{
	"Fragrance", "Alcohol", "Sulfates", "Parabens", "Essential Oils",
	"Menthol", "Eucalyptus", "Citrus", "Formaldehyde",
}

// ingredientBenefits is matched by substring against a lower-cased INCI name, first match wins.
var ingredientBenefits = []struct {
	key     string
	benefit string
}{
	{"niacinamide", "controls oil production, minimizes pores, reduces inflammation"},
	{"salicylic acid", "exfoliates inside pores, reduces blackheads and acne"},
	{"hyaluronic acid", "deeply hydrates, plumps skin, reduces fine lines"},
	{"retinol", "accelerates cell turnover, reduces wrinkles, improves texture"},
	{"vitamin c", "brightens skin, fades dark spots, provides antioxidant protection"},
	{"ceramides", "strengthens skin barrier, locks in moisture"},
	{"glycerin", "attracts moisture to skin, maintains hydration"},
	{"zinc", "reduces inflammation, controls acne bacteria"},
}

const defaultIngredientBenefit = "provides skincare benefits for your skin type"

// categoriesFor returns the union of categories mapped from concerns, in first-seen order.
func categoriesFor(concerns []models.Concern) []string {
	var out []string

	seen := make(map[string]struct{})

	for _, c := range concerns {
		for _, cat := range concernCategories[c] {
			if _, ok := seen[cat]; ok {
				continue
			}

			seen[cat] = struct{}{}
			out = append(out, cat)
		}
	}

	return out
}

// beneficialIngredientNames returns the skin-type list (or the sensitive list when the skin type
// has none and the user is sensitive) followed by the concern lists, deduplicated case-insensitively.
func beneficialIngredientNames(skinType models.SkinType, sensitive bool, concerns []models.Concern) []string {
	var names []string

	if list, ok := skinTypeIngredients[skinType]; ok {
		names = append(names, list...)
	} else if sensitive {
		names = append(names, skinTypeIngredients[models.SkinTypeSensitive]...)
	}

	for _, c := range concerns {
		names = append(names, concernIngredients[c]...)
	}

	return dedupeFold(names)
}

func dedupeFold(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))

	for _, n := range names {
		key := strings.ToLower(n)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, n)
	}

	return out
}
