package recommend

import (
	"fmt"
	"strings"

	"github.com/bobeautician/advisor/internal/models"
)

const maxListedIngredients = 5

// formatProductText renders the display block for a product. Skin type and concern matches
// get a "PERFECT MATCH: " or "TARGETED: " prefix.
func formatProductText(p models.Product, match models.MatchType) string {
	var prefix string

	switch match {
	case models.MatchSkinType:
		prefix = "PERFECT MATCH: "
	case models.MatchConcern:
		prefix = "TARGETED: "
	}

	ingredients := p.Ingredients
	if len(ingredients) > maxListedIngredients {
		ingredients = ingredients[:maxListedIngredients]
	}

	ingredientsStr := strings.Join(ingredients, ", ")
	if extra := len(p.Ingredients) - maxListedIngredients; extra > 0 {
		ingredientsStr += fmt.Sprintf(" (+ %d more)", extra)
	}

	rating := "Rating: Not rated"
	if p.Rank != nil && *p.Rank != 0 {
		rating = fmt.Sprintf("Rating: %.1f/5", *p.Rank)
	}

	name := strings.TrimSpace(p.Brand + " " + p.Name)

	var b strings.Builder

	fmt.Fprintf(&b, "%sProduct: %s\n", prefix, name)
	fmt.Fprintf(&b, "Category: %s\n", p.Category)
	fmt.Fprintf(&b, "Suitable for: %s skin\n", strings.Join(p.SkinTypes, ", "))
	fmt.Fprintf(&b, "Key ingredients: %s\n", ingredientsStr)
	b.WriteString(rating)

	return b.String()
}

// ingredientBenefit returns the benefit blurb for an ingredient name.
func ingredientBenefit(name string) string {
	n := strings.ToLower(name)
	for _, ib := range ingredientBenefits {
		if strings.Contains(n, ib.key) {
			return ib.benefit
		}
	}

	return defaultIngredientBenefit
}

func formatIngredientText(name string, skinType models.SkinType, concerns []models.Concern) string {
	var parts []string

	if skinType != "" {
		parts = append(parts, fmt.Sprintf("suitable for %s skin", skinType.Title()))
	}

	if len(concerns) > 0 {
		parts = append(parts, "targets "+joinConcerns(concerns))
	}

	text := fmt.Sprintf("BENEFICIAL INGREDIENT: %s - %s", name, ingredientBenefit(name))
	if len(parts) > 0 {
		text += " (" + strings.Join(parts, "; ") + ")"
	}

	return text
}

func formatAvoidText(name string) string {
	return fmt.Sprintf("AVOID: %s - may irritate sensitive skin", name)
}

func joinConcerns(concerns []models.Concern) string {
	return strings.Join(models.ConcernStrings(concerns), ", ")
}
