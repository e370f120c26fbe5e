package recommend

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bobeautician/advisor/internal/models"
)

// NoProductsSummary is the summary used when retrieval produced nothing.
const NoProductsSummary = "No relevant products found for your specific needs."

// DefaultTokenBudget bounds the composed summary at roughly four characters per token.
const DefaultTokenBudget = 500

const (
	charsPerToken = 4

	maxPerfectLines    = 2
	maxTargetedLines   = 2
	maxBeneficialLines = 3
	maxAvoidLines      = 2

	protectStep = "4. Protect: Apply SPF 30+ sunscreen (AM only)"
)

// Compose groups items by match type and renders a bounded summary with a suggested routine.
// It is pure: identical inputs produce byte-identical output.
func Compose(items []models.RetrievedItem, tokenBudget int, profile *models.Profile) models.ComposedContext {
	if tokenBudget <= 0 {
		tokenBudget = DefaultTokenBudget
	}

	userProfile := FormatUserProfile(profile)

	if len(items) == 0 {
		return models.ComposedContext{
			Summary:     NoProductsSummary,
			Citations:   []models.Citation{},
			UsedResults: []models.RetrievedItem{},
			UserProfile: userProfile,
		}
	}

	var perfect, targeted, beneficial, avoid []models.RetrievedItem

	for _, it := range items {
		switch {
		case it.Metadata.MatchType == models.MatchSkinType:
			perfect = append(perfect, it)
		case it.Metadata.MatchType == models.MatchConcern:
			targeted = append(targeted, it)
		case it.Metadata.Type == models.ItemTypeIngredient && it.Metadata.Beneficial:
			beneficial = append(beneficial, it)
		case it.Metadata.Avoid:
			avoid = append(avoid, it)
		}
	}

	var parts []string

	if userProfile != "" {
		parts = append(parts, "YOUR PROFILE: "+userProfile)
	}

	parts = appendSection(parts, "\nPERFECT MATCHES FOR YOUR SKIN:", perfect, maxPerfectLines)
	parts = appendSection(parts, "\nTARGETED SOLUTIONS:", targeted, maxTargetedLines)
	parts = appendSection(parts, "\nKEY INGREDIENTS FOR YOU:", beneficial, maxBeneficialLines)
	parts = appendSection(parts, "\nINGREDIENTS TO AVOID:", avoid, maxAvoidLines)

	if len(perfect) > 0 || len(targeted) > 0 {
		parts = append(parts, "\nSUGGESTED ROUTINE:\n"+suggestRoutine(slices.Concat(perfect, targeted)))
	}

	summary := truncateChars(strings.Join(parts, "\n"), tokenBudget*charsPerToken)

	citations := make([]models.Citation, len(items))
	for i, it := range items {
		citations[i] = models.Citation{ID: it.ID, Source: it.SourceID, Score: it.Score}
	}

	return models.ComposedContext{
		Summary:     summary,
		Citations:   citations,
		UsedResults: items,
		UserProfile: userProfile,
	}
}

func appendSection(parts []string, header string, items []models.RetrievedItem, limit int) []string {
	if len(items) == 0 {
		return parts
	}

	parts = append(parts, header)
	for _, it := range items[:min(len(items), limit)] {
		parts = append(parts, "• "+it.Text)
	}

	return parts
}

// suggestRoutine picks the first cleanser, treatment and moisturizer among products and always
// closes with the sunscreen step.
func suggestRoutine(products []models.RetrievedItem) string {
	steps := []struct {
		label    string
		keywords []string
	}{
		{"1. Cleanse: ", []string{"cleanser"}},
		{"2. Treat: ", []string{"serum", "treatment", "acid"}},
		{"3. Moisturize: ", []string{"moisturizer"}},
	}

	var lines []string

	for _, step := range steps {
		for _, p := range products {
			if containsAny(strings.ToLower(p.Text), step.keywords) {
				lines = append(lines, step.label+productName(p.Text))

				break
			}
		}
	}

	lines = append(lines, protectStep)

	return strings.Join(lines, "\n")
}

// productName extracts "<brand> <name>" from the "Product:" line of a product display text.
func productName(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		if _, after, ok := strings.Cut(line, "Product: "); ok {
			return strings.TrimSpace(after)
		}
	}

	return ""
}

// truncateChars cuts s to limit characters and appends "..." when it was longer.
func truncateChars(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	return string([]rune(s)[:limit]) + "..."
}

// FormatUserProfile renders "<skin> skin | sensitive | concerns: a, b" from the parts present.
func FormatUserProfile(p *models.Profile) string {
	if p == nil {
		return ""
	}

	var parts []string

	if p.SkinType != "" {
		parts = append(parts, string(p.SkinType)+" skin")
	}

	switch p.Sensitive {
	case models.SensitivityYes:
		parts = append(parts, "sensitive")
	case models.SensitivityNo:
		parts = append(parts, "non-sensitive")
	}

	if len(p.Concerns) > 0 {
		parts = append(parts, "concerns: "+joinConcerns(p.Concerns))
	}

	return strings.Join(parts, " | ")
}
