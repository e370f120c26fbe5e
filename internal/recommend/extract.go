// Package recommend turns a question and an optional skin profile into a personalized
// recommendation: rule-based catalog retrieval, context composition, prompt building and
// orchestration of the completion call.
package recommend

import (
	"slices"
	"strings"

	"github.com/bobeautician/advisor/internal/models"
)

// Extract derives the skin type and the ordered, duplicate-free concern list for a request.
//
// The profile's skin type wins; otherwise the first known skin type appearing in the question
// is used. Profile concerns come first, then every keyword group matched in the question, then
// the explicit concern if it is not already present.
func Extract(question string, profile *models.Profile, concern string) (models.SkinType, []models.Concern) {
	q := strings.ToLower(question)

	var (
		skinType models.SkinType
		concerns []models.Concern
	)

	if profile != nil {
		skinType = models.SkinType(normalize(string(profile.SkinType)))

		for _, c := range profile.Concerns {
			if c = models.Concern(normalize(string(c))); c != "" && !slices.Contains(concerns, c) {
				concerns = append(concerns, c)
			}
		}
	}

	if skinType == "" && q != "" {
		for _, st := range models.SkinTypes {
			if strings.Contains(q, string(st)) {
				skinType = st

				break
			}
		}
	}

	if q != "" {
		for _, group := range concernKeywords {
			if slices.Contains(concerns, group.concern) {
				continue
			}

			if containsAny(q, group.keywords) {
				concerns = append(concerns, group.concern)
			}
		}
	}

	if c := models.Concern(normalize(concern)); c != "" && !slices.Contains(concerns, c) {
		concerns = append(concerns, c)
	}

	return skinType, concerns
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}

	return false
}
