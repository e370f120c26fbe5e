package recommend

import (
	"math"
	"strings"

	"github.com/bobeautician/advisor/internal/models"
)

const (
	profileBonus      = 0.1
	perMatchBonus     = 0.1
	maxMatchBonus     = 0.3
	maxSummaryParts   = 4
	maxSummaryConcern = 2
)

// Confidence scores a retrieval batch in [0, 1], rounded to two decimals.
// It is 0 for an empty batch and otherwise the mean item score plus a bonus for a profile
// skin type and for each skin type match (capped).
func Confidence(items []models.RetrievedItem, profile *models.Profile) float64 {
	if len(items) == 0 {
		return 0
	}

	var (
		sum     float64
		matches int
	)

	for _, it := range items {
		sum += it.Score
		if it.Metadata.MatchType == models.MatchSkinType {
			matches++
		}
	}

	score := sum / float64(len(items))

	if profile.HasSkinType() {
		score += profileBonus
	}

	score += math.Min(perMatchBonus*float64(matches), maxMatchBonus)
	score = math.Max(0, math.Min(score, 1))

	return math.Round(score*100) / 100
}

// ExtractRoutine pulls the numbered steps that follow the "SUGGESTED ROUTINE" marker in a summary.
// Bullets and blank lines are skipped; any other line ends the scan once a step was collected.
func ExtractRoutine(summary string) string {
	var (
		steps     []string
		capturing bool
	)

	for line := range strings.SplitSeq(summary, "\n") {
		if strings.Contains(line, "SUGGESTED ROUTINE") {
			capturing = true

			continue
		}

		if !capturing || strings.TrimSpace(line) == "" {
			continue
		}

		if hasStepNumber(line) {
			steps = append(steps, strings.TrimSpace(line))

			continue
		}

		if !strings.HasPrefix(line, "•") && !strings.HasPrefix(line, "-") && len(steps) > 0 {
			break
		}
	}

	return strings.Join(steps, "\n")
}

func hasStepNumber(line string) bool {
	for _, p := range []string{"1.", "2.", "3.", "4."} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}

	return false
}

// ProfileSummary is the short profile label used on fallback and error responses:
// skin type, "sensitive" when flagged, and at most two concerns.
func ProfileSummary(p *models.Profile) string {
	if p == nil {
		return ""
	}

	var parts []string

	if p.SkinType != "" {
		parts = append(parts, string(p.SkinType))
	}

	if p.IsSensitive() {
		parts = append(parts, "sensitive")
	}

	for _, c := range p.Concerns[:min(len(p.Concerns), maxSummaryConcern)] {
		parts = append(parts, string(c))
	}

	return strings.Join(parts[:min(len(parts), maxSummaryParts)], " | ")
}
