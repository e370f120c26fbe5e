package models

// ItemType distinguishes product rows from ingredient rows in a retrieval batch.
type ItemType string

// Item types.
const (
	ItemTypeProduct    ItemType = "product"
	ItemTypeIngredient ItemType = "ingredient"
)

// MatchType records why an item was retrieved.
type MatchType string

// Match types, in retrieval stage order.
const (
	MatchSkinType   MatchType = "skin_type"
	MatchConcern    MatchType = "concern"
	MatchBeneficial MatchType = "ingredient-beneficial"
	MatchAvoid      MatchType = "ingredient-avoid"
	MatchGeneral    MatchType = "general"
)

// Source identifiers reported in citations.
const (
	SourceProducts    = "products_db"
	SourceIngredients = "ingredients_db"
)

// ItemMetadata annotates a RetrievedItem.
type ItemMetadata struct {
	Type       ItemType  `json:"type"`
	MatchType  MatchType `json:"match_type"`
	SkinType   string    `json:"skin_type,omitempty"`
	Concerns   []string  `json:"concerns,omitempty"`
	Category   string    `json:"category,omitempty"`
	Beneficial bool      `json:"beneficial,omitempty"`
	Avoid      bool      `json:"avoid,omitempty"`
}

// RetrievedItem is a scored, display-ready view of a product or ingredient row.
// It lives for one request only.
type RetrievedItem struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	SourceID string       `json:"source_id"`
	Score    float64      `json:"score"`
	Metadata ItemMetadata `json:"metadata"`
}

// Citation references a retrieved item used to build the context.
type Citation struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// ComposedContext is the bounded summary handed to the prompt builder.
type ComposedContext struct {
	Summary     string          `json:"summary"`
	Citations   []Citation      `json:"citations"`
	UsedResults []RetrievedItem `json:"used_results"`
	UserProfile string          `json:"user_profile"`
}

// Outcome tells which branch of the pipeline produced a response.
type Outcome string

// Pipeline outcomes.
const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFallback Outcome = "fallback"
	OutcomeManual   Outcome = "manual"
	OutcomeError    Outcome = "error"
)

// PipelineResponse is the single response shape produced by every pipeline branch.
// Citations and UsedResults are empty, never nil.
type PipelineResponse struct {
	Answer                   string          `json:"answer"`
	ContextSummary           string          `json:"context_summary"`
	UserProfile              string          `json:"user_profile"`
	Citations                []Citation      `json:"citations"`
	UsedResults              []RetrievedItem `json:"used_results"`
	RecommendationConfidence float64         `json:"recommendation_confidence"`
	RoutineSuggestion        string          `json:"routine_suggestion"`
	Outcome                  Outcome         `json:"outcome"`
}
