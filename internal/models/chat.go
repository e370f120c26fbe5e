package models

// AskRequest is the body of POST /api/chat/ask.
// When IntakeData is absent and IntakeID names a stored intake, the stored profile is used.
type AskRequest struct {
	Question       string      `json:"question" validate:"required,not_blank,max=4000,no_null_bytes"`
	IntakeData     *IntakeData `json:"intake_data,omitempty"`
	IntakeID       *string     `json:"intake_id,omitempty" validate:"omitempty,uuid"`
	Concern        *string     `json:"concern,omitempty" validate:"omitempty,max=100,no_null_bytes"`
	ConversationID *string     `json:"conversation_id,omitempty" validate:"omitempty,max=255,no_null_bytes"`
}

// ChatResponse is the response of POST /api/chat/ask.
type ChatResponse struct {
	Answer                   string     `json:"answer"`
	ContextSummary           string     `json:"context_summary"`
	UserProfile              string     `json:"user_profile"`
	Citations                []Citation `json:"citations"`
	RecommendationConfidence float64    `json:"recommendation_confidence"`
	RoutineSuggestion        string     `json:"routine_suggestion"`
	ConversationID           string     `json:"conversation_id"`
}

// DirectChatRequest is the body of POST /api/chat/direct.
type DirectChatRequest struct {
	Question            string  `json:"question" validate:"required,not_blank,max=4000,no_null_bytes"`
	ConversationHistory string  `json:"conversation_history,omitempty" validate:"max=20000,no_null_bytes"`
	ConversationID      *string `json:"conversation_id,omitempty" validate:"omitempty,max=255,no_null_bytes"`
}

// DirectChatResponse is the response of POST /api/chat/direct.
type DirectChatResponse struct {
	Answer         string `json:"answer"`
	Mode           string `json:"mode"`
	ConversationID string `json:"conversation_id"`
}

// QARequest is the body of POST /api/qa/.
type QARequest struct {
	Question   string      `json:"question" validate:"required,not_blank,max=4000,no_null_bytes"`
	Concern    *string     `json:"concern,omitempty" validate:"omitempty,max=100,no_null_bytes"`
	IntakeData *IntakeData `json:"intake_data,omitempty"`
}

// QAResponse is the response of POST /api/qa/.
type QAResponse struct {
	Answer         string   `json:"answer"`
	ContextSummary string   `json:"context_summary"`
	Citations      []string `json:"citations"`
}

// RoutineRequest is the body of POST /api/chat/routine.
type RoutineRequest struct {
	Products []string    `json:"products" validate:"required,min=1,max=20,dive,required,max=255,no_null_bytes"`
	SkinType string      `json:"skin_type,omitempty" validate:"omitempty,max=50,no_null_bytes"`
	Concerns ConcernList `json:"concerns,omitempty" validate:"omitempty,max=20,dive,max=100,no_null_bytes"`
}

// RoutineResponse is the response of POST /api/chat/routine.
type RoutineResponse struct {
	Routine string `json:"routine"`
}
