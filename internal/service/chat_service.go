package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/bobeautician/advisor/internal/errors"
	"github.com/bobeautician/advisor/internal/models"
	"github.com/bobeautician/advisor/internal/recommend"
)

// QAFailureAnswer is returned by Answer when no completion could be produced.
const QAFailureAnswer = "I apologize, but I'm having trouble processing your request right now. " +
	"Please try again or contact support."

// ModeFreeform is the mode reported by direct chat responses.
const ModeFreeform = "freeform_chat"

// PipelineRunner runs the recommendation pipeline for one question.
type PipelineRunner interface {
	Run(ctx context.Context, req recommend.PipelineRequest) models.PipelineResponse
}

// IntakeLookup resolves a stored intake form by ID.
type IntakeLookup interface {
	Get(ctx context.Context, id string) (*models.IntakeData, error)
}

// ChatService answers user questions, either through the recommendation pipeline or with a
// direct completion.
type ChatService struct {
	pipeline  PipelineRunner
	generator recommend.AnswerGenerator
	intakes   IntakeLookup
	k         int
}

// NewChatService creates a new chat service. k is the retrieval size for Ask; 0 uses the
// pipeline default. intakes may be nil when intake_id lookups are not supported.
func NewChatService(pipeline PipelineRunner, generator recommend.AnswerGenerator, intakes IntakeLookup, k int) *ChatService {
	return &ChatService{pipeline: pipeline, generator: generator, intakes: intakes, k: k}
}

// Ask runs the recommendation pipeline. Inline intake data wins over a stored intake_id.
// The conversation ID is echoed, or generated when the client did not send one.
func (s *ChatService) Ask(ctx context.Context, req *models.AskRequest) (*models.ChatResponse, error) {
	slog.InfoContext(ctx, "received chat request", "question", truncate(req.Question, 100))

	intake, err := s.resolveIntake(ctx, req.IntakeData, req.IntakeID)
	if err != nil {
		return nil, err
	}

	conversationID, err := conversationIDOrNew(req.ConversationID)
	if err != nil {
		return nil, err
	}

	resp := s.pipeline.Run(ctx, recommend.PipelineRequest{
		Question: req.Question,
		Profile:  intake.Profile(),
		Concern:  deref(req.Concern),
		K:        s.k,
	})

	slog.InfoContext(ctx, "generated response",
		"outcome", string(resp.Outcome),
		"confidence", resp.RecommendationConfidence,
	)

	return &models.ChatResponse{
		Answer:                   resp.Answer,
		ContextSummary:           resp.ContextSummary,
		UserProfile:              resp.UserProfile,
		Citations:                resp.Citations,
		RecommendationConfidence: resp.RecommendationConfidence,
		RoutineSuggestion:        resp.RoutineSuggestion,
		ConversationID:           conversationID,
	}, nil
}

// Answer produces a single consultation answer without catalog retrieval. The context line
// echoes the question, concern and profile so clients can show what was considered.
func (s *ChatService) Answer(ctx context.Context, req *models.QARequest) *models.QAResponse {
	contextLine := qaContext(req)

	answer, err := s.generator.Generate(ctx, recommend.BuildQAPrompt(req.Question, contextLine, req.IntakeData.Profile()))
	if err != nil {
		slog.WarnContext(ctx, "qa generation failed", "error", err)

		answer = QAFailureAnswer
	}

	return &models.QAResponse{
		Answer:         answer,
		ContextSummary: contextLine,
		Citations:      []string{},
	}
}

// Direct answers conversationally with the free-form prompt. An error means ctx ended before
// the completion service answered.
func (s *ChatService) Direct(ctx context.Context, req *models.DirectChatRequest) (*models.DirectChatResponse, error) {
	slog.InfoContext(ctx, "direct chat request", "question", truncate(req.Question, 100))

	conversationID, err := conversationIDOrNew(req.ConversationID)
	if err != nil {
		return nil, err
	}

	answer, err := s.generator.Generate(ctx, recommend.BuildFreeformPrompt(req.Question, req.ConversationHistory))
	if err != nil {
		return nil, fmt.Errorf("direct chat: %w", err)
	}

	return &models.DirectChatResponse{
		Answer:         answer,
		Mode:           ModeFreeform,
		ConversationID: conversationID,
	}, nil
}

// Routine asks for a daily routine built around the given products. Blank product names are
// dropped; a request left with none is a validation error.
func (s *ChatService) Routine(ctx context.Context, req *models.RoutineRequest) (*models.RoutineResponse, error) {
	products := make([]string, 0, len(req.Products))

	for _, p := range req.Products {
		if p = strings.TrimSpace(p); p != "" {
			products = append(products, p)
		}
	}

	if len(products) == 0 {
		return nil, apperrors.NewValidationError("products", "At least one product name is required")
	}

	skinType := strings.TrimSpace(req.SkinType)
	if skinType == "" {
		skinType = "Not specified"
	}

	concerns := []string(req.Concerns)
	if len(concerns) == 0 {
		concerns = []string{"none"}
	}

	routine, err := s.generator.Generate(ctx, recommend.BuildRoutinePrompt(products, skinType, concerns))
	if err != nil {
		return nil, fmt.Errorf("routine: %w", err)
	}

	return &models.RoutineResponse{Routine: routine}, nil
}

// resolveIntake prefers inline data. A stored intake that is unknown or expired is ignored.
func (s *ChatService) resolveIntake(ctx context.Context, inline *models.IntakeData, id *string) (*models.IntakeData, error) {
	if inline != nil || id == nil || s.intakes == nil {
		return inline, nil
	}

	stored, err := s.intakes.Get(ctx, *id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			slog.InfoContext(ctx, "intake not found, answering without profile", "intake_id", *id)

			return nil, nil //nolint:nilnil // answer without a profile
		}

		return nil, fmt.Errorf("resolve intake: %w", err)
	}

	return stored, nil
}

func qaContext(req *models.QARequest) string {
	var b strings.Builder

	b.WriteString("Question received: ")
	b.WriteString(req.Question)

	if c := deref(req.Concern); c != "" {
		b.WriteString(" | Concern: ")
		b.WriteString(c)
	}

	if d := req.IntakeData; d != nil {
		fmt.Fprintf(&b, " | User Profile - Skin: %s, Sensitive: %s, Concerns: [%s]",
			orUnknown(d.SkinType), orUnknown(d.Sensitive), strings.Join(d.Concerns, ", "))
	}

	return b.String()
}

func conversationIDOrNew(id *string) (string, error) {
	if id != nil && *id != "" {
		return *id, nil
	}

	generated, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate conversation id: %w", err)
	}

	return generated.String(), nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}

	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}

	return string(r[:limit]) + "..."
}
