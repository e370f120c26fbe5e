package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/bobeautician/advisor/internal/errors"
	"github.com/bobeautician/advisor/internal/models"
	"github.com/bobeautician/advisor/internal/observability"
)

const tracerName = "github.com/bobeautician/advisor/internal/recommend"

const (
	querySnippetChars = 100
	errorDetailChars  = 100
)

// ErrorAnswer is returned to the user whenever the pipeline fails unexpectedly.
const ErrorAnswer = "I'm experiencing technical difficulties processing your request. " +
	"Please try again in a moment, or contact our support team for assistance. " +
	"Your skin health is important to us!"

// ItemRetriever produces a retrieval batch for a question.
type ItemRetriever interface {
	Retrieve(ctx context.Context, query string, profile *models.Profile, concern string, k int) ([]models.RetrievedItem, error)
}

// AnswerGenerator turns a prompt into answer text. Service failures are reported as fallback
// text; an error means the caller's context ended before an answer was produced.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PipelineConfig tunes a Pipeline. Zero values fall back to defaults.
type PipelineConfig struct {
	DefaultK    int
	TokenBudget int
	Metrics     observability.PipelineMetrics
}

// PipelineRequest is one recommendation request.
type PipelineRequest struct {
	Question string
	Profile  *models.Profile
	Concern  string
	K        int
}

// Pipeline runs retrieve, compose, prompt and generate for a question and always produces a response.
type Pipeline struct {
	retriever   ItemRetriever
	generator   AnswerGenerator
	defaultK    int
	tokenBudget int
	metrics     observability.PipelineMetrics
	tracer      trace.Tracer
}

// NewPipeline creates a pipeline.
func NewPipeline(retriever ItemRetriever, generator AnswerGenerator, cfg PipelineConfig) *Pipeline {
	if cfg.DefaultK <= 0 {
		cfg.DefaultK = DefaultK
	}

	if cfg.TokenBudget <= 0 {
		cfg.TokenBudget = DefaultTokenBudget
	}

	return &Pipeline{
		retriever:   retriever,
		generator:   generator,
		defaultK:    cfg.DefaultK,
		tokenBudget: cfg.TokenBudget,
		metrics:     cfg.Metrics,
		tracer:      otel.Tracer(tracerName),
	}
}

// Run executes the pipeline. It never returns an error: retrieval failures and empty batches
// give the fallback response, generation failures the manual response and anything unexpected
// (including panics) the error response.
func (p *Pipeline) Run(ctx context.Context, req PipelineRequest) (resp models.PipelineResponse) {
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "recommend.Pipeline.Run")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			slog.ErrorContext(ctx, "recommendation pipeline panicked", "error", err)
			span.RecordError(err)
			resp = errorResponse(req, err)
		}

		span.SetAttributes(attribute.String("pipeline.outcome", string(resp.Outcome)))

		if p.metrics != nil {
			p.metrics.RecordRun(ctx, string(resp.Outcome), time.Since(start))

			if resp.Outcome == models.OutcomeSuccess {
				p.metrics.RecordConfidence(ctx, resp.RecommendationConfidence)
			}
		}
	}()

	k := req.K
	if k <= 0 {
		k = p.defaultK
	}

	slog.InfoContext(ctx, "starting recommendation pipeline", "query", truncateChars(req.Question, 50), "k", k)

	items, err := p.retrieve(ctx, req, k)
	if err != nil {
		var retrievalErr *apperrors.RetrievalError
		if !errors.As(err, &retrievalErr) {
			slog.ErrorContext(ctx, "recommendation pipeline failed", "error", err)
			span.SetStatus(codes.Error, err.Error())

			return errorResponse(req, err)
		}

		slog.WarnContext(ctx, "retrieval failed, using fallback", "stage", retrievalErr.Stage, "error", err)

		if p.metrics != nil {
			p.metrics.RecordRetrievalError(ctx, retrievalErr.Stage)
		}

		items = nil
	}

	if p.metrics != nil {
		p.metrics.RecordRetrievalItems(ctx, len(items))
	}

	if len(items) == 0 {
		slog.WarnContext(ctx, "no results retrieved for query")

		return fallbackResponse(req)
	}

	_, composeSpan := p.tracer.Start(ctx, "recommend.Compose")
	composed := Compose(items, p.tokenBudget, req.Profile)
	composeSpan.SetAttributes(
		attribute.Int("compose.citations", len(composed.Citations)),
		attribute.Int("compose.summary_chars", utf8.RuneCountInString(composed.Summary)),
	)
	composeSpan.End()

	prompt := BuildQAPrompt(req.Question, composed.Summary, req.Profile)

	outcome := models.OutcomeSuccess

	answer, err := p.generate(ctx, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "answer generation failed, using manual response", "error", err)

		answer = manualAnswer(composed, req.Profile)
		outcome = models.OutcomeManual
	}

	return models.PipelineResponse{
		Answer:                   answer,
		ContextSummary:           composed.Summary,
		UserProfile:              composed.UserProfile,
		Citations:                composed.Citations,
		UsedResults:              composed.UsedResults,
		RecommendationConfidence: Confidence(items, req.Profile),
		RoutineSuggestion:        ExtractRoutine(composed.Summary),
		Outcome:                  outcome,
	}
}

func (p *Pipeline) retrieve(ctx context.Context, req PipelineRequest, k int) ([]models.RetrievedItem, error) {
	ctx, span := p.tracer.Start(ctx, "recommend.Retrieve", trace.WithAttributes(attribute.Int("retrieve.k", k)))
	defer span.End()

	items, err := p.retriever.Retrieve(ctx, req.Question, req.Profile, req.Concern, k)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "retrieval failed")

		return nil, fmt.Errorf("retrieve: %w", err)
	}

	span.SetAttributes(attribute.Int("retrieve.items", len(items)))

	return items, nil
}

func (p *Pipeline) generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "recommend.Generate")
	defer span.End()

	answer, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")

		return "", fmt.Errorf("generate: %w", err)
	}

	return answer, nil
}

// querySnippet returns the first 100 characters of the question, with "..." when cut.
func querySnippet(question string) string {
	return truncateChars(question, querySnippetChars)
}

// fallbackProfileText renders " for oily skin with acne concerns" from the parts present.
func fallbackProfileText(p *models.Profile) string {
	if p == nil {
		return ""
	}

	var b strings.Builder

	if p.SkinType != "" {
		fmt.Fprintf(&b, " for %s skin", p.SkinType)
	}

	if len(p.Concerns) > 0 {
		fmt.Fprintf(&b, " with %s concerns", joinConcerns(p.Concerns))
	}

	return b.String()
}

func fallbackResponse(req PipelineRequest) models.PipelineResponse {
	snippet := querySnippet(req.Question)

	lines := []string{
		"I couldn't find specific products" + fallbackProfileText(req.Profile) +
			` in our database for the query: "` + snippet + `".`,
		"Please try:",
		"1. Rephrasing your question",
		"2. Being more specific about your skin concerns",
		"3. Checking if you've completed your skin profile",
		"",
		"I'm here to help with personalized recommendations!",
	}

	return models.PipelineResponse{
		Answer:         strings.Join(lines, "\n\n"),
		ContextSummary: `No relevant products found in database for query: "` + snippet + `".`,
		UserProfile:    ProfileSummary(req.Profile),
		Citations:      []models.Citation{},
		UsedResults:    []models.RetrievedItem{},
		Outcome:        models.OutcomeFallback,
	}
}

func manualAnswer(composed models.ComposedContext, profile *models.Profile) string {
	userProfile := composed.UserProfile
	if userProfile == "" {
		userProfile = ProfileSummary(profile)
	}

	var parts []string

	if userProfile != "" {
		parts = append(parts, fmt.Sprintf("Based on your profile (%s), here are my recommendations:", userProfile))
	}

	if composed.Summary != "" {
		parts = append(parts, composed.Summary)
	}

	parts = append(parts,
		"\n   Important: Always patch test new products and introduce one at a time.",
		"\n   For persistent skin issues, consider consulting a dermatologist.",
	)

	return strings.Join(parts, "\n\n")
}

func errorResponse(req PipelineRequest, err error) models.PipelineResponse {
	var detail string
	if err != nil {
		detail = err.Error()
		if utf8.RuneCountInString(detail) > errorDetailChars {
			detail = string([]rune(detail)[:errorDetailChars])
		}
	}

	return models.PipelineResponse{
		Answer:         ErrorAnswer,
		ContextSummary: `Error occurred while processing query: "` + querySnippet(req.Question) + `" Details: ` + detail + "...",
		UserProfile:    ProfileSummary(req.Profile),
		Citations:      []models.Citation{},
		UsedResults:    []models.RetrievedItem{},
		Outcome:        models.OutcomeError,
	}
}
