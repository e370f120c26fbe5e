package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bobeautician/advisor/internal/api/middleware"
	"github.com/bobeautician/advisor/internal/api/response"
	"github.com/bobeautician/advisor/internal/api/validation"
	apperrors "github.com/bobeautician/advisor/internal/errors"
	"github.com/bobeautician/advisor/internal/models"
)

// DirectChatErrorDetail is the problem detail when a direct chat cannot be answered.
const DirectChatErrorDetail = "I'm sorry, I'm having trouble with that question. Please try again."

// ChatService defines the chat operations behind /api/chat and /api/qa.
type ChatService interface {
	Ask(ctx context.Context, req *models.AskRequest) (*models.ChatResponse, error)
	Answer(ctx context.Context, req *models.QARequest) *models.QAResponse
	Direct(ctx context.Context, req *models.DirectChatRequest) (*models.DirectChatResponse, error)
	Routine(ctx context.Context, req *models.RoutineRequest) (*models.RoutineResponse, error)
}

// IntakeService stores intake forms.
type IntakeService interface {
	Submit(ctx context.Context, sub *models.IntakeSubmission) (*models.IntakeResponse, error)
}

// ChatHandler handles HTTP requests for the skincare chat.
type ChatHandler struct {
	chat    ChatService
	intakes IntakeService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat ChatService, intakes IntakeService) *ChatHandler {
	return &ChatHandler{chat: chat, intakes: intakes}
}

// Ask handles POST /api/chat/ask
// @Summary Ask for a personalized recommendation
// @Description Runs catalog retrieval and generation for the question and optional intake profile
// @Tags Chat
// @Accept json
// @Produce json
// @Success 200 {object} ChatResponse
// @Failure 400 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /api/chat/ask [post]
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.chat.Ask(r.Context(), &req)
	if err != nil {
		slog.ErrorContext(r.Context(), "chat ask failed", "error", err)
		response.RespondInternalServerError(w, middleware.InternalErrorDetail)

		return
	}

	response.RespondJSON(w, http.StatusOK, resp)
}

// Intake handles POST /api/chat/intake
func (h *ChatHandler) Intake(w http.ResponseWriter, r *http.Request) {
	var sub models.IntakeSubmission
	if !decodeAndValidate(w, r, &sub) {
		return
	}

	resp, err := h.intakes.Submit(r.Context(), &sub)
	if err != nil {
		slog.ErrorContext(r.Context(), "intake submission failed", "error", err)
		response.RespondInternalServerError(w, "Failed to process intake form")

		return
	}

	response.RespondJSON(w, http.StatusOK, resp)
}

// Direct handles POST /api/chat/direct: free-form conversation without catalog retrieval.
func (h *ChatHandler) Direct(w http.ResponseWriter, r *http.Request) {
	var req models.DirectChatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.chat.Direct(r.Context(), &req)
	if err != nil {
		slog.ErrorContext(r.Context(), "direct chat failed", "error", err)
		response.RespondInternalServerError(w, DirectChatErrorDetail)

		return
	}

	response.RespondJSON(w, http.StatusOK, resp)
}

// Routine handles POST /api/chat/routine
func (h *ChatHandler) Routine(w http.ResponseWriter, r *http.Request) {
	var req models.RoutineRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.chat.Routine(r.Context(), &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			response.RespondBadRequest(w, err.Error())

			return
		}

		slog.ErrorContext(r.Context(), "routine generation failed", "error", err)
		response.RespondInternalServerError(w, middleware.InternalErrorDetail)

		return
	}

	response.RespondJSON(w, http.StatusOK, resp)
}

// QA handles POST /api/qa/
// @Summary Answer a question without catalog retrieval
// @Tags QA
// @Accept json
// @Produce json
// @Success 200 {object} QAResponse
// @Failure 400 {object} ProblemDetails
// @Router /api/qa/ [post]
func (h *ChatHandler) QA(w http.ResponseWriter, r *http.Request) {
	var req models.QARequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	response.RespondJSON(w, http.StatusOK, h.chat.Answer(r.Context(), &req))
}

// decodeAndValidate decodes a JSON body into dst and validates it, writing the 400 response
// itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return false
	}

	if err := validation.ValidateStruct(dst); err != nil {
		validation.RespondValidationError(w, err)

		return false
	}

	return true
}
