package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"timed-quiz-service/internal/domain"
)

const maxGradeBody = 1 << 20

// QuizService is the set of use cases the HTTP layer exposes.
type QuizService interface {
	Questions(ctx context.Context) ([]domain.PublicQuestion, error)
	Grade(ctx context.Context, answers []domain.Answer) (domain.GradeResponse, error)
}

// QuizHandler serves the question set and grades submissions.
type QuizHandler struct {
	service QuizService
	decoder *gradeDecoder
	log     zerolog.Logger
}

func NewQuizHandler(service QuizService, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		service: service,
		decoder: newGradeDecoder(),
		log:     log.With().Str("component", "quiz_handler").Logger(),
	}
}

// GetQuiz handles GET /api/quiz.
func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.Questions(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("fetch quiz questions")
		writeError(w, http.StatusInternalServerError, "Failed to fetch quiz questions")
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// PostGrade handles POST /api/grade.
func (h *QuizHandler) PostGrade(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxGradeBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	answers, issues, err := h.decoder.Decode(body)
	if err != nil {
		h.log.Error().Err(err).Msg("decode grade request")
		writeError(w, http.StatusInternalServerError, "Failed to grade quiz")
		return
	}
	if len(issues) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request format", Details: issues})
		return
	}

	resp, err := h.service.Grade(r.Context(), answers)
	if err != nil {
		h.log.Error().Err(err).Msg("grade quiz")
		writeError(w, http.StatusInternalServerError, "Failed to grade quiz")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Root answers GET / so load balancers and humans can see the API is up.
func (h *QuizHandler) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
	_, _ = w.Write([]byte("Quiz API is running"))
}
