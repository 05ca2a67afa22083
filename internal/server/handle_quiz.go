package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/quiz"
)

// QuizQuestionsResponse is the response for GET /api/quiz/questions.
type QuizQuestionsResponse struct {
	Questions []eventmap.PublicQuestion `json:"questions"`
}

func handleQuizQuestions(logger *slog.Logger, engine *quiz.Engine, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}

		qs, err := engine.Questions(r.Context(), limit)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, QuizQuestionsResponse{Questions: qs})
	}
}

func handleQuizSubmit(logger *slog.Logger, engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quiz.Submission
		if !readValid(w, r, &req) {
			return
		}
		res, err := engine.Submit(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}
