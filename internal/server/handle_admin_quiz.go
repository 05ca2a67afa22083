package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/eventmap/internal/eventmap"
)

// AdminQuestionRequest is the request body for creating a quiz question.
type AdminQuestionRequest struct {
	Text          string   `json:"text" validate:"required,max=500"`
	Options       []string `json:"options" validate:"min=2,max=8,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Category      string   `json:"category"`
}

// AdminQuestionStatusRequest retires or revives a question.
type AdminQuestionStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func handleAdminListQuestions(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := st.ListQuestions(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

func handleAdminCreateQuestion(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminQuestionRequest
		if !readValid(w, r, &req) {
			return
		}
		q, err := st.CreateQuestion(r.Context(), eventmap.QuizQuestion{
			Text:          strings.TrimSpace(req.Text),
			Options:       req.Options,
			CorrectAnswer: req.CorrectAnswer,
			Category:      req.Category,
		})
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

func handleAdminSetQuestionStatus(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminQuestionStatusRequest
		if !readValid(w, r, &req) {
			return
		}
		q, err := st.SetQuestionActive(r.Context(), chi.URLParam(r, "id"), *req.Active)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func handleAdminDeleteQuestion(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.DeleteQuestion(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
