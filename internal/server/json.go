package server

import (
	"errors"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/validation"
)

// maxBodyBytes caps request bodies; the largest legitimate body is a full
// event set replace.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(v)
}

// readValid decodes the body into v and runs the struct validator. It
// writes the 400 itself and reports whether the handler may continue.
func readValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := readJSON(r, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validation.ValidateStruct(v); err != nil {
		writeValidation(w, err)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeValidation(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

// writeServiceError maps domain errors to status codes. Anything it does
// not recognise is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, eventmap.ErrPersistence):
		logger.WarnContext(r.Context(), "storage failure", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable, try again")
	case errors.Is(err, eventmap.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, eventmap.ErrValidation):
		writeValidation(w, err)
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
