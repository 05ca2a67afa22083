package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/eventmap/internal/eventmap"
)

// HeartbeatRequest is the body of PUT /api/sessions/{sessionID}. The final
// heartbeat of a page may arrive as a POST beacon to the same path.
type HeartbeatRequest struct {
	Identity       eventmap.Identity `json:"identity"`
	MapID          string            `json:"mapId" validate:"required"`
	TotalDuration  float64           `json:"totalDuration" validate:"gte=0"`
	ActiveDuration float64           `json:"activeDuration" validate:"gte=0,ltefield=TotalDuration"`
	Final          bool              `json:"final"`
}

func handleSessionHeartbeat(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req HeartbeatRequest
		if !readValid(w, r, &req) {
			return
		}

		err := st.UpsertSessionHeartbeat(r.Context(), eventmap.Heartbeat{
			SessionID:      chi.URLParam(r, "sessionID"),
			Identity:       req.Identity,
			MapID:          req.MapID,
			TotalDuration:  req.TotalDuration,
			ActiveDuration: req.ActiveDuration,
			Final:          req.Final,
		})
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGetSession(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := st.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}
