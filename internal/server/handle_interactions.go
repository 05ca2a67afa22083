package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/progress"
)

// InteractionRequest is the request body for POST /api/interactions: one
// committed open→close view of an event.
type InteractionRequest struct {
	Identity            eventmap.Identity `json:"identity"`
	EventID             string            `json:"eventId" validate:"required"`
	MapID               string            `json:"mapId"`
	ViewDuration        float64           `json:"viewDuration" validate:"gte=0"`
	AudioListenDuration float64           `json:"audioListenDuration" validate:"gte=0"`
}

func handleRecordInteraction(logger *slog.Logger, svc *progress.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req InteractionRequest
		if !readValid(w, r, &req) {
			return
		}

		res, err := svc.Record(r.Context(), eventmap.Interaction{
			Identity:            req.Identity,
			EventID:             req.EventID,
			MapID:               req.MapID,
			ViewDuration:        req.ViewDuration,
			AudioListenDuration: req.AudioListenDuration,
		})
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		if res.Progress != nil {
			broker.Publish(req.Identity.Key(), progressEvent(req.MapID, *res.Progress))
		}
		writeJSON(w, http.StatusOK, res)
	}
}
