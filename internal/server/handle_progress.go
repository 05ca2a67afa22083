package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/progress"
)

// ProgressResponse is the response for GET /api/progress.
type ProgressResponse struct {
	MapID             string                   `json:"mapId"`
	Groups            []eventmap.GroupProgress `json:"groups"`
	CompletedEventIDs []string                 `json:"completedEventIds"`
	Total             int                      `json:"total"`
	Viewed            int                      `json:"viewed"`
	Percentage        int                      `json:"percentage"`
	Complete          bool                     `json:"complete"`
}

func progressResponse(mapID string, p eventmap.Progress) ProgressResponse {
	return ProgressResponse{
		MapID:             mapID,
		Groups:            p.Groups,
		CompletedEventIDs: p.CompletedEventIDs,
		Total:             p.Total(),
		Viewed:            p.Viewed(),
		Percentage:        p.Percentage(),
		Complete:          p.Complete(),
	}
}

func handleProgress(logger *slog.Logger, st Store, svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := eventmap.IdentityFromQuery(r.URL.Query())
		if id.Key() == "" {
			writeError(w, http.StatusBadRequest, "email query parameter required")
			return
		}
		mapID, err := resolveMapID(r.Context(), r, st)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		p, err := svc.Progress(r.Context(), id, mapID)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, progressResponse(mapID, p))
	}
}

// VisitorResponse is the response for GET /api/visitor.
type VisitorResponse struct {
	MapID     string `json:"mapId"`
	FirstTime bool   `json:"firstTime"`
}

// handleVisitor answers whether the blur overlay should show. A failed
// lookup still answers, treating the visitor as new.
func handleVisitor(logger *slog.Logger, st Store, svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mapID, err := resolveMapID(r.Context(), r, st)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		first, err := svc.FirstTimeVisitor(r.Context(), eventmap.IdentityFromQuery(r.URL.Query()), mapID)
		if err != nil {
			logger.WarnContext(r.Context(), "first-time check failed", "map_id", mapID, "error", err)
		}
		writeJSON(w, http.StatusOK, VisitorResponse{MapID: mapID, FirstTime: first})
	}
}

// CelebrationResponse is the response for the celebration endpoints.
type CelebrationResponse struct {
	MapID string `json:"mapId"`
	Seen  bool   `json:"seen"`
}

// CelebrationRequest is the request body for POST /api/celebration.
type CelebrationRequest struct {
	Identity eventmap.Identity `json:"identity"`
	MapID    string            `json:"mapId" validate:"required"`
}

func handleCelebrationSeen(logger *slog.Logger, st Store, svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mapID, err := resolveMapID(r.Context(), r, st)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		seen, err := svc.CelebrationSeen(r.Context(), eventmap.IdentityFromQuery(r.URL.Query()), mapID)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, CelebrationResponse{MapID: mapID, Seen: seen})
	}
}

func handleMarkCelebration(logger *slog.Logger, svc *progress.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CelebrationRequest
		if !readValid(w, r, &req) {
			return
		}
		if err := svc.MarkCelebrationSeen(r.Context(), req.Identity, req.MapID); err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		broker.Publish(req.Identity.Key(), SSEEvent{Type: "celebrated", MapID: req.MapID, Percentage: 100, Complete: true})
		writeJSON(w, http.StatusOK, CelebrationResponse{MapID: req.MapID, Seen: true})
	}
}
