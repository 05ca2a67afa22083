package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/eventmap/internal/eventmap"
)

// AdminMapRequest is the request body for creating or updating a map.
type AdminMapRequest struct {
	Name              string                 `json:"name" validate:"required,max=120"`
	Style             eventmap.Style         `json:"style" validate:"required,mapstyle"`
	Description       string                 `json:"description" validate:"max=2000"`
	Config            *eventmap.VisualConfig `json:"config"`
	BlurZones         []eventmap.BlurZone    `json:"blurZones"`
	CompletionMessage string                 `json:"completionMessage" validate:"max=500"`
}

func (req AdminMapRequest) definition(id string) eventmap.MapDefinition {
	m := eventmap.MapDefinition{
		ID:                id,
		Name:              strings.TrimSpace(req.Name),
		Style:             req.Style,
		Description:       req.Description,
		BlurZones:         req.BlurZones,
		CompletionMessage: req.CompletionMessage,
	}
	if req.Config != nil {
		m.Config = *req.Config
	} else {
		m.Config = eventmap.DefaultVisualConfig()
	}
	return m
}

// AdminEventsRequest replaces the full event set of a map.
type AdminEventsRequest struct {
	Events []eventmap.EventMarker `json:"events" validate:"required"`
}

// AdminRoutesRequest replaces the full route set of a map.
type AdminRoutesRequest struct {
	Routes []eventmap.Route `json:"routes" validate:"required"`
}

// AdminPositionRequest is the committed result of an editor drag, in
// percent of the map.
type AdminPositionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

func handleAdminListMaps(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maps, err := st.ListMaps(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, maps)
	}
}

func handleAdminCreateMap(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminMapRequest
		if !readValid(w, r, &req) {
			return
		}
		m, err := st.CreateMap(r.Context(), req.definition(""))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		logger.InfoContext(r.Context(), "map created", "map_id", m.ID, "admin_session", adminFrom(r).ID)
		writeJSON(w, http.StatusCreated, m)
	}
}

// handleAdminGetMap returns the map with its events, routes and rendered
// route paths, as the editor previews it.
func handleAdminGetMap(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, err := st.Catalog(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, catalogResponse(cat))
	}
}

func handleAdminUpdateMap(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminMapRequest
		if !readValid(w, r, &req) {
			return
		}
		m, err := st.UpdateMap(r.Context(), req.definition(chi.URLParam(r, "id")))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func handleAdminDeleteMap(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := st.DeleteMap(r.Context(), id); err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		logger.InfoContext(r.Context(), "map deleted", "map_id", id, "admin_session", adminFrom(r).ID)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleAdminActivateMap(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := st.SetActiveMap(r.Context(), id); err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		logger.InfoContext(r.Context(), "map activated", "map_id", id, "admin_session", adminFrom(r).ID)
		reg, err := st.MapRegistry(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, reg)
	}
}

func handleAdminReplaceEvents(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminEventsRequest
		if !readValid(w, r, &req) {
			return
		}
		events, err := st.ReplaceEvents(r.Context(), chi.URLParam(r, "id"), req.Events)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, AdminEventsRequest{Events: events})
	}
}

func handleAdminReplaceRoutes(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminRoutesRequest
		if !readValid(w, r, &req) {
			return
		}
		routes, err := st.ReplaceRoutes(r.Context(), chi.URLParam(r, "id"), req.Routes)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, AdminRoutesRequest{Routes: routes})
	}
}

func handleAdminMoveEvent(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminPositionRequest
		if !readValid(w, r, &req) {
			return
		}
		e, err := st.UpdateEventPosition(r.Context(),
			chi.URLParam(r, "id"), chi.URLParam(r, "eventID"),
			eventmap.Point{X: *req.X, Y: *req.Y})
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}
