package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/route"
)

// CatalogResponse is the response for GET /api/catalog.
type CatalogResponse struct {
	Map    eventmap.MapDefinition `json:"map"`
	Events []eventmap.EventMarker `json:"events"`
	Routes []eventmap.Route       `json:"routes"`
	Paths  []route.Path           `json:"paths"`
}

func catalogResponse(cat eventmap.Catalog) CatalogResponse {
	return CatalogResponse{
		Map:    cat.Map,
		Events: cat.Events,
		Routes: cat.Routes,
		Paths:  route.Render(route.StrategyFor(cat.Map.Style), cat.Routes, cat.Events),
	}
}

// resolveMapID returns the mapId query parameter, or the active map when
// the parameter is absent.
func resolveMapID(ctx context.Context, r *http.Request, st Store) (string, error) {
	if id := r.URL.Query().Get("mapId"); id != "" {
		return id, nil
	}
	m, err := st.ActiveMap(ctx)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func handleCatalog(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, err := st.Catalog(r.Context(), r.URL.Query().Get("mapId"))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, catalogResponse(cat))
	}
}

func handleMapRegistry(logger *slog.Logger, st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg, err := st.MapRegistry(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, reg)
	}
}
