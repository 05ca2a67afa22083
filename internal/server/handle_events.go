package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/progress"
)

// handleProgressEvents streams a visitor's progress on one map. The
// current snapshot is sent first so a reconnecting client needs no
// separate fetch.
func handleProgressEvents(logger *slog.Logger, st Store, svc *progress.Service, broker *Broker) http.HandlerFunc {
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
		snapshot, err := svc.Progress(r.Context(), id, mapID)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		ch := broker.Subscribe(id.Key(), mapID)
		defer broker.Unsubscribe(id.Key(), mapID, ch)

		first, _ := json.Marshal(progressEvent(mapID, snapshot))
		fmt.Fprintf(w, "event: progress\ndata: %s\n\n", first)
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
