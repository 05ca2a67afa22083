package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/geometry"
)

func putEvent(ctx context.Context, q querier, e eventmap.EventMarker) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO events (id, map_id, status, data) VALUES (?, ?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET map_id = excluded.map_id, status = excluded.status, data = excluded.data`,
		e.ID, e.MapID, e.Status, string(data),
	)
	return err
}

func putRoute(ctx context.Context, q querier, r eventmap.Route) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO routes (id, map_id, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET map_id = excluded.map_id, data = excluded.data`,
		r.ID, r.MapID, string(data),
	)
	return err
}

// claimIDs rejects ids that another map already owns. Ids are stable for the
// life of a record, so a replace may never move one between maps.
func claimIDs(ctx context.Context, q querier, table, mapID string, ids []string) error {
	for _, id := range ids {
		var owner string
		err := q.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT map_id FROM %s WHERE id = ?`, table), id,
		).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return err
		}
		if owner != mapID {
			return fmt.Errorf("%w: %s id %q belongs to another map", eventmap.ErrValidation, strings.TrimSuffix(table, "s"), id)
		}
	}
	return nil
}

// ListEvents returns every event of a map regardless of status, ordered
// by (order, id).
func (s *DocStore) ListEvents(ctx context.Context, mapID string) (_ []eventmap.EventMarker, err error) {
	defer observe("list", "events", time.Now(), &err)
	events, err := all[eventmap.EventMarker](ctx, s.db,
		`SELECT json(data) FROM events WHERE map_id = ?`, mapID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	slices.SortStableFunc(events, func(a, b eventmap.EventMarker) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.ID, b.ID)
	})
	return events, nil
}

func (s *DocStore) ListRoutes(ctx context.Context, mapID string) (_ []eventmap.Route, err error) {
	defer observe("list", "routes", time.Now(), &err)
	routes, err := all[eventmap.Route](ctx, s.db,
		`SELECT json(data) FROM routes WHERE map_id = ?`, mapID)
	if err != nil {
		return nil, fmt.Errorf("listing routes: %w", err)
	}
	slices.SortStableFunc(routes, func(a, b eventmap.Route) int {
		return strings.Compare(a.ID, b.ID)
	})
	return routes, nil
}

// ReplaceEvents swaps the full event set of a map. Positions are clamped
// to the map's percent space and missing ids are generated.
func (s *DocStore) ReplaceEvents(ctx context.Context, mapID string, events []eventmap.EventMarker) (_ []eventmap.EventMarker, err error) {
	defer observe("replace", "events", time.Now(), &err)
	out := make([]eventmap.EventMarker, 0, len(events))
	ids := make([]string, 0, len(events))
	seen := make(map[string]bool, len(events))
	for _, e := range events {
		if strings.TrimSpace(e.Title) == "" {
			return nil, fmt.Errorf("%w: event title required", eventmap.ErrValidation)
		}
		if e.ID == "" {
			e.ID = newID()
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("%w: duplicate event id %q", eventmap.ErrValidation, e.ID)
		}
		seen[e.ID] = true
		ids = append(ids, e.ID)
		e.MapID = mapID
		e.Position = geometry.ClampPercent(e.Position)
		out = append(out, e)
	}

	err = s.inTx(ctx, func(q querier) error {
		var m eventmap.MapDefinition
		if err := get(ctx, q, "maps", mapID, &m); err != nil {
			return err
		}
		if err := claimIDs(ctx, q, "events", mapID, ids); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM events WHERE map_id = ?`, mapID); err != nil {
			return err
		}
		for _, e := range out {
			if err := putEvent(ctx, q, e); err != nil {
				return fmt.Errorf("storing event %s: %w", e.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceRoutes swaps the full route set of a map. Routes whose endpoints
// are not events of the map are rejected.
func (s *DocStore) ReplaceRoutes(ctx context.Context, mapID string, routes []eventmap.Route) (_ []eventmap.Route, err error) {
	defer observe("replace", "routes", time.Now(), &err)
	out := make([]eventmap.Route, 0, len(routes))
	err = s.inTx(ctx, func(q querier) error {
		var m eventmap.MapDefinition
		if err := get(ctx, q, "maps", mapID, &m); err != nil {
			return err
		}
		events, err := all[eventmap.EventMarker](ctx, q,
			`SELECT json(data) FROM events WHERE map_id = ?`, mapID)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(events))
		for _, e := range events {
			known[e.ID] = true
		}

		routes := slices.Clone(routes)
		var ids []string
		seen := make(map[string]bool, len(routes))
		for i, r := range routes {
			if r.ID == "" {
				routes[i].ID = newID()
				continue
			}
			if seen[r.ID] {
				return fmt.Errorf("%w: duplicate route id %q", eventmap.ErrValidation, r.ID)
			}
			seen[r.ID] = true
			ids = append(ids, r.ID)
		}
		if err := claimIDs(ctx, q, "routes", mapID, ids); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM routes WHERE map_id = ?`, mapID); err != nil {
			return err
		}
		for _, r := range routes {
			if !known[r.From] || !known[r.To] {
				return fmt.Errorf("%w: route %s -> %s references an unknown event", eventmap.ErrValidation, r.From, r.To)
			}
			r.MapID = mapID
			if err := putRoute(ctx, q, r); err != nil {
				return fmt.Errorf("storing route %s: %w", r.ID, err)
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateEventPosition stores the result of an editor drag. The point is
// clamped to [0, 100] on both axes.
func (s *DocStore) UpdateEventPosition(ctx context.Context, mapID, eventID string, p eventmap.Point) (out eventmap.EventMarker, err error) {
	defer observe("update", "events", time.Now(), &err)
	err = s.inTx(ctx, func(q querier) error {
		var e eventmap.EventMarker
		if err := get(ctx, q, "events", eventID, &e); err != nil {
			return err
		}
		if e.MapID != mapID {
			return ErrNotFound
		}
		e.Position = geometry.ClampPercent(p)
		out = e
		return putEvent(ctx, q, e)
	})
	return out, err
}
