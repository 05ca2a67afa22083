package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/geometry"
)

// MapSummary is one row of the map registry listing.
type MapSummary struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Style  eventmap.Style `json:"style"`
	Active bool           `json:"active"`
}

// Registry lists all maps and which one visitors see.
type Registry struct {
	Maps        []MapSummary `json:"maps"`
	ActiveMapID string       `json:"activeMapId"`
}

func putMap(ctx context.Context, q querier, m eventmap.MapDefinition) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO maps (id, active, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET active = excluded.active, data = excluded.data`,
		m.ID, boolInt(m.Active), string(data),
	)
	return err
}

func sortMaps(maps []eventmap.MapDefinition) {
	slices.SortStableFunc(maps, func(a, b eventmap.MapDefinition) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// ListMaps returns every map, oldest first.
func (s *DocStore) ListMaps(ctx context.Context) (_ []eventmap.MapDefinition, err error) {
	defer observe("list", "maps", time.Now(), &err)
	maps, err := all[eventmap.MapDefinition](ctx, s.db, `SELECT json(data) FROM maps`)
	if err != nil {
		return nil, fmt.Errorf("listing maps: %w", err)
	}
	sortMaps(maps)
	return maps, nil
}

func (s *DocStore) GetMap(ctx context.Context, id string) (m eventmap.MapDefinition, err error) {
	defer observe("get", "maps", time.Now(), &err)
	err = get(ctx, s.db, "maps", id, &m)
	return m, err
}

// ActiveMap returns the map flagged active, or the oldest map when none
// is flagged. ErrNotFound means there are no maps at all.
func (s *DocStore) ActiveMap(ctx context.Context) (eventmap.MapDefinition, error) {
	maps, err := s.ListMaps(ctx)
	if err != nil {
		return eventmap.MapDefinition{}, err
	}
	if len(maps) == 0 {
		return eventmap.MapDefinition{}, ErrNotFound
	}
	for _, m := range maps {
		if m.Active {
			return m, nil
		}
	}
	return maps[0], nil
}

func (s *DocStore) MapRegistry(ctx context.Context) (Registry, error) {
	maps, err := s.ListMaps(ctx)
	if err != nil {
		return Registry{}, err
	}
	reg := Registry{Maps: make([]MapSummary, 0, len(maps))}
	for _, m := range maps {
		reg.Maps = append(reg.Maps, MapSummary{ID: m.ID, Name: m.Name, Style: m.Style, Active: m.Active})
		if m.Active {
			reg.ActiveMapID = m.ID
		}
	}
	if reg.ActiveMapID == "" && len(maps) > 0 {
		reg.ActiveMapID = maps[0].ID
	}
	return reg, nil
}

func validateMap(m eventmap.MapDefinition) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: map name required", eventmap.ErrValidation)
	}
	if !m.Style.Valid() {
		return fmt.Errorf("%w: unknown map style %q", eventmap.ErrValidation, m.Style)
	}
	if r := m.Config.Ground.CornerRadius; r != "" {
		if _, err := geometry.ParseCornerRadii(r); err != nil {
			return fmt.Errorf("%w: %v", eventmap.ErrValidation, err)
		}
	}
	seen := make(map[string]bool, len(m.BlurZones))
	for _, z := range m.BlurZones {
		if z.ID == "" {
			continue
		}
		if seen[z.ID] {
			return fmt.Errorf("%w: duplicate blur zone id %q", eventmap.ErrValidation, z.ID)
		}
		seen[z.ID] = true
	}
	return nil
}

// zonesWithIDs gives every blur zone a stable id so reveals stay per zone.
func zonesWithIDs(zones []eventmap.BlurZone) []eventmap.BlurZone {
	out := make([]eventmap.BlurZone, len(zones))
	for i, z := range zones {
		if z.ID == "" {
			z.ID = newID()
		}
		out[i] = z
	}
	return out
}

// CreateMap stores a new inactive map. A missing visual config gets the
// defaults; activation goes through SetActiveMap.
func (s *DocStore) CreateMap(ctx context.Context, m eventmap.MapDefinition) (_ eventmap.MapDefinition, err error) {
	defer observe("insert", "maps", time.Now(), &err)
	if err := validateMap(m); err != nil {
		return eventmap.MapDefinition{}, err
	}
	if m.ID == "" {
		m.ID = newID()
	}
	if m.Config == (eventmap.VisualConfig{}) {
		m.Config = eventmap.DefaultVisualConfig()
	}
	m.BlurZones = zonesWithIDs(m.BlurZones)
	now := s.now()
	m.Active = false
	m.CreatedAt, m.UpdatedAt = now, now
	if err := putMap(ctx, s.db, m); err != nil {
		return eventmap.MapDefinition{}, fmt.Errorf("creating map: %w", err)
	}
	return m, nil
}

// UpdateMap replaces the editable fields of a map. The active flag and
// creation time are kept.
func (s *DocStore) UpdateMap(ctx context.Context, m eventmap.MapDefinition) (out eventmap.MapDefinition, err error) {
	defer observe("update", "maps", time.Now(), &err)
	if err := validateMap(m); err != nil {
		return eventmap.MapDefinition{}, err
	}
	err = s.inTx(ctx, func(q querier) error {
		var cur eventmap.MapDefinition
		if err := get(ctx, q, "maps", m.ID, &cur); err != nil {
			return err
		}
		m.Active = cur.Active
		m.CreatedAt = cur.CreatedAt
		m.UpdatedAt = s.now()
		m.BlurZones = zonesWithIDs(m.BlurZones)
		out = m
		return putMap(ctx, q, m)
	})
	return out, err
}

// DeleteMap removes a map along with its events and routes.
func (s *DocStore) DeleteMap(ctx context.Context, id string) (err error) {
	defer observe("delete", "maps", time.Now(), &err)
	return s.inTx(ctx, func(q querier) error {
		for _, table := range []string{"events", "routes"} {
			if _, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE map_id = ?", id); err != nil {
				return fmt.Errorf("deleting %s of map %s: %w", table, id, err)
			}
		}
		return del(ctx, q, "maps", id)
	})
}

// SetActiveMap makes id the only active map. Clearing and setting happen
// in one transaction so readers never see zero or two active maps.
func (s *DocStore) SetActiveMap(ctx context.Context, id string) (err error) {
	defer observe("activate", "maps", time.Now(), &err)
	return s.inTx(ctx, func(q querier) error {
		var target eventmap.MapDefinition
		if err := get(ctx, q, "maps", id, &target); err != nil {
			return err
		}
		active, err := all[eventmap.MapDefinition](ctx, q, `SELECT json(data) FROM maps WHERE active = 1`)
		if err != nil {
			return err
		}
		now := s.now()
		for _, m := range active {
			if m.ID == id {
				continue
			}
			m.Active = false
			m.UpdatedAt = now
			if err := putMap(ctx, q, m); err != nil {
				return fmt.Errorf("deactivating map %s: %w", m.ID, err)
			}
		}
		if target.Active {
			return nil
		}
		target.Active = true
		target.UpdatedAt = now
		return putMap(ctx, q, target)
	})
}

// Catalog loads a map with its events and routes. An empty mapID
// resolves to the active map.
func (s *DocStore) Catalog(ctx context.Context, mapID string) (eventmap.Catalog, error) {
	var (
		cat eventmap.Catalog
		err error
	)
	if mapID == "" {
		cat.Map, err = s.ActiveMap(ctx)
	} else {
		cat.Map, err = s.GetMap(ctx, mapID)
	}
	if err != nil {
		return eventmap.Catalog{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cat.Events, err = s.ListEvents(gctx, cat.Map.ID)
		return err
	})
	g.Go(func() error {
		var err error
		cat.Routes, err = s.ListRoutes(gctx, cat.Map.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return eventmap.Catalog{}, fmt.Errorf("loading catalog %s: %w", cat.Map.ID, err)
	}
	return cat, nil
}
