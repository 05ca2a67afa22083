// Package route turns route records into SVG path data between markers.
package route

import (
	"fmt"
	"strings"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/geometry"
)

type Strategy string

const (
	Straight Strategy = "straight"
	Elbow    Strategy = "elbow"
	Organic  Strategy = "organic"
)

const (
	// OrganicOffset is the control point offset as a fraction of MapExtent.
	OrganicOffset = 0.1
	MapExtent     = 100.0
)

// StrategyFor picks the connector shape that suits a map style. City maps
// follow the street grid; free-form areas get gentle curves.
func StrategyFor(style eventmap.Style) Strategy {
	switch style {
	case eventmap.StyleGridCity:
		return Elbow
	case eventmap.StyleFreeformArea:
		return Organic
	default:
		return Straight
	}
}

func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case Straight, Elbow, Organic:
		return st, nil
	}
	return "", fmt.Errorf("unknown route strategy %q", s)
}

// Segment returns path data connecting from and to.
func Segment(s Strategy, from, to geometry.Point) string {
	f := geometry.Fmt
	switch s {
	case Elbow:
		// Run the full X distance first, then Y: one bend, no smoothing.
		return fmt.Sprintf("M %s %s L %s %s L %s %s",
			f(from.X), f(from.Y), f(to.X), f(from.Y), f(to.X), f(to.Y))
	case Organic:
		length := geometry.Distance(from, to)
		if length == 0 {
			break
		}
		mid := geometry.Midpoint(from, to)
		off := OrganicOffset * MapExtent
		// Unit normal of the segment, rotated counter-clockwise.
		nx, ny := -(to.Y-from.Y)/length, (to.X-from.X)/length
		return fmt.Sprintf("M %s %s Q %s %s %s %s",
			f(from.X), f(from.Y), f(mid.X+nx*off), f(mid.Y+ny*off), f(to.X), f(to.Y))
	}
	return fmt.Sprintf("M %s %s L %s %s", f(from.X), f(from.Y), f(to.X), f(to.Y))
}

// Path is the rendered connector for one route.
type Path struct {
	RouteID string `json:"routeId"`
	D       string `json:"d"`
}

// Render draws every route whose endpoints are both present in markers.
// Routes with a dangling endpoint are skipped.
func Render(s Strategy, routes []eventmap.Route, markers []eventmap.EventMarker) []Path {
	pos := make(map[string]geometry.Point, len(markers))
	for _, m := range markers {
		pos[m.ID] = m.Position
	}

	paths := make([]Path, 0, len(routes))
	for _, r := range routes {
		from, ok := pos[r.From]
		if !ok {
			continue
		}
		to, ok := pos[r.To]
		if !ok {
			continue
		}
		paths = append(paths, Path{RouteID: r.ID, D: Segment(s, from, to)})
	}
	return paths
}
