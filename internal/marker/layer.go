package marker

import (
	"cmp"
	"slices"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/geometry"
)

// DisplayScale counter-scales a marker against the viewport so it keeps
// the same on-screen size at every zoom level.
func DisplayScale(k, viewportScale float64) float64 {
	if viewportScale <= 0 {
		return k
	}
	return k / viewportScale
}

const (
	zSelected = 100
	zDefault  = 10
)

// Placement is everything needed to draw one marker.
type Placement struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Position geometry.Point `json:"position"`
	Glyph    Glyph          `json:"glyph"`
	Color    string         `json:"color,omitempty"`
	Icon     string         `json:"icon,omitempty"`
	Scale    float64        `json:"scale"`
	Selected bool           `json:"selected"`
	ZIndex   int            `json:"zIndex"`
}

// Layer turns events into placements. K is the counter-scale constant and
// MinScale, when positive, keeps markers from shrinking below it as the
// map zooms in.
type Layer struct {
	K        float64
	MinScale float64
}

func NewLayer() Layer { return Layer{K: 1, MinScale: 1} }

func (l Layer) scaleFor(viewportScale float64) float64 {
	return max(DisplayScale(l.K, viewportScale), l.MinScale)
}

func (l Layer) Place(events []eventmap.EventMarker, selectedID string, viewportScale float64) []Placement {
	s := l.scaleFor(viewportScale)
	out := make([]Placement, 0, len(events))
	for _, e := range events {
		p := Placement{
			ID:       e.ID,
			Label:    e.Label(),
			Position: e.Position,
			Glyph:    GlyphFor(e.Category),
			Color:    e.Color,
			Icon:     e.Icon,
			Scale:    s,
			ZIndex:   zDefault,
		}
		if e.ID == selectedID {
			p.Selected = true
			p.ZIndex = zSelected
		}
		out = append(out, p)
	}
	return out
}

// Sequence orders events for next/previous navigation in the detail panel.
type Sequence struct {
	ids []string
}

func NewSequence(events []eventmap.EventMarker) Sequence {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b eventmap.EventMarker) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(a.ID, b.ID))
	})
	ids := make([]string, len(sorted))
	for i, e := range sorted {
		ids[i] = e.ID
	}
	return Sequence{ids: ids}
}

func (s Sequence) IDs() []string { return slices.Clone(s.ids) }

// Next returns the event after id. There is no wrap-around.
func (s Sequence) Next(id string) (string, bool) {
	i := slices.Index(s.ids, id)
	if i < 0 || i+1 >= len(s.ids) {
		return "", false
	}
	return s.ids[i+1], true
}

func (s Sequence) Prev(id string) (string, bool) {
	i := slices.Index(s.ids, id)
	if i <= 0 {
		return "", false
	}
	return s.ids[i-1], true
}

// Action is the resolved effect of tapping a marker.
type Action struct {
	Kind   eventmap.ClickKind
	Target string
}

// ActionFor resolves a marker's click behavior. Links and named actions
// without a target fall back to opening the detail panel.
func ActionFor(e eventmap.EventMarker) Action {
	switch e.Click.Kind {
	case eventmap.ClickLink, eventmap.ClickAction:
		if e.Click.Target != "" {
			return Action{Kind: e.Click.Kind, Target: e.Click.Target}
		}
	}
	return Action{Kind: eventmap.ClickPanel, Target: e.ID}
}
