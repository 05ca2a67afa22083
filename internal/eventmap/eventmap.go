// Package eventmap defines the core domain types shared by the map viewer,
// the analytics services and the HTTP API.
// It has no external dependencies.
package eventmap

import (
	"strings"
	"time"
)

// Style selects how a map is drawn and which route strategy connects markers.
type Style string

const (
	StyleGridCity     Style = "grid-city"
	StyleFloorPlan    Style = "floor-plan"
	StyleCustomImage  Style = "custom-image"
	StyleFreeformArea Style = "freeform-area"
)

func (s Style) Valid() bool {
	switch s {
	case StyleGridCity, StyleFloorPlan, StyleCustomImage, StyleFreeformArea:
		return true
	}
	return false
}

// Point is a position in percentage space: both axes run 0..100 regardless of
// the pixel size of the viewport.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CityConfig struct {
	GridSize    float64 `json:"gridSize"`
	StreetColor string  `json:"streetColor"`
	StrokeWidth float64 `json:"strokeWidth"`
}

type GroundConfig struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	CornerRadius string  `json:"cornerRadius"`
	Color        string  `json:"color"`
	BorderColor  string  `json:"borderColor"`
	BorderWidth  float64 `json:"borderWidth"`
}

// VisualConfig is the operator-editable look of a map. ZoomCeiling, when set,
// overrides the style default for how far above the zoom floor buttons reach.
type VisualConfig struct {
	City        CityConfig   `json:"city"`
	Ground      GroundConfig `json:"ground"`
	ZoomCeiling float64      `json:"zoomCeiling,omitempty"`
}

func DefaultVisualConfig() VisualConfig {
	return VisualConfig{
		City: CityConfig{
			GridSize:    10,
			StreetColor: "#e0e6ed",
			StrokeWidth: 0.5,
		},
		Ground: GroundConfig{
			Width:        70,
			Height:       70,
			CornerRadius: "2 2 2 2",
			Color:        "#eef5f2",
			BorderColor:  "#dcece5",
			BorderWidth:  1,
		},
	}
}

// BlurZone is a rectangle hidden from first-time visitors until revealed.
type BlurZone struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Message string  `json:"message,omitempty"`
}

func (z BlurZone) Contains(p Point) bool {
	return p.X >= z.X && p.X <= z.X+z.Width && p.Y >= z.Y && p.Y <= z.Y+z.Height
}

type MapDefinition struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Style             Style        `json:"style"`
	Description       string       `json:"description,omitempty"`
	Config            VisualConfig `json:"config"`
	BlurZones         []BlurZone   `json:"blurZones"`
	CompletionMessage string       `json:"completionMessage,omitempty"`
	Active            bool         `json:"active"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

type ClickKind string

const (
	ClickPanel  ClickKind = "panel"
	ClickLink   ClickKind = "link"
	ClickAction ClickKind = "action"
)

// ClickBehavior says what tapping a marker does. The zero value opens the
// detail panel.
type ClickBehavior struct {
	Kind   ClickKind `json:"kind,omitempty"`
	Target string    `json:"target,omitempty"`
}

const (
	StatusActive  = "Active"
	UngroupedName = "Ungrouped"
)

type EventMarker struct {
	ID          string        `json:"id"`
	MapID       string        `json:"mapId"`
	Title       string        `json:"title"`
	MarkerTitle string        `json:"markerTitle,omitempty"`
	Position    Point         `json:"position"`
	Category    string        `json:"category,omitempty"`
	Icon        string        `json:"icon,omitempty"`
	Color       string        `json:"color,omitempty"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	BannerURL   string        `json:"bannerUrl,omitempty"`
	AudioURL    string        `json:"audioUrl,omitempty"`
	AltAudioURL string        `json:"altAudioUrl,omitempty"`
	VideoURL    string        `json:"videoUrl,omitempty"`
	Click       ClickBehavior `json:"click"`
	Group       string        `json:"group,omitempty"`
	Order       int           `json:"order"`
	Status      string        `json:"status"`
}

// IsActive reports whether the event counts toward progress and completion.
func (e EventMarker) IsActive() bool { return e.Status == StatusActive }

func (e EventMarker) GroupName() string {
	if g := strings.TrimSpace(e.Group); g != "" {
		return g
	}
	return UngroupedName
}

// Label is the text shown on the map pin.
func (e EventMarker) Label() string {
	if e.MarkerTitle != "" {
		return e.MarkerTitle
	}
	return e.Title
}

// Route is a rendering hint connecting two markers of the same map.
type Route struct {
	ID    string `json:"id"`
	MapID string `json:"mapId"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Catalog is everything the viewer needs to draw one map.
type Catalog struct {
	Map    MapDefinition `json:"map"`
	Events []EventMarker `json:"events"`
	Routes []Route       `json:"routes"`
}

// EventByID returns the event with the given id, if present.
func (c Catalog) EventByID(id string) (EventMarker, bool) {
	for _, e := range c.Events {
		if e.ID == id {
			return e, true
		}
	}
	return EventMarker{}, false
}
