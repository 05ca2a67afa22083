package viewport

import "github.com/playperu/eventmap/internal/eventmap"

// Config holds the tuning for one map's viewport. Values are in CSS pixels
// except where noted.
type Config struct {
	// NarrowBreakpoint splits phones from everything else.
	NarrowBreakpoint float64
	NarrowFloor      float64
	WideFloor        float64

	ZoomStep float64
	// CeilingFactor is the highest reachable scale as a multiple of the floor.
	CeilingFactor float64

	WheelSensitivity     float64
	PrecisionSensitivity float64

	// Pan bounds are multiples of the viewport size in each direction.
	PanWidthFactor  float64
	PanHeightFactor float64
	// Elastic scales how far a drag moves past the pan bounds.
	Elastic float64
	// ElasticThreshold is how far past a bound (pixels) a release may rest
	// before the pan springs back.
	ElasticThreshold float64

	// ContentSize and ContentPadding are fractions of the viewport's longer
	// side: the map layer is a square of ContentSize with ContentPadding
	// inset on every side.
	ContentSize    float64
	ContentPadding float64

	// Epsilon absorbs float noise when deciding whether a zoom bound is hit.
	Epsilon float64

	ScaleSpring SpringConfig
	PanSpring   SpringConfig
}

func DefaultConfig() Config {
	return Config{
		NarrowBreakpoint:     768,
		NarrowFloor:          0.8,
		WideFloor:            0.6,
		ZoomStep:             1.5,
		CeilingFactor:        1.5,
		WheelSensitivity:     0.001,
		PrecisionSensitivity: 0.01,
		PanWidthFactor:       5,
		PanHeightFactor:      1,
		Elastic:              0.2,
		ElasticThreshold:     24,
		ContentSize:          1.5,
		ContentPadding:       0.2,
		Epsilon:              0.01,
		ScaleSpring:          SpringConfig{Stiffness: 150, Damping: 20, Mass: 1, RestDelta: 0.001, RestSpeed: 0.01},
		PanSpring:            SpringConfig{Stiffness: 150, Damping: 20, Mass: 1, RestDelta: 0.5, RestSpeed: 1},
	}
}

// ConfigForStyle returns the defaults for a map style. City maps have large
// detailed assets and keep the wider zoom range.
func ConfigForStyle(style eventmap.Style) Config {
	cfg := DefaultConfig()
	if style == eventmap.StyleGridCity {
		cfg.CeilingFactor = 2.5
	}
	return cfg
}

// ConfigForMap applies the map's own zoom ceiling on top of the style
// defaults.
func ConfigForMap(m eventmap.MapDefinition) Config {
	cfg := ConfigForStyle(m.Style)
	if m.Config.ZoomCeiling > 1 {
		cfg.CeilingFactor = m.Config.ZoomCeiling
	}
	return cfg
}

// Floor returns the minimum scale for a viewport width.
func (c Config) Floor(width float64) float64 {
	if width < c.NarrowBreakpoint {
		return c.NarrowFloor
	}
	return c.WideFloor
}
