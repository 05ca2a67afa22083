// Package geometry holds the percentage-space math shared by the viewport,
// the marker layer and the route renderer.
package geometry

import (
	"math"
	"strconv"

	"github.com/playperu/eventmap/internal/eventmap"
)

// Point aliases the domain point so callers never convert between the two.
type Point = eventmap.Point

func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPercent forces both axes into [0,100].
func ClampPercent(p Point) Point {
	return Point{X: Clamp(p.X, 0, 100), Y: Clamp(p.Y, 0, 100)}
}

// Box is a growable axis-aligned bounding box. The zero value is empty.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
	set                    bool
}

func (b *Box) Add(x, y float64) {
	if !b.set {
		b.MinX, b.MaxX, b.MinY, b.MaxY = x, x, y, y
		b.set = true
		return
	}
	b.MinX = math.Min(b.MinX, x)
	b.MaxX = math.Max(b.MaxX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxY = math.Max(b.MaxY, y)
}

func (b *Box) AddBox(o Box) {
	if o.Empty() {
		return
	}
	b.Add(o.MinX, o.MinY)
	b.Add(o.MaxX, o.MaxY)
}

func (b Box) Empty() bool { return !b.set }

// Pad grows the box by m on every side.
func (b Box) Pad(m float64) Box {
	if b.Empty() {
		return b
	}
	b.MinX -= m
	b.MinY -= m
	b.MaxX += m
	b.MaxY += m
	return b
}

func (b Box) Width() float64  { return b.MaxX - b.MinX }
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// DefaultViewBox is used when there is nothing to measure.
const DefaultViewBox = "0 0 100 100"

// ViewBox formats the box as an SVG viewBox attribute.
func (b Box) ViewBox() string {
	if b.Empty() {
		return DefaultViewBox
	}
	return formatNums(b.MinX, b.MinY, b.Width(), b.Height())
}

func formatNums(vs ...float64) string {
	buf := make([]byte, 0, 8*len(vs))
	for i, v := range vs {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendFloat(buf, round(v), 'f', -1, 64)
	}
	return string(buf)
}

// round trims float noise so path strings stay stable across platforms.
func round(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0
	}
	return r
}

// Fmt renders a single coordinate the same way path strings do.
func Fmt(v float64) string {
	return strconv.FormatFloat(round(v), 'f', -1, 64)
}
