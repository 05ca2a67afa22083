// Package marker places event markers on the map and handles repositioning
// them by drag in the editor.
package marker

import (
	"math"

	"github.com/playperu/eventmap/internal/geometry"
	"github.com/playperu/eventmap/internal/viewport"
)

// DefaultDragThreshold is how far (pixels) a pointer must travel before a
// press stops being a click.
const DefaultDragThreshold = 4.0

// ScreenPoint is a position in viewport pixels.
type ScreenPoint struct{ X, Y float64 }

// Outcome reports what a pointer-up did.
type Outcome struct {
	Clicked   bool
	Committed bool
	Position  geometry.Point
}

// Drag is the pointer state machine for one marker. It tracks a transient
// pixel offset while the pointer moves; the marker's real position only
// changes through OnCommit.
type Drag struct {
	Enabled   bool
	Threshold float64
	OnCommit  func(geometry.Point)
	OnClick   func()

	down    bool
	moved   bool
	start   ScreenPoint
	grab    ScreenPoint // anchor minus pointer at press time
	offsetX float64
	offsetY float64
}

func NewDrag(enabled bool, onCommit func(geometry.Point), onClick func()) *Drag {
	return &Drag{Enabled: enabled, Threshold: DefaultDragThreshold, OnCommit: onCommit, OnClick: onClick}
}

// Down starts a press at pointer on a marker whose anchor is drawn at
// anchor. It returns true when the event must not reach the pannable canvas
// underneath.
func (d *Drag) Down(pointer, anchor ScreenPoint) (stopPropagation bool) {
	d.down = true
	d.moved = false
	d.start = pointer
	d.grab = ScreenPoint{X: anchor.X - pointer.X, Y: anchor.Y - pointer.Y}
	d.offsetX, d.offsetY = 0, 0
	return d.Enabled
}

// Move updates the transient offset. Nothing is committed.
func (d *Drag) Move(pointer ScreenPoint) {
	if !d.down {
		return
	}
	dx, dy := pointer.X-d.start.X, pointer.Y-d.start.Y
	if math.Hypot(dx, dy) > d.Threshold {
		d.moved = true
	}
	if d.Enabled {
		d.offsetX, d.offsetY = dx, dy
	}
}

// Offset is the pixel offset to draw the marker at while dragging.
func (d *Drag) Offset() (float64, float64) { return d.offsetX, d.offsetY }

func (d *Drag) Active() bool { return d.down }

// Up ends the press. A press that never crossed the threshold is a click. A
// real drag on an enabled marker converts the anchor position to percent of
// container, clamps it to [0,100] and commits it. Either way the transient
// offset is cleared.
func (d *Drag) Up(pointer ScreenPoint, container viewport.Rect) Outcome {
	if !d.down {
		return Outcome{}
	}
	d.Move(pointer)
	d.down = false
	d.offsetX, d.offsetY = 0, 0

	if !d.moved {
		if d.OnClick != nil {
			d.OnClick()
		}
		return Outcome{Clicked: true}
	}
	if !d.Enabled || container.Width <= 0 || container.Height <= 0 {
		return Outcome{}
	}

	ax, ay := pointer.X+d.grab.X, pointer.Y+d.grab.Y
	pos := geometry.ClampPercent(geometry.Point{
		X: (ax - container.Left) / container.Width * 100,
		Y: (ay - container.Top) / container.Height * 100,
	})
	if d.OnCommit != nil {
		d.OnCommit(pos)
	}
	return Outcome{Committed: true, Position: pos}
}

// Cancel drops the gesture without clicking or committing.
func (d *Drag) Cancel() {
	d.down, d.moved = false, false
	d.offsetX, d.offsetY = 0, 0
}
