// Package viewport implements the pan/zoom camera for the journey map.
//
// A Controller is owned by a single event loop: gesture handlers, zoom
// buttons and the frame ticker must all run on the same goroutine. It does
// no I/O and never blocks, so it is safe to call from hot input paths.
package viewport

import (
	"math"
	"time"

	"github.com/playperu/eventmap/internal/geometry"
)

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Size) vmax() float64 { return math.Max(s.Width, s.Height) }

// Transform is the translate-then-scale applied to the map layer. X and Y
// are pixel offsets of the layer's center from the viewport center.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Bounds limits the pan offset.
type Bounds struct {
	Left, Right, Top, Bottom float64
}

// Anchor is a relative position inside a box: 0,0 is top-left and 1,1 is
// bottom-right.
type Anchor struct{ X, Y float64 }

var (
	AnchorTopLeft     = Anchor{0, 0}
	AnchorCenter      = Anchor{0.5, 0.5}
	AnchorBottomLeft  = Anchor{0, 1}
	AnchorBottomRight = Anchor{1, 1}
)

// Rect is a screen rectangle in pixels.
type Rect struct {
	Left, Top, Width, Height float64
}

type Controller struct {
	cfg  Config
	size Size

	floor  float64
	bounds Bounds

	x, y, scale *Spring

	dragging   bool
	dragOrigin [2]float64
	dragRaw    [2]float64

	subs    map[int]func(Transform)
	nextSub int
	last    Transform
}

// New returns a controller at the wide-screen floor with no viewport size.
// Call SetViewport before use.
func New(cfg Config) *Controller {
	c := &Controller{
		cfg:   cfg,
		floor: cfg.WideFloor,
		x:     NewSpring(cfg.PanSpring, 0),
		y:     NewSpring(cfg.PanSpring, 0),
		scale: NewSpring(cfg.ScaleSpring, cfg.WideFloor),
		subs:  make(map[int]func(Transform)),
	}
	c.last = c.Transform()
	return c
}

func (c *Controller) Config() Config { return c.cfg }
func (c *Controller) Size() Size     { return c.size }
func (c *Controller) Floor() float64 { return c.floor }

// Ceiling is the largest scale the zoom buttons and wheel can reach.
func (c *Controller) Ceiling() float64 { return c.floor * c.cfg.CeilingFactor }

func (c *Controller) PanBounds() Bounds { return c.bounds }

// SetViewport re-derives the zoom floor and the pan bounds for a new
// viewport size. Scale only moves when it is now below the floor, and then
// it jumps straight there.
func (c *Controller) SetViewport(s Size) {
	c.size = s
	c.bounds = Bounds{
		Left:   -s.Width * c.cfg.PanWidthFactor,
		Right:  s.Width * c.cfg.PanWidthFactor,
		Top:    -s.Height * c.cfg.PanHeightFactor,
		Bottom: s.Height * c.cfg.PanHeightFactor,
	}
	c.SetZoomBounds(c.cfg.Floor(s.Width))
}

// SetZoomBounds sets the minimum scale. The ceiling follows from it. A scale
// left above a lowered ceiling is kept; ZoomOut walks it back down.
func (c *Controller) SetZoomBounds(minScale float64) {
	if minScale <= 0 {
		return
	}
	c.floor = minScale
	if c.scale.Target < minScale {
		c.scale.Snap(minScale)
	} else if c.scale.Value < minScale {
		c.scale.Value, c.scale.Velocity = minScale, 0
	}
	c.notify()
}

func (c *Controller) clampScale(s float64) float64 {
	return geometry.Clamp(s, c.floor, c.Ceiling())
}

func (c *Controller) setScaleTarget(s float64) {
	c.scale.Target = s
	c.notify()
}

// ZoomIn multiplies the scale by the zoom step, stopping at the ceiling. It
// never lowers the scale.
func (c *Controller) ZoomIn() {
	cur := c.scale.Target
	c.setScaleTarget(math.Max(cur, math.Min(cur*c.cfg.ZoomStep, c.Ceiling())))
}

// ZoomOut divides the scale by the zoom step, stopping at the floor.
func (c *Controller) ZoomOut() {
	cur := c.scale.Target
	c.setScaleTarget(math.Min(cur, math.Max(cur/c.cfg.ZoomStep, c.floor)))
}

// Wheel zooms continuously. precision is set when ctrl or cmd is held, which
// is also how trackpads report pinch, and makes each pixel count ten times
// as much.
func (c *Controller) Wheel(deltaY float64, precision bool) {
	sens := c.cfg.WheelSensitivity
	if precision {
		sens = c.cfg.PrecisionSensitivity
	}
	c.setScaleTarget(c.clampScale(c.scale.Target - deltaY*sens))
}

// Pinch applies the ratio between the current and previous finger distance.
func (c *Controller) Pinch(ratio float64) {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return
	}
	c.setScaleTarget(c.clampScale(c.scale.Target * ratio))
}

func (c *Controller) CanZoomIn() bool {
	return c.scale.Target < c.Ceiling()-c.cfg.Epsilon
}

func (c *Controller) CanZoomOut() bool {
	return c.scale.Target > c.floor+c.cfg.Epsilon
}

// BeginDrag starts a pan gesture from where the map is drawn right now.
func (c *Controller) BeginDrag() {
	c.dragging = true
	c.dragOrigin = [2]float64{c.x.Value, c.y.Value}
	c.dragRaw = [2]float64{}
}

func (c *Controller) Dragging() bool { return c.dragging }

// DragBy moves the map with the pointer. Past the pan bounds the movement is
// damped by the elastic factor rather than stopped.
func (c *Controller) DragBy(dx, dy float64) {
	if !c.dragging {
		c.BeginDrag()
	}
	c.dragRaw[0] += dx
	c.dragRaw[1] += dy
	c.x.Snap(elastic(c.dragOrigin[0]+c.dragRaw[0], c.bounds.Left, c.bounds.Right, c.cfg.Elastic))
	c.y.Snap(elastic(c.dragOrigin[1]+c.dragRaw[1], c.bounds.Top, c.bounds.Bottom, c.cfg.Elastic))
	c.notify()
}

// EndDrag finishes the gesture. An axis released further than the elastic
// threshold outside its bounds springs back to the bound. It reports whether
// any axis is springing back.
func (c *Controller) EndDrag() bool {
	c.dragging = false
	bx := settle(c.x, c.bounds.Left, c.bounds.Right, c.cfg.ElasticThreshold)
	by := settle(c.y, c.bounds.Top, c.bounds.Bottom, c.cfg.ElasticThreshold)
	c.notify()
	return bx || by
}

func elastic(v, lo, hi, k float64) float64 {
	switch {
	case v < lo:
		return lo - (lo-v)*k
	case v > hi:
		return hi + (v-hi)*k
	}
	return v
}

func settle(s *Spring, lo, hi, threshold float64) bool {
	switch {
	case s.Value < lo-threshold:
		s.Target = lo
	case s.Value > hi+threshold:
		s.Target = hi
	default:
		return false
	}
	return true
}

// PanBy animates the pan offset by a delta, clamped to the bounds. Unlike a
// drag there is no elastic zone: the button pan's target stops at the bound.
func (c *Controller) PanBy(dx, dy float64) {
	c.x.Target = geometry.Clamp(c.x.Target+dx, c.bounds.Left, c.bounds.Right)
	c.y.Target = geometry.Clamp(c.y.Target+dy, c.bounds.Top, c.bounds.Bottom)
	c.notify()
}

// Tick advances the springs by dt and reports whether anything is still
// animating. The displayed scale is never allowed under the floor.
func (c *Controller) Tick(dt time.Duration) bool {
	moving := c.scale.Step(dt)
	if c.scale.Value < c.floor {
		c.scale.Value, c.scale.Velocity = c.floor, 0
	}
	if c.x.Step(dt) {
		moving = true
	}
	if c.y.Step(dt) {
		moving = true
	}
	c.notify()
	return moving
}

// Transform is what should be drawn this frame.
func (c *Controller) Transform() Transform {
	return Transform{X: c.x.Value, Y: c.y.Value, Scale: c.scale.Value}
}

// Target is where the springs are heading.
func (c *Controller) Target() Transform {
	return Transform{X: c.x.Target, Y: c.y.Target, Scale: c.scale.Target}
}

// InverseScale is the factor that keeps overlay elements at a constant
// on-screen size.
func (c *Controller) InverseScale(k float64) float64 {
	return k / c.scale.Value
}

func (c *Controller) contentGeometry() (size, pad float64) {
	vmax := c.size.vmax()
	return c.cfg.ContentSize * vmax, c.cfg.ContentPadding * vmax
}

// contentOffset is the unscaled distance from the layer center to a point
// of the inner content area given in percent.
func (c *Controller) contentOffset(p geometry.Point) (float64, float64) {
	size, pad := c.contentGeometry()
	inner := size - 2*pad
	return -size/2 + pad + p.X/100*inner, -size/2 + pad + p.Y/100*inner
}

// Align pans, without animation, so that the content point at the given
// percent lines up with a viewport anchor at the current target scale. It is
// meant to run once when the map mounts.
func (c *Controller) Align(content geometry.Point, screen Anchor) Transform {
	ox, oy := c.contentOffset(content)
	s := c.scale.Target
	x := screen.X*c.size.Width - c.size.Width/2 - s*ox
	y := screen.Y*c.size.Height - c.size.Height/2 - s*oy
	c.x.Snap(geometry.Clamp(x, c.bounds.Left, c.bounds.Right))
	c.y.Snap(geometry.Clamp(y, c.bounds.Top, c.bounds.Bottom))
	c.notify()
	return c.Target()
}

// ContentRect is where the inner content area currently sits on screen.
func (c *Controller) ContentRect() Rect {
	t := c.Transform()
	size, pad := c.contentGeometry()
	inner := (size - 2*pad) * t.Scale
	cx := c.size.Width/2 + t.X
	cy := c.size.Height/2 + t.Y
	return Rect{Left: cx - inner/2, Top: cy - inner/2, Width: inner, Height: inner}
}

// ToScreen converts a percent position to viewport pixels.
func (c *Controller) ToScreen(p geometry.Point) (float64, float64) {
	r := c.ContentRect()
	return r.Left + p.X/100*r.Width, r.Top + p.Y/100*r.Height
}

// ToPercent converts viewport pixels to an unclamped percent position.
func (c *Controller) ToPercent(sx, sy float64) geometry.Point {
	r := c.ContentRect()
	if r.Width == 0 || r.Height == 0 {
		return geometry.Point{}
	}
	return geometry.Point{X: (sx - r.Left) / r.Width * 100, Y: (sy - r.Top) / r.Height * 100}
}

// Subscribe registers fn to run whenever the drawn transform changes and
// returns a function that removes it.
func (c *Controller) Subscribe(fn func(Transform)) (unsubscribe func()) {
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() { delete(c.subs, id) }
}

// SubscribeInverseScale is for overlay elements that only care about their
// own counter-scale. fn runs once immediately and then only when k/scale
// actually changes.
func (c *Controller) SubscribeInverseScale(k float64, fn func(float64)) (unsubscribe func()) {
	last := c.InverseScale(k)
	fn(last)
	return c.Subscribe(func(t Transform) {
		v := k / t.Scale
		if v != last {
			last = v
			fn(v)
		}
	})
}

func (c *Controller) notify() {
	t := c.Transform()
	if t == c.last {
		return
	}
	c.last = t
	for _, fn := range c.subs {
		fn(t)
	}
}
