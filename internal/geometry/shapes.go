package geometry

// Shape is anything that can contribute to a bounding box.
type Shape interface {
	Bounds() Box
}

type Rect struct{ X, Y, Width, Height float64 }

func (r Rect) Bounds() Box {
	var b Box
	b.Add(r.X, r.Y)
	b.Add(r.X+r.Width, r.Y+r.Height)
	return b
}

type Circle struct{ CX, CY, R float64 }

func (c Circle) Bounds() Box {
	var b Box
	b.Add(c.CX-c.R, c.CY-c.R)
	b.Add(c.CX+c.R, c.CY+c.R)
	return b
}

type Ellipse struct{ CX, CY, RX, RY float64 }

func (e Ellipse) Bounds() Box {
	var b Box
	b.Add(e.CX-e.RX, e.CY-e.RY)
	b.Add(e.CX+e.RX, e.CY+e.RY)
	return b
}

type Line struct{ X1, Y1, X2, Y2 float64 }

func (l Line) Bounds() Box {
	var b Box
	b.Add(l.X1, l.Y1)
	b.Add(l.X2, l.Y2)
	return b
}

// Path is raw SVG path data. Unparseable data contributes nothing.
type Path struct{ D string }

func (p Path) Bounds() Box {
	b, _ := PathBounds(p.D)
	return b
}

// Bounds returns the smallest box enclosing every shape, grown by padding.
func Bounds(shapes []Shape, padding float64) Box {
	var b Box
	for _, s := range shapes {
		b.AddBox(s.Bounds())
	}
	return b.Pad(padding)
}

// ViewBox is Bounds formatted for an svg element, falling back to
// DefaultViewBox when no shape had measurable extent.
func ViewBox(shapes []Shape, padding float64) string {
	return Bounds(shapes, padding).ViewBox()
}
