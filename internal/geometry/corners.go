package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Radii are per-corner radii in clockwise order from the top-left.
type Radii struct {
	TopLeft, TopRight, BottomRight, BottomLeft float64
}

// ParseCornerRadii reads the CSS border-radius shorthand with one to four
// values ("2", "2 4", "2 4 6", "2 4 6 8"). An empty string means square
// corners.
func ParseCornerRadii(s string) (Radii, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	vals := make([]float64, 0, 4)
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
		if err != nil {
			return Radii{}, fmt.Errorf("parsing corner radius %q: %w", f, err)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Radii{}, fmt.Errorf("corner radius %q out of range", f)
		}
		vals = append(vals, v)
	}
	switch len(vals) {
	case 0:
		return Radii{}, nil
	case 1:
		return Radii{vals[0], vals[0], vals[0], vals[0]}, nil
	case 2:
		return Radii{vals[0], vals[1], vals[0], vals[1]}, nil
	case 3:
		return Radii{vals[0], vals[1], vals[2], vals[1]}, nil
	case 4:
		return Radii{vals[0], vals[1], vals[2], vals[3]}, nil
	}
	return Radii{}, fmt.Errorf("corner radius %q has %d values, want 1 to 4", s, len(vals))
}

// RoundedRectPath builds a closed path for a rectangle with rounded corners.
// Each corner is a quadratic curve whose control point is the sharp corner.
// Radii larger than half the shorter side are clamped to it.
func RoundedRectPath(x, y, w, h float64, r Radii) string {
	limit := math.Min(w, h) / 2
	tl := Clamp(r.TopLeft, 0, limit)
	tr := Clamp(r.TopRight, 0, limit)
	br := Clamp(r.BottomRight, 0, limit)
	bl := Clamp(r.BottomLeft, 0, limit)

	var sb strings.Builder
	move := func(cmd string, pts ...float64) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(cmd)
		sb.WriteByte(' ')
		sb.WriteString(formatNums(pts...))
	}

	move("M", x+tl, y)
	move("L", x+w-tr, y)
	if tr > 0 {
		move("Q", x+w, y, x+w, y+tr)
	}
	move("L", x+w, y+h-br)
	if br > 0 {
		move("Q", x+w, y+h, x+w-br, y+h)
	}
	move("L", x+bl, y+h)
	if bl > 0 {
		move("Q", x, y+h, x, y+h-bl)
	}
	move("L", x, y+tl)
	if tl > 0 {
		move("Q", x, y, x+tl, y)
	}
	sb.WriteString(" Z")
	return sb.String()
}
