package geometry

import (
	"fmt"
	"strconv"
)

// PathBounds measures SVG path data. It understands M L H V C S Q T A Z in
// both absolute and relative form. Curve control points are included so the
// box always covers the curve hull; arcs contribute their endpoints.
func PathBounds(d string) (Box, error) {
	var (
		box        Box
		cur, start Point
		ctrl       Point // last cubic or quadratic control point
		cmd, prev  byte
	)
	sc := pathScanner{s: d}

	for {
		sc.skip()
		if sc.done() {
			break
		}
		if c := sc.peek(); isCommand(c) {
			cmd = c
			sc.i++
		} else if cmd == 0 {
			return Box{}, fmt.Errorf("path data must start with a command, got %q", c)
		} else if cmd == 'Z' || cmd == 'z' {
			return Box{}, fmt.Errorf("unexpected number after closepath at offset %d", sc.i)
		}

		rel := cmd >= 'a'
		base := Point{}
		if rel {
			base = cur
		}
		upper := cmd &^ 0x20

		switch upper {
		case 'M', 'L':
			p, err := sc.point(base)
			if err != nil {
				return Box{}, err
			}
			cur = p
			if upper == 'M' {
				start = p
				// Extra coordinate pairs after a moveto are implicit linetos.
				if rel {
					cmd = 'l'
				} else {
					cmd = 'L'
				}
			}
			box.Add(cur.X, cur.Y)
		case 'H':
			x, err := sc.number()
			if err != nil {
				return Box{}, err
			}
			cur.X = x + base.X
			box.Add(cur.X, cur.Y)
		case 'V':
			y, err := sc.number()
			if err != nil {
				return Box{}, err
			}
			cur.Y = y + base.Y
			box.Add(cur.X, cur.Y)
		case 'C', 'S':
			var c1 Point
			if upper == 'C' {
				p, err := sc.point(base)
				if err != nil {
					return Box{}, err
				}
				c1 = p
			} else {
				c1 = cur
				if p := prev &^ 0x20; p == 'C' || p == 'S' {
					c1 = reflect(ctrl, cur)
				}
			}
			c2, err := sc.point(base)
			if err != nil {
				return Box{}, err
			}
			end, err := sc.point(base)
			if err != nil {
				return Box{}, err
			}
			box.Add(c1.X, c1.Y)
			box.Add(c2.X, c2.Y)
			box.Add(end.X, end.Y)
			ctrl, cur = c2, end
		case 'Q', 'T':
			var c1 Point
			if upper == 'Q' {
				p, err := sc.point(base)
				if err != nil {
					return Box{}, err
				}
				c1 = p
			} else {
				c1 = cur
				if p := prev &^ 0x20; p == 'Q' || p == 'T' {
					c1 = reflect(ctrl, cur)
				}
			}
			end, err := sc.point(base)
			if err != nil {
				return Box{}, err
			}
			box.Add(c1.X, c1.Y)
			box.Add(end.X, end.Y)
			ctrl, cur = c1, end
		case 'A':
			for range 3 {
				if _, err := sc.number(); err != nil {
					return Box{}, err
				}
			}
			for range 2 {
				if _, err := sc.flag(); err != nil {
					return Box{}, err
				}
			}
			end, err := sc.point(base)
			if err != nil {
				return Box{}, err
			}
			cur = end
			box.Add(cur.X, cur.Y)
		case 'Z':
			cur = start
		}
		prev = cmd
	}
	return box, nil
}

func reflect(c, about Point) Point {
	return Point{X: 2*about.X - c.X, Y: 2*about.Y - c.Y}
}

func isCommand(c byte) bool {
	switch c &^ 0x20 {
	case 'M', 'L', 'H', 'V', 'C', 'S', 'Q', 'T', 'A', 'Z':
		return true
	}
	return false
}

type pathScanner struct {
	s string
	i int
}

func (p *pathScanner) done() bool { return p.i >= len(p.s) }
func (p *pathScanner) peek() byte { return p.s[p.i] }

func (p *pathScanner) skip() {
	for p.i < len(p.s) {
		switch p.s[p.i] {
		case ' ', '\t', '\n', '\r', ',':
			p.i++
		default:
			return
		}
	}
}

func (p *pathScanner) point(base Point) (Point, error) {
	x, err := p.number()
	if err != nil {
		return Point{}, err
	}
	y, err := p.number()
	if err != nil {
		return Point{}, err
	}
	return Point{X: x + base.X, Y: y + base.Y}, nil
}

// number reads one SVG number. "1.5.5" yields 1.5 then .5 and "1-2" yields
// 1 then -2, as browsers accept both.
func (p *pathScanner) number() (float64, error) {
	p.skip()
	start := p.i
	if p.i < len(p.s) && (p.s[p.i] == '+' || p.s[p.i] == '-') {
		p.i++
	}
	digits, dot := 0, false
	for p.i < len(p.s) {
		c := p.s[p.i]
		if c >= '0' && c <= '9' {
			digits++
		} else if c == '.' && !dot {
			dot = true
		} else {
			break
		}
		p.i++
	}
	if digits == 0 {
		return 0, fmt.Errorf("expected number at offset %d", start)
	}
	if p.i < len(p.s) && (p.s[p.i] == 'e' || p.s[p.i] == 'E') {
		j := p.i + 1
		if j < len(p.s) && (p.s[j] == '+' || p.s[j] == '-') {
			j++
		}
		k := j
		for k < len(p.s) && p.s[k] >= '0' && p.s[k] <= '9' {
			k++
		}
		if k > j {
			p.i = k
		}
	}
	v, err := strconv.ParseFloat(p.s[start:p.i], 64)
	if err != nil {
		return 0, fmt.Errorf("parsing number at offset %d: %w", start, err)
	}
	return v, nil
}

// flag reads an arc flag, which may be packed against the next token.
func (p *pathScanner) flag() (float64, error) {
	p.skip()
	if p.done() {
		return 0, fmt.Errorf("expected arc flag at offset %d", p.i)
	}
	switch p.s[p.i] {
	case '0':
		p.i++
		return 0, nil
	case '1':
		p.i++
		return 1, nil
	}
	return 0, fmt.Errorf("invalid arc flag %q at offset %d", p.s[p.i], p.i)
}
