/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// PathOp is a path drawing command. QuadTo takes one control point and
// CubicTo two, each followed by the end point.
type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo
	CubicTo
	Close
)

// argc is the number of coordinates each op carries.
var argc = [...]int{MoveTo: 2, LineTo: 2, QuadTo: 4, CubicTo: 6, Close: 0}

func (op PathOp) String() string {
	switch op {
	case MoveTo:
		return "M"
	case LineTo:
		return "L"
	case QuadTo:
		return "Q"
	case CubicTo:
		return "C"
	case Close:
		return "Z"
	}
	return "?"
}

// PathCmd is one command; Data holds argc(Op) coordinates, the rest stay zero.
type PathCmd struct {
	Op   PathOp
	Data [6]float32
}

// end is the point the command leaves the pen at.
func (c PathCmd) end() Pt {
	n := argc[c.Op]
	if n == 0 {
		return Pt{}
	}
	return Pt{c.Data[n-2], c.Data[n-1]}
}

// Path is a sequence of subpaths in local coordinates.
type Path struct{ Cmds []PathCmd }

func (p *Path) add(op PathOp, v ...float32) {
	c := PathCmd{Op: op}
	copy(c.Data[:], v)
	p.Cmds = append(p.Cmds, c)
}

func (p *Path) MoveTo(x, y float32)                      { p.add(MoveTo, x, y) }
func (p *Path) LineTo(x, y float32)                      { p.add(LineTo, x, y) }
func (p *Path) QuadTo(cx, cy, x, y float32)              { p.add(QuadTo, cx, cy, x, y) }
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float32) { p.add(CubicTo, cx1, cy1, cx2, cy2, x, y) }
func (p *Path) Close()                                   { p.add(Close) }

// Bounds is the exact box of the path: curves contribute their extrema,
// not their control points.
func (p *Path) Bounds() Rect {
	var (
		pts       []Pt
		cur, from Pt
	)
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case MoveTo:
			from = c.end()
			pts = append(pts, from)
		case LineTo:
			pts = append(pts, c.end())
		case QuadTo:
			p1, p2 := Pt{d[0], d[1]}, Pt{d[2], d[3]}
			pts = append(pts, p2)
			for _, t := range quadExtrema(cur, p1, p2) {
				pts = append(pts, quadAt(cur, p1, p2, t))
			}
		case CubicTo:
			p1, p2, p3 := Pt{d[0], d[1]}, Pt{d[2], d[3]}, Pt{d[4], d[5]}
			pts = append(pts, p3)
			for _, t := range cubicExtrema(cur, p1, p2, p3) {
				pts = append(pts, cubicAt(cur, p1, p2, p3, t))
			}
		case Close:
			cur = from
			continue
		}
		cur = c.end()
	}
	return BoundsOf(pts)
}

// Subpath is a flattened run of points between MoveTo commands.
type Subpath struct {
	Pts    []Pt
	Closed bool
}

// flattenStep is the approximate chord length used for curves.
const flattenStep = 4

// Flatten approximates curves with line segments.
func (p *Path) Flatten() []Subpath {
	var (
		out []Subpath
		sp  *Subpath
		cur Pt
	)
	start := func(at Pt) {
		out = append(out, Subpath{Pts: []Pt{at}})
		sp = &out[len(out)-1]
	}
	for _, c := range p.Cmds {
		d := c.Data
		if c.Op == MoveTo || sp == nil || sp.Closed {
			at := cur
			if c.Op == MoveTo {
				at = c.end()
			}
			start(at)
			if c.Op == MoveTo {
				cur = at
				continue
			}
		}
		switch c.Op {
		case LineTo:
			sp.Pts = append(sp.Pts, c.end())
		case QuadTo:
			p1, p2 := Pt{d[0], d[1]}, Pt{d[2], d[3]}
			n := steps(Dist(cur, p1) + Dist(p1, p2))
			for i := 1; i <= n; i++ {
				sp.Pts = append(sp.Pts, quadAt(cur, p1, p2, float32(i)/float32(n)))
			}
		case CubicTo:
			p1, p2, p3 := Pt{d[0], d[1]}, Pt{d[2], d[3]}, Pt{d[4], d[5]}
			n := steps(Dist(cur, p1) + Dist(p1, p2) + Dist(p2, p3))
			for i := 1; i <= n; i++ {
				sp.Pts = append(sp.Pts, cubicAt(cur, p1, p2, p3, float32(i)/float32(n)))
			}
		case Close:
			sp.Closed = true
			cur = sp.Pts[0]
			continue
		}
		cur = c.end()
	}
	return out
}

func steps(length float32) int {
	return int(min(max(math.Ceil(float64(length/flattenStep)), 1), 64))
}

func quadAt(p0, p1, p2 Pt, t float32) Pt {
	u := 1 - t
	return p0.Mul(u * u).Add(p1.Mul(2 * u * t)).Add(p2.Mul(t * t))
}

func cubicAt(p0, p1, p2, p3 Pt, t float32) Pt {
	u := 1 - t
	return p0.Mul(u * u * u).Add(p1.Mul(3 * u * u * t)).Add(p2.Mul(3 * u * t * t)).Add(p3.Mul(t * t * t))
}

// quadExtrema returns the parameters in (0,1) where either coordinate of
// the curve turns.
func quadExtrema(p0, p1, p2 Pt) []float32 {
	var ts []float32
	for _, c := range [][3]float32{{p0.X, p1.X, p2.X}, {p0.Y, p1.Y, p2.Y}} {
		den := c[0] - 2*c[1] + c[2]
		if den == 0 {
			continue
		}
		if t := (c[0] - c[1]) / den; t > 0 && t < 1 {
			ts = append(ts, t)
		}
	}
	return ts
}

func cubicExtrema(p0, p1, p2, p3 Pt) []float32 {
	var ts []float32
	for _, c := range [][4]float32{{p0.X, p1.X, p2.X, p3.X}, {p0.Y, p1.Y, p2.Y, p3.Y}} {
		// derivative / 3 = a t^2 + b t + k
		a := float64(c[3] - 3*c[2] + 3*c[1] - c[0])
		b := float64(2 * (c[2] - 2*c[1] + c[0]))
		k := float64(c[1] - c[0])
		for _, t := range quadRoots(a, b, k) {
			if t > 0 && t < 1 {
				ts = append(ts, float32(t))
			}
		}
	}
	return ts
}

func quadRoots(a, b, c float64) []float64 {
	const eps = 1e-12
	if math.Abs(a) < eps {
		if math.Abs(b) < eps {
			return nil
		}
		return []float64{-c / b}
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	s := math.Sqrt(disc)
	return []float64{(-b + s) / (2 * a), (-b - s) / (2 * a)}
}

// PathNode draws a path. Freehand strokes are paths grown one sample at a
// time through AppendPoint.
type PathNode struct {
	baseNode
	path Path
	bbox Rect
}

func NewPath(p Path, f Fill, s Stroke) *PathNode {
	return &PathNode{baseNode: newBase(f, s), path: p, bbox: p.Bounds()}
}

// NewStroke starts an open polyline at p.
func NewStroke(p Pt, s Stroke) *PathNode {
	n := &PathNode{baseNode: newBase(Fill{}, s), bbox: Rect{X: p.X, Y: p.Y}}
	n.path.MoveTo(p.X, p.Y)
	return n
}

// AppendPoint extends the path with a line segment.
func (n *PathNode) AppendPoint(p Pt) {
	n.path.LineTo(p.X, p.Y)
	n.bbox = n.bbox.Union(Rect{X: p.X, Y: p.Y})
}

// Path returns the geometry; the command slice is shared.
func (n *PathNode) Path() Path { return n.path }

// Len is the number of path commands.
func (n *PathNode) Len() int { return len(n.path.Cmds) }

func (n *PathNode) Bounds() Rect { return n.xf.TransformRect(n.bbox) }

// Hit picks the filled area under the fill rule or any point within the stroke
// slop of the outline.
func (n *PathNode) Hit(p Pt) bool {
	slop := max(n.halfStroke(), lineSlop)
	q := n.local(p)
	if !n.bbox.Inset(-slop, -slop).Contains(q) {
		return false
	}
	subs := n.path.Flatten()
	if n.fill.Enabled {
		rings := make([][]Pt, len(subs))
		for i, sp := range subs {
			rings[i] = sp.Pts
		}
		if n.fill.Contains(rings, q) {
			return true
		}
	}
	for _, sp := range subs {
		if len(sp.Pts) == 1 && Dist(q, sp.Pts[0]) <= slop {
			return true
		}
		for i := 1; i < len(sp.Pts); i++ {
			if distToSegment(q, sp.Pts[i-1], sp.Pts[i]) <= slop {
				return true
			}
		}
		if sp.Closed && len(sp.Pts) > 2 && distToSegment(q, sp.Pts[len(sp.Pts)-1], sp.Pts[0]) <= slop {
			return true
		}
	}
	return false
}
