/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Coordinates are scene units, pixels at 100% zoom. float32 matches the
// fyne canvas types.

import "math"

// Pt is a 2D point or vector.
type Pt struct{ X, Y float32 }

func (p Pt) Add(q Pt) Pt      { return Pt{p.X + q.X, p.Y + q.Y} }
func (p Pt) Sub(q Pt) Pt      { return Pt{p.X - q.X, p.Y - q.Y} }
func (p Pt) Mul(k float32) Pt { return Pt{p.X * k, p.Y * k} }
func (p Pt) Mid(q Pt) Pt      { return p.Add(q).Mul(0.5) }
func (p Pt) Dot(q Pt) float32 { return p.X*q.X + p.Y*q.Y }
func (p Pt) Len() float32     { return float32(math.Hypot(float64(p.X), float64(p.Y))) }

// Eq compares per axis within eps.
func (p Pt) Eq(q Pt, eps float32) bool { return abs(p.X-q.X) <= eps && abs(p.Y-q.Y) <= eps }

func Dist(a, b Pt) float32 { return b.Sub(a).Len() }

// Rect is an axis-aligned box: the min corner plus a non-negative size.
type Rect struct {
	X, Y float32
	W, H float32
}

func R(x, y, w, h float32) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// span builds the rect between a min and a max corner.
func span(lo, hi Pt) Rect { return Rect{X: lo.X, Y: lo.Y, W: hi.X - lo.X, H: hi.Y - lo.Y} }

func (r Rect) Min() Pt     { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt     { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Center() Pt  { return Pt{r.X + r.W/2, r.Y + r.H/2} }
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains includes the edges.
func (r Rect) Contains(p Pt) bool {
	lo, hi := r.Min(), r.Max()
	return lo.X <= p.X && p.X <= hi.X && lo.Y <= p.Y && p.Y <= hi.Y
}

// Inset shrinks r by dx, dy on every side; negative values grow it.
func (r Rect) Inset(dx, dy float32) Rect {
	d := Pt{dx, dy}
	return span(r.Min().Add(d), r.Max().Sub(d))
}

func (r Rect) Union(o Rect) Rect { return BoundsOf([]Pt{r.Min(), r.Max(), o.Min(), o.Max()}) }

// RectFromPoints is the rect spanned by two opposite corners in any order.
func RectFromPoints(a, b Pt) Rect { return BoundsOf([]Pt{a, b}) }

// BoundsOf is the box around pts, zero for none.
func BoundsOf(pts []Pt) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = Pt{min(lo.X, p.X), min(lo.Y, p.Y)}
		hi = Pt{max(hi.X, p.X), max(hi.Y, p.Y)}
	}
	return span(lo, hi)
}

// evenOdd reports whether q lies inside the closed ring pts.
func evenOdd(pts []Pt, q Pt) bool {
	in := false
	for i := range pts {
		a, b := pts[i], pts[(i+len(pts)-1)%len(pts)]
		if (a.Y > q.Y) == (b.Y > q.Y) {
			continue
		}
		if q.X < a.X+(b.X-a.X)*(q.Y-a.Y)/(b.Y-a.Y) {
			in = !in
		}
	}
	return in
}

// winding is the signed number of times the ring pts goes around q.
func winding(pts []Pt, q Pt) int {
	w := 0
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		// cross > 0 when q is left of a->b
		cross := (b.X-a.X)*(q.Y-a.Y) - (q.X-a.X)*(b.Y-a.Y)
		switch {
		case a.Y <= q.Y && b.Y > q.Y && cross > 0:
			w++
		case a.Y > q.Y && b.Y <= q.Y && cross < 0:
			w--
		}
	}
	return w
}

func distToSegment(p, a, b Pt) float32 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return Dist(p, a)
	}
	t := min(max(p.Sub(a).Dot(ab)/l2, 0), 1)
	return Dist(p, a.Add(ab.Mul(t)))
}

// Affine2D is the matrix
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
type Affine2D struct{ A, B, C, D, E, F float32 }

var Identity = Affine2D{A: 1, D: 1}

func Translate(tx, ty float32) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float32) Affine2D     { return Affine2D{A: sx, D: sy} }

func Rotate(rad float32) Affine2D {
	s, c := math.Sincos(float64(rad))
	return Affine2D{A: float32(c), B: float32(s), C: float32(-s), D: float32(c)}
}

// Apply maps p through m.
func (m Affine2D) Apply(p Pt) Pt {
	return Pt{m.A*p.X + m.C*p.Y + m.E, m.B*p.X + m.D*p.Y + m.F}
}

// linear maps a direction, ignoring the translation.
func (m Affine2D) linear(v Pt) Pt { return Pt{m.A*v.X + m.C*v.Y, m.B*v.X + m.D*v.Y} }

// Mul composes m after n: m.Mul(n).Apply(p) == m.Apply(n.Apply(p)).
func (m Affine2D) Mul(n Affine2D) Affine2D {
	x, y, t := m.linear(Pt{n.A, n.B}), m.linear(Pt{n.C, n.D}), m.Apply(Pt{n.E, n.F})
	return Affine2D{A: x.X, B: x.Y, C: y.X, D: y.Y, E: t.X, F: t.Y}
}

// Invert returns the inverse. A singular matrix yields Identity so hit
// tests on collapsed shapes degrade instead of producing NaNs.
func (m Affine2D) Invert() Affine2D {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Identity
	}
	inv := Affine2D{A: m.D / det, B: -m.B / det, C: -m.C / det, D: m.A / det}
	t := inv.linear(Pt{m.E, m.F})
	inv.E, inv.F = -t.X, -t.Y
	return inv
}

// Offset is the translation part.
func (m Affine2D) Offset() Pt { return Pt{m.E, m.F} }

// TransformRect is the box around the four mapped corners of r.
func (m Affine2D) TransformRect(r Rect) Rect {
	lo, hi := r.Min(), r.Max()
	return BoundsOf([]Pt{m.Apply(lo), m.Apply(Pt{hi.X, lo.Y}), m.Apply(Pt{lo.X, hi.Y}), m.Apply(hi)})
}

func abs(a float32) float32 { return float32(math.Abs(float64(a))) }

// FloatRound rounds v to places decimals; negative places leave v as is.
func FloatRound(v float32, places int) float32 {
	if places < 0 {
		return v
	}
	pow := math.Pow10(places)
	return float32(math.Round(float64(v)*pow) / pow)
}
