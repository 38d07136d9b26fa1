/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a scene to PNG, SVG and PDF and decodes images
// into scene nodes.
package export

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	rast "golang.org/x/image/vector"

	"gopaint/internal/textlayout"
	"gopaint/internal/vector"
)

// Scene is the read side of the canvas the exporters need.
type Scene interface {
	Size() (int, int)
	Background() vector.Color
	Nodes() []vector.Node
}

const (
	ellipseSegments = 64
	curveSegments   = 16
	capSegments     = 16
)

// contour is a flattened subpath in scene coordinates.
type contour struct {
	pts    []vector.Pt
	closed bool
}

// exported reports whether n belongs in an export. Tool previews are
// added to the scene as non-evented nodes and are left out.
func exported(n vector.Node) bool { return n != nil && n.Evented() }

func applyAll(m vector.Affine2D, pts []vector.Pt) []vector.Pt {
	out := make([]vector.Pt, len(pts))
	for i, p := range pts {
		out[i] = m.Apply(p)
	}
	return out
}

func rectPts(r vector.Rect) []vector.Pt {
	return []vector.Pt{{X: r.X, Y: r.Y}, {X: r.X + r.W, Y: r.Y}, {X: r.X + r.W, Y: r.Y + r.H}, {X: r.X, Y: r.Y + r.H}}
}

func ellipsePts(r vector.Rect) []vector.Pt {
	c := r.Center()
	rx, ry := float64(r.W/2), float64(r.H/2)
	out := make([]vector.Pt, ellipseSegments)
	for i := range out {
		a := 2 * math.Pi * float64(i) / ellipseSegments
		out[i] = vector.Pt{X: c.X + float32(rx*math.Cos(a)), Y: c.Y + float32(ry*math.Sin(a))}
	}
	return out
}

func flattenPath(p vector.Path) []contour {
	var out []contour
	var cur contour
	var pen vector.Pt
	flush := func() {
		if len(cur.pts) > 0 {
			out = append(out, cur)
		}
		cur = contour{}
	}
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			flush()
			pen = vector.Pt{X: d[0], Y: d[1]}
			cur.pts = append(cur.pts, pen)
		case vector.LineTo:
			pen = vector.Pt{X: d[0], Y: d[1]}
			cur.pts = append(cur.pts, pen)
		case vector.QuadTo:
			p0, c1, p1 := pen, vector.Pt{X: d[0], Y: d[1]}, vector.Pt{X: d[2], Y: d[3]}
			for i := 1; i <= curveSegments; i++ {
				t := float32(i) / curveSegments
				u := 1 - t
				cur.pts = append(cur.pts, p0.Mul(u*u).Add(c1.Mul(2*u*t)).Add(p1.Mul(t*t)))
			}
			pen = p1
		case vector.CubicTo:
			p0 := pen
			c1, c2, p1 := vector.Pt{X: d[0], Y: d[1]}, vector.Pt{X: d[2], Y: d[3]}, vector.Pt{X: d[4], Y: d[5]}
			for i := 1; i <= curveSegments; i++ {
				t := float32(i) / curveSegments
				u := 1 - t
				cur.pts = append(cur.pts, p0.Mul(u*u*u).Add(c1.Mul(3*u*u*t)).Add(c2.Mul(3*u*t*t)).Add(p1.Mul(t*t*t)))
			}
			pen = p1
		case vector.Close:
			cur.closed = true
			flush()
		}
	}
	flush()
	return out
}

// contours flattens the geometry of a leaf node with m applied.
func contours(n vector.Node, m vector.Affine2D) []contour {
	switch s := n.(type) {
	case *vector.RectNode:
		return []contour{{pts: applyAll(m, rectPts(s.Rect())), closed: true}}
	case *vector.EllipseNode:
		return []contour{{pts: applyAll(m, ellipsePts(s.Rect())), closed: true}}
	case *vector.LineNode:
		a, b := s.Points()
		return []contour{{pts: []vector.Pt{m.Apply(a), m.Apply(b)}}}
	case *vector.PolygonNode:
		if s.Dirty() {
			s.Refresh()
		}
		return []contour{{pts: applyAll(m, s.Points()), closed: true}}
	case *vector.PathNode:
		cs := flattenPath(s.Path())
		for i := range cs {
			cs[i].pts = applyAll(m, cs[i].pts)
		}
		return cs
	}
	return nil
}

// scaleOf is the uniform scale factor of m, used for stroke widths and
// font sizes.
func scaleOf(m vector.Affine2D) float32 {
	det := float64(m.A*m.D - m.B*m.C)
	return float32(math.Sqrt(math.Abs(det)))
}

type painter struct {
	dst   *image.RGBA
	r     *rast.Rasterizer
	fonts textlayout.Provider
}

func (p *painter) fillContours(cs []contour, c vector.Color) {
	if c.A == 0 {
		return
	}
	b := p.dst.Bounds()
	p.r.Reset(b.Dx(), b.Dy())
	drawn := false
	for _, ct := range cs {
		if len(ct.pts) < 3 {
			continue
		}
		p.r.MoveTo(ct.pts[0].X, ct.pts[0].Y)
		for _, q := range ct.pts[1:] {
			p.r.LineTo(q.X, q.Y)
		}
		p.r.ClosePath()
		drawn = true
	}
	if drawn {
		p.r.Draw(p.dst, b, image.NewUniform(c.NRGBA()), image.Point{})
	}
}

// quad adds a segment body. All bodies and caps share one orientation so
// overlapping pieces add up instead of cancelling.
func (p *painter) quad(a, b vector.Pt, hw float32) {
	d := b.Sub(a)
	l := vector.Dist(a, b)
	if l == 0 {
		return
	}
	n := vector.Pt{X: -d.Y / l * hw, Y: d.X / l * hw}
	p.r.MoveTo(a.X+n.X, a.Y+n.Y)
	p.r.LineTo(b.X+n.X, b.Y+n.Y)
	p.r.LineTo(b.X-n.X, b.Y-n.Y)
	p.r.LineTo(a.X-n.X, a.Y-n.Y)
	p.r.ClosePath()
}

func (p *painter) disc(c vector.Pt, rad float32) {
	for i := 0; i <= capSegments; i++ {
		a := -2 * math.Pi * float64(i) / capSegments
		x := c.X + rad*float32(math.Cos(a))
		y := c.Y + rad*float32(math.Sin(a))
		if i == 0 {
			p.r.MoveTo(x, y)
		} else {
			p.r.LineTo(x, y)
		}
	}
	p.r.ClosePath()
}

func (p *painter) strokeContours(cs []contour, s vector.Stroke, scale float32) {
	if !s.Enabled || s.Width <= 0 || s.Color.A == 0 {
		return
	}
	hw := s.Width * scale / 2
	b := p.dst.Bounds()
	p.r.Reset(b.Dx(), b.Dy())
	for _, ct := range cs {
		pts := ct.pts
		if len(pts) == 0 {
			continue
		}
		if ct.closed && len(pts) > 2 {
			pts = append(append([]vector.Pt(nil), pts...), pts[0])
		}
		if len(pts) == 1 || (len(pts) == 2 && pts[0] == pts[1]) {
			p.disc(pts[0], hw)
			continue
		}
		if s.Cap == vector.CapSquare && !ct.closed {
			pts = squareEnds(pts, hw)
		}
		for i := 1; i < len(pts); i++ {
			p.quad(pts[i-1], pts[i], hw)
		}
		for i, q := range pts {
			end := !ct.closed && (i == 0 || i == len(pts)-1)
			if (end && s.Cap == vector.CapRound) || (!end && s.Join != vector.JoinBevel) {
				p.disc(q, hw)
			}
		}
	}
	p.r.Draw(p.dst, b, image.NewUniform(s.Color.NRGBA()), image.Point{})
}

// squareEnds extends the first and last segment by hw.
func squareEnds(pts []vector.Pt, hw float32) []vector.Pt {
	out := append([]vector.Pt(nil), pts...)
	extend := func(from, to vector.Pt) vector.Pt {
		l := vector.Dist(from, to)
		if l == 0 {
			return to
		}
		return to.Add(to.Sub(from).Mul(hw / l))
	}
	last := len(out) - 1
	out[0] = extend(pts[1], pts[0])
	out[last] = extend(pts[last-1], pts[last])
	return out
}

func (p *painter) image(n *vector.ImageNode, m vector.Affine2D) {
	src := n.Rendered()
	aff := f64.Aff3{
		float64(m.A), float64(m.C), float64(m.E),
		float64(m.B), float64(m.D), float64(m.F),
	}
	xdraw.BiLinear.Transform(p.dst, aff, src, src.Bounds(), xdraw.Over, nil)
}

func (p *painter) text(n *vector.TextNode, m vector.Affine2D) {
	c := n.Fill().Color
	if n.Text() == "" || c.A == 0 {
		return
	}
	at := m.Apply(n.Origin())
	size := float64(n.FontSize() * scaleOf(m))
	textlayout.DrawString(p.dst, p.fonts, textlayout.FontSpec{Family: n.FontFamily(), Size: size}, n.Text(),
		image.Point{X: int(math.Round(float64(at.X))), Y: int(math.Round(float64(at.Y)))}, c.NRGBA())
}

func (p *painter) node(n vector.Node, parent vector.Affine2D) {
	m := parent.Mul(n.Transform())
	switch s := n.(type) {
	case *vector.Group:
		for _, ch := range s.Children {
			p.node(ch, m)
		}
	case *vector.ImageNode:
		p.image(s, m)
	case *vector.TextNode:
		p.text(s, m)
	default:
		cs := contours(n, m)
		if f := n.Fill(); f.Enabled {
			p.fillContours(cs, f.Color)
		}
		p.strokeContours(cs, n.Stroke(), scaleOf(m))
	}
}

// Rasterize renders sc at its pixel size with the Go fonts.
func Rasterize(sc Scene) *image.NRGBA {
	return RasterizeWith(sc, textlayout.LibraryProvider{})
}

// RasterizeWith renders sc using provider for text.
func RasterizeWith(sc Scene, provider textlayout.Provider) *image.NRGBA {
	return render(sc, provider, exported)
}

// RenderAll is Rasterize with tool previews included, for on-screen display.
func RenderAll(sc Scene) *image.NRGBA {
	return render(sc, textlayout.LibraryProvider{}, func(n vector.Node) bool { return n != nil })
}

func render(sc Scene, provider textlayout.Provider, keep func(vector.Node) bool) *image.NRGBA {
	w, h := sc.Size()
	if w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(sc.Background().NRGBA()), image.Point{}, draw.Src)
	p := &painter{dst: dst, r: rast.NewRasterizer(w, h), fonts: provider}
	for _, n := range sc.Nodes() {
		if keep(n) {
			p.node(n, vector.Identity)
		}
	}
	return vector.ToNRGBA(dst)
}
