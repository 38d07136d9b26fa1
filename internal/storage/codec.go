/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"gopaint/internal/domain"
	"gopaint/internal/filter"
	"gopaint/internal/scene"
	"gopaint/internal/vector"
)

// Encode captures the committed shapes of c into a copy of meta. Tool
// previews are not saved.
func Encode(c *scene.Canvas, meta domain.Drawing) (domain.Drawing, error) {
	d := meta
	if d.ID == "" {
		fresh := domain.NewDrawing(meta.Title, 1, 1)
		d.ID, d.Created = fresh.ID, fresh.Created
	}
	d.Version = domain.FormatVersion
	d.Width, d.Height = c.Size()
	d.Background = colorOut(c.Background())
	d.Shapes = make([]domain.Shape, 0, c.Len())
	for _, n := range c.Nodes() {
		if !n.Evented() {
			continue
		}
		s, err := shapeOut(n)
		if err != nil {
			return domain.Drawing{}, err
		}
		d.Shapes = append(d.Shapes, s)
	}
	return d, nil
}

// Decode replaces the contents of c with the shapes of d.
func Decode(d domain.Drawing, c *scene.Canvas) error {
	if err := d.Validate(); err != nil {
		return err
	}
	nodes := make([]vector.Node, 0, len(d.Shapes))
	for i, s := range d.Shapes {
		n, err := shapeIn(s)
		if err != nil {
			return fmt.Errorf("shape %d: %w", i, err)
		}
		nodes = append(nodes, n)
	}
	c.Clear()
	c.Resize(d.Width, d.Height)
	c.SetBackground(colorIn(d.Background))
	for _, n := range nodes {
		c.Add(n)
	}
	return nil
}

func colorOut(c vector.Color) domain.Color { return domain.Color{R: c.R, G: c.G, B: c.B, A: c.A} }
func colorIn(c domain.Color) vector.Color  { return vector.Color{R: c.R, G: c.G, B: c.B, A: c.A} }

func xfOut(m vector.Affine2D) [6]float32 { return [6]float32{m.A, m.B, m.C, m.D, m.E, m.F} }
func xfIn(a [6]float32) vector.Affine2D {
	m := vector.Affine2D{A: a[0], B: a[1], C: a[2], D: a[3], E: a[4], F: a[5]}
	if m == (vector.Affine2D{}) {
		return vector.Identity
	}
	return m
}

func ptsOut(pts []vector.Pt) []domain.Point {
	out := make([]domain.Point, len(pts))
	for i, p := range pts {
		out[i] = domain.Point{X: p.X, Y: p.Y}
	}
	return out
}

func ptsIn(pts []domain.Point) []vector.Pt {
	out := make([]vector.Pt, len(pts))
	for i, p := range pts {
		out[i] = vector.Pt{X: p.X, Y: p.Y}
	}
	return out
}

func rectOut(r vector.Rect) *domain.Rect {
	return &domain.Rect{X: r.X, Y: r.Y, Width: r.W, Height: r.H}
}

func paintOut(n vector.Node, s *domain.Shape) {
	if f := n.Fill(); f.Enabled {
		s.Fill = &domain.Fill{Color: colorOut(f.Color), EvenOdd: f.Rule == vector.EvenOdd}
	}
	if st := n.Stroke(); st.Enabled {
		s.Stroke = &domain.Stroke{Color: colorOut(st.Color), Width: st.Width, Cap: st.Cap.String(), Join: st.Join.String()}
	}
}

func paintIn(s domain.Shape) (vector.Fill, vector.Stroke) {
	var f vector.Fill
	if s.Fill != nil {
		f = vector.Fill{Color: colorIn(s.Fill.Color), Enabled: true}
		if s.Fill.EvenOdd {
			f.Rule = vector.EvenOdd
		}
	}
	var st vector.Stroke
	if s.Stroke != nil {
		st = vector.Stroke{
			Color:    colorIn(s.Stroke.Color),
			Width:    s.Stroke.Width,
			Cap:      vector.ParseLineCap(s.Stroke.Cap),
			Join:     vector.ParseLineJoin(s.Stroke.Join),
			MiterLim: 4,
			Enabled:  true,
		}
	}
	return f, st
}

func encodePNG(img *image.NRGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func decodePNG(b []byte) (*image.NRGBA, error) {
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return vector.ToNRGBA(img), nil
}

func pathOut(p vector.Path) []domain.PathCmd {
	out := make([]domain.PathCmd, 0, len(p.Cmds))
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			out = append(out, domain.PathCmd{Op: "M", Args: []float32{d[0], d[1]}})
		case vector.LineTo:
			out = append(out, domain.PathCmd{Op: "L", Args: []float32{d[0], d[1]}})
		case vector.QuadTo:
			out = append(out, domain.PathCmd{Op: "Q", Args: []float32{d[0], d[1], d[2], d[3]}})
		case vector.CubicTo:
			out = append(out, domain.PathCmd{Op: "C", Args: d[:]})
		case vector.Close:
			out = append(out, domain.PathCmd{Op: "Z"})
		}
	}
	return out
}

func pathIn(cmds []domain.PathCmd) (vector.Path, error) {
	var p vector.Path
	for i, c := range cmds {
		want := map[string]int{"M": 2, "L": 2, "Q": 4, "C": 6, "Z": 0}[c.Op]
		if len(c.Args) < want {
			return p, fmt.Errorf("path command %d (%s): %d args, want %d", i, c.Op, len(c.Args), want)
		}
		a := c.Args
		switch c.Op {
		case "M":
			p.MoveTo(a[0], a[1])
		case "L":
			p.LineTo(a[0], a[1])
		case "Q":
			p.QuadTo(a[0], a[1], a[2], a[3])
		case "C":
			p.CubicTo(a[0], a[1], a[2], a[3], a[4], a[5])
		case "Z":
			p.Close()
		default:
			return p, fmt.Errorf("path command %d: unknown op %q", i, c.Op)
		}
	}
	return p, nil
}

func shapeOut(n vector.Node) (domain.Shape, error) {
	s := domain.Shape{Transform: xfOut(n.Transform()), Selectable: n.Selectable()}
	paintOut(n, &s)
	switch v := n.(type) {
	case *vector.RectNode:
		s.Kind, s.Rect = domain.KindRect, rectOut(v.Rect())
	case *vector.EllipseNode:
		s.Kind, s.Rect = domain.KindEllipse, rectOut(v.Rect())
	case *vector.LineNode:
		a, b := v.Points()
		s.Kind, s.Points = domain.KindLine, ptsOut([]vector.Pt{a, b})
	case *vector.PolygonNode:
		s.Kind, s.Points = domain.KindPolygon, ptsOut(v.Points())
	case *vector.PathNode:
		s.Kind, s.Path = domain.KindPath, pathOut(v.Path())
	case *vector.TextNode:
		s.Kind = domain.KindText
		s.Text, s.FontSize, s.FontFamily = v.Text(), v.FontSize(), v.FontFamily()
		s.Points = ptsOut([]vector.Pt{v.Origin()})
	case *vector.ImageNode:
		data, err := encodePNG(v.Source())
		if err != nil {
			return s, err
		}
		img := &domain.Image{PNG: data}
		for _, f := range v.Filters() {
			sp := filter.SpecOf(f)
			img.Filters = append(img.Filters, domain.Filter{Kind: string(sp.Kind), Value: sp.Value})
		}
		if orig, xf, ok := v.Original(); ok {
			if img.Original, err = encodePNG(orig); err != nil {
				return s, err
			}
			t := xfOut(xf)
			img.OriginalTransform = &t
		}
		s.Kind, s.Image = domain.KindImage, img
	case *vector.Group:
		s.Kind = domain.KindGroup
		for _, ch := range v.Children {
			cs, err := shapeOut(ch)
			if err != nil {
				return s, err
			}
			s.Children = append(s.Children, cs)
		}
	default:
		return s, fmt.Errorf("cannot encode %T", n)
	}
	return s, nil
}

func shapeIn(s domain.Shape) (vector.Node, error) {
	f, st := paintIn(s)
	var n vector.Node
	switch s.Kind {
	case domain.KindRect:
		n = vector.NewRect(vector.R(s.Rect.X, s.Rect.Y, s.Rect.Width, s.Rect.Height), f, st)
	case domain.KindEllipse:
		n = vector.NewEllipse(vector.R(s.Rect.X, s.Rect.Y, s.Rect.Width, s.Rect.Height), f, st)
	case domain.KindLine:
		pts := ptsIn(s.Points)
		n = vector.NewLine(pts[0], pts[1], st)
	case domain.KindPolygon:
		n = vector.NewPolygonLocal(ptsIn(s.Points), xfIn(s.Transform), f, st)
	case domain.KindPath:
		p, err := pathIn(s.Path)
		if err != nil {
			return nil, err
		}
		n = vector.NewPath(p, f, st)
	case domain.KindText:
		var at vector.Pt
		if len(s.Points) > 0 {
			at = ptsIn(s.Points[:1])[0]
		}
		n = vector.NewText(s.Text, at, s.FontSize, s.FontFamily, f)
	case domain.KindImage:
		src, err := decodePNG(s.Image.PNG)
		if err != nil {
			return nil, err
		}
		img := vector.NewImage(src, vector.Pt{})
		specs := make([]filter.Spec, 0, len(s.Image.Filters))
		for _, fs := range s.Image.Filters {
			specs = append(specs, filter.Spec{Kind: filter.Kind(fs.Kind), Value: fs.Value})
		}
		img.SetFilters(filter.Build(specs))
		if len(s.Image.Original) > 0 && s.Image.OriginalTransform != nil {
			orig, err := decodePNG(s.Image.Original)
			if err != nil {
				return nil, err
			}
			img.SetOriginal(orig, xfIn(*s.Image.OriginalTransform))
		}
		n = img
	case domain.KindGroup:
		g := vector.NewGroup()
		for i, c := range s.Children {
			ch, err := shapeIn(c)
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", i, err)
			}
			g.Children = append(g.Children, ch)
		}
		n = g
	default:
		return nil, fmt.Errorf("unknown kind %q", s.Kind)
	}
	n.SetTransform(xfIn(s.Transform))
	n.SetSelectable(s.Selectable)
	return n, nil
}
