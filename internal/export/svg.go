/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"io"
	"strings"

	"gopaint/internal/vector"
)

// WriteSVG writes the scene as a standalone SVG document. Images are
// embedded as base64 PNG with their filters already applied.
func WriteSVG(w io.Writer, sc Scene) error {
	if sc == nil {
		return fmt.Errorf("scene is nil")
	}
	width, height := sc.Size()

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\">\n", width, height, width, height)
	if bg := sc.Background(); bg.A > 0 {
		wf("  <rect x=\"0\" y=\"0\" width=\"%d\" height=\"%d\" %s/>\n", width, height, paintAttrs(vector.SolidFill(bg), vector.Stroke{}))
	}
	for _, n := range sc.Nodes() {
		if exported(n) {
			svgNode(wf, n, "  ")
		}
	}
	wf("</svg>\n")

	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// SaveSVG writes the scene to path.
func SaveSVG(path string, sc Scene) error {
	return saveFile(path, func(w io.Writer) error { return WriteSVG(w, sc) })
}

func svgNode(wf func(string, ...any), n vector.Node, indent string) {
	tf := transformAttr(n.Transform())
	f, s := n.Fill(), n.Stroke()
	switch v := n.(type) {
	case *vector.Group:
		wf("%s<g%s>\n", indent, tf)
		for _, ch := range v.Children {
			svgNode(wf, ch, indent+"  ")
		}
		wf("%s</g>\n", indent)
	case *vector.RectNode:
		r := v.Rect()
		wf("%s<rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\"%s %s/>\n", indent, r.X, r.Y, r.W, r.H, tf, paintAttrs(f, s))
	case *vector.EllipseNode:
		c := v.Center()
		rx, ry := v.Radii()
		wf("%s<ellipse cx=\"%g\" cy=\"%g\" rx=\"%g\" ry=\"%g\"%s %s/>\n", indent, c.X, c.Y, rx, ry, tf, paintAttrs(f, s))
	case *vector.LineNode:
		a, b := v.Points()
		wf("%s<line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\"%s %s/>\n", indent, a.X, a.Y, b.X, b.Y, tf, paintAttrs(vector.Fill{}, s))
	case *vector.PolygonNode:
		pts := make([]string, 0, v.NumPoints())
		for _, p := range v.Points() {
			pts = append(pts, fmt.Sprintf("%g,%g", p.X, p.Y))
		}
		wf("%s<polygon points=\"%s\"%s %s/>\n", indent, strings.Join(pts, " "), tf, paintAttrs(f, s))
	case *vector.PathNode:
		wf("%s<path d=\"%s\"%s %s/>\n", indent, pathData(v.Path()), tf, paintAttrs(f, s))
	case *vector.TextNode:
		o := v.Origin()
		family := v.FontFamily()
		if family == "" {
			family = "Go, Helvetica, Arial, sans-serif"
		}
		wf("%s<text x=\"%g\" y=\"%g\" dominant-baseline=\"text-before-edge\" font-family=\"%s\" font-size=\"%g\" fill=\"%s\"%s>%s</text>\n",
			indent, o.X, o.Y, escAttr(family), v.FontSize(), svgColor(f.Color), opacityAttr("fill-opacity", f.Color), escText(v.Text()))
	case *vector.ImageNode:
		var pb bytes.Buffer
		if err := png.Encode(&pb, v.Rendered()); err != nil {
			return
		}
		iw, ih := v.Size()
		wf("%s<image width=\"%d\" height=\"%d\"%s href=\"data:image/png;base64,%s\"/>\n", indent, iw, ih, tf, base64.StdEncoding.EncodeToString(pb.Bytes()))
	}
}

func transformAttr(m vector.Affine2D) string {
	if m == vector.Identity {
		return ""
	}
	return fmt.Sprintf(" transform=\"matrix(%g %g %g %g %g %g)\"", m.A, m.B, m.C, m.D, m.E, m.F)
}

func paintAttrs(f vector.Fill, s vector.Stroke) string {
	var b strings.Builder
	if f.Enabled {
		fmt.Fprintf(&b, "fill=\"%s\"%s", svgColor(f.Color), opacityAttr("fill-opacity", f.Color))
		if f.Rule == vector.EvenOdd {
			b.WriteString(" fill-rule=\"evenodd\"")
		}
	} else {
		b.WriteString("fill=\"none\"")
	}
	if s.Enabled && s.Width > 0 {
		fmt.Fprintf(&b, " stroke=\"%s\" stroke-width=\"%g\"%s", svgColor(s.Color), s.Width, opacityAttr("stroke-opacity", s.Color))
		if s.Cap != vector.CapButt {
			fmt.Fprintf(&b, " stroke-linecap=\"%s\"", s.Cap)
		}
		if s.Join != vector.JoinMiter {
			fmt.Fprintf(&b, " stroke-linejoin=\"%s\"", s.Join)
		}
	}
	return b.String()
}

func opacityAttr(name string, c vector.Color) string {
	if c.A == 255 {
		return ""
	}
	return fmt.Sprintf(" %s=\"%.3g\"", name, float64(c.A)/255)
}

func pathData(p vector.Path) string {
	var b strings.Builder
	for i, c := range p.Cmds {
		if i > 0 {
			b.WriteByte(' ')
		}
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			fmt.Fprintf(&b, "M%g %g", d[0], d[1])
		case vector.LineTo:
			fmt.Fprintf(&b, "L%g %g", d[0], d[1])
		case vector.QuadTo:
			fmt.Fprintf(&b, "Q%g %g %g %g", d[0], d[1], d[2], d[3])
		case vector.CubicTo:
			fmt.Fprintf(&b, "C%g %g %g %g %g %g", d[0], d[1], d[2], d[3], d[4], d[5])
		case vector.Close:
			b.WriteByte('Z')
		}
	}
	return b.String()
}

func svgColor(c vector.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '\n':
			out = append(out, ' ')
		case '\r':
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
