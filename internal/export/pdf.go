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
	"fmt"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"gopaint/internal/vector"
)

// PDFOptions controls PDF export.
//
// One scene pixel maps to one point. Text uses the built-in Helvetica so
// nothing is embedded; images are placed by their axis-aligned bounds.
type PDFOptions struct {
	Title  string
	Author string
}

// WritePDF writes the scene as a single-page PDF.
func WritePDF(w io.Writer, sc Scene, opt PDFOptions) error {
	if sc == nil {
		return fmt.Errorf("scene is nil")
	}
	width, height := sc.Size()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("scene has no area")
	}
	size := gofpdf.SizeType{Wd: float64(width), Ht: float64(height)}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetAutoPageBreak(false, 0)
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	author := opt.Author
	if author == "" {
		author = "gopaint"
	}
	pdf.SetAuthor(author, true)
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPageFormat("", size)

	if bg := sc.Background(); bg.A > 0 {
		setFillColor(pdf, bg)
		pdf.Rect(0, 0, size.Wd, size.Ht, "F")
	}
	pw := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	for _, n := range sc.Nodes() {
		if exported(n) {
			pw.node(n, vector.Identity)
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// SavePDF writes the scene to path.
func SavePDF(path string, sc Scene, opt PDFOptions) error {
	return saveFile(path, func(w io.Writer) error { return WritePDF(w, sc, opt) })
}

type pdfWriter struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	images int
}

func (pw *pdfWriter) node(n vector.Node, parent vector.Affine2D) {
	m := parent.Mul(n.Transform())
	switch v := n.(type) {
	case *vector.Group:
		for _, ch := range v.Children {
			pw.node(ch, m)
		}
	case *vector.TextNode:
		pw.text(v, m)
	case *vector.ImageNode:
		pw.image(v, m)
	default:
		pw.shape(contours(n, m), n.Fill(), n.Stroke(), scaleOf(m))
	}
}

func (pw *pdfWriter) shape(cs []contour, f vector.Fill, s vector.Stroke, scale float32) {
	stroke := s.Enabled && s.Width > 0
	if stroke {
		setDrawColor(pw.pdf, s.Color)
		pw.pdf.SetLineWidth(float64(s.Width * scale))
		pw.pdf.SetLineCapStyle(s.Cap.String())
		pw.pdf.SetLineJoinStyle(s.Join.String())
	}
	for _, ct := range cs {
		if len(ct.pts) < 2 {
			continue
		}
		fill := f.Enabled && ct.closed && len(ct.pts) > 2
		style := ""
		switch {
		case fill && stroke:
			style = "FD"
		case fill:
			style = "F"
		case stroke:
			style = "D"
		default:
			continue
		}
		if fill {
			setFillColor(pw.pdf, f.Color)
			if f.Rule == vector.EvenOdd {
				style += "*"
			}
		}
		pw.pdf.SetAlpha(alphaOf(f, s, fill, stroke), "Normal")
		pw.pdf.MoveTo(float64(ct.pts[0].X), float64(ct.pts[0].Y))
		for _, p := range ct.pts[1:] {
			pw.pdf.LineTo(float64(p.X), float64(p.Y))
		}
		if ct.closed {
			pw.pdf.ClosePath()
		}
		pw.pdf.DrawPath(style)
	}
	pw.pdf.SetAlpha(1, "Normal")
}

// alphaOf picks one opacity for the path; PDF shares it between fill and
// stroke here.
func alphaOf(f vector.Fill, s vector.Stroke, fill, stroke bool) float64 {
	switch {
	case fill:
		return float64(f.Color.A) / 255
	case stroke:
		return float64(s.Color.A) / 255
	}
	return 1
}

func (pw *pdfWriter) text(n *vector.TextNode, m vector.Affine2D) {
	if n.Text() == "" {
		return
	}
	size := float64(n.FontSize() * scaleOf(m))
	at := m.Apply(n.Origin())
	c := n.Fill().Color
	pw.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	pw.pdf.SetFont("Helvetica", "", size)
	// Text positions the baseline.
	pw.pdf.Text(float64(at.X), float64(at.Y)+size*0.8, pw.tr(n.Text()))
}

func (pw *pdfWriter) image(n *vector.ImageNode, m vector.Affine2D) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, n.Rendered()); err != nil {
		pw.pdf.SetError(fmt.Errorf("encode image: %w", err))
		return
	}
	pw.images++
	name := fmt.Sprintf("img%d", pw.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pw.pdf.RegisterImageOptionsReader(name, opts, &buf)
	iw, ih := n.Size()
	r := m.TransformRect(vector.R(0, 0, float32(iw), float32(ih)))
	pw.pdf.ImageOptions(name, float64(r.X), float64(r.Y), float64(r.W), float64(r.H), false, opts, 0, "")
}

func setDrawColor(p *gofpdf.Fpdf, c vector.Color) {
	p.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(p *gofpdf.Fpdf, c vector.Color) {
	p.SetFillColor(int(c.R), int(c.G), int(c.B))
}
