/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures and draws single-line labels. Faces come
// from a Provider so tests can pin a fixed bitmap font.
package textlayout

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FontSpec is a requested family and pixel size.
type FontSpec struct {
	Family string
	Size   float64
}

// Metrics are whole-pixel vertical metrics of a face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// Height is the distance from the top of a line to its descent.
func (m Metrics) Height() float32 { return m.Ascent + m.Descent }

// Provider resolves a spec to a concrete face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// MetricsOf rounds the metrics of f up to whole pixels.
func MetricsOf(f font.Face) Metrics {
	m := f.Metrics()
	asc, desc := m.Ascent.Ceil(), m.Descent.Ceil()
	return Metrics{Ascent: float32(asc), Descent: float32(desc), LineGap: float32(m.Height.Ceil() - asc - desc)}
}

// BasicProvider always answers with basicfont.Face7x13, whatever the spec.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	return basicfont.Face7x13, MetricsOf(basicfont.Face7x13)
}

// LibraryProvider resolves through a FontLibrary, the default one when
// Lib is nil, and falls back to BasicProvider on failure.
type LibraryProvider struct{ Lib *FontLibrary }

func (p LibraryProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	lib := p.Lib
	if lib == nil {
		lib = Default()
	}
	if face, err := lib.Face(spec.Family, spec.Size); err == nil {
		return face, MetricsOf(face)
	}
	return BasicProvider{}.Resolve(spec)
}

// Label is a resolved face ready to measure or draw text.
type Label struct {
	face font.Face
	Metrics
}

// NewLabel resolves spec through p; a nil p means BasicProvider.
func NewLabel(p Provider, spec FontSpec) Label {
	if p == nil {
		p = BasicProvider{}
	}
	f, m := p.Resolve(spec)
	return Label{face: f, Metrics: m}
}

// Width is the advance of s rounded up to whole pixels.
func (l Label) Width(s string) float32 {
	return float32(font.MeasureString(l.face, s).Ceil())
}

// Draw renders s with the top-left corner of its line box at at.
func (l Label) Draw(dst draw.Image, s string, at image.Point, col color.Color) {
	d := font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: l.face, Dot: fixed.P(at.X, at.Y+int(l.Ascent))}
	d.DrawString(s)
}

// Measure returns the width and line height of text set in spec.
func Measure(p Provider, text string, spec FontSpec) (w, h float32) {
	l := NewLabel(p, spec)
	return l.Width(text), l.Height()
}

// DrawString renders text with its top-left corner at at.
func DrawString(dst draw.Image, p Provider, spec FontSpec, text string, at image.Point, col color.Color) {
	NewLabel(p, spec).Draw(dst, text, at, col)
}
