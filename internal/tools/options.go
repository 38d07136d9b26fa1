/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tools

import (
	"fmt"
	"strings"

	"gopaint/internal/vector"
)

// Unit is a measurement unit for the measure tool.
type Unit string

const (
	UnitPx Unit = "px"
	UnitMM Unit = "mm"
	UnitCM Unit = "cm"
	UnitIn Unit = "in"
)

const mmPerInch = 25.4

// ParseUnit accepts px, mm, cm and in; anything else is an error.
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(s))); u {
	case UnitPx, UnitMM, UnitCM, UnitIn:
		return u, nil
	case "":
		return UnitPx, nil
	default:
		return UnitPx, fmt.Errorf("unknown unit %q", s)
	}
}

// ConvertLength converts a scene length in pixels to u at the given dpi.
func ConvertLength(px float32, u Unit, dpi float32) float32 {
	if dpi <= 0 {
		dpi = 96
	}
	switch u {
	case UnitIn:
		return px / dpi
	case UnitMM:
		return px / dpi * mmPerInch
	case UnitCM:
		return px / dpi * mmPerInch / 10
	default:
		return px
	}
}

// ToPixels converts a length in u at the given dpi to scene pixels. It is
// the inverse of ConvertLength.
func ToPixels(v float32, u Unit, dpi float32) float32 {
	if dpi <= 0 {
		dpi = 96
	}
	switch u {
	case UnitIn:
		return v * dpi
	case UnitMM:
		return v / mmPerInch * dpi
	case UnitCM:
		return v * 10 / mmPerInch * dpi
	default:
		return v
	}
}

// FormatLength renders the measurement label text, e.g. "12.70 mm".
func FormatLength(px float32, u Unit, dpi float32) string {
	if u == "" {
		u = UnitPx
	}
	return fmt.Sprintf("%.2f %s", ConvertLength(px, u, dpi), u)
}

// Options is the tool configuration snapshot a session reads at creation.
// It is a value type; sessions never see later edits.
type Options struct {
	StrokeColor vector.Color
	StrokeWidth float32
	FillColor   vector.Color
	BrushWidth  float32
	FontSize    float32
	FontFamily  string
	Text        string // initial content of new text shapes

	Unit          Unit
	DPI           float32
	MeasureLength float32 // default length for placed measurements, in Unit

	// ClosingRadius is the polygon closing tolerance in screen pixels.
	ClosingRadius float32
	// EllipseFromCenter anchors ellipses on their center instead of a corner.
	EllipseFromCenter bool
}

// DefaultOptions mirrors the toolbar's initial state.
func DefaultOptions() Options {
	return Options{
		StrokeColor:   vector.Black,
		StrokeWidth:   2,
		FillColor:     vector.Transparent,
		BrushWidth:    5,
		FontSize:      20,
		FontFamily:    "Go",
		Text:          "Text",
		Unit:          UnitPx,
		DPI:           96,
		MeasureLength: 100,
		ClosingRadius: 8,
	}
}

// normalized replaces unusable values with defaults.
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = d.StrokeWidth
	}
	if o.BrushWidth <= 0 {
		o.BrushWidth = d.BrushWidth
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	if o.FontFamily == "" {
		o.FontFamily = d.FontFamily
	}
	if o.Text == "" {
		o.Text = d.Text
	}
	if o.Unit == "" {
		o.Unit = d.Unit
	}
	if o.DPI <= 0 {
		o.DPI = d.DPI
	}
	if o.MeasureLength <= 0 {
		o.MeasureLength = d.MeasureLength
	}
	if o.ClosingRadius <= 0 {
		o.ClosingRadius = d.ClosingRadius
	}
	return o
}
