/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tools

import "gopaint/internal/vector"

// Shape factories. Closed shapes take the fill color; a transparent fill
// leaves them as outlines.

const (
	markerRadius     = 4
	previewWidth     = 1
	measureWidth     = 2
	measureFontSize  = 14
	measureLabelLift = 20
)

func (o Options) stroke() vector.Stroke { return vector.SolidStroke(o.StrokeColor, o.StrokeWidth) }
func (o Options) fill() vector.Fill     { return vector.SolidFill(o.FillColor) }

// NewLineShape returns a line from a to b.
func NewLineShape(a, b vector.Pt, o Options) *vector.LineNode {
	return vector.NewLine(a, b, o.stroke())
}

// NewRectShape returns a rectangle in the current style.
func NewRectShape(r vector.Rect, o Options) *vector.RectNode {
	return vector.NewRect(r, o.fill(), o.stroke())
}

// NewEllipseShape returns an ellipse inscribed in r.
func NewEllipseShape(r vector.Rect, o Options) *vector.EllipseNode {
	return vector.NewEllipse(r, o.fill(), o.stroke())
}

// NewPolygonShape returns a polygon from absolute points.
func NewPolygonShape(pts []vector.Pt, o Options) *vector.PolygonNode {
	return vector.NewPolygon(pts, o.fill(), o.stroke())
}

// NewTextShape returns a text label in the stroke color.
func NewTextShape(at vector.Pt, o Options) *vector.TextNode {
	return vector.NewText(o.Text, at, o.FontSize, o.FontFamily, vector.SolidFill(o.StrokeColor))
}

// NewBrushStroke is the freehand brush style.
func NewBrushStroke(o Options) vector.Stroke {
	return vector.SolidStroke(o.StrokeColor, o.BrushWidth)
}

// transient marks a preview item: drawn, but invisible to hit-testing and selection.
func transient[N vector.Node](n N) N {
	n.SetEvented(false)
	n.SetSelectable(false)
	return n
}

func newMarker(p vector.Pt, o Options) *vector.EllipseNode {
	r := vector.R(p.X-markerRadius, p.Y-markerRadius, 2*markerRadius, 2*markerRadius)
	return transient(vector.NewEllipse(r, vector.SolidFill(o.StrokeColor), vector.Stroke{}))
}

func newPreviewSegment(a, b vector.Pt, o Options) *vector.LineNode {
	return transient(vector.NewLine(a, b, vector.SolidStroke(o.StrokeColor, previewWidth)))
}

// newMeasureLabel places the distance label above the midpoint of a..b.
func newMeasureLabel(a, b vector.Pt, o Options) *vector.TextNode {
	mid := a.Mid(b)
	text := FormatLength(vector.Dist(a, b), o.Unit, o.DPI)
	return vector.NewText(text, vector.Pt{X: mid.X, Y: mid.Y - measureLabelLift}, measureFontSize, o.FontFamily, vector.SolidFill(vector.Black))
}

func newMeasureLine(a, b vector.Pt) *vector.LineNode {
	return vector.NewLine(a, b, vector.SolidStroke(vector.Black, measureWidth))
}

// NewMeasurement builds the committed annotation: the measured line and its label.
func NewMeasurement(a, b vector.Pt, o Options) *vector.Group {
	return vector.NewGroup(newMeasureLine(a, b), newMeasureLabel(a, b, o))
}
