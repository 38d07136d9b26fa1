/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pointer turns host surface input into scene-space pointer events.
// The host (fyne widget, tests, CLI replays) reports positions in its own
// screen coordinates; View maps them through the current pan and zoom so
// geometry lands under the cursor at any zoom level.
package pointer

import (
	"fmt"

	"gopaint/internal/vector"
)

// Phase is the stage of a pointer gesture.
type Phase uint8

const (
	Press Phase = iota
	Move
	Release
)

func (p Phase) String() string {
	switch p {
	case Press:
		return "press"
	case Move:
		return "move"
	case Release:
		return "release"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Button identifies the pressed mouse button. Touch input reports Primary.
type Button uint8

const (
	Primary Button = iota
	Secondary
	Middle
)

// Raw is an event as reported by the host surface, in screen coordinates.
type Raw struct {
	Phase  Phase
	X, Y   float32
	Button Button
}

// Event is a normalized pointer event.
type Event struct {
	Phase  Phase
	Point  vector.Pt // scene coordinates
	Screen vector.Pt
	Button Button
}

// Default zoom limits, matching the range the status bar offers.
const (
	DefaultMinZoom = 0.5
	DefaultMaxZoom = 2.0
)

// View is the pan/zoom state of a drawing surface: screen = scene*Zoom + Pan.
type View struct {
	Zoom    float32
	Pan     vector.Pt
	MinZoom float32
	MaxZoom float32
}

// NewView returns a 100% view with the default limits.
func NewView() View {
	return View{Zoom: 1, MinZoom: DefaultMinZoom, MaxZoom: DefaultMaxZoom}
}

func (v View) zoom() float32 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// ToScene maps a screen position into scene space. Positions outside the
// drawing area are passed through unclamped.
func (v View) ToScene(p vector.Pt) vector.Pt {
	z := v.zoom()
	return vector.Pt{X: (p.X - v.Pan.X) / z, Y: (p.Y - v.Pan.Y) / z}
}

// ToScreen is the inverse of ToScene.
func (v View) ToScreen(p vector.Pt) vector.Pt {
	z := v.zoom()
	return vector.Pt{X: p.X*z + v.Pan.X, Y: p.Y*z + v.Pan.Y}
}

// Transform is the scene-to-screen matrix.
func (v View) Transform() vector.Affine2D {
	z := v.zoom()
	return vector.Translate(v.Pan.X, v.Pan.Y).Mul(vector.Scale(z, z))
}

// Normalize produces the scene-space event for a raw host event.
func (v View) Normalize(r Raw) Event {
	s := vector.Pt{X: r.X, Y: r.Y}
	return Event{Phase: r.Phase, Point: v.ToScene(s), Screen: s, Button: r.Button}
}

// Clamp limits z to the view's zoom range.
func (v View) Clamp(z float32) float32 {
	lo, hi := v.MinZoom, v.MaxZoom
	if lo <= 0 {
		lo = DefaultMinZoom
	}
	if hi < lo {
		hi = lo
	}
	if z < lo {
		return lo
	}
	if z > hi {
		return hi
	}
	return z
}

// SetZoom sets the zoom level, clamped, keeping the pan unchanged.
func (v *View) SetZoom(z float32) { v.Zoom = v.Clamp(z) }

// ZoomAt multiplies the zoom by factor while keeping the scene point under
// the screen position anchor fixed.
func (v *View) ZoomAt(anchor vector.Pt, factor float32) {
	if factor <= 0 {
		return
	}
	before := v.ToScene(anchor)
	v.Zoom = v.Clamp(v.zoom() * factor)
	v.Pan = vector.Pt{X: anchor.X - before.X*v.Zoom, Y: anchor.Y - before.Y*v.Zoom}
}

// Reset returns to 100% with no pan.
func (v *View) Reset() {
	v.Zoom = 1
	v.Pan = vector.Pt{}
}

// Percent is the zoom as shown in the status bar.
func (v View) Percent() int { return int(v.zoom()*100 + 0.5) }
