/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"log/slog"

	"gopaint/internal/pointer"
	"gopaint/internal/vector"
)

// Layer orders handler groups during dispatch; higher layers see events first.
type Layer uint8

const (
	LayerEngine Layer = iota
	LayerTool
	LayerControls
)

// HandlerFunc handles one pointer event. Returning true consumes it: lower
// layers and the built-in behaviours do not see it.
type HandlerFunc func(ev pointer.Event) bool

type subscriber struct {
	id    uint64
	layer Layer
	phase pointer.Phase
	fn    HandlerFunc
}

// Subscription is the registration token returned by Subscribe.
type Subscription struct {
	c  *Canvas
	id uint64
}

// Cancel unregisters the handler. Cancelling twice is harmless.
func (s Subscription) Cancel() {
	if s.c == nil {
		return
	}
	s.c.unsubscribe(s.id)
}

// Live reports whether the handler is still registered.
func (s Subscription) Live() bool { return s.c != nil && s.c.subscribed(s.id) }

// Subscribe registers fn for one phase on one layer.
func (c *Canvas) Subscribe(layer Layer, phase pointer.Phase, fn HandlerFunc) Subscription {
	c.nextSub++
	c.subs = append(c.subs, subscriber{id: c.nextSub, layer: layer, phase: phase, fn: fn})
	return Subscription{c: c, id: c.nextSub}
}

// HandlerCount is the number of registered handlers.
func (c *Canvas) HandlerCount() int { return len(c.subs) }

func (c *Canvas) unsubscribe(id uint64) {
	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

func (c *Canvas) subscribed(id uint64) bool {
	for _, s := range c.subs {
		if s.id == id {
			return true
		}
	}
	return false
}

// Pointer maps a raw host event to its scene point.
func (c *Canvas) Pointer(r pointer.Raw) vector.Pt { return c.view.Normalize(r).Point }

// Dispatch delivers a raw host event. Handlers are snapshotted up front; a
// handler cancelled by an earlier one during the same dispatch is skipped.
func (c *Canvas) Dispatch(r pointer.Raw) {
	ev := c.view.Normalize(r)
	snapshot := make([]subscriber, 0, len(c.subs))
	for _, s := range c.subs {
		if s.phase == ev.Phase {
			snapshot = append(snapshot, s)
		}
	}
	for layer := LayerControls; ; layer-- {
		for _, s := range snapshot {
			if s.layer != layer || !c.subscribed(s.id) {
				continue
			}
			if s.fn(ev) {
				return
			}
		}
		if layer == LayerEngine {
			break
		}
	}
	c.builtin(ev)
}

// SetDrawingMode switches freehand capture on or off. Turning it off drops a
// stroke that is still being drawn.
func (c *Canvas) SetDrawingMode(on bool, brush vector.Stroke) {
	c.drawing = on
	c.brush = brush
	if !on && c.stroke != nil {
		c.stroke = nil
		c.RequestRedraw()
	}
}

func (c *Canvas) DrawingMode() bool { return c.drawing }

// SetSelection enables click-to-select and drag-to-move.
func (c *Canvas) SetSelection(on bool) {
	c.selection = on
	if !on {
		c.endDrag()
	}
}

func (c *Canvas) Selection() bool { return c.selection }

// SetSnap configures snapping of dragged shapes to the other shapes.
func (c *Canvas) SetSnap(o vector.SnapOptions) { c.snap = o }

// Guides are the alignment lines of the current drag, in scene coordinates.
func (c *Canvas) Guides() []vector.Guide { return c.guides }

func (c *Canvas) endDrag() {
	c.drag = nil
	if c.guides != nil {
		c.guides = nil
		c.RequestRedraw()
	}
}

// snapTargets are the bounds of every selectable shape except h.
func (c *Canvas) snapTargets(h Handle) []vector.Rect {
	var out []vector.Rect
	for _, it := range c.items {
		if it.h != h && it.n.Selectable() {
			out = append(out, it.n.Bounds())
		}
	}
	return out
}

func (c *Canvas) builtin(ev pointer.Event) {
	switch {
	case c.drawing:
		c.freehand(ev)
	case c.selection:
		c.selectDrag(ev)
	}
}

func (c *Canvas) freehand(ev pointer.Event) {
	switch ev.Phase {
	case pointer.Press:
		c.stroke = vector.NewStroke(ev.Point, c.brush)
		c.RequestRedraw()
	case pointer.Move:
		if c.stroke == nil {
			return
		}
		c.stroke.AppendPoint(ev.Point)
		c.RequestRedraw()
	case pointer.Release:
		if c.stroke == nil {
			return
		}
		s := c.stroke
		c.stroke = nil
		h := c.Add(s)
		c.log.Debug("freehand stroke committed", slog.Uint64("handle", uint64(h)), slog.Int("cmds", s.Len()))
	}
}

func (c *Canvas) selectDrag(ev pointer.Event) {
	switch ev.Phase {
	case pointer.Press:
		for _, h := range c.ShapesAt(ev.Point) {
			if n, _ := c.Node(h); n.Selectable() {
				c.SetActive(h)
				c.drag = &dragState{h: h, start: ev.Point, xf: n.Transform(), bounds: n.Bounds()}
				return
			}
		}
		c.SetActive(None)
	case pointer.Move:
		if c.drag == nil {
			return
		}
		n, ok := c.Node(c.drag.h)
		if !ok {
			c.endDrag()
			return
		}
		d := ev.Point.Sub(c.drag.start)
		if c.snap.Enabled() {
			moved := c.drag.bounds
			moved.X += d.X
			moved.Y += d.Y
			var snapped vector.Rect
			snapped, c.guides = vector.Snap(moved, c.snapTargets(c.drag.h), c.snap)
			d = snapped.Min().Sub(c.drag.bounds.Min())
		}
		n.SetTransform(vector.Translate(d.X, d.Y).Mul(c.drag.xf))
		c.RequestRedraw()
	case pointer.Release:
		c.endDrag()
	}
}
