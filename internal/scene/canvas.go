/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene is the retained-mode drawing engine: it owns the shapes,
// their z-order, the active object, the view transform and the pointer
// handler registry the tools subscribe to. It also implements the two
// behaviours the tools delegate to it wholesale: freehand stroke capture and
// click-and-drag selection.
//
// Everything runs on the UI goroutine; Canvas is not safe for concurrent use.
package scene

import (
	"log/slog"

	applog "gopaint/internal/log"
	"gopaint/internal/pointer"
	"gopaint/internal/vector"
)

// Handle identifies a shape for as long as it is in the scene. Zero is never issued.
type Handle uint64

const None Handle = 0

type item struct {
	h Handle
	n vector.Node
}

// Canvas is the scene. Items are kept bottom to top.
type Canvas struct {
	log *slog.Logger

	items  []item
	nextH  Handle
	active Handle

	width, height int
	background    vector.Color

	view     pointer.View
	redraws  int
	onRedraw func()
	onRemove func(Handle)

	subs    []subscriber
	nextSub uint64

	// built-in modes
	drawing   bool
	brush     vector.Stroke
	stroke    *vector.PathNode
	selection bool
	drag      *dragState
	snap      vector.SnapOptions
	guides    []vector.Guide
}

// dragState remembers where a move started so snapping never accumulates.
type dragState struct {
	h      Handle
	start  vector.Pt
	xf     vector.Affine2D
	bounds vector.Rect
}

// NewCanvas returns an empty white scene of the given size.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		log:        applog.WithComponent("scene"),
		width:      width,
		height:     height,
		background: vector.White,
		view:       pointer.NewView(),
	}
}

func (c *Canvas) Size() (int, int) { return c.width, c.height }

// Resize changes the drawing area; shapes keep their scene coordinates.
func (c *Canvas) Resize(w, h int) {
	c.width, c.height = w, h
	c.RequestRedraw()
}

func (c *Canvas) Background() vector.Color     { return c.background }
func (c *Canvas) SetBackground(b vector.Color) { c.background = b; c.RequestRedraw() }

// OnRedraw installs the single redraw callback (the host widget's refresh).
func (c *Canvas) OnRedraw(fn func()) { c.onRedraw = fn }

// OnRemove installs the callback invoked after a shape leaves the scene.
func (c *Canvas) OnRemove(fn func(Handle)) { c.onRemove = fn }

// RequestRedraw schedules a repaint. Calls are counted so headless callers
// and tests can observe them.
func (c *Canvas) RequestRedraw() {
	c.redraws++
	if c.onRedraw != nil {
		c.onRedraw()
	}
}

func (c *Canvas) Redraws() int { return c.redraws }

// Add appends n on top of the z-order and returns its handle.
func (c *Canvas) Add(n vector.Node) Handle {
	if n == nil {
		return None
	}
	c.nextH++
	c.items = append(c.items, item{h: c.nextH, n: n})
	c.RequestRedraw()
	return c.nextH
}

// Remove deletes the shape. Unknown handles report false.
func (c *Canvas) Remove(h Handle) bool {
	i := c.index(h)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	if c.active == h {
		c.active = None
	}
	if c.drag != nil && c.drag.h == h {
		c.endDrag()
	}
	if c.onRemove != nil {
		c.onRemove(h)
	}
	c.RequestRedraw()
	return true
}

// Clear removes every shape and any in-progress freehand stroke.
func (c *Canvas) Clear() {
	old := c.items
	c.items = nil
	c.active = None
	c.stroke = nil
	c.endDrag()
	if c.onRemove != nil {
		for _, it := range old {
			c.onRemove(it.h)
		}
	}
	c.RequestRedraw()
}

// Node looks up a shape.
func (c *Canvas) Node(h Handle) (vector.Node, bool) {
	if i := c.index(h); i >= 0 {
		return c.items[i].n, true
	}
	return nil, false
}

// Find returns the handle of n, or None.
func (c *Canvas) Find(n vector.Node) Handle {
	for _, it := range c.items {
		if it.n == n {
			return it.h
		}
	}
	return None
}

func (c *Canvas) Len() int { return len(c.items) }

// Handles lists the shapes bottom to top.
func (c *Canvas) Handles() []Handle {
	out := make([]Handle, len(c.items))
	for i, it := range c.items {
		out[i] = it.h
	}
	return out
}

// Nodes lists the committed shapes bottom to top.
func (c *Canvas) Nodes() []vector.Node {
	out := make([]vector.Node, len(c.items))
	for i, it := range c.items {
		out[i] = it.n
	}
	return out
}

// DrawList is Nodes plus the freehand stroke being captured, if any.
func (c *Canvas) DrawList() []vector.Node {
	out := c.Nodes()
	if c.stroke != nil {
		out = append(out, c.stroke)
	}
	return out
}

// ShapesAt returns the evented shapes under p, top-most first.
func (c *Canvas) ShapesAt(p vector.Pt) []Handle {
	var out []Handle
	for i := len(c.items) - 1; i >= 0; i-- {
		n := c.items[i].n
		if n.Evented() && n.Hit(p) {
			out = append(out, c.items[i].h)
		}
	}
	return out
}

// SetActive marks h as the active (selected) shape; None clears it. Leaving
// a text shape ends its edit mode.
func (c *Canvas) SetActive(h Handle) {
	if h != None && c.index(h) < 0 {
		return
	}
	if c.active != h {
		if prev, ok := c.Node(c.active); ok {
			if t, ok := prev.(*vector.TextNode); ok {
				t.ExitEditing()
			}
		}
	}
	c.active = h
	c.RequestRedraw()
}

func (c *Canvas) Active() Handle { return c.active }

func (c *Canvas) index(h Handle) int {
	if h == None {
		return -1
	}
	for i, it := range c.items {
		if it.h == h {
			return i
		}
	}
	return -1
}
