/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tools

import (
	"log/slog"

	"gopaint/internal/pointer"
	"gopaint/internal/scene"
	"gopaint/internal/vector"
)

// HandleSize is the on-screen edge length of a vertex handle in pixels.
const HandleSize = 6

type handle struct {
	index int
	pos   vector.Pt // scene position at the last recompute
}

// VertexEditor exposes one draggable handle per vertex of a committed
// polygon. Handles live on the controls layer so they win over both the
// tool session and the engine's selection drag, but only while their
// polygon is the active shape.
type VertexEditor struct {
	eng      Engine
	h        scene.Handle
	poly     *vector.PolygonNode
	handles  []handle
	dragging int
	subs     []scene.Subscription
	live     bool
	log      *slog.Logger
}

// NewVertexEditor attaches to the polygon behind h. It returns nil when h
// does not name a polygon.
func NewVertexEditor(eng Engine, h scene.Handle, l *slog.Logger) *VertexEditor {
	if eng == nil {
		return nil
	}
	n, ok := eng.Node(h)
	if !ok {
		return nil
	}
	poly, ok := n.(*vector.PolygonNode)
	if !ok {
		return nil
	}
	e := &VertexEditor{eng: eng, h: h, poly: poly, dragging: -1, live: true, log: l.With(slog.Uint64("polygon", uint64(h)))}
	e.sync()
	e.subs = []scene.Subscription{
		eng.Subscribe(scene.LayerControls, pointer.Press, e.press),
		eng.Subscribe(scene.LayerControls, pointer.Move, e.move),
		eng.Subscribe(scene.LayerControls, pointer.Release, e.release),
	}
	return e
}

// Handle returns the polygon this editor is bound to.
func (e *VertexEditor) Handle() scene.Handle { return e.h }

// Dragging returns the index of the handle being dragged, or -1.
func (e *VertexEditor) Dragging() int { return e.dragging }

func (e *VertexEditor) Live() bool { return e.live }

// sync brings the handle arena in line with the polygon. The slice is only
// reallocated when the vertex count changes; positions always come from
// the live transform.
func (e *VertexEditor) sync() {
	n := e.poly.NumPoints()
	if len(e.handles) != n {
		e.handles = make([]handle, n)
		for i := range e.handles {
			e.handles[i].index = i
		}
	}
	for i := range e.handles {
		e.handles[i].pos = e.poly.ScenePoint(i)
	}
}

// HandlePositions returns the scene position of every handle, index-aligned
// with the polygon's vertices.
func (e *VertexEditor) HandlePositions() []vector.Pt {
	e.sync()
	out := make([]vector.Pt, len(e.handles))
	for i, hd := range e.handles {
		out[i] = hd.pos
	}
	return out
}

// HandleBox is the screen rectangle covered by a handle drawn at screen
// point p. It matches the area HandleAt accepts.
func HandleBox(p vector.Pt) vector.Rect {
	const half = float32(HandleSize) / 2
	return vector.R(p.X-half, p.Y-half, HandleSize, HandleSize)
}

// HandleAt returns the index of the handle whose box contains p, or -1.
// The box is HandleSize screen pixels wide regardless of zoom.
func (e *VertexEditor) HandleAt(p vector.Pt) int {
	e.sync()
	z := e.eng.Zoom()
	if z <= 0 {
		z = 1
	}
	half := float32(HandleSize) / 2 / z
	// last handle drawn is on top
	for i := len(e.handles) - 1; i >= 0; i-- {
		d := p.Sub(e.handles[i].pos)
		if abs(d.X) <= half && abs(d.Y) <= half {
			return i
		}
	}
	return -1
}

// DragTo moves vertex i so that it lands on scene point p. Only vertex i
// changes; the polygon's transform is left alone.
func (e *VertexEditor) DragTo(i int, p vector.Pt) {
	if !e.live || i < 0 || i >= e.poly.NumPoints() {
		return
	}
	local := e.poly.Transform().Invert().Apply(p)
	e.poly.SetPoint(i, local)
	e.handles[i].pos = p
	e.eng.RequestRedraw()
}

// engaged reports whether this editor should react to pointer input.
func (e *VertexEditor) engaged() bool {
	if !e.live {
		return false
	}
	if _, ok := e.eng.Node(e.h); !ok {
		return false
	}
	return e.eng.Active() == e.h
}

func (e *VertexEditor) press(ev pointer.Event) bool {
	if !e.engaged() {
		return false
	}
	i := e.HandleAt(ev.Point)
	if i < 0 {
		return false
	}
	e.dragging = i
	return true
}

func (e *VertexEditor) move(ev pointer.Event) bool {
	if e.dragging < 0 {
		return false
	}
	if !e.engaged() {
		e.dragging = -1
		return false
	}
	e.DragTo(e.dragging, ev.Point)
	return true
}

func (e *VertexEditor) release(ev pointer.Event) bool {
	if e.dragging < 0 {
		return false
	}
	i := e.dragging
	e.dragging = -1
	if !e.engaged() {
		return false
	}
	e.DragTo(i, ev.Point)
	e.log.Debug("vertex moved", slog.Int("index", i), slog.Any("to", ev.Point))
	return true
}

// Close detaches the editor. It is safe to call more than once.
func (e *VertexEditor) Close() {
	if !e.live {
		return
	}
	for _, s := range e.subs {
		s.Cancel()
	}
	e.subs = nil
	e.live = false
	e.dragging = -1
}
