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

// dragSession drives the press-drag-release tools: line, rectangle, ellipse.
// The shape is added on press so it renders while dragging, and stays
// unselectable until release commits it.
type dragSession struct {
	base
	anchor vector.Pt
	cur    vector.Pt
	shape  vector.Node
	h      scene.Handle
}

func newDragSession(k Kind, eng Engine, opts Options, l *slog.Logger) *dragSession {
	s := &dragSession{base: newBase(k, eng, opts, l)}
	s.on(pointer.Press, s.press)
	s.on(pointer.Move, s.move)
	s.on(pointer.Release, s.release)
	return s
}

func (s *dragSession) Busy() bool { return s.shape != nil }

func (s *dragSession) press(ev pointer.Event) {
	if s.shape != nil {
		// a release went missing; keep what was drawn
		s.commit()
	}
	s.anchor, s.cur = ev.Point, ev.Point
	switch s.kind {
	case Line:
		s.shape = NewLineShape(s.anchor, s.anchor, s.opts)
	case Rectangle:
		s.shape = NewRectShape(vector.Rect{X: s.anchor.X, Y: s.anchor.Y}, s.opts)
	case Ellipse:
		s.shape = NewEllipseShape(vector.Rect{X: s.anchor.X, Y: s.anchor.Y}, s.opts)
	}
	s.shape.SetSelectable(false)
	s.h = s.eng.Add(s.shape)
}

func (s *dragSession) move(ev pointer.Event) {
	if s.shape == nil {
		return
	}
	s.cur = ev.Point
	switch n := s.shape.(type) {
	case *vector.LineNode:
		n.SetEnd(s.cur)
	case *vector.RectNode:
		n.SetRect(vector.RectFromPoints(s.anchor, s.cur))
	case *vector.EllipseNode:
		n.SetRect(s.ellipseRect())
	}
	s.eng.RequestRedraw()
}

// ellipseRect is the box the ellipse is inscribed in. Corner-anchored by
// default: the center is the midpoint of anchor and pointer and the radii are
// half the drag extent. Center-anchored uses the full extent as radii.
func (s *dragSession) ellipseRect() vector.Rect {
	if !s.opts.EllipseFromCenter {
		return vector.RectFromPoints(s.anchor, s.cur)
	}
	d := s.cur.Sub(s.anchor)
	rx, ry := abs(d.X), abs(d.Y)
	return vector.Rect{X: s.anchor.X - rx, Y: s.anchor.Y - ry, W: 2 * rx, H: 2 * ry}
}

func (s *dragSession) release(pointer.Event) {
	if s.shape == nil {
		return
	}
	s.commit()
}

// commit finalizes the shape at the last move position. A press without any
// drag leaves a degenerate shape, which is dropped.
func (s *dragSession) commit() {
	shape, h := s.shape, s.h
	s.shape, s.h = nil, scene.None
	if s.anchor == s.cur {
		s.eng.Remove(h)
		s.log.Debug("discarded zero-size shape")
		return
	}
	shape.SetSelectable(true)
	s.eng.RequestRedraw()
	s.log.Debug("shape committed", slog.Uint64("handle", uint64(h)), slog.Any("bounds", shape.Bounds()))
}

func (s *dragSession) Close() {
	if !s.live {
		return
	}
	s.detach()
	if s.shape != nil {
		s.discard(s.h)
		s.shape, s.h = nil, scene.None
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
