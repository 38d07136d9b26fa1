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

// PolygonState is the authoring stage of a polygon session.
type PolygonState uint8

const (
	PolygonEmpty PolygonState = iota
	PolygonAuthoring
	PolygonClosed
)

func (s PolygonState) String() string {
	switch s {
	case PolygonEmpty:
		return "empty"
	case PolygonAuthoring:
		return "authoring"
	default:
		return "closed"
	}
}

// minPolygonVertices is the smallest vertex count that may close.
const minPolygonVertices = 3

// polygonSession accumulates vertices one press at a time. Every vertex
// gets a marker and every edge a preview segment; a rubber-band segment
// follows the pointer from the last vertex. Pressing near the first vertex
// with enough vertices closes the outline, commits it and ends authoring
// for this session.
type polygonSession struct {
	base
	state    PolygonState
	verts    []vector.Pt
	markers  []scene.Handle
	segments []scene.Handle
	rubber   *vector.LineNode
	rubberH  scene.Handle
	onClosed func(scene.Handle)
}

func newPolygonSession(eng Engine, opts Options, l *slog.Logger, onClosed func(scene.Handle)) *polygonSession {
	s := &polygonSession{base: newBase(Polygon, eng, opts, l), onClosed: onClosed}
	s.on(pointer.Press, s.press)
	s.on(pointer.Move, s.move)
	return s
}

func (s *polygonSession) Busy() bool { return s.state == PolygonAuthoring }

func (s *polygonSession) State() PolygonState { return s.state }

// Vertices returns a copy of the authored vertices, in drawing order.
func (s *polygonSession) Vertices() []vector.Pt { return append([]vector.Pt(nil), s.verts...) }

// closingRadius converts the screen-pixel tolerance into scene units.
func (s *polygonSession) closingRadius() float32 {
	z := s.eng.Zoom()
	if z <= 0 {
		z = 1
	}
	return s.opts.ClosingRadius / z
}

func (s *polygonSession) press(ev pointer.Event) {
	if s.state == PolygonClosed {
		return
	}
	p := ev.Point
	if len(s.verts) >= minPolygonVertices && vector.Dist(p, s.verts[0]) <= s.closingRadius() {
		s.close()
		return
	}
	s.verts = append(s.verts, p)
	s.markers = append(s.markers, s.eng.Add(newMarker(p, s.opts)))
	if n := len(s.verts); n >= 2 {
		s.segments = append(s.segments, s.eng.Add(newPreviewSegment(s.verts[n-2], p, s.opts)))
	}
	// the rubber band always starts at the newest vertex
	s.discard(s.rubberH)
	s.rubber = newPreviewSegment(p, p, s.opts)
	s.rubberH = s.eng.Add(s.rubber)
	s.state = PolygonAuthoring
}

func (s *polygonSession) move(ev pointer.Event) {
	if s.state != PolygonAuthoring || s.rubber == nil {
		return
	}
	s.rubber.SetEnd(ev.Point)
	s.eng.RequestRedraw()
}

func (s *polygonSession) close() {
	verts := s.verts
	s.clearPreview()
	poly := NewPolygonShape(verts, s.opts)
	h := s.eng.Add(poly)
	s.eng.SetActive(h)
	s.state = PolygonClosed
	s.log.Debug("polygon closed", slog.Uint64("handle", uint64(h)), slog.Int("vertices", len(verts)))
	if s.onClosed != nil {
		s.onClosed(h)
	}
}

func (s *polygonSession) clearPreview() {
	s.discard(s.markers...)
	s.discard(s.segments...)
	s.discard(s.rubberH)
	s.markers, s.segments = nil, nil
	s.rubber, s.rubberH = nil, scene.None
	s.verts = nil
}

func (s *polygonSession) Close() {
	if !s.live {
		return
	}
	s.detach()
	if s.state == PolygonAuthoring {
		s.clearPreview()
		s.state = PolygonEmpty
	}
}
