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

// measureSession draws one measurement per activation. While dragging it
// shows a preview line and a live distance label; release replaces both
// with a single selectable annotation group.
type measureSession struct {
	base
	anchor vector.Pt
	line   *vector.LineNode
	label  *vector.TextNode
	lineH  scene.Handle
	labelH scene.Handle
	done   bool
}

func newMeasureSession(eng Engine, opts Options, l *slog.Logger) *measureSession {
	s := &measureSession{base: newBase(Measure, eng, opts, l)}
	s.on(pointer.Press, s.press)
	s.on(pointer.Move, s.move)
	s.on(pointer.Release, s.release)
	return s
}

func (s *measureSession) Busy() bool { return s.line != nil }

// Done reports whether this session already produced its measurement.
func (s *measureSession) Done() bool { return s.done }

func (s *measureSession) press(ev pointer.Event) {
	if s.done || s.line != nil {
		return
	}
	s.anchor = ev.Point
	s.line = transient(newMeasureLine(ev.Point, ev.Point))
	s.label = transient(newMeasureLabel(ev.Point, ev.Point, s.opts))
	s.lineH = s.eng.Add(s.line)
	s.labelH = s.eng.Add(s.label)
}

func (s *measureSession) move(ev pointer.Event) {
	if s.line == nil {
		return
	}
	s.line.SetEnd(ev.Point)
	fresh := newMeasureLabel(s.anchor, ev.Point, s.opts)
	s.label.SetText(fresh.Text())
	s.label.SetOrigin(fresh.Origin())
	s.eng.RequestRedraw()
}

func (s *measureSession) release(pointer.Event) {
	if s.line == nil {
		return
	}
	_, end := s.line.Points()
	s.clearPreview()
	if end == s.anchor {
		// nothing measured; stay armed
		return
	}
	g := NewMeasurement(s.anchor, end, s.opts)
	h := s.eng.Add(g)
	s.done = true
	s.log.Debug("measurement placed", slog.Uint64("handle", uint64(h)), slog.Float64("px", float64(vector.Dist(s.anchor, end))))
}

func (s *measureSession) clearPreview() {
	s.discard(s.lineH, s.labelH)
	s.line, s.label = nil, nil
	s.lineH, s.labelH = scene.None, scene.None
}

func (s *measureSession) Close() {
	if !s.live {
		return
	}
	s.detach()
	if s.line != nil {
		s.clearPreview()
	}
}

// PlaceStaticMeasurement adds a horizontal measurement of lengthPx centered
// on center, without a pointer gesture.
func PlaceStaticMeasurement(eng Engine, center vector.Pt, lengthPx float32, o Options) scene.Handle {
	if eng == nil || lengthPx <= 0 {
		return scene.None
	}
	o = o.normalized()
	a := vector.Pt{X: center.X - lengthPx/2, Y: center.Y}
	b := vector.Pt{X: center.X + lengthPx/2, Y: center.Y}
	h := eng.Add(NewMeasurement(a, b, o))
	eng.SetActive(h)
	return h
}
