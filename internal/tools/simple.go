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
	"gopaint/internal/vector"
)

// brushSession hands freehand capture to the engine. The brush is fixed at
// activation; it only watches press/release to report Busy.
type brushSession struct {
	base
	down bool
}

func newBrushSession(eng Engine, opts Options, l *slog.Logger) *brushSession {
	s := &brushSession{base: newBase(Brush, eng, opts, l)}
	eng.SetDrawingMode(true, NewBrushStroke(opts))
	s.observe(pointer.Press, func(pointer.Event) { s.down = true })
	s.observe(pointer.Release, func(pointer.Event) { s.down = false })
	return s
}

func (s *brushSession) Busy() bool { return s.down }

func (s *brushSession) Close() {
	if !s.live {
		return
	}
	s.detach()
	s.down = false
	s.eng.SetDrawingMode(false, vector.Stroke{})
}

// selectSession turns on the engine's own selection and drag handling.
type selectSession struct {
	base
	down bool
}

func newSelectSession(eng Engine, opts Options, l *slog.Logger) *selectSession {
	s := &selectSession{base: newBase(Select, eng, opts, l)}
	eng.SetSelection(true)
	s.observe(pointer.Press, func(pointer.Event) { s.down = true })
	s.observe(pointer.Release, func(pointer.Event) { s.down = false })
	return s
}

func (s *selectSession) Busy() bool { return s.down }

func (s *selectSession) Close() {
	if !s.live {
		return
	}
	s.detach()
	s.down = false
	s.eng.SetSelection(false)
}

// textSession edits the text under the pointer or places a new one. Either
// way the shape becomes active in edit mode with all of its content selected.
type textSession struct{ base }

func newTextSession(eng Engine, opts Options, l *slog.Logger) *textSession {
	s := &textSession{base: newBase(Text, eng, opts, l)}
	s.on(pointer.Press, s.press)
	return s
}

func (s *textSession) Busy() bool { return false }

func (s *textSession) press(ev pointer.Event) {
	if hits := s.eng.ShapesAt(ev.Point); len(hits) > 0 {
		if n, ok := s.eng.Node(hits[0]); ok {
			if t, ok := n.(*vector.TextNode); ok {
				s.eng.SetActive(hits[0])
				t.EnterEditing()
				t.SelectAll()
				s.eng.RequestRedraw()
				return
			}
		}
	}
	t := NewTextShape(ev.Point, s.opts)
	h := s.eng.Add(t)
	s.eng.SetActive(h)
	t.EnterEditing()
	t.SelectAll()
	s.eng.RequestRedraw()
}

func (s *textSession) Close() {
	if !s.live {
		return
	}
	s.detach()
	if n, ok := s.eng.Node(s.eng.Active()); ok {
		if t, ok := n.(*vector.TextNode); ok {
			t.ExitEditing()
		}
	}
}

// fillSession recolors the top-most shape under the pointer.
type fillSession struct{ base }

func newFillSession(eng Engine, opts Options, l *slog.Logger) *fillSession {
	s := &fillSession{base: newBase(Fill, eng, opts, l)}
	s.on(pointer.Press, s.press)
	return s
}

func (s *fillSession) Busy() bool { return false }

func (s *fillSession) press(ev pointer.Event) {
	hits := s.eng.ShapesAt(ev.Point)
	if len(hits) == 0 {
		s.log.Debug("fill: nothing under pointer", slog.Any("at", ev.Point))
		return
	}
	n, ok := s.eng.Node(hits[0])
	if !ok {
		return
	}
	n.SetFill(vector.SolidFill(s.opts.FillColor))
	s.eng.RequestRedraw()
}

func (s *fillSession) Close() { s.detach() }
