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

	applog "gopaint/internal/log"
	"gopaint/internal/pointer"
	"gopaint/internal/scene"
	"gopaint/internal/vector"
)

// Manager owns the active tool. Exactly one Session is open at a time; the
// previous one is closed before the next is created. Until an engine is
// attached every operation is a no-op.
type Manager struct {
	eng     Engine
	kind    Kind
	opts    Options
	pending *Options
	sess    Session
	editors []*VertexEditor
	removed []func(scene.Handle)
	log     *slog.Logger
}

// NewManager returns a manager with Select active. eng may be nil and
// attached later.
func NewManager(eng Engine, opts Options) *Manager {
	m := &Manager{kind: Select, opts: opts.normalized(), log: applog.WithComponent("tools")}
	if eng != nil {
		m.Attach(eng)
	}
	return m
}

// Attach binds the manager to its engine and opens the current tool.
func (m *Manager) Attach(eng Engine) {
	if eng == nil || m.eng != nil {
		return
	}
	m.eng = eng
	eng.OnRemove(m.shapeRemoved)
	m.openSession()
}

func (m *Manager) Kind() Kind           { return m.kind }
func (m *Manager) Options() Options     { return m.opts }
func (m *Manager) Session() Session     { return m.sess }
func (m *Manager) Engine() Engine       { return m.eng }
func (m *Manager) PendingOptions() bool { return m.pending != nil }

// OnShapeRemoved registers fn to run whenever a shape leaves the scene.
func (m *Manager) OnShapeRemoved(fn func(scene.Handle)) {
	if fn != nil {
		m.removed = append(m.removed, fn)
	}
}

func (m *Manager) openSession() {
	m.sess = open(m.kind, m.eng, m.opts, m.log, m.polygonClosed)
	m.log.Debug("tool activated", slog.String("tool", m.kind.String()))
}

func (m *Manager) closeSession() {
	if m.sess != nil {
		m.sess.Close()
		m.sess = nil
	}
}

// Activate switches to tool k. The current session is torn down first,
// discarding any in-progress geometry, and deferred options take effect.
// Vertex editors survive only when the new tool can edit.
func (m *Manager) Activate(k Kind) {
	m.closeSession()
	m.kind = k
	if m.pending != nil {
		m.opts = *m.pending
		m.pending = nil
	}
	if m.eng == nil {
		return
	}
	if !k.EditingCapable() {
		m.closeEditors()
	}
	m.openSession()
	m.eng.RequestRedraw()
}

// SetOptions supplies a new options snapshot. The open session is
// restarted so it picks them up; while a gesture is in progress the
// restart waits until the gesture ends. A font size change is applied to
// the text being edited right away.
func (m *Manager) SetOptions(o Options) {
	o = o.normalized()
	if m.eng == nil {
		m.opts = o
		return
	}
	var editing *vector.TextNode
	if m.kind == Text {
		if editing = m.editingText(); editing != nil && o.FontSize != m.opts.FontSize {
			editing.SetFontSize(o.FontSize)
			m.eng.RequestRedraw()
		}
	}
	if m.sess != nil && m.sess.Busy() {
		m.pending = &o
		return
	}
	m.opts = o
	m.restart()
	if editing != nil {
		// keep typing into the same label
		editing.EnterEditing()
	}
}

func (m *Manager) restart() {
	m.closeSession()
	m.openSession()
}

// Pointer feeds one raw host event through the engine.
func (m *Manager) Pointer(r pointer.Raw) {
	if m.eng == nil {
		return
	}
	m.eng.Dispatch(r)
	if m.pending != nil && (m.sess == nil || !m.sess.Busy()) {
		m.opts = *m.pending
		m.pending = nil
		m.restart()
	}
}

func (m *Manager) polygonClosed(h scene.Handle) {
	m.EditPolygon(h)
}

// EditPolygon attaches a vertex editor to the polygon behind h, replacing
// an existing one for the same shape.
func (m *Manager) EditPolygon(h scene.Handle) *VertexEditor {
	if m.eng == nil {
		return nil
	}
	m.closeEditor(h)
	e := NewVertexEditor(m.eng, h, m.log)
	if e == nil {
		m.log.Warn("edit polygon: not a polygon", slog.Uint64("handle", uint64(h)))
		return nil
	}
	m.editors = append(m.editors, e)
	return e
}

// Editors lists the live vertex editors.
func (m *Manager) Editors() []*VertexEditor { return append([]*VertexEditor(nil), m.editors...) }

// Editor returns the editor bound to h, or nil.
func (m *Manager) Editor(h scene.Handle) *VertexEditor {
	for _, e := range m.editors {
		if e.Handle() == h {
			return e
		}
	}
	return nil
}

// VisibleHandles returns the handle positions of the active polygon.
func (m *Manager) VisibleHandles() []vector.Pt {
	if m.eng == nil {
		return nil
	}
	if e := m.Editor(m.eng.Active()); e != nil {
		return e.HandlePositions()
	}
	return nil
}

func (m *Manager) closeEditor(h scene.Handle) {
	for i, e := range m.editors {
		if e.Handle() == h {
			e.Close()
			m.editors = append(m.editors[:i], m.editors[i+1:]...)
			return
		}
	}
}

func (m *Manager) closeEditors() {
	for _, e := range m.editors {
		e.Close()
	}
	m.editors = nil
}

func (m *Manager) shapeRemoved(h scene.Handle) {
	m.closeEditor(h)
	for _, fn := range m.removed {
		fn(h)
	}
}

// Clear removes the active shape; with nothing active it empties the scene
// and restarts the current tool.
func (m *Manager) Clear() {
	if m.eng == nil {
		return
	}
	if h := m.eng.Active(); h != scene.None {
		m.eng.Remove(h)
		return
	}
	m.closeSession()
	m.eng.Clear()
	m.openSession()
}

// DeleteActive removes the active shape, if any.
func (m *Manager) DeleteActive() bool {
	if m.eng == nil {
		return false
	}
	h := m.eng.Active()
	if h == scene.None {
		return false
	}
	return m.eng.Remove(h)
}

// PlaceMeasurement drops a horizontal measurement centered on center.
// length is in the configured unit; a non-positive length falls back to
// the configured default.
func (m *Manager) PlaceMeasurement(center vector.Pt, length float32) scene.Handle {
	if m.eng == nil {
		return scene.None
	}
	if length <= 0 {
		length = m.opts.MeasureLength
	}
	return PlaceStaticMeasurement(m.eng, center, ToPixels(length, m.opts.Unit, m.opts.DPI), m.opts)
}

func (m *Manager) editingText() *vector.TextNode {
	n, ok := m.eng.Node(m.eng.Active())
	if !ok {
		return nil
	}
	if t, ok := n.(*vector.TextNode); ok && t.Editing() {
		return t
	}
	return nil
}

// InsertText types s into the text being edited.
func (m *Manager) InsertText(s string) bool {
	if m.eng == nil {
		return false
	}
	t := m.editingText()
	if t == nil {
		return false
	}
	t.Insert(s)
	m.eng.RequestRedraw()
	return true
}

// Backspace deletes backwards in the text being edited.
func (m *Manager) Backspace() bool {
	if m.eng == nil {
		return false
	}
	t := m.editingText()
	if t == nil {
		return false
	}
	t.Backspace()
	m.eng.RequestRedraw()
	return true
}

// Close tears everything down: the session and every vertex editor.
func (m *Manager) Close() {
	m.closeSession()
	m.closeEditors()
	m.pending = nil
}
