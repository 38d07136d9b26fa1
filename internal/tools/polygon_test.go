/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tools

import (
	"testing"

	"gopaint/internal/scene"
	"gopaint/internal/vector"
)

func clickAll(m *Manager, pts ...vector.Pt) {
	for _, p := range pts {
		press(m, p.X, p.Y)
		release(m, p.X, p.Y)
	}
}

func polygons(c *scene.Canvas) []*vector.PolygonNode {
	var out []*vector.PolygonNode
	for _, n := range c.Nodes() {
		if p, ok := n.(*vector.PolygonNode); ok {
			out = append(out, p)
		}
	}
	return out
}

func TestPolygonClosesNearFirstVertex(t *testing.T) {
	c, m := newTestManager(Polygon)
	clickAll(m, vector.Pt{X: 100, Y: 100}, vector.Pt{X: 200, Y: 100}, vector.Pt{X: 200, Y: 200}, vector.Pt{X: 100, Y: 200})
	s := m.Session().(*polygonSession)
	if s.State() != PolygonAuthoring || len(s.Vertices()) != 4 {
		t.Fatalf("state=%v verts=%d", s.State(), len(s.Vertices()))
	}
	// 4 markers, 3 segments, 1 rubber band
	if c.Len() != 8 {
		t.Fatalf("preview items = %d, want 8", c.Len())
	}
	clickAll(m, vector.Pt{X: 104, Y: 103})

	n := onlyNode(t, c)
	poly, ok := n.(*vector.PolygonNode)
	if !ok || poly.NumPoints() != 4 {
		t.Fatalf("want one 4-vertex polygon, got %T", n)
	}
	if s.State() != PolygonClosed || s.Busy() {
		t.Fatalf("session should be closed, state=%v", s.State())
	}
	if poly.Transform().Offset() != (vector.Pt{X: 100, Y: 100}) || poly.Point(0) != (vector.Pt{}) {
		t.Fatalf("vertices should be stored relative to the bbox origin: off=%v p0=%v", poly.Transform().Offset(), poly.Point(0))
	}
	if c.Active() != c.Handles()[0] {
		t.Fatalf("closed polygon should become active")
	}
	if m.Editor(c.Active()) == nil {
		t.Fatalf("closing should attach a vertex editor")
	}
}

func TestPolygonNeedsThreeVerticesToClose(t *testing.T) {
	c, m := newTestManager(Polygon)
	clickAll(m, vector.Pt{X: 10, Y: 10}, vector.Pt{X: 11, Y: 11})
	s := m.Session().(*polygonSession)
	if len(polygons(c)) != 0 {
		t.Fatalf("degenerate polygon committed")
	}
	if len(s.Vertices()) != 2 || s.State() != PolygonAuthoring {
		t.Fatalf("second click should append: verts=%d", len(s.Vertices()))
	}
}

func TestPolygonSingleClickNeverSelfCloses(t *testing.T) {
	c, m := newTestManager(Polygon)
	clickAll(m, vector.Pt{X: 50, Y: 50})
	if len(polygons(c)) != 0 || m.Session().(*polygonSession).State() != PolygonAuthoring {
		t.Fatalf("single click closed the polygon")
	}
}

func TestPolygonRubberBandFollowsPointer(t *testing.T) {
	_, m := newTestManager(Polygon)
	clickAll(m, vector.Pt{X: 0, Y: 0}, vector.Pt{X: 40, Y: 0})
	move(m, 70, 30)
	s := m.Session().(*polygonSession)
	a, b := s.rubber.Points()
	if a != (vector.Pt{X: 40, Y: 0}) || b != (vector.Pt{X: 70, Y: 30}) {
		t.Fatalf("rubber band = %v..%v", a, b)
	}
}

func TestPolygonAbandonedOnToolSwitch(t *testing.T) {
	c, m := newTestManager(Polygon)
	clickAll(m, vector.Pt{X: 0, Y: 0}, vector.Pt{X: 40, Y: 0}, vector.Pt{X: 40, Y: 40})
	m.Activate(Line)
	if c.Len() != 0 {
		t.Fatalf("abandoned polygon left %d preview items", c.Len())
	}
}

func TestPolygonClosedSessionIgnoresPresses(t *testing.T) {
	c, m := newTestManager(Polygon)
	clickAll(m, vector.Pt{X: 0, Y: 0}, vector.Pt{X: 100, Y: 0}, vector.Pt{X: 50, Y: 100}, vector.Pt{X: 1, Y: 1})
	clickAll(m, vector.Pt{X: 300, Y: 300}, vector.Pt{X: 400, Y: 300})
	if c.Len() != 1 {
		t.Fatalf("presses after closing added %d items", c.Len()-1)
	}
	// re-activating arms a fresh polygon
	m.Activate(Polygon)
	clickAll(m, vector.Pt{X: 300, Y: 300})
	if m.Session().(*polygonSession).State() != PolygonAuthoring {
		t.Fatalf("new session should author again")
	}
}

func TestClosingRadiusScalesWithZoom(t *testing.T) {
	c, m := newTestManager(Polygon)
	c.SetZoom(2)
	// screen coords; scene = screen/2
	clickAll(m, vector.Pt{X: 0, Y: 0}, vector.Pt{X: 200, Y: 0}, vector.Pt{X: 100, Y: 200})
	clickAll(m, vector.Pt{X: 12, Y: 0}) // 6 scene units, outside 8/2
	if len(polygons(c)) != 0 {
		t.Fatalf("closed outside the zoomed tolerance")
	}
	clickAll(m, vector.Pt{X: 6, Y: 0}) // 3 scene units
	if len(polygons(c)) != 1 || polygons(c)[0].NumPoints() != 4 {
		t.Fatalf("expected a 4-vertex polygon after closing")
	}
}

func commitTriangle(t *testing.T) (*scene.Canvas, *Manager, scene.Handle, *vector.PolygonNode) {
	t.Helper()
	c, m := newTestManager(Polygon)
	clickAll(m, vector.Pt{X: 0, Y: 0}, vector.Pt{X: 10, Y: 0}, vector.Pt{X: 5, Y: 10}, vector.Pt{X: 1, Y: 1})
	ps := polygons(c)
	if len(ps) != 1 {
		t.Fatalf("triangle not committed")
	}
	return c, m, c.Active(), ps[0]
}

func TestVertexDragChangesOnlyThatVertex(t *testing.T) {
	_, m, _, poly := commitTriangle(t)
	press(m, 10, 0)
	move(m, 15, 3)
	move(m, 20, 5)
	release(m, 20, 5)
	want := []vector.Pt{{X: 0, Y: 0}, {X: 20, Y: 5}, {X: 5, Y: 10}}
	got := poly.Points()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("vertex %d = %v, want %v (all: %v)", i, got[i], want[i], got)
		}
	}
	if poly.Transform() != vector.Translate(0, 0) {
		t.Fatalf("polygon transform changed: %+v", poly.Transform())
	}
	if !poly.Dirty() {
		t.Fatalf("edited polygon should be marked dirty")
	}
}

func TestVertexHandlesTrackTransform(t *testing.T) {
	_, m, h, poly := commitTriangle(t)
	e := m.Editor(h)
	poly.SetTransform(vector.Translate(100, 50))
	hp := e.HandlePositions()
	if hp[1] != (vector.Pt{X: 110, Y: 50}) {
		t.Fatalf("handle 1 = %v after move", hp[1])
	}
	if e.HandleAt(vector.Pt{X: 111, Y: 51}) != 1 {
		t.Fatalf("HandleAt missed the moved handle")
	}
	if e.HandleAt(vector.Pt{X: 10, Y: 0}) != -1 {
		t.Fatalf("stale handle position still hit")
	}
	e.DragTo(2, vector.Pt{X: 120, Y: 55})
	if poly.Point(2) != (vector.Pt{X: 20, Y: 5}) {
		t.Fatalf("vertex 2 local = %v", poly.Point(2))
	}
	if poly.Point(0) != (vector.Pt{}) || poly.Point(1) != (vector.Pt{X: 10, Y: 0}) {
		t.Fatalf("other vertices moved: %v", poly.Points())
	}
}

func TestHandleBoxMatchesHitArea(t *testing.T) {
	c, m, h, _ := commitTriangle(t)
	c.SetZoom(2)
	e := m.Editor(h)
	v := c.View()
	b := HandleBox(v.ToScreen(e.HandlePositions()[1]))
	if b.W != HandleSize || b.H != HandleSize {
		t.Fatalf("handle box %+v", b)
	}
	inside := []vector.Pt{{X: b.X + 0.25, Y: b.Y + 0.25}, {X: b.X + b.W - 0.25, Y: b.Y + b.H - 0.25}}
	for _, p := range inside {
		if e.HandleAt(v.ToScene(p)) != 1 {
			t.Fatalf("screen point %v inside the drawn handle missed", p)
		}
	}
	if e.HandleAt(v.ToScene(vector.Pt{X: b.X + b.W + 1, Y: b.Y})) == 1 {
		t.Fatalf("point outside the drawn handle hit")
	}
}

func TestVertexHandlesInactiveWhenPolygonNotActive(t *testing.T) {
	c, m, h, poly := commitTriangle(t)
	m.Activate(Select)
	c.SetActive(scene.None)
	press(m, 10, 0)
	move(m, 30, 30)
	release(m, 30, 30)
	if poly.Point(1) != (vector.Pt{X: 10, Y: 0}) {
		t.Fatalf("vertex edited while polygon inactive")
	}
	// the select tool picked and dragged the polygon instead
	if c.Active() != h || poly.Transform().Offset() != (vector.Pt{X: 20, Y: 30}) {
		t.Fatalf("select drag expected, active=%d offset=%v", c.Active(), poly.Transform().Offset())
	}
}

func TestVertexEditorSurvivesEditingToolsOnly(t *testing.T) {
	_, m, h, _ := commitTriangle(t)
	m.Activate(Select)
	if m.Editor(h) == nil {
		t.Fatalf("select should keep vertex editing")
	}
	m.Activate(Brush)
	if len(m.Editors()) != 0 {
		t.Fatalf("non-editing tool should close editors")
	}
}

func TestVertexEditorDroppedWithPolygon(t *testing.T) {
	c, m, h, _ := commitTriangle(t)
	e := m.Editor(h)
	before := c.HandlerCount()
	c.Remove(h)
	if e.Live() || len(m.Editors()) != 0 {
		t.Fatalf("editor should close when its polygon is removed")
	}
	if c.HandlerCount() != before-3 {
		t.Fatalf("editor handlers leaked: %d -> %d", before, c.HandlerCount())
	}
	if m.VisibleHandles() != nil {
		t.Fatalf("no handles expected without an active polygon")
	}
}

func TestEditPolygonRejectsOtherShapes(t *testing.T) {
	c, m := newTestManager(Select)
	h := c.Add(NewRectShape(vector.R(0, 0, 10, 10), DefaultOptions()))
	if m.EditPolygon(h) != nil {
		t.Fatalf("rectangle accepted as polygon")
	}
	ph := c.Add(NewPolygonShape([]vector.Pt{{X: 0, Y: 0}, {X: 9, Y: 0}, {X: 0, Y: 9}}, DefaultOptions()))
	e := m.EditPolygon(ph)
	if e == nil || len(e.HandlePositions()) != 3 {
		t.Fatalf("polygon editor not created")
	}
	if m.EditPolygon(ph) == e || len(m.Editors()) != 1 {
		t.Fatalf("re-editing should replace the old editor")
	}
}
