/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"testing"

	"gopaint/internal/pointer"
	"gopaint/internal/vector"
)

func rect(x, y, w, h float32) *vector.RectNode {
	return vector.NewRect(vector.R(x, y, w, h), vector.SolidFill(vector.White), vector.Stroke{})
}

func TestAddRemoveAndShapesAtTopMostFirst(t *testing.T) {
	c := NewCanvas(200, 200)
	var removed []Handle
	c.OnRemove(func(h Handle) { removed = append(removed, h) })

	a := c.Add(rect(0, 0, 100, 100))
	b := c.Add(rect(50, 50, 100, 100))
	hidden := rect(60, 60, 10, 10)
	hidden.SetEvented(false)
	c.Add(hidden)

	got := c.ShapesAt(vector.Pt{X: 75, Y: 75})
	if len(got) != 2 || got[0] != b || got[1] != a {
		t.Fatalf("ShapesAt = %v, want [%d %d]", got, b, a)
	}
	c.SetActive(b)
	if !c.Remove(b) || c.Active() != None {
		t.Fatalf("removing the active shape should clear the selection")
	}
	if c.Remove(b) {
		t.Fatalf("second remove should report false")
	}
	if len(removed) != 1 || removed[0] != b {
		t.Fatalf("remove hook calls = %v", removed)
	}
	if c.Redraws() == 0 {
		t.Fatalf("mutations should request redraws")
	}
}

func TestZOrderOperations(t *testing.T) {
	c := NewCanvas(100, 100)
	a := c.Add(rect(0, 0, 1, 1))
	b := c.Add(rect(0, 0, 1, 1))
	d := c.Add(rect(0, 0, 1, 1))

	if !c.MoveUp(a) || c.ZIndex(a) != 1 {
		t.Fatalf("MoveUp: z=%d", c.ZIndex(a))
	}
	if c.MoveUp(d) || c.ZIndex(d) != 2 {
		t.Fatalf("top shape should stay on top")
	}
	if !c.SendToBack(d) || c.Handles()[0] != d {
		t.Fatalf("SendToBack: %v", c.Handles())
	}
	if !c.BringToFront(d) || c.Handles()[2] != d {
		t.Fatalf("BringToFront: %v", c.Handles())
	}
	if !c.MoveDown(d) || c.ZIndex(d) != 1 {
		t.Fatalf("MoveDown: %v", c.Handles())
	}
	if c.ZIndex(b) != 0 || c.MoveDown(b) {
		t.Fatalf("bottom shape cannot move down: %v", c.Handles())
	}
	if c.MoveDown(Handle(99)) {
		t.Fatalf("unknown handle must report false")
	}
}

func TestDispatchLayersAndConsumption(t *testing.T) {
	c := NewCanvas(100, 100)
	var order []string
	c.Subscribe(LayerTool, pointer.Press, func(pointer.Event) bool { order = append(order, "tool"); return false })
	ctl := c.Subscribe(LayerControls, pointer.Press, func(pointer.Event) bool { order = append(order, "controls"); return true })

	c.Dispatch(pointer.Raw{Phase: pointer.Press, X: 1, Y: 1})
	if len(order) != 1 || order[0] != "controls" {
		t.Fatalf("controls layer should consume first: %v", order)
	}
	ctl.Cancel()
	ctl.Cancel()
	order = nil
	c.Dispatch(pointer.Raw{Phase: pointer.Press, X: 1, Y: 1})
	if len(order) != 1 || order[0] != "tool" {
		t.Fatalf("tool layer should run after cancel: %v", order)
	}
	if c.HandlerCount() != 1 {
		t.Fatalf("handler count = %d", c.HandlerCount())
	}
}

func TestDispatchSkipsHandlersCancelledMidDispatch(t *testing.T) {
	c := NewCanvas(100, 100)
	fired := false
	var victim Subscription
	c.Subscribe(LayerTool, pointer.Move, func(pointer.Event) bool { victim.Cancel(); return false })
	victim = c.Subscribe(LayerTool, pointer.Move, func(pointer.Event) bool { fired = true; return false })
	c.Dispatch(pointer.Raw{Phase: pointer.Move})
	if fired {
		t.Fatalf("handler cancelled during dispatch must not fire")
	}
	if victim.Live() {
		t.Fatalf("victim should be unregistered")
	}
}

func TestDispatchUsesZoom(t *testing.T) {
	c := NewCanvas(100, 100)
	c.SetZoom(2)
	var got vector.Pt
	c.Subscribe(LayerTool, pointer.Press, func(ev pointer.Event) bool { got = ev.Point; return true })
	c.Dispatch(pointer.Raw{Phase: pointer.Press, X: 40, Y: 60})
	if got != (vector.Pt{X: 20, Y: 30}) {
		t.Fatalf("scene point = %+v", got)
	}
	c.ResetZoom()
	if c.Zoom() != 1 {
		t.Fatalf("zoom after reset = %v", c.Zoom())
	}
}

func TestFreehandModeCommitsOnRelease(t *testing.T) {
	c := NewCanvas(100, 100)
	c.SetDrawingMode(true, vector.SolidStroke(vector.Black, 5))
	c.Dispatch(pointer.Raw{Phase: pointer.Press, X: 1, Y: 1})
	c.Dispatch(pointer.Raw{Phase: pointer.Move, X: 5, Y: 5})
	if c.Len() != 0 || len(c.DrawList()) != 1 {
		t.Fatalf("stroke should be in progress only")
	}
	c.Dispatch(pointer.Raw{Phase: pointer.Release, X: 5, Y: 5})
	if c.Len() != 1 {
		t.Fatalf("stroke should be committed, len=%d", c.Len())
	}
	n, _ := c.Node(c.Handles()[0])
	if n.Stroke().Width != 5 {
		t.Fatalf("brush width not applied: %+v", n.Stroke())
	}
}

func TestFreehandModeOffDiscardsPartialStroke(t *testing.T) {
	c := NewCanvas(100, 100)
	c.SetDrawingMode(true, vector.SolidStroke(vector.Black, 5))
	c.Dispatch(pointer.Raw{Phase: pointer.Press, X: 1, Y: 1})
	c.SetDrawingMode(false, vector.Stroke{})
	c.Dispatch(pointer.Raw{Phase: pointer.Release, X: 5, Y: 5})
	if c.Len() != 0 || len(c.DrawList()) != 0 {
		t.Fatalf("partial stroke should be discarded")
	}
}

func TestSelectionDragMovesShape(t *testing.T) {
	c := NewCanvas(200, 200)
	h := c.Add(rect(10, 10, 20, 20))
	c.SetSelection(true)
	c.Dispatch(pointer.Raw{Phase: pointer.Press, X: 15, Y: 15})
	if c.Active() != h {
		t.Fatalf("press should select the shape")
	}
	c.Dispatch(pointer.Raw{Phase: pointer.Move, X: 25, Y: 35})
	c.Dispatch(pointer.Raw{Phase: pointer.Release, X: 25, Y: 35})
	n, _ := c.Node(h)
	if b := n.Bounds(); b.X != 20 || b.Y != 30 {
		t.Fatalf("bounds after drag = %+v", b)
	}
	c.Dispatch(pointer.Raw{Phase: pointer.Press, X: 190, Y: 190})
	if c.Active() != None {
		t.Fatalf("press on empty space should clear the selection")
	}
}

func TestSelectionDragSnapsToOtherShapes(t *testing.T) {
	c := NewCanvas(300, 300)
	c.Add(rect(100, 100, 50, 50))
	h := c.Add(rect(0, 0, 20, 20))
	c.SetSnap(vector.SnapOptions{Threshold: 5, Edges: true})
	c.SetSelection(true)
	c.Dispatch(pointer.Raw{Phase: pointer.Press, X: 10, Y: 10})
	// left edge lands at 103, three units off the other shape's left edge
	c.Dispatch(pointer.Raw{Phase: pointer.Move, X: 113, Y: 40})
	n, _ := c.Node(h)
	if b := n.Bounds(); b.X != 100 || b.Y != 30 {
		t.Fatalf("snapped bounds = %+v", b)
	}
	if g := c.Guides(); len(g) != 1 || !g[0].Vertical || g[0].Pos != 100 {
		t.Fatalf("guides = %+v", g)
	}
	// further moves are measured from the press, not the snapped spot
	c.Dispatch(pointer.Raw{Phase: pointer.Move, X: 60, Y: 40})
	if b := n.Bounds(); b.X != 50 || b.Y != 30 || len(c.Guides()) != 0 {
		t.Fatalf("unsnapped bounds = %+v guides %+v", b, c.Guides())
	}
	c.Dispatch(pointer.Raw{Phase: pointer.Release, X: 60, Y: 40})
	if c.Guides() != nil {
		t.Fatalf("release must clear the guides")
	}
}

func TestSelectionSkipsUnselectable(t *testing.T) {
	c := NewCanvas(100, 100)
	r := rect(0, 0, 50, 50)
	r.SetSelectable(false)
	c.Add(r)
	c.SetSelection(true)
	c.Dispatch(pointer.Raw{Phase: pointer.Press, X: 10, Y: 10})
	if c.Active() != None {
		t.Fatalf("unselectable shape must not become active")
	}
}

func TestClearFiresRemoveHookForEveryShape(t *testing.T) {
	c := NewCanvas(100, 100)
	c.Add(rect(0, 0, 1, 1))
	c.Add(rect(0, 0, 1, 1))
	n := 0
	c.OnRemove(func(Handle) { n++ })
	c.Clear()
	if n != 2 || c.Len() != 0 {
		t.Fatalf("clear: hook=%d len=%d", n, c.Len())
	}
}
