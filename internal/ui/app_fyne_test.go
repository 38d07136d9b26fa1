//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne-based UI components. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"gopaint/internal/scene"
	"gopaint/internal/tools"
	"gopaint/internal/vector"
)

func almostEqual(a, b, eps float32) bool {
	if a > b {
		return a-b <= eps
	}
	return b-a <= eps
}

func newTestCanvas(t *testing.T) (*DrawingCanvas, *scene.Canvas, *tools.Manager) {
	t.Helper()
	test.NewTempApp(t)
	sc := scene.NewCanvas(400, 300)
	m := tools.NewManager(sc, tools.DefaultOptions())
	d := NewDrawingCanvas(sc, m)
	d.Resize(fyne.NewSize(800, 600))
	return d, sc, m
}

func mouse(x, y float32, b desktop.MouseButton) *desktop.MouseEvent {
	return &desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}, Button: b}
}

func TestDrawingCanvasDrawsRectangle(t *testing.T) {
	d, sc, m := newTestCanvas(t)
	m.Activate(tools.Rectangle)
	d.MouseDown(mouse(10, 20, desktop.MouseButtonPrimary))
	d.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(110, 70)}})
	d.MouseMoved(mouse(110, 70, 0)) // same motion reported twice
	d.DragEnd()
	d.MouseUp(mouse(110, 70, desktop.MouseButtonPrimary))
	if sc.Len() != 1 {
		t.Fatalf("expected one shape, got %d", sc.Len())
	}
	r, ok := sc.Nodes()[0].(*vector.RectNode)
	if !ok || r.Rect() != (vector.Rect{X: 10, Y: 20, W: 100, H: 50}) {
		t.Fatalf("unexpected shape %T %+v", sc.Nodes()[0], sc.Nodes()[0].Bounds())
	}
}

func TestDrawingCanvasMiddleButtonPans(t *testing.T) {
	d, sc, m := newTestCanvas(t)
	m.Activate(tools.Rectangle)
	changed := 0
	d.OnViewChanged = func() { changed++ }
	d.MouseDown(mouse(10, 10, desktop.MouseButtonTertiary))
	d.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(40, 30)}, Dragged: fyne.Delta{DX: 30, DY: 20}})
	d.MouseUp(mouse(40, 30, desktop.MouseButtonTertiary))
	if sc.Len() != 0 {
		t.Fatalf("panning must not draw")
	}
	if v := sc.View(); v.Pan != (vector.Pt{X: 30, Y: 20}) || changed != 1 {
		t.Fatalf("pan %+v, %d view changes", v.Pan, changed)
	}
}

func TestDrawingCanvasLayoutFollowsView(t *testing.T) {
	d, sc, _ := newTestCanvas(t)
	r, ok := d.CreateRenderer().(*drawingRenderer)
	if !ok {
		t.Fatalf("expected drawingRenderer, got %T", d.CreateRenderer())
	}
	d.ZoomBy(1.5)
	r.Layout(fyne.NewSize(800, 600))
	z := sc.Zoom()
	if !almostEqual(r.paper.Size().Width, 400*z, 0.01) || !almostEqual(r.paper.Size().Height, 300*z, 0.01) {
		t.Fatalf("paper size %v at zoom %v", r.paper.Size(), z)
	}
	v := sc.View()
	if p := r.paper.Position(); !almostEqual(p.X, v.Pan.X, 0.01) || !almostEqual(p.Y, v.Pan.Y, 0.01) {
		t.Fatalf("paper at %v, pan %+v", p, v.Pan)
	}
	d.ResetZoom()
	if sc.Zoom() != 1 {
		t.Fatalf("reset zoom left %v", sc.Zoom())
	}
}

func TestDrawingCanvasEscapeSelects(t *testing.T) {
	d, _, m := newTestCanvas(t)
	m.Activate(tools.Polygon)
	d.TypedKey(&fyne.KeyEvent{Name: fyne.KeyEscape})
	if m.Kind() != tools.Select {
		t.Fatalf("escape should switch to select, got %s", m.Kind())
	}
}

func TestToVector(t *testing.T) {
	got := toVector(color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	if got != (vector.Color{R: 10, G: 20, B: 30, A: 128}) {
		t.Fatalf("toVector = %+v", got)
	}
}

func TestRecentDrawings(t *testing.T) {
	a := test.NewTempApp(t)
	dir := t.TempDir()
	var paths []string
	for _, n := range []string{"a", "b", "c"} {
		p := filepath.Join(dir, n+".gopaint.json")
		if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	for _, p := range paths {
		addRecent(a.Preferences(), p)
	}
	addRecent(a.Preferences(), paths[0])
	got := loadRecent(a.Preferences())
	if len(got) != 3 || got[0] != paths[0] || got[1] != paths[2] {
		t.Fatalf("recent order %v", got)
	}
	if err := os.Remove(paths[1]); err != nil {
		t.Fatal(err)
	}
	if got := loadRecent(a.Preferences()); len(got) != 2 {
		t.Fatalf("missing files should drop out: %v", got)
	}
}
