//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"gopaint/internal/crash"
	"gopaint/internal/export"
	"gopaint/internal/pointer"
	"gopaint/internal/scene"
	"gopaint/internal/tools"
	"gopaint/internal/vector"
)

// DrawingCanvas shows a scene and feeds mouse and keyboard input to the
// tool manager. Mouse positions are widget-relative, which is the screen
// space of the scene view.
type DrawingCanvas struct {
	widget.BaseWidget
	sc    *scene.Canvas
	tools *tools.Manager
	g     *gesture

	panning   bool
	scheduled bool

	// OnViewChanged runs after zoom or pan changes.
	OnViewChanged func()
	// OnError receives errors and recovered panics from input handlers.
	OnError func(op string, err error)
}

// NewDrawingCanvas binds a widget to sc and m. The scene's redraw requests
// refresh the widget.
func NewDrawingCanvas(sc *scene.Canvas, m *tools.Manager) *DrawingCanvas {
	d := &DrawingCanvas{sc: sc, tools: m}
	d.g = newGesture(m.Pointer)
	sc.OnRedraw(d.schedule)
	d.ExtendBaseWidget(d)
	return d
}

// schedule coalesces redraw requests made while handling one event.
func (d *DrawingCanvas) schedule() {
	if d.scheduled {
		return
	}
	d.scheduled = true
	fyne.Do(func() {
		d.scheduled = false
		d.Refresh()
	})
}

func (d *DrawingCanvas) do(op string, fn func()) {
	if err := crash.Guard(op, fn); err != nil && d.OnError != nil {
		d.OnError(op, err)
	}
}

func (d *DrawingCanvas) viewChanged() {
	d.Refresh()
	if d.OnViewChanged != nil {
		d.OnViewChanged()
	}
}

func (d *DrawingCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.NRGBA{R: 60, G: 60, B: 66, A: 255})
	paper := canvas.NewImageFromImage(export.RenderAll(d.sc))
	paper.FillMode = canvas.ImageFillStretch
	paper.ScaleMode = canvas.ImageScalePixels
	r := &drawingRenderer{d: d, bg: bg, paper: paper}
	r.rebuild()
	return r
}

func (d *DrawingCanvas) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

func pointerButton(b desktop.MouseButton) pointer.Button {
	switch b {
	case desktop.MouseButtonSecondary:
		return pointer.Secondary
	case desktop.MouseButtonTertiary:
		return pointer.Middle
	}
	return pointer.Primary
}

// MouseDown starts a tool gesture; the middle button pans the view instead.
func (d *DrawingCanvas) MouseDown(e *desktop.MouseEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(d); c != nil {
		c.Focus(d)
	}
	if e.Button == desktop.MouseButtonTertiary {
		d.panning = true
		return
	}
	d.do("canvas.press", func() { d.g.press(e.Position.X, e.Position.Y, pointerButton(e.Button)) })
}

func (d *DrawingCanvas) MouseUp(e *desktop.MouseEvent) {
	if d.panning {
		d.panning = false
		return
	}
	d.do("canvas.release", func() { d.g.release(e.Position.X, e.Position.Y) })
}

func (d *DrawingCanvas) MouseIn(*desktop.MouseEvent) {}

func (d *DrawingCanvas) MouseMoved(e *desktop.MouseEvent) {
	if d.panning {
		return
	}
	d.do("canvas.move", func() { d.g.move(e.Position.X, e.Position.Y) })
}

func (d *DrawingCanvas) MouseOut() {}

func (d *DrawingCanvas) Dragged(e *fyne.DragEvent) {
	if d.panning {
		d.sc.Pan(vector.Pt{X: e.Dragged.DX, Y: e.Dragged.DY})
		d.viewChanged()
		return
	}
	d.do("canvas.drag", func() { d.g.move(e.Position.X, e.Position.Y) })
}

func (d *DrawingCanvas) DragEnd() {
	d.panning = false
	d.do("canvas.drag_end", d.g.end)
}

// Scrolled zooms around the pointer.
func (d *DrawingCanvas) Scrolled(e *fyne.ScrollEvent) {
	factor := float32(math.Pow(1.1, float64(e.Scrolled.DY)/10))
	d.sc.ZoomAt(vector.Pt{X: e.Position.X, Y: e.Position.Y}, factor)
	d.viewChanged()
}

// DoubleTapped opens the vertex editor on the active polygon.
func (d *DrawingCanvas) DoubleTapped(*fyne.PointEvent) {
	d.do("canvas.edit_vertices", func() {
		if d.tools.EditPolygon(d.sc.Active()) != nil {
			d.Refresh()
		}
	})
}

// ZoomBy zooms around the widget center.
func (d *DrawingCanvas) ZoomBy(factor float32) {
	sz := d.Size()
	d.sc.ZoomAt(vector.Pt{X: sz.Width / 2, Y: sz.Height / 2}, factor)
	d.viewChanged()
}

// ResetZoom returns to 100% with no pan.
func (d *DrawingCanvas) ResetZoom() {
	d.sc.ResetZoom()
	d.viewChanged()
}

func (d *DrawingCanvas) FocusGained() {}
func (d *DrawingCanvas) FocusLost()   {}

// TypedRune types into the text shape being edited.
func (d *DrawingCanvas) TypedRune(r rune) {
	d.do("canvas.type", func() { d.tools.InsertText(string(r)) })
}

func (d *DrawingCanvas) TypedKey(e *fyne.KeyEvent) {
	d.do("canvas.key", func() {
		switch e.Name {
		case fyne.KeyBackspace:
			d.tools.Backspace()
		case fyne.KeyDelete:
			d.tools.DeleteActive()
		case fyne.KeyEscape:
			d.tools.Activate(tools.Select)
			d.viewChanged()
		}
	})
}

type drawingRenderer struct {
	d       *DrawingCanvas
	bg      *canvas.Rectangle
	paper   *canvas.Image
	handles []*canvas.Rectangle
	guides  []*canvas.Line
	objects []fyne.CanvasObject
}

func (r *drawingRenderer) rebuild() {
	r.objects = []fyne.CanvasObject{r.bg, r.paper}
	for _, g := range r.guides {
		r.objects = append(r.objects, g)
	}
	for _, h := range r.handles {
		r.objects = append(r.objects, h)
	}
}

func (r *drawingRenderer) Destroy()                     {}
func (r *drawingRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *drawingRenderer) MinSize() fyne.Size           { return r.d.MinSize() }

func (r *drawingRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	v := r.d.sc.View()
	z := r.d.sc.Zoom()
	w, h := r.d.sc.Size()
	r.paper.Move(fyne.NewPos(v.Pan.X, v.Pan.Y))
	r.paper.Resize(fyne.NewSize(float32(w)*z, float32(h)*z))

	pts := r.d.tools.VisibleHandles()
	for i, hr := range r.handles {
		if i >= len(pts) {
			hr.Hide()
			continue
		}
		b := tools.HandleBox(v.ToScreen(pts[i]))
		hr.Resize(fyne.NewSize(b.W, b.H))
		hr.Move(fyne.NewPos(b.X, b.Y))
		hr.Show()
	}

	guides := r.d.sc.Guides()
	for i, l := range r.guides {
		if i >= len(guides) {
			l.Hide()
			continue
		}
		g := guides[i]
		a, b := vector.Pt{X: g.From, Y: g.Pos}, vector.Pt{X: g.To, Y: g.Pos}
		if g.Vertical {
			a, b = vector.Pt{X: g.Pos, Y: g.From}, vector.Pt{X: g.Pos, Y: g.To}
		}
		a, b = v.ToScreen(a), v.ToScreen(b)
		l.Position1 = fyne.NewPos(a.X, a.Y)
		l.Position2 = fyne.NewPos(b.X, b.Y)
		l.Show()
	}
}

// Refresh re-renders the scene, including tool previews, and the vertex
// handles of the editors.
func (r *drawingRenderer) Refresh() {
	r.paper.Image = export.RenderAll(r.d.sc)
	r.paper.Refresh()
	need := len(r.d.tools.VisibleHandles())
	if need > len(r.handles) {
		for len(r.handles) < need {
			h := canvas.NewRectangle(color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			h.StrokeColor = color.NRGBA{R: 0, G: 170, B: 255, A: 255}
			h.StrokeWidth = 1
			r.handles = append(r.handles, h)
		}
		r.rebuild()
	}
	if need := len(r.d.sc.Guides()); need > len(r.guides) {
		for len(r.guides) < need {
			l := canvas.NewLine(color.NRGBA{R: 255, G: 0, B: 170, A: 255})
			l.StrokeWidth = 1
			r.guides = append(r.guides, l)
		}
		r.rebuild()
	}
	r.Layout(r.d.Size())
	canvas.Refresh(r.d)
}
