/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Node is a scene item that renderers can draw. Geometry lives in the
// node's local space and Transform maps it into the scene.
type Node interface {
	Bounds() Rect
	Hit(p Pt) bool

	Transform() Affine2D
	SetTransform(Affine2D)

	Fill() Fill
	Stroke() Stroke
	SetFill(Fill)
	SetStroke(Stroke)

	// Selectable nodes can be picked and dragged by the selection mode.
	Selectable() bool
	SetSelectable(bool)
	// Evented nodes take part in hit-testing at all. Tool previews such as
	// markers, rubber bands and handles are not evented.
	Evented() bool
	SetEvented(bool)
}

type nodeFlags uint8

const (
	flagSelectable nodeFlags = 1 << iota
	flagEvented
)

type baseNode struct {
	xf     Affine2D
	fill   Fill
	stroke Stroke
	flags  nodeFlags
}

func newBase(f Fill, s Stroke) baseNode {
	return baseNode{xf: Identity, fill: f, stroke: s, flags: flagSelectable | flagEvented}
}

func (b *baseNode) set(f nodeFlags, on bool) {
	if on {
		b.flags |= f
	} else {
		b.flags &^= f
	}
}

func (b *baseNode) Transform() Affine2D     { return b.xf }
func (b *baseNode) SetTransform(m Affine2D) { b.xf = m }
func (b *baseNode) Fill() Fill              { return b.fill }
func (b *baseNode) Stroke() Stroke          { return b.stroke }
func (b *baseNode) SetFill(f Fill)          { b.fill = f }
func (b *baseNode) SetStroke(s Stroke)      { b.stroke = s }
func (b *baseNode) Selectable() bool        { return b.flags&flagSelectable != 0 }
func (b *baseNode) SetSelectable(v bool)    { b.set(flagSelectable, v) }
func (b *baseNode) Evented() bool           { return b.flags&flagEvented != 0 }
func (b *baseNode) SetEvented(v bool)       { b.set(flagEvented, v) }

// local maps a scene point into node space.
func (b *baseNode) local(p Pt) Pt { return b.xf.Invert().Apply(p) }

// halfStroke pads outline hit tests.
func (b *baseNode) halfStroke() float32 {
	if b.stroke.Enabled {
		return b.stroke.Width / 2
	}
	return 0
}

// boxNode is a shape laid out in a local rect.
type boxNode struct {
	baseNode
	rect Rect
}

func (n *boxNode) Rect() Rect     { return n.rect }
func (n *boxNode) SetRect(r Rect) { n.rect = r }
func (n *boxNode) Bounds() Rect   { return n.xf.TransformRect(n.rect) }

// RectNode is a rectangle, axis-aligned before its transform.
type RectNode struct{ boxNode }

func NewRect(r Rect, f Fill, s Stroke) *RectNode {
	return &RectNode{boxNode{baseNode: newBase(f, s), rect: r}}
}

func (n *RectNode) Hit(p Pt) bool {
	hs := n.halfStroke()
	return n.rect.Inset(-hs, -hs).Contains(n.local(p))
}

// EllipseNode is the ellipse inscribed in its rect.
type EllipseNode struct{ boxNode }

func NewEllipse(r Rect, f Fill, s Stroke) *EllipseNode {
	return &EllipseNode{boxNode{baseNode: newBase(f, s), rect: r}}
}

// Center is the local-space center.
func (n *EllipseNode) Center() Pt { return n.rect.Center() }

// Radii returns rx, ry in local space.
func (n *EllipseNode) Radii() (float32, float32) { return n.rect.W / 2, n.rect.H / 2 }

func (n *EllipseNode) Hit(p Pt) bool {
	rx, ry := n.Radii()
	hs := n.halfStroke()
	rx, ry = rx+hs, ry+hs
	if rx <= 0 || ry <= 0 {
		return false
	}
	d := n.local(p).Sub(n.Center())
	d = Pt{d.X / rx, d.Y / ry}
	return d.Dot(d) <= 1
}

// Group holds child nodes under a shared transform.
type Group struct {
	baseNode
	Children []Node
}

func NewGroup(children ...Node) *Group {
	return &Group{baseNode: newBase(Fill{}, Stroke{}), Children: append([]Node(nil), children...)}
}

func (g *Group) Bounds() Rect {
	if len(g.Children) == 0 {
		return g.xf.TransformRect(Rect{})
	}
	b := g.Children[0].Bounds()
	for _, c := range g.Children[1:] {
		b = b.Union(c.Bounds())
	}
	return g.xf.TransformRect(b)
}

// Hit tests children top-most first.
func (g *Group) Hit(p Pt) bool {
	q := g.local(p)
	for i := len(g.Children) - 1; i >= 0; i-- {
		if g.Children[i].Hit(q) {
			return true
		}
	}
	return false
}
