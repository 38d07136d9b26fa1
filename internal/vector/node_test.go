/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"testing"
)

func TestNodeFlagsAndStyles(t *testing.T) {
	n := NewRect(R(1, 2, 3, 4), Fill{}, Stroke{})
	if n.Transform() != Identity || n.Fill().Enabled || n.Stroke().Enabled {
		t.Fatalf("fresh node: %+v", n)
	}
	if !n.Selectable() || !n.Evented() {
		t.Fatalf("new nodes are selectable and evented")
	}
	n.SetEvented(false)
	if n.Evented() || !n.Selectable() {
		t.Fatalf("flags must toggle independently")
	}
	n.SetSelectable(false)
	n.SetEvented(true)
	if n.Selectable() || !n.Evented() {
		t.Fatalf("flags after toggling back")
	}
	n.SetFill(SolidFill(White))
	n.SetStroke(SolidStroke(Black, 2))
	if !n.Fill().Enabled || n.Stroke().Width != 2 {
		t.Fatalf("styles not applied")
	}
}

func TestRectNodeHitIncludesStroke(t *testing.T) {
	n := NewRect(R(0, 0, 100, 50), SolidFill(White), Stroke{Enabled: true, Width: 4})
	n.SetTransform(Translate(10, 20))
	if !n.Hit(Pt{60, 45}) || !n.Hit(Pt{8, 20}) {
		t.Fatalf("inside and on the stroke should hit")
	}
	if n.Hit(Pt{7, 20}) {
		t.Fatalf("beyond the stroke should miss")
	}
	if b := n.Bounds(); b != R(10, 20, 100, 50) {
		t.Fatalf("bounds %+v", b)
	}
}

func TestEllipseNode(t *testing.T) {
	n := NewEllipse(R(10, 20, 40, 10), SolidFill(White), Stroke{})
	if c := n.Center(); c != (Pt{30, 25}) {
		t.Fatalf("center %+v", c)
	}
	if rx, ry := n.Radii(); rx != 20 || ry != 5 {
		t.Fatalf("radii %v,%v", rx, ry)
	}
	if !n.Hit(Pt{30, 25}) || !n.Hit(Pt{49, 25}) {
		t.Fatalf("inside points should hit")
	}
	if n.Hit(Pt{12, 21}) {
		t.Fatalf("the rect corner is outside the ellipse")
	}
	n.SetTransform(Translate(5, -3))
	if b := n.Bounds(); b != R(15, 17, 40, 10) {
		t.Fatalf("transformed bounds %+v", b)
	}
	n.SetRect(Rect{})
	if n.Hit(Pt{5, -3}) {
		t.Fatalf("degenerate ellipse should not hit")
	}
}

func TestGroupBoundsAndHit(t *testing.T) {
	g := NewGroup(NewRect(R(0, 0, 10, 10), Fill{}, Stroke{}), NewRect(R(20, 0, 10, 10), Fill{}, Stroke{}))
	if b := g.Bounds(); b != R(0, 0, 30, 10) {
		t.Fatalf("group bounds %+v", b)
	}
	if !g.Hit(Pt{5, 5}) || !g.Hit(Pt{25, 5}) || g.Hit(Pt{15, 5}) {
		t.Fatalf("hits should follow the children")
	}
	g.SetTransform(Rotate(math.Pi / 2))
	if !g.Hit(Pt{-5, 5}) {
		t.Fatalf("(5,5) rotated a quarter turn lands near (-5,5)")
	}
	g.SetTransform(Translate(100, 0))
	if b := g.Bounds(); b.X != 100 || b.W != 30 {
		t.Fatalf("group bounds should follow its transform: %+v", b)
	}
	if b := NewGroup().Bounds(); b != (Rect{}) {
		t.Fatalf("empty group %+v", b)
	}
}
