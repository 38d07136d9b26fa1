/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func near(a, b float32) bool { return abs(a-b) < 1e-2 }

func TestPathBoundsFollowCurveExtrema(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.QuadTo(10, 10, 20, 0)
	p.CubicTo(30, -10, 40, 10, 50, 0)
	p.Close()

	b := p.Bounds()
	// quad peaks at y=5; the cubic dips to -10*sqrt(3)/6
	if b.X != 0 || b.W != 50 || !near(b.Y+b.H, 5) || !near(b.Y, -2.887) {
		t.Fatalf("bounds %+v", b)
	}
	var line Path
	line.MoveTo(3, 4)
	line.LineTo(-1, 10)
	if b := line.Bounds(); b != R(-1, 4, 4, 6) {
		t.Fatalf("line bounds %+v", b)
	}
	if b := (&Path{}).Bounds(); b != (Rect{}) {
		t.Fatalf("empty path bounds %+v", b)
	}
}

func TestPathFlatten(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.QuadTo(20, 0, 20, 10)
	p.Close()
	p.LineTo(0, 20)
	p.MoveTo(50, 50)

	subs := p.Flatten()
	if len(subs) != 3 {
		t.Fatalf("subpaths %d", len(subs))
	}
	first := subs[0]
	if !first.Closed || first.Pts[0] != (Pt{}) || first.Pts[len(first.Pts)-1] != (Pt{20, 10}) || len(first.Pts) < 4 {
		t.Fatalf("first subpath %+v", first)
	}
	// drawing on after Close starts at the closed subpath's origin
	if second := subs[1]; second.Closed || len(second.Pts) != 2 || second.Pts[0] != (Pt{}) {
		t.Fatalf("second subpath %+v", second)
	}
	if third := subs[2]; len(third.Pts) != 1 || third.Pts[0] != (Pt{50, 50}) {
		t.Fatalf("third subpath %+v", third)
	}
	if MoveTo.String() != "M" || CubicTo.String() != "C" || Close.String() != "Z" {
		t.Fatalf("op names")
	}
}

func TestPathNodeBoundsAndHit(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.LineTo(0, 10)
	p.Close()

	n := NewPath(p, Fill{Enabled: true, Color: White}, Stroke{Enabled: true, Width: 1})
	if b := n.Bounds(); b != R(0, 0, 10, 10) {
		t.Fatalf("bounds %+v", b)
	}
	if !n.Hit(Pt{1, 1}) {
		t.Fatalf("inside the triangle should hit")
	}
	if n.Hit(Pt{9, 9}) || n.Hit(Pt{20, 20}) {
		t.Fatalf("points outside the triangle should miss")
	}
	n.SetTransform(Translate(5, 5))
	if !n.Hit(Pt{6, 6}) {
		t.Fatalf("expected hit after translation")
	}
	if b := n.Bounds(); b != R(5, 5, 10, 10) {
		t.Fatalf("transformed bounds %+v", b)
	}
}

func TestStrokeHitsNearItsLine(t *testing.T) {
	n := NewStroke(Pt{0, 0}, SolidStroke(Black, 2))
	if !n.Hit(Pt{1, 1}) {
		t.Fatalf("a single dab should be pickable")
	}
	n.AppendPoint(Pt{40, 0})
	n.AppendPoint(Pt{40, 40})
	if n.Len() != 3 || n.Bounds() != R(0, 0, 40, 40) {
		t.Fatalf("len %d bounds %+v", n.Len(), n.Bounds())
	}
	if !n.Hit(Pt{20, 2}) || !n.Hit(Pt{41, 30}) {
		t.Fatalf("points on the stroke should hit")
	}
	if n.Hit(Pt{10, 30}) {
		t.Fatalf("unfilled strokes must not hit inside their bounds")
	}
}
