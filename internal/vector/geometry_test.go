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

func TestRectOps(t *testing.T) {
	r := R(10, 20, 100, 50)
	for _, p := range []Pt{{10, 20}, {110, 70}, {60, 45}} {
		if !r.Contains(p) {
			t.Fatalf("%+v should be inside %+v", p, r)
		}
	}
	if r.Contains(Pt{9, 20}) {
		t.Fatalf("point left of the rect")
	}
	if in := r.Inset(5, 5); in != R(15, 25, 90, 40) {
		t.Fatalf("inset %+v", in)
	}
	if out := r.Inset(-2, -1); out != R(8, 19, 104, 52) {
		t.Fatalf("negative inset %+v", out)
	}
	if u := R(0, 0, 10, 10).Union(R(5, -5, 5, 10)); u != R(0, -5, 10, 15) {
		t.Fatalf("union %+v", u)
	}
	if r.Min() != (Pt{10, 20}) || r.Max() != (Pt{110, 70}) || r.Center() != (Pt{60, 45}) {
		t.Fatalf("corners of %+v", r)
	}
	if !R(0, 0, 0, 5).Empty() || r.Empty() {
		t.Fatalf("empty")
	}
}

func TestRectFromPointsAnyDirection(t *testing.T) {
	a := Pt{10, 10}
	for _, tc := range []struct {
		b    Pt
		want Rect
	}{
		{Pt{30, 40}, R(10, 10, 20, 30)},
		{Pt{-10, 40}, R(-10, 10, 20, 30)},
		{Pt{30, -20}, R(10, -20, 20, 30)},
		{Pt{-10, -20}, R(-10, -20, 20, 30)},
	} {
		if got := RectFromPoints(a, tc.b); got != tc.want {
			t.Fatalf("RectFromPoints(%v, %v) = %+v, want %+v", a, tc.b, got, tc.want)
		}
	}
}

func TestBoundsOfAndDist(t *testing.T) {
	if b := BoundsOf([]Pt{{3, 4}, {-1, 10}, {5, 0}}); b != R(-1, 0, 6, 10) {
		t.Fatalf("bounds %+v", b)
	}
	if BoundsOf(nil) != (Rect{}) {
		t.Fatalf("empty bounds should be zero")
	}
	if d := Dist(Pt{0, 0}, Pt{3, 4}); d != 5 {
		t.Fatalf("dist %v", d)
	}
	if d := distToSegment(Pt{5, 3}, Pt{0, 0}, Pt{10, 0}); d != 3 {
		t.Fatalf("segment distance %v", d)
	}
	if d := distToSegment(Pt{13, 4}, Pt{0, 0}, Pt{10, 0}); d != 5 {
		t.Fatalf("distance past the end %v", d)
	}
}

func TestAffineCompose(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	if p := m.Apply(Pt{1, 1}); p != (Pt{12, 8}) {
		t.Fatalf("scale then translate: %+v", p)
	}
	if p := Rotate(math.Pi).Apply(Pt{1, 0}); !p.Eq(Pt{-1, 0}, 1e-5) {
		t.Fatalf("half turn: %+v", p)
	}
	if o := Translate(3, 4).Mul(Rotate(1)).Offset(); o != (Pt{3, 4}) {
		t.Fatalf("offset %+v", o)
	}
}

func TestAffineInvertRoundTrip(t *testing.T) {
	m := Translate(30, -4).Mul(Rotate(0.7)).Mul(Scale(2, 0.5))
	p := Pt{12, 7}
	if q := m.Invert().Apply(m.Apply(p)); !q.Eq(p, 1e-3) {
		t.Fatalf("round trip: got %+v want %+v", q, p)
	}
	if Scale(0, 1).Invert() != Identity {
		t.Fatalf("singular matrix should invert to identity")
	}
}

func TestFloatRound(t *testing.T) {
	if FloatRound(1.23456, 2) != 1.23 {
		t.Fatalf("two places")
	}
	if FloatRound(2.5, 0) != 3 {
		t.Fatalf("half rounds away from zero")
	}
	if FloatRound(1.23456, -1) != 1.23456 {
		t.Fatalf("negative places should be a no-op")
	}
}
