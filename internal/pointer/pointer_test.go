/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pointer

import (
	"testing"

	"gopaint/internal/vector"
)

func TestNormalizeAccountsForZoomAndPan(t *testing.T) {
	v := NewView()
	v.SetZoom(2)
	v.Pan = vector.Pt{X: 10, Y: 20}
	ev := v.Normalize(Raw{Phase: Move, X: 110, Y: 220})
	if ev.Point != (vector.Pt{X: 50, Y: 100}) {
		t.Fatalf("scene point = %+v", ev.Point)
	}
	if ev.Phase != Move || ev.Screen != (vector.Pt{X: 110, Y: 220}) {
		t.Fatalf("unexpected event %+v", ev)
	}
	if back := v.ToScreen(ev.Point); back != ev.Screen {
		t.Fatalf("ToScreen round trip = %+v", back)
	}
}

func TestNormalizeDoesNotClamp(t *testing.T) {
	v := NewView()
	ev := v.Normalize(Raw{X: -40, Y: 5000})
	if ev.Point.X != -40 || ev.Point.Y != 5000 {
		t.Fatalf("off-canvas point was clamped: %+v", ev.Point)
	}
}

func TestZoomClampsToRange(t *testing.T) {
	v := NewView()
	v.SetZoom(10)
	if v.Zoom != DefaultMaxZoom {
		t.Fatalf("zoom = %v, want %v", v.Zoom, DefaultMaxZoom)
	}
	v.SetZoom(0.01)
	if v.Zoom != DefaultMinZoom {
		t.Fatalf("zoom = %v, want %v", v.Zoom, DefaultMinZoom)
	}
	v.Reset()
	if v.Percent() != 100 || v.Pan != (vector.Pt{}) {
		t.Fatalf("reset failed: %+v", v)
	}
}

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	v := NewView()
	anchor := vector.Pt{X: 200, Y: 100}
	before := v.ToScene(anchor)
	v.ZoomAt(anchor, 1.5)
	after := v.ToScene(anchor)
	if !before.Eq(after, 1e-4) {
		t.Fatalf("anchor drifted: %+v -> %+v", before, after)
	}
	if v.Percent() != 150 {
		t.Fatalf("percent = %d", v.Percent())
	}
}

func TestZeroViewBehavesAsIdentity(t *testing.T) {
	var v View
	if p := v.ToScene(vector.Pt{X: 3, Y: 4}); p != (vector.Pt{X: 3, Y: 4}) {
		t.Fatalf("zero view should be identity, got %+v", p)
	}
}
