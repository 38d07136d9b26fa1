/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// PolygonNode is a closed outline whose vertices are stored relative to the
// shape's own origin. The scene position lives entirely in the transform, so
// moving the polygon never rewrites its points.
type PolygonNode struct {
	baseNode
	pts   []Pt
	bbox  Rect
	dirty bool
}

// NewPolygon builds a polygon from absolute scene points. The points are
// rebased onto their bounding-box origin and the transform is set to
// translate that origin back into place.
func NewPolygon(abs []Pt, f Fill, s Stroke) *PolygonNode {
	b := BoundsOf(abs)
	rel := make([]Pt, len(abs))
	for i, p := range abs {
		rel[i] = Pt{p.X - b.X, p.Y - b.Y}
	}
	n := &PolygonNode{baseNode: newBase(f, s), pts: rel}
	n.xf = Translate(b.X, b.Y)
	n.bbox = BoundsOf(rel)
	return n
}

// NewPolygonLocal builds a polygon from points already in local space.
func NewPolygonLocal(rel []Pt, xf Affine2D, f Fill, s Stroke) *PolygonNode {
	n := &PolygonNode{baseNode: newBase(f, s), pts: append([]Pt(nil), rel...)}
	n.xf = xf
	n.bbox = BoundsOf(n.pts)
	return n
}

func (n *PolygonNode) NumPoints() int { return len(n.pts) }

// Point returns local vertex i.
func (n *PolygonNode) Point(i int) Pt { return n.pts[i] }

// Points returns a copy of the local vertices.
func (n *PolygonNode) Points() []Pt { return append([]Pt(nil), n.pts...) }

// ScenePoint maps vertex i through the live transform.
func (n *PolygonNode) ScenePoint(i int) Pt { return n.xf.Apply(n.pts[i]) }

// SetPoint overwrites local vertex i and flags the outline for recomputation.
// Out-of-range indexes are ignored.
func (n *PolygonNode) SetPoint(i int, p Pt) {
	if i < 0 || i >= len(n.pts) {
		return
	}
	n.pts[i] = p
	n.dirty = true
}

// Dirty reports whether the cached outline is stale.
func (n *PolygonNode) Dirty() bool { return n.dirty }

// Refresh recomputes the cached outline bounds and clears the dirty flag.
// The rasterizer calls it on dirty polygons before drawing.
func (n *PolygonNode) Refresh() {
	n.bbox = BoundsOf(n.pts)
	n.dirty = false
}

func (n *PolygonNode) Bounds() Rect {
	if n.dirty {
		return n.xf.TransformRect(BoundsOf(n.pts))
	}
	return n.xf.TransformRect(n.bbox)
}

// Hit is an even-odd point-in-polygon test, widened by half the stroke so
// unfilled outlines can still be picked on their edge.
func (n *PolygonNode) Hit(p Pt) bool {
	if len(n.pts) < 3 {
		return false
	}
	q := n.local(p)
	if evenOdd(n.pts, q) {
		return true
	}
	slop := max(n.halfStroke(), lineSlop)
	for i := range n.pts {
		if distToSegment(q, n.pts[i], n.pts[(i+1)%len(n.pts)]) <= slop {
			return true
		}
	}
	return false
}
