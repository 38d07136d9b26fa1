/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// SnapOptions controls snapping of a dragged shape to the other shapes.
// A zero Threshold disables snapping.
type SnapOptions struct {
	Threshold float32 // scene units
	Edges     bool
	Centers   bool
}

func (o SnapOptions) Enabled() bool { return o.Threshold > 0 && (o.Edges || o.Centers) }

// Guide is an alignment line shown while a shape is snapped. Pos is x for
// vertical guides and y otherwise; From and To span both aligned shapes.
type Guide struct {
	Vertical bool
	Center   bool
	Pos      float32
	From, To float32
}

// axisSnap keeps the smallest correction seen on one axis.
type axisSnap struct {
	limit float32
	delta float32
	guide Guide
	ok    bool
}

func (s *axisSnap) consider(d float32, g Guide) {
	ad := abs(d)
	if ad > s.limit || s.ok && ad >= abs(s.delta) {
		return
	}
	s.delta, s.guide, s.ok = d, g, true
}

// Snap moves r so that one of its edges or its center lines up with the
// nearest matching feature of others, when that is within the threshold.
// X and Y snap independently. The returned guides describe the matches.
func Snap(r Rect, others []Rect, o SnapOptions) (Rect, []Guide) {
	if !o.Enabled() {
		return r, nil
	}
	x := axisSnap{limit: o.Threshold}
	y := axisSnap{limit: o.Threshold}
	for _, a := range others {
		vspan := [2]float32{min(r.Y, a.Y), max(r.Y+r.H, a.Y+a.H)}
		hspan := [2]float32{min(r.X, a.X), max(r.X+r.W, a.X+a.W)}
		if o.Edges {
			for _, m := range [2]float32{r.X, r.X + r.W} {
				for _, t := range [2]float32{a.X, a.X + a.W} {
					x.consider(t-m, Guide{Vertical: true, Pos: t, From: vspan[0], To: vspan[1]})
				}
			}
			for _, m := range [2]float32{r.Y, r.Y + r.H} {
				for _, t := range [2]float32{a.Y, a.Y + a.H} {
					y.consider(t-m, Guide{Pos: t, From: hspan[0], To: hspan[1]})
				}
			}
		}
		if o.Centers {
			c, ac := r.Center(), a.Center()
			x.consider(ac.X-c.X, Guide{Vertical: true, Center: true, Pos: ac.X, From: vspan[0], To: vspan[1]})
			y.consider(ac.Y-c.Y, Guide{Center: true, Pos: ac.Y, From: hspan[0], To: hspan[1]})
		}
	}
	var guides []Guide
	if x.ok {
		r.X = FloatRound(r.X+x.delta, 3)
		guides = append(guides, x.guide)
	}
	if y.ok {
		r.Y = FloatRound(r.Y+y.delta, 3)
		guides = append(guides, y.guide)
	}
	return r, guides
}
