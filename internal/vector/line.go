/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// lineSlop is the minimum pick distance for thin lines.
const lineSlop = 3

// LineNode is a straight segment between two local-space endpoints.
type LineNode struct {
	baseNode
	p1, p2 Pt
}

func NewLine(p1, p2 Pt, s Stroke) *LineNode {
	return &LineNode{baseNode: newBase(Fill{}, s), p1: p1, p2: p2}
}

func (n *LineNode) Points() (Pt, Pt) { return n.p1, n.p2 }

// SetEnd moves the far endpoint; the anchor stays put.
func (n *LineNode) SetEnd(p Pt) { n.p2 = p }

// Length is measured in local units.
func (n *LineNode) Length() float32 { return Dist(n.p1, n.p2) }

func (n *LineNode) Bounds() Rect {
	return BoundsOf([]Pt{n.xf.Apply(n.p1), n.xf.Apply(n.p2)})
}

func (n *LineNode) Hit(p Pt) bool {
	slop := max(n.halfStroke(), lineSlop)
	return distToSegment(n.local(p), n.p1, n.p2) <= slop
}
