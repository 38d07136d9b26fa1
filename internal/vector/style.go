/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// FillRule picks which regions of a self-intersecting outline are inside.
type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

// Fill paints the interior of a shape.
type Fill struct {
	Color   Color
	Rule    FillRule
	Enabled bool
}

// SolidFill is an enabled non-zero fill, disabled for a fully transparent
// color.
func SolidFill(c Color) Fill { return Fill{Color: c, Enabled: c.A > 0} }

// Contains applies the rule to the closed rings of a shape.
func (f Fill) Contains(rings [][]Pt, q Pt) bool {
	w := 0
	for _, r := range rings {
		if f.Rule == EvenOdd {
			if evenOdd(r, q) {
				w ^= 1
			}
			continue
		}
		w += winding(r, q)
	}
	return w != 0
}

type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

type LineJoin uint8

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// Names as used by SVG and PDF.
var (
	capNames  = [...]string{CapButt: "butt", CapRound: "round", CapSquare: "square"}
	joinNames = [...]string{JoinMiter: "miter", JoinRound: "round", JoinBevel: "bevel"}
)

func (c LineCap) String() string {
	if int(c) < len(capNames) {
		return capNames[c]
	}
	return capNames[CapButt]
}

func (j LineJoin) String() string {
	if int(j) < len(joinNames) {
		return joinNames[j]
	}
	return joinNames[JoinMiter]
}

// ParseLineCap maps a name back to its cap; unknown names are butt.
func ParseLineCap(s string) LineCap {
	for i, n := range capNames {
		if n == s {
			return LineCap(i)
		}
	}
	return CapButt
}

// ParseLineJoin maps a name back to its join; unknown names are miter.
func ParseLineJoin(s string) LineJoin {
	for i, n := range joinNames {
		if n == s {
			return LineJoin(i)
		}
	}
	return JoinMiter
}

// Stroke paints the outline of a shape.
type Stroke struct {
	Color    Color
	Width    float32
	Cap      LineCap
	Join     LineJoin
	MiterLim float32
	Enabled  bool
}

// SolidStroke is round-capped and round-joined, the look of the brush and
// the shape tools.
func SolidStroke(c Color, width float32) Stroke {
	return Stroke{Color: c, Width: width, Cap: CapRound, Join: JoinRound, MiterLim: 4, Enabled: width > 0 && c.A > 0}
}
