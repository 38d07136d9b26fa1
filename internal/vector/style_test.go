/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestFillRules(t *testing.T) {
	outer := []Pt{{0, 0}, {30, 0}, {30, 30}, {0, 30}}
	sameWay := []Pt{{10, 10}, {20, 10}, {20, 20}, {10, 20}}
	reversed := []Pt{{10, 10}, {10, 20}, {20, 20}, {20, 10}}
	hole := Pt{15, 15}

	nz := Fill{Rule: NonZero, Enabled: true}
	eo := Fill{Rule: EvenOdd, Enabled: true}
	if !nz.Contains([][]Pt{outer, sameWay}, hole) {
		t.Fatalf("non-zero: rings wound the same way fill the middle")
	}
	if nz.Contains([][]Pt{outer, reversed}, hole) {
		t.Fatalf("non-zero: a reversed inner ring cuts a hole")
	}
	if eo.Contains([][]Pt{outer, sameWay}, hole) {
		t.Fatalf("even-odd: any inner ring cuts a hole")
	}
	for _, f := range []Fill{nz, eo} {
		if !f.Contains([][]Pt{outer, sameWay}, Pt{5, 5}) || f.Contains([][]Pt{outer}, Pt{40, 5}) {
			t.Fatalf("rule %d on the plain area", f.Rule)
		}
	}
}

func TestCapAndJoinNames(t *testing.T) {
	for _, c := range []LineCap{CapButt, CapRound, CapSquare} {
		if ParseLineCap(c.String()) != c {
			t.Fatalf("cap %d does not round trip", c)
		}
	}
	for _, j := range []LineJoin{JoinMiter, JoinRound, JoinBevel} {
		if ParseLineJoin(j.String()) != j {
			t.Fatalf("join %d does not round trip", j)
		}
	}
	if CapSquare.String() != "square" || JoinBevel.String() != "bevel" {
		t.Fatalf("names")
	}
	if ParseLineCap("wavy") != CapButt || ParseLineJoin("") != JoinMiter || LineCap(9).String() != "butt" {
		t.Fatalf("unknown names fall back to the defaults")
	}
}
