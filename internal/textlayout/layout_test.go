/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"image"
	"image/color"
	"testing"
)

func TestMeasure_Deterministic(t *testing.T) {
	w1, h1 := Measure(BasicProvider{}, "ABC", FontSpec{})
	w2, h2 := Measure(nil, "ABC", FontSpec{Size: 40})
	if w1 != 21 || w1 != w2 || h1 != h2 {
		t.Fatalf("basic face should be fixed 7px: w1=%v h1=%v w2=%v h2=%v", w1, h1, w2, h2)
	}
}

func TestLibraryProviderScalesWithSize(t *testing.T) {
	p := LibraryProvider{Lib: NewFontLibrary()}
	small, sh := Measure(p, "Hello", FontSpec{Family: "Go", Size: 10})
	big, bh := Measure(p, "Hello", FontSpec{Family: "Go", Size: 40})
	if !(big > small*3) || !(bh > sh) {
		t.Fatalf("expected larger metrics at 40px: %v/%v vs %v/%v", small, sh, big, bh)
	}
	unknown, _ := Measure(p, "Hello", FontSpec{Family: "Nope", Size: 10})
	if unknown != small {
		t.Fatalf("unknown family should fall back to Go: %v vs %v", unknown, small)
	}
}

func TestFontLibraryFamiliesAndCache(t *testing.T) {
	fl := NewFontLibrary()
	fams := fl.Families()
	if len(fams) != 3 || fams[0] != "Go" {
		t.Fatalf("families = %v", fams)
	}
	a, err := fl.Face("Go Mono", 12)
	if err != nil {
		t.Fatalf("face: %v", err)
	}
	b, _ := fl.Face("Go Mono", 12)
	if a != b {
		t.Fatalf("faces should be cached")
	}
	if err := fl.LoadTTF("Missing", "/nonexistent/font.ttf"); err == nil {
		t.Fatalf("expected error for missing font file")
	}
}

func TestDrawStringPaintsPixels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 60, 20))
	DrawString(img, BasicProvider{}, FontSpec{}, "Hi", image.Point{X: 2, Y: 2}, color.Black)
	painted := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			painted++
		}
	}
	if painted == 0 {
		t.Fatalf("no glyph pixels drawn")
	}
}

func TestLabelDrawsInsideLineBox(t *testing.T) {
	l := NewLabel(nil, FontSpec{})
	if l.Height() != 13 || l.LineGap != 0 {
		t.Fatalf("basic metrics %+v", l.Metrics)
	}
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	l.Draw(img, "Wy", image.Point{X: 5, Y: 10}, color.Black)
	w := int(l.Width("Wy"))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if img.NRGBAAt(x, y).A == 0 {
				continue
			}
			if x < 5 || x >= 5+w || y < 10 || y >= 10+int(l.Height()) {
				t.Fatalf("pixel (%d,%d) outside the line box", x, y)
			}
		}
	}
}
