/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package filter

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"gopaint/internal/scene"
	"gopaint/internal/vector"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func apply(t *testing.T, k Kind, v float64, src *image.NRGBA) color.NRGBA {
	t.Helper()
	f, err := New(k, v)
	if err != nil {
		t.Fatalf("New(%s): %v", k, err)
	}
	return f.Apply(src).NRGBAAt(0, 0)
}

func TestPointwiseFilters(t *testing.T) {
	src := solid(2, 2, color.NRGBA{R: 30, G: 60, B: 90, A: 128})
	cases := []struct {
		k    Kind
		v    float64
		want color.NRGBA
	}{
		{Grayscale, 0, color.NRGBA{60, 60, 60, 128}},
		{Invert, 0, color.NRGBA{225, 195, 165, 128}},
		{Brightness, 0.2, color.NRGBA{81, 111, 141, 128}},
		{Brightness, -1, color.NRGBA{0, 0, 0, 128}},
		{Threshold, 0.5, color.NRGBA{0, 0, 0, 128}},
		{Threshold, 0.1, color.NRGBA{255, 255, 255, 128}},
		{Contrast, 0, color.NRGBA{30, 60, 90, 128}},
	}
	for _, tc := range cases {
		if got := apply(t, tc.k, tc.v, src); got != tc.want {
			t.Errorf("%s(%v) = %v, want %v", tc.k, tc.v, got, tc.want)
		}
	}
	if src.NRGBAAt(0, 0) != (color.NRGBA{30, 60, 90, 128}) {
		t.Fatalf("filters must not modify their input")
	}
}

func TestContrastSpreadsAroundMidGray(t *testing.T) {
	src := solid(1, 1, color.NRGBA{R: 100, G: 128, B: 200, A: 255})
	got := apply(t, Contrast, 0.5, src)
	if got.R >= 100 || got.G != 128 || got.B <= 200 {
		t.Fatalf("contrast = %v", got)
	}
}

func TestConvolutionsKeepFlatImagesAndAlpha(t *testing.T) {
	src := solid(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 200})
	for _, k := range []Kind{Blur, Sharpen} {
		if got := apply(t, k, 0, src); got != (color.NRGBA{10, 20, 30, 200}) {
			t.Errorf("%s on flat image = %v", k, got)
		}
	}
}

func TestBlurSoftensAnEdge(t *testing.T) {
	src := solid(3, 1, color.NRGBA{A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	f, _ := New(Blur, 0)
	out := f.Apply(src)
	if c := out.NRGBAAt(1, 0); c.R == 255 || c.R == 0 {
		t.Fatalf("center not blurred: %v", c)
	}
	if c := out.NRGBAAt(0, 0); c.R == 0 {
		t.Fatalf("neighbor not blurred: %v", c)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		if got, err := ParseKind(string(k)); err != nil || got != k {
			t.Fatalf("ParseKind(%s) = %v, %v", k, got, err)
		}
	}
	if _, err := ParseKind("sepia"); err == nil {
		t.Fatalf("unknown filter accepted")
	}
}

func newImageScene(t *testing.T) (*scene.Canvas, scene.Handle, *vector.ImageNode, *Service) {
	t.Helper()
	c := scene.NewCanvas(200, 200)
	img := vector.NewImage(solid(10, 10, color.NRGBA{R: 30, G: 60, B: 90, A: 255}), vector.Pt{X: 20, Y: 30})
	h := c.Add(img)
	c.SetActive(h)
	s := NewService(c, 100*time.Millisecond)
	return c, h, img, s
}

func TestServiceRequiresAnImage(t *testing.T) {
	c := scene.NewCanvas(100, 100)
	s := NewService(c, 0)
	if err := s.Apply(Grayscale, 0); !errors.Is(err, ErrNotImage) {
		t.Fatalf("apply without selection: %v", err)
	}
	h := c.Add(vector.NewRect(vector.R(0, 0, 5, 5), vector.Fill{}, vector.Stroke{}))
	c.SetActive(h)
	if _, err := s.Remove(Blur); !errors.Is(err, ErrNotImage) {
		t.Fatalf("remove on a rectangle: %v", err)
	}
	var nilSvc *Service
	if err := nilSvc.UndoLast(); !errors.Is(err, ErrNotImage) {
		t.Fatalf("nil service: %v", err)
	}
}

func TestApplyReplacesSameKindAndConvolutionSlot(t *testing.T) {
	_, _, img, s := newImageScene(t)
	_ = s.Apply(Brightness, 0.1)
	_ = s.Apply(Brightness, 0.3)
	_ = s.Apply(Blur, 0)
	_ = s.Apply(Sharpen, 0.5)
	fs := img.Filters()
	if len(fs) != 2 || fs[0].Name() != "brightness" || fs[0].Amount() != 0.3 || fs[1].Name() != "sharpen" {
		specs, _ := s.Active()
		t.Fatalf("chain = %+v", specs)
	}
	if ok, _ := s.Remove(Sharpen); !ok || len(img.Filters()) != 1 {
		t.Fatalf("remove sharpen failed")
	}
	if ok, _ := s.Remove(Invert); ok {
		t.Fatalf("removing an absent filter reported success")
	}
}

func TestUndoLastRestoresPreviousChain(t *testing.T) {
	_, _, img, s := newImageScene(t)
	now := time.Unix(1000, 0)
	s.now = func() time.Time { return now }

	_ = s.Apply(Grayscale, 0)
	now = now.Add(time.Second)
	_ = s.Apply(Invert, 0)
	if err := s.UndoLast(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if fs := img.Filters(); len(fs) != 1 || fs[0].Name() != "grayscale" {
		t.Fatalf("after undo chain len=%d", len(fs))
	}
	if err := s.RedoLast(); err != nil || len(img.Filters()) != 2 {
		t.Fatalf("redo: %v len=%d", err, len(img.Filters()))
	}
	_ = s.UndoLast()
	_ = s.UndoLast()
	if len(img.Filters()) != 0 {
		t.Fatalf("expected the original chain")
	}
	if err := s.UndoLast(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("undo past history: %v", err)
	}
}

func TestSliderBurstIsOneUndoStep(t *testing.T) {
	_, _, img, s := newImageScene(t)
	now := time.Unix(1000, 0)
	s.now = func() time.Time { return now }
	for _, v := range []float64{0.1, 0.2, 0.3, 0.4} {
		_ = s.Apply(Brightness, v)
		now = now.Add(20 * time.Millisecond)
	}
	if err := s.UndoLast(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if len(img.Filters()) != 0 {
		t.Fatalf("one undo should revert the whole slider drag, chain=%d", len(img.Filters()))
	}
}

func TestQuickSecondFilterIsItsOwnUndoStep(t *testing.T) {
	_, _, img, s := newImageScene(t)
	now := time.Unix(1000, 0)
	s.now = func() time.Time { return now }
	_ = s.Apply(Grayscale, 0)
	now = now.Add(10 * time.Millisecond)
	_ = s.Apply(Blur, 0)
	if err := s.UndoLast(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if fs := img.Filters(); len(fs) != 1 || fs[0].Name() != "grayscale" {
		specs, _ := s.Active()
		t.Fatalf("chain after undo = %+v, want [grayscale]", specs)
	}
}

func TestRenderedAppliesChain(t *testing.T) {
	_, _, img, s := newImageScene(t)
	_ = s.Apply(Invert, 0)
	if got := img.Rendered().NRGBAAt(0, 0); got != (color.NRGBA{225, 195, 165, 255}) {
		t.Fatalf("rendered = %v", got)
	}
	if img.Source().NRGBAAt(0, 0).R != 30 {
		t.Fatalf("source modified")
	}
}

func TestCropAndRemoveCrop(t *testing.T) {
	_, _, img, s := newImageScene(t)
	// scene rect covering local pixels 2..6 x 3..8
	if err := s.Crop(vector.R(22, 33, 4, 5)); err != nil {
		t.Fatalf("crop: %v", err)
	}
	if w, h := img.Size(); w != 4 || h != 5 {
		t.Fatalf("cropped size = %dx%d", w, h)
	}
	if off := img.Transform().Offset(); off != (vector.Pt{X: 22, Y: 33}) {
		t.Fatalf("cropped offset = %v", off)
	}
	if err := s.Crop(vector.R(500, 500, 5, 5)); err == nil {
		t.Fatalf("crop outside the image should fail")
	}
	if ok, err := s.RemoveCrop(); !ok || err != nil {
		t.Fatalf("remove crop: %v %v", ok, err)
	}
	if w, _ := img.Size(); w != 10 || img.Transform().Offset() != (vector.Pt{X: 20, Y: 30}) {
		t.Fatalf("uncrop did not restore the original")
	}
	if ok, _ := s.RemoveCrop(); ok {
		t.Fatalf("second remove crop should be a no-op")
	}
}

func TestForgetDropsHistory(t *testing.T) {
	_, h, _, s := newImageScene(t)
	_ = s.Apply(Grayscale, 0)
	if !s.CanUndo() {
		t.Fatalf("expected history")
	}
	s.Forget(h)
	if s.CanUndo() {
		t.Fatalf("history survived Forget")
	}
}

func TestKindRange(t *testing.T) {
	for _, k := range Kinds() {
		lo, hi, ok := k.Range()
		if !ok {
			continue
		}
		if d := k.Default(); d < lo || d > hi {
			t.Errorf("%s: default %v outside %v..%v", k, d, lo, hi)
		}
	}
	if _, _, ok := Grayscale.Range(); ok {
		t.Errorf("grayscale takes no value")
	}
	if lo, hi, _ := Threshold.Range(); lo != 0 || hi != 1 {
		t.Errorf("threshold range %v..%v", lo, hi)
	}
}
