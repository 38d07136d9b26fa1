/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package histogram

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"gopaint/internal/scene"
	"gopaint/internal/vector"
)

func TestComputeCountsChannels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	h := Compute(img)
	if h.Total != 4 {
		t.Fatalf("total = %d", h.Total)
	}
	if h.R[255] != 2 || h.R[0] != 2 || h.G[255] != 2 || h.B[255] != 2 {
		t.Fatalf("channel bins wrong: r255=%d g255=%d b255=%d", h.R[255], h.G[255], h.B[255])
	}
	// 0.299*255, 0.587*255, 0.114*255
	for _, level := range []int{76, 150, 29, 255} {
		if h.Luma[level] != 1 {
			t.Errorf("luma[%d] = %d", level, h.Luma[level])
		}
	}
	if h.Max(Red) != 2 {
		t.Errorf("max red = %d", h.Max(Red))
	}
	if got := h.Mean(Red); got != 127.5 {
		t.Errorf("mean red = %v", got)
	}
}

func TestComputeGenericImage(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 1))
	g.SetGray(0, 0, color.Gray{Y: 10})
	h := Compute(g)
	if h.Luma[10] != 1 || h.Luma[0] != 2 || h.Total != 3 {
		t.Fatalf("gray histogram: l10=%d l0=%d total=%d", h.Luma[10], h.Luma[0], h.Total)
	}
	if Compute(nil).Total != 0 || Compute(nil).Mean(Luma) != 0 {
		t.Fatalf("nil image should be empty")
	}
}

func TestFromSceneSeesShapes(t *testing.T) {
	c := scene.NewCanvas(10, 10)
	c.Add(vector.NewRect(vector.R(0, 0, 10, 5), vector.SolidFill(vector.Black), vector.Stroke{}))
	h := FromScene(c)
	if h.Luma[0] != 50 || h.Luma[255] != 50 {
		t.Fatalf("black/white split = %d/%d", h.Luma[0], h.Luma[255])
	}
}

func TestChartBarsScaleToPeak(t *testing.T) {
	var h Histogram
	h.Luma[0] = 10
	h.Luma[255] = 5
	h.Total = 15
	img := h.Chart(Luma, 256, 100)
	if c := img.NRGBAAt(0, 1); c.R != 60 {
		t.Errorf("peak bar should reach the top: %v", c)
	}
	if c := img.NRGBAAt(255, 20); c.R != 255 {
		t.Errorf("half bar too tall: %v", c)
	}
	if c := img.NRGBAAt(255, 80); c.R != 60 {
		t.Errorf("half bar missing: %v", c)
	}
	if c := img.NRGBAAt(128, 99); c.R != 255 {
		t.Errorf("empty bin painted: %v", c)
	}
	var buf bytes.Buffer
	if err := h.WriteChart(&buf, Luma, 0, 0); err != nil || buf.Len() == 0 {
		t.Fatalf("write chart: %v", err)
	}
}

func TestParseChannelAndFormat(t *testing.T) {
	for _, c := range []Channel{Luma, Red, Green, Blue} {
		got, err := ParseChannel(strings.ToUpper(c.String()))
		if err != nil || got != c {
			t.Fatalf("ParseChannel(%s) = %v, %v", c, got, err)
		}
	}
	if _, err := ParseChannel("alpha"); err == nil {
		t.Fatalf("alpha accepted")
	}
	var h Histogram
	h.B[7] = 3
	var buf bytes.Buffer
	_ = h.Format(&buf, Blue)
	if buf.String() != "  7 3\n" {
		t.Fatalf("format = %q", buf.String())
	}
}
