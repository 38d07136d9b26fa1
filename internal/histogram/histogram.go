/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package histogram counts tonal distributions of rasters and draws them
// as bar charts.
package histogram

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"

	rast "golang.org/x/image/vector"

	"gopaint/internal/export"
)

// Channel selects one of the counted distributions.
type Channel int

const (
	Luma Channel = iota
	Red
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	}
	return "luma"
}

// ParseChannel accepts the String forms, case-insensitively.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "luma", "l":
		return Luma, nil
	case "red", "r":
		return Red, nil
	case "green", "g":
		return Green, nil
	case "blue", "b":
		return Blue, nil
	}
	return Luma, fmt.Errorf("unknown channel %q", s)
}

// Histogram holds 256-bin counts per channel.
type Histogram struct {
	Luma  [256]int
	R     [256]int
	G     [256]int
	B     [256]int
	Total int
}

// luma uses the Rec. 601 weights.
func luma(r, g, b uint8) uint8 {
	v := math.Round(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// Compute counts every pixel of img. A nil image gives an empty histogram.
func Compute(img image.Image) *Histogram {
	h := &Histogram{}
	if img == nil {
		return h
	}
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := n.Pix[n.PixOffset(b.Min.X, y):n.PixOffset(b.Max.X, y)]
			for i := 0; i+3 < len(row); i += 4 {
				h.add(row[i], row[i+1], row[i+2])
			}
		}
		return h
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			h.add(c.R, c.G, c.B)
		}
	}
	return h
}

func (h *Histogram) add(r, g, b uint8) {
	h.R[r]++
	h.G[g]++
	h.B[b]++
	h.Luma[luma(r, g, b)]++
	h.Total++
}

// FromScene rasterizes sc and counts the result.
func FromScene(sc export.Scene) *Histogram { return Compute(export.Rasterize(sc)) }

// Bins returns the counts of channel c.
func (h *Histogram) Bins(c Channel) [256]int {
	switch c {
	case Red:
		return h.R
	case Green:
		return h.G
	case Blue:
		return h.B
	}
	return h.Luma
}

// Max is the largest bin of channel c.
func (h *Histogram) Max(c Channel) int {
	m := 0
	for _, v := range h.Bins(c) {
		if v > m {
			m = v
		}
	}
	return m
}

// Mean is the average level of channel c, or 0 for an empty histogram.
func (h *Histogram) Mean(c Channel) float64 {
	if h.Total == 0 {
		return 0
	}
	sum := 0
	for level, n := range h.Bins(c) {
		sum += level * n
	}
	return float64(sum) / float64(h.Total)
}

// Chart draws channel c as 256 bars scaled to the tallest bin on a white
// background.
func (h *Histogram) Chart(c Channel, width, height int) *image.NRGBA {
	if width <= 0 {
		width = 256
	}
	if height <= 0 {
		height = 100
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	peak := h.Max(c)
	if peak == 0 {
		return dst
	}
	r := rast.NewRasterizer(width, height)
	bw := float32(width) / 256
	for level, n := range h.Bins(c) {
		if n == 0 {
			continue
		}
		x0 := float32(level) * bw
		top := float32(height) * (1 - float32(n)/float32(peak))
		r.MoveTo(x0, float32(height))
		r.LineTo(x0+bw, float32(height))
		r.LineTo(x0+bw, top)
		r.LineTo(x0, top)
		r.ClosePath()
	}
	r.Draw(dst, dst.Bounds(), image.NewUniform(barColor(c)), image.Point{})
	return dst
}

func barColor(c Channel) color.NRGBA {
	switch c {
	case Red:
		return color.NRGBA{R: 220, G: 40, B: 40, A: 255}
	case Green:
		return color.NRGBA{R: 40, G: 160, B: 60, A: 255}
	case Blue:
		return color.NRGBA{R: 40, G: 80, B: 220, A: 255}
	}
	return color.NRGBA{R: 60, G: 60, B: 60, A: 255}
}

// WriteChart encodes Chart as PNG.
func (h *Histogram) WriteChart(w io.Writer, c Channel, width, height int) error {
	if err := png.Encode(w, h.Chart(c, width, height)); err != nil {
		return fmt.Errorf("encode histogram chart: %w", err)
	}
	return nil
}

// Format renders channel c as text, one "level count" line per non-empty bin.
func (h *Histogram) Format(w io.Writer, c Channel) error {
	for level, n := range h.Bins(c) {
		if n == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%3d %d\n", level, n); err != nil {
			return err
		}
	}
	return nil
}
