/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package filter implements the raster filters applied to image shapes and
// the service that manages an image's filter chain, crop and undo.
package filter

import (
	"fmt"
	"image"
	"math"
	"strings"

	"gopaint/internal/vector"
)

// Kind names a filter.
type Kind string

const (
	Grayscale  Kind = "grayscale"
	Brightness Kind = "brightness"
	Contrast   Kind = "contrast"
	Threshold  Kind = "threshold"
	Sharpen    Kind = "sharpen"
	Blur       Kind = "blur"
	Invert     Kind = "invert"
)

// Kinds lists the filters in menu order.
func Kinds() []Kind {
	return []Kind{Grayscale, Brightness, Contrast, Threshold, Sharpen, Blur, Invert}
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Default is the value used when the caller gives none.
func (k Kind) Default() float64 {
	switch k {
	case Brightness, Contrast:
		return 0.1
	case Threshold:
		return 0.5
	case Sharpen:
		return 1
	default:
		return 0
	}
}

// Range reports the accepted value range of k. ok is false for filters
// that take no value.
func (k Kind) Range() (lo, hi float64, ok bool) {
	switch k {
	case Brightness, Contrast:
		return -1, 1, true
	case Threshold:
		return 0, 1, true
	case Sharpen:
		return 0.1, 5, true
	default:
		return 0, 0, false
	}
}

// convolution filters occupy one slot: applying one replaces the other.
func (k Kind) convolution() bool { return k == Sharpen || k == Blur }

// New builds a filter. Brightness and contrast take -1..1, threshold 0..1;
// out-of-range values are clamped.
func New(k Kind, value float64) (vector.ImageFilter, error) {
	switch k {
	case Grayscale:
		return grayscale{}, nil
	case Invert:
		return invert{}, nil
	case Brightness:
		return brightness{v: clampF(value, -1, 1)}, nil
	case Contrast:
		return contrast{v: clampF(value, -1, 1)}, nil
	case Threshold:
		return threshold{v: clampF(value, 0, 1)}, nil
	case Sharpen:
		v := value
		if v <= 0 {
			v = Sharpen.Default()
		}
		return convolve{kind: Sharpen, v: v, kernel: [9]float64{0, -v, 0, -v, 1 + 4*v, -v, 0, -v, 0}}, nil
	case Blur:
		return convolve{kind: Blur, kernel: [9]float64{1.0 / 16, 2.0 / 16, 1.0 / 16, 2.0 / 16, 4.0 / 16, 2.0 / 16, 1.0 / 16, 2.0 / 16, 1.0 / 16}}, nil
	default:
		return nil, fmt.Errorf("unknown filter %q", k)
	}
}

func clampF(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// pointwise maps every pixel's color channels, leaving alpha alone.
func pointwise(src *image.NRGBA, fn func(r, g, b uint8) (uint8, uint8, uint8)) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = fn(dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2])
	}
	return dst
}

type grayscale struct{}

func (grayscale) Name() string    { return string(Grayscale) }
func (grayscale) Amount() float64 { return 0 }
func (grayscale) Apply(src *image.NRGBA) *image.NRGBA {
	return pointwise(src, func(r, g, b uint8) (uint8, uint8, uint8) {
		avg := uint8((int(r) + int(g) + int(b)) / 3)
		return avg, avg, avg
	})
}

type invert struct{}

func (invert) Name() string    { return string(Invert) }
func (invert) Amount() float64 { return 0 }
func (invert) Apply(src *image.NRGBA) *image.NRGBA {
	return pointwise(src, func(r, g, b uint8) (uint8, uint8, uint8) { return 255 - r, 255 - g, 255 - b })
}

type brightness struct{ v float64 }

func (f brightness) Name() string    { return string(Brightness) }
func (f brightness) Amount() float64 { return f.v }
func (f brightness) Apply(src *image.NRGBA) *image.NRGBA {
	adj := math.Round(f.v * 255)
	return pointwise(src, func(r, g, b uint8) (uint8, uint8, uint8) {
		return clamp8(float64(r) + adj), clamp8(float64(g) + adj), clamp8(float64(b) + adj)
	})
}

type contrast struct{ v float64 }

func (f contrast) Name() string    { return string(Contrast) }
func (f contrast) Amount() float64 { return f.v }
func (f contrast) Apply(src *image.NRGBA) *image.NRGBA {
	c := math.Floor(f.v * 255)
	k := 259 * (c + 255) / (255 * (259 - c))
	adj := func(v uint8) uint8 { return clamp8(k*(float64(v)-128) + 128) }
	return pointwise(src, func(r, g, b uint8) (uint8, uint8, uint8) { return adj(r), adj(g), adj(b) })
}

type threshold struct{ v float64 }

func (f threshold) Name() string    { return string(Threshold) }
func (f threshold) Amount() float64 { return f.v }
func (f threshold) Apply(src *image.NRGBA) *image.NRGBA {
	limit := f.v * 255
	return pointwise(src, func(r, g, b uint8) (uint8, uint8, uint8) {
		if (float64(r)+float64(g)+float64(b))/3 < limit {
			return 0, 0, 0
		}
		return 255, 255, 255
	})
}

// convolve applies a 3x3 kernel with clamped edges.
type convolve struct {
	kind   Kind
	v      float64
	kernel [9]float64
}

func (f convolve) Name() string    { return string(f.kind) }
func (f convolve) Amount() float64 { return f.v }
func (f convolve) Apply(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	w, h := b.Dx(), b.Dy()
	at := func(x, y int) int {
		x = min(max(x, 0), w-1)
		y = min(max(y, 0), h-1)
		return y*src.Stride + x*4
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, bl float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					k := f.kernel[(ky+1)*3+kx+1]
					if k == 0 {
						continue
					}
					i := at(x+kx, y+ky)
					r += k * float64(src.Pix[i])
					g += k * float64(src.Pix[i+1])
					bl += k * float64(src.Pix[i+2])
				}
			}
			o := y*dst.Stride + x*4
			dst.Pix[o] = clamp8(r)
			dst.Pix[o+1] = clamp8(g)
			dst.Pix[o+2] = clamp8(bl)
			dst.Pix[o+3] = src.Pix[at(x, y)+3]
		}
	}
	return dst
}
