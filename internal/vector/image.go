/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"image"

	"golang.org/x/image/draw"
)

// ImageFilter is one step of an image's filter chain.
type ImageFilter interface {
	Name() string
	Amount() float64
	Apply(src *image.NRGBA) *image.NRGBA
}

// ImageNode is a raster placed in the scene. Pixels map 1:1 to local units.
// The source is never modified by filters; Rendered applies the chain lazily.
type ImageNode struct {
	baseNode
	src      *image.NRGBA
	filters  []ImageFilter
	rendered *image.NRGBA
	stale    bool

	// pre-crop original, kept until Uncrop
	backup   *image.NRGBA
	backupXf Affine2D
}

// NewImage copies img into an NRGBA buffer and places its top-left corner at at.
func NewImage(img image.Image, at Pt) *ImageNode {
	n := &ImageNode{baseNode: newBase(Fill{}, Stroke{}), src: ToNRGBA(img), stale: true}
	n.xf = Translate(at.X, at.Y)
	return n
}

// ToNRGBA returns img as a zero-origin NRGBA copy.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func (n *ImageNode) Source() *image.NRGBA { return n.src }

func (n *ImageNode) Size() (int, int) { return n.src.Bounds().Dx(), n.src.Bounds().Dy() }

// Filters returns a copy of the chain in application order.
func (n *ImageNode) Filters() []ImageFilter { return append([]ImageFilter(nil), n.filters...) }

// SetFilters replaces the chain and invalidates the rendered raster.
func (n *ImageNode) SetFilters(fs []ImageFilter) {
	n.filters = append([]ImageFilter(nil), fs...)
	n.stale = true
}

// Rendered returns the source with the filter chain applied.
func (n *ImageNode) Rendered() *image.NRGBA {
	if !n.stale && n.rendered != nil {
		return n.rendered
	}
	out := n.src
	for _, f := range n.filters {
		out = f.Apply(out)
	}
	n.rendered = out
	n.stale = false
	return out
}

// Crop replaces the source with the sub-rectangle r (local pixels) and shifts
// the transform so the kept pixels stay where they were. The first crop
// backs up the original; later crops cut from the current source.
func (n *ImageNode) Crop(r image.Rectangle) bool {
	r = r.Intersect(n.src.Bounds())
	if r.Empty() {
		return false
	}
	if n.backup == nil {
		n.backup = n.src
		n.backupXf = n.xf
	}
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), n.src, r.Min, draw.Src)
	n.src = dst
	n.xf = n.xf.Mul(Translate(float32(r.Min.X), float32(r.Min.Y)))
	n.stale = true
	return true
}

// Cropped reports whether an original is backed up.
func (n *ImageNode) Cropped() bool { return n.backup != nil }

// Original returns the backed-up uncropped source and its transform.
func (n *ImageNode) Original() (*image.NRGBA, Affine2D, bool) {
	return n.backup, n.backupXf, n.backup != nil
}

// SetOriginal installs an uncropped original, as when loading a cropped
// image from a document.
func (n *ImageNode) SetOriginal(img *image.NRGBA, xf Affine2D) {
	n.backup = img
	n.backupXf = xf
}

// Uncrop restores the backed-up original and its placement.
func (n *ImageNode) Uncrop() bool {
	if n.backup == nil {
		return false
	}
	n.src = n.backup
	n.xf = n.backupXf
	n.backup = nil
	n.stale = true
	return true
}

func (n *ImageNode) localRect() Rect {
	w, h := n.Size()
	return Rect{W: float32(w), H: float32(h)}
}

func (n *ImageNode) Bounds() Rect { return n.xf.TransformRect(n.localRect()) }

func (n *ImageNode) Hit(p Pt) bool { return n.localRect().Contains(n.local(p)) }
