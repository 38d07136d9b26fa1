/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"gopaint/internal/vector"
)

// ErrUnsupported is returned for files that are neither a raster image nor SVG.
var ErrUnsupported = errors.New("unsupported image format")

// maxSVGSide bounds the raster size of an SVG without an explicit size.
const maxSVGSide = 4096

// DecodeImage decodes a PNG, JPEG, BMP, TIFF or WebP stream into an image
// node with its top-left corner at at.
func DecodeImage(r io.Reader, at vector.Pt) (*vector.ImageNode, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupported
		}
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return vector.NewImage(img, at), format, nil
}

// DecodeSVG rasterizes an SVG document at width x height pixels. A zero
// size uses the document's viewBox.
func DecodeSVG(r io.Reader, width, height int, at vector.Pt) (*vector.ImageNode, error) {
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	if width <= 0 || height <= 0 {
		width = int(math.Ceil(icon.ViewBox.W))
		height = int(math.Ceil(icon.ViewBox.H))
	}
	if width <= 0 || height <= 0 || width > maxSVGSide || height > maxSVGSide {
		return nil, fmt.Errorf("svg size %dx%d out of range", width, height)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1)
	return vector.NewImage(dst, at), nil
}

// Load reads an image file, dispatching on the extension for SVG.
func Load(path string, at vector.Pt) (*vector.ImageNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return DecodeSVG(bytes.NewReader(data), 0, 0, at)
	}
	n, _, err := DecodeImage(bytes.NewReader(data), at)
	return n, err
}
