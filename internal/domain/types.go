/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany..
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// This file defines the document model for gopaint drawings. It is what
// gets written to .gopaint.json and sent to the drawings service; the live
// scene graph lives in internal/vector.

// FormatVersion is bumped on incompatible document changes.
const FormatVersion = 1

// Drawing is one saved canvas.
type Drawing struct {
	Version    int       `json:"version"`
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Created    time.Time `json:"created"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Background Color     `json:"background"`
	Shapes     []Shape   `json:"shapes"`
}

// NewDrawing returns an empty white drawing with a fresh ID.
func NewDrawing(title string, width, height int) Drawing {
	return Drawing{
		Version:    FormatVersion,
		ID:         uuid.NewString(),
		Title:      title,
		Created:    time.Now().UTC().Truncate(time.Second),
		Width:      width,
		Height:     height,
		Background: Color{R: 255, G: 255, B: 255, A: 255},
		Shapes:     []Shape{},
	}
}

// Validate checks the invariants the codec relies on.
func (d Drawing) Validate() error {
	if _, err := uuid.Parse(d.ID); err != nil {
		return fmt.Errorf("drawing id %q: %w", d.ID, err)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("drawing size %dx%d must be positive", d.Width, d.Height)
	}
	for i, s := range d.Shapes {
		if err := s.validate(); err != nil {
			return fmt.Errorf("shape %d: %w", i, err)
		}
	}
	return nil
}

// Shape kinds.
const (
	KindRect    = "rect"
	KindEllipse = "ellipse"
	KindLine    = "line"
	KindPolygon = "polygon"
	KindPath    = "path"
	KindText    = "text"
	KindImage   = "image"
	KindGroup   = "group"
)

// Shape is the serialized form of one scene node. Only the fields of its
// kind are set.
type Shape struct {
	Kind       string     `json:"kind"`
	Transform  [6]float32 `json:"transform"`
	Fill       *Fill      `json:"fill,omitempty"`
	Stroke     *Stroke    `json:"stroke,omitempty"`
	Selectable bool       `json:"selectable"`

	Rect   *Rect     `json:"rect,omitempty"`
	Points []Point   `json:"points,omitempty"`
	Path   []PathCmd `json:"path,omitempty"`

	Text       string  `json:"text,omitempty"`
	FontSize   float32 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`

	Image *Image `json:"image,omitempty"`

	Children []Shape `json:"children,omitempty"`
}

func (s Shape) validate() error {
	switch s.Kind {
	case KindRect, KindEllipse:
		if s.Rect == nil {
			return fmt.Errorf("%s without rect", s.Kind)
		}
	case KindLine:
		if len(s.Points) != 2 {
			return fmt.Errorf("line needs 2 points, has %d", len(s.Points))
		}
	case KindPolygon:
		if len(s.Points) < 3 {
			return fmt.Errorf("polygon needs 3 points, has %d", len(s.Points))
		}
	case KindPath:
		if len(s.Path) == 0 {
			return fmt.Errorf("empty path")
		}
	case KindText:
	case KindImage:
		if s.Image == nil || len(s.Image.PNG) == 0 {
			return fmt.Errorf("image without data")
		}
	case KindGroup:
		for i, c := range s.Children {
			if err := c.validate(); err != nil {
				return fmt.Errorf("child %d: %w", i, err)
			}
		}
	default:
		return fmt.Errorf("unknown kind %q", s.Kind)
	}
	return nil
}

// Image payload. Filters are stored as specs and re-applied on load.
// Original is the uncropped source of a cropped image, with the transform
// it had before the crop.
type Image struct {
	PNG               []byte      `json:"png"`
	Filters           []Filter    `json:"filters,omitempty"`
	Original          []byte      `json:"original,omitempty"`
	OriginalTransform *[6]float32 `json:"originalTransform,omitempty"`
}

type Filter struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value,omitempty"`
}

type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

type Rect struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// PathCmd is one path command: M, L, Q, C or Z with its coordinates.
type PathCmd struct {
	Op   string    `json:"op"`
	Args []float32 `json:"args,omitempty"`
}

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

type Fill struct {
	Color   Color `json:"color"`
	EvenOdd bool  `json:"evenOdd,omitempty"`
}

type Stroke struct {
	Color Color   `json:"color"`
	Width float32 `json:"width"`
	Cap   string  `json:"cap,omitempty"`  // butt, round, square
	Join  string  `json:"join,omitempty"` // miter, round, bevel
}

// SafeFileName turns a title into a file stem.
func SafeFileName(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "untitled"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
