/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFamily is used for unknown family names.
const DefaultFamily = "Go"

// FontLibrary maps family names to parsed OpenType fonts and caches faces
// per size. The Go fonts are always available. Safe for concurrent use.
type FontLibrary struct {
	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	family string
	size   float64
}

// NewFontLibrary returns a library preloaded with Go, Go Bold and Go Mono.
func NewFontLibrary() *FontLibrary {
	fl := &FontLibrary{fonts: make(map[string]*opentype.Font), faces: make(map[faceKey]font.Face)}
	for name, data := range map[string][]byte{
		DefaultFamily: goregular.TTF,
		"Go Bold":     gobold.TTF,
		"Go Mono":     gomono.TTF,
	} {
		f, err := opentype.Parse(data)
		if err != nil {
			// the embedded fonts always parse
			panic(fmt.Sprintf("parse %s: %v", name, err))
		}
		fl.fonts[name] = f
	}
	return fl
}

var (
	defaultOnce sync.Once
	defaultLib  *FontLibrary
)

// Default is the shared process-wide library.
func Default() *FontLibrary {
	defaultOnce.Do(func() { defaultLib = NewFontLibrary() })
	return defaultLib
}

// LoadTTF loads a font file under family, replacing an existing entry.
func (fl *FontLibrary) LoadTTF(family, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.fonts[family] = f
	for k := range fl.faces {
		if k.family == family {
			delete(fl.faces, k)
		}
	}
	return nil
}

// Families lists the registered family names, sorted.
func (fl *FontLibrary) Families() []string {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	out := make([]string, 0, len(fl.fonts))
	for name := range fl.fonts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Face returns a face for family at size pixels. Unknown families fall
// back to DefaultFamily.
func (fl *FontLibrary) Face(family string, size float64) (font.Face, error) {
	if size <= 0 {
		size = 12
	}
	size = math.Round(size*4) / 4
	fl.mu.Lock()
	defer fl.mu.Unlock()
	f, ok := fl.fonts[family]
	if !ok {
		family = DefaultFamily
		f = fl.fonts[family]
	}
	key := faceKey{family: family, size: size}
	if face, ok := fl.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("face %s %.2f: %w", family, size, err)
	}
	fl.faces[key] = face
	return face, nil
}
