/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Formats lists the export formats SaveAs understands, by file extension.
var Formats = []string{"png", "svg", "pdf"}

// FormatOf returns the export format for path's extension.
func FormatOf(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, f := range Formats {
		if f == ext {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q", filepath.Ext(path))
}

// SaveAs writes sc to path in the format named by its extension and
// returns that format.
func SaveAs(path string, sc Scene, opt PDFOptions) (string, error) {
	format, err := FormatOf(path)
	if err != nil {
		return "", err
	}
	switch format {
	case "svg":
		err = SaveSVG(path, sc)
	case "pdf":
		err = SavePDF(path, sc, opt)
	default:
		err = SavePNG(path, sc)
	}
	return format, err
}

// WritePNG encodes the rasterized scene to w.
func WritePNG(w io.Writer, sc Scene) error {
	if sc == nil {
		return fmt.Errorf("scene is nil")
	}
	if err := png.Encode(w, Rasterize(sc)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes the scene to path, creating parent directories.
func SavePNG(path string, sc Scene) error {
	return saveFile(path, func(w io.Writer) error { return WritePNG(w, sc) })
}

// saveFile creates path and runs write against it, closing on every path.
func saveFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return nil
}
