/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"gopaint/internal/export"
	"gopaint/internal/filter"
	"gopaint/internal/scene"
	"gopaint/internal/vector"
)

func newFilterCmd(_ *cliApp) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "filter <image> <kind> [value] -o out.(png|svg|pdf)",
		Short: "Apply a filter to an image file",
		Long: `Kinds: grayscale, brightness, contrast, threshold, sharpen, blur, invert.
Brightness and contrast take -1..1, threshold 0..1 and sharpen a positive
strength; without a value the filter's default is used.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := filter.ParseKind(args[1])
			if err != nil {
				return err
			}
			value := kind.Default()
			if len(args) == 3 {
				if value, err = strconv.ParseFloat(args[2], 64); err != nil {
					return fmt.Errorf("filter value %q: %w", args[2], err)
				}
			}
			if err := filterImage(args[0], out, kind, value); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file; the extension picks the format")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// filterImage places the image on a scene of its own size and exports it
// with the filter in its chain.
func filterImage(in, out string, kind filter.Kind, value float64) error {
	if _, err := export.FormatOf(out); err != nil {
		return err
	}
	n, err := export.Load(in, vector.Pt{})
	if err != nil {
		return err
	}
	f, err := filter.New(kind, value)
	if err != nil {
		return err
	}
	n.SetFilters([]vector.ImageFilter{f})
	w, h := n.Size()
	sc := scene.NewCanvas(w, h)
	sc.SetBackground(vector.Transparent)
	sc.Add(n)
	_, err = export.SaveAs(out, sc, export.PDFOptions{Title: filepath.Base(in)})
	return err
}

// createOutput creates path and its parent directories.
func createOutput(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	return os.Create(path)
}
