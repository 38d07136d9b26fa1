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

	"github.com/spf13/cobra"

	"gopaint/internal/export"
	"gopaint/internal/histogram"
	"gopaint/internal/vector"
)

func newHistogramCmd(_ *cliApp) *cobra.Command {
	var channel, chart string
	var width, height int
	cmd := &cobra.Command{
		Use:   "histogram <image|drawing>",
		Short: "Print the histogram of an image or rendered drawing",
		Long: `Prints one "level count" line per non-empty bin of the chosen channel,
followed by mean and peak. With --chart the bar chart is written as PNG instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := histogram.ParseChannel(channel)
			if err != nil {
				return err
			}
			h, err := histogramOf(args[0])
			if err != nil {
				return err
			}
			if chart != "" {
				f, err := createOutput(chart)
				if err != nil {
					return err
				}
				if err := h.WriteChart(f, ch, width, height); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Wrote", chart)
				return nil
			}
			out := cmd.OutOrStdout()
			if err := h.Format(out, ch); err != nil {
				return err
			}
			fmt.Fprintf(out, "mean %.2f peak %d\n", h.Mean(ch), h.Max(ch))
			return nil
		},
	}
	cmd.Flags().StringVarP(&channel, "channel", "c", "luma", "channel: luma, red, green or blue")
	cmd.Flags().StringVar(&chart, "chart", "", "write the chart as PNG to this file")
	cmd.Flags().IntVar(&width, "width", 512, "chart width")
	cmd.Flags().IntVar(&height, "height", 200, "chart height")
	return cmd
}

// histogramOf renders a drawing or decodes an image file.
func histogramOf(path string) (*histogram.Histogram, error) {
	if isDocument(path) {
		_, sc, err := openDocument(path)
		if err != nil {
			return nil, err
		}
		return histogram.FromScene(sc), nil
	}
	n, err := export.Load(path, vector.Pt{})
	if err != nil {
		return nil, err
	}
	return histogram.Compute(n.Rendered()), nil
}
