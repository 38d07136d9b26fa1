//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"gopaint/internal/histogram"
	"gopaint/internal/scene"
)

const (
	chartW = 512
	chartH = 200
)

// showHistogram opens a window charting the histogram of the rendered scene.
// Refresh recomputes it from the current drawing.
func showHistogram(app fyne.App, sc *scene.Canvas) {
	w := app.NewWindow("Histogram")
	ch := histogram.Luma
	h := histogram.FromScene(sc)

	chart := canvas.NewImageFromImage(h.Chart(ch, chartW, chartH))
	chart.FillMode = canvas.ImageFillContain
	chart.SetMinSize(fyne.NewSize(chartW, chartH))
	stats := widget.NewLabel("")

	redraw := func() {
		chart.Image = h.Chart(ch, chartW, chartH)
		chart.Refresh()
		stats.SetText(fmt.Sprintf("%s  mean %.1f  peak %d", ch, h.Mean(ch), h.Max(ch)))
	}
	names := []string{histogram.Luma.String(), histogram.Red.String(), histogram.Green.String(), histogram.Blue.String()}
	sel := widget.NewSelect(names, func(s string) {
		c, err := histogram.ParseChannel(s)
		if err != nil {
			return
		}
		ch = c
		redraw()
	})
	sel.SetSelected(ch.String())
	refresh := widget.NewButton("Refresh", func() {
		h = histogram.FromScene(sc)
		redraw()
	})
	redraw()

	w.SetContent(container.NewBorder(container.NewHBox(sel, refresh), stats, nil, nil, chart))
	w.Resize(fyne.NewSize(chartW+40, chartH+100))
	w.Show()
}
