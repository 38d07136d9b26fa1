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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"golang.design/x/clipboard"

	"gopaint/internal/backend"
	"gopaint/internal/config"
	"gopaint/internal/crash"
	"gopaint/internal/filter"
	applog "gopaint/internal/log"
	"gopaint/internal/storage"
	"gopaint/internal/telemetry"
	"gopaint/internal/textlayout"
	"gopaint/internal/tools"
	"gopaint/internal/vector"
	"gopaint/internal/version"
)

const (
	appID     = "gopaint"
	appTitle  = "GoPaint"
	pushTTL   = 30 * 24 * time.Hour
	pushLimit = 30 * time.Second
)

// editor is the main window around a workspace.
type editor struct {
	*workspace
	app    fyne.App
	win    fyne.Window
	canvas *DrawingCanvas
	status *widget.Label
	zoom   *widget.Label
	toolRG *widget.RadioGroup
	recent *fyne.MenuItem
	token  string
}

// Run starts the desktop UI and opens docPath when it is given.
func Run(docPath string) error {
	cfg, token, err := config.Load()
	if err != nil {
		cfg = config.Defaults()
	}
	applog.Init(cfg.Logging.Options())
	telemetry.NewDefault(cfg.General.Telemetry())
	l := applog.WithComponent("ui")
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
	}
	l.Info("starting UI", slog.String("version", version.String()))

	e := &editor{workspace: newWorkspace(cfg, openCatalog(cfg, l)), token: token}
	defer e.close()
	defer crash.Recover(e.snapshot)

	e.app = app.NewWithID(appID)
	e.win = e.app.NewWindow(appTitle)
	prefs := e.app.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	e.win.Resize(fyne.NewSize(float32(winW), float32(winH)))

	e.status = widget.NewLabel("Ready")
	e.zoom = widget.NewLabel("")
	e.canvas = NewDrawingCanvas(e.sc, e.tools)
	e.canvas.OnViewChanged = e.updateStatus
	e.canvas.OnError = e.fail

	bottom := container.NewHBox(
		e.status,
		layout.NewSpacer(),
		widget.NewButtonWithIcon("", theme.ZoomOutIcon(), func() { e.canvas.ZoomBy(1 / 1.25) }),
		e.zoom,
		widget.NewButtonWithIcon("", theme.ZoomInIcon(), func() { e.canvas.ZoomBy(1.25) }),
		widget.NewButtonWithIcon("Reset", theme.ZoomFitIcon(), e.canvas.ResetZoom),
	)
	e.win.SetContent(container.NewBorder(nil, bottom, e.toolbar(), nil, e.canvas))
	e.win.SetMainMenu(e.mainMenu())

	e.win.SetCloseIntercept(func() {
		sz := e.win.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		e.win.Close()
	})

	if docPath != "" {
		e.openPath(docPath)
	}
	e.updateStatus()
	e.win.ShowAndRun()
	return nil
}

// openCatalog checks, repairs and opens the catalog. The editor works
// without one.
func openCatalog(cfg config.AppConfig, l *slog.Logger) *storage.Catalog {
	path, err := cfg.CatalogPath()
	if err != nil {
		l.Warn("no catalog path", slog.Any("err", err))
		return nil
	}
	rebuilt, err := storage.DetectAndRebuild(context.Background(), path, cfg.General.Documents())
	if err != nil {
		l.Warn("catalog check failed", slog.String("path", path), slog.Any("err", err))
	} else if rebuilt {
		l.Warn("catalog was corrupt and has been rebuilt", slog.String("path", path))
	}
	cat, err := storage.OpenCatalog(path)
	if err != nil {
		l.Warn("catalog unavailable", slog.String("path", path), slog.Any("err", err))
		return nil
	}
	return cat
}

// fail logs, counts and shows an error.
func (e *editor) fail(op string, err error) {
	if err == nil {
		return
	}
	e.log.Error(op+" failed", slog.Any("err", err))
	telemetry.Failed(op)
	var pe *crash.PanicError
	if errors.As(err, &pe) {
		e.status.SetText("Internal error during " + op)
	}
	dialog.ShowError(err, e.win)
}

func (e *editor) guard(op string, fn func()) {
	e.fail(op, crash.Guard(op, fn))
}

func (e *editor) updateStatus() {
	e.zoom.SetText(fmt.Sprintf("%d%%", e.sc.View().Percent()))
	k := e.tools.Kind().String()
	e.status.SetText("Tool: " + k)
	if e.toolRG != nil && e.toolRG.Selected != k {
		e.toolRG.SetSelected(k)
	}
	e.win.SetTitle(appTitle + " - " + e.title())
}

func (e *editor) activate(k tools.Kind) {
	if k == e.tools.Kind() {
		return
	}
	e.guard("activate tool", func() { e.tools.Activate(k) })
	telemetry.ToolActivated(k.String())
	e.updateStatus()
}

// setOptions edits a copy of the current options and hands it to the
// tool manager.
func (e *editor) setOptions(edit func(*tools.Options)) {
	o := e.tools.Options()
	edit(&o)
	e.tools.SetOptions(o)
}

func toVector(c color.Color) vector.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return vector.Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// colorButton opens a color picker and keeps a swatch of the chosen color.
func (e *editor) colorButton(label string, get func(tools.Options) vector.Color, set func(*tools.Options, vector.Color)) fyne.CanvasObject {
	swatch := canvas.NewRectangle(get(e.tools.Options()).NRGBA())
	swatch.SetMinSize(fyne.NewSize(20, 20))
	swatch.StrokeColor = color.Gray{Y: 0x80}
	swatch.StrokeWidth = 1
	btn := widget.NewButton(label, func() {
		cp := dialog.NewColorPicker(label, "Pick a color", func(c color.Color) {
			v := toVector(c)
			e.setOptions(func(o *tools.Options) { set(o, v) })
			swatch.FillColor = v.NRGBA()
			swatch.Refresh()
		}, e.win)
		cp.Advanced = true
		cp.SetColor(get(e.tools.Options()).NRGBA())
		cp.Show()
	})
	return container.NewBorder(nil, nil, nil, swatch, btn)
}

func (e *editor) toolbar() fyne.CanvasObject {
	opts := e.tools.Options()

	names := make([]string, 0, len(tools.Kinds()))
	for _, k := range tools.Kinds() {
		names = append(names, k.String())
	}
	e.toolRG = widget.NewRadioGroup(names, func(s string) {
		if k, err := tools.ParseKind(s); err == nil {
			e.activate(k)
		}
	})
	e.toolRG.SetSelected(e.tools.Kind().String())

	stroke := e.colorButton("Stroke",
		func(o tools.Options) vector.Color { return o.StrokeColor },
		func(o *tools.Options, c vector.Color) { o.StrokeColor = c })
	fill := e.colorButton("Fill",
		func(o tools.Options) vector.Color { return o.FillColor },
		func(o *tools.Options, c vector.Color) { o.FillColor = c })
	noFill := widget.NewButton("No Fill", func() {
		e.setOptions(func(o *tools.Options) { o.FillColor = vector.Transparent })
	})

	width := widget.NewSlider(1, 50)
	width.Step = 1
	width.Value = float64(opts.StrokeWidth)
	width.OnChangeEnded = func(v float64) { e.setOptions(func(o *tools.Options) { o.StrokeWidth = float32(v) }) }
	brush := widget.NewSlider(1, 100)
	brush.Step = 1
	brush.Value = float64(opts.BrushWidth)
	brush.OnChangeEnded = func(v float64) { e.setOptions(func(o *tools.Options) { o.BrushWidth = float32(v) }) }

	sizes := []string{"12", "16", "20", "28", "36", "48", "72"}
	fontSize := widget.NewSelect(sizes, func(s string) {
		if v, err := strconv.ParseFloat(s, 32); err == nil {
			e.setOptions(func(o *tools.Options) { o.FontSize = float32(v) })
		}
	})
	fontSize.PlaceHolder = strconv.Itoa(int(opts.FontSize))
	family := widget.NewSelect(textlayout.Default().Families(), func(s string) {
		e.setOptions(func(o *tools.Options) { o.FontFamily = s })
	})
	family.PlaceHolder = opts.FontFamily
	unit := widget.NewSelect([]string{"px", "mm", "cm", "in"}, func(s string) {
		if u, err := tools.ParseUnit(s); err == nil {
			e.setOptions(func(o *tools.Options) { o.Unit = u })
		}
	})
	unit.PlaceHolder = string(opts.Unit)
	measure := widget.NewEntry()
	measure.SetText(strconv.FormatFloat(float64(opts.MeasureLength), 'f', -1, 32))
	measure.Validator = func(s string) error {
		_, err := parseMeasureLength(s)
		return err
	}
	measure.OnChanged = func(s string) {
		if v, err := parseMeasureLength(s); err == nil {
			e.setOptions(func(o *tools.Options) { o.MeasureLength = v })
		}
	}

	clearBtn := widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), func() {
		e.guard("clear", e.tools.Clear)
	})
	importBtn := widget.NewButtonWithIcon("Import…", theme.FolderOpenIcon(), e.importDialog)
	exportBtns := container.NewGridWithColumns(3,
		widget.NewButton("PNG", func() { e.exportDialog("png") }),
		widget.NewButton("SVG", func() { e.exportDialog("svg") }),
		widget.NewButton("PDF", func() { e.exportDialog("pdf") }),
	)

	return container.NewVScroll(container.NewVBox(
		widget.NewLabelWithStyle("Tools", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		e.toolRG,
		widget.NewSeparator(),
		stroke, fill, noFill,
		widget.NewLabel("Stroke width"), width,
		widget.NewLabel("Brush width"), brush,
		widget.NewForm(
			widget.NewFormItem("Size", fontSize),
			widget.NewFormItem("Font", family),
			widget.NewFormItem("Unit", unit),
			widget.NewFormItem("Measure", measure),
		),
		widget.NewSeparator(),
		clearBtn, importBtn,
		widget.NewLabel("Export"), exportBtns,
	))
}

func (e *editor) mainMenu() *fyne.MainMenu {
	ctrl := func(k fyne.KeyName) fyne.Shortcut {
		return &desktop.CustomShortcut{KeyName: k, Modifier: fyne.KeyModifierShortcutDefault}
	}
	ctrlShift := func(k fyne.KeyName) fyne.Shortcut {
		return &desktop.CustomShortcut{KeyName: k, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift}
	}

	newItem := fyne.NewMenuItem("New…", e.newDialog)
	newItem.Shortcut = ctrl(fyne.KeyN)
	openItem := fyne.NewMenuItem("Open…", e.openDialog)
	openItem.Shortcut = ctrl(fyne.KeyO)
	saveItem := fyne.NewMenuItem("Save", e.saveCurrent)
	saveItem.Shortcut = ctrl(fyne.KeyS)
	saveAsItem := fyne.NewMenuItem("Save As…", e.saveAsDialog)
	saveAsItem.Shortcut = ctrlShift(fyne.KeyS)
	e.recent = fyne.NewMenuItem("Open Recent", nil)
	e.recent.ChildMenu = e.recentMenu()
	fileMenu := fyne.NewMenu("File",
		newItem, openItem, e.recent, saveItem, saveAsItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Catalog…", e.catalogDialog),
		fyne.NewMenuItem("Revisions…", e.revisionsDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Image…", e.importDialog),
		fyne.NewMenuItem("Export PNG…", func() { e.exportDialog("png") }),
		fyne.NewMenuItem("Export SVG…", func() { e.exportDialog("svg") }),
		fyne.NewMenuItem("Export PDF…", func() { e.exportDialog("pdf") }),
		fyne.NewMenuItem("Push to Server", e.pushCurrent),
	)

	undoItem := fyne.NewMenuItem("Undo Filter", func() { e.fail("undo filter", e.filters.UndoLast()) })
	undoItem.Shortcut = ctrl(fyne.KeyZ)
	redoItem := fyne.NewMenuItem("Redo Filter", func() { e.fail("redo filter", e.filters.RedoLast()) })
	redoItem.Shortcut = ctrl(fyne.KeyY)
	copyItem := fyne.NewMenuItem("Copy as PNG", e.copyPNG)
	copyItem.Shortcut = ctrlShift(fyne.KeyC)
	pasteItem := fyne.NewMenuItem("Paste Image", e.pasteImageFromClipboard)
	pasteItem.Shortcut = ctrlShift(fyne.KeyV)
	editMenu := fyne.NewMenu("Edit",
		undoItem, redoItem,
		fyne.NewMenuItemSeparator(),
		copyItem, pasteItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Delete Shape", func() { e.tools.DeleteActive() }),
		fyne.NewMenuItem("Edit Vertices", e.editVertices),
		fyne.NewMenuItem("Place Measurement", e.placeMeasurement),
		fyne.NewMenuItem("Clear", func() { e.guard("clear", e.tools.Clear) }),
	)

	arrange := func(op string) func() {
		return func() {
			if !e.arrange(op) {
				e.status.SetText("Nothing to move")
			}
		}
	}
	arrangeMenu := fyne.NewMenu("Arrange",
		fyne.NewMenuItem("Bring Forward", arrange("up")),
		fyne.NewMenuItem("Send Backward", arrange("down")),
		fyne.NewMenuItem("Bring to Front", arrange("front")),
		fyne.NewMenuItem("Send to Back", arrange("back")),
	)

	var filterItems []*fyne.MenuItem
	for _, k := range filter.Kinds() {
		filterItems = append(filterItems, fyne.NewMenuItem(strings.ToUpper(string(k[:1]))+string(k[1:]), func() { e.applyFilter(k) }))
	}
	filterItems = append(filterItems,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Active Filters…", e.activeFiltersDialog),
		fyne.NewMenuItem("Crop…", e.cropDialog),
		fyne.NewMenuItem("Remove Crop", func() {
			ok, err := e.filters.RemoveCrop()
			if err != nil {
				e.fail("remove crop", err)
			} else if !ok {
				e.status.SetText("Image is not cropped")
			}
		}),
	)
	filterMenu := fyne.NewMenu("Filters", filterItems...)

	zoomIn := fyne.NewMenuItem("Zoom In", func() { e.canvas.ZoomBy(1.25) })
	zoomIn.Shortcut = ctrl(fyne.KeyEqual)
	zoomOut := fyne.NewMenuItem("Zoom Out", func() { e.canvas.ZoomBy(1 / 1.25) })
	zoomOut.Shortcut = ctrl(fyne.KeyMinus)
	reset := fyne.NewMenuItem("Reset Zoom", e.canvas.ResetZoom)
	reset.Shortcut = ctrl(fyne.Key0)
	viewMenu := fyne.NewMenu("View", zoomIn, zoomOut, reset,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Histogram…", func() { showHistogram(e.app, e.sc) }),
	)

	aboutItem := fyne.NewMenuItem("About GoPaint", func() {
		exe, _ := os.Executable()
		cwd, _ := os.Getwd()
		info := fmt.Sprintf("GoPaint\nVersion: %s\nOS: %s\nArch: %s\nGo: %s\nExecutable: %s\nWorking Dir: %s",
			version.String(), runtime.GOOS, runtime.GOARCH, runtime.Version(), exe, cwd)
		dialog.ShowInformation("Installation Environment", info, e.win)
	})
	helpMenu := fyne.NewMenu("Help", aboutItem)

	return fyne.NewMainMenu(fileMenu, editMenu, arrangeMenu, filterMenu, viewMenu, helpMenu)
}

func (e *editor) newDialog() {
	title := widget.NewEntry()
	title.SetText(untitled)
	width := widget.NewEntry()
	width.SetText(strconv.Itoa(defaultWidth))
	height := widget.NewEntry()
	height.SetText(strconv.Itoa(defaultHeight))
	positive := func(s string) error {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || v <= 0 || v > 10000 {
			return errors.New("enter a size between 1 and 10000")
		}
		return nil
	}
	width.Validator = positive
	height.Validator = positive
	dialog.ShowForm("New Drawing", "Create", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Title", title),
		widget.NewFormItem("Width", width),
		widget.NewFormItem("Height", height),
	}, func(ok bool) {
		if !ok {
			return
		}
		w, _ := strconv.Atoi(strings.TrimSpace(width.Text))
		h, _ := strconv.Atoi(strings.TrimSpace(height.Text))
		if err := e.newDrawing(title.Text, w, h); err != nil {
			e.fail("new drawing", err)
			return
		}
		e.updateStatus()
	}, e.win)
}

// dialogLocation points file dialogs at the documents directory.
func (e *editor) dialogLocation(fd *dialog.FileDialog) {
	dir := e.cfg.General.Documents()
	if e.doc.Path != "" {
		dir = filepath.Dir(e.doc.Path)
	}
	if _, err := os.Stat(dir); err != nil {
		return
	}
	if l, err := fstorage.ListerForURI(fstorage.NewFileURI(dir)); err == nil {
		fd.SetLocation(l)
	}
}

func (e *editor) openDialog() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			e.fail("open", err)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		e.openPath(path)
	}, e.win)
	fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
	e.dialogLocation(fd)
	fd.Show()
}

func (e *editor) openPath(path string) {
	if err := e.open(path); err != nil {
		e.fail("open", err)
		return
	}
	if e.doc.Recovered {
		dialog.ShowInformation("Recovered", "The document was damaged and has been restored from its newest backup. Save to repair it.", e.win)
	}
	addRecent(e.app.Preferences(), path)
	e.refreshRecent()
	e.updateStatus()
}

func (e *editor) saveCurrent() {
	if e.doc.Path == "" {
		e.saveAsDialog()
		return
	}
	if err := e.save(context.Background()); err != nil {
		e.fail("save", err)
		return
	}
	e.status.SetText("Saved " + filepath.Base(e.doc.Path))
}

func (e *editor) saveAsDialog() {
	fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			e.fail("save as", err)
			return
		}
		if wc == nil {
			return
		}
		path := wc.URI().Path()
		_ = wc.Close()
		if err := e.saveAs(context.Background(), path); err != nil {
			e.fail("save as", err)
			return
		}
		addRecent(e.app.Preferences(), e.doc.Path)
		e.refreshRecent()
		e.updateStatus()
		e.status.SetText("Saved " + filepath.Base(e.doc.Path))
	}, e.win)
	fd.SetFileName(filepath.Base(e.defaultPath()))
	e.dialogLocation(fd)
	fd.Show()
}

func (e *editor) importDialog() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			e.fail("import", err)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		if _, err := e.importImage(path); err != nil {
			e.fail("import", err)
			return
		}
		e.status.SetText("Imported " + filepath.Base(path))
	}, e.win)
	fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp", ".svg"}))
	fd.Show()
}

func (e *editor) exportDialog(format string) {
	fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			e.fail("export", err)
			return
		}
		if wc == nil {
			return
		}
		path := wc.URI().Path()
		_ = wc.Close()
		if _, err := e.exportTo(path); err != nil {
			e.fail("export "+format, err)
			return
		}
		dialog.ShowInformation("Export "+strings.ToUpper(format), "Exported to "+path, e.win)
	}, e.win)
	base := strings.TrimSuffix(filepath.Base(e.defaultPath()), storage.Ext)
	fd.SetFileName(base + "." + format)
	fd.SetFilter(fstorage.NewExtensionFileFilter([]string{"." + format}))
	fd.Show()
}

var (
	clipOnce sync.Once
	clipErr  error
)

func clipboardReady() error {
	clipOnce.Do(func() { clipErr = clipboard.Init() })
	return clipErr
}

func (e *editor) copyPNG() {
	if err := clipboardReady(); err != nil {
		e.fail("copy", err)
		return
	}
	data, err := e.png()
	if err != nil {
		e.fail("copy", err)
		return
	}
	clipboard.Write(clipboard.FmtImage, data)
	e.status.SetText("Copied drawing to the clipboard")
}

func (e *editor) pasteImageFromClipboard() {
	if err := clipboardReady(); err != nil {
		e.fail("paste", err)
		return
	}
	if _, err := e.pasteImage(clipboard.Read(clipboard.FmtImage)); err != nil {
		e.fail("paste", err)
	}
}

func (e *editor) editVertices() {
	if e.tools.EditPolygon(e.sc.Active()) == nil {
		e.status.SetText("Select a polygon to edit its vertices")
	}
}

func (e *editor) placeMeasurement() {
	w, h := e.sc.Size()
	e.tools.PlaceMeasurement(vector.Pt{X: float32(w) / 2, Y: float32(h) / 2}, 0)
}

// applyFilter applies k to the active image. Filters with a value get a
// slider; every slider move re-applies and a burst is one undo step.
func (e *editor) applyFilter(k filter.Kind) {
	lo, hi, ok := k.Range()
	if !ok {
		e.fail("filter "+string(k), e.filters.Apply(k, 0))
		return
	}
	if err := e.filters.Apply(k, k.Default()); err != nil {
		e.fail("filter "+string(k), err)
		return
	}
	value := widget.NewLabel(strconv.FormatFloat(k.Default(), 'f', 2, 64))
	slider := widget.NewSlider(lo, hi)
	slider.Step = (hi - lo) / 100
	slider.Value = k.Default()
	slider.OnChanged = func(v float64) {
		value.SetText(strconv.FormatFloat(v, 'f', 2, 64))
		if err := e.filters.Apply(k, v); err != nil {
			e.log.Warn("filter update failed", slog.String("filter", string(k)), slog.Any("err", err))
		}
	}
	d := dialog.NewCustom(string(k), "Done", container.NewBorder(nil, nil, nil, value, slider), e.win)
	d.Resize(fyne.NewSize(360, 120))
	d.Show()
}

func (e *editor) activeFiltersDialog() {
	specs, err := e.filters.Active()
	if err != nil {
		e.fail("filters", err)
		return
	}
	if len(specs) == 0 {
		dialog.ShowInformation("Filters", "The active image has no filters.", e.win)
		return
	}
	box := container.NewVBox()
	for _, s := range specs {
		var row *fyne.Container
		remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
			if _, err := e.filters.Remove(s.Kind); err != nil {
				e.fail("remove filter", err)
				return
			}
			box.Remove(row)
		})
		row = container.NewBorder(nil, nil, nil, remove, widget.NewLabel(fmt.Sprintf("%s  %.2f", s.Kind, s.Value)))
		box.Add(row)
	}
	dialog.ShowCustom("Filters", "Close", box, e.win)
}

func (e *editor) cropDialog() {
	n, ok := e.sc.Node(e.sc.Active())
	if !ok {
		e.fail("crop", errors.New("select an image to crop"))
		return
	}
	b := n.Bounds()
	entries := make([]*widget.Entry, 4)
	items := make([]*widget.FormItem, 4)
	for i, f := range []struct {
		label string
		v     float32
	}{{"X", b.X}, {"Y", b.Y}, {"Width", b.W}, {"Height", b.H}} {
		entries[i] = widget.NewEntry()
		entries[i].SetText(strconv.FormatFloat(float64(f.v), 'f', 0, 32))
		items[i] = widget.NewFormItem(f.label, entries[i])
	}
	dialog.ShowForm("Crop Image", "Crop", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		var v [4]float32
		for i, en := range entries {
			f, err := strconv.ParseFloat(strings.TrimSpace(en.Text), 32)
			if err != nil {
				e.fail("crop", fmt.Errorf("%s: %w", items[i].Text, err))
				return
			}
			v[i] = float32(f)
		}
		e.fail("crop", e.filters.Crop(vector.R(v[0], v[1], v[2], v[3])))
	}, e.win)
}

func (e *editor) catalogDialog() {
	if e.catalog == nil {
		dialog.ShowInformation("Catalog", "The catalog is not available.", e.win)
		return
	}
	ctx := context.Background()
	var results []storage.SearchResult
	var d dialog.Dialog
	list := widget.NewList(
		func() int { return len(results) },
		func() fyne.CanvasObject {
			thumb := canvas.NewImageFromImage(nil)
			thumb.FillMode = canvas.ImageFillContain
			thumb.SetMinSize(fyne.NewSize(48, 48))
			return container.NewBorder(nil, nil, thumb, nil, widget.NewLabel(""))
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i < 0 || int(i) >= len(results) {
				return
			}
			r := results[i]
			c := o.(*fyne.Container)
			txt := fmt.Sprintf("%s  (%s)", r.Title, r.Created.Local().Format("2006-01-02 15:04"))
			if r.Snippet != "" {
				txt += "\n" + r.Snippet
			}
			c.Objects[0].(*widget.Label).SetText(txt)
			thumb := c.Objects[1].(*canvas.Image)
			thumb.Image = nil
			if th, err := e.catalog.Thumbnail(ctx, r.ID); err == nil {
				if img, err := decodeThumb(th.PNG); err == nil {
					thumb.Image = img
				}
			}
			thumb.Refresh()
		},
	)
	query := widget.NewEntry()
	query.SetPlaceHolder("Search titles and text")
	search := func() {
		res, err := e.catalog.Search(ctx, storage.SearchQuery{Text: query.Text, Limit: 200})
		if err != nil {
			e.fail("catalog search", err)
			return
		}
		results = res
		list.UnselectAll()
		list.Refresh()
	}
	query.OnSubmitted = func(string) { search() }
	list.OnSelected = func(id widget.ListItemID) {
		if id < 0 || int(id) >= len(results) {
			return
		}
		path := results[id].File
		d.Hide()
		e.openPath(path)
	}
	rescan := widget.NewButtonWithIcon("Rescan", theme.ViewRefreshIcon(), func() {
		n, err := e.catalog.Rescan(ctx, e.cfg.General.Documents())
		if err != nil {
			e.fail("rescan", err)
			return
		}
		e.status.SetText(fmt.Sprintf("Catalog rescanned, %d drawings", n))
		search()
	})
	top := container.NewBorder(nil, nil, nil, container.NewHBox(widget.NewButtonWithIcon("", theme.SearchIcon(), search), rescan), query)
	d = dialog.NewCustom("Catalog", "Close", container.NewBorder(top, nil, nil, nil, list), e.win)
	d.Resize(fyne.NewSize(600, 480))
	search()
	d.Show()
}

func decodeThumb(b []byte) (image.Image, error) {
	return png.Decode(bytes.NewReader(b))
}

func (e *editor) revisionsDialog() {
	revs, err := e.revisions(context.Background())
	if err != nil {
		e.fail("revisions", err)
		return
	}
	if len(revs) == 0 {
		dialog.ShowInformation("Revisions", "Save the drawing to start its history.", e.win)
		return
	}
	var d dialog.Dialog
	list := widget.NewList(
		func() int { return len(revs) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			r := revs[i]
			o.(*widget.Label).SetText(fmt.Sprintf("%s  %d shapes", r.TS.Local().Format("2006-01-02 15:04:05"), len(r.Drawing.Shapes)))
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		rev := int(id)
		dialog.ShowConfirm("Restore Revision", "Replace the drawing with this revision? Unsaved changes are lost.", func(ok bool) {
			if !ok {
				list.UnselectAll()
				return
			}
			d.Hide()
			if err := e.restore(context.Background(), rev); err != nil {
				e.fail("restore", err)
				return
			}
			e.updateStatus()
			e.status.SetText("Revision restored")
		}, e.win)
	}
	d = dialog.NewCustom("Revisions", "Close", list, e.win)
	d.Resize(fyne.NewSize(420, 360))
	d.Show()
}

// pushCurrent uploads the drawing in the background, fetching a token
// first when the keyring has none.
func (e *editor) pushCurrent() {
	c := backend.NewClientFromConfig(e.cfg, e.token)
	job, err := e.pushJob(c)
	if err != nil {
		e.fail("push", err)
		return
	}
	e.status.SetText("Uploading…")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushLimit)
		defer cancel()
		fresh := ""
		if c.Token == "" {
			tok, _, err := c.RequestToken(ctx, pushSubject(), pushTTL)
			if err != nil {
				fyne.Do(func() { e.fail("push", err) })
				return
			}
			fresh = tok
			if err := config.SaveToken(tok); err != nil {
				e.log.Warn("token not stored in keyring", slog.Any("err", err))
			}
		}
		d, err := job(ctx)
		fyne.Do(func() {
			if fresh != "" {
				e.token = fresh
			}
			if err != nil {
				e.fail("push", err)
				return
			}
			e.status.SetText("Uploaded as " + d.ID)
		})
	}()
}

func pushSubject() string {
	for _, k := range []string{"USER", "USERNAME"} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return appID
}

// Recent documents persistence.
const recentPrefsKey = "recent.drawings"
const recentMax = 10

func loadRecent(p fyne.Preferences) []string {
	var items []string
	if raw := p.StringWithFallback(recentPrefsKey, ""); strings.TrimSpace(raw) != "" {
		_ = json.Unmarshal([]byte(raw), &items)
	}
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, err := os.Stat(s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func addRecent(p fyne.Preferences, path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	out := []string{abs}
	for _, s := range loadRecent(p) {
		if !strings.EqualFold(s, abs) {
			out = append(out, s)
		}
	}
	if len(out) > recentMax {
		out = out[:recentMax]
	}
	b, _ := json.Marshal(out)
	p.SetString(recentPrefsKey, string(b))
}

func (e *editor) recentMenu() *fyne.Menu {
	var items []*fyne.MenuItem
	for _, path := range loadRecent(e.app.Preferences()) {
		items = append(items, fyne.NewMenuItem(filepath.Base(path), func() { e.openPath(path) }))
	}
	if len(items) == 0 {
		none := fyne.NewMenuItem("No recent drawings", nil)
		none.Disabled = true
		items = append(items, none)
	}
	return fyne.NewMenu("", items...)
}

func (e *editor) refreshRecent() {
	if e.recent == nil {
		return
	}
	e.recent.ChildMenu = e.recentMenu()
	if mm := e.win.MainMenu(); mm != nil {
		mm.Refresh()
	}
}
