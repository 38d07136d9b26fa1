/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopaint/internal/backend"
	"gopaint/internal/config"
	"gopaint/internal/domain"
	"gopaint/internal/export"
	"gopaint/internal/filter"
	applog "gopaint/internal/log"
	"gopaint/internal/scene"
	"gopaint/internal/storage"
	"gopaint/internal/telemetry"
	"gopaint/internal/tools"
	"gopaint/internal/vector"
)

const (
	defaultWidth   = 800
	defaultHeight  = 600
	untitled       = "Untitled"
	filterCoalesce = 300 * time.Millisecond
)

var errNoPath = errors.New("drawing has not been saved yet")

// parseMeasureLength reads a static measurement length in the current unit.
func parseMeasureLength(s string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("measure length %q: want a positive number", s)
	}
	return float32(v), nil
}

// ErrNoUI is returned by Run in binaries built without the desktop UI.
var ErrNoUI = errors.New("desktop UI not compiled in")

// workspace is the document behind the editor window: the scene, its tools
// and filters, and where it is stored. It has no fyne dependency.
type workspace struct {
	cfg     config.AppConfig
	sc      *scene.Canvas
	tools   *tools.Manager
	filters *filter.Service
	catalog *storage.Catalog // nil when the catalog could not be opened
	doc     *storage.DocumentHandle
	log     *slog.Logger
}

func newWorkspace(cfg config.AppConfig, cat *storage.Catalog) *workspace {
	sc := scene.NewCanvas(defaultWidth, defaultHeight)
	sc.SetView(cfg.View.Apply(sc.View()))
	sc.SetSnap(cfg.View.Snap())
	w := &workspace{
		cfg:     cfg,
		sc:      sc,
		tools:   tools.NewManager(sc, cfg.Tools.Options()),
		filters: filter.NewService(sc, filterCoalesce),
		catalog: cat,
		doc:     &storage.DocumentHandle{Drawing: domain.NewDrawing(untitled, defaultWidth, defaultHeight)},
		log:     applog.WithComponent("ui"),
	}
	w.tools.OnShapeRemoved(w.filters.Forget)
	return w
}

// title is shown in the window title bar.
func (w *workspace) title() string {
	t := w.doc.Drawing.Title
	if t == "" {
		t = untitled
	}
	if w.doc.Path != "" {
		t += " (" + filepath.Base(w.doc.Path) + ")"
	}
	return t
}

// load replaces the scene with dh. The current tool restarts on the new
// content; on error the scene is left as it was.
func (w *workspace) load(dh *storage.DocumentHandle) error {
	w.tools.Close()
	defer w.tools.Activate(w.tools.Kind())
	if err := storage.Decode(dh.Drawing, w.sc); err != nil {
		return fmt.Errorf("load %s: %w", dh.Drawing.Title, err)
	}
	w.doc = dh
	return nil
}

// newDrawing starts an empty, unsaved drawing.
func (w *workspace) newDrawing(title string, width, height int) error {
	if strings.TrimSpace(title) == "" {
		title = untitled
	}
	return w.load(&storage.DocumentHandle{Drawing: domain.NewDrawing(title, width, height)})
}

func (w *workspace) open(path string) error {
	dh, err := storage.Open(path)
	if err != nil {
		return err
	}
	if dh.Recovered {
		w.log.Warn("document recovered from backup", slog.String("path", path))
	}
	return w.load(dh)
}

// snapshot encodes the current scene without touching the open document.
func (w *workspace) snapshot() *storage.DocumentHandle {
	d, err := storage.Encode(w.sc, w.doc.Drawing)
	if err != nil {
		w.log.Error("snapshot failed", slog.Any("err", err))
		return nil
	}
	return &storage.DocumentHandle{Path: w.doc.Path, Drawing: d}
}

// save writes the scene to the open document and catalogs it.
func (w *workspace) save(ctx context.Context) error {
	if w.doc.Path == "" {
		return errNoPath
	}
	d, err := storage.Encode(w.sc, w.doc.Drawing)
	if err != nil {
		return err
	}
	w.doc.Drawing = d
	if w.catalog != nil {
		return w.catalog.Record(ctx, w.doc)
	}
	return storage.Save(w.doc)
}

// saveAs moves the document to path, adding the document extension when
// it is missing.
func (w *workspace) saveAs(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return errNoPath
	}
	if !strings.HasSuffix(path, storage.Ext) {
		path += storage.Ext
	}
	old := w.doc.Path
	w.doc.Path = path
	if err := w.save(ctx); err != nil {
		w.doc.Path = old
		return err
	}
	return nil
}

// defaultPath proposes a file for an unsaved drawing.
func (w *workspace) defaultPath() string {
	if w.doc.Path != "" {
		return w.doc.Path
	}
	return storage.DocumentPath(w.cfg.General.Documents(), w.doc.Drawing.Title)
}

// exportTo writes the scene in the format of path's extension.
func (w *workspace) exportTo(path string) (string, error) {
	format, err := export.SaveAs(path, w.sc, export.PDFOptions{Title: w.doc.Drawing.Title})
	telemetry.Exported(format, err)
	if err != nil {
		return format, err
	}
	w.log.Info("exported", slog.String("format", format), slog.String("path", path))
	return format, nil
}

// add places n on the scene and makes it the active shape.
func (w *workspace) add(n vector.Node) scene.Handle {
	h := w.sc.Add(n)
	w.sc.SetActive(h)
	return h
}

func (w *workspace) importImage(path string) (scene.Handle, error) {
	n, err := export.Load(path, vector.Pt{})
	if err != nil {
		return scene.None, err
	}
	return w.add(n), nil
}

// pasteImage adds an encoded image from the clipboard.
func (w *workspace) pasteImage(data []byte) (scene.Handle, error) {
	if len(data) == 0 {
		return scene.None, errors.New("clipboard holds no image")
	}
	n, _, err := export.DecodeImage(bytes.NewReader(data), vector.Pt{})
	if err != nil {
		return scene.None, err
	}
	return w.add(n), nil
}

// png renders the committed scene.
func (w *workspace) png() ([]byte, error) {
	var buf bytes.Buffer
	if err := export.WritePNG(&buf, w.sc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// revisions lists the catalogued states of the open drawing, newest first.
func (w *workspace) revisions(ctx context.Context) ([]storage.Revision, error) {
	if w.catalog == nil {
		return nil, errors.New("catalog unavailable")
	}
	return w.catalog.Revisions(ctx, w.doc.Drawing.ID, 0)
}

// restore rolls the open drawing back to revision rev, 0 being the newest.
func (w *workspace) restore(ctx context.Context, rev int) error {
	if w.catalog == nil {
		return errors.New("catalog unavailable")
	}
	dh, err := w.catalog.Restore(ctx, w.doc.Drawing.ID, rev)
	if err != nil {
		return err
	}
	return w.load(dh)
}

// pushJob renders the drawing now and returns its upload, which may run
// off the UI goroutine.
func (w *workspace) pushJob(c *backend.Client) (func(context.Context) (*backend.Drawing, error), error) {
	data, err := w.png()
	if err != nil {
		return nil, err
	}
	title := w.doc.Drawing.Title
	return func(ctx context.Context) (*backend.Drawing, error) {
		return c.CreateDrawing(ctx, title, data)
	}, nil
}

// arrange reorders the active shape. op is up, down, front or back.
func (w *workspace) arrange(op string) bool {
	h := w.sc.Active()
	if h == scene.None {
		return false
	}
	switch op {
	case "up":
		return w.sc.MoveUp(h)
	case "down":
		return w.sc.MoveDown(h)
	case "front":
		return w.sc.BringToFront(h)
	case "back":
		return w.sc.SendToBack(h)
	}
	return false
}

// close releases the tools and the catalog.
func (w *workspace) close() {
	w.tools.Close()
	if w.catalog != nil {
		if err := w.catalog.Close(); err != nil {
			w.log.Warn("close catalog", slog.Any("err", err))
		}
	}
}
