/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopaint/internal/backend"
	"gopaint/internal/config"
	"gopaint/internal/pointer"
	"gopaint/internal/scene"
	"gopaint/internal/storage"
	"gopaint/internal/tools"
	"gopaint/internal/vector"
)

func drawRect(w *workspace, x0, y0, x1, y1 float32) {
	w.tools.Activate(tools.Rectangle)
	g := newGesture(w.tools.Pointer)
	g.press(x0, y0, pointer.Primary)
	g.move(x1, y1)
	g.release(x1, y1)
}

func TestWorkspaceSaveAsAndOpen(t *testing.T) {
	dir := t.TempDir()
	w := newWorkspace(config.Defaults(), nil)
	drawRect(w, 10, 10, 60, 40)
	if w.sc.Len() != 1 {
		t.Fatalf("expected one shape, got %d", w.sc.Len())
	}
	if err := w.save(context.Background()); !errors.Is(err, errNoPath) {
		t.Fatalf("unsaved drawing should need a path, got %v", err)
	}
	path := filepath.Join(dir, "box")
	if err := w.saveAs(context.Background(), path); err != nil {
		t.Fatalf("save as: %v", err)
	}
	if w.doc.Path != path+storage.Ext || !strings.Contains(w.title(), "box"+storage.Ext) {
		t.Fatalf("path %q title %q", w.doc.Path, w.title())
	}

	other := newWorkspace(config.Defaults(), nil)
	if err := other.open(w.doc.Path); err != nil {
		t.Fatalf("open: %v", err)
	}
	if other.sc.Len() != 1 || other.doc.Drawing.ID != w.doc.Drawing.ID {
		t.Fatalf("reopened drawing differs: %d shapes, id %s", other.sc.Len(), other.doc.Drawing.ID)
	}
	if other.tools.Kind() != tools.Select || other.tools.Session() == nil {
		t.Fatalf("tool should be restarted after load")
	}
}

func TestWorkspaceLoadKeepsSceneOnError(t *testing.T) {
	w := newWorkspace(config.Defaults(), nil)
	drawRect(w, 0, 0, 20, 20)
	bad := &storage.DocumentHandle{}
	if err := w.load(bad); err == nil {
		t.Fatalf("expected error for an invalid drawing")
	}
	if w.sc.Len() != 1 || w.tools.Session() == nil {
		t.Fatalf("failed load must leave the scene and tool intact")
	}
}

func TestWorkspaceNewDrawingResizes(t *testing.T) {
	w := newWorkspace(config.Defaults(), nil)
	drawRect(w, 0, 0, 20, 20)
	if err := w.newDrawing(" ", 300, 200); err != nil {
		t.Fatalf("new: %v", err)
	}
	if width, height := w.sc.Size(); width != 300 || height != 200 || w.sc.Len() != 0 {
		t.Fatalf("new drawing %dx%d with %d shapes", width, height, w.sc.Len())
	}
	if w.doc.Drawing.Title != untitled || w.doc.Path != "" {
		t.Fatalf("new drawing doc %+v", w.doc)
	}
	if w.snapshot() == nil {
		t.Fatalf("snapshot of an empty drawing should succeed")
	}
}

func TestWorkspaceExportImportAndPaste(t *testing.T) {
	dir := t.TempDir()
	w := newWorkspace(config.Defaults(), nil)
	drawRect(w, 5, 5, 30, 30)
	out := filepath.Join(dir, "out.png")
	format, err := w.exportTo(out)
	if err != nil || format != "png" {
		t.Fatalf("export: %s %v", format, err)
	}
	h, err := w.importImage(out)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if w.sc.Active() != h || w.sc.Len() != 2 {
		t.Fatalf("imported image should be active")
	}
	if _, ok := mustNode(t, w.sc, h).(*vector.ImageNode); !ok {
		t.Fatalf("import did not add an image")
	}

	data, err := w.png()
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	if _, err := w.pasteImage(data); err != nil || w.sc.Len() != 3 {
		t.Fatalf("paste: %v", err)
	}
	if _, err := w.pasteImage(nil); err == nil {
		t.Fatalf("empty clipboard should fail")
	}
	if _, err := w.exportTo(filepath.Join(dir, "out.bmp")); err == nil {
		t.Fatalf("bmp export should be rejected")
	}
}

func mustNode(t *testing.T, sc *scene.Canvas, h scene.Handle) vector.Node {
	t.Helper()
	n, ok := sc.Node(h)
	if !ok {
		t.Fatalf("handle %d not in scene", h)
	}
	return n
}

func TestWorkspaceArrange(t *testing.T) {
	w := newWorkspace(config.Defaults(), nil)
	if w.arrange("up") {
		t.Fatalf("nothing active, nothing to move")
	}
	a := w.add(vector.NewRect(vector.R(0, 0, 5, 5), vector.SolidFill(vector.Black), vector.Stroke{}))
	w.add(vector.NewRect(vector.R(0, 0, 5, 5), vector.SolidFill(vector.Black), vector.Stroke{}))
	w.sc.SetActive(a)
	if !w.arrange("front") || w.sc.ZIndex(a) != 1 {
		t.Fatalf("bring to front: z=%d", w.sc.ZIndex(a))
	}
	if !w.arrange("back") || w.sc.ZIndex(a) != 0 {
		t.Fatalf("send to back: z=%d", w.sc.ZIndex(a))
	}
	if w.arrange("sideways") {
		t.Fatalf("unknown op must be ignored")
	}
}

func TestWorkspaceRevisionsRestore(t *testing.T) {
	dir := t.TempDir()
	cat, err := storage.OpenCatalog(filepath.Join(dir, storage.CatalogFileName))
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	w := newWorkspace(config.Defaults(), cat)
	defer w.close()
	ctx := context.Background()
	drawRect(w, 0, 0, 10, 10)
	if err := w.saveAs(ctx, filepath.Join(dir, "r")); err != nil {
		t.Fatalf("save as: %v", err)
	}
	drawRect(w, 20, 20, 40, 40)
	if err := w.save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	revs, err := w.revisions(ctx)
	if err != nil || len(revs) != 2 {
		t.Fatalf("revisions: %d %v", len(revs), err)
	}
	if err := w.restore(ctx, 1); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if w.sc.Len() != 1 {
		t.Fatalf("restored drawing should have one shape, got %d", w.sc.Len())
	}
	if _, err := os.Stat(w.doc.Path); err != nil {
		t.Fatalf("restored document not written: %v", err)
	}
	if e, err := cat.Get(ctx, w.doc.Drawing.ID); err != nil || e.File != w.doc.Path {
		t.Fatalf("catalog entry %+v %v", e, err)
	}
}

func TestWorkspacePush(t *testing.T) {
	posted := make(chan backend.Drawing, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/drawings" || r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(rw, "unexpected request", http.StatusBadRequest)
			return
		}
		var got backend.Drawing
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(rw, err.Error(), http.StatusBadRequest)
			return
		}
		posted <- got
		got.ID = "4b1f1a8e-4a55-4a5c-9a51-3f1a3c1f0b01"
		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(rw).Encode(got)
	}))
	defer srv.Close()

	w := newWorkspace(config.Defaults(), nil)
	drawRect(w, 0, 0, 10, 10)
	job, err := w.pushJob(backend.NewClient(srv.URL, "tok"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	drawRect(w, 20, 20, 30, 30) // edits after the render are not uploaded
	d, err := job(context.Background())
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	got := <-posted
	if d.ID == "" || got.Title != untitled || len(got.File) < 8 || string(got.File[1:4]) != "PNG" {
		t.Fatalf("pushed %+v", got)
	}
}

func TestParseMeasureLength(t *testing.T) {
	if v, err := parseMeasureLength(" 12.5 "); err != nil || v != 12.5 {
		t.Fatalf("parse = %v %v", v, err)
	}
	for _, bad := range []string{"", "0", "-3", "ten"} {
		if _, err := parseMeasureLength(bad); err == nil {
			t.Fatalf("%q should be rejected", bad)
		}
	}
}
