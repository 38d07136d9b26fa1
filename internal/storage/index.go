/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopaint/internal/domain"
	applog "gopaint/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	CatalogFileName = "catalog.sqlite"

	openTimeout = 5 * time.Second
	// created is stored as fixed-width UTC so text order is time order
	createdLayout = "2006-01-02T15:04:05.000Z"
)

// ErrNotFound is returned when a catalog entry does not exist.
var ErrNotFound = errors.New("drawing not found")

// Entry is one catalogued drawing. Text is the content of its text shapes
// and only feeds the search index.
type Entry struct {
	ID      string
	Title   string
	File    string
	Created time.Time
	Text    string
}

// EntryOf describes a saved document for the catalog.
func EntryOf(dh *DocumentHandle) Entry {
	d := dh.Drawing
	return Entry{ID: d.ID, Title: d.Title, File: dh.Path, Created: d.Created, Text: DrawingText(d)}
}

// Catalog is the SQLite index of known drawings, with their thumbnails,
// revisions and search index.
type Catalog struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// OpenCatalog opens or creates the catalog at path in WAL mode and
// migrates it to the current schema.
func OpenCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path is required")
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "catalog_open").With(slog.String("path", path))
	c, err := openCatalog(path, l)
	if err != nil {
		l.Error("catalog unavailable", slog.Any("err", err))
		return nil, err
	}
	l.Debug("catalog ready")
	return c, nil
}

func openCatalog(path string, l *slog.Logger) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps WAL writes serialised within the process
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Catalog{db: db, path: path, log: l}, nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Upsert inserts or replaces the entry with e.ID.
func (c *Catalog) Upsert(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return errors.New("entry id is required")
	}
	const q = `INSERT INTO drawings(id, title, file, created) VALUES(?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title=excluded.title, file=excluded.file, created=excluded.created`
	if _, err := c.db.ExecContext(ctx, q, e.ID, e.Title, e.File, e.Created.UTC().Format(createdLayout)); err != nil {
		return fmt.Errorf("upsert drawing %s: %w", e.ID, err)
	}
	return c.indexText(ctx, e)
}

const entryCols = `id, title, file, created`

type scanner interface{ Scan(...any) error }

func scanEntry(s scanner) (Entry, error) {
	var (
		e       Entry
		created string
	)
	if err := s.Scan(&e.ID, &e.Title, &e.File, &created); err != nil {
		return Entry{}, err
	}
	t, err := time.Parse(createdLayout, created)
	if err != nil {
		return Entry{}, fmt.Errorf("drawing %s: created %q: %w", e.ID, created, err)
	}
	e.Created = t
	return e, nil
}

// List returns all entries, newest first.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+entryCols+` FROM drawings ORDER BY created DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns the entry with id or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, id string) (Entry, error) {
	e, err := scanEntry(c.db.QueryRowContext(ctx, `SELECT `+entryCols+` FROM drawings WHERE id=?`, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Entry{}, ErrNotFound
	case err != nil:
		return Entry{}, fmt.Errorf("get drawing %s: %w", id, err)
	}
	return e, nil
}

// Delete drops the entry with id together with its thumbnail, revisions
// and search row. The document file is left alone.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	res, err := tx.ExecContext(ctx, `DELETE FROM drawings WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete drawing %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	for _, table := range []string{"thumbnails", "revisions"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE drawing_id=?`, id); err != nil {
			return fmt.Errorf("delete %s of %s: %w", table, id, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM fts_drawings WHERE id=?`, id); err != nil {
		return fmt.Errorf("unindex %s: %w", id, err)
	}
	return tx.Commit()
}

// Rescan catalogs every readable document in dir and drops entries whose
// file is gone. It returns how many documents it found.
func (c *Catalog) Rescan(ctx context.Context, dir string) (int, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("rescan %s: %w", dir, err)
	}
	found := 0
	for _, de := range ents {
		if de.IsDir() || !strings.HasSuffix(de.Name(), Ext) {
			continue
		}
		path := filepath.Join(dir, de.Name())
		d, err := readDrawing(path)
		if err != nil {
			c.log.Warn("skip unreadable document", slog.String("file", de.Name()), slog.Any("err", err))
			continue
		}
		if err := c.Upsert(ctx, EntryOf(&DocumentHandle{Path: path, Drawing: *d})); err != nil {
			return found, err
		}
		found++
	}
	return found, c.pruneMissing(ctx)
}

// pruneMissing removes entries whose document no longer exists.
func (c *Catalog) pruneMissing(ctx context.Context) error {
	all, err := c.List(ctx)
	if err != nil {
		return err
	}
	for _, e := range all {
		if _, err := os.Stat(e.File); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		c.log.Debug("dropping entry for missing file", slog.String("file", e.File))
		if err := c.Delete(ctx, e.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

// DetectAndRebuild checks the catalog at path. A corrupt file is backed
// up, removed and rebuilt from the documents in dir. It reports whether a
// rebuild happened.
func DetectAndRebuild(ctx context.Context, path, dir string) (bool, error) {
	if c, err := OpenCatalog(path); err == nil {
		ok := c.healthy(ctx)
		_ = c.Close()
		if ok {
			return false, nil
		}
	}
	backupCatalogFile(path)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
	c, err := OpenCatalog(path)
	if err != nil {
		return false, fmt.Errorf("rebuild catalog: %w", err)
	}
	defer c.Close()
	_, err = c.Rescan(ctx, dir)
	return true, err
}

func (c *Catalog) healthy(ctx context.Context) bool {
	var res string
	err := c.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&res)
	return err == nil && strings.EqualFold(strings.TrimSpace(res), "ok")
}

// backupCatalogFile copies the catalog into a timestamped backup next to it.
func backupCatalogFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	dir := filepath.Join(filepath.Dir(path), BackupsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	name := filepath.Base(path) + "." + time.Now().Format("20060102-150405") + ".bak"
	_ = os.WriteFile(filepath.Join(dir, name), data, 0o644)
}

// Record saves the drawing of dh and catalogs it. Revisions and the
// thumbnail are best effort.
func (c *Catalog) Record(ctx context.Context, dh *DocumentHandle) error {
	ctx = applog.WithDrawing(ctx, dh.Drawing.ID)
	if err := Save(dh); err != nil {
		return err
	}
	if err := c.Upsert(ctx, EntryOf(dh)); err != nil {
		return err
	}
	if err := c.SaveRevision(ctx, &dh.Drawing, time.Now()); err != nil {
		c.log.WarnContext(ctx, "revision not stored", slog.Any("err", err))
	} else if _, err := c.PruneRevisions(ctx, dh.Drawing.ID, MaxRevisions); err != nil {
		c.log.WarnContext(ctx, "prune revisions failed", slog.Any("err", err))
	}
	if err := c.RefreshThumbnail(ctx, &dh.Drawing, ThumbSize); err != nil {
		c.log.WarnContext(ctx, "thumbnail not stored", slog.Any("err", err))
	}
	return nil
}

// Drawing loads the document behind a catalog entry.
func (c *Catalog) Drawing(ctx context.Context, id string) (*domain.Drawing, error) {
	e, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dh, err := Open(e.File)
	if err != nil {
		return nil, err
	}
	return &dh.Drawing, nil
}
