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
	"image"
	"time"

	xdraw "golang.org/x/image/draw"

	"gopaint/internal/domain"
	"gopaint/internal/export"
	"gopaint/internal/scene"
)

// ThumbSize is the longest side of catalog thumbnails in pixels.
const ThumbSize = 128

// language=SQL
// dialect=SQLite
const thumbnailsDDL = `CREATE TABLE IF NOT EXISTS thumbnails (
	drawing_id  TEXT PRIMARY KEY,
	w           INTEGER NOT NULL,
	h           INTEGER NOT NULL,
	png         BLOB    NOT NULL,
	updated_at  TEXT    NOT NULL,
	last_access TEXT
);`

// Thumbnail is a small PNG rendering of a catalogued drawing.
type Thumbnail struct {
	W, H    int
	PNG     []byte
	Updated time.Time
}

// PutThumbnail stores the thumbnail of drawing id, replacing any previous one.
func (c *Catalog) PutThumbnail(ctx context.Context, id string, th Thumbnail) error {
	if id == "" || len(th.PNG) == 0 {
		return errors.New("thumbnail needs an id and image data")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := c.db.ExecContext(ctx, `INSERT INTO thumbnails(drawing_id, w, h, png, updated_at) VALUES(?,?,?,?,?)
		ON CONFLICT(drawing_id) DO UPDATE SET w=excluded.w, h=excluded.h, png=excluded.png, updated_at=excluded.updated_at`,
		id, th.W, th.H, th.PNG, now)
	if err != nil {
		return fmt.Errorf("put thumbnail: %w", err)
	}
	return nil
}

// Thumbnail returns the stored thumbnail of id and marks it as accessed.
func (c *Catalog) Thumbnail(ctx context.Context, id string) (Thumbnail, error) {
	var th Thumbnail
	var updated string
	err := c.db.QueryRowContext(ctx, `SELECT w, h, png, updated_at FROM thumbnails WHERE drawing_id=?`, id).
		Scan(&th.W, &th.H, &th.PNG, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Thumbnail{}, ErrNotFound
	}
	if err != nil {
		return Thumbnail{}, fmt.Errorf("query thumbnail: %w", err)
	}
	th.Updated, _ = time.Parse(time.RFC3339, updated)
	_, _ = c.db.ExecContext(ctx, `UPDATE thumbnails SET last_access=? WHERE drawing_id=?`, time.Now().UTC().Format(time.RFC3339), id)
	return th, nil
}

// RefreshThumbnail renders d and stores it scaled to fit a size x size box.
func (c *Catalog) RefreshThumbnail(ctx context.Context, d *domain.Drawing, size int) error {
	img, err := RenderThumbnail(d, size)
	if err != nil {
		return err
	}
	data, err := encodePNG(img)
	if err != nil {
		return err
	}
	return c.PutThumbnail(ctx, d.ID, Thumbnail{W: img.Bounds().Dx(), H: img.Bounds().Dy(), PNG: data})
}

// RenderThumbnail rasterizes d and scales it down to fit size, keeping the
// aspect ratio. Drawings smaller than size are not enlarged.
func RenderThumbnail(d *domain.Drawing, size int) (*image.NRGBA, error) {
	if size <= 0 {
		size = ThumbSize
	}
	sc := scene.NewCanvas(1, 1)
	if err := Decode(*d, sc); err != nil {
		return nil, err
	}
	full := export.Rasterize(sc)
	w, h := full.Bounds().Dx(), full.Bounds().Dy()
	if w <= size && h <= size {
		return full, nil
	}
	tw, th := size, size
	if w >= h {
		th = max(1, h*size/w)
	} else {
		tw = max(1, w*size/h)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), full, full.Bounds(), xdraw.Src, nil)
	return dst, nil
}
