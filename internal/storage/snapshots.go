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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopaint/internal/domain"
)

// MaxRevisions is how many revisions per drawing Record keeps.
const MaxRevisions = 20

// language=SQL
// dialect=SQLite
const revisionsDDL = `CREATE TABLE IF NOT EXISTS revisions (
	id         INTEGER PRIMARY KEY,
	drawing_id TEXT NOT NULL,
	ts         TEXT NOT NULL,
	doc        BLOB NOT NULL
);`

// language=SQL
// dialect=SQLite
const revisionsIndexDDL = `CREATE INDEX IF NOT EXISTS idx_revisions_drawing ON revisions(drawing_id, ts DESC);`

// language=SQL
// dialect=SQLite
const insertRevisionSQL = `INSERT INTO revisions(drawing_id, ts, doc) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const listRevisionsSQL = `SELECT id, ts, doc FROM revisions WHERE drawing_id = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneRevisionsSQL = `DELETE FROM revisions WHERE drawing_id = ? AND id NOT IN (
	SELECT id FROM revisions WHERE drawing_id = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// revisionLayout is fixed width so ts sorts as text.
const revisionLayout = "2006-01-02T15:04:05.000000000Z"

// Revision is one stored state of a drawing.
type Revision struct {
	ID      int64
	TS      time.Time
	Drawing domain.Drawing
}

// SaveRevision stores d as a revision taken at ts.
func (c *Catalog) SaveRevision(ctx context.Context, d *domain.Drawing, ts time.Time) error {
	if d == nil {
		return errors.New("nil drawing")
	}
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal revision: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, insertRevisionSQL, d.ID, ts.UTC().Format(revisionLayout), b); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	return nil
}

// Revisions returns up to limit most recent revisions of drawing id.
func (c *Catalog) Revisions(ctx context.Context, id string, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = MaxRevisions
	}
	rows, err := c.db.QueryContext(ctx, listRevisionsSQL, id, limit)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Revision
	for rows.Next() {
		var r Revision
		var ts string
		var doc []byte
		if err := rows.Scan(&r.ID, &ts, &doc); err != nil {
			return nil, err
		}
		r.TS, _ = time.Parse(revisionLayout, ts)
		if err := json.Unmarshal(doc, &r.Drawing); err != nil {
			return nil, fmt.Errorf("revision %d: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestRevision returns the newest revision of id or ErrNotFound.
func (c *Catalog) LatestRevision(ctx context.Context, id string) (Revision, error) {
	revs, err := c.Revisions(ctx, id, 1)
	if err != nil {
		return Revision{}, err
	}
	if len(revs) == 0 {
		return Revision{}, ErrNotFound
	}
	return revs[0], nil
}

// PruneRevisions keeps at most keepLast revisions of id and deletes older ones.
func (c *Catalog) PruneRevisions(ctx context.Context, id string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := c.db.ExecContext(ctx, pruneRevisionsSQL, id, id, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *Catalog) revisionCount(ctx context.Context, id string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM revisions WHERE drawing_id=?`, id).Scan(&n)
	return n, err
}

// Restore writes revision rev of drawing id back to its document file.
// rev counts back from the newest revision, 0 being the newest.
func (c *Catalog) Restore(ctx context.Context, id string, rev int) (*DocumentHandle, error) {
	e, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	revs, err := c.Revisions(ctx, id, rev+1)
	if err != nil {
		return nil, err
	}
	if rev < 0 || rev >= len(revs) {
		n, _ := c.revisionCount(ctx, id)
		return nil, fmt.Errorf("revision %d of %s: %w (%d stored)", rev, id, ErrNotFound, n)
	}
	dh := &DocumentHandle{Path: e.File, Drawing: revs[rev].Drawing}
	if err := Save(dh); err != nil {
		return nil, err
	}
	return dh, nil
}
