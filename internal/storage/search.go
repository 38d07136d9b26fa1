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
	"fmt"
	"strings"
	"time"

	"gopaint/internal/domain"
)

// language=SQL
// dialect=SQLite
const ftsDDL = `CREATE VIRTUAL TABLE IF NOT EXISTS fts_drawings USING fts5(title, body, id UNINDEXED);`

// SearchQuery describes a catalog search.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT)
// and matches titles and the text shapes of drawings.
// CreatedFrom/To are inclusive; zero means unset.
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type SearchQuery struct {
	Text        string
	CreatedFrom time.Time
	CreatedTo   time.Time
	Limit       int
	Offset      int
}

// SearchResult is one matching drawing. Snippet highlights the match with
// [ ] markers when Text was given.
type SearchResult struct {
	Entry
	Snippet string
}

// DrawingText joins the text of all text shapes in d, groups included.
func DrawingText(d domain.Drawing) string {
	var parts []string
	var walk func([]domain.Shape)
	walk = func(shapes []domain.Shape) {
		for _, s := range shapes {
			if s.Kind == domain.KindText && strings.TrimSpace(s.Text) != "" {
				parts = append(parts, s.Text)
			}
			walk(s.Children)
		}
	}
	walk(d.Shapes)
	return strings.Join(parts, "\n")
}

func (c *Catalog) indexText(ctx context.Context, e Entry) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM fts_drawings WHERE id=?`, e.ID); err != nil {
		return fmt.Errorf("index text: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, `INSERT INTO fts_drawings(id, title, body) VALUES(?,?,?)`, e.ID, e.Title, e.Text); err != nil {
		return fmt.Errorf("index text: %w", err)
	}
	return nil
}

// Search finds catalogued drawings. Without Text it lists drawings in the
// created range, newest first.
func (c *Catalog) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		sb.WriteString("SELECT d.id, d.title, d.file, d.created, snippet(fts_drawings, -1, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_drawings JOIN drawings d ON fts_drawings.id = d.id\n")
		sb.WriteString("WHERE fts_drawings MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT d.id, d.title, d.file, d.created, ''\n")
		sb.WriteString("FROM drawings d\nWHERE 1=1\n")
	}
	if !q.CreatedFrom.IsZero() {
		sb.WriteString(" AND d.created >= ?\n")
		args = append(args, q.CreatedFrom.UTC().Format(createdLayout))
	}
	if !q.CreatedTo.IsZero() {
		sb.WriteString(" AND d.created <= ?\n")
		args = append(args, q.CreatedTo.UTC().Format(createdLayout))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if useFTS {
		sb.WriteString("ORDER BY fts_drawings.rank, d.created DESC\n")
	} else {
		sb.WriteString("ORDER BY d.created DESC, d.id\n")
	}
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := c.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var created string
		if err := rows.Scan(&r.ID, &r.Title, &r.File, &created, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if r.Created, err = time.Parse(createdLayout, created); err != nil {
			return nil, fmt.Errorf("parse created %q: %w", created, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
