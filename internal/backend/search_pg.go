/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopaint/internal/storage"
)

const (
	defaultListLimit = 100
	headlineOpts     = "StartSel=[, StopSel=], MaxFragments=1, MaxWords=12"
)

// pgQuery collects positional arguments while a statement is assembled.
type pgQuery struct {
	args  []any
	where []string
}

func (q *pgQuery) arg(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

func (q *pgQuery) and(cond string) { q.where = append(q.where, cond) }

// List runs q over the drawings table. Text is matched against the title
// tsvector and highlighted with [ ] like the local catalog search.
func (s *PGStore) List(ctx context.Context, sq storage.SearchQuery) ([]Drawing, error) {
	var (
		q       pgQuery
		snippet = "''"
		order   = "d.created DESC, d.id"
	)
	if text := strings.TrimSpace(sq.Text); text != "" {
		tsq := "plainto_tsquery('simple', " + q.arg(text) + ")"
		snippet = fmt.Sprintf("COALESCE(ts_headline('simple', d.title, %s, '%s'), '')", tsq, headlineOpts)
		order = "ts_rank(d.search_vector, " + tsq + ") DESC, d.created DESC"
		q.and("d.search_vector @@ " + tsq)
	}
	if !sq.CreatedFrom.IsZero() {
		q.and("d.created >= " + q.arg(sq.CreatedFrom))
	}
	if !sq.CreatedTo.IsZero() {
		q.and("d.created <= " + q.arg(sq.CreatedTo))
	}
	limit := sq.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	stmt := "SELECT d.id, d.title, d.created, " + snippet + " FROM drawings d"
	if len(q.where) > 0 {
		stmt += " WHERE " + strings.Join(q.where, " AND ")
	}
	stmt += " ORDER BY " + order + " LIMIT " + q.arg(limit) + " OFFSET " + q.arg(max(sq.Offset, 0))

	rows, err := s.db.QueryContext(ctx, stmt, q.args...)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []Drawing{}
	for rows.Next() {
		var d Drawing
		if err := rows.Scan(&d.ID, &d.Title, &d.Created, &d.Snippet); err != nil {
			return nil, fmt.Errorf("scan drawing: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
