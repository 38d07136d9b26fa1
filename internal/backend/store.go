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
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"gopaint/internal/storage"
)

// MaxTitleLen is the longest accepted drawing title in characters.
const MaxTitleLen = 100

// ErrNotFound is returned when a drawing does not exist.
var ErrNotFound = errors.New("drawing not found")

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// Drawing is a stored drawing: its title and the exported PNG.
// File is base64 in JSON and left out of listings.
type Drawing struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	File    []byte    `json:"file,omitempty"`
	Created time.Time `json:"created"`
	Snippet string    `json:"snippet,omitempty"`
}

// ValidationError reports a rejected field. Handlers map it to 400.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Msg }

// Validate checks title and file the way the server accepts them.
func (d *Drawing) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return &ValidationError{Field: "title", Msg: "this field is required"}
	}
	if utf8.RuneCountInString(d.Title) > MaxTitleLen {
		return &ValidationError{Field: "title", Msg: fmt.Sprintf("ensure this field has no more than %d characters", MaxTitleLen)}
	}
	if len(d.File) == 0 {
		return &ValidationError{Field: "file", Msg: "no file was submitted"}
	}
	if !bytes.HasPrefix(d.File, pngMagic) {
		return &ValidationError{Field: "file", Msg: "file is not a PNG image"}
	}
	return nil
}

// Store persists drawings.
type Store interface {
	// List returns drawings without their files, newest first unless a
	// text query ranks them.
	List(ctx context.Context, q storage.SearchQuery) ([]Drawing, error)
	Get(ctx context.Context, id string) (Drawing, error)
	// Create assigns ID and Created.
	Create(ctx context.Context, d Drawing) (Drawing, error)
	// Update replaces title and file; Created is kept.
	Update(ctx context.Context, d Drawing) (Drawing, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// PGStore is the Postgres Store, used through the pgx database/sql driver.
type PGStore struct {
	db *sql.DB
}

// NewPGStore wraps an open database. Migrations must have been applied.
func NewPGStore(db *sql.DB) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *PGStore) Get(ctx context.Context, id string) (Drawing, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Drawing{}, ErrNotFound
	}
	var d Drawing
	row := s.db.QueryRowContext(ctx, `SELECT id, title, file, created FROM drawings WHERE id = $1`, id)
	switch err := row.Scan(&d.ID, &d.Title, &d.File, &d.Created); {
	case errors.Is(err, sql.ErrNoRows):
		return Drawing{}, ErrNotFound
	case err != nil:
		return Drawing{}, fmt.Errorf("get drawing %s: %w", id, err)
	}
	return d, nil
}

func (s *PGStore) Create(ctx context.Context, d Drawing) (Drawing, error) {
	if err := d.Validate(); err != nil {
		return Drawing{}, err
	}
	d.ID = uuid.NewString()
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO drawings(id, title, file) VALUES($1, $2, $3) RETURNING created`,
		d.ID, d.Title, d.File).Scan(&d.Created)
	if err != nil {
		return Drawing{}, fmt.Errorf("insert drawing: %w", err)
	}
	return d, nil
}

func (s *PGStore) Update(ctx context.Context, d Drawing) (Drawing, error) {
	if _, err := uuid.Parse(d.ID); err != nil {
		return Drawing{}, ErrNotFound
	}
	if err := d.Validate(); err != nil {
		return Drawing{}, err
	}
	err := s.db.QueryRowContext(ctx,
		`UPDATE drawings SET title = $2, file = $3 WHERE id = $1 RETURNING created`,
		d.ID, d.Title, d.File).Scan(&d.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return Drawing{}, ErrNotFound
	}
	if err != nil {
		return Drawing{}, fmt.Errorf("update drawing %s: %w", d.ID, err)
	}
	return d, nil
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM drawings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete drawing %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
