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
	"time"

	"gopaint/internal/version"
)

// catalogMigrations brings a catalog from version i to i+1. A fresh
// database starts at 0; catalogs written by early releases start at 1.
var catalogMigrations = [][]string{
	// 1: drawings
	{`CREATE TABLE IF NOT EXISTS drawings (
		id      TEXT PRIMARY KEY,
		title   TEXT NOT NULL,
		file    TEXT NOT NULL,
		created TEXT NOT NULL
	);`},
	// 2: listing and rescan indexes
	{
		`CREATE INDEX IF NOT EXISTS idx_drawings_created ON drawings(created DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_drawings_file ON drawings(file);`,
	},
	// 3: previews and history
	{thumbnailsDDL, revisionsDDL, revisionsIndexDDL},
	// 4: full text search over existing rows
	{ftsDDL, `INSERT INTO fts_drawings(id, title, body) SELECT id, title, '' FROM drawings;`},
}

// schemaVersion is the version a fully migrated catalog reports.
var schemaVersion = len(catalogMigrations)

// language=SQL
// dialect=SQLite
const versionDDL = `CREATE TABLE IF NOT EXISTS version (
	id         INTEGER PRIMARY KEY CHECK(id=1),
	schema     INTEGER NOT NULL,
	app        TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

func stamp() string { return time.Now().UTC().Format(time.RFC3339) }

// migrate creates the version row when missing and applies every pending
// migration in its own transaction.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, versionDDL); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}
	cur, err := readSchema(ctx, db)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = db.ExecContext(ctx, `INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 0, ?, ?, ?)`,
			version.String(), stamp(), stamp())
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for v := cur; v < schemaVersion; v++ {
		if err := step(ctx, db, v+1, catalogMigrations[v]); err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
	}
	_, err = db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, version.String(), stamp())
	return err
}

func step(ctx context.Context, db *sql.DB, to int, stmts []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, to, stamp()); err != nil {
		return err
	}
	return tx.Commit()
}

func readSchema(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v)
	return v, err
}

// SchemaVersion reports the schema version recorded in the database.
func (c *Catalog) SchemaVersion(ctx context.Context) (int, error) {
	v, err := readSchema(ctx, c.db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
