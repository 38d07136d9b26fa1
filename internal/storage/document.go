/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopaint/internal/domain"
	applog "gopaint/internal/log"
)

const (
	// Ext is the document file extension.
	Ext            = ".gopaint.json"
	BackupsDirName = "backups"
	// MaxBackups is how many backups per document are kept.
	MaxBackups = 10
)

// DocumentHandle keeps track of a drawing loaded from or saved to disk.
type DocumentHandle struct {
	Path    string
	Drawing domain.Drawing
	// Recovered is set when Open fell back to a backup.
	Recovered bool
}

// DocumentPath returns dir/<safe title>.gopaint.json.
func DocumentPath(dir, title string) string {
	return filepath.Join(dir, domain.SafeFileName(title)+Ext)
}

// Create writes a new drawing to path, failing if the file exists.
func Create(path string, d domain.Drawing) (*DocumentHandle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("document path is required")
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Base(path), os.ErrExist)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	dh := &DocumentHandle{Path: path, Drawing: d}
	if err := Save(dh); err != nil {
		return nil, err
	}
	return dh, nil
}

// Open loads a document. If the file is missing, unparsable or fails the
// schema, the newest valid backup is used and Recovered is set.
func Open(path string) (*DocumentHandle, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("path", path))
	d, err := readDrawing(path)
	if err == nil {
		return &DocumentHandle{Path: path, Drawing: *d}, nil
	}
	bd, berr := openFromLatestBackup(path)
	if berr != nil {
		return nil, fmt.Errorf("open document: %w; backup attempt: %v", err, berr)
	}
	l.Warn("document unreadable, recovered from backup", slog.Any("err", err))
	return &DocumentHandle{Path: path, Drawing: *bd, Recovered: true}, nil
}

func readDrawing(path string) (*domain.Drawing, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseDrawing(b)
}

// parseDrawing validates b against the document schema and the model
// invariants.
func parseDrawing(b []byte) (*domain.Drawing, error) {
	if err := ValidateJSON(b); err != nil {
		return nil, err
	}
	var d domain.Drawing
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return &d, nil
}

// Save writes the drawing with transactional semantics, after copying the
// previous file to a timestamped backup. Old backups are pruned.
func Save(dh *DocumentHandle) error {
	if dh == nil {
		return errors.New("nil DocumentHandle")
	}
	if dh.Path == "" {
		return errors.New("invalid DocumentHandle: missing path")
	}
	if dh.Drawing.Version == 0 {
		dh.Drawing.Version = domain.FormatVersion
	}
	if dh.Drawing.Shapes == nil {
		dh.Drawing.Shapes = []domain.Shape{}
	}
	if err := dh.Drawing.Validate(); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	data, err := json.MarshalIndent(dh.Drawing, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(filepath.Dir(dh.Path), BackupsDirName)
	if _, statErr := os.Stat(dh.Path); statErr == nil {
		if err := os.MkdirAll(bdir, 0o755); err != nil {
			return fmt.Errorf("ensure backups dir: %w", err)
		}
		stamp := time.Now().UTC().Format("20060102-150405.000")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(dh.Path), stamp))
		if cerr := copyFile(dh.Path, bpath); cerr != nil {
			return fmt.Errorf("backup current document: %w", cerr)
		}
		pruneBackups(dh.Path, MaxBackups)
	}

	dir := filepath.Dir(dh.Path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(dh.Path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp document: %w", werr)
	}
	// Windows cannot rename over an existing file.
	if _, err := os.Stat(dh.Path); err == nil {
		_ = os.Remove(dh.Path)
	}
	if rerr := os.Rename(temp, dh.Path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", rerr)
	}
	dh.Recovered = false
	return nil
}

// SaveAs writes the drawing to a new path and updates the handle.
func SaveAs(dh *DocumentHandle, newPath string) error {
	if dh == nil {
		return errors.New("nil DocumentHandle")
	}
	if newPath == "" {
		return errors.New("new path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}
	dh.Path = newPath
	return Save(dh)
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// backupsOf lists the backups of the document at path, oldest first. The
// timestamp in the name sorts lexicographically.
func backupsOf(path string) []string {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out)
	return out
}

func pruneBackups(path string, keep int) {
	all := backupsOf(path)
	for len(all) > keep {
		_ = os.Remove(all[0])
		all = all[1:]
	}
}

// openFromLatestBackup returns the newest backup that parses and validates.
func openFromLatestBackup(path string) (*domain.Drawing, error) {
	candidates := backupsOf(path)
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	var lastErr error
	for i := len(candidates) - 1; i >= 0; i-- {
		b, err := os.ReadFile(candidates[i])
		if err != nil {
			lastErr = err
			continue
		}
		d, err := parseDrawing(b)
		if err != nil {
			lastErr = err
			continue
		}
		return d, nil
	}
	return nil, fmt.Errorf("no valid backup: %w", lastErr)
}

// AutosaveCrash writes the drawing of dh next to its backups without
// touching the document itself. Unsaved drawings go to the temp dir.
func AutosaveCrash(dh *DocumentHandle) (string, error) {
	if dh == nil {
		return "", errors.New("nil DocumentHandle")
	}
	dir, base := os.TempDir(), domain.SafeFileName(dh.Drawing.Title)+Ext
	if dh.Path != "" {
		dir, base = filepath.Join(filepath.Dir(dh.Path), BackupsDirName), filepath.Base(dh.Path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure crash dir: %w", err)
	}
	data, err := json.MarshalIndent(dh.Drawing, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.crash-%s.json", base, time.Now().Format("20060102-150405")))
	if err := writeFileSync(path, data); err != nil {
		return "", err
	}
	return path, nil
}
