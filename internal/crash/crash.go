/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash /*

// Package crash turns panics into reports, autosaves and errors.
package crash

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	applog "gopaint/internal/log"
	"gopaint/internal/storage"
	"gopaint/internal/telemetry"
	"gopaint/internal/version"
)

// ExitCode is the process status after a recovered panic.
const ExitCode = 2

// Swapped in tests.
var (
	exitFn           = os.Exit
	stderr io.Writer = os.Stderr
	now              = time.Now
)

// Snapshot returns the document to autosave, or nil when there is nothing
// to save. It is only called after a panic.
type Snapshot func() *storage.DocumentHandle

// Report describes one crash.
type Report struct {
	Time     time.Time
	Version  string
	Platform string
	Document string
	Drawing  string
	Shapes   int
	Panic    any
	Stack    []byte
}

func newReport(dh *storage.DocumentHandle, v any, stack []byte) Report {
	r := Report{
		Time:     now(),
		Version:  version.String(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Panic:    v,
		Stack:    stack,
	}
	if dh != nil {
		r.Document, r.Drawing, r.Shapes = dh.Path, dh.Drawing.ID, len(dh.Drawing.Shapes)
	}
	return r
}

// String renders the report as plain text.
func (r Report) String() string {
	var b strings.Builder
	b.WriteString("GoPaint Crash Report\n")
	fmt.Fprintf(&b, "Timestamp: %s\nVersion: %s\nOS/Arch: %s\n", r.Time.Format(time.RFC3339), r.Version, r.Platform)
	if r.Drawing != "" {
		fmt.Fprintf(&b, "Document: %s\nDrawing: %s (%d shapes)\n", r.Document, r.Drawing, r.Shapes)
	}
	fmt.Fprintf(&b, "\nPanic: %v\n\nStack:\n%s\n", r.Panic, r.Stack)
	return b.String()
}

// dir is where the report goes: the document's backups folder when the
// drawing has been saved, the temp dir otherwise.
func (r Report) dir() string {
	if r.Document == "" {
		return os.TempDir()
	}
	return filepath.Join(filepath.Dir(r.Document), storage.BackupsDirName)
}

// Save writes the report and returns its path.
func (r Report) Save() (string, error) {
	dir := r.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "crash-"+r.Time.Format("20060102-150405")+".log")
	f, err := os.Create(path)
	if err != nil {
		return path, err
	}
	if _, err := io.WriteString(f, r.String()); err != nil {
		_ = f.Close()
		return path, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return path, err
	}
	return path, f.Close()
}

// Recover handles a panic in the calling goroutine: it logs the stack,
// saves a report, autosaves the drawing from snap and exits.
//
//	defer crash.Recover(snap)
func Recover(snap Snapshot) {
	v := recover()
	if v == nil {
		return
	}
	exitFn(handle(v, debug.Stack(), snap))
}

func handle(v any, stack []byte, snap Snapshot) int {
	l := applog.WithComponent("crash")
	l.Error("panic recovered", slog.Any("panic", v), slog.String("stack", string(stack)))

	dh := take(snap)
	rep := newReport(dh, v, stack)
	path, err := rep.Save()
	if err != nil {
		l.Error("crash report not written", slog.String("path", path), slog.Any("err", err))
	}
	if err := telemetry.UploadCrash([]byte(rep.String())); err != nil {
		l.Warn("crash report upload failed", slog.Any("err", err))
	}
	if dh != nil {
		if saved, err := storage.AutosaveCrash(dh); err != nil {
			l.Error("crash autosave failed", slog.Any("err", err))
		} else {
			l.Info("crash autosave written", slog.String("path", saved))
		}
	}
	fmt.Fprintf(stderr, "A fatal error occurred. A crash report was saved to: %s\nVersion: %s\nOS/Arch: %s\n",
		path, rep.Version, rep.Platform)
	return ExitCode
}

// take calls snap, surviving a second panic from a broken scene.
func take(snap Snapshot) (dh *storage.DocumentHandle) {
	if snap == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			dh = nil
		}
	}()
	return snap()
}

// PanicError is what Guard returns when fn panicked.
type PanicError struct {
	Op    string
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("%s: panic: %v", e.Op, e.Value) }

// Guard runs fn, converting a panic into a *PanicError. UI callbacks run
// through it so one broken handler cannot take the app down.
func Guard(op string, fn func()) (err error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		applog.WithComponent("crash").Error("panic in callback",
			slog.String("op", op), slog.Any("panic", v), slog.String("stack", string(debug.Stack())))
		telemetry.Failed(op)
		err = &PanicError{Op: op, Value: v}
	}()
	fn()
	return nil
}
