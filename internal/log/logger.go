/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log sets up the slog logger every gopaint package writes to.
// Records go to the console, human readable or JSON, and additionally to a
// rotating JSON file when one is configured. Packages derive their logger
// with WithComponent; the level can be changed while running.
package log

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"gopaint/internal/version"
)

// Options controls logger initialization. FromEnv reads them from
// GOPAINT_LOG_LEVEL, GOPAINT_LOG_FORMAT, GOPAINT_LOG_SOURCE and GOPAINT_LOG_FILE.
type Options struct {
	Level     string // debug, info, warn or error
	Format    string // console or json
	AddSource bool
	File      string    // rotated JSON log, optional
	Console   io.Writer // defaults to stderr
}

const componentKey = "component"

var (
	mu    sync.RWMutex
	root  *slog.Logger
	file  *lj.Logger
	level = new(slog.LevelVar)
)

// L returns the application logger, initializing it from the environment
// on first use.
func L() *slog.Logger {
	mu.RLock()
	l := root
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Init replaces the application logger and slog's default. A previously
// opened log file is closed.
func Init(opts Options) {
	level.Set(ParseLevel(opts.Level))
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: level, AddSource: opts.AddSource}

	var hs []slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		hs = append(hs, slog.NewJSONHandler(console, hopts))
	} else {
		hs = append(hs, &consoleHandler{w: console, mu: new(sync.Mutex), addSource: opts.AddSource})
	}
	var rot *lj.Logger
	if f := strings.TrimSpace(opts.File); f != "" {
		rot = &lj.Logger{Filename: f, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		hs = append(hs, slog.NewJSONHandler(rot, hopts))
	}
	var h slog.Handler = hs[0]
	if len(hs) > 1 {
		h = fanout(hs)
	}
	l := slog.New(drawingHandler{h}).With(slog.String("app", "gopaint"), slog.String("ver", version.Version))

	mu.Lock()
	old := file
	root, file = l, rot
	mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	slog.SetDefault(l)
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	f := file
	file = nil
	mu.Unlock()
	if f == nil {
		return nil
	}
	return f.Close()
}

// SetLevel changes the level of the running logger.
func SetLevel(s string) { level.Set(ParseLevel(s)) }

// Level is the current minimum level.
func Level() slog.Level { return level.Level() }

// FromEnv builds Options from environment variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("GOPAINT_LOG_LEVEL", "info"),
		Format:    getenv("GOPAINT_LOG_FORMAT", "console"),
		AddSource: parseBool(os.Getenv("GOPAINT_LOG_SOURCE")),
		File:      os.Getenv("GOPAINT_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

// ParseLevel maps a level name to its slog level; unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WithComponent returns a logger tagged with the package or subsystem name.
func WithComponent(name string) *slog.Logger { return L().With(slog.String(componentKey, name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

type drawingKey struct{}

// WithDrawing stores a drawing id in ctx. Records logged with that context
// carry it as the "drawing" attribute.
func WithDrawing(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, drawingKey{}, id)
}

type drawingHandler struct{ slog.Handler }

func (h drawingHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if id, ok := ctx.Value(drawingKey{}).(string); ok && id != "" {
			r.AddAttrs(slog.String("drawing", id))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h drawingHandler) WithAttrs(as []slog.Attr) slog.Handler {
	return drawingHandler{h.Handler.WithAttrs(as)}
}

func (h drawingHandler) WithGroup(name string) slog.Handler {
	return drawingHandler{h.Handler.WithGroup(name)}
}

// fanout sends every record to all handlers.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(as []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(as)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// consoleHandler writes one line per record:
//
//	15:04:05.000 INF [scene] shape committed handle=3 (canvas.go:120)
//
// The component attribute is shown in brackets instead of as key=value.
type consoleHandler struct {
	w         io.Writer
	mu        *sync.Mutex
	addSource bool
	component string
	prefix    string // open groups, dot-terminated
	attrs     string // preformatted " k=v" pairs
}

func (h *consoleHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= level.Level() }

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	b.WriteString(t.Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	if h.component != "" {
		b.WriteString(" [" + h.component + "]")
	}
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})
	if h.addSource && r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		b.WriteString(" (" + filepath.Base(f.File) + ":" + strconv.Itoa(f.Line) + ")")
	}
	b.WriteByte('\n')
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(as []slog.Attr) slog.Handler {
	c := *h
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range as {
		if h.prefix == "" && a.Key == componentKey {
			c.component = a.Value.String()
			continue
		}
		writeAttr(&b, h.prefix, a)
	}
	c.attrs = b.String()
	return &c
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix += name + "."
	return &c
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, g := range v.Group() {
			writeAttr(b, p, g)
		}
		return
	}
	if a.Key == "" {
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix + a.Key + "=")
	b.WriteString(valueString(v))
}

func valueString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindString:
		if s := v.String(); s == "" || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
	}
	return v.String()
}

func levelTag(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	}
	return "ERR"
}
