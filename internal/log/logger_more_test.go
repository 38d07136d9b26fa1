/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("GOPAINT_LOG_LEVEL", "warn")
	t.Setenv("GOPAINT_LOG_FORMAT", "json")
	t.Setenv("GOPAINT_LOG_SOURCE", "1")
	t.Setenv("GOPAINT_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	t.Setenv("GOPAINT_LOG_LEVEL", " ")
	t.Setenv("GOPAINT_LOG_SOURCE", "maybe")
	if opts := FromEnv(); opts.Level != "info" || opts.AddSource {
		t.Fatalf("blank values should fall back: %+v", opts)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, " WARNING ": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo, "loud": slog.LevelInfo}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleHandlerFormatsAttrs(t *testing.T) {
	level.Set(slog.LevelInfo)
	var buf bytes.Buffer
	var h slog.Handler = &consoleHandler{w: &buf, mu: new(sync.Mutex)}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("debug should be filtered at info")
	}
	h = h.WithAttrs([]slog.Attr{slog.String(componentKey, "scene"), slog.String("k", "v")}).WithGroup("grp")

	r := slog.NewRecord(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), slog.LevelError, "boom", 0)
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.String("msg", "two words"),
		slog.Group("pt", slog.Int("x", 1)))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"03:04:05.000 ERR [scene] boom", " k=v", " grp.n=42", " grp.pi=3.14", ` grp.msg="two words"`, " grp.pt.x=1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
	if strings.Contains(out, "component=") {
		t.Fatalf("component should only appear in brackets: %q", out)
	}
}

func TestFanoutHonorsEachLevel(t *testing.T) {
	var a, b bytes.Buffer
	f := fanout{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	slog.New(f).Info("only first")
	if !strings.Contains(a.String(), "only first") || b.Len() != 0 {
		t.Fatalf("a=%q b=%q", a.String(), b.String())
	}
}
