/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func lastJSONLine(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", last, err)
	}
	return m
}

func TestFileLogCarriesStaticAndContextAttrs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gopaint.log")
	var console bytes.Buffer
	Init(Options{Level: "debug", File: path, Console: &console})
	t.Cleanup(func() { _ = Close() })

	ctx := WithDrawing(context.Background(), "d-42")
	WithOperation(WithComponent("storage"), "save").InfoContext(ctx, "saved", slog.String("k", "v"))
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	m := lastJSONLine(t, path)
	for k, want := range map[string]string{"app": "gopaint", "component": "storage", "op": "save", "msg": "saved", "k": "v", "drawing": "d-42"} {
		if m[k] != want {
			t.Fatalf("%s = %v, want %q (record %v)", k, m[k], want, m)
		}
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if !strings.Contains(console.String(), "INF [storage] saved") {
		t.Fatalf("console output %q", console.String())
	}
}

func TestSetLevelFiltersAtRuntime(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Console: &buf})
	l := WithComponent("tools")
	l.Info("hidden")
	SetLevel("debug")
	if Level() != slog.LevelDebug {
		t.Fatalf("level = %v", Level())
	}
	l.Debug("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "DBG [tools] shown") {
		t.Fatalf("output %q", out)
	}
}

func TestJSONConsole(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Format: "JSON", Console: &buf})
	WithComponent("ui").Warn("careful")
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("console should be json: %v %q", err, buf.String())
	}
	if m["level"] != "WARN" || m["component"] != "ui" {
		t.Fatalf("record %v", m)
	}
}
