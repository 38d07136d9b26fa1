/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerKey: 10, MinInterval: 10 * time.Millisecond})
	k := Key(1)
	t0 := time.Now()
	m.Record(Snapshot{Key: k, Blob: []byte("a"), TS: t0})
	m.Record(Snapshot{Key: k, Blob: []byte("b"), TS: t0.Add(20 * time.Millisecond)})
	if _, keys, total := m.Stats(); keys != 1 || total != 2 {
		t.Fatalf("expected 1 key and 2 snapshots, got keys=%d total=%d", keys, total)
	}
	prev, ok := m.Undo(k, []byte("c"))
	if !ok || string(prev) != "b" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, prev)
	}
	next, ok := m.Redo(k, prev)
	if !ok || string(next) != "c" {
		t.Fatalf("redo expected 'c', got ok=%v blob=%q", ok, next)
	}
	if _, ok := m.Redo(k, next); ok {
		t.Fatalf("redo stack should be empty")
	}
}

func TestCoalesceKeepsOlderState(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerKey: 10, MinInterval: 50 * time.Millisecond})
	k := Key(2)
	t0 := time.Now()
	m.Record(Snapshot{Key: k, Blob: []byte("1"), TS: t0})
	m.Record(Snapshot{Key: k, Blob: []byte("2"), TS: t0.Add(10 * time.Millisecond)})
	m.Record(Snapshot{Key: k, Blob: []byte("3"), TS: t0.Add(40 * time.Millisecond)})
	if _, _, total := m.Stats(); total != 1 {
		t.Fatalf("expected coalesced to 1 snapshot, got %d", total)
	}
	prev, ok := m.Undo(k, []byte("4"))
	if !ok || string(prev) != "1" {
		t.Fatalf("expected the pre-burst state '1', got ok=%v blob=%q", ok, prev)
	}
}

func TestDifferentLabelsDoNotCoalesce(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Second})
	k := Key(3)
	t0 := time.Now()
	m.Record(Snapshot{Key: k, Label: "a", Blob: []byte("1"), TS: t0})
	m.Record(Snapshot{Key: k, Label: "b", Blob: []byte("2"), TS: t0.Add(time.Millisecond)})
	if prev, ok := m.Undo(k, []byte("3")); !ok || string(prev) != "2" {
		t.Fatalf("undo = %q %v, want the state before the second edit", prev, ok)
	}
	if prev, ok := m.Undo(k, []byte("2")); !ok || string(prev) != "1" {
		t.Fatalf("second undo = %q %v", prev, ok)
	}
}

func TestRecordClearsRedo(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Millisecond})
	k := Key(5)
	t0 := time.Now()
	m.Record(Snapshot{Key: k, Blob: []byte("a"), TS: t0})
	m.Undo(k, []byte("b"))
	m.Record(Snapshot{Key: k, Blob: []byte("a"), TS: t0.Add(time.Second)})
	if _, ok := m.Redo(k, nil); ok {
		t.Fatalf("a new change should drop redo")
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 20, MaxPerKey: 2, MinInterval: time.Millisecond})
	k := Key(3)
	t0 := time.Now()
	for i := 0; i < 10; i++ {
		m.Record(Snapshot{Key: k, Blob: []byte("xxxxx"), TS: t0.Add(time.Duration(i) * time.Second)})
	}
	if _, _, total := m.Stats(); total > 2 {
		t.Fatalf("expected MaxPerKey cap to limit to 2, got %d", total)
	}
}

func TestForgetAndStats(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MaxPerKey: 10, MinInterval: time.Millisecond})
	k := Key(7)
	m.Record(Snapshot{Key: k, Blob: []byte("abcdef"), TS: time.Now()})
	if !m.CanUndo(k) {
		t.Fatalf("expected history")
	}
	m.Forget(k)
	tb, keys, total := m.Stats()
	if tb != 0 || keys != 0 || total != 0 || m.CanUndo(k) {
		t.Fatalf("expected cleared stats to be zero, got tb=%d keys=%d total=%d", tb, keys, total)
	}
}

func TestGlobalPruneAcrossKeys(t *testing.T) {
	m := NewManager(Config{MaxBytes: 8, MinInterval: time.Millisecond})
	t0 := time.Now()
	m.Record(Snapshot{Key: 1, Blob: []byte("xxxx"), TS: t0})
	m.Record(Snapshot{Key: 2, Blob: []byte("yyyy"), TS: t0.Add(time.Second)})
	m.Record(Snapshot{Key: 2, Blob: []byte("zzzz"), TS: t0.Add(2 * time.Second)})

	if _, ok := m.Undo(1, nil); ok {
		t.Fatalf("expected key 1 to have been pruned")
	}
	if _, ok := m.Undo(2, nil); !ok {
		t.Fatalf("expected key 2 to have snapshots")
	}
}
