/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo keeps bounded per-object undo/redo stacks of opaque state
// blobs. Each entry is the state an object had before a change.
package undo

import (
	"sync"
	"time"
)

// Key identifies the object a snapshot belongs to, typically a scene handle.
type Key uint64

// Snapshot is a reversible state blob for one object. Blob content is
// opaque to the manager; its size is estimated as len(Blob). Label names
// the edit that follows the snapshot; only edits with the same label
// coalesce.
type Snapshot struct {
	Key   Key
	Label string
	Blob  []byte
	TS    time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerKey limits the undo depth per object (0 means unlimited).
	MaxPerKey int
	// MinInterval coalesces snapshots with the same label recorded within
	// the interval for the same object. The older state is kept so one undo
	// reverts the whole burst.
	MinInterval time.Duration
}

// Manager holds undo/redo stacks per object. It is safe for concurrent use.
type Manager struct {
	cfg  Config
	mu   sync.Mutex
	undo map[Key][]Snapshot
	redo map[Key][]Snapshot

	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[Key][]Snapshot), redo: make(map[Key][]Snapshot)}
}

// Record stores the state an object had right before a change. A record
// within MinInterval of the previous one for the same key and label only
// refreshes its timestamp. Any record invalidates redo for that key.
func (m *Manager) Record(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redo[s.Key] = nil
	stack := m.undo[s.Key]
	if n := len(stack); n > 0 && stack[n-1].Label == s.Label && s.TS.Sub(stack[n-1].TS) < m.cfg.MinInterval {
		stack[n-1].TS = s.TS
		return
	}
	m.undo[s.Key] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(s.Key)
}

// Undo pops the most recent prior state for key. current is the state
// being replaced and becomes available to Redo.
func (m *Manager) Undo(key Key, current []byte) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[key]
	if len(stack) == 0 {
		return nil, false
	}
	s := stack[len(stack)-1]
	m.undo[key] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[key] = append(m.redo[key], Snapshot{Key: key, Blob: current, TS: s.TS})
	return s.Blob, true
}

// Redo reapplies the state most recently undone for key.
func (m *Manager) Redo(key Key, current []byte) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[key]
	if len(r) == 0 {
		return nil, false
	}
	s := r[len(r)-1]
	m.redo[key] = r[:len(r)-1]
	// a redo must not coalesce with older history
	m.undo[key] = append(m.undo[key], Snapshot{Key: key, Blob: current, TS: time.Time{}})
	m.totalBytes += len(current)
	m.enforceCapsLocked(key)
	return s.Blob, true
}

// CanUndo reports whether key has history.
func (m *Manager) CanUndo(key Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[key]) > 0
}

// Forget drops all history of key, e.g. when the object is deleted.
func (m *Manager) Forget(key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[key] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, key)
	delete(m.redo, key)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, keys int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, keys, totalSnapshots
}

func (m *Manager) enforceCapsLocked(key Key) {
	if m.cfg.MaxPerKey > 0 {
		stack := m.undo[key]
		if len(stack) > m.cfg.MaxPerKey {
			drop := len(stack) - m.cfg.MaxPerKey
			for i := 0; i < drop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[key] = append([]Snapshot{}, stack[drop:]...)
		}
	}
	// global cap: prune the oldest entry across all keys
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		var oldestKey Key
		found := false
		var oldestTS time.Time
		for k, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldestKey, oldestTS, found = k, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		stack := m.undo[oldestKey]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestKey] = stack[1:]
		if len(m.undo[oldestKey]) == 0 {
			delete(m.undo, oldestKey)
		}
	}
}
