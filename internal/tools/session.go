/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tools

import (
	"log/slog"

	"gopaint/internal/pointer"
	"gopaint/internal/scene"
)

// Session is the state owned by the active tool between activation and
// teardown. Close must release every subscription and discard any
// in-progress geometry; it is safe to call more than once.
type Session interface {
	Kind() Kind
	// Busy is true while a gesture has an in-progress shape.
	Busy() bool
	Close()
}

// base carries the subscription bookkeeping shared by all sessions.
type base struct {
	kind Kind
	eng  Engine
	opts Options
	log  *slog.Logger
	subs []scene.Subscription
	live bool
}

func newBase(k Kind, eng Engine, opts Options, l *slog.Logger) base {
	return base{kind: k, eng: eng, opts: opts, log: l.With(slog.String("tool", k.String())), live: true}
}

func (b *base) Kind() Kind { return b.kind }

// on registers a consuming tool-layer handler. Invocations after release are ignored.
func (b *base) on(phase pointer.Phase, fn func(ev pointer.Event)) {
	b.subs = append(b.subs, b.eng.Subscribe(scene.LayerTool, phase, func(ev pointer.Event) bool {
		if !b.live {
			return false
		}
		fn(ev)
		return true
	}))
}

// observe registers a non-consuming handler so the engine built-ins still
// receive the event.
func (b *base) observe(phase pointer.Phase, fn func(ev pointer.Event)) {
	b.subs = append(b.subs, b.eng.Subscribe(scene.LayerTool, phase, func(ev pointer.Event) bool {
		if b.live {
			fn(ev)
		}
		return false
	}))
}

// detach cancels all subscriptions and marks the session dead.
func (b *base) detach() {
	for _, s := range b.subs {
		s.Cancel()
	}
	b.subs = nil
	b.live = false
}

// discard removes transient scene items, ignoring ones already gone.
func (b *base) discard(hs ...scene.Handle) {
	for _, h := range hs {
		if h != scene.None {
			b.eng.Remove(h)
		}
	}
}

// open creates the session for k. Polygon sessions report closure through onClosed.
func open(k Kind, eng Engine, opts Options, l *slog.Logger, onClosed func(scene.Handle)) Session {
	switch k {
	case Brush:
		return newBrushSession(eng, opts, l)
	case Line, Rectangle, Ellipse:
		return newDragSession(k, eng, opts, l)
	case Polygon:
		return newPolygonSession(eng, opts, l, onClosed)
	case Text:
		return newTextSession(eng, opts, l)
	case Fill:
		return newFillSession(eng, opts, l)
	case Measure:
		return newMeasureSession(eng, opts, l)
	default:
		return newSelectSession(eng, opts, l)
	}
}
