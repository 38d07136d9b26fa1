/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import "gopaint/internal/pointer"

// gesture turns the host's mouse callbacks into a clean raw event stream.
// Desktop toolkits report a drag through both hover and drag callbacks and
// may end it with either a button-up or a drag-end; gesture drops repeated
// positions and emits exactly one release per press.
type gesture struct {
	emit   func(pointer.Raw)
	down   bool
	button pointer.Button
	last   pointer.Raw
	seen   bool
}

func newGesture(emit func(pointer.Raw)) *gesture { return &gesture{emit: emit} }

func (g *gesture) send(r pointer.Raw) {
	g.last, g.seen = r, true
	g.emit(r)
}

// press starts a gesture. A second press while one is held is ignored.
func (g *gesture) press(x, y float32, b pointer.Button) {
	if g.down {
		return
	}
	g.down, g.button = true, b
	g.send(pointer.Raw{Phase: pointer.Press, X: x, Y: y, Button: b})
}

// move reports the pointer position, held or not.
func (g *gesture) move(x, y float32) {
	if g.seen && g.last.Phase == pointer.Move && g.last.X == x && g.last.Y == y {
		return
	}
	g.send(pointer.Raw{Phase: pointer.Move, X: x, Y: y, Button: g.button})
}

// release ends the gesture at x, y.
func (g *gesture) release(x, y float32) {
	if !g.down {
		return
	}
	g.down = false
	g.send(pointer.Raw{Phase: pointer.Release, X: x, Y: y, Button: g.button})
}

// end releases at the last known position when the host ends a drag
// without a button-up.
func (g *gesture) end() {
	if g.down {
		g.release(g.last.X, g.last.Y)
	}
}

// Down reports whether a button is held.
func (g *gesture) Down() bool { return g.down }
