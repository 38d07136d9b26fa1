/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tools implements the interactive shape-authoring core: one Session
// per active tool translating press/move/release into a shape lifecycle, the
// polygon authoring sub-machine, the per-vertex edit controller and the
// Manager that switches between them.
package tools

import (
	"gopaint/internal/pointer"
	"gopaint/internal/scene"
	"gopaint/internal/vector"
)

// Engine is the slice of the scene the tools drive. *scene.Canvas satisfies it.
type Engine interface {
	Add(n vector.Node) scene.Handle
	Remove(h scene.Handle) bool
	Clear()
	Node(h scene.Handle) (vector.Node, bool)
	ShapesAt(p vector.Pt) []scene.Handle
	SetActive(h scene.Handle)
	Active() scene.Handle
	RequestRedraw()

	Subscribe(layer scene.Layer, phase pointer.Phase, fn scene.HandlerFunc) scene.Subscription
	Dispatch(r pointer.Raw)
	Pointer(r pointer.Raw) vector.Pt
	OnRemove(fn func(scene.Handle))

	SetDrawingMode(on bool, brush vector.Stroke)
	SetSelection(on bool)
	Zoom() float32
}

var _ Engine = (*scene.Canvas)(nil)
