/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"gopaint/internal/pointer"
	"gopaint/internal/vector"
)

func (c *Canvas) View() pointer.View { return c.view }

// SetView replaces the view, e.g. with configured zoom limits.
func (c *Canvas) SetView(v pointer.View) {
	c.view = v
	c.view.SetZoom(v.Zoom)
	c.RequestRedraw()
}

func (c *Canvas) Zoom() float32 {
	if c.view.Zoom <= 0 {
		return 1
	}
	return c.view.Zoom
}

func (c *Canvas) SetZoom(z float32) {
	c.view.SetZoom(z)
	c.RequestRedraw()
}

// ZoomAt zooms around a screen position (wheel zoom).
func (c *Canvas) ZoomAt(screen vector.Pt, factor float32) {
	c.view.ZoomAt(screen, factor)
	c.RequestRedraw()
}

// Pan shifts the view by a screen-space delta.
func (c *Canvas) Pan(d vector.Pt) {
	c.view.Pan = c.view.Pan.Add(d)
	c.RequestRedraw()
}

// ResetZoom returns to 100% with no pan.
func (c *Canvas) ResetZoom() {
	c.view.Reset()
	c.RequestRedraw()
}
