/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

// Z-order operations. Each returns false when h is unknown or already at
// the requested end of the stack.

func (c *Canvas) MoveUp(h Handle) bool {
	i := c.index(h)
	if i < 0 || i == len(c.items)-1 {
		return false
	}
	c.items[i], c.items[i+1] = c.items[i+1], c.items[i]
	c.RequestRedraw()
	return true
}

func (c *Canvas) MoveDown(h Handle) bool {
	i := c.index(h)
	if i <= 0 {
		return false
	}
	c.items[i], c.items[i-1] = c.items[i-1], c.items[i]
	c.RequestRedraw()
	return true
}

func (c *Canvas) BringToFront(h Handle) bool {
	i := c.index(h)
	if i < 0 || i == len(c.items)-1 {
		return false
	}
	it := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.items = append(c.items, it)
	c.RequestRedraw()
	return true
}

func (c *Canvas) SendToBack(h Handle) bool {
	i := c.index(h)
	if i <= 0 {
		return false
	}
	it := c.items[i]
	copy(c.items[1:i+1], c.items[:i])
	c.items[0] = it
	c.RequestRedraw()
	return true
}

// ZIndex is the position of h counted from the bottom, or -1.
func (c *Canvas) ZIndex(h Handle) int { return c.index(h) }
