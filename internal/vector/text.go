/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "unicode/utf8"

// Approximate glyph metrics used for bounds and picking. The exporters lay
// text out with real font faces; these only need to be close.
const (
	avgAdvance = 0.55
	lineHeight = 1.16
)

// TextNode is a single-line editable label positioned by its top-left corner
// in local space. Fill is the glyph color.
type TextNode struct {
	baseNode
	text     string
	origin   Pt
	size     float32
	family   string
	editing  bool
	selStart int // rune offsets
	selEnd   int
}

func NewText(text string, at Pt, size float32, family string, fill Fill) *TextNode {
	return &TextNode{baseNode: newBase(fill, Stroke{}), text: text, origin: at, size: size, family: family}
}

func (n *TextNode) Text() string       { return n.text }
func (n *TextNode) Origin() Pt         { return n.origin }
func (n *TextNode) FontSize() float32  { return n.size }
func (n *TextNode) FontFamily() string { return n.family }
func (n *TextNode) Editing() bool      { return n.editing }

func (n *TextNode) SetFontSize(s float32) { n.size = s }
func (n *TextNode) SetOrigin(p Pt)        { n.origin = p }

// SetText replaces the content and collapses the selection to the end.
func (n *TextNode) SetText(s string) {
	n.text = s
	end := utf8.RuneCountInString(s)
	n.selStart, n.selEnd = end, end
}

// EnterEditing puts the node in edit mode with the caret at the end.
func (n *TextNode) EnterEditing() {
	if n.editing {
		return
	}
	n.editing = true
	end := utf8.RuneCountInString(n.text)
	n.selStart, n.selEnd = end, end
}

func (n *TextNode) ExitEditing() { n.editing = false }

// SelectAll selects the whole content; only meaningful while editing.
func (n *TextNode) SelectAll() {
	n.selStart, n.selEnd = 0, utf8.RuneCountInString(n.text)
}

// Selection returns the selected rune range [start, end).
func (n *TextNode) Selection() (int, int) { return n.selStart, n.selEnd }

// Insert replaces the selection with s and leaves the caret after it.
// It does nothing unless the node is in edit mode.
func (n *TextNode) Insert(s string) {
	if !n.editing {
		return
	}
	r := []rune(n.text)
	start, end := clampRange(n.selStart, n.selEnd, len(r))
	out := make([]rune, 0, len(r)+len(s))
	out = append(out, r[:start]...)
	out = append(out, []rune(s)...)
	out = append(out, r[end:]...)
	n.text = string(out)
	caret := start + utf8.RuneCountInString(s)
	n.selStart, n.selEnd = caret, caret
}

// Backspace deletes the selection or the rune before the caret.
func (n *TextNode) Backspace() {
	if !n.editing {
		return
	}
	r := []rune(n.text)
	start, end := clampRange(n.selStart, n.selEnd, len(r))
	if start == end {
		if start == 0 {
			return
		}
		start--
	}
	n.text = string(append(r[:start:start], r[end:]...))
	n.selStart, n.selEnd = start, start
}

func clampRange(a, b, n int) (int, int) {
	if a > b {
		a, b = b, a
	}
	if a < 0 {
		a = 0
	}
	if b > n {
		b = n
	}
	if a > b {
		a = b
	}
	return a, b
}

// LocalRect is the approximate text box in local space.
func (n *TextNode) LocalRect() Rect {
	w := float32(utf8.RuneCountInString(n.text)) * n.size * avgAdvance
	return Rect{X: n.origin.X, Y: n.origin.Y, W: w, H: n.size * lineHeight}
}

func (n *TextNode) Bounds() Rect { return n.xf.TransformRect(n.LocalRect()) }

func (n *TextNode) Hit(p Pt) bool { return n.LocalRect().Contains(n.local(p)) }
