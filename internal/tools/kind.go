/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tools

import (
	"fmt"
	"strings"
)

// Kind is the closed set of drawing tools. Exactly one is active at a time.
type Kind uint8

const (
	Select Kind = iota
	Brush
	Line
	Rectangle
	Ellipse
	Polygon
	Text
	Fill
	Measure
)

var kindNames = [...]string{"select", "brush", "line", "rectangle", "ellipse", "polygon", "text", "fill", "measure"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("tool(%d)", uint8(k))
}

// Kinds lists every tool in toolbar order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind accepts the tool names plus the short "rect" alias.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "rect" {
		return Rectangle, nil
	}
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return Select, fmt.Errorf("unknown tool %q", s)
}

// EditingCapable tools keep polygon vertex handles alive across a switch.
func (k Kind) EditingCapable() bool { return k == Polygon || k == Select }

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
