/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	applog "gopaint/internal/log"
	"gopaint/internal/scene"
	"gopaint/internal/undo"
	"gopaint/internal/vector"
)

// ErrNotImage is returned when the active shape is missing or not an image.
var ErrNotImage = errors.New("active object is not an image")

// ErrNothingToUndo is returned by UndoLast when the image has no history.
var ErrNothingToUndo = errors.New("no filter change to undo")

// Scene is what the service needs from the engine.
type Scene interface {
	Node(h scene.Handle) (vector.Node, bool)
	Active() scene.Handle
	RequestRedraw()
}

// Spec is the serializable form of one filter.
type Spec struct {
	Kind  Kind    `json:"kind"`
	Value float64 `json:"value,omitempty"`
}

// SpecOf describes f.
func SpecOf(f vector.ImageFilter) Spec { return Spec{Kind: Kind(f.Name()), Value: f.Amount()} }

// Build turns specs back into filters, skipping unknown kinds.
func Build(specs []Spec) []vector.ImageFilter {
	out := make([]vector.ImageFilter, 0, len(specs))
	for _, s := range specs {
		f, err := New(s.Kind, s.Value)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Service edits the filter chain of the active image.
type Service struct {
	sc      Scene
	history *undo.Manager
	now     func() time.Time
	log     *slog.Logger
}

// NewService creates a service. Slider changes within coalesce of each other
// collapse into one undo step; zero uses the undo default.
func NewService(sc Scene, coalesce time.Duration) *Service {
	return &Service{
		sc:      sc,
		history: undo.NewManager(undo.Config{MaxPerKey: 50, MinInterval: coalesce}),
		now:     time.Now,
		log:     applog.WithComponent("filter"),
	}
}

// activeImage resolves the active image, logging a warning when there is none.
func (s *Service) activeImage(op string) (scene.Handle, *vector.ImageNode, error) {
	if s == nil || s.sc == nil {
		return scene.None, nil, ErrNotImage
	}
	h := s.sc.Active()
	if n, ok := s.sc.Node(h); ok {
		if img, ok := n.(*vector.ImageNode); ok {
			return h, img, nil
		}
	}
	s.log.Warn(op+": select an image first", slog.Uint64("active", uint64(h)))
	return scene.None, nil, ErrNotImage
}

func encodeChain(fs []vector.ImageFilter) []byte {
	specs := make([]Spec, len(fs))
	for i, f := range fs {
		specs[i] = SpecOf(f)
	}
	b, _ := json.Marshal(specs)
	return b
}

func decodeChain(b []byte) ([]vector.ImageFilter, error) {
	var specs []Spec
	if err := json.Unmarshal(b, &specs); err != nil {
		return nil, fmt.Errorf("decode filter chain: %w", err)
	}
	return Build(specs), nil
}

// record snapshots the chain before an edit. Only repeated edits of the
// same kind coalesce, so a slider drag is one step but a different filter
// is always its own.
func (s *Service) record(h scene.Handle, img *vector.ImageNode, edit string) {
	s.history.Record(undo.Snapshot{Key: undo.Key(h), Label: edit, Blob: encodeChain(img.Filters()), TS: s.now()})
}

// Apply adds filter kind to the active image, replacing one of the same
// kind. Sharpen and blur share a slot.
func (s *Service) Apply(kind Kind, value float64) error {
	h, img, err := s.activeImage("apply filter")
	if err != nil {
		return err
	}
	f, err := New(kind, value)
	if err != nil {
		return err
	}
	s.record(h, img, "apply "+string(kind))
	chain := img.Filters()
	replaced := false
	for i, old := range chain {
		k := Kind(old.Name())
		if k == kind || (k.convolution() && kind.convolution()) {
			chain[i] = f
			replaced = true
			break
		}
	}
	if !replaced {
		chain = append(chain, f)
	}
	img.SetFilters(chain)
	s.sc.RequestRedraw()
	s.log.Debug("filter applied", slog.String("kind", string(kind)), slog.Float64("value", f.Amount()))
	return nil
}

// Remove drops filter kind from the active image. It reports whether a
// filter was removed.
func (s *Service) Remove(kind Kind) (bool, error) {
	h, img, err := s.activeImage("remove filter")
	if err != nil {
		return false, err
	}
	chain := img.Filters()
	for i, f := range chain {
		if Kind(f.Name()) == kind {
			s.record(h, img, "remove "+string(kind))
			img.SetFilters(append(chain[:i], chain[i+1:]...))
			s.sc.RequestRedraw()
			return true, nil
		}
	}
	return false, nil
}

// Active returns the filter chain of the active image.
func (s *Service) Active() ([]Spec, error) {
	_, img, err := s.activeImage("list filters")
	if err != nil {
		return nil, err
	}
	out := make([]Spec, 0)
	for _, f := range img.Filters() {
		out = append(out, SpecOf(f))
	}
	return out, nil
}

// UndoLast restores the chain that preceded the last apply or remove.
func (s *Service) UndoLast() error {
	h, img, err := s.activeImage("undo filter")
	if err != nil {
		return err
	}
	prev, ok := s.history.Undo(undo.Key(h), encodeChain(img.Filters()))
	if !ok {
		return ErrNothingToUndo
	}
	chain, err := decodeChain(prev)
	if err != nil {
		return err
	}
	img.SetFilters(chain)
	s.sc.RequestRedraw()
	return nil
}

// RedoLast reapplies the change most recently undone.
func (s *Service) RedoLast() error {
	h, img, err := s.activeImage("redo filter")
	if err != nil {
		return err
	}
	next, ok := s.history.Redo(undo.Key(h), encodeChain(img.Filters()))
	if !ok {
		return ErrNothingToUndo
	}
	chain, err := decodeChain(next)
	if err != nil {
		return err
	}
	img.SetFilters(chain)
	s.sc.RequestRedraw()
	return nil
}

// CanUndo reports whether the active image has filter history.
func (s *Service) CanUndo() bool {
	if s == nil || s.sc == nil {
		return false
	}
	return s.history.CanUndo(undo.Key(s.sc.Active()))
}

// Forget drops the history of a removed shape.
func (s *Service) Forget(h scene.Handle) { s.history.Forget(undo.Key(h)) }

// Crop cuts the active image down to the part inside r (scene units).
func (s *Service) Crop(r vector.Rect) error {
	_, img, err := s.activeImage("crop")
	if err != nil {
		return err
	}
	local := img.Transform().Invert().TransformRect(r)
	px := image.Rect(
		int(math.Floor(float64(local.X))), int(math.Floor(float64(local.Y))),
		int(math.Ceil(float64(local.X+local.W))), int(math.Ceil(float64(local.Y+local.H))),
	)
	if !img.Crop(px) {
		return fmt.Errorf("crop %v: outside the image", r)
	}
	s.sc.RequestRedraw()
	return nil
}

// RemoveCrop restores the uncropped original of the active image.
func (s *Service) RemoveCrop() (bool, error) {
	_, img, err := s.activeImage("remove crop")
	if err != nil {
		return false, err
	}
	if !img.Uncrop() {
		return false, nil
	}
	s.sc.RequestRedraw()
	return true, nil
}
