/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"gopaint/internal/export"
)

const watchDebounce = 200 * time.Millisecond

func newRenderCmd(a *cliApp) *cobra.Command {
	var out string
	var watch bool
	cmd := &cobra.Command{
		Use:   "render <drawing> -o out.(png|svg|pdf)",
		Short: "Render a drawing to PNG, SVG or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := export.FormatOf(out); err != nil {
				return err
			}
			doc := args[0]
			if err := render(doc, out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Rendered", out)
			if !watch {
				return nil
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watchFile(ctx, doc, func() {
				if err := render(doc, out); err != nil {
					a.log.Error("re-render failed", slog.String("doc", doc), slog.Any("err", err))
					return
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Rendered", out)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file; the extension picks the format")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-render whenever the drawing changes")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func render(doc, out string) error {
	dh, sc, err := openDocument(doc)
	if err != nil {
		return err
	}
	_, err = export.SaveAs(out, sc, export.PDFOptions{Title: dh.Drawing.Title})
	return err
}

// watchFile calls fn after path changes until ctx ends. Documents are
// replaced by rename on save, so the directory is watched, not the file.
func watchFile(ctx context.Context, path string, fn func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			fn()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
}
