/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gopaint/internal/config"
	"gopaint/internal/crash"
	applog "gopaint/internal/log"
	"gopaint/internal/scene"
	"gopaint/internal/storage"
	"gopaint/internal/telemetry"
	"gopaint/internal/ui"
	"gopaint/internal/version"
)

// cliApp carries what every command needs once the config is loaded.
type cliApp struct {
	cfg   config.AppConfig
	token string
	log   *slog.Logger
}

// load reads the config and starts logging and telemetry.
func (a *cliApp) load(configPath string) error {
	if configPath != "" {
		if err := os.Setenv(config.EnvConfigPath, configPath); err != nil {
			return err
		}
	}
	cfg, token, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg, a.token = cfg, token
	applog.Init(cfg.Logging.Options())
	telemetry.NewDefault(cfg.General.Telemetry())
	a.log = applog.WithComponent("cli")
	a.log.Debug("config loaded", slog.String("version", version.String()))
	return nil
}

// openDocument decodes the drawing at path into a fresh scene.
func openDocument(path string) (*storage.DocumentHandle, *scene.Canvas, error) {
	dh, err := storage.Open(path)
	if err != nil {
		return nil, nil, err
	}
	sc := scene.NewCanvas(dh.Drawing.Width, dh.Drawing.Height)
	if err := storage.Decode(dh.Drawing, sc); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return dh, sc, nil
}

func isDocument(path string) bool { return strings.HasSuffix(strings.ToLower(path), storage.Ext) }

func newRootCmd() *cobra.Command {
	a := &cliApp{}
	var configPath string
	var verbose bool
	root := &cobra.Command{
		Use:   "gopaint [drawing]",
		Short: "Vector paint program with a drawing catalog and server",
		Long: `gopaint draws shapes, freehand strokes, text and measurements on a canvas,
filters imported images and saves drawings as .gopaint.json documents.
Without a subcommand it opens the desktop editor.`,
		Version:       version.String(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(configPath); err != nil {
				return err
			}
			if verbose {
				applog.SetLevel("debug")
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error { return runGUI(args) },
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is the per-user config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	root.AddCommand(
		newGUICmd(),
		newRenderCmd(a),
		newHistogramCmd(a),
		newFilterCmd(a),
		newCatalogCmd(a),
		newServeCmd(a),
		newPushCmd(a),
		newVersionCmd(),
	)
	return root
}

func newGUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui [drawing]",
		Short: "Open the desktop editor (build with -tags fyne)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  func(_ *cobra.Command, args []string) error { return runGUI(args) },
	}
}

func runGUI(args []string) error {
	var doc string
	if len(args) > 0 {
		doc = args[0]
	}
	return ui.Run(doc)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "GoPaint", version.String())
		},
	}
}

func main() {
	defer crash.Recover(nil)
	err := newRootCmd().Execute()
	telemetry.Shutdown()
	_ = applog.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
