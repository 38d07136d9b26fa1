/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user settings of gopaint. Settings live in a
// YAML file in the user config directory; GOPAINT_* variables override
// them at runtime and are never written back. The backend token is kept
// in the OS keyring rather than the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	applog "gopaint/internal/log"
	"gopaint/internal/pointer"
	"gopaint/internal/telemetry"
	"gopaint/internal/tools"
	"gopaint/internal/vector"
)

// Version is the current config_version. Unknown fields are ignored.
const Version = 1

const fileName = "config.yaml"

type BackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// Addr and DatabaseURL configure `gopaint serve`.
	Addr        string `yaml:"addr"`
	DatabaseURL string `yaml:"database_url"`
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // system, light or dark
	EnableServer   bool   `yaml:"enable_server"`
	DocumentsDir   string `yaml:"documents_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// ToolsConfig holds the initial tool options. Colors are #rrggbb[aa].
type ToolsConfig struct {
	StrokeColor       string  `yaml:"stroke_color"`
	StrokeWidth       float32 `yaml:"stroke_width"`
	FillColor         string  `yaml:"fill_color"`
	BrushWidth        float32 `yaml:"brush_width"`
	FontSize          float32 `yaml:"font_size"`
	FontFamily        string  `yaml:"font_family"`
	Unit              string  `yaml:"unit"`
	DPI               float32 `yaml:"dpi"`
	ClosingRadius     float32 `yaml:"closing_radius"`
	EllipseFromCenter bool    `yaml:"ellipse_from_center"`
	// MeasureLength is the length of placed measurements, in Unit.
	MeasureLength float32 `yaml:"measure_length"`
}

type ViewConfig struct {
	MinZoom float32 `yaml:"min_zoom"`
	MaxZoom float32 `yaml:"max_zoom"`
	// SnapThreshold snaps dragged shapes to other shapes within this many
	// scene pixels; 0 turns snapping off.
	SnapThreshold float32 `yaml:"snap_threshold"`
	SnapCenters   bool    `yaml:"snap_centers"`
}

type CatalogConfig struct {
	// Path of the SQLite catalog; empty means next to the config file.
	Path string `yaml:"path"`
}

// AppConfig is the whole settings file.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Backend       BackendConfig `yaml:"backend"`
	Logging       LoggingConfig `yaml:"logging"`
	Tools         ToolsConfig   `yaml:"tools"`
	View          ViewConfig    `yaml:"view"`
	Catalog       CatalogConfig `yaml:"catalog"`
}

// Defaults returns the settings used when no file exists.
func Defaults() AppConfig {
	o := tools.DefaultOptions()
	return AppConfig{
		ConfigVersion: Version,
		General:       GeneralConfig{Theme: "system"},
		Backend:       BackendConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000, Addr: ":8080"},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
		Tools: ToolsConfig{
			StrokeColor:   o.StrokeColor.Hex(),
			StrokeWidth:   o.StrokeWidth,
			FillColor:     o.FillColor.Hex(),
			BrushWidth:    o.BrushWidth,
			FontSize:      o.FontSize,
			FontFamily:    o.FontFamily,
			Unit:          string(o.Unit),
			DPI:           o.DPI,
			ClosingRadius: o.ClosingRadius,
			MeasureLength: o.MeasureLength,
		},
		View: ViewConfig{MinZoom: pointer.DefaultMinZoom, MaxZoom: pointer.DefaultMaxZoom},
	}
}

// ConfigDir is the directory of the settings file, catalog and logs.
func ConfigDir() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return filepath.Dir(p), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(base, "gopaint"), nil
}

// ConfigPath is the settings file, GOPAINT_CONFIG when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load returns the defaults overlaid with the settings file and then the
// environment, plus the stored backend token. A missing file is not an
// error and neither is an unavailable keyring.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var file AppConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &file)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, "", fmt.Errorf("read %s: %w", path, err)
	}
	applyEnv(&cfg, os.Getenv)
	tok, _ := LoadToken()
	return cfg, tok, nil
}

// Save writes cfg to the settings file and, when token is set, stores it
// in the keyring.
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token == "" {
		return nil
	}
	return SaveToken(token)
}

func setStr(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setLower(dst *string, v string) { setStr(dst, strings.ToLower(v)) }

func setPos[T int | float32](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}

// mergeInto overlays the non-zero settings of src onto dst. Booleans are
// always taken from src since false is a valid choice.
func mergeInto(dst, src *AppConfig) {
	setPos(&dst.ConfigVersion, src.ConfigVersion)

	g := &dst.General
	setStr(&g.Theme, src.General.Theme)
	setStr(&g.DocumentsDir, src.General.DocumentsDir)
	g.TelemetryOptIn = src.General.TelemetryOptIn
	g.EnableServer = src.General.EnableServer

	b := &dst.Backend
	setStr(&b.BaseURL, src.Backend.BaseURL)
	setPos(&b.TimeoutMs, src.Backend.TimeoutMs)
	setStr(&b.Addr, src.Backend.Addr)
	setStr(&b.DatabaseURL, src.Backend.DatabaseURL)
	b.TLSInsecure = src.Backend.TLSInsecure

	l := &dst.Logging
	setLower(&l.Level, src.Logging.Level)
	setLower(&l.Format, src.Logging.Format)
	setStr(&l.File, src.Logging.File)
	l.Source = src.Logging.Source

	t, s := &dst.Tools, src.Tools
	setStr(&t.StrokeColor, s.StrokeColor)
	setStr(&t.FillColor, s.FillColor)
	setStr(&t.FontFamily, s.FontFamily)
	setLower(&t.Unit, s.Unit)
	setPos(&t.StrokeWidth, s.StrokeWidth)
	setPos(&t.BrushWidth, s.BrushWidth)
	setPos(&t.FontSize, s.FontSize)
	setPos(&t.DPI, s.DPI)
	setPos(&t.ClosingRadius, s.ClosingRadius)
	setPos(&t.MeasureLength, s.MeasureLength)
	t.EllipseFromCenter = s.EllipseFromCenter

	v := &dst.View
	setPos(&v.MinZoom, src.View.MinZoom)
	setPos(&v.MaxZoom, src.View.MaxZoom)
	setPos(&v.SnapThreshold, src.View.SnapThreshold)
	v.SnapCenters = src.View.SnapCenters

	setStr(&dst.Catalog.Path, src.Catalog.Path)
}

// Timeout is the backend request timeout, 15s when unset.
func (b BackendConfig) Timeout() time.Duration {
	ms := b.TimeoutMs
	if ms <= 0 {
		ms = Defaults().Backend.TimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}

// Options converts the tools section. Values that do not parse keep the
// tool defaults.
func (t ToolsConfig) Options() tools.Options {
	o := tools.DefaultOptions()
	if c, err := vector.ParseHex(t.StrokeColor); err == nil {
		o.StrokeColor = c
	}
	if c, err := vector.ParseHex(t.FillColor); err == nil {
		o.FillColor = c
	}
	if u, err := tools.ParseUnit(t.Unit); err == nil {
		o.Unit = u
	}
	if t.FontFamily != "" {
		o.FontFamily = t.FontFamily
	}
	setPos(&o.StrokeWidth, t.StrokeWidth)
	setPos(&o.BrushWidth, t.BrushWidth)
	setPos(&o.FontSize, t.FontSize)
	setPos(&o.DPI, t.DPI)
	setPos(&o.ClosingRadius, t.ClosingRadius)
	setPos(&o.MeasureLength, t.MeasureLength)
	o.EllipseFromCenter = t.EllipseFromCenter
	return o
}

// Apply sets the zoom limits of v when they form a valid range.
func (vc ViewConfig) Apply(v pointer.View) pointer.View {
	if vc.MinZoom > 0 && vc.MaxZoom >= vc.MinZoom {
		v.MinZoom, v.MaxZoom = vc.MinZoom, vc.MaxZoom
	}
	return v
}

// Snap converts the snapping settings. Edges always snap once a threshold
// is set.
func (vc ViewConfig) Snap() vector.SnapOptions {
	if vc.SnapThreshold <= 0 {
		return vector.SnapOptions{}
	}
	return vector.SnapOptions{Threshold: vc.SnapThreshold, Edges: true, Centers: vc.SnapCenters}
}

// Documents returns the configured documents directory or ~/Pictures/gopaint.
func (g GeneralConfig) Documents() string {
	if g.DocumentsDir != "" {
		return g.DocumentsDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "gopaint"
	}
	return filepath.Join(home, "Pictures", "gopaint")
}

// CatalogPath returns the configured catalog or catalog.sqlite in the
// config directory.
func (c AppConfig) CatalogPath() (string, error) {
	if c.Catalog.Path != "" {
		return c.Catalog.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "catalog.sqlite"), nil
}

func (lc LoggingConfig) Options() applog.Options {
	return applog.Options{Level: lc.Level, Format: lc.Format, AddSource: lc.Source, File: lc.File}
}

// Telemetry takes endpoints from the environment and opt-in from the
// general section.
func (g GeneralConfig) Telemetry() telemetry.Config {
	tc := telemetry.FromEnv()
	tc.OptIn = g.TelemetryOptIn
	return tc
}
