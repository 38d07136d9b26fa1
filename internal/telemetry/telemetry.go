/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry sends anonymous, opt-in usage events and crash reports.
// Nothing is sent unless the user opted in and an endpoint is configured.
// Events are queued without blocking and posted in batches as JSON arrays.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	applog "gopaint/internal/log"
	"gopaint/internal/version"
)

// Config holds runtime configuration for telemetry and crash uploads.
//
// FromEnv reads GOPAINT_TELEMETRY_OPT_IN, GOPAINT_TELEMETRY_URL,
// GOPAINT_CRASH_UPLOAD_URL, GOPAINT_TELEMETRY_TIMEOUT_MS and
// GOPAINT_TELEMETRY_DEBUG.
type Config struct {
	OptIn      bool
	EventsURL  string
	CrashURL   string
	Timeout    time.Duration
	BatchSize  int           // events per request, default 20
	FlushEvery time.Duration // default 2s
	Debug      bool
}

func FromEnv() Config {
	cfg := Config{
		OptIn:     parseBool(os.Getenv("GOPAINT_TELEMETRY_OPT_IN")),
		EventsURL: strings.TrimSpace(os.Getenv("GOPAINT_TELEMETRY_URL")),
		CrashURL:  strings.TrimSpace(os.Getenv("GOPAINT_CRASH_UPLOAD_URL")),
		Debug:     os.Getenv("GOPAINT_TELEMETRY_DEBUG") != "",
	}
	if ms, err := strconv.Atoi(strings.TrimSpace(os.Getenv("GOPAINT_TELEMETRY_TIMEOUT_MS"))); err == nil && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 1500 * time.Millisecond
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.FlushEvery <= 0 {
		c.FlushEvery = 2 * time.Second
	}
	return c
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Event is one usage event. Props never carry drawing content.
type Event struct {
	Name    string         `json:"name"`
	TS      time.Time      `json:"ts"`
	Version string         `json:"version"`
	OS      string         `json:"os"`
	Arch    string         `json:"arch"`
	Props   map[string]any `json:"props,omitempty"`
}

// Event names sent by the app.
const (
	EventToolActivated = "tool_activated"
	EventExport        = "export"
	EventError         = "error"
)

// Client queues events and posts them from one background goroutine.
// A full queue drops events.
type Client struct {
	cfg   Config
	log   *slog.Logger
	http  *http.Client
	q     chan Event
	flush chan chan struct{}
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// New constructs a client. The sender goroutine only runs when the client
// is enabled; Close stops it.
func New(cfg Config) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:   cfg,
		log:   applog.WithComponent("telemetry"),
		http:  &http.Client{Timeout: cfg.Timeout},
		q:     make(chan Event, 64),
		flush: make(chan chan struct{}),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	if c.Enabled() {
		go c.loop()
	} else {
		close(c.done)
	}
	return c
}

// Enabled reports whether the user opted in and an events endpoint is set.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Event queues a named event. It never blocks.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	ev := Event{
		Name:    name,
		TS:      time.Now().UTC(),
		Version: version.String(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Props:   props,
	}
	select {
	case c.q <- ev:
	default:
		c.debug("telemetry queue full, event dropped", slog.String("event", name))
	}
}

// Flush posts everything queued so far and waits for it, or for ctx.
func (c *Client) Flush(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ack := make(chan struct{})
	select {
	case c.flush <- ack:
	case <-c.done:
		return
	case <-ctx.Done():
		return
	}
	select {
	case <-ack:
	case <-ctx.Done():
	}
}

// Close sends what is still queued and stops the sender.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.stop) })
	<-c.done
}

func (c *Client) loop() {
	defer close(c.done)
	tick := time.NewTicker(c.cfg.FlushEvery)
	defer tick.Stop()
	var batch []Event
	send := func() {
		if len(batch) > 0 {
			c.post(batch)
			batch = nil
		}
	}
	for {
		select {
		case ev := <-c.q:
			batch = append(batch, ev)
			if len(batch) >= c.cfg.BatchSize {
				send()
			}
		case <-tick.C:
			send()
		case ack := <-c.flush:
			batch = c.drain(batch)
			send()
			close(ack)
		case <-c.stop:
			batch = c.drain(batch)
			send()
			return
		}
	}
}

func (c *Client) drain(batch []Event) []Event {
	for {
		select {
		case ev := <-c.q:
			batch = append(batch, ev)
		default:
			return batch
		}
	}
}

func (c *Client) post(batch []Event) {
	body, err := json.Marshal(batch)
	if err != nil {
		return
	}
	if err := c.postBytes(c.cfg.EventsURL, "application/json", body); err != nil {
		c.debug("telemetry send failed", slog.Int("events", len(batch)), slog.Any("err", err))
		return
	}
	c.debug("telemetry sent", slog.Int("events", len(batch)))
}

func (c *Client) postBytes(url, contentType string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("telemetry endpoint: %s", resp.Status)
	}
	return nil
}

func (c *Client) debug(msg string, attrs ...any) {
	if c.cfg.Debug {
		c.log.Debug(msg, attrs...)
	}
}

// UploadCrash posts a crash report when the user opted in and a crash
// endpoint is configured. It waits for the upload, bounded by the timeout.
func (c *Client) UploadCrash(report []byte) error {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return nil
	}
	return c.postBytes(c.cfg.CrashURL, "text/plain; charset=utf-8", report)
}

// ToolActivated records that the user switched to a drawing tool.
func (c *Client) ToolActivated(kind string) {
	c.Event(EventToolActivated, map[string]any{"tool": kind})
}

// Exported records an export in the given format, e.g. "png" or "pdf".
func (c *Client) Exported(format string, err error) {
	c.Event(EventExport, map[string]any{"format": format, "ok": err == nil})
}

// Failed records an operation error. Only the operation name is sent.
func (c *Client) Failed(op string) {
	c.Event(EventError, map[string]any{"op": op})
}

var (
	defMu sync.Mutex
	def   *Client
)

// Default returns the process-wide client, created from the environment on
// first use.
func Default() *Client {
	defMu.Lock()
	defer defMu.Unlock()
	if def == nil {
		def = New(FromEnv())
	}
	return def
}

// NewDefault installs a client built from cfg as the default. The previous
// one is closed.
func NewDefault(cfg Config) {
	c := New(cfg)
	defMu.Lock()
	old := def
	def = c
	defMu.Unlock()
	old.Close()
}

// Shutdown closes the default client, sending what is queued.
func Shutdown() {
	defMu.Lock()
	c := def
	def = nil
	defMu.Unlock()
	c.Close()
}

func Enabled() bool                     { return Default().Enabled() }
func UploadCrash(report []byte) error   { return Default().UploadCrash(report) }
func ToolActivated(kind string)         { Default().ToolActivated(kind) }
func Exported(format string, err error) { Default().Exported(format, err) }
func Failed(op string)                  { Default().Failed(op) }
