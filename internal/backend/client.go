/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gopaint/internal/config"
	"gopaint/internal/storage"
)

// Client is a minimal HTTP client for the drawings API.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientFromConfig builds a client for the configured backend. token
// is the one config.Load read from the OS keyring.
func NewClientFromConfig(cfg config.AppConfig, token string) *Client {
	c := NewClient(cfg.Backend.BaseURL, token)
	c.client.Timeout = cfg.Backend.Timeout()
	if cfg.Backend.TLSInsecure {
		c.client.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}} //nolint:gosec // opt-in for self-signed dev servers
	}
	return c
}

// APIError is a non-2xx response. A 404 unwraps to ErrNotFound.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("server %s %s: %d", e.Method, e.Path, e.Status)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ae := &APIError{Method: method, Path: u.Path, Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			ae.Message = e.Error
		} else {
			ae.Message = strings.TrimSpace(string(b))
		}
		return ae
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// RequestToken asks the server for a bearer token and stores it on c.
func (c *Client) RequestToken(ctx context.Context, subject string, ttl time.Duration) (string, time.Time, error) {
	var out struct {
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}
	in := map[string]any{"subject": subject, "ttl_seconds": int64(ttl / time.Second)}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/token", in, &out); err != nil {
		return "", time.Time{}, err
	}
	exp, err := time.Parse(time.RFC3339, out.ExpiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parse expires_at: %w", err)
	}
	c.Token = out.Token
	return out.Token, exp, nil
}

// Ready reports whether the server and its database are up.
func (c *Client) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/readyz", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &APIError{Method: http.MethodGet, Path: "/readyz", Status: resp.StatusCode}
	}
	return nil
}

// ListDrawings returns drawings matching q, without their files.
func (c *Client) ListDrawings(ctx context.Context, q storage.SearchQuery) ([]Drawing, error) {
	v := url.Values{}
	if q.Text != "" {
		v.Set("q", q.Text)
	}
	if !q.CreatedFrom.IsZero() {
		v.Set("from", q.CreatedFrom.UTC().Format(time.RFC3339))
	}
	if !q.CreatedTo.IsZero() {
		v.Set("to", q.CreatedTo.UTC().Format(time.RFC3339))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	path := "/api/drawings"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var list []Drawing
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetDrawing fetches one drawing including its PNG.
func (c *Client) GetDrawing(ctx context.Context, id string) (*Drawing, error) {
	var d Drawing
	if err := c.doJSON(ctx, http.MethodGet, "/api/drawings/"+url.PathEscape(id), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDrawing uploads a new drawing.
func (c *Client) CreateDrawing(ctx context.Context, title string, png []byte) (*Drawing, error) {
	var d Drawing
	if err := c.doJSON(ctx, http.MethodPost, "/api/drawings", Drawing{Title: title, File: png}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDrawing replaces title and PNG of drawing id.
func (c *Client) UpdateDrawing(ctx context.Context, id, title string, png []byte) (*Drawing, error) {
	var d Drawing
	if err := c.doJSON(ctx, http.MethodPut, "/api/drawings/"+url.PathEscape(id), Drawing{Title: title, File: png}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// RenameDrawing changes only the title.
func (c *Client) RenameDrawing(ctx context.Context, id, title string) (*Drawing, error) {
	var d Drawing
	if err := c.doJSON(ctx, http.MethodPatch, "/api/drawings/"+url.PathEscape(id), map[string]string{"title": title}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteDrawing removes drawing id.
func (c *Client) DeleteDrawing(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/drawings/"+url.PathEscape(id), nil, nil)
}
