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
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"gopaint/internal/storage"
)

// memStore is an in-memory Store with a deterministic clock.
type memStore struct {
	mu    sync.Mutex
	items map[string]Drawing
	clock time.Time
	down  atomic.Bool
}

func newMemStore() *memStore {
	return &memStore{items: map[string]Drawing{}, clock: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *memStore) Ping(context.Context) error {
	if m.down.Load() {
		return errors.New("down")
	}
	return nil
}

func (m *memStore) List(_ context.Context, q storage.SearchQuery) ([]Drawing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Drawing{}
	for _, d := range m.items {
		if q.Text != "" && !strings.Contains(strings.ToLower(d.Title), strings.ToLower(q.Text)) {
			continue
		}
		if !q.CreatedFrom.IsZero() && d.Created.Before(q.CreatedFrom) {
			continue
		}
		if !q.CreatedTo.IsZero() && d.Created.After(q.CreatedTo) {
			continue
		}
		d.File = nil
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []Drawing{}, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, id string) (Drawing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.items[id]
	if !ok {
		return Drawing{}, ErrNotFound
	}
	return d, nil
}

func (m *memStore) Create(_ context.Context, d Drawing) (Drawing, error) {
	if err := d.Validate(); err != nil {
		return Drawing{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Minute)
	d.ID, d.Created = uuid.NewString(), m.clock
	m.items[d.ID] = d
	return d, nil
}

func (m *memStore) Update(_ context.Context, d Drawing) (Drawing, error) {
	if err := d.Validate(); err != nil {
		return Drawing{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[d.ID]
	if !ok {
		return Drawing{}, ErrNotFound
	}
	d.Created = cur.Created
	m.items[d.ID] = d
	return d, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func testPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// newTestServer starts the API over a fresh memStore and returns an
// authenticated client.
func newTestServer(t *testing.T) (*Client, *memStore, *httptest.Server) {
	t.Helper()
	st := newMemStore()
	srv := httptest.NewServer(NewHandler(st, "test-secret"))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/", "")
	if _, _, err := c.RequestToken(context.Background(), "tester", time.Hour); err != nil {
		t.Fatalf("token: %v", err)
	}
	return c, st, srv
}

func TestHealthAndVersion(t *testing.T) {
	c, st, srv := newTestServer(t)
	ctx := context.Background()
	if err := c.Ready(ctx); err != nil {
		t.Fatalf("ready: %v", err)
	}
	st.down.Store(true)
	var ae *APIError
	if err := c.Ready(ctx); !errors.As(err, &ae) || ae.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %v", err)
	}
	resp, err := http.Get(srv.URL + "/version")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("version status %d", resp.StatusCode)
	}
}

func TestDrawingsRequireToken(t *testing.T) {
	_, _, srv := newTestServer(t)
	ctx := context.Background()

	anon := NewClient(srv.URL, "")
	var ae *APIError
	if _, err := anon.ListDrawings(ctx, storage.SearchQuery{}); !errors.As(err, &ae) || ae.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	forged := NewClient(srv.URL, "e30.AAAA")
	if _, err := forged.ListDrawings(ctx, storage.SearchQuery{}); !errors.As(err, &ae) || ae.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %v", err)
	}
	other, _ := signToken("other-secret", "x", time.Now().Add(time.Hour))
	if _, err := NewClient(srv.URL, other).ListDrawings(ctx, storage.SearchQuery{}); !errors.As(err, &ae) || ae.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for token of another secret, got %v", err)
	}
}

func TestDrawingsCRUD(t *testing.T) {
	c, _, _ := newTestServer(t)
	ctx := context.Background()
	red, blue := testPNG(t, color.NRGBA{R: 255, A: 255}), testPNG(t, color.NRGBA{B: 255, A: 255})

	first, err := c.CreateDrawing(ctx, "  Sunset  ", red)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == "" || first.Title != "Sunset" || first.Created.IsZero() {
		t.Fatalf("unexpected created drawing: %+v", first)
	}
	second, err := c.CreateDrawing(ctx, "Harbour", blue)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	list, err := c.ListDrawings(ctx, storage.SearchQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("list should be newest first: %+v", list)
	}
	if list[0].File != nil {
		t.Fatalf("listing must not carry files")
	}

	got, err := c.GetDrawing(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got.File, red) {
		t.Fatalf("file did not round trip through base64")
	}

	upd, err := c.UpdateDrawing(ctx, first.ID, "Sunrise", blue)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Title != "Sunrise" || !upd.Created.Equal(first.Created) || !bytes.Equal(upd.File, blue) {
		t.Fatalf("update mismatch: %+v", upd)
	}
	ren, err := c.RenameDrawing(ctx, first.ID, "Dawn")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if ren.Title != "Dawn" || !bytes.Equal(ren.File, blue) {
		t.Fatalf("patch should keep the file: %+v", ren)
	}

	if err := c.DeleteDrawing(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.GetDrawing(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := c.DeleteDrawing(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}

func TestDrawingsValidation(t *testing.T) {
	c, _, srv := newTestServer(t)
	ctx := context.Background()
	img := testPNG(t, color.White)
	cases := []struct {
		name  string
		title string
		file  []byte
		field string
	}{
		{"blank title", "   ", img, "title"},
		{"long title", strings.Repeat("x", MaxTitleLen+1), img, "title"},
		{"no file", "ok", nil, "file"},
		{"not png", "ok", []byte("GIF89a"), "file"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.CreateDrawing(ctx, tc.title, tc.file)
			var ae *APIError
			if !errors.As(err, &ae) || ae.Status != http.StatusBadRequest || !strings.HasPrefix(ae.Message, tc.field) {
				t.Fatalf("expected 400 on %s, got %v", tc.field, err)
			}
		})
	}
	if _, err := c.CreateDrawing(ctx, strings.Repeat("é", MaxTitleLen), img); err != nil {
		t.Fatalf("title length counts characters: %v", err)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/drawings", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+c.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed JSON should be 400, got %d", resp.StatusCode)
	}
}

func TestListQueryParameters(t *testing.T) {
	c, st, _ := newTestServer(t)
	ctx := context.Background()
	img := testPNG(t, color.Black)
	for _, title := range []string{"Cat", "Dog", "Cat nap", "Bird"} {
		if _, err := c.CreateDrawing(ctx, title, img); err != nil {
			t.Fatal(err)
		}
	}
	cats, err := c.ListDrawings(ctx, storage.SearchQuery{Text: "cat"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 || cats[0].Title != "Cat nap" {
		t.Fatalf("text filter: %+v", cats)
	}
	page, err := c.ListDrawings(ctx, storage.SearchQuery{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].Title != "Cat nap" || page[1].Title != "Dog" {
		t.Fatalf("pagination: %+v", page)
	}
	// the store clock advances a minute per drawing
	from := st.clock.Add(-90 * time.Second)
	recent, err := c.ListDrawings(ctx, storage.SearchQuery{CreatedFrom: from})
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("created filter: %+v", recent)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := signToken("s", "alice", time.Now().Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if sub, err := verifyToken("s", tok); err != nil || sub != "alice" {
		t.Fatalf("verify: %q %v", sub, err)
	}
	old, _ := signToken("s", "alice", time.Now().Add(-time.Minute))
	if _, err := verifyToken("s", old); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expired token: %v", err)
	}
	if _, err := verifyToken("other", tok); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("foreign token: %v", err)
	}
	if _, err := verifyToken("s", "garbage"); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("malformed token: %v", err)
	}
}

func TestParseVersion(t *testing.T) {
	if v, err := parseVersion("migrations/0001_drawings.sql"); err != nil || v != 1 {
		t.Fatalf("parseVersion: %d %v", v, err)
	}
	for _, bad := range []string{"init.sql", "x_init.sql", "0000_zero.sql"} {
		if _, err := parseVersion(bad); err == nil {
			t.Fatalf("parseVersion(%q) should fail", bad)
		}
	}
}

func TestEmbeddedMigrationsInOrder(t *testing.T) {
	all, err := newMigrator(nil, nil).pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) == 0 || all[0].version != 1 || all[0].name != "0001_drawings.sql" {
		t.Fatalf("migrations %+v", all)
	}
	for i := 1; i < len(all); i++ {
		if all[i].version <= all[i-1].version {
			t.Fatalf("out of order: %d after %d", all[i].version, all[i-1].version)
		}
	}
}
