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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	applog "gopaint/internal/log"
	"gopaint/internal/storage"
	"gopaint/internal/version"
)

const (
	// maxBody bounds request bodies; drawings travel as base64 PNG.
	maxBody     = 32 << 20
	maxTokenTTL = 30 * 24 * time.Hour
)

type server struct {
	store  Store
	secret string
	log    *slog.Logger
}

// NewHandler returns the HTTP API over store. Drawing routes need a bearer
// token signed with secret, obtained from POST /api/auth/token.
func NewHandler(store Store, secret string) http.Handler {
	s := &server{store: store, secret: secret, log: applog.WithComponent("backend")}
	mux := http.NewServeMux()
	// Health endpoints
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(version.String()))
	})
	mux.HandleFunc("POST /api/auth/token", s.token)

	mux.HandleFunc("GET /api/drawings", withAuth(secret, s.list))
	mux.HandleFunc("POST /api/drawings", withAuth(secret, s.create))
	mux.HandleFunc("GET /api/drawings/{id}", withAuth(secret, s.get))
	mux.HandleFunc("PUT /api/drawings/{id}", withAuth(secret, s.replace))
	mux.HandleFunc("PATCH /api/drawings/{id}", withAuth(secret, s.patch))
	mux.HandleFunc("DELETE /api/drawings/{id}", withAuth(secret, s.remove))
	return mux
}

// POST /api/auth/token → { token, expires_at }
func (s *server) token(w http.ResponseWriter, r *http.Request) {
	// Optional JSON body: { "subject": "name", "ttl_seconds": 3600 }
	var req struct {
		Subject    string `json:"subject"`
		TTLSeconds int64  `json:"ttl_seconds"`
	}
	b, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	_ = r.Body.Close()
	_ = json.Unmarshal(b, &req)
	if req.Subject == "" {
		req.Subject = "dev"
	}
	ttl := time.Duration(req.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	exp := time.Now().Add(min(ttl, maxTokenTTL))
	tok, err := signToken(s.secret, req.Subject, exp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      tok,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

func (s *server) list(w http.ResponseWriter, r *http.Request, _ string) {
	q, err := parseListQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	list, err := s.store.List(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// parseListQuery reads q, from, to (RFC 3339), limit and offset.
func parseListQuery(r *http.Request) (storage.SearchQuery, error) {
	v := r.URL.Query()
	q := storage.SearchQuery{Text: v.Get("q")}
	var err error
	if s := v.Get("from"); s != "" {
		if q.CreatedFrom, err = time.Parse(time.RFC3339, s); err != nil {
			return q, fmt.Errorf("from: %w", err)
		}
	}
	if s := v.Get("to"); s != "" {
		if q.CreatedTo, err = time.Parse(time.RFC3339, s); err != nil {
			return q, fmt.Errorf("to: %w", err)
		}
	}
	if s := v.Get("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil {
			return q, fmt.Errorf("limit: %w", err)
		}
	}
	if s := v.Get("offset"); s != "" {
		if q.Offset, err = strconv.Atoi(s); err != nil {
			return q, fmt.Errorf("offset: %w", err)
		}
	}
	return q, nil
}

func (s *server) create(w http.ResponseWriter, r *http.Request, sub string) {
	var in Drawing
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d, err := s.store.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("drawing created", slog.String("id", d.ID), slog.String("sub", sub))
	writeJSON(w, http.StatusCreated, d)
}

func (s *server) get(w http.ResponseWriter, r *http.Request, _ string) {
	d, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *server) replace(w http.ResponseWriter, r *http.Request, _ string) {
	var in Drawing
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	in.ID = r.PathValue("id")
	d, err := s.store.Update(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// patch updates only the fields present in the body.
func (s *server) patch(w http.ResponseWriter, r *http.Request, _ string) {
	var in struct {
		Title *string `json:"title"`
		File  []byte  `json:"file"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cur, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if in.Title != nil {
		cur.Title = *in.Title
	}
	if in.File != nil {
		cur.File = in.File
	}
	d, err := s.store.Update(r.Context(), cur)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *server) remove(w http.ResponseWriter, r *http.Request, sub string) {
	id := r.PathValue("id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("drawing deleted", slog.String("id", id), slog.String("sub", sub))
	w.WriteHeader(http.StatusNoContent)
}

// fail maps store errors to status codes. Unexpected errors are logged and
// reported without detail.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, err)
	default:
		applog.WithOperation(s.log, r.Method+" "+r.URL.Path).Error("request failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func readJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
