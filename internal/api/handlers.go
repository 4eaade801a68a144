// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/anibrain/anibrain/internal/artifacts"
	"github.com/anibrain/anibrain/internal/catalog"
	"github.com/anibrain/anibrain/internal/recommend"
)

// Handler carries the engine and store references every endpoint needs.
type Handler struct {
	engine *recommend.Engine
	store  *artifacts.Store
}

// NewHandler builds the endpoint handler set.
func NewHandler(engine *recommend.Engine, store *artifacts.Store) *Handler {
	return &Handler{engine: engine, store: store}
}

// healthPayload is the health endpoint body.
type healthPayload struct {
	Status             string `json:"status"`
	ArtifactsAvailable bool   `json:"artifacts_available"`
	KnownUsers         int    `json:"known_users"`
}

// Health reports liveness and artifact availability. Always 200: a degraded
// server is still alive, readiness is a separate endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if !h.store.Available() {
		status = "degraded"
	}
	NewResponseWriter(w, r).Success(healthPayload{
		Status:             status,
		ArtifactsAvailable: h.store.Available(),
		KnownUsers:         len(h.engine.UserIDs()),
	})
}

// HealthReady reports readiness: 503 while the artifact store is degraded,
// so orchestrators keep traffic away from a server that can only answer
// with empty lists.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.store.Available() {
		rw.ServiceUnavailable("artifact store unavailable")
		return
	}
	rw.Success(healthPayload{Status: "ok", ArtifactsAvailable: true, KnownUsers: len(h.engine.UserIDs())})
}

// Users returns the sorted IDs of all users with rating history.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	ids := h.engine.UserIDs()
	NewResponseWriter(w, r).SuccessList(ids, len(ids))
}

// userRecommendationsPayload echoes the effective request parameters next
// to the ordered result names.
type userRecommendationsPayload struct {
	UserID          int      `json:"user_id"`
	N               int      `json:"n"`
	UserWeight      float64  `json:"user_weight"`
	ContentWeight   float64  `json:"content_weight"`
	Recommendations []string `json:"recommendations"`
}

// UserRecommendations serves hybrid recommendations for a user. Unknown
// users get an empty list with 200; only malformed parameters are 400.
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		rw.BadRequest("user ID must be an integer")
		return
	}
	n, ok := parseIntParam(rw, r, "n", 0)
	if !ok {
		return
	}
	userWeight, ok := parseFloatParam(rw, r, "user_weight", -1)
	if !ok {
		return
	}
	contentWeight, ok := parseFloatParam(rw, r, "content_weight", -1)
	if !ok {
		return
	}

	// Resolve defaults here so the response echoes the effective values.
	cfg := h.engine.Config()
	if n <= 0 {
		n = cfg.DefaultN
	} else if n > cfg.MaxN {
		n = cfg.MaxN
	}
	if userWeight < 0 {
		userWeight = cfg.UserWeight
	}
	if contentWeight < 0 {
		contentWeight = cfg.ContentWeight
	}

	names := h.engine.RecommendForUser(r.Context(), userID, n, userWeight, contentWeight)
	if names == nil {
		names = []string{}
	}
	rw.SuccessList(userRecommendationsPayload{
		UserID:          userID,
		N:               n,
		UserWeight:      userWeight,
		ContentWeight:   contentWeight,
		Recommendations: names,
	}, len(names))
}

// similarAnimePayload pairs the resolved query with its neighbors.
type similarAnimePayload struct {
	Query   string               `json:"query"`
	Results []recommend.Neighbor `json:"results"`
}

// SimilarAnime serves nearest-neighbor anime for a name or ID query.
// Unknown anime get an empty list with 200.
func (h *Handler) SimilarAnime(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	raw := strings.TrimSpace(r.URL.Query().Get("q"))
	if raw == "" {
		rw.BadRequest("query parameter q is required")
		return
	}
	n, ok := parseIntParam(rw, r, "n", 0)
	if !ok {
		return
	}

	results := h.engine.SimilarAnime(r.Context(), catalog.ParseQuery(raw), n)
	if results == nil {
		results = []recommend.Neighbor{}
	}
	rw.SuccessList(similarAnimePayload{Query: raw, Results: results}, len(results))
}

// parseIntParam reads an optional integer query parameter. A missing or
// empty parameter yields fallback; a malformed one writes a 400 and
// returns ok=false.
func parseIntParam(rw *ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		rw.BadRequest("parameter " + name + " must be an integer")
		return 0, false
	}
	return v, true
}

// parseFloatParam is parseIntParam for float parameters.
func parseFloatParam(rw *ResponseWriter, r *http.Request, name string, fallback float64) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		rw.BadRequest("parameter " + name + " must be a number")
		return 0, false
	}
	if v < 0 {
		rw.BadRequest("parameter " + name + " must be non-negative")
		return 0, false
	}
	return v, true
}
