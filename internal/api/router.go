// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anibrain/anibrain/internal/middleware"
)

// RouterConfig holds the HTTP surface tuning knobs.
type RouterConfig struct {
	// RateLimitRequests and RateLimitWindow bound requests per client IP.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// CORSOrigins lists allowed origins. Empty allows none.
	CORSOrigins []string

	// RequestTimeout bounds each request's total handling time.
	RequestTimeout time.Duration
}

// NewRouter wires the middleware stack and all routes.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	if cfg.RateLimitRequests <= 0 {
		cfg.RateLimitRequests = 100
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global stack, applied in order to every route.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Use(middleware.Prometheus)

		r.Get("/health", h.Health)
		r.Get("/health/ready", h.HealthReady)
		r.Get("/users", h.Users)
		r.Get("/recommendations/user/{userID}", h.UserRecommendations)
		r.Get("/recommendations/anime", h.SimilarAnime)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
