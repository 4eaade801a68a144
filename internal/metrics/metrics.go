// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

// Package metrics provides Prometheus instrumentation for Anibrain:
// API endpoint latency and throughput, recommendation pipeline outcomes,
// response cache efficiency, and artifact store health.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// Recommendation pipeline metrics

	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests by kind",
		},
		[]string{"kind"}, // "hybrid", "similar_items"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Recommendation pipeline duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	RecommendationEmpty = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_empty_total",
			Help: "Recommendation requests that produced an empty result",
		},
		[]string{"kind"},
	)

	// Response cache metrics

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cache_hits_total",
			Help: "Total recommendation response cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cache_misses_total",
			Help: "Total recommendation response cache misses",
		},
	)

	// Artifact store metrics

	ArtifactStoreAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "artifact_store_available",
			Help: "Whether the embedding store loaded successfully (1) or is degraded (0)",
		},
	)

	EmbeddingRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "embedding_rows",
			Help: "Number of embedding vectors loaded per space",
		},
		[]string{"space"}, // "anime", "user"
	)

	CatalogRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_rows",
			Help: "Number of rows loaded per catalog table",
		},
		[]string{"table"}, // "anime", "ratings", "synopsis"
	)
)

// RecordAPIRequest records metrics for a completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records metrics for a completed recommendation run.
func RecordRecommendation(kind string, results int, duration time.Duration) {
	RecommendationRequests.WithLabelValues(kind).Inc()
	RecommendationDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if results == 0 {
		RecommendationEmpty.WithLabelValues(kind).Inc()
	}
}
