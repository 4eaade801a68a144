// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

// Package config loads and validates Anibrain configuration using Koanf v2
// with layered sources: built-in defaults, an optional YAML config file, and
// environment variables (highest priority).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the Anibrain server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Ingest    IngestConfig    `koanf:"ingest"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `koanf:"host"`

	// Port is the listen port.
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// ReadTimeout bounds request header/body reads.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds response writes.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ArtifactsConfig locates the trained artifacts produced by the offline
// training pipeline.
type ArtifactsConfig struct {
	// Dir is the directory holding the CBOR embedding blobs and CSV tables.
	Dir string `koanf:"dir" validate:"required"`
}

// IngestConfig controls the optional one-shot artifact download from a
// GCS bucket before loading. Disabled by default; when disabled the
// artifacts directory must already be populated.
type IngestConfig struct {
	Enabled bool `koanf:"enabled"`

	// Bucket is the GCS bucket name holding the artifact objects.
	Bucket string `koanf:"bucket"`

	// Objects are the object names to download into the artifacts dir.
	Objects []string `koanf:"objects"`

	// Timeout bounds the whole download run.
	Timeout time.Duration `koanf:"timeout"`

	// Anonymous disables GCS authentication (public buckets).
	Anonymous bool `koanf:"anonymous"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	// DefaultN is the result size when a request does not specify one.
	DefaultN int `koanf:"default_n" validate:"min=1"`

	// MaxN caps the requested result size.
	MaxN int `koanf:"max_n" validate:"min=1"`

	// UserWeight is the default fusion weight for collaborative candidates.
	UserWeight float64 `koanf:"user_weight" validate:"min=0,max=1"`

	// ContentWeight is the default fusion weight for content candidates.
	ContentWeight float64 `koanf:"content_weight" validate:"min=0,max=1"`

	// SimilarUserPool is how many similar users the collaborative branch
	// requests to survive downstream filtering.
	SimilarUserPool int `koanf:"similar_user_pool" validate:"min=1"`

	// CacheTTL is how long recommendation responses are cached.
	// Zero disables the cache.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// CacheSize is the maximum number of cached responses.
	CacheSize int `koanf:"cache_size"`
}

// APIConfig holds API middleware settings.
type APIConfig struct {
	// RateLimitReqs is the allowed requests per window per client IP.
	RateLimitReqs int `koanf:"rate_limit_reqs" validate:"min=1"`

	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`

	// RequestTimeout bounds a single recommendation request.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Recommend.DefaultN > c.Recommend.MaxN {
		return fmt.Errorf("recommend.default_n (%d) exceeds recommend.max_n (%d)",
			c.Recommend.DefaultN, c.Recommend.MaxN)
	}
	if c.Ingest.Enabled {
		if c.Ingest.Bucket == "" {
			return fmt.Errorf("ingest.bucket is required when ingest is enabled")
		}
		if len(c.Ingest.Objects) == 0 {
			return fmt.Errorf("ingest.objects is required when ingest is enabled")
		}
	}
	return nil
}
