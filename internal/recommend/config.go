// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

package recommend

import (
	"fmt"
	"time"
)

// Config holds the engine tuning parameters. Zero values are replaced by
// the defaults below so an empty Config is usable in tests.
type Config struct {
	// DefaultN is the result count used when a request does not specify one.
	DefaultN int

	// MaxN caps the per-request result count.
	MaxN int

	// UserWeight and ContentWeight are the default fusion weights for the
	// collaborative and content branches. Requests may override them.
	UserWeight    float64
	ContentWeight float64

	// SimilarUserPool is how many nearby users feed the collaborative branch.
	SimilarUserPool int

	// CacheTTL and CacheSize configure the response cache.
	CacheTTL  time.Duration
	CacheSize int
}

// Default engine parameters.
const (
	DefaultResultCount     = 5
	DefaultMaxResultCount  = 50
	DefaultUserWeight      = 0.5
	DefaultContentWeight   = 0.5
	DefaultSimilarUserPool = 20
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCacheSize       = 1024
)

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		DefaultN:        DefaultResultCount,
		MaxN:            DefaultMaxResultCount,
		UserWeight:      DefaultUserWeight,
		ContentWeight:   DefaultContentWeight,
		SimilarUserPool: DefaultSimilarUserPool,
		CacheTTL:        DefaultCacheTTL,
		CacheSize:       DefaultCacheSize,
	}
}

// withDefaults fills zero fields with defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DefaultN <= 0 {
		c.DefaultN = d.DefaultN
	}
	if c.MaxN <= 0 {
		c.MaxN = d.MaxN
	}
	if c.UserWeight < 0 {
		c.UserWeight = d.UserWeight
	}
	if c.ContentWeight < 0 {
		c.ContentWeight = d.ContentWeight
	}
	if c.UserWeight == 0 && c.ContentWeight == 0 {
		c.UserWeight = d.UserWeight
		c.ContentWeight = d.ContentWeight
	}
	if c.SimilarUserPool <= 0 {
		c.SimilarUserPool = d.SimilarUserPool
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.CacheSize <= 0 {
		c.CacheSize = d.CacheSize
	}
	return c
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.DefaultN > c.MaxN && c.MaxN > 0 {
		return fmt.Errorf("default result count %d exceeds maximum %d", c.DefaultN, c.MaxN)
	}
	if c.UserWeight < 0 || c.ContentWeight < 0 {
		return fmt.Errorf("fusion weights must be non-negative, got user=%g content=%g", c.UserWeight, c.ContentWeight)
	}
	return nil
}
