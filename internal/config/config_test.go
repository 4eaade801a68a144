// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8480 {
		t.Errorf("Server.Port = %d, want 8480", cfg.Server.Port)
	}
	if cfg.Recommend.DefaultN != 5 || cfg.Recommend.MaxN != 50 {
		t.Errorf("Recommend n defaults = %d/%d, want 5/50", cfg.Recommend.DefaultN, cfg.Recommend.MaxN)
	}
	if cfg.Recommend.UserWeight != 0.5 || cfg.Recommend.ContentWeight != 0.5 {
		t.Errorf("fusion weight defaults = %g/%g, want 0.5/0.5", cfg.Recommend.UserWeight, cfg.Recommend.ContentWeight)
	}
	if cfg.Recommend.SimilarUserPool != 20 {
		t.Errorf("SimilarUserPool = %d, want 20", cfg.Recommend.SimilarUserPool)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ANIBRAIN_SERVER_PORT", "9000")
	t.Setenv("ANIBRAIN_RECOMMEND_USER_WEIGHT", "0.8")
	t.Setenv("ANIBRAIN_LOGGING_LEVEL", "debug")
	t.Setenv("ANIBRAIN_API_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Recommend.UserWeight != 0.8 {
		t.Errorf("Recommend.UserWeight = %g, want 0.8", cfg.Recommend.UserWeight)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.API.CORSOrigins) != 2 || cfg.API.CORSOrigins[0] != want[0] || cfg.API.CORSOrigins[1] != want[1] {
		t.Errorf("CORSOrigins = %v, want %v", cfg.API.CORSOrigins, want)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := strings.Join([]string{
		"server:",
		"  port: 9100",
		"artifacts:",
		"  dir: /tmp/artifacts",
		"recommend:",
		"  default_n: 10",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Artifacts.Dir != "/tmp/artifacts" {
		t.Errorf("Artifacts.Dir = %s", cfg.Artifacts.Dir)
	}
	if cfg.Recommend.DefaultN != 10 {
		t.Errorf("Recommend.DefaultN = %d, want 10", cfg.Recommend.DefaultN)
	}
	// Unset keys keep their defaults.
	if cfg.Recommend.MaxN != 50 {
		t.Errorf("Recommend.MaxN = %d, want 50", cfg.Recommend.MaxN)
	}
}

func TestEnvBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("ANIBRAIN_SERVER_PORT", "9200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("Server.Port = %d, want env override 9200", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := defaultConfig()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(*Config) {}, false},
		{"port out of range", func(c *Config) { c.Server.Port = 0 }, true},
		{"default n above max n", func(c *Config) { c.Recommend.DefaultN = 60 }, true},
		{"weight above one", func(c *Config) { c.Recommend.UserWeight = 1.5 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"empty artifacts dir", func(c *Config) { c.Artifacts.Dir = "" }, true},
		{"ingest without bucket", func(c *Config) { c.Ingest.Enabled = true; c.Ingest.Objects = []string{"x"} }, true},
		{"ingest without objects", func(c *Config) { c.Ingest.Enabled = true; c.Ingest.Bucket = "b" }, true},
		{"ingest complete", func(c *Config) {
			c.Ingest.Enabled = true
			c.Ingest.Bucket = "b"
			c.Ingest.Objects = []string{"anime.csv"}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ANIBRAIN_SERVER_PORT", "server.port"},
		{"ANIBRAIN_RECOMMEND_USER_WEIGHT", "recommend.user_weight"},
		{"ANIBRAIN_API_RATE_LIMIT_REQS", "api.rate_limit_reqs"},
		{"ANIBRAIN_LOGGING_LEVEL", "logging.level"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadValidationFailure(t *testing.T) {
	t.Setenv("ANIBRAIN_RECOMMEND_DEFAULT_N", "100")

	if _, err := Load(); err == nil {
		t.Error("Load succeeded with default_n above max_n")
	}
}
