// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty server addr", func(c *Config) { c.Server.Addr = "" }},
		{"empty tmdb base url", func(c *Config) { c.TMDB.BaseURL = "" }},
		{"zero tmdb timeout", func(c *Config) { c.TMDB.Timeout = 0 }},
		{"negative rate limit", func(c *Config) { c.TMDB.RateLimit = -1 }},
		{"unknown embedding provider", func(c *Config) { c.Embedding.Provider = "quantum" }},
		{"http embedding without url", func(c *Config) {
			c.Embedding.Provider = EmbeddingHTTP
			c.Embedding.URL = ""
		}},
		{"zero embedding dimensions", func(c *Config) { c.Embedding.Dimensions = 0 }},
		{"zero top k", func(c *Config) { c.Vector.TopK = 0 }},
		{"zero intent cache size", func(c *Config) { c.Cache.IntentMaxSize = 0 }},
		{"zero result ttl", func(c *Config) { c.Cache.ResultTTL = 0 }},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"badger backend without path", func(c *Config) {
			c.Cache.Backend = CacheBackendBadger
			c.Cache.BadgerPath = ""
		}},
		{"nats backend without bucket", func(c *Config) {
			c.Cache.Backend = CacheBackendNATS
			c.Cache.NATSBucket = ""
		}},
		{"zero max results", func(c *Config) { c.Search.MaxResults = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"KINOSCOPE_TMDB_API_KEY", "tmdb.api_key"},
		{"KINOSCOPE_SERVER_ADDR", "server.addr"},
		{"KINOSCOPE_CACHE_INTENT_MAX_SIZE", "cache.intent_max_size"},
		{"KINOSCOPE_LOGGING_LEVEL", "logging.level"},
	}

	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
tmdb:
  api_key: from-file
cache:
  result_ttl: 2m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("KINOSCOPE_TMDB_API_KEY", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Env beats file, file beats defaults.
	if cfg.TMDB.APIKey != "from-env" {
		t.Errorf("TMDB.APIKey = %q, want %q", cfg.TMDB.APIKey, "from-env")
	}
	if cfg.Cache.ResultTTL != 2*time.Minute {
		t.Errorf("Cache.ResultTTL = %v, want 2m", cfg.Cache.ResultTTL)
	}
	// Untouched values keep defaults.
	if cfg.Search.MaxResults != 50 {
		t.Errorf("Search.MaxResults = %d, want 50", cfg.Search.MaxResults)
	}
}
