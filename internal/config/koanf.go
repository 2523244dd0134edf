// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/kinoscope/config.yaml",
	"/etc/kinoscope/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "KINOSCOPE_CONFIG"

// envPrefix namespaces Kinoscope environment variables.
// KINOSCOPE_TMDB_API_KEY -> tmdb.api_key
const envPrefix = "KINOSCOPE_"

// Default returns a Config with all default values applied.
// These are overridden by the config file and environment variables.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":3857",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		TMDB: TMDBConfig{
			BaseURL:        "https://api.themoviedb.org/3",
			APIKey:         "",
			Timeout:        10 * time.Second,
			RateLimit:      40, // TMDB allows ~50 req/s; stay under it
			BreakerEnabled: true,
		},
		Embedding: EmbeddingConfig{
			Provider:   EmbeddingStatic,
			URL:        "",
			Model:      "nomic-embed-text",
			Dimensions: 384,
			Timeout:    10 * time.Second,
		},
		Vector: VectorConfig{
			M:        16,
			EfSearch: 20,
			TopK:     20,
		},
		Cache: CacheConfig{
			IntentMaxSize: 1000,
			IntentTTL:     30 * time.Minute,
			ResultMaxSize: 500,
			ResultTTL:     5 * time.Minute,
			Backend:       CacheBackendNone,
			L2TTL:         time.Hour,
			BadgerPath:    "/data/kinoscope/cache",
			NATSURL:       "nats://127.0.0.1:4222",
			NATSBucket:    "kinoscope-cache",
		},
		Search: SearchConfig{
			MaxResults:    50,
			MinVoteCount:  100,
			MinPopularity: 5.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from layered sources:
//
//  1. Defaults (Default())
//  2. Optional YAML config file
//  3. KINOSCOPE_* environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envTransform maps environment variable names to koanf paths.
// The first underscore separates the section from the key:
// KINOSCOPE_TMDB_BASE_URL -> tmdb.base_url.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(s, "_", 2)
	if len(parts) != 2 {
		return s
	}
	return parts[0] + "." + parts[1]
}

// findConfigFile returns the first existing config path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
