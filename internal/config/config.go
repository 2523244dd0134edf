// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package config defines the Kinoscope configuration model and its loader.
// Configuration is layered: built-in defaults, then an optional YAML file,
// then environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Kinoscope engine and server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Vector    VectorConfig    `koanf:"vector"`
	Cache     CacheConfig     `koanf:"cache"`
	Search    SearchConfig    `koanf:"search"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the thin HTTP surface.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":3857".
	Addr string `koanf:"addr"`

	// ReadTimeout bounds request header+body reads.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds response writes.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// TMDBConfig configures the metadata provider client.
type TMDBConfig struct {
	// BaseURL is the API root, e.g. https://api.themoviedb.org/3.
	BaseURL string `koanf:"base_url"`

	// APIKey is the TMDB v3 API key.
	APIKey string `koanf:"api_key"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the client-side request rate per second (0 disables).
	RateLimit float64 `koanf:"rate_limit"`

	// BreakerEnabled wraps the client in a circuit breaker.
	BreakerEnabled bool `koanf:"breaker_enabled"`
}

// EmbeddingProviderKind selects the embedding implementation.
type EmbeddingProviderKind string

const (
	// EmbeddingStatic is the deterministic in-process hashing embedder.
	EmbeddingStatic EmbeddingProviderKind = "static"
	// EmbeddingHTTP is an OpenAI-compatible /v1/embeddings endpoint.
	EmbeddingHTTP EmbeddingProviderKind = "http"
)

// EmbeddingConfig configures the query embedding provider.
type EmbeddingConfig struct {
	Provider   EmbeddingProviderKind `koanf:"provider"`
	URL        string                `koanf:"url"`
	Model      string                `koanf:"model"`
	Dimensions int                   `koanf:"dimensions"`
	Timeout    time.Duration         `koanf:"timeout"`
}

// VectorConfig configures the in-process HNSW index and the searcher.
type VectorConfig struct {
	// M is the HNSW connectivity parameter.
	M int `koanf:"m"`

	// EfSearch is the HNSW search beam width.
	EfSearch int `koanf:"ef_search"`

	// TopK is the number of nearest neighbors fetched per query.
	TopK int `koanf:"top_k"`
}

// CacheBackendKind selects the optional L2 cache backend.
type CacheBackendKind string

const (
	// CacheBackendNone runs the cache L1-only.
	CacheBackendNone CacheBackendKind = "none"
	// CacheBackendBadger uses an embedded BadgerDB store.
	CacheBackendBadger CacheBackendKind = "badger"
	// CacheBackendNATS uses a NATS JetStream key-value bucket.
	CacheBackendNATS CacheBackendKind = "nats"
)

// CacheConfig configures the two named tiered caches.
type CacheConfig struct {
	// IntentMaxSize bounds the intent L1 cache entry count.
	IntentMaxSize int `koanf:"intent_max_size"`

	// IntentTTL is the intent cache TTL. Intents are stable per query
	// string, so this is the longer of the two.
	IntentTTL time.Duration `koanf:"intent_ttl"`

	// ResultMaxSize bounds the result L1 cache entry count.
	ResultMaxSize int `koanf:"result_max_size"`

	// ResultTTL is the result cache TTL. Freshness matters more for
	// final rankings, so this is the shorter of the two.
	ResultTTL time.Duration `koanf:"result_ttl"`

	// Backend selects the optional L2 layer.
	Backend CacheBackendKind `koanf:"backend"`

	// L2TTL is the coarser L2 TTL applied to both caches.
	L2TTL time.Duration `koanf:"l2_ttl"`

	// BadgerPath is the on-disk location for the badger backend.
	BadgerPath string `koanf:"badger_path"`

	// NATSURL is the server URL for the nats backend.
	NATSURL string `koanf:"nats_url"`

	// NATSBucket is the JetStream KV bucket name.
	NATSBucket string `koanf:"nats_bucket"`
}

// SearchConfig configures retrieval and ranking behavior.
type SearchConfig struct {
	// MaxResults bounds the final ranked list.
	MaxResults int `koanf:"max_results"`

	// MinVoteCount is the vote-count floor used to filter obscure
	// titles in the person and award tiers.
	MinVoteCount int `koanf:"min_vote_count"`

	// MinPopularity is the popularity floor in the person and award tiers.
	MinPopularity float64 `koanf:"min_popularity"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks configuration invariants. It is called by the loader
// after all layers are applied and may be called directly on hand-built
// configs in tests.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.TMDB.BaseURL == "" {
		return fmt.Errorf("tmdb.base_url must not be empty")
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("tmdb.timeout must be positive, got %v", c.TMDB.Timeout)
	}
	if c.TMDB.RateLimit < 0 {
		return fmt.Errorf("tmdb.rate_limit must not be negative, got %v", c.TMDB.RateLimit)
	}

	switch c.Embedding.Provider {
	case EmbeddingStatic:
	case EmbeddingHTTP:
		if c.Embedding.URL == "" {
			return fmt.Errorf("embedding.url required for http provider")
		}
	default:
		return fmt.Errorf("embedding.provider must be static or http, got %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}

	if c.Vector.TopK <= 0 {
		return fmt.Errorf("vector.top_k must be positive, got %d", c.Vector.TopK)
	}

	if c.Cache.IntentMaxSize <= 0 || c.Cache.ResultMaxSize <= 0 {
		return fmt.Errorf("cache sizes must be positive, got intent=%d result=%d",
			c.Cache.IntentMaxSize, c.Cache.ResultMaxSize)
	}
	if c.Cache.IntentTTL <= 0 || c.Cache.ResultTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive, got intent=%v result=%v",
			c.Cache.IntentTTL, c.Cache.ResultTTL)
	}

	switch c.Cache.Backend {
	case CacheBackendNone:
	case CacheBackendBadger:
		if c.Cache.BadgerPath == "" {
			return fmt.Errorf("cache.badger_path required for badger backend")
		}
	case CacheBackendNATS:
		if c.Cache.NATSURL == "" || c.Cache.NATSBucket == "" {
			return fmt.Errorf("cache.nats_url and cache.nats_bucket required for nats backend")
		}
	default:
		return fmt.Errorf("cache.backend must be none, badger or nats, got %q", c.Cache.Backend)
	}

	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults)
	}

	return nil
}
