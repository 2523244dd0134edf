// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/kinoscope/kinoscope/internal/metrics"
)

// Tiered is a named two-tier cache: a bounded in-process L1 fronting an
// optional L2 backend. Values cross the L2 boundary as JSON.
//
// Hard requirement: L2 failures never reach callers. Every backend error
// is logged, counted, and the operation continues as L1-only.
//
// Concurrent Set calls to the same key are last-write-wins by design;
// entries are idempotent per key, so locking across tiers would only
// serialize unrelated requests.
type Tiered[T any] struct {
	name    string
	l1      *L1[T]
	backend Backend
	l2TTL   time.Duration
	logger  zerolog.Logger
}

// NewTiered creates a named tiered cache. backend may be nil for L1-only
// operation; l2TTL should be coarser than the L1 TTL.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewTiered[T any](name string, capacity int, ttl, l2TTL time.Duration, backend Backend, logger zerolog.Logger) *Tiered[T] {
	return &Tiered[T]{
		name:    name,
		l1:      NewL1[T](capacity, ttl),
		backend: backend,
		l2TTL:   l2TTL,
		logger:  logger.With().Str("component", "cache").Str("cache", name).Logger(),
	}
}

// Get checks L1 first, then L2. An L2 hit repopulates L1 so subsequent
// reads stay in-process.
func (c *Tiered[T]) Get(ctx context.Context, key string) (T, bool) {
	if v, ok := c.l1.Get(key); ok {
		metrics.CacheHits.WithLabelValues(c.name, "l1").Inc()
		return v, true
	}

	var zero T
	if c.backend == nil {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return zero, false
	}

	data, err := c.backend.Get(ctx, backendKey(c.name, key))
	if err != nil {
		if err != ErrNotFound { //nolint:errorlint // ErrNotFound is returned unwrapped by backends
			metrics.CacheBackendErrors.WithLabelValues(c.name, "get").Inc()
			c.logger.Warn().Err(err).Msg("l2 get failed, degrading to l1-only")
		}
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return zero, false
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		metrics.CacheBackendErrors.WithLabelValues(c.name, "get").Inc()
		c.logger.Warn().Err(err).Msg("l2 entry corrupt, ignoring")
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return zero, false
	}

	c.l1.Set(key, v)
	metrics.CacheHits.WithLabelValues(c.name, "l2").Inc()
	return v, true
}

// Set always writes L1 and best-effort writes L2.
func (c *Tiered[T]) Set(ctx context.Context, key string, value T) {
	c.l1.Set(key, value)

	if c.backend == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		metrics.CacheBackendErrors.WithLabelValues(c.name, "set").Inc()
		c.logger.Warn().Err(err).Msg("l2 marshal failed")
		return
	}
	if err := c.backend.Set(ctx, backendKey(c.name, key), data, c.l2TTL); err != nil {
		metrics.CacheBackendErrors.WithLabelValues(c.name, "set").Inc()
		c.logger.Warn().Err(err).Msg("l2 set failed, entry kept in l1 only")
	}
}

// Purge removes expired L1 entries and reports evictions to metrics.
func (c *Tiered[T]) Purge() {
	if n := c.l1.Purge(); n > 0 {
		metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
		c.logger.Debug().Int("removed", n).Msg("purged expired entries")
	}
}

// Stats returns the L1 counters.
func (c *Tiered[T]) Stats() Stats {
	return c.l1.Stats()
}
