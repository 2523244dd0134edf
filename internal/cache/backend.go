// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotFound is returned by Backend.Get when the key has no value.
// Any other error indicates a backend failure; the tiered cache logs it
// and degrades to L1-only for that operation.
var ErrNotFound = errors.New("cache: key not found")

// Backend is the optional L2 store behind the in-process L1.
// Implementations must be safe for concurrent use. Both operations are
// fallible and non-fatal: the tiered cache swallows every backend error.
type Backend interface {
	// Get returns the stored bytes for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores bytes under key with the given TTL. Implementations
	// with bucket-level expiry may ignore the per-entry TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases the backend connection.
	Close() error
}

// backendKey derives a storage-safe key from a cache name and a raw key.
// Raw keys are normalized query strings and may contain characters the
// backends reject (NATS KV restricts the key alphabet), so keys are
// hashed to hex.
func backendKey(name, key string) string {
	sum := sha256.Sum256([]byte(name + ":" + key))
	return hex.EncodeToString(sum[:])
}
