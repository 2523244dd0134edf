// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSKVBackend implements Backend on a NATS JetStream key-value bucket.
// It is the L2 for multi-instance deployments, letting replicas share
// parsed intents and ranked results.
//
// JetStream KV expiry is bucket-level, so the per-entry TTL passed to Set
// is ignored; the bucket TTL is fixed at creation time.
type NATSKVBackend struct {
	nc *nats.Conn
	kv jetstream.KeyValue
}

// NewNATSKVBackend connects to the NATS server and binds (or creates)
// the key-value bucket with the given TTL.
func NewNATSKVBackend(ctx context.Context, url, bucket string, ttl time.Duration) (*NATSKVBackend, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucket,
		TTL:    ttl,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("bind kv bucket %s: %w", bucket, err)
	}

	return &NATSKVBackend{nc: nc, kv: kv}, nil
}

// Get returns the stored bytes for key, or ErrNotFound.
func (b *NATSKVBackend) Get(ctx context.Context, key string) ([]byte, error) {
	e, err := b.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get: %w", err)
	}
	return e.Value(), nil
}

// Set stores bytes under key. The ttl argument is ignored; expiry is the
// bucket TTL.
func (b *NATSKVBackend) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	if _, err := b.kv.Put(ctx, key, value); err != nil {
		return fmt.Errorf("kv put: %w", err)
	}
	return nil
}

// Close drains the NATS connection.
func (b *NATSKVBackend) Close() error {
	b.nc.Close()
	return nil
}
