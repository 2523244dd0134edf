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

	"github.com/dgraph-io/badger/v4"
)

// badgerKeyPrefix namespaces cache entries inside the badger store.
const badgerKeyPrefix = "cache:"

// BadgerBackend implements Backend on an embedded BadgerDB store.
// It is the default L2 for single-instance deployments: durable across
// restarts without requiring external infrastructure.
type BadgerBackend struct {
	db *badger.DB
}

// NewBadgerBackend opens (or creates) a badger store at path.
func NewBadgerBackend(path string) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is noisy; errors surface via returns
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store at %s: %w", path, err)
	}
	return &BadgerBackend{db: db}, nil
}

// NewBadgerBackendWithDB wraps an existing badger handle. Used by tests
// and by deployments sharing one store across caches.
func NewBadgerBackendWithDB(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

// Get returns the stored bytes for key, or ErrNotFound.
func (b *BadgerBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores bytes under key with the given TTL.
func (b *BadgerBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(badgerKeyPrefix+key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Close closes the underlying store.
func (b *BadgerBackend) Close() error {
	return b.db.Close()
}

// RunGC runs one badger value-log GC pass. The cache janitor service
// calls this periodically; badger.ErrNoRewrite (nothing to collect) is
// not an error.
func (b *BadgerBackend) RunGC() error {
	err := b.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}
