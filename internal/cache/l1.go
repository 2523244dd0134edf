// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package cache provides the two-tier cache used throughout the engine:
// a bounded in-process L1 with TTL and LRU eviction, and an optional L2
// backend (BadgerDB or NATS JetStream KV) whose failures never propagate
// to callers.
package cache

import (
	"sync"
	"time"
)

// entry is a cached item in the L1 linked list.
type entry[T any] struct {
	key       string
	value     T
	createdAt time.Time
	expiresAt time.Time
	hits      int64
	prev      *entry[T]
	next      *entry[T]
}

// L1 is a thread-safe bounded in-process cache with TTL.
//
// Expired entries are evicted lazily on Get. A hit refreshes the entry's
// position, so eviction at capacity removes the entry that was inserted
// or touched longest ago. The doubly-linked list plus hashmap layout gives
// O(1) Get, Set and eviction.
type L1[T any] struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration

	items map[string]*entry[T]

	// head.next is most recently inserted/touched, tail.prev is oldest.
	head *entry[T]
	tail *entry[T]

	hits      int64
	misses    int64
	evictions int64
}

// NewL1 creates an L1 cache with the given capacity and default TTL.
func NewL1[T any](capacity int, ttl time.Duration) *L1[T] {
	if capacity <= 0 {
		capacity = 1000
	}
	c := &L1[T]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry[T], capacity),
		head:     &entry[T]{},
		tail:     &entry[T]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get retrieves a value. Expired entries are removed and counted as misses.
// A hit increments the entry's hit counter and refreshes its position.
func (c *L1[T]) Get(key string) (T, bool) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}

	if time.Now().After(e.expiresAt) {
		c.unlink(e)
		delete(c.items, key)
		c.misses++
		return zero, false
	}

	e.hits++
	c.hits++
	c.moveToFront(e)
	return e.value, true
}

// Set stores a value with the default TTL. At capacity, the oldest entry
// is evicted before insertion.
func (c *L1[T]) Set(key string, value T) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *L1[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		e.createdAt = now
		e.expiresAt = now.Add(ttl)
		c.moveToFront(e)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictOldest()
	}

	e := &entry[T]{
		key:       key,
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	c.items[key] = e
	c.pushFront(e)
}

// Delete removes a key if present.
func (c *L1[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.unlink(e)
		delete(c.items, key)
	}
}

// Purge removes all expired entries. The tiered cache janitor calls this
// periodically so idle entries do not pin memory until the next Get.
func (c *L1[T]) Purge() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.items {
		if now.After(e.expiresAt) {
			c.unlink(e)
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Len returns the current number of entries, including not-yet-purged
// expired ones.
func (c *L1[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats holds cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// Stats returns a snapshot of the cache counters.
func (c *L1[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.items),
	}
}

// evictOldest removes the tail entry (must be called with mu held).
func (c *L1[T]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.unlink(oldest)
	delete(c.items, oldest.key)
	c.evictions++
}

// pushFront inserts e after head (must be called with mu held).
func (c *L1[T]) pushFront(e *entry[T]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

// moveToFront refreshes e's position (must be called with mu held).
func (c *L1[T]) moveToFront(e *entry[T]) {
	c.unlink(e)
	c.pushFront(e)
}

// unlink removes e from the list (must be called with mu held).
func (c *L1[T]) unlink(e *entry[T]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
}
