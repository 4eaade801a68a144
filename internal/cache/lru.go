// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

// Package cache provides a thread-safe LRU cache with TTL used for
// recommendation response caching.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	key       string
	value     []string
	prev      *entry
	next      *entry
	expiresAt time.Time
}

// LRU is a thread-safe Least Recently Used cache with lazy TTL expiration.
// Get, Add, and eviction are all O(1): a doubly-linked list keeps recency
// order while a map provides lookups.
type LRU struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration

	items map[string]*entry

	// head.next is the most recently used, tail.prev the least.
	head *entry
	tail *entry
}

// NewLRU creates a cache holding up to capacity entries for up to ttl each.
func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 1024
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	c := &LRU{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get retrieves a cached value, refreshing its recency. Expired entries
// are removed on access. The returned slice is a copy; mutating it does
// not affect the cached value.
func (c *LRU) Get(key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.remove(e)
		return nil, false
	}

	c.moveToFront(e)
	return cloneValue(e.value), true
}

// Add inserts or refreshes an entry, evicting the least recently used
// entry when the cache is full. The value is copied on insert.
func (c *LRU) Add(key string, value []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)
	value = cloneValue(value)

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	if len(c.items) >= c.capacity {
		if lru := c.tail.prev; lru != c.head {
			c.remove(lru)
		}
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.items[key] = e
	c.pushFront(e)
}

// Len returns the number of entries, including not-yet-collected expired ones.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Purge removes all entries.
func (c *LRU) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*entry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

func (c *LRU) pushFront(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU) unlink(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
}

func (c *LRU) moveToFront(e *entry) {
	c.unlink(e)
	c.pushFront(e)
}

func (c *LRU) remove(e *entry) {
	c.unlink(e)
	delete(c.items, e.key)
}

// cloneValue copies a value so the stored slice is never shared with
// callers in either direction.
func cloneValue(v []string) []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}
