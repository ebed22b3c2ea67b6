// Copyright 2024 Designetica Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package wirecache holds generated wireframes in a bounded, TTL-expiring
// in-memory cache keyed by every request field that affects the output.
package wirecache

import (
	"fmt"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const (
	// DefaultTTL is how long a generated wireframe stays valid
	DefaultTTL = 30 * time.Minute
	// DefaultSize bounds the number of cached wireframes
	DefaultSize = 256
)

// KeyFields lists every input that changes the generated HTML.
// Adding a field here is the only way to make it part of the cache key.
type KeyFields struct {
	Description string
	Theme       string
	ColorScheme string
	Variant     string
	FastMode    bool
}

// Key encodes fields into a composite cache key. Each string is length
// prefixed so no two distinct field sets produce the same key.
func Key(f KeyFields) string {
	mode := "full"
	if f.FastMode {
		mode = "fast"
	}
	return fmt.Sprintf("d%d:%s|t%d:%s|c%d:%s|v%d:%s|m:%s",
		len(f.Description), f.Description,
		len(f.Theme), f.Theme,
		len(f.ColorScheme), f.ColorScheme,
		len(f.Variant), f.Variant,
		mode)
}

// Entry is a cached wireframe
type Entry struct {
	Key              string
	HTML             string
	Timestamp        time.Time
	ProcessingTimeMs int64
}

// Cache is a bounded LRU with lazy TTL expiry on read. Safe for concurrent use.
type Cache struct {
	entries *lru.Cache[string, Entry]
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Cache
type Option func(*Cache)

// WithClock replaces time.Now, for tests that simulate expiry
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a cache holding at most size entries for ttl each
func New(size int, ttl time.Duration, logger *zap.Logger, opts ...Option) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &Cache{
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	entries, err := lru.NewWithEvict(size, func(key string, _ Entry) {
		c.logger.Debug("Wireframe cache evicted entry", zap.Int("key_length", len(key)))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create wireframe cache: %w", err)
	}
	c.entries = entries

	logger.Debug("Wireframe cache initialized",
		zap.Int("size", size),
		zap.Duration("ttl", ttl))

	return c, nil
}

// Get returns the entry for key if present and younger than the TTL.
// Expired entries are removed on read.
func (c *Cache) Get(key string) (Entry, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return Entry{}, false
	}

	if c.now().Sub(entry.Timestamp) >= c.ttl {
		c.entries.Remove(key)
		c.logger.Debug("Wireframe cache entry expired",
			zap.Time("stored_at", entry.Timestamp),
			zap.Duration("ttl", c.ttl))
		return Entry{}, false
	}

	return entry, true
}

// Set stores html under key, replacing any existing entry
func (c *Cache) Set(key, html string, processingTimeMs int64) {
	c.entries.Add(key, Entry{
		Key:              key,
		HTML:             html,
		Timestamp:        c.now(),
		ProcessingTimeMs: processingTimeMs,
	})
}

// Clear removes every entry
func (c *Cache) Clear() {
	c.entries.Purge()
}

// Len returns the number of stored entries, including expired ones not yet read
func (c *Cache) Len() int {
	return c.entries.Len()
}

// String describes the cache for logs
func (c *Cache) String() string {
	return "wirecache(len=" + strconv.Itoa(c.Len()) + ", ttl=" + c.ttl.String() + ")"
}
