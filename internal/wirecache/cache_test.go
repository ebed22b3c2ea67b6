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

package wirecache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T, size int) (*Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	cache, err := New(size, DefaultTTL, nil, WithClock(clock.Now))
	require.NoError(t, err)
	return cache, clock
}

func TestKeyDependsOnEveryField(t *testing.T) {
	base := KeyFields{Description: "contact form", Theme: "microsoft", ColorScheme: "blue", FastMode: false}

	variants := map[string]KeyFields{
		"description": {Description: "contact forms", Theme: "microsoft", ColorScheme: "blue"},
		"theme":       {Description: "contact form", Theme: "dark", ColorScheme: "blue"},
		"colorScheme": {Description: "contact form", Theme: "microsoft", ColorScheme: "green"},
		"variant":     {Description: "contact form", Theme: "microsoft", ColorScheme: "blue", Variant: "minimal"},
		"fastMode":    {Description: "contact form", Theme: "microsoft", ColorScheme: "blue", FastMode: true},
	}

	baseKey := Key(base)
	assert.Equal(t, baseKey, Key(base), "key must be deterministic")
	for field, v := range variants {
		assert.NotEqual(t, baseKey, Key(v), "changing %s must change the key", field)
	}
}

func TestKeyIsUnambiguous(t *testing.T) {
	// Field boundaries cannot be shifted to collide
	a := Key(KeyFields{Description: "a|t1:b", Theme: "c"})
	b := Key(KeyFields{Description: "a", Theme: "b|t1:c"})
	assert.NotEqual(t, a, b)

	c := Key(KeyFields{Description: "ab", Theme: ""})
	d := Key(KeyFields{Description: "a", Theme: "b"})
	assert.NotEqual(t, c, d)
}

func TestGetSet(t *testing.T) {
	cache, _ := newTestCache(t, 10)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	cache.Set("k", "<html>one</html>", 1200)
	entry, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, "<html>one</html>", entry.HTML)
	assert.Equal(t, int64(1200), entry.ProcessingTimeMs)
	assert.Equal(t, "k", entry.Key)

	cache.Set("k", "<html>two</html>", 50)
	entry, ok = cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, "<html>two</html>", entry.HTML, "set must overwrite unconditionally")
}

func TestExpiry(t *testing.T) {
	cache, clock := newTestCache(t, 10)
	cache.Set("k", "<html></html>", 10)

	clock.Advance(29*time.Minute + 59*time.Second)
	_, ok := cache.Get("k")
	assert.True(t, ok, "entry valid just before TTL")

	clock.Advance(time.Second)
	_, ok = cache.Get("k")
	assert.False(t, ok, "entry expired at exactly TTL")
	assert.Equal(t, 0, cache.Len(), "expired entry evicted lazily on read")
}

func TestExpiredEntriesRemainUntilRead(t *testing.T) {
	cache, clock := newTestCache(t, 10)
	cache.Set("a", "x", 1)
	cache.Set("b", "y", 1)

	clock.Advance(time.Hour)
	assert.Equal(t, 2, cache.Len())

	_, _ = cache.Get("a")
	assert.Equal(t, 1, cache.Len())
}

func TestBoundedSize(t *testing.T) {
	cache, _ := newTestCache(t, 3)
	for i := 0; i < 5; i++ {
		cache.Set(fmt.Sprintf("k%d", i), "html", 1)
	}
	assert.Equal(t, 3, cache.Len())

	_, ok := cache.Get("k0")
	assert.False(t, ok, "least recently used entry evicted")
	_, ok = cache.Get("k4")
	assert.True(t, ok)
}

func TestClear(t *testing.T) {
	cache, _ := newTestCache(t, 10)
	cache.Set("a", "x", 1)
	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestDefaults(t *testing.T) {
	cache, err := New(0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, cache.ttl)
	assert.Contains(t, cache.String(), "ttl=30m0s")
}
