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

package backend

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// PortCacheEntry records the last backend port that passed both probes.
type PortCacheEntry struct {
	Port         int       `json:"port"`
	DiscoveredAt time.Time `json:"discoveredAt"`
}

// PortCache persists the discovered port to a small JSON file guarded by a file lock.
type PortCache struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

// NewPortCache creates a cache at path whose entries are valid for ttl
func NewPortCache(path string, ttl time.Duration) *PortCache {
	return &PortCache{path: path, ttl: ttl, now: time.Now}
}

func (c *PortCache) lockPath() string {
	return c.path + ".lock"
}

// Load returns the cached entry when present, readable and younger than the TTL.
func (c *PortCache) Load() (PortCacheEntry, bool) {
	if c == nil || c.path == "" {
		return PortCacheEntry{}, false
	}
	if _, err := os.Stat(c.path); err != nil {
		return PortCacheEntry{}, false
	}

	fileLock := flock.New(c.lockPath())
	if err := fileLock.RLock(); err != nil {
		return PortCacheEntry{}, false
	}
	defer func() { _ = fileLock.Unlock() }()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return PortCacheEntry{}, false
	}

	var entry PortCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Port <= 0 {
		return PortCacheEntry{}, false
	}
	if c.now().Sub(entry.DiscoveredAt) >= c.ttl {
		return PortCacheEntry{}, false
	}
	return entry, true
}

// Store writes port with the current time.
func (c *PortCache) Store(port int) error {
	if c == nil || c.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create port cache directory: %w", err)
	}

	fileLock := flock.New(c.lockPath())
	if err := fileLock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire port cache lock: %w", err)
	}
	defer func() { _ = fileLock.Unlock() }()

	data, err := json.Marshal(PortCacheEntry{Port: port, DiscoveredAt: c.now()})
	if err != nil {
		return fmt.Errorf("failed to encode port cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write port cache: %w", err)
	}
	return nil
}

// Clear removes the cached entry.
func (c *PortCache) Clear() error {
	if c == nil || c.path == "" {
		return nil
	}

	fileLock := flock.New(c.lockPath())
	if err := fileLock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire port cache lock: %w", err)
	}
	defer func() { _ = fileLock.Unlock() }()

	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove port cache: %w", err)
	}
	return nil
}
