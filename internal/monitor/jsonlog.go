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

package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// JSONLog is a JSON array file holding at most max entries. Appending past
// the cap evicts the oldest entries first.
type JSONLog[T any] struct {
	path string
	max  int
}

// NewJSONLog creates a log at path. A max of zero or less keeps everything.
func NewJSONLog[T any](path string, max int) *JSONLog[T] {
	return &JSONLog[T]{path: path, max: max}
}

// Path returns the file location.
func (l *JSONLog[T]) Path() string {
	return l.path
}

// Append adds entries under an exclusive file lock.
func (l *JSONLog[T]) Append(entries ...T) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	fileLock := flock.New(l.path + ".lock")
	if err := fileLock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire log lock: %w", err)
	}
	defer func() { _ = fileLock.Unlock() }()

	existing, err := l.read()
	if err != nil {
		return err
	}

	all := append(existing, entries...)
	if l.max > 0 && len(all) > l.max {
		all = all[len(all)-l.max:]
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode log: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("failed to replace log: %w", err)
	}
	return nil
}

// Entries returns the stored entries, oldest first.
func (l *JSONLog[T]) Entries() ([]T, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		return []T{}, nil
	}

	fileLock := flock.New(l.path + ".lock")
	if err := fileLock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to acquire log lock: %w", err)
	}
	defer func() { _ = fileLock.Unlock() }()

	return l.read()
}

// read returns an empty slice for a missing or corrupt file.
func (l *JSONLog[T]) read() ([]T, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}

	var entries []T
	if err := json.Unmarshal(data, &entries); err != nil {
		return []T{}, nil
	}
	return entries, nil
}
