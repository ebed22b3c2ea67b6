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

// Package registry stores imported components in SQLite. Writes are upserts
// keyed by component id, so concurrent imports never lose each other's rows.
package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no component has the requested id.
var ErrNotFound = errors.New("component not found")

// Component is a stored component record
type Component struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	HTML      string         `json:"html"`
	CSS       string         `json:"css"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Store handles queries to the SQLite component database
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewStore opens (or creates) the database at dbPath. Use ":memory:" for tests.
func NewStore(dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: a single writer, and ":memory:" stays one database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, logger: logger, now: time.Now}

	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("Component registry opened", zap.String("path", dbPath))
	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates the components table if it doesn't exist
func (s *Store) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS components (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			html TEXT NOT NULL DEFAULT '',
			css TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`

	_, err := s.db.Exec(query)
	return err
}

// Upsert inserts c or replaces the record with the same id. CreatedAt of an
// existing record is kept.
func (s *Store) Upsert(ctx context.Context, c Component) (*Component, error) {
	if c.ID == "" {
		return nil, errors.New("component id is required")
	}
	if c.Name == "" {
		c.Name = c.ID
	}

	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	if c.Metadata == nil {
		metadata = []byte("{}")
	}

	now := s.now().UTC()
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	query := `
		INSERT INTO components (id, name, html, css, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			html = excluded.html,
			css = excluded.css,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		c.ID, c.Name, c.HTML, c.CSS, string(metadata),
		formatTime(createdAt), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert component: %w", err)
	}

	return s.Get(ctx, c.ID)
}

// Get returns the component with id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Component, error) {
	query := "SELECT id, name, html, css, metadata, created_at, updated_at FROM components WHERE id = ?"

	c, err := scanComponent(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan component: %w", err)
	}
	return c, nil
}

// List returns every component, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Component, error) {
	query := "SELECT id, name, html, css, metadata, created_at, updated_at FROM components ORDER BY updated_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query components: %w", err)
	}
	defer rows.Close()

	components := []Component{}
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		components = append(components, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating component rows: %w", err)
	}

	return components, nil
}

// Delete removes the component with id, or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM components WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete component: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored components.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM components").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count components: %w", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ImportJSON upserts every record of a flat JSON array file and returns how
// many were imported.
func (s *Store) ImportJSON(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read component file: %w", err)
	}

	var components []Component
	if err := json.Unmarshal(data, &components); err != nil {
		return 0, fmt.Errorf("failed to parse component file: %w", err)
	}

	for i, c := range components {
		if _, err := s.Upsert(ctx, c); err != nil {
			return i, fmt.Errorf("failed to import component %q: %w", c.ID, err)
		}
	}

	s.logger.Info("Imported components from JSON",
		zap.String("path", path),
		zap.Int("count", len(components)))

	return len(components), nil
}

// ExportJSON writes every component to path as a flat JSON array.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	components, err := s.List(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(components, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode components: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write component file: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComponent(row rowScanner) (*Component, error) {
	var c Component
	var metadata, createdAt, updatedAt string
	if err := row.Scan(&c.ID, &c.Name, &c.HTML, &c.CSS, &metadata, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if metadata != "" && metadata != "{}" && metadata != "null" {
		if err := json.Unmarshal([]byte(metadata), &c.Metadata); err != nil {
			return nil, fmt.Errorf("invalid metadata for %s: %w", c.ID, err)
		}
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
