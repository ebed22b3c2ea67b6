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

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestManager_Check(t *testing.T) {
	manager := NewManager("designetica", "1.0.0", "development", zap.NewNop())

	manager.AddCheckerFunc("healthy", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})
	manager.AddCheckerFunc("unhealthy", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusUnhealthy, Error: "service is down"}
	})

	result := manager.Check(context.Background())

	if result.Status != StatusUnhealthy {
		t.Errorf("Expected status to be unhealthy, got %s", result.Status)
	}
	if result.Version != "1.0.0" {
		t.Errorf("Expected version to be 1.0.0, got %s", result.Version)
	}
	if result.Environment != "development" {
		t.Errorf("Expected environment development, got %s", result.Environment)
	}
	if len(result.Dependencies) != 2 {
		t.Errorf("Expected 2 dependencies, got %d", len(result.Dependencies))
	}
	if result.Dependencies["unhealthy"].Error != "service is down" {
		t.Errorf("Expected error message, got %s", result.Dependencies["unhealthy"].Error)
	}
	if result.Timestamp.IsZero() || result.Dependencies["healthy"].Timestamp.IsZero() {
		t.Error("Expected timestamps to be set")
	}
}

func TestManager_Check_NoCheckers(t *testing.T) {
	manager := NewManager("designetica", "1.0.0", "", nil)

	result := manager.Check(context.Background())

	if result.Status != "OK" {
		t.Errorf("Expected status OK, got %s", result.Status)
	}
	if result.Environment != "unknown" {
		t.Errorf("Expected environment unknown, got %s", result.Environment)
	}
}

func TestManager_Check_DegradedStatus(t *testing.T) {
	manager := NewManager("designetica", "1.0.0", "production", zap.NewNop())

	manager.AddChecker("registry", DatabaseHealthChecker("sqlite", func(ctx context.Context) error { return nil }))
	manager.AddChecker("azure_openai", ConfigChecker(func() bool { return false }, "AI not configured, fallback templates only"))

	result := manager.Check(context.Background())

	if result.Status != StatusDegraded {
		t.Errorf("Expected status degraded, got %s", result.Status)
	}
	if result.Dependencies["registry"].Status != StatusHealthy {
		t.Errorf("Expected registry healthy, got %s", result.Dependencies["registry"].Status)
	}
	if StatusCode(result.Status) != http.StatusOK {
		t.Errorf("Expected degraded to map to 200, got %d", StatusCode(result.Status))
	}
}

func TestDatabaseHealthChecker_Failure(t *testing.T) {
	checker := DatabaseHealthChecker("sqlite", func(ctx context.Context) error {
		return errors.New("database is locked")
	})

	result := checker.Check(context.Background())

	if result.Status != StatusUnhealthy {
		t.Errorf("Expected unhealthy, got %s", result.Status)
	}
	if result.Error != "database ping failed: database is locked" {
		t.Errorf("Unexpected error: %s", result.Error)
	}
}

func TestHTTPHandler(t *testing.T) {
	manager := NewManager("designetica", "2.1.0", "test", zap.NewNop())
	handler := manager.HTTPHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %s", ct)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	for _, key := range []string{"status", "timestamp", "version", "environment"} {
		if _, ok := body[key]; !ok {
			t.Errorf("Expected %q in health response", key)
		}
	}
	if body["status"] != "OK" || body["version"] != "2.1.0" {
		t.Errorf("Unexpected body: %v", body)
	}
}

func TestHTTPHandler_Unhealthy(t *testing.T) {
	manager := NewManager("designetica", "1.0.0", "test", zap.NewNop())
	manager.AddChecker("registry", DatabaseHealthChecker("sqlite", func(ctx context.Context) error {
		return errors.New("closed")
	}))

	w := httptest.NewRecorder()
	manager.HTTPHandler()(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", w.Code)
	}
}

func TestHTTPHandler_MethodNotAllowed(t *testing.T) {
	manager := NewManager("designetica", "1.0.0", "test", zap.NewNop())

	w := httptest.NewRecorder()
	manager.HTTPHandler()(w, httptest.NewRequest(http.MethodPost, "/api/health", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}
