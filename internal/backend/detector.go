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

// Package backend locates a live generation backend. Production deployments use
// a fixed base URL; development probes a list of local ports.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/designetica/designetica/internal/config"
	"github.com/designetica/designetica/internal/httpclient"
)

const (
	// HealthPath is probed first on every candidate
	HealthPath = "/api/health"
	// GeneratePath receives the synthetic capability probe
	GeneratePath = "/api/generate-wireframe"
)

// Detector resolves the base URL of a working backend.
type Detector struct {
	production bool
	baseURL    string
	host       string
	ports      []int
	client     *httpclient.Client
	cache      *PortCache
	logger     *zap.Logger
}

// Option configures a Detector
type Option func(*Detector)

// WithHTTPClient replaces the http.Client used for probes
func WithHTTPClient(hc *http.Client) Option {
	return func(d *Detector) {
		d.client = httpclient.New(d.client.Timeout(), d.logger, httpclient.WithHTTPClient(hc))
	}
}

// WithPortCache replaces the port cache
func WithPortCache(cache *PortCache) Option {
	return func(d *Detector) {
		d.cache = cache
	}
}

// NewDetector creates a Detector from the backend settings.
func NewDetector(cfg *config.Config, logger *zap.Logger, opts ...Option) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	host := cfg.Backend.Host
	if host == "" {
		host = "localhost"
	}
	d := &Detector{
		production: cfg.IsProduction(),
		baseURL:    strings.TrimRight(cfg.Backend.BaseURL, "/"),
		host:       host,
		ports:      append([]int(nil), cfg.Backend.CandidatePorts...),
		client:     httpclient.New(cfg.Backend.ProbeTimeout, logger),
		cache:      NewPortCache(cfg.Backend.PortCachePath, cfg.Backend.PortCacheTTL),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// URLFor returns the base URL of a local port.
func (d *Detector) URLFor(port int) string {
	return "http://" + d.host + ":" + strconv.Itoa(port)
}

// PrimaryURL is returned when no candidate answers.
func (d *Detector) PrimaryURL() string {
	if d.production || len(d.ports) == 0 {
		return d.baseURL
	}
	return d.URLFor(d.ports[0])
}

// Detect returns the base URL to use. It never fails: when nothing answers it
// returns PrimaryURL.
func (d *Detector) Detect(ctx context.Context) string {
	if d.production {
		return d.baseURL
	}

	if entry, ok := d.cache.Load(); ok {
		d.logger.Debug("Using cached backend port", zap.Int("port", entry.Port))
		return d.URLFor(entry.Port)
	}

	for _, port := range d.ports {
		if ctx.Err() != nil {
			break
		}
		if err := d.probe(ctx, port); err != nil {
			d.logger.Debug("Backend candidate rejected", zap.Int("port", port), zap.Error(err))
			continue
		}

		if err := d.cache.Store(port); err != nil {
			d.logger.Warn("Failed to persist backend port", zap.Error(err))
		}
		d.logger.Info("Detected working backend", zap.Int("port", port))
		return d.URLFor(port)
	}

	d.logger.Warn("No backend candidate responded, using primary", zap.String("url", d.PrimaryURL()))
	return d.PrimaryURL()
}

// Refresh drops the cached port and detects again.
func (d *Detector) Refresh(ctx context.Context) string {
	if d.production {
		return d.baseURL
	}
	if err := d.cache.Clear(); err != nil {
		d.logger.Warn("Failed to clear backend port cache", zap.Error(err))
	}
	return d.Detect(ctx)
}

type probeResponse struct {
	AIGenerated *bool `json:"aiGenerated"`
}

// probe requires a 2xx health answer and an AI-capable generation probe.
func (d *Detector) probe(ctx context.Context, port int) error {
	base := d.URLFor(port)

	start := time.Now()
	if err := d.client.GetJSON(ctx, base+HealthPath, nil); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	var resp probeResponse
	body := map[string]any{"description": "capability probe", "probe": true}
	if err := d.client.PostJSON(ctx, base+GeneratePath, body, &resp); err != nil {
		return fmt.Errorf("generation probe failed: %w", err)
	}
	if resp.AIGenerated == nil || !*resp.AIGenerated {
		return fmt.Errorf("backend on port %d is not AI-capable", port)
	}

	d.logger.Debug("Backend candidate accepted", zap.Int("port", port), zap.Duration("elapsed", time.Since(start)))
	return nil
}
