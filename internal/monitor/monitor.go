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

// Package monitor periodically probes deployed endpoints, records the
// results and raises threshold alerts. Results and alerts are kept in two
// capped JSON files.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/designetica/designetica/internal/config"
)

// Report is the outcome of one monitoring round.
type Report struct {
	Results []ProbeResult `json:"results"`
	Alerts  []Alert       `json:"alerts"`
}

// Monitor runs probe rounds over a fixed endpoint list.
type Monitor struct {
	endpoints  []string
	interval   time.Duration
	thresholds Thresholds
	prober     *Prober
	logs       *JSONLog[ProbeResult]
	alerts     *JSONLog[Alert]
	logger     *zap.Logger
}

// Option configures a Monitor
type Option func(*Monitor)

// WithProber replaces the default prober
func WithProber(p *Prober) Option {
	return func(m *Monitor) {
		m.prober = p
	}
}

// New creates a Monitor from configuration.
func New(cfg config.MonitorConfig, logger *zap.Logger, opts ...Option) (*Monitor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Endpoints) == 0 {
		return nil, errors.New("no endpoints to monitor")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("monitor interval must be positive, got %v", cfg.Interval)
	}

	m := &Monitor{
		endpoints: cfg.Endpoints,
		interval:  cfg.Interval,
		thresholds: Thresholds{
			Latency:        cfg.LatencyThreshold,
			CertExpiryDays: cfg.CertExpiryDays,
		},
		prober: NewProber(cfg.Timeout),
		logs:   NewJSONLog[ProbeResult](cfg.LogPath, cfg.MaxLogs),
		alerts: NewJSONLog[Alert](cfg.AlertsPath, cfg.MaxAlerts),
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// RunOnce probes every endpoint concurrently and persists the results.
func (m *Monitor) RunOnce(ctx context.Context) (Report, error) {
	results := make([]ProbeResult, len(m.endpoints))

	var wg sync.WaitGroup
	for i, endpoint := range m.endpoints {
		wg.Add(1)
		go func(i int, endpoint string) {
			defer wg.Done()
			results[i] = m.prober.Probe(ctx, endpoint)
		}(i, endpoint)
	}
	wg.Wait()

	report := Report{Results: results, Alerts: []Alert{}}
	for _, r := range results {
		alerts := Evaluate(r, m.thresholds)
		report.Alerts = append(report.Alerts, alerts...)

		fields := []zap.Field{
			zap.String("endpoint", r.Endpoint),
			zap.Bool("healthy", r.Healthy),
			zap.Int("status_code", r.StatusCode),
			zap.Int64("latency_ms", r.LatencyMs),
		}
		if r.Error != "" {
			fields = append(fields, zap.String("error", r.Error))
		}
		m.logger.Info("Endpoint probed", fields...)

		for _, a := range alerts {
			m.logger.Warn("Monitor alert",
				zap.String("endpoint", a.Endpoint),
				zap.String("type", string(a.Type)),
				zap.String("severity", a.Severity),
				zap.String("message", a.Message))
		}
	}

	if err := m.logs.Append(results...); err != nil {
		return report, fmt.Errorf("failed to write health log: %w", err)
	}
	if err := m.alerts.Append(report.Alerts...); err != nil {
		return report, fmt.Errorf("failed to write alerts: %w", err)
	}
	return report, nil
}

// Run performs a round immediately and then every interval until ctx is
// done. Persistence failures are logged and do not stop the loop.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("Starting monitor",
		zap.Strings("endpoints", m.endpoints),
		zap.Duration("interval", m.interval))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if _, err := m.RunOnce(ctx); err != nil {
			m.logger.Error("Monitor round failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			m.logger.Info("Monitor stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Logs returns the persisted probe results.
func (m *Monitor) Logs() ([]ProbeResult, error) {
	return m.logs.Entries()
}

// Alerts returns the persisted alerts.
func (m *Monitor) Alerts() ([]Alert, error) {
	return m.alerts.Entries()
}
