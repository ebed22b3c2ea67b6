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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/designetica/designetica/internal/monitor"
)

func createMonitorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Probe endpoints and record health logs and alerts",
		Long: "Probe the configured endpoints for DNS, status, latency and certificate expiry. " +
			"Results are appended to monitor.log_path and alerts to monitor.alerts_path.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(cmd, true)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if endpoints, _ := cmd.Flags().GetStringSlice("endpoint"); len(endpoints) > 0 {
				cfg.Monitor.Endpoints = endpoints
			}
			if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
				cfg.Monitor.Interval = interval
			}

			m, err := monitor.New(cfg.Monitor, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if once, _ := cmd.Flags().GetBool("once"); once {
				report, err := m.RunOnce(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return m.Run(ctx)
		},
	}

	cmd.Flags().Bool("once", false, "Run a single round and print the report")
	cmd.Flags().StringSlice("endpoint", nil, "Endpoint to probe (repeatable, overrides monitor.endpoints)")
	cmd.Flags().Duration("interval", 0, "Time between rounds (overrides monitor.interval)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
