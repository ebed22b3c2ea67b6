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
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/designetica/designetica/internal/config"
	"github.com/designetica/designetica/internal/health"
	"github.com/designetica/designetica/internal/oauth"
	"github.com/designetica/designetica/internal/openai"
	"github.com/designetica/designetica/internal/pipeline"
	"github.com/designetica/designetica/internal/registry"
	"github.com/designetica/designetica/internal/server"
)

const serviceName = "designetica"

func createServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the wireframe HTTP API",
		Long: "Run the HTTP API: wireframe generation, Figma OAuth and import, " +
			"the component registry and the health endpoint.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(cmd, false)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if port, _ := cmd.Flags().GetInt("port"); port > 0 {
				cfg.Server.Port = port
			}

			srv, cleanup, err := buildServer(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if watch, _ := cmd.Flags().GetBool("watch"); watch {
				configPath, _ := cmd.Flags().GetString("config")
				err := config.WatchConfig(configPath, func(updated *config.Config) {
					logger.Info("Configuration file changed, restart to apply",
						zap.String("environment", updated.Environment),
						zap.Int("port", updated.Server.Port))
				})
				if err != nil {
					logger.Warn("Configuration watch disabled", zap.Error(err))
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("Starting designetica",
				zap.String("environment", cfg.Environment),
				zap.String("version", cfg.Server.Version),
				zap.Int("port", cfg.Server.Port),
				zap.Bool("ai_configured", cfg.AzureOpenAI.Configured()))

			return srv.Run(ctx)
		},
	}

	cmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides server.port)")
	cmd.Flags().Bool("watch", false, "Log configuration file changes")
	return cmd
}

// buildServer wires the API dependencies. The returned cleanup closes the
// registry.
func buildServer(cfg *config.Config, logger *zap.Logger) (*server.Server, func(), error) {
	store, err := registry.NewStore(cfg.Registry.DBPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open component registry: %w", err)
	}
	cleanup := func() { _ = store.Close() }

	var completer pipeline.Completer
	invoker, err := openai.NewInvoker(cfg.AzureOpenAI, logger)
	switch {
	case err == nil:
		completer = invoker
	case errors.Is(err, openai.ErrNotConfigured):
		logger.Warn("Azure OpenAI is not configured, generation requests will report NOT_CONFIGURED")
	default:
		cleanup()
		return nil, nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}

	svc := pipeline.NewService(completer, logger)
	flow := oauth.NewFlow(cfg.Figma, logger)

	hm := health.NewManager(serviceName, cfg.Server.Version, cfg.Environment, logger)
	hm.AddChecker("registry", health.DatabaseHealthChecker("registry", store.Ping))
	hm.AddChecker("azure_openai", health.ConfigChecker(svc.Configured,
		"Azure OpenAI credentials are missing"))
	hm.AddChecker("figma_oauth", health.ConfigChecker(flow.Configured,
		"Figma OAuth is not configured, personal access tokens still work"))

	srv := server.New(server.Dependencies{
		Config:   cfg,
		Pipeline: svc,
		Registry: store,
		OAuth:    flow,
		Health:   hm,
		Logger:   logger,
	})
	return srv, cleanup, nil
}
