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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/designetica/designetica/internal/config"
	"github.com/designetica/designetica/internal/figma"
	"github.com/designetica/designetica/internal/registry"
)

func createFigmaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "figma",
		Short: "Import Figma components",
	}
	cmd.PersistentFlags().String("token", "", "Figma personal access token (overrides FIGMA_ACCESS_TOKEN)")

	cmd.AddCommand(createFigmaImportCommand(), createFigmaSummaryCommand())
	return cmd
}

func figmaConfig(cmd *cobra.Command, cfg *config.Config) config.FigmaConfig {
	figmaCfg := cfg.Figma
	if token, _ := cmd.Flags().GetString("token"); token != "" {
		figmaCfg.AccessToken = token
	}
	return figmaCfg
}

func createFigmaImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <figma-url>",
		Short: "Import a Figma node into the component registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(cmd, true)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			store, err := registry.NewStore(cfg.Registry.DBPath, logger)
			if err != nil {
				return fmt.Errorf("failed to open component registry: %w", err)
			}
			defer func() { _ = store.Close() }()

			importer := figma.NewImporter(figma.NewClient(figmaConfig(cmd, cfg), logger), store, logger)
			if noImage, _ := cmd.Flags().GetBool("no-image"); noImage {
				importer.IncludeImage = false
			}

			component, err := importer.ImportNode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			logger.Info("Component imported", zap.String("id", component.ID), zap.String("name", component.Name))
			return writeJSON(cmd.OutOrStdout(), component)
		},
	}

	cmd.Flags().Bool("no-image", false, "Skip the SVG render of the node")
	return cmd
}

func createFigmaSummaryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <figma-url-or-file-key>",
		Short: "List the frames and components of a Figma file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(cmd, true)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			importer := figma.NewImporter(figma.NewClient(figmaConfig(cmd, cfg), logger), nil, logger)
			summary, err := importer.Summarize(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if path, _ := cmd.Flags().GetString("wireframe"); path != "" {
				if err := os.WriteFile(path, []byte(summary.WireframeHTML), 0o600); err != nil {
					return fmt.Errorf("failed to write wireframe: %w", err)
				}
			}
			summary.WireframeHTML = ""
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().String("wireframe", "", "Write the file's HTML wireframe to this path")
	return cmd
}
