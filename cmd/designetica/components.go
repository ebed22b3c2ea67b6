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

	"github.com/spf13/cobra"

	"github.com/designetica/designetica/internal/registry"
)

func createComponentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "components",
		Short: "Manage the component registry",
	}
	cmd.AddCommand(
		registryCommand("list", "List stored components", cobra.NoArgs,
			func(cmd *cobra.Command, store *registry.Store, _ []string) error {
				components, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), components)
			}),
		registryCommand("delete <id>", "Delete a component", cobra.ExactArgs(1),
			func(cmd *cobra.Command, store *registry.Store, args []string) error {
				return store.Delete(cmd.Context(), args[0])
			}),
		registryCommand("export <path>", "Export all components to a JSON file", cobra.ExactArgs(1),
			func(cmd *cobra.Command, store *registry.Store, args []string) error {
				return store.ExportJSON(cmd.Context(), args[0])
			}),
		registryCommand("import <path>", "Import components from a JSON file", cobra.ExactArgs(1),
			func(cmd *cobra.Command, store *registry.Store, args []string) error {
				n, err := store.ImportJSON(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d components\n", n)
				return err
			}),
	)
	return cmd
}

// registryCommand builds a subcommand that runs fn against an open registry.
func registryCommand(
	use, short string,
	args cobra.PositionalArgs,
	fn func(cmd *cobra.Command, store *registry.Store, args []string) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
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

			return fn(cmd, store, args)
		},
	}
}
