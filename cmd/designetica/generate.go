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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/designetica/designetica/internal/backend"
	"github.com/designetica/designetica/internal/config"
	"github.com/designetica/designetica/internal/generator"
	"github.com/designetica/designetica/internal/wirecache"
)

type generateOptions struct {
	theme       string
	colorScheme string
	fastMode    bool
	skipCache   bool
	output      string
	outputDir   string
	backendURL  string
}

func createGenerateCommand() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [description]",
		Short: "Generate a wireframe through the API",
		Long: "Generate a wireframe by calling the designetica API with retries, caching and a local " +
			"fallback. Without arguments each line of stdin is a description and results are " +
			"written to --output-dir.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(cmd, true)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			orch, err := newOrchestrator(cfg, opts.backendURL, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			session := &generateSession{orch: orch, opts: opts, out: cmd.OutOrStdout(), status: cmd.ErrOrStderr()}

			if len(args) > 0 {
				return session.single(ctx, strings.Join(args, " "))
			}
			return session.stream(ctx, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&opts.theme, "theme", "", "Visual theme (e.g. professional, modern, minimal)")
	cmd.Flags().StringVar(&opts.colorScheme, "color-scheme", "", "Color scheme (e.g. blue, green, dark)")
	cmd.Flags().BoolVar(&opts.fastMode, "fast", false, "Request a shorter, faster generation")
	cmd.Flags().BoolVar(&opts.skipCache, "no-cache", false, "Bypass the wireframe cache")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the HTML to a file instead of stdout")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", ".", "Directory for wireframes generated from stdin")
	cmd.Flags().StringVar(&opts.backendURL, "backend-url", "", "API base URL (skips port discovery)")
	return cmd
}

func newOrchestrator(cfg *config.Config, backendURL string, logger *zap.Logger) (*generator.Orchestrator, error) {
	var resolver generator.Resolver
	if backendURL != "" {
		resolver = generator.StaticResolver(strings.TrimRight(backendURL, "/"))
	} else {
		resolver = backend.NewDetector(cfg, logger)
	}

	cache, err := wirecache.New(cfg.Generation.CacheSize, cfg.Generation.CacheTTL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create wireframe cache: %w", err)
	}
	return generator.New(cfg.Generation, resolver, cache, logger), nil
}

// generateSession runs generations for one invocation; repeated descriptions
// on stdin are answered from the cache.
type generateSession struct {
	orch   *generator.Orchestrator
	opts   *generateOptions
	out    io.Writer
	status io.Writer
}

func (s *generateSession) request(description string) generator.Request {
	return generator.Request{
		Description: description,
		Theme:       s.opts.theme,
		ColorScheme: s.opts.colorScheme,
		FastMode:    s.opts.fastMode,
		SkipCache:   s.opts.skipCache,
	}
}

func (s *generateSession) single(ctx context.Context, description string) error {
	result, err := s.orch.Generate(ctx, s.request(description))
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	s.report(description, result)

	if s.opts.output == "" {
		_, err = io.WriteString(s.out, result.HTML)
		return err
	}
	return writeHTML(s.opts.output, result.HTML)
}

func (s *generateSession) stream(ctx context.Context, in io.Reader) error {
	if err := os.MkdirAll(s.opts.outputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	scanner := bufio.NewScanner(in)
	n := 0
	for scanner.Scan() {
		description := strings.TrimSpace(scanner.Text())
		if description == "" {
			continue
		}

		result, err := s.orch.Generate(ctx, s.request(description))
		if errors.Is(err, generator.ErrCancelled) {
			return err
		}
		if err != nil {
			_, _ = fmt.Fprintf(s.status, "skipped %q: %v\n", description, err)
			continue
		}

		n++
		path := filepath.Join(s.opts.outputDir, fmt.Sprintf("wireframe-%03d.html", n))
		if err := writeHTML(path, result.HTML); err != nil {
			return err
		}
		s.report(description, result)
		_, _ = fmt.Fprintf(s.status, "  -> %s\n", path)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read descriptions: %w", err)
	}
	return nil
}

func (s *generateSession) report(description string, result *generator.Result) {
	line := fmt.Sprintf("%q: source=%s time=%dms attempts=%d", description, result.Source,
		result.ProcessingTimeMs, result.Attempts)
	if result.Warning != "" {
		line += " warning=" + result.Warning
	}
	_, _ = fmt.Fprintln(s.status, line)
}

func writeHTML(path, html string) error {
	if err := os.WriteFile(path, []byte(html), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
