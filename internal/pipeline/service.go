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

// Package pipeline is the server side of wireframe generation: prompt, one
// completion call, post-processing, and the insufficient-content fallback.
package pipeline

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/designetica/designetica/internal/fallback"
	"github.com/designetica/designetica/internal/htmlproc"
	"github.com/designetica/designetica/internal/openai"
	"github.com/designetica/designetica/internal/prompt"
	"github.com/designetica/designetica/internal/resilience"
)

const (
	SourceAI       = "ai"
	SourceFallback = "fallback"

	fastModeMaxTokens = 2000
)

// Completer sends one prompt to the model.
type Completer interface {
	Invoke(ctx context.Context, p prompt.Prompt, mc openai.ModelConfig) (string, error)
}

// Request is a server-side generation request.
type Request struct {
	Description string
	Theme       string
	ColorScheme string
	Variant     string
	FastMode    bool
}

// Output is the generated page and how it was produced.
type Output struct {
	HTML        string
	Source      string
	AIGenerated bool
	Variant     string
	Warning     string
	Duration    time.Duration
}

// Service runs the generation pipeline.
type Service struct {
	completer Completer
	engine    fallback.Engine
	filter    *htmlproc.ContentFilter
	logger    *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithEngine replaces the fallback engine
func WithEngine(engine fallback.Engine) Option {
	return func(s *Service) {
		s.engine = engine
	}
}

// WithContentFilter replaces the branding filter used by variants that enable it
func WithContentFilter(filter *htmlproc.ContentFilter) Option {
	return func(s *Service) {
		s.filter = filter
	}
}

// NewService creates a Service. A nil completer means the model is not configured.
func NewService(completer Completer, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		completer: completer,
		engine:    fallback.NewEngine(),
		filter:    htmlproc.DefaultContentFilter(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether a completer is available.
func (s *Service) Configured() bool {
	return s.completer != nil
}

// Generate builds the prompt, calls the model once and post-processes the
// result. Output that is too short or has no markup is replaced by the
// fallback template.
func (s *Service) Generate(ctx context.Context, req Request) (*Output, error) {
	start := time.Now()

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, resilience.NewValidationError("description cannot be empty")
	}

	variant, err := LookupVariant(req.Variant)
	if err != nil {
		return nil, resilience.NewValidationError(err.Error())
	}

	if !s.Configured() {
		return nil, resilience.NewNotConfiguredError("Azure OpenAI is not configured; set AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_KEY and AZURE_OPENAI_DEPLOYMENT")
	}

	p, err := prompt.Build(description, prompt.Options{
		ColorScheme: req.ColorScheme,
		Theme:       req.Theme,
		Style:       variant.PromptStyle,
		FastMode:    req.FastMode,
	})
	if err != nil {
		return nil, resilience.NewValidationError(err.Error())
	}

	mc := openai.ModelConfig{}
	if req.FastMode {
		mc.MaxTokens = fastModeMaxTokens
	}

	raw, err := s.completer.Invoke(ctx, p, mc)
	if err != nil {
		return nil, classifyInvokeError(err)
	}

	out := &Output{
		Source:      SourceAI,
		AIGenerated: true,
		Variant:     variant.Name,
	}

	if !htmlproc.Sufficient(htmlproc.StripWrappers(raw)) {
		s.logger.Warn("Model output insufficient, using fallback template",
			zap.String("variant", variant.Name),
			zap.Int("length", len(raw)))

		fb, ferr := s.engine.Generate(description, req.Theme, req.ColorScheme)
		if ferr != nil {
			fb = fallback.Emergency(description)
		}
		out.HTML = fb
		out.Source = SourceFallback
		out.AIGenerated = false
		out.Warning = "model returned insufficient content"
	} else {
		pctx := htmlproc.Context{
			InjectNavigation: variant.ComponentInjectionEnabled,
			InjectHero:       variant.ComponentInjectionEnabled && variant.PromptStyle == prompt.StyleEnhanced,
			InjectFooter:     variant.ComponentInjectionEnabled,
			ComponentLibrary: variant.ComponentInjectionEnabled,
			Title:            titleFrom(description),
		}
		if variant.BrandingFilterEnabled {
			pctx.BrandingFilter = s.filter
		}
		out.HTML = htmlproc.Process(raw, pctx)
	}

	out.Duration = time.Since(start)
	s.logger.Info("Wireframe generated",
		zap.String("variant", variant.Name),
		zap.String("source", out.Source),
		zap.Duration("duration", out.Duration))

	return out, nil
}

func classifyInvokeError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return resilience.NewTimeoutError("model request timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return resilience.NewTooManyRequestsError("model rate limit reached", err)
	}
	return resilience.NewDependencyFailureError("model request failed", err)
}

func titleFrom(description string) string {
	words := strings.Fields(description)
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}
