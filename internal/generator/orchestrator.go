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

// Package generator is the client side of wireframe generation: cache lookup,
// a bounded and retried call to the backend, then the fallback chain.
package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/designetica/designetica/internal/config"
	"github.com/designetica/designetica/internal/fallback"
	"github.com/designetica/designetica/internal/htmlproc"
	"github.com/designetica/designetica/internal/httpclient"
	"github.com/designetica/designetica/internal/resilience"
	"github.com/designetica/designetica/internal/wirecache"
)

// GeneratePath is the backend generation endpoint.
const GeneratePath = "/api/generate-wireframe"

// Source tells where a result's HTML came from.
type Source string

const (
	SourceAI            Source = "ai"
	SourceFallback      Source = "fallback"
	SourceCache         Source = "cache"
	SourceErrorFallback Source = "error-fallback"
)

// ErrCancelled is returned when a generation is superseded or its context is
// cancelled. It matches context.Canceled.
var ErrCancelled = fmt.Errorf("generation cancelled: %w", context.Canceled)

var errMissingHTML = errors.New("response did not contain html")

// Request is one user submission.
type Request struct {
	Description string
	Theme       string
	ColorScheme string
	FastMode    bool
	SkipCache   bool
}

// Result is what the UI renders.
type Result struct {
	HTML             string `json:"html"`
	Source           Source `json:"source"`
	Fallback         bool   `json:"fallback"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
	Attempts         int    `json:"attempts"`
	Warning          string `json:"warning,omitempty"`
	CorrelationID    string `json:"correlationId,omitempty"`
}

// Resolver yields the backend base URL. Refresh is called before each retry.
type Resolver interface {
	Detect(ctx context.Context) string
	Refresh(ctx context.Context) string
}

// StaticResolver always returns the same URL.
type StaticResolver string

func (s StaticResolver) Detect(context.Context) string  { return string(s) }
func (s StaticResolver) Refresh(context.Context) string { return string(s) }

type generateRequest struct {
	Description string `json:"description"`
	Theme       string `json:"theme,omitempty"`
	ColorScheme string `json:"colorScheme,omitempty"`
	FastMode    bool   `json:"fastMode"`
	Variant     string `json:"variant,omitempty"`
}

type generateResponse struct {
	Success     bool   `json:"success"`
	HTML        string `json:"html"`
	Source      string `json:"source"`
	AIGenerated bool   `json:"aiGenerated"`
	Metadata    struct {
		CorrelationID    string `json:"correlationId"`
		ProcessingTimeMs int64  `json:"processingTimeMs"`
	} `json:"metadata"`
}

// Orchestrator runs generations for one UI session. Starting a generation
// cancels the one still in flight.
type Orchestrator struct {
	client   *httpclient.Client
	resolver Resolver
	cache    *wirecache.Cache
	engine   fallback.Engine
	backoff  resilience.BackoffConfig
	variant  string
	now      func() time.Time
	logger   *zap.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithEngine replaces the fallback engine
func WithEngine(engine fallback.Engine) Option {
	return func(o *Orchestrator) {
		o.engine = engine
	}
}

// WithBackoff replaces the retry policy
func WithBackoff(b resilience.BackoffConfig) Option {
	return func(o *Orchestrator) {
		o.backoff = b
	}
}

// WithClient replaces the HTTP client
func WithClient(c *httpclient.Client) Option {
	return func(o *Orchestrator) {
		o.client = c
	}
}

// WithClock replaces the time source used for processing times
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an Orchestrator. cache may be shared between orchestrators.
func New(cfg config.GenerationConfig, resolver Resolver, cache *wirecache.Cache, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}

	backoff := resilience.DefaultBackoffConfig()
	if cfg.MaxRetries >= 0 {
		backoff.MaxRetries = cfg.MaxRetries
	}

	o := &Orchestrator{
		client:   httpclient.New(cfg.Timeout, logger),
		resolver: resolver,
		cache:    cache,
		engine:   fallback.NewEngine(),
		backoff:  backoff,
		variant:  cfg.Variant,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate produces a wireframe. The only error returns are a validation error
// (a blank description, or input the backend rejected with 400) and ErrCancelled.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, resilience.NewValidationError("description cannot be empty")
	}

	start := o.now()
	ctx, seq, cancel := o.begin(ctx)
	defer o.end(seq, cancel)

	key := wirecache.Key(wirecache.KeyFields{
		Description: description,
		Theme:       req.Theme,
		ColorScheme: req.ColorScheme,
		Variant:     o.variant,
		FastMode:    req.FastMode,
	})

	if !req.SkipCache && o.cache != nil {
		if entry, ok := o.cache.Get(key); ok {
			o.logger.Debug("Serving wireframe from cache", zap.Int("description_length", len(description)))
			return &Result{HTML: entry.HTML, Source: SourceCache, ProcessingTimeMs: entry.ProcessingTimeMs}, nil
		}
	}

	body := generateRequest{
		Description: description,
		Theme:       req.Theme,
		ColorScheme: req.ColorScheme,
		FastMode:    req.FastMode,
		Variant:     o.variant,
	}

	var resp generateResponse
	attempts := 0
	baseURL := o.resolve(ctx, false)

	backoff := o.backoff
	backoff.RetryOnFunc = func(err error) bool {
		return ctx.Err() == nil && !errors.Is(err, context.Canceled) && !httpclient.IsStatus(err, http.StatusBadRequest)
	}
	backoff.OnRetry = func(ctx context.Context, retry int, lastErr error) {
		o.logger.Info("Retrying wireframe generation",
			zap.Int("retry", retry),
			zap.Error(lastErr))
		baseURL = o.resolve(ctx, true)
	}

	err := resilience.WithExponentialBackoff(ctx, o.logger, backoff, func(ctx context.Context) error {
		attempts++
		resp = generateResponse{}
		if err := o.client.PostJSON(ctx, baseURL+GeneratePath, body, &resp); err != nil {
			return err
		}
		if !resp.Success || strings.TrimSpace(resp.HTML) == "" {
			return errMissingHTML
		}
		return nil
	})

	if errors.Is(ctx.Err(), context.Canceled) || o.superseded(seq) {
		o.logger.Debug("Generation cancelled", zap.Int("attempts", attempts))
		return nil, ErrCancelled
	}

	elapsed := o.now().Sub(start).Milliseconds()

	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest {
		message := statusErr.Message
		if message == "" {
			message = "request rejected by the backend"
		}
		return nil, resilience.NewValidationError(message)
	}

	if err != nil {
		o.logger.Warn("Generation failed, using fallback",
			zap.Error(err),
			zap.Int("attempts", attempts))
		result := o.fallback(description, req.Theme, req.ColorScheme, err)
		result.ProcessingTimeMs = elapsed
		result.Attempts = attempts
		return result, nil
	}

	html := htmlproc.SubstituteIconPlaceholders(htmlproc.RepairImagePlaceholders(resp.HTML))
	result := &Result{
		HTML:             html,
		Source:           SourceAI,
		ProcessingTimeMs: elapsed,
		Attempts:         attempts,
		CorrelationID:    resp.Metadata.CorrelationID,
	}

	if resp.Source == string(SourceFallback) {
		result.Source = SourceFallback
		result.Fallback = true
		return result, nil
	}

	if !o.store(seq, key, html, elapsed) {
		return nil, ErrCancelled
	}
	return result, nil
}

// Cancel aborts the generation in flight, if any.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

// ClearCache empties the wireframe cache.
func (o *Orchestrator) ClearCache() {
	if o.cache != nil {
		o.cache.Clear()
	}
}

func (o *Orchestrator) begin(parent context.Context) (context.Context, uint64, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
	o.seq++
	o.cancel = cancel
	return ctx, o.seq, cancel
}

func (o *Orchestrator) end(seq uint64, cancel context.CancelFunc) {
	o.mu.Lock()
	if o.seq == seq {
		o.cancel = nil
	}
	o.mu.Unlock()
	cancel()
}

func (o *Orchestrator) superseded(seq uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.seq != seq
}

// store writes the cache only while seq is still the latest generation.
func (o *Orchestrator) store(seq uint64, key, html string, elapsed int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seq != seq {
		return false
	}
	if o.cache != nil {
		o.cache.Set(key, html, elapsed)
	}
	return true
}

func (o *Orchestrator) resolve(ctx context.Context, refresh bool) string {
	if o.resolver == nil {
		return ""
	}
	url := o.resolver.Detect
	if refresh {
		url = o.resolver.Refresh
	}
	return strings.TrimRight(url(ctx), "/")
}

func (o *Orchestrator) fallback(description, theme, colorScheme string, cause error) *Result {
	html, err := o.runEngine(description, theme, colorScheme)
	if err == nil {
		return &Result{
			HTML:     html,
			Source:   SourceFallback,
			Fallback: true,
			Warning:  fmt.Sprintf("AI generation unavailable, showing a template wireframe: %v", cause),
		}
	}

	o.logger.Error("Fallback engine failed, using emergency template", zap.Error(err))
	return &Result{
		HTML:     fallback.Emergency(description),
		Source:   SourceErrorFallback,
		Fallback: true,
		Warning:  fmt.Sprintf("wireframe generation failed: %v", err),
	}
}

func (o *Orchestrator) runEngine(description, theme, colorScheme string) (html string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fallback engine panic: %v", r)
		}
	}()
	if o.engine == nil {
		return "", errors.New("no fallback engine configured")
	}
	return o.engine.Generate(description, theme, colorScheme)
}
