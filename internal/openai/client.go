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

// Package openai talks to the Azure OpenAI chat completion API. It performs a
// single request per call; retries belong to the caller.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/designetica/designetica/internal/config"
	"github.com/designetica/designetica/internal/prompt"
)

const (
	// DefaultMaxTokens is used when neither the call nor the config sets a limit
	DefaultMaxTokens = 4000
	// DefaultTemperature is used when the config leaves it at zero
	DefaultTemperature = 0.7
)

// ErrEmptyContent is returned when the API answers without any message content.
var ErrEmptyContent = errors.New("completion returned no content")

// ErrNotConfigured is returned by NewInvoker when endpoint, key or deployment is missing.
var ErrNotConfigured = errors.New("azure openai is not configured")

// APIError carries the HTTP status of a failed completion call.
type APIError struct {
	StatusCode int
	Message    string
	Retryable  bool
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("azure openai error (status %d): %s", e.StatusCode, e.Message)
}

// ModelConfig overrides per call. Zero values fall back to the invoker defaults.
type ModelConfig struct {
	Deployment  string
	MaxTokens   int
	Temperature float32
}

// Usage reports token counts of the last completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Invoker wraps the go-openai client configured for an Azure deployment
type Invoker struct {
	client   *openai.Client
	logger   *zap.Logger
	defaults ModelConfig
}

// NewInvoker creates an Invoker from the Azure OpenAI settings.
func NewInvoker(cfg config.AzureOpenAIConfig, logger *zap.Logger) (*Invoker, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	if cfg.APIVersion != "" {
		clientConfig.APIVersion = cfg.APIVersion
	}
	deployment := cfg.Deployment
	clientConfig.AzureModelMapperFunc = func(model string) string {
		if model == "" {
			return deployment
		}
		return model
	}

	defaults := ModelConfig{
		Deployment:  cfg.Deployment,
		MaxTokens:   cfg.MaxTokens,
		Temperature: float32(cfg.Temperature),
	}
	if defaults.MaxTokens <= 0 {
		defaults.MaxTokens = DefaultMaxTokens
	}
	if defaults.Temperature <= 0 {
		defaults.Temperature = DefaultTemperature
	}

	logger.Info("Azure OpenAI invoker initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("deployment", cfg.Deployment),
		zap.String("api_version", clientConfig.APIVersion),
	)

	return &Invoker{
		client:   openai.NewClientWithConfig(clientConfig),
		logger:   logger,
		defaults: defaults,
	}, nil
}

// Invoke sends one chat completion request and returns the raw message text.
func (i *Invoker) Invoke(ctx context.Context, p prompt.Prompt, mc ModelConfig) (string, error) {
	text, _, err := i.InvokeWithUsage(ctx, p, mc)
	return text, err
}

// InvokeWithUsage is Invoke that also returns token usage.
func (i *Invoker) InvokeWithUsage(ctx context.Context, p prompt.Prompt, mc ModelConfig) (string, Usage, error) {
	mc = i.merge(mc)

	req := openai.ChatCompletionRequest{
		Model: mc.Deployment,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		MaxTokens:   mc.MaxTokens,
		Temperature: mc.Temperature,
	}

	i.logger.Debug("Creating chat completion",
		zap.String("deployment", mc.Deployment),
		zap.Int("max_tokens", mc.MaxTokens),
		zap.Float64("temperature", float64(mc.Temperature)),
	)

	start := time.Now()
	resp, err := i.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", Usage{}, handleAPIError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", Usage{}, ErrEmptyContent
	}

	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}

	i.logger.Debug("Chat completion successful",
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", usage.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return resp.Choices[0].Message.Content, usage, nil
}

func (i *Invoker) merge(mc ModelConfig) ModelConfig {
	if mc.Deployment == "" {
		mc.Deployment = i.defaults.Deployment
	}
	if mc.MaxTokens <= 0 {
		mc.MaxTokens = i.defaults.MaxTokens
	}
	if mc.Temperature <= 0 {
		mc.Temperature = i.defaults.Temperature
	}
	return mc
}

// handleAPIError classifies go-openai errors by status code
func handleAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		out := &APIError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			out.Retryable = true
			out.RetryAfter = time.Second
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			out.Retryable = true
		}
		return out
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{
			StatusCode: reqErr.HTTPStatusCode,
			Message:    reqErr.Error(),
			Retryable:  reqErr.HTTPStatusCode >= http.StatusInternalServerError,
		}
	}

	return fmt.Errorf("azure openai client error: %w", err)
}
