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

package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/designetica/designetica/internal/config"
	"github.com/designetica/designetica/internal/resilience"
)

const (
	// DefaultAPIBase is the Figma REST API root
	DefaultAPIBase = "https://api.figma.com/v1"
	// DefaultTimeout bounds a single API request
	DefaultTimeout = 60 * time.Second

	maxErrorBody = 512
)

// Client interacts with the Figma REST API.
type Client struct {
	baseURL string
	token   string
	bearer  bool
	http    *http.Client
	limiter *rate.Limiter
	backoff resilience.BackoffConfig
	logger  *zap.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithBearerToken authenticates with an OAuth access token instead of a personal token
func WithBearerToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
		c.bearer = true
	}
}

// WithBackoff replaces the retry policy applied to rate-limited requests
func WithBackoff(b resilience.BackoffConfig) ClientOption {
	return func(c *Client) {
		c.backoff = b
	}
}

// NewClient creates a Figma API client. Requests are paced by
// cfg.RequestsPerSec; zero disables pacing.
func NewClient(cfg config.FigmaConfig, logger *zap.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimRight(cfg.APIBase, "/")
	if base == "" {
		base = DefaultAPIBase
	}

	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}

	backoff := resilience.DefaultBackoffConfig()
	backoff.MaxRetries = 3
	backoff.MaxDelay = 10 * time.Second

	c := &Client{
		baseURL: base,
		token:   cfg.AccessToken,
		http:    &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(limit, 1),
		backoff: backoff,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasToken reports whether a token is configured.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// GetFile fetches a file. When nodeIDs are given the document only contains
// the paths to those nodes.
func (c *Client) GetFile(ctx context.Context, fileKey string, nodeIDs ...string) (*File, error) {
	query := url.Values{}
	if len(nodeIDs) > 0 {
		query.Set("ids", strings.Join(nodeIDs, ","))
	}

	var file File
	if err := c.get(ctx, "/files/"+url.PathEscape(fileKey), query, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// GetComponents lists the published components of a file.
func (c *Client) GetComponents(ctx context.Context, fileKey string) ([]ComponentMeta, error) {
	var resp componentsResponse
	if err := c.get(ctx, "/files/"+url.PathEscape(fileKey)+"/components", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Meta.Components, nil
}

// GetImageURLs returns rendered image URLs keyed by node id. format is one of
// png, jpg, svg or pdf.
func (c *Client) GetImageURLs(ctx context.Context, fileKey string, nodeIDs []string, format string) (map[string]string, error) {
	if format == "" {
		format = "svg"
	}
	query := url.Values{}
	query.Set("ids", strings.Join(nodeIDs, ","))
	query.Set("format", format)

	var resp imagesResponse
	if err := c.get(ctx, "/images/"+url.PathEscape(fileKey), query, &resp); err != nil {
		return nil, err
	}
	if resp.Err != nil && *resp.Err != "" {
		return nil, newError(CodeAPIError, "image render failed: "+*resp.Err, nil)
	}
	return resp.Images, nil
}

// get performs an authenticated GET, retrying only rate-limited responses.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.token == "" {
		return newError(CodeMissingToken, "no Figma token configured; set FIGMA_ACCESS_TOKEN or complete the OAuth flow", nil)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	backoff := c.backoff
	backoff.RetryOnFunc = func(err error) bool {
		var figmaErr *Error
		return errors.As(err, &figmaErr) && figmaErr.Code == CodeRateLimited
	}

	var body []byte
	err := resilience.WithExponentialBackoff(ctx, c.logger, backoff, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return newError(CodeAPIError, "request cancelled", err)
		}

		data, err := c.do(ctx, reqURL)
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		var figmaErr *Error
		if errors.As(err, &figmaErr) {
			return figmaErr
		}
		return newError(CodeAPIError, "request failed", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return newError(CodeDecodeError, "unexpected response from "+path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, newError(CodeAPIError, "creating request", err)
	}
	if c.bearer {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else {
		req.Header.Set("X-Figma-Token", c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newError(CodeAPIError, "Figma API request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(CodeAPIError, "reading response", err)
	}

	c.logger.Debug("Figma API request completed",
		zap.String("url", reqURL),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, statusError(resp.StatusCode, fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(snippet)))
	}
	return body, nil
}
